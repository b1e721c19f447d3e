package payment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Repository interface {
	BeginTxx(ctx context.Context) (*sqlx.Tx, error)

	GetPackage(ctx context.Context, id string) (*Package, error)
	ListPackages(ctx context.Context) ([]Package, error)

	CreatePending(ctx context.Context, t *Transaction) error
	GetByPaymentID(ctx context.Context, paymentID string) (*Transaction, error)

	// GetByPaymentIDForUpdate row-locks the transaction so two concurrent
	// verifications serialize on the same session.
	GetByPaymentIDForUpdate(ctx context.Context, tx *sqlx.Tx, paymentID string) (*Transaction, error)
	MarkCompletedTx(ctx context.Context, tx *sqlx.Tx, paymentID string) error
	MarkFailed(ctx context.Context, paymentID, errorMessage string) error

	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Transaction, int, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) BeginTxx(ctx context.Context) (*sqlx.Tx, error) {
	return r.db.BeginTxx(ctx, nil)
}

func (r *repository) GetPackage(ctx context.Context, id string) (*Package, error) {
	var p Package
	query := `
		SELECT id, name, credits, price_cents, currency, description, active
		FROM credit_packages
		WHERE id = $1 AND active = TRUE`

	if err := r.db.GetContext(ctx, &p, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPackageNotFound
		}
		return nil, fmt.Errorf("get package: %w", err)
	}
	return &p, nil
}

func (r *repository) ListPackages(ctx context.Context) ([]Package, error) {
	packages := []Package{}
	query := `
		SELECT id, name, credits, price_cents, currency, description, active
		FROM credit_packages
		WHERE active = TRUE
		ORDER BY price_cents ASC`

	if err := r.db.SelectContext(ctx, &packages, query); err != nil {
		return nil, fmt.Errorf("list packages: %w", err)
	}
	return packages, nil
}

func (r *repository) CreatePending(ctx context.Context, t *Transaction) error {
	query := `
		INSERT INTO transactions (id, user_id, payment_id, package_id, amount_cents, currency, credits, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	t.Status = StatusPending

	if _, err := r.db.ExecContext(ctx, query,
		t.ID, t.UserID, t.PaymentID, t.PackageID, t.AmountCents, t.Currency, t.Credits, t.Status); err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	return nil
}

const selectTransaction = `
	SELECT id, user_id, payment_id, package_id, amount_cents, currency, credits, status, error_message, created_at, updated_at
	FROM transactions`

func (r *repository) GetByPaymentID(ctx context.Context, paymentID string) (*Transaction, error) {
	var t Transaction
	if err := r.db.GetContext(ctx, &t, selectTransaction+` WHERE payment_id = $1`, paymentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	if _, err := ParseStatus(string(t.Status)); err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return &t, nil
}

func (r *repository) GetByPaymentIDForUpdate(ctx context.Context, tx *sqlx.Tx, paymentID string) (*Transaction, error) {
	var t Transaction
	if err := tx.GetContext(ctx, &t, selectTransaction+` WHERE payment_id = $1 FOR UPDATE`, paymentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("lock transaction: %w", err)
	}
	if _, err := ParseStatus(string(t.Status)); err != nil {
		return nil, fmt.Errorf("lock transaction: %w", err)
	}
	return &t, nil
}

func (r *repository) MarkCompletedTx(ctx context.Context, tx *sqlx.Tx, paymentID string) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE transactions
		SET status = $2, updated_at = NOW()
		WHERE payment_id = $1 AND status = $3`,
		paymentID, StatusCompleted, StatusPending)
	if err != nil {
		return fmt.Errorf("complete transaction: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("complete transaction: %w", err)
	}
	if rows == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

func (r *repository) MarkFailed(ctx context.Context, paymentID, errorMessage string) error {
	if _, err := r.db.ExecContext(ctx, `
		UPDATE transactions
		SET status = $2, error_message = $3, updated_at = NOW()
		WHERE payment_id = $1 AND status = $4`,
		paymentID, StatusFailed, errorMessage, StatusPending); err != nil {
		return fmt.Errorf("fail transaction: %w", err)
	}
	return nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Transaction, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM transactions WHERE user_id = $1`, userID); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	transactions := []Transaction{}
	query := selectTransaction + `
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	if err := r.db.SelectContext(ctx, &transactions, query, userID, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	return transactions, total, nil
}
