package credit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Repository interface {
	// Deduct atomically spends amount credits and records the usage row.
	// Returns ErrInsufficientCredits when the balance guard rejects the spend.
	Deduct(ctx context.Context, userID uuid.UUID, amount int, actionType string, meta Meta) error

	// GrantTx adds purchased credits inside an externally managed transaction.
	GrantTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, amount int, meta Meta) error

	// Refund restores credits spent on a unit of work that later failed.
	Refund(ctx context.Context, userID uuid.UUID, amount int, actionType string, meta Meta) error

	ListUsage(ctx context.Context, userID uuid.UUID, limit, offset int) ([]UsageRecord, int, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const insertUsage = `
	INSERT INTO credit_usage (user_id, action_type, credits_used, reference, description)
	VALUES ($1, $2, $3, $4, $5)`

func (r *repository) Deduct(ctx context.Context, userID uuid.UUID, amount int, actionType string, meta Meta) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin deduct: %w", err)
	}
	defer tx.Rollback()

	// The balance guard lives in the WHERE clause so concurrent spends can
	// never take the balance below zero.
	res, err := tx.ExecContext(ctx, `
		UPDATE users
		SET remaining_credits = remaining_credits - $2,
		    total_usage = total_usage + 1,
		    updated_at = NOW()
		WHERE id = $1 AND remaining_credits >= $2`,
		userID, amount)
	if err != nil {
		return fmt.Errorf("deduct credits: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deduct credits: %w", err)
	}
	if rows == 0 {
		var exists bool
		if err := tx.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, userID); err != nil {
			return fmt.Errorf("deduct credits: %w", err)
		}
		if !exists {
			return ErrUserNotFound
		}
		return ErrInsufficientCredits
	}

	if _, err := tx.ExecContext(ctx, insertUsage, userID, actionType, amount, meta.Reference, meta.Description); err != nil {
		return fmt.Errorf("record usage: %w", err)
	}

	return tx.Commit()
}

func (r *repository) GrantTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, amount int, meta Meta) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE users
		SET remaining_credits = remaining_credits + $2,
		    total_purchased = total_purchased + $2,
		    updated_at = NOW()
		WHERE id = $1`,
		userID, amount)
	if err != nil {
		return fmt.Errorf("grant credits: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("grant credits: %w", err)
	}
	if rows == 0 {
		return ErrUserNotFound
	}

	// Grants are stored with a negative credits_used so one ledger query
	// reconstructs the full balance history.
	if _, err := tx.ExecContext(ctx, insertUsage, userID, ActionPurchase, -amount, meta.Reference, meta.Description); err != nil {
		return fmt.Errorf("record grant: %w", err)
	}
	return nil
}

func (r *repository) Refund(ctx context.Context, userID uuid.UUID, amount int, actionType string, meta Meta) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin refund: %w", err)
	}
	defer tx.Rollback()

	// total_usage stays as-is: the attempt happened, only the balance is
	// restored.
	res, err := tx.ExecContext(ctx, `
		UPDATE users
		SET remaining_credits = remaining_credits + $2,
		    updated_at = NOW()
		WHERE id = $1`,
		userID, amount)
	if err != nil {
		return fmt.Errorf("refund credits: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("refund credits: %w", err)
	}
	if rows == 0 {
		return ErrUserNotFound
	}

	if _, err := tx.ExecContext(ctx, insertUsage, userID, ActionRefund, -amount, meta.Reference, meta.Description); err != nil {
		return fmt.Errorf("record refund: %w", err)
	}

	return tx.Commit()
}

func (r *repository) ListUsage(ctx context.Context, userID uuid.UUID, limit, offset int) ([]UsageRecord, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM credit_usage WHERE user_id = $1`, userID); err != nil {
		return nil, 0, fmt.Errorf("count usage: %w", err)
	}

	records := []UsageRecord{}
	query := `
		SELECT id, user_id, action_type, credits_used, reference, description, created_at
		FROM credit_usage
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	if err := r.db.SelectContext(ctx, &records, query, userID, limit, offset); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return records, total, nil
		}
		return nil, 0, fmt.Errorf("list usage: %w", err)
	}
	return records, total, nil
}
