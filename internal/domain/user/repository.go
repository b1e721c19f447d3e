package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("user not found")

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetOrCreate(ctx context.Context, id uuid.UUID, email string) (*User, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var u User
	query := `
		SELECT id, email, remaining_credits, total_purchased, total_usage, created_at, updated_at
		FROM users
		WHERE id = $1`

	if err := r.db.GetContext(ctx, &u, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// GetOrCreate returns the ledger row for id, inserting a fresh row with the
// signup grant when none exists yet. Concurrent callers are safe: the insert
// is a no-op when the row already exists.
func (r *repository) GetOrCreate(ctx context.Context, id uuid.UUID, email string) (*User, error) {
	insert := `
		INSERT INTO users (id, email, remaining_credits, total_purchased, total_usage)
		VALUES ($1, $2, $3, $3, 0)
		ON CONFLICT (id) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, insert, id, email, SignupCredits); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return r.GetByID(ctx, id)
}
