package credit

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/covergen/covergen-api/internal/domain/user"
)

type Service interface {
	// Balance returns the caller's ledger row, creating it with the signup
	// grant on first access.
	Balance(ctx context.Context, userID uuid.UUID, email string) (*user.User, error)
	Deduct(ctx context.Context, userID uuid.UUID, amount int, actionType string, meta Meta) error
	GrantTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, amount int, meta Meta) error
	Refund(ctx context.Context, userID uuid.UUID, amount int, actionType string, meta Meta) error
	Usage(ctx context.Context, userID uuid.UUID, limit, offset int) ([]UsageRecord, int, error)
}

type service struct {
	repo  Repository
	users user.Repository
}

func NewService(repo Repository, users user.Repository) Service {
	return &service{repo: repo, users: users}
}

func (s *service) Balance(ctx context.Context, userID uuid.UUID, email string) (*user.User, error) {
	return s.users.GetOrCreate(ctx, userID, email)
}

func (s *service) Deduct(ctx context.Context, userID uuid.UUID, amount int, actionType string, meta Meta) error {
	if err := s.repo.Deduct(ctx, userID, amount, actionType, meta); err != nil {
		return err
	}
	log.Debug().
		Str("user_id", userID.String()).
		Str("action", actionType).
		Int("credits", amount).
		Msg("credits deducted")
	return nil
}

func (s *service) GrantTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, amount int, meta Meta) error {
	return s.repo.GrantTx(ctx, tx, userID, amount, meta)
}

func (s *service) Refund(ctx context.Context, userID uuid.UUID, amount int, actionType string, meta Meta) error {
	if err := s.repo.Refund(ctx, userID, amount, actionType, meta); err != nil {
		log.Error().Err(err).
			Str("user_id", userID.String()).
			Str("action", actionType).
			Int("credits", amount).
			Msg("refund failed, ledger needs manual reconciliation")
		return err
	}
	return nil
}

// Usage lists ledger rows. Callers clamp limit and offset via
// response.Pagination before reaching here.
func (s *service) Usage(ctx context.Context, userID uuid.UUID, limit, offset int) ([]UsageRecord, int, error) {
	return s.repo.ListUsage(ctx, userID, limit, offset)
}
