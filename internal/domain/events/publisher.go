package events

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/covergen/covergen-api/internal/domain/user"
)

// Publisher pushes ledger changes to connected clients. Handlers call it
// after a successful debit, refund or grant; failures are logged and never
// surfaced to the request.
type Publisher struct {
	hub   *Hub
	users user.Repository
}

func NewPublisher(hub *Hub, users user.Repository) *Publisher {
	return &Publisher{hub: hub, users: users}
}

func (p *Publisher) NotifyBalance(ctx context.Context, userID uuid.UUID) {
	u, err := p.users.GetByID(ctx, userID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID.String()).Msg("balance event skipped")
		return
	}

	p.hub.SendToUser(userID, &Event{
		Type:             EventCreditsUpdated,
		UserID:           userID.String(),
		RemainingCredits: u.RemainingCredits,
	})
}
