package user

import (
	"time"

	"github.com/google/uuid"
)

// SignupCredits is the free grant applied when a ledger row is first created.
const SignupCredits = 10

// User is a credit ledger row (matches the users table).
// Rows are created lazily on first ledger access and never deleted.
type User struct {
	ID               uuid.UUID `db:"id" json:"id"`
	Email            string    `db:"email" json:"email"`
	RemainingCredits int       `db:"remaining_credits" json:"remaining_credits"`
	TotalPurchased   int       `db:"total_purchased" json:"total_purchased"`
	TotalUsage       int       `db:"total_usage" json:"total_usage"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// CanAfford reports whether the user has at least cost credits left.
func (u *User) CanAfford(cost int) bool {
	return u.RemainingCredits >= cost
}
