package payment

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a purchase transaction.
// pending -> completed is the only forward transition; failed is terminal.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// ParseStatus validates a raw status value at the storage boundary.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusCompleted, StatusFailed:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown transaction status %q", s)
}

// Transaction is a purchase record. PaymentID is the checkout session
// identifier and is unique, which is what makes verification idempotent.
type Transaction struct {
	ID           uuid.UUID      `db:"id" json:"id"`
	UserID       uuid.UUID      `db:"user_id" json:"user_id"`
	PaymentID    string         `db:"payment_id" json:"payment_id"`
	PackageID    string         `db:"package_id" json:"package_id"`
	AmountCents  int64          `db:"amount_cents" json:"amount_cents"`
	Currency     string         `db:"currency" json:"currency"`
	Credits      int            `db:"credits" json:"credits"`
	Status       Status         `db:"status" json:"status"`
	ErrorMessage sql.NullString `db:"error_message" json:"-"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}

// Package is a purchasable credit bundle from the credit_packages table.
type Package struct {
	ID          string `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	Credits     int    `db:"credits" json:"credits"`
	PriceCents  int64  `db:"price_cents" json:"price_cents"`
	Currency    string `db:"currency" json:"currency"`
	Description string `db:"description" json:"description"`
	Active      bool   `db:"active" json:"-"`
}
