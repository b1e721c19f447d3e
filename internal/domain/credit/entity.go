package credit

import (
	"time"

	"github.com/google/uuid"
)

// Action classifies a credit_usage row. Negative CreditsUsed means a grant.
const (
	ActionCoverExport  = "cover_export"
	ActionAnalyzePaper = "analyze_paper"
	ActionPurchase     = "purchase"
	ActionRefund       = "refund"
)

// Spend costs per action.
const (
	CostCoverExport  = 1
	CostAnalyzePaper = 5
)

// UsageRecord is an append-only credit_usage row.
type UsageRecord struct {
	ID          uuid.UUID `db:"id" json:"id"`
	UserID      uuid.UUID `db:"user_id" json:"user_id"`
	ActionType  string    `db:"action_type" json:"action_type"`
	CreditsUsed int       `db:"credits_used" json:"credits_used"`
	Reference   string    `db:"reference" json:"reference,omitempty"`
	Description string    `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Meta carries the audit fields written alongside a ledger mutation.
type Meta struct {
	Reference   string
	Description string
}
