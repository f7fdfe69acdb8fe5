package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ============================================================
// Ledger entities
// ============================================================

// Transaction is one ledger movement. Amount is signed: income positive,
// expenses negative.
type Transaction struct {
	ID          string          `json:"id"`
	CustomerID  string          `json:"customer_id"`
	Amount      decimal.Decimal `json:"amount"`
	OccurredAt  time.Time       `json:"occurred_at"`
	Category    string          `json:"category"`
	Description string          `json:"description,omitempty"`
	CreatedAt   *time.Time      `json:"created_at,omitempty"`
}

// Budget is a planned amount for a category, anchored to the period that
// contains OccurredAt. Amounts are always positive.
type Budget struct {
	ID         string          `json:"id"`
	CustomerID string          `json:"customer_id"`
	Category   string          `json:"category"`
	Amount     decimal.Decimal `json:"amount"`
	OccurredAt time.Time       `json:"occurred_at"`
	Notes      string          `json:"notes,omitempty"`
	CreatedAt  *time.Time      `json:"created_at,omitempty"`
}

// TransactionPage is the envelope for paginated transaction listings.
type TransactionPage struct {
	Transactions []Transaction `json:"transactions"`
	Page         int           `json:"page"`
	PageSize     int           `json:"page_size"`
}
