// internal/domain/wallet.go
package domain

import (
	"time"

	"github.com/shopspring/decimal" // For precise monetary calculations
)

// Wallet represents a user's reward balance. One wallet per user, enforced
// by a unique constraint on user_id. The invariant the ledger maintains:
// Balance == TotalEarned - TotalWithdrawn, and Balance >= 0.
type Wallet struct {
	ID             int64           `db:"id" json:"id"`
	UserID         int64           `db:"user_id" json:"user_id"`
	Balance        decimal.Decimal `db:"balance" json:"balance"`
	TotalEarned    decimal.Decimal `db:"total_earned" json:"total_earned"`       // lifetime credit sum, non-decreasing
	TotalWithdrawn decimal.Decimal `db:"total_withdrawn" json:"total_withdrawn"` // lifetime debit sum, non-decreasing
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
}

// NewWallet creates a zeroed Wallet for the given user.
func NewWallet(userID int64) *Wallet {
	now := time.Now().UTC()
	return &Wallet{
		UserID:         userID,
		Balance:        decimal.Zero,
		TotalEarned:    decimal.Zero,
		TotalWithdrawn: decimal.Zero,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
