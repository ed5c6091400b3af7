// internal/domain/transaction.go
package domain

import (
	"time"

	"github.com/shopspring/decimal" // For precise monetary calculations
)

// TransactionType defines the direction of a ledger entry.
type TransactionType string

const (
	TransactionTypeCredit TransactionType = "credit"
	TransactionTypeDebit  TransactionType = "debit"
)

// TransactionStatus defines the status of a ledger entry. The core only ever
// writes completed entries; pending/failed exist for external settlement flows.
type TransactionStatus string

const (
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusFailed    TransactionStatus = "failed"
)

// Transaction is an immutable audit record explaining a single balance
// mutation. Rows are append-only: never updated, never deleted. The sum of
// completed credits must equal the wallet's TotalEarned, and the sum of
// completed debits its TotalWithdrawn.
type Transaction struct {
	ID          int64             `db:"id" json:"id"`
	UserID      int64             `db:"user_id" json:"user_id"`
	WalletID    int64             `db:"wallet_id" json:"wallet_id"`
	Type        TransactionType   `db:"type" json:"type"`
	Amount      decimal.Decimal   `db:"amount" json:"amount"` // always > 0; Type carries the sign
	Description string            `db:"description" json:"description"`
	ReferenceID *string           `db:"reference_id" json:"reference_id"` // withdrawal id or proof id that caused it
	Status      TransactionStatus `db:"status" json:"status"`
	CreatedAt   time.Time         `db:"created_at" json:"created_at"`
}

// NewTransaction creates a completed Transaction instance.
func NewTransaction(userID, walletID int64, txType TransactionType, amount decimal.Decimal, description string, referenceID *string) *Transaction {
	return &Transaction{
		UserID:      userID,
		WalletID:    walletID,
		Type:        txType,
		Amount:      amount,
		Description: description,
		ReferenceID: referenceID,
		Status:      TransactionStatusCompleted,
		CreatedAt:   time.Now().UTC(),
	}
}
