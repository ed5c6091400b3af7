// internal/repository/transaction_repo.go
package repository

import (
	"context"
	"time"

	"captcha-rewards/internal/domain"

	"github.com/shopspring/decimal"
)

// TransactionRepository defines the interface for ledger entry operations.
// The transactions table is append-only; there are no update or delete methods.
type TransactionRepository interface {
	// CreateTransaction appends a ledger entry.
	CreateTransaction(ctx context.Context, q DBExecutor, transaction *domain.Transaction) error
	// GetTransactionsByUserID retrieves a newest-first page of entries plus the total count.
	GetTransactionsByUserID(ctx context.Context, q DBExecutor, userID int64, limit, offset int) ([]domain.Transaction, int64, error)
	// SumCompletedSince sums completed entries of the given type created at or after since.
	SumCompletedSince(ctx context.Context, q DBExecutor, userID int64, txType domain.TransactionType, since time.Time) (decimal.Decimal, error)
	// RedeemProof records a proof id as used. Returns util.ErrDuplicateEntry
	// if the proof was already redeemed.
	RedeemProof(ctx context.Context, q DBExecutor, proofID string, userID int64) error
}
