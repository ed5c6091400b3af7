// internal/repository/wallet_repo.go
package repository

import (
	"context"

	"captcha-rewards/internal/domain"

	"github.com/shopspring/decimal"
)

// WalletRepository defines the interface for wallet data operations.
//
// Credit and Debit are the only balance writers in the system. Both are
// single conditional UPDATE statements so that correctness holds even when
// several server processes mutate the same wallet concurrently; application
// code never does read-then-write on a balance.
type WalletRepository interface {
	// EnsureWallet returns the user's wallet, creating a zeroed one if absent.
	// Idempotent under concurrent first access: creation is an upsert keyed by
	// the unique user_id constraint.
	EnsureWallet(ctx context.Context, q DBExecutor, userID int64) (*domain.Wallet, error)
	// GetWalletByUserID retrieves a wallet by its owning user.
	GetWalletByUserID(ctx context.Context, q DBExecutor, userID int64) (*domain.Wallet, error)
	// Credit atomically adds amount to balance and total_earned.
	Credit(ctx context.Context, q DBExecutor, userID int64, amount decimal.Decimal) error
	// Debit atomically subtracts amount from balance and adds it to
	// total_withdrawn, but only if balance >= amount at write time.
	// Returns util.ErrInsufficientBalance otherwise.
	Debit(ctx context.Context, q DBExecutor, userID int64, amount decimal.Decimal) error
}
