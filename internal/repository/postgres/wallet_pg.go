// internal/repository/postgres/wallet_pg.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"captcha-rewards/internal/domain"
	"captcha-rewards/internal/repository"
	"captcha-rewards/internal/util"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// WalletRepository implements repository.WalletRepository for PostgreSQL.
type WalletRepository struct {
	// No state; methods receive a DBExecutor directly.
}

// NewWalletRepository creates a new WalletRepository.
func NewWalletRepository(db *sqlx.DB) repository.WalletRepository {
	return &WalletRepository{}
}

// EnsureWallet returns the user's wallet, creating a zeroed one if absent.
// The INSERT is keyed by the unique user_id constraint with DO NOTHING on
// conflict, so two concurrent first accesses produce exactly one wallet and
// both callers read the same row back.
func (r *WalletRepository) EnsureWallet(ctx context.Context, q repository.DBExecutor, userID int64) (*domain.Wallet, error) {
	now := time.Now().UTC()
	insert := `INSERT INTO wallets (user_id, balance, total_earned, total_withdrawn, created_at, updated_at)
               VALUES ($1, 0, 0, 0, $2, $2)
               ON CONFLICT (user_id) DO NOTHING`
	if _, err := q.ExecContext(ctx, insert, userID, now); err != nil {
		return nil, fmt.Errorf("failed to ensure wallet for user %d: %w", userID, err)
	}
	return r.GetWalletByUserID(ctx, q, userID)
}

// GetWalletByUserID retrieves a wallet by its owning user.
func (r *WalletRepository) GetWalletByUserID(ctx context.Context, q repository.DBExecutor, userID int64) (*domain.Wallet, error) {
	var wallet domain.Wallet
	query := `SELECT id, user_id, balance, total_earned, total_withdrawn, created_at, updated_at
              FROM wallets WHERE user_id = $1`
	err := q.GetContext(ctx, &wallet, query, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet for user %d: %w", userID, err)
	}
	return &wallet, nil
}

// Credit atomically adds amount to balance and total_earned as a single
// UPDATE, so the invariant balance == total_earned - total_withdrawn is
// never observable as broken.
func (r *WalletRepository) Credit(ctx context.Context, q repository.DBExecutor, userID int64, amount decimal.Decimal) error {
	query := `UPDATE wallets
              SET balance = balance + $1, total_earned = total_earned + $1, updated_at = $2
              WHERE user_id = $3`
	result, err := q.ExecContext(ctx, query, amount, time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("failed to credit wallet for user %d: %w", userID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected after crediting wallet for user %d: %w", userID, err)
	}
	if rowsAffected == 0 {
		return util.ErrWalletNotFound
	}
	return nil
}

// Debit atomically subtracts amount, with the sufficiency check folded into
// the WHERE clause. Two debits racing on the same wallet serialize on the
// row; the one that finds balance < amount at write time affects zero rows
// and reports ErrInsufficientBalance. This is the single point the whole
// withdrawal workflow relies on for correctness.
func (r *WalletRepository) Debit(ctx context.Context, q repository.DBExecutor, userID int64, amount decimal.Decimal) error {
	query := `UPDATE wallets
              SET balance = balance - $1, total_withdrawn = total_withdrawn + $1, updated_at = $2
              WHERE user_id = $3 AND balance >= $1`
	result, err := q.ExecContext(ctx, query, amount, time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("failed to debit wallet for user %d: %w", userID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected after debiting wallet for user %d: %w", userID, err)
	}
	if rowsAffected == 0 {
		// Either the wallet is missing or the balance moved below the amount
		// between the caller's check and now. Distinguish for the caller.
		if _, getErr := r.GetWalletByUserID(ctx, q, userID); getErr != nil {
			return getErr
		}
		return util.ErrInsufficientBalance
	}
	return nil
}
