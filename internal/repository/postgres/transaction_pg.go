// internal/repository/postgres/transaction_pg.go
package postgres

import (
	"context"
	"fmt"
	"time"

	"captcha-rewards/internal/domain"
	"captcha-rewards/internal/repository"
	"captcha-rewards/internal/util"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// TransactionRepository implements repository.TransactionRepository for PostgreSQL.
type TransactionRepository struct {
	// No state; methods receive a DBExecutor directly.
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(db *sqlx.DB) repository.TransactionRepository {
	return &TransactionRepository{}
}

// CreateTransaction appends a ledger entry. Callers run this on the same
// transaction executor as the balance mutation it describes, so the pair
// commits or rolls back as one unit.
func (r *TransactionRepository) CreateTransaction(ctx context.Context, q repository.DBExecutor, transaction *domain.Transaction) error {
	query := `INSERT INTO transactions (user_id, wallet_id, type, amount, description, reference_id, status, created_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`

	err := q.QueryRowContext(ctx, query,
		transaction.UserID,
		transaction.WalletID,
		transaction.Type,
		transaction.Amount,
		transaction.Description,
		transaction.ReferenceID,
		transaction.Status,
		transaction.CreatedAt,
	).Scan(&transaction.ID)

	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// GetTransactionsByUserID retrieves a newest-first page of ledger entries for
// a user plus the total count for pagination.
func (r *TransactionRepository) GetTransactionsByUserID(ctx context.Context, q repository.DBExecutor, userID int64, limit, offset int) ([]domain.Transaction, int64, error) {
	transactions := []domain.Transaction{}

	query := `
		SELECT id, user_id, wallet_id, type, amount, description, reference_id, status, created_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`
	err := q.SelectContext(ctx, &transactions, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch transactions for user %d: %w", userID, err)
	}

	var totalCount int64
	countQuery := `SELECT COUNT(*) FROM transactions WHERE user_id = $1`
	err = q.GetContext(ctx, &totalCount, countQuery, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get total transaction count for user %d: %w", userID, err)
	}

	return transactions, totalCount, nil
}

// SumCompletedSince sums completed entries of the given type created at or
// after since. Used for the earnings statistics endpoint.
func (r *TransactionRepository) SumCompletedSince(ctx context.Context, q repository.DBExecutor, userID int64, txType domain.TransactionType, since time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE user_id = $1 AND type = $2 AND status = $3 AND created_at >= $4`
	err := q.GetContext(ctx, &total, query, userID, txType, domain.TransactionStatusCompleted, since)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum %s transactions for user %d: %w", txType, userID, err)
	}
	return total, nil
}

// RedeemProof records a proof id as used. The primary key on proof_id
// arbitrates concurrent submissions of the same proof across processes:
// exactly one insert lands, every other caller sees ErrDuplicateEntry.
func (r *TransactionRepository) RedeemProof(ctx context.Context, q repository.DBExecutor, proofID string, userID int64) error {
	query := `INSERT INTO proof_redemptions (proof_id, user_id, redeemed_at)
              VALUES ($1, $2, $3)
              ON CONFLICT (proof_id) DO NOTHING`
	result, err := q.ExecContext(ctx, query, proofID, userID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to redeem proof %s: %w", proofID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected after redeeming proof %s: %w", proofID, err)
	}
	if rowsAffected == 0 {
		return util.ErrDuplicateEntry
	}
	return nil
}
