// internal/repository/postgres/withdrawal_pg.go
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
)

// WithdrawalRepository implements repository.WithdrawalRepository for PostgreSQL.
type WithdrawalRepository struct {
	// No state; methods receive a DBExecutor directly.
}

// NewWithdrawalRepository creates a new WithdrawalRepository.
func NewWithdrawalRepository(db *sqlx.DB) repository.WithdrawalRepository {
	return &WithdrawalRepository{}
}

const withdrawalColumns = `id, user_id, amount, status,
	account_holder, account_number, bank_name, ifsc_code, upi_id,
	remarks, approved_by, approval_date, completion_date, created_at, updated_at`

// CreateWithdrawal adds a pending withdrawal request.
func (r *WithdrawalRepository) CreateWithdrawal(ctx context.Context, q repository.DBExecutor, w *domain.Withdrawal) error {
	query := `INSERT INTO withdrawals
              (user_id, amount, status, account_holder, account_number, bank_name, ifsc_code, upi_id, remarks, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id`
	err := q.QueryRowContext(ctx, query,
		w.UserID,
		w.Amount,
		w.Status,
		w.BankDetails.AccountHolder,
		w.BankDetails.AccountNumber,
		w.BankDetails.BankName,
		w.BankDetails.IFSCCode,
		w.BankDetails.UPIID,
		w.Remarks,
		w.CreatedAt,
		w.UpdatedAt,
	).Scan(&w.ID)
	if err != nil {
		return fmt.Errorf("failed to create withdrawal: %w", err)
	}
	return nil
}

// GetWithdrawalByID retrieves a withdrawal by its ID.
func (r *WithdrawalRepository) GetWithdrawalByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Withdrawal, error) {
	var w domain.Withdrawal
	query := `SELECT ` + withdrawalColumns + ` FROM withdrawals WHERE id = $1`
	err := q.GetContext(ctx, &w, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get withdrawal %d: %w", id, err)
	}
	return &w, nil
}

// ListByUserID retrieves a user's withdrawals, newest first.
func (r *WithdrawalRepository) ListByUserID(ctx context.Context, q repository.DBExecutor, userID int64) ([]domain.Withdrawal, error) {
	withdrawals := []domain.Withdrawal{}
	query := `SELECT ` + withdrawalColumns + ` FROM withdrawals
              WHERE user_id = $1 ORDER BY created_at DESC, id DESC`
	if err := q.SelectContext(ctx, &withdrawals, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list withdrawals for user %d: %w", userID, err)
	}
	return withdrawals, nil
}

// ListAll retrieves withdrawals across users with an optional status filter.
func (r *WithdrawalRepository) ListAll(ctx context.Context, q repository.DBExecutor, status domain.WithdrawalStatus, limit, offset int) ([]domain.Withdrawal, int64, error) {
	withdrawals := []domain.Withdrawal{}

	// An empty status means no filter; the OR keeps it a single prepared query.
	query := `SELECT ` + withdrawalColumns + ` FROM withdrawals
              WHERE ($1 = '' OR status = $1)
              ORDER BY created_at DESC, id DESC
              LIMIT $2 OFFSET $3`
	if err := q.SelectContext(ctx, &withdrawals, query, string(status), limit, offset); err != nil {
		return nil, 0, fmt.Errorf("failed to list withdrawals: %w", err)
	}

	var totalCount int64
	countQuery := `SELECT COUNT(*) FROM withdrawals WHERE ($1 = '' OR status = $1)`
	if err := q.GetContext(ctx, &totalCount, countQuery, string(status)); err != nil {
		return nil, 0, fmt.Errorf("failed to count withdrawals: %w", err)
	}

	return withdrawals, totalCount, nil
}

// MarkApproved claims the row pending -> approved. The status predicate in
// the WHERE clause makes the claim atomic: of two admins approving the same
// request concurrently, exactly one update affects a row.
func (r *WithdrawalRepository) MarkApproved(ctx context.Context, q repository.DBExecutor, id, adminID int64, remarks string, at time.Time) (bool, error) {
	query := `UPDATE withdrawals
              SET status = $1, approved_by = $2, approval_date = $3,
                  remarks = CASE WHEN $4 <> '' THEN $4 ELSE remarks END,
                  updated_at = $3
              WHERE id = $5 AND status = $6`
	result, err := q.ExecContext(ctx, query,
		domain.WithdrawalStatusApproved, adminID, at, remarks, id, domain.WithdrawalStatusPending)
	if err != nil {
		return false, fmt.Errorf("failed to approve withdrawal %d: %w", id, err)
	}
	return rowClaimed(result, id)
}

// MarkRejected transitions pending -> rejected.
func (r *WithdrawalRepository) MarkRejected(ctx context.Context, q repository.DBExecutor, id int64, remarks string) (bool, error) {
	query := `UPDATE withdrawals
              SET status = $1,
                  remarks = CASE WHEN $2 <> '' THEN $2 ELSE remarks END,
                  updated_at = $3
              WHERE id = $4 AND status = $5`
	result, err := q.ExecContext(ctx, query,
		domain.WithdrawalStatusRejected, remarks, time.Now().UTC(), id, domain.WithdrawalStatusPending)
	if err != nil {
		return false, fmt.Errorf("failed to reject withdrawal %d: %w", id, err)
	}
	return rowClaimed(result, id)
}

// MarkCompleted transitions approved -> completed.
func (r *WithdrawalRepository) MarkCompleted(ctx context.Context, q repository.DBExecutor, id int64, remarks string, at time.Time) (bool, error) {
	query := `UPDATE withdrawals
              SET status = $1, completion_date = $2,
                  remarks = CASE WHEN $3 <> '' THEN $3 ELSE remarks END,
                  updated_at = $2
              WHERE id = $4 AND status = $5`
	result, err := q.ExecContext(ctx, query,
		domain.WithdrawalStatusCompleted, at, remarks, id, domain.WithdrawalStatusApproved)
	if err != nil {
		return false, fmt.Errorf("failed to complete withdrawal %d: %w", id, err)
	}
	return rowClaimed(result, id)
}

func rowClaimed(result sql.Result, id int64) (bool, error) {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected for withdrawal %d: %w", id, err)
	}
	return rowsAffected > 0, nil
}
