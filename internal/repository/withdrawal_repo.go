// internal/repository/withdrawal_repo.go
package repository

import (
	"context"
	"time"

	"captcha-rewards/internal/domain"
)

// WithdrawalRepository defines the interface for payout request operations.
//
// The MarkX methods are conditional updates: each succeeds only when the row
// is currently in the state the workflow permits, and reports false otherwise.
// That makes every state transition race-safe without application locks.
type WithdrawalRepository interface {
	// CreateWithdrawal adds a pending withdrawal request.
	CreateWithdrawal(ctx context.Context, q DBExecutor, w *domain.Withdrawal) error
	// GetWithdrawalByID retrieves a withdrawal by its ID.
	GetWithdrawalByID(ctx context.Context, q DBExecutor, id int64) (*domain.Withdrawal, error)
	// ListByUserID retrieves a user's withdrawals, newest first.
	ListByUserID(ctx context.Context, q DBExecutor, userID int64) ([]domain.Withdrawal, error)
	// ListAll retrieves withdrawals across users with optional status filter,
	// newest first, plus the total count for the filter.
	ListAll(ctx context.Context, q DBExecutor, status domain.WithdrawalStatus, limit, offset int) ([]domain.Withdrawal, int64, error)
	// MarkApproved transitions pending -> approved, stamping the approver.
	// Returns false if the row is not currently pending.
	MarkApproved(ctx context.Context, q DBExecutor, id, adminID int64, remarks string, at time.Time) (bool, error)
	// MarkRejected transitions pending -> rejected.
	MarkRejected(ctx context.Context, q DBExecutor, id int64, remarks string) (bool, error)
	// MarkCompleted transitions approved -> completed, stamping the completion date.
	MarkCompleted(ctx context.Context, q DBExecutor, id int64, remarks string, at time.Time) (bool, error)
}
