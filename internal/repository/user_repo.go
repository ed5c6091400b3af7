// internal/repository/user_repo.go
package repository

import (
	"context"
	"time"

	"captcha-rewards/internal/domain"

	"github.com/shopspring/decimal"
)

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	// CreateUser adds a new user to the database.
	CreateUser(ctx context.Context, q DBExecutor, user *domain.User) error
	// GetUserByID retrieves a user by its ID.
	GetUserByID(ctx context.Context, q DBExecutor, id int64) (*domain.User, error)
	// GetUserByEmail retrieves a user by email.
	GetUserByEmail(ctx context.Context, q DBExecutor, email string) (*domain.User, error)
	// AssignPlan sets the user's plan and expiry.
	AssignPlan(ctx context.Context, q DBExecutor, userID, planID int64, expiry time.Time) error
	// IncrementSolveCounters bumps the lifetime solved count and earnings total.
	IncrementSolveCounters(ctx context.Context, q DBExecutor, userID int64, earned decimal.Decimal) error
}
