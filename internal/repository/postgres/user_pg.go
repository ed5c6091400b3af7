// internal/repository/postgres/user_pg.go
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
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// uniqueViolation is the PostgreSQL error code for unique constraint violations.
const uniqueViolation = "23505"

// UserRepository implements repository.UserRepository for PostgreSQL.
type UserRepository struct {
	// No state; methods receive a DBExecutor directly.
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sqlx.DB) repository.UserRepository {
	return &UserRepository{}
}

const userColumns = `id, name, email, password_hash, role, plan_id, plan_expiry,
	total_captchas_solved, total_earnings, created_at, updated_at`

// CreateUser inserts a new user.
func (r *UserRepository) CreateUser(ctx context.Context, q repository.DBExecutor, user *domain.User) error {
	query := `INSERT INTO users (name, email, password_hash, role, total_captchas_solved, total_earnings, created_at, updated_at)
              VALUES ($1, $2, $3, $4, 0, 0, $5, $6) RETURNING id`
	err := q.QueryRowContext(ctx, query,
		user.Name, user.Email, user.PasswordHash, user.Role, user.CreatedAt, user.UpdatedAt,
	).Scan(&user.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && string(pqErr.Code) == uniqueViolation {
			return util.ErrDuplicateEntry
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByID retrieves a user by its ID.
func (r *UserRepository) GetUserByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.User, error) {
	var user domain.User
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	err := q.GetContext(ctx, &user, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID %d: %w", id, err)
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email.
func (r *UserRepository) GetUserByEmail(ctx context.Context, q repository.DBExecutor, email string) (*domain.User, error) {
	var user domain.User
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	err := q.GetContext(ctx, &user, query, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email %s: %w", email, err)
	}
	return &user, nil
}

// AssignPlan sets the user's plan and expiry.
func (r *UserRepository) AssignPlan(ctx context.Context, q repository.DBExecutor, userID, planID int64, expiry time.Time) error {
	query := `UPDATE users SET plan_id = $1, plan_expiry = $2, updated_at = $3 WHERE id = $4`
	result, err := q.ExecContext(ctx, query, planID, expiry, time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("failed to assign plan %d to user %d: %w", planID, userID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected after assigning plan to user %d: %w", userID, err)
	}
	if rowsAffected == 0 {
		return util.ErrUserNotFound
	}
	return nil
}

// IncrementSolveCounters bumps the lifetime solved count and earnings total.
func (r *UserRepository) IncrementSolveCounters(ctx context.Context, q repository.DBExecutor, userID int64, earned decimal.Decimal) error {
	query := `UPDATE users
              SET total_captchas_solved = total_captchas_solved + 1,
                  total_earnings = total_earnings + $1,
                  updated_at = $2
              WHERE id = $3`
	result, err := q.ExecContext(ctx, query, earned, time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("failed to increment solve counters for user %d: %w", userID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected after incrementing counters for user %d: %w", userID, err)
	}
	if rowsAffected == 0 {
		return util.ErrUserNotFound
	}
	return nil
}
