// internal/repository/postgres/plan_pg.go
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
)

// PlanRepository implements repository.PlanRepository for PostgreSQL.
type PlanRepository struct {
	// No state; methods receive a DBExecutor directly.
}

// NewPlanRepository creates a new PlanRepository.
func NewPlanRepository(db *sqlx.DB) repository.PlanRepository {
	return &PlanRepository{}
}

const planColumns = `id, name, price, currency, captcha_limit, validity_days,
	earnings_per_captcha, description, is_active, created_at, updated_at`

// CreatePlan inserts a new plan.
func (r *PlanRepository) CreatePlan(ctx context.Context, q repository.DBExecutor, plan *domain.Plan) error {
	query := `INSERT INTO plans (name, price, currency, captcha_limit, validity_days, earnings_per_captcha, description, is_active, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`
	err := q.QueryRowContext(ctx, query,
		plan.Name, plan.Price, plan.Currency, plan.CaptchaLimit, plan.ValidityDays,
		plan.EarningsPerCaptcha, plan.Description, plan.IsActive, plan.CreatedAt, plan.UpdatedAt,
	).Scan(&plan.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && string(pqErr.Code) == uniqueViolation {
			return util.ErrDuplicateEntry
		}
		return fmt.Errorf("failed to create plan: %w", err)
	}
	return nil
}

// GetPlanByID retrieves a plan by its ID.
func (r *PlanRepository) GetPlanByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Plan, error) {
	var plan domain.Plan
	query := `SELECT ` + planColumns + ` FROM plans WHERE id = $1`
	err := q.GetContext(ctx, &plan, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get plan %d: %w", id, err)
	}
	return &plan, nil
}

// GetPlanByName retrieves a plan by its unique name.
func (r *PlanRepository) GetPlanByName(ctx context.Context, q repository.DBExecutor, name string) (*domain.Plan, error) {
	var plan domain.Plan
	query := `SELECT ` + planColumns + ` FROM plans WHERE name = $1`
	err := q.GetContext(ctx, &plan, query, name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get plan by name %s: %w", name, err)
	}
	return &plan, nil
}

// ListPlans retrieves plans, optionally restricted to active ones.
func (r *PlanRepository) ListPlans(ctx context.Context, q repository.DBExecutor, activeOnly bool) ([]domain.Plan, error) {
	plans := []domain.Plan{}
	query := `SELECT ` + planColumns + ` FROM plans
              WHERE ($1 = FALSE OR is_active = TRUE)
              ORDER BY price ASC, id ASC`
	if err := q.SelectContext(ctx, &plans, query, activeOnly); err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	return plans, nil
}

// UpdatePlan overwrites the mutable fields of a plan.
func (r *PlanRepository) UpdatePlan(ctx context.Context, q repository.DBExecutor, plan *domain.Plan) error {
	query := `UPDATE plans
              SET name = $1, price = $2, currency = $3, captcha_limit = $4, validity_days = $5,
                  earnings_per_captcha = $6, description = $7, is_active = $8, updated_at = $9
              WHERE id = $10`
	result, err := q.ExecContext(ctx, query,
		plan.Name, plan.Price, plan.Currency, plan.CaptchaLimit, plan.ValidityDays,
		plan.EarningsPerCaptcha, plan.Description, plan.IsActive, time.Now().UTC(), plan.ID)
	if err != nil {
		return fmt.Errorf("failed to update plan %d: %w", plan.ID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected after updating plan %d: %w", plan.ID, err)
	}
	if rowsAffected == 0 {
		return util.ErrNotFound
	}
	return nil
}

// DeletePlan removes a plan.
func (r *PlanRepository) DeletePlan(ctx context.Context, q repository.DBExecutor, id int64) error {
	result, err := q.ExecContext(ctx, `DELETE FROM plans WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete plan %d: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected after deleting plan %d: %w", id, err)
	}
	if rowsAffected == 0 {
		return util.ErrNotFound
	}
	return nil
}
