// internal/repository/plan_repo.go
package repository

import (
	"context"

	"captcha-rewards/internal/domain"
)

// PlanRepository defines the interface for subscription plan operations.
type PlanRepository interface {
	// CreatePlan adds a plan. Returns util.ErrDuplicateEntry on a name clash.
	CreatePlan(ctx context.Context, q DBExecutor, plan *domain.Plan) error
	// GetPlanByID retrieves a plan by its ID.
	GetPlanByID(ctx context.Context, q DBExecutor, id int64) (*domain.Plan, error)
	// GetPlanByName retrieves a plan by its unique name.
	GetPlanByName(ctx context.Context, q DBExecutor, name string) (*domain.Plan, error)
	// ListPlans retrieves plans, optionally restricted to active ones.
	ListPlans(ctx context.Context, q DBExecutor, activeOnly bool) ([]domain.Plan, error)
	// UpdatePlan overwrites the mutable fields of a plan.
	UpdatePlan(ctx context.Context, q DBExecutor, plan *domain.Plan) error
	// DeletePlan removes a plan.
	DeletePlan(ctx context.Context, q DBExecutor, id int64) error
}
