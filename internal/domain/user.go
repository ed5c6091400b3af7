// internal/domain/user.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role identifies the authorization level of a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User represents an account that solves captchas and earns rewards.
type User struct {
	ID                  int64           `db:"id" json:"id"`
	Name                string          `db:"name" json:"name"`
	Email               string          `db:"email" json:"email"`
	PasswordHash        string          `db:"password_hash" json:"-"`
	Role                Role            `db:"role" json:"role"`
	PlanID              *int64          `db:"plan_id" json:"plan_id"`         // nil until a plan is assigned
	PlanExpiry          *time.Time      `db:"plan_expiry" json:"plan_expiry"` // nil until a plan is assigned
	TotalCaptchasSolved int64           `db:"total_captchas_solved" json:"total_captchas_solved"`
	TotalEarnings       decimal.Decimal `db:"total_earnings" json:"total_earnings"`
	CreatedAt           time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time       `db:"updated_at" json:"updated_at"`
}

// NewUser creates a new User instance with the given credentials.
func NewUser(name, email, passwordHash string, role Role) *User {
	now := time.Now().UTC()
	return &User{
		Name:          name,
		Email:         email,
		PasswordHash:  passwordHash,
		Role:          role,
		TotalEarnings: decimal.Zero,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// HasActivePlan reports whether the user holds a plan whose expiry is still
// in the future at the given instant.
func (u *User) HasActivePlan(now time.Time) bool {
	return u.PlanID != nil && u.PlanExpiry != nil && now.Before(*u.PlanExpiry)
}
