// internal/domain/plan.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Plan is a subscription granting captcha-solving eligibility and the payout
// rate the wallet service credits per correct answer. The ledger core
// consumes plans read-only.
type Plan struct {
	ID                 int64           `db:"id" json:"id"`
	Name               string          `db:"name" json:"name"`
	Price              decimal.Decimal `db:"price" json:"price"`
	Currency           string          `db:"currency" json:"currency"`
	CaptchaLimit       int             `db:"captcha_limit" json:"captcha_limit"`
	ValidityDays       int             `db:"validity_days" json:"validity_days"`
	EarningsPerCaptcha decimal.Decimal `db:"earnings_per_captcha" json:"earnings_per_captcha"`
	Description        string          `db:"description" json:"description"`
	IsActive           bool            `db:"is_active" json:"is_active"`
	CreatedAt          time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time       `db:"updated_at" json:"updated_at"`
}

// DemoPlanName is the reserved name of the free starter plan assigned to new
// users who have not purchased anything yet.
const DemoPlanName = "Demo"

// NewPlan creates a new active Plan instance.
func NewPlan(name string, price decimal.Decimal, captchaLimit, validityDays int, earningsPerCaptcha decimal.Decimal, description string) *Plan {
	now := time.Now().UTC()
	return &Plan{
		Name:               name,
		Price:              price,
		Currency:           "INR",
		CaptchaLimit:       captchaLimit,
		ValidityDays:       validityDays,
		EarningsPerCaptcha: earningsPerCaptcha,
		Description:        description,
		IsActive:           true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// NewDemoPlan creates the free one-day plan that grants access without payouts.
func NewDemoPlan() *Plan {
	p := NewPlan(DemoPlanName, decimal.Zero, 10, 1, decimal.Zero, "Demo plan - access to captchas without earning rewards")
	return p
}

// ExpiryFrom returns the expiry instant for a plan assigned at the given time.
func (p *Plan) ExpiryFrom(now time.Time) time.Time {
	return now.AddDate(0, 0, p.ValidityDays)
}
