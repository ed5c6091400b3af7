// internal/domain/payment.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus defines the status of a plan purchase at the gateway.
type PaymentStatus string

const (
	PaymentStatusInitiated PaymentStatus = "initiated"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// Payment records a plan purchase flowing through the external payment
// gateway. OrderID is the id handed to the gateway; GatewayRef is whatever
// reference the gateway reports back on settlement.
type Payment struct {
	ID         int64           `db:"id" json:"id"`
	UserID     int64           `db:"user_id" json:"user_id"`
	PlanID     int64           `db:"plan_id" json:"plan_id"`
	Amount     decimal.Decimal `db:"amount" json:"amount"`
	Currency   string          `db:"currency" json:"currency"`
	OrderID    string          `db:"order_id" json:"order_id"`
	GatewayRef string          `db:"gateway_ref" json:"gateway_ref"`
	Status     PaymentStatus   `db:"status" json:"status"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time       `db:"updated_at" json:"updated_at"`
}

// NewPayment creates an initiated Payment for the given order.
func NewPayment(userID, planID int64, amount decimal.Decimal, currency, orderID string) *Payment {
	now := time.Now().UTC()
	return &Payment{
		UserID:    userID,
		PlanID:    planID,
		Amount:    amount,
		Currency:  currency,
		OrderID:   orderID,
		Status:    PaymentStatusInitiated,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
