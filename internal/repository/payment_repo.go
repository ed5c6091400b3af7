// internal/repository/payment_repo.go
package repository

import (
	"context"

	"captcha-rewards/internal/domain"
)

// PaymentRepository defines the interface for gateway payment records.
type PaymentRepository interface {
	// CreatePayment adds an initiated payment record.
	CreatePayment(ctx context.Context, q DBExecutor, payment *domain.Payment) error
	// GetPaymentByOrderID retrieves a payment by its gateway order id.
	GetPaymentByOrderID(ctx context.Context, q DBExecutor, orderID string) (*domain.Payment, error)
	// MarkStatus updates the payment status and gateway reference by order id.
	MarkStatus(ctx context.Context, q DBExecutor, orderID string, status domain.PaymentStatus, gatewayRef string) error
}
