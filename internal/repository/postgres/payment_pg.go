// internal/repository/postgres/payment_pg.go
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

// PaymentRepository implements repository.PaymentRepository for PostgreSQL.
type PaymentRepository struct {
	// No state; methods receive a DBExecutor directly.
}

// NewPaymentRepository creates a new PaymentRepository.
func NewPaymentRepository(db *sqlx.DB) repository.PaymentRepository {
	return &PaymentRepository{}
}

// CreatePayment inserts an initiated payment record.
func (r *PaymentRepository) CreatePayment(ctx context.Context, q repository.DBExecutor, payment *domain.Payment) error {
	query := `INSERT INTO payments (user_id, plan_id, amount, currency, order_id, gateway_ref, status, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	err := q.QueryRowContext(ctx, query,
		payment.UserID, payment.PlanID, payment.Amount, payment.Currency,
		payment.OrderID, payment.GatewayRef, payment.Status, payment.CreatedAt, payment.UpdatedAt,
	).Scan(&payment.ID)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

// GetPaymentByOrderID retrieves a payment by its gateway order id.
func (r *PaymentRepository) GetPaymentByOrderID(ctx context.Context, q repository.DBExecutor, orderID string) (*domain.Payment, error) {
	var payment domain.Payment
	query := `SELECT id, user_id, plan_id, amount, currency, order_id, gateway_ref, status, created_at, updated_at
              FROM payments WHERE order_id = $1`
	err := q.GetContext(ctx, &payment, query, orderID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get payment for order %s: %w", orderID, err)
	}
	return &payment, nil
}

// MarkStatus updates the payment status and gateway reference by order id.
func (r *PaymentRepository) MarkStatus(ctx context.Context, q repository.DBExecutor, orderID string, status domain.PaymentStatus, gatewayRef string) error {
	query := `UPDATE payments
              SET status = $1,
                  gateway_ref = CASE WHEN $2 <> '' THEN $2 ELSE gateway_ref END,
                  updated_at = $3
              WHERE order_id = $4`
	result, err := q.ExecContext(ctx, query, status, gatewayRef, time.Now().UTC(), orderID)
	if err != nil {
		return fmt.Errorf("failed to update payment for order %s: %w", orderID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected after updating payment for order %s: %w", orderID, err)
	}
	if rowsAffected == 0 {
		return util.ErrNotFound
	}
	return nil
}
