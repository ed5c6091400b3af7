// internal/payment/gateway.go
package payment

import (
	"context"

	"github.com/shopspring/decimal"
)

// Customer identifies the paying user to the gateway.
type Customer struct {
	Name  string
	Email string
}

// Order is the gateway's answer to an order creation request.
type Order struct {
	OrderID     string `json:"order_id"`
	Token       string `json:"token"`        // client-side checkout token
	RedirectURL string `json:"redirect_url"` // hosted payment page
}

// Gateway is the payment provider boundary. The core treats it as a black
// box: it hands over an order id and amount, gets back a checkout token, and
// later asks whether a settlement notification's signature is genuine.
type Gateway interface {
	CreateOrder(ctx context.Context, orderID string, amount decimal.Decimal, customer Customer) (*Order, error)
	VerifySignature(orderID, statusCode, grossAmount, signatureKey string) bool
}
