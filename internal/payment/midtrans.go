// internal/payment/midtrans.go
package payment

import (
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/shopspring/decimal"
)

// MidtransGateway implements Gateway on the Midtrans Snap API.
type MidtransGateway struct {
	client    snap.Client
	serverKey string
}

// NewMidtransGateway creates a gateway client for the given server key.
func NewMidtransGateway(serverKey string, production bool) *MidtransGateway {
	env := midtrans.Sandbox
	if production {
		env = midtrans.Production
	}
	var client snap.Client
	client.New(serverKey, env)
	return &MidtransGateway{client: client, serverKey: serverKey}
}

// CreateOrder registers a checkout session with Midtrans and returns the
// snap token plus the hosted payment page URL.
func (g *MidtransGateway) CreateOrder(ctx context.Context, orderID string, amount decimal.Decimal, customer Customer) (*Order, error) {
	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  orderID,
			GrossAmt: amount.IntPart(), // Midtrans expects the amount as int64
		},
		CreditCard: &snap.CreditCardDetails{Secure: true},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: customer.Name,
			Email: customer.Email,
		},
	}

	resp, snapErr := g.client.CreateTransaction(req)
	if snapErr != nil {
		return nil, fmt.Errorf("midtrans create transaction: %s", snapErr.GetMessage())
	}

	return &Order{
		OrderID:     orderID,
		Token:       resp.Token,
		RedirectURL: resp.RedirectURL,
	}, nil
}

// VerifySignature checks a settlement notification's signature key.
// Midtrans signs notifications with sha512(order_id + status_code +
// gross_amount + server_key).
func (g *MidtransGateway) VerifySignature(orderID, statusCode, grossAmount, signatureKey string) bool {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + g.serverKey))
	expected := hex.EncodeToString(sum[:])
	return subtle.ConstantTimeCompare([]byte(expected), []byte(signatureKey)) == 1
}
