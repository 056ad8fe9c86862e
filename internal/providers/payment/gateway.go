// Package payment wraps the payment gateway used to open orders, verify
// checkout callbacks and issue refunds.
package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"github.com/weforyou/ledger/internal/domain"
)

// MockKeyID is returned to the browser when the gateway is bypassed.
const MockKeyID = "mock_key"

// OrderRequest describes an order to open. Receipt is our donation id.
type OrderRequest struct {
	Amount   domain.Money
	Currency string
	Receipt  string
	Notes    map[string]string
}

// Order is the gateway order the browser pays against. Amount is in paise.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
	Raw      []byte `json:"-"`
}

// Refund is a processed gateway refund.
type Refund struct {
	ID     string
	Status string
	Raw    []byte
}

// Gateway is implemented by the Razorpay client and the development mock.
type Gateway interface {
	KeyID() string
	CreateOrder(ctx context.Context, req OrderRequest) (*Order, error)
	// VerifyPayment checks the checkout callback signature for orderID.
	VerifyPayment(orderID, paymentID, signature string) bool
	// VerifyWebhook checks the X-Razorpay-Signature of a raw webhook body.
	VerifyWebhook(body []byte, signature string) bool
	Refund(ctx context.Context, paymentID string, amount domain.Money) (*Refund, error)
}

// Signature computes the checkout signature, hex HMAC-SHA256 of
// "order_id|payment_id" keyed with the API secret.
func Signature(secret, orderID, paymentID string) string {
	return sign(secret, []byte(orderID+"|"+paymentID))
}

// WebhookSignature computes the signature of a webhook body.
func WebhookSignature(secret string, body []byte) string {
	return sign(secret, body)
}

func sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func validSignature(secret string, payload []byte, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	return hmac.Equal([]byte(sign(secret, payload)), []byte(signature))
}
