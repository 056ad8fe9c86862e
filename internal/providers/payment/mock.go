package payment

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"github.com/weforyou/ledger/internal/domain"
)

// Mock opens fake orders and accepts every checkout callback. It is only
// constructed when the configuration allows mock payments outside production.
type Mock struct {
	webhookSecret string
}

func NewMock(webhookSecret string) *Mock {
	return &Mock{webhookSecret: webhookSecret}
}

func (m *Mock) KeyID() string {
	return MockKeyID
}

func (m *Mock) CreateOrder(_ context.Context, req OrderRequest) (*Order, error) {
	order := &Order{
		ID:       "order_mock_" + shortID(),
		Amount:   req.Amount.Paise(),
		Currency: req.Currency,
		Status:   "created",
	}
	order.Raw, _ = json.Marshal(order)
	return order, nil
}

// VerifyPayment bypasses the signature; order matching still happens in the ledger.
func (m *Mock) VerifyPayment(_, _, _ string) bool {
	return true
}

func (m *Mock) VerifyWebhook(body []byte, signature string) bool {
	return validSignature(m.webhookSecret, body, signature)
}

func (m *Mock) Refund(_ context.Context, _ string, _ domain.Money) (*Refund, error) {
	return &Refund{ID: "rfnd_mock_" + shortID(), Status: "processed"}, nil
}

func shortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

var _ Gateway = (*Mock)(nil)
