package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/weforyou/ledger/internal/domain"
)

type webhookEnvelope struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string `json:"id"`
				OrderID string `json:"order_id"`
				Status  string `json:"status"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// WebhookResult tells the gateway what happened to a delivery.
type WebhookResult struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// HandleWebhook settles a donation from a signed gateway event. Deliveries
// for unknown orders or already-settled donations are acknowledged so the
// gateway stops retrying.
func (s *Service) HandleWebhook(ctx context.Context, body []byte, signature string) (*WebhookResult, error) {
	if !s.gateway.VerifyWebhook(body, signature) {
		return nil, fmt.Errorf("%w: webhook signature mismatch", domain.ErrUnauthorized)
	}
	var env webhookEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, domain.Invalid("body", "webhook payload is not valid JSON")
	}
	entity := env.Payload.Payment.Entity

	var verified bool
	switch env.Event {
	case "payment.captured":
		verified = true
	case "payment.failed":
	default:
		return &WebhookResult{Status: "ignored", Reason: "unhandled event"}, nil
	}
	if entity.OrderID == "" {
		return &WebhookResult{Status: "ignored", Reason: "missing order id"}, nil
	}

	d, err := s.ledger.GetDonationByOrderID(ctx, entity.OrderID)
	if errors.Is(err, domain.ErrNotFound) {
		return &WebhookResult{Status: "ignored", Reason: "order not found"}, nil
	}
	if err != nil {
		return nil, err
	}
	if d.Status != domain.DonationPending {
		return &WebhookResult{Status: "already_processed"}, nil
	}

	_, err = s.settle(ctx, "webhook", d.ID, entity.OrderID, entity.ID, verified, body)
	switch {
	case err == nil:
		return &WebhookResult{Status: "ok"}, nil
	case errors.Is(err, domain.ErrPaymentVerification), errors.Is(err, domain.ErrConflict):
		s.logger.Warn().Err(err).Str("order_id", entity.OrderID).Str("event", env.Event).Msg("webhook settlement skipped")
		return &WebhookResult{Status: "ok", Reason: "payment failed"}, nil
	default:
		return nil, err
	}
}
