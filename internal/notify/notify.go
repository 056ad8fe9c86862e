// Package notify sends donor-facing confirmations. The only transport is a
// structured log line; SMS and email providers plug in behind Notifier.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/weforyou/ledger/internal/domain"
)

// Recipient is where a message goes. Phone wins over email.
type Recipient struct {
	Name  string
	Email string
	Phone string
}

type Notifier interface {
	DonationSettled(ctx context.Context, to Recipient, d domain.Donation) error
	PledgeChargeDue(ctx context.Context, to Recipient, p domain.Pledge, orderID string) error
}

// LogNotifier writes every message to the logger instead of delivering it.
type LogNotifier struct {
	logger zerolog.Logger
	org    string
}

func NewLogNotifier(logger zerolog.Logger, orgName string) *LogNotifier {
	return &LogNotifier{logger: logger, org: orgName}
}

func (n *LogNotifier) DonationSettled(_ context.Context, to Recipient, d domain.Donation) error {
	var msg string
	if d.CampaignTitle != "" {
		msg = fmt.Sprintf("Thank you for your donation of ₹%s to %s! Your payment is confirmed.", d.Amount, d.CampaignTitle)
	} else {
		msg = fmt.Sprintf("Thank you for your donation of ₹%s! Your payment is confirmed.", d.Amount)
	}
	if d.ReceiptNumber != "" {
		msg += " Receipt " + d.ReceiptNumber + " is ready to download."
	}
	n.send(to, "Donation confirmation", msg, d.ID)
	return nil
}

func (n *LogNotifier) PledgeChargeDue(_ context.Context, to Recipient, p domain.Pledge, orderID string) error {
	msg := fmt.Sprintf("Your %s pledge of ₹%s to %s is due. Complete the payment for order %s.", p.Frequency, p.Amount, p.CampaignTitle, orderID)
	n.send(to, "Pledge payment due", msg, p.ID)
	return nil
}

func (n *LogNotifier) send(to Recipient, subject, msg, related string) {
	channel, address := channelFor(to)
	if channel == "" {
		n.logger.Warn().Str("related_to", related).Msg("notify: recipient has no phone or email")
		return
	}
	n.logger.Info().
		Str("channel", channel).
		Str("to", address).
		Str("subject", subject).
		Str("related_to", related).
		Msgf("notify: %s - %s", msg, n.org)
}

func channelFor(to Recipient) (string, string) {
	if phone := strings.TrimSpace(to.Phone); phone != "" {
		return "sms", phone
	}
	if email := strings.TrimSpace(to.Email); strings.Contains(email, "@") {
		return "email", email
	}
	return "", ""
}

var _ Notifier = (*LogNotifier)(nil)
