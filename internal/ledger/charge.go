package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/weforyou/ledger/internal/domain"
	"github.com/weforyou/ledger/internal/notify"
)

// ChargePledge opens the recurring donation for a due pledge. With the mock
// gateway the donation settles at once and the pledge advances inside that
// settlement. With a real gateway the donation stays pending and the donor is
// asked to complete the payment; the pledge advances when it settles.
func (s *Service) ChargePledge(ctx context.Context, p domain.Pledge) (*domain.Donation, error) {
	if p.Status != domain.PledgeActive {
		return nil, fmt.Errorf("%w: pledge is %s", domain.ErrConflict, p.Status)
	}
	campaignID, pledgeID := p.CampaignID, p.ID
	checkout, err := s.CreateDonation(ctx, domain.DonationIntent{
		CampaignID: &campaignID,
		UserID:     p.UserID,
		Amount:     p.Amount,
		Currency:   p.Currency,
		Type:       domain.DonationRecurring,
		PledgeID:   &pledgeID,
	})
	if err != nil {
		return nil, err
	}

	if s.MockPayments() {
		paymentRef := "pay_mock_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
		return s.settle(ctx, "pledge", checkout.DonationID, checkout.Order.ID, paymentRef, true, nil)
	}

	d := checkout.Donation
	if s.notifier != nil && s.users != nil {
		// The order is open either way; a missed reminder is not a failed charge.
		user, err := s.users.GetByID(ctx, p.UserID)
		if err != nil {
			s.logger.Warn().Err(err).Str("pledge_id", p.ID).Msg("pledge donor lookup failed")
			return &d, nil
		}
		to := notify.Recipient{Name: user.FullName, Email: user.Email, Phone: user.Phone}
		if err := s.notifier.PledgeChargeDue(ctx, to, p, checkout.Order.ID); err != nil {
			s.logger.Warn().Err(err).Str("pledge_id", p.ID).Msg("pledge notification failed")
		}
	}
	return &d, nil
}
