package ledger

import (
	"context"
	"fmt"

	"github.com/weforyou/ledger/internal/domain"
)

// RefundRequest is an admin refund of a settled donation. A nil Amount
// refunds the full donation.
type RefundRequest struct {
	Amount  *domain.Money
	Note    string
	ActorID string
}

// Refund returns money for a successful donation through the gateway, then
// marks it refunded and takes the amount off the campaign total. The donor
// count of the campaign is left as is.
//
// The donation is claimed before the gateway is called, so concurrent
// refunds of one donation reach the gateway at most once.
func (s *Service) Refund(ctx context.Context, donationID string, req RefundRequest) (*domain.Donation, error) {
	var (
		d      *domain.Donation
		amount domain.Money
	)
	err := s.ledger.WithinTx(ctx, func(tx domain.LedgerTx) error {
		locked, err := tx.LockDonation(ctx, donationID)
		if err != nil {
			return err
		}
		if locked.Status != domain.DonationSuccess {
			return fmt.Errorf("%w: only successful donations can be refunded, donation is %s", domain.ErrConflict, locked.Status)
		}
		amount = locked.Amount
		if req.Amount != nil {
			amount = *req.Amount
		}
		if amount <= 0 || amount > locked.Amount {
			return domain.Invalid("amount", "refund amount must be positive and at most the donation amount")
		}
		if locked.PaymentRef == "" {
			return fmt.Errorf("%w: donation has no payment reference", domain.ErrConflict)
		}
		d = locked
		return tx.ClaimRefund(ctx, donationID)
	})
	if err != nil {
		return nil, err
	}

	refund, err := s.gateway.Refund(ctx, d.PaymentRef, amount)
	if err != nil {
		if rerr := s.ledger.WithinTx(ctx, func(tx domain.LedgerTx) error {
			return tx.ReleaseRefund(ctx, donationID)
		}); rerr != nil {
			s.logger.Error().Err(rerr).Str("donation_id", donationID).Msg("release refund claim")
		}
		return nil, fmt.Errorf("refund %s: %w", donationID, err)
	}

	err = s.ledger.WithinTx(ctx, func(tx domain.LedgerTx) error {
		if err := tx.MarkRefunded(ctx, donationID, amount, refund.ID); err != nil {
			return err
		}
		if d.CampaignID != nil {
			return tx.SubtractFromCampaign(ctx, *d.CampaignID, amount)
		}
		return nil
	})
	if err != nil {
		s.logger.Error().Err(err).
			Str("donation_id", donationID).
			Str("refund_id", refund.ID).
			Msg("gateway refund issued but ledger update failed")
		return nil, err
	}

	s.logger.Info().
		Str("donation_id", donationID).
		Str("refund_id", refund.ID).
		Str("amount", amount.String()).
		Str("actor", req.ActorID).
		Str("note", req.Note).
		Msg("donation refunded")

	d.Status = domain.DonationRefunded
	d.RefundedAmount = amount
	d.RefundRef = refund.ID
	return d, nil
}
