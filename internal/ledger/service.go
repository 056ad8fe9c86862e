// Package ledger opens donations against the payment gateway and settles
// them. Settlement is the only code path that moves a donation out of
// pending or changes campaign aggregates.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/weforyou/ledger/internal/domain"
	"github.com/weforyou/ledger/internal/metrics"
	"github.com/weforyou/ledger/internal/notify"
	"github.com/weforyou/ledger/internal/providers/payment"
)

// ReceiptPublisher renders and stores a freshly issued receipt.
type ReceiptPublisher interface {
	Publish(ctx context.Context, r domain.Receipt) error
}

// Options wires the service dependencies. Receipts and Notifier are optional.
type Options struct {
	Ledger        domain.LedgerRepository
	Campaigns     domain.CampaignRepository
	Users         domain.UserRepository
	Gateway       payment.Gateway
	Receipts      ReceiptPublisher
	Notifier      notify.Notifier
	ReceiptPrefix string
	Logger        zerolog.Logger
	Now           func() time.Time
	NewID         func() string
}

type Service struct {
	ledger        domain.LedgerRepository
	campaigns     domain.CampaignRepository
	users         domain.UserRepository
	gateway       payment.Gateway
	receipts      ReceiptPublisher
	notifier      notify.Notifier
	receiptPrefix string
	logger        zerolog.Logger
	now           func() time.Time
	newID         func() string
}

func NewService(opts Options) *Service {
	s := &Service{
		ledger:        opts.Ledger,
		campaigns:     opts.Campaigns,
		users:         opts.Users,
		gateway:       opts.Gateway,
		receipts:      opts.Receipts,
		notifier:      opts.Notifier,
		receiptPrefix: opts.ReceiptPrefix,
		logger:        opts.Logger,
		now:           opts.Now,
		newID:         opts.NewID,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	if s.receiptPrefix == "" {
		s.receiptPrefix = "WFY"
	}
	return s
}

// Checkout is returned to the browser to open the gateway checkout.
type Checkout struct {
	DonationID string          `json:"donation_id"`
	Order      payment.Order   `json:"order"`
	KeyID      string          `json:"razorpay_key"`
	Donation   domain.Donation `json:"-"`
}

// PaymentCallback is the checkout handler payload posted back by the browser.
type PaymentCallback struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

// MockPayments reports whether orders are settled without a real gateway.
func (s *Service) MockPayments() bool {
	return s.gateway.KeyID() == payment.MockKeyID
}

// CreateDonation validates the intent, opens a gateway order and records a
// pending donation with its first payment attempt. Nothing is stored when
// validation or the gateway fails.
func (s *Service) CreateDonation(ctx context.Context, in domain.DonationIntent) (*Checkout, error) {
	if err := in.Normalize(); err != nil {
		return nil, err
	}
	var campaignTitle string
	if in.CampaignID != nil {
		campaign, err := s.campaigns.GetByID(ctx, *in.CampaignID)
		if err != nil {
			return nil, fmt.Errorf("campaign %s: %w", *in.CampaignID, err)
		}
		if campaign.Status != domain.CampaignActive {
			return nil, fmt.Errorf("%w: campaign is %s", domain.ErrConflict, campaign.Status)
		}
		campaignTitle = campaign.Title
	}

	id := s.newID()
	order, err := s.gateway.CreateOrder(ctx, payment.OrderRequest{
		Amount:   in.Amount,
		Currency: in.Currency,
		Receipt:  id,
		Notes:    map[string]string{"donation_id": id, "type": string(in.Type)},
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	var donation *domain.Donation
	err = s.ledger.WithinTx(ctx, func(tx domain.LedgerTx) error {
		var err error
		if donation, err = tx.InsertDonation(ctx, id, in, order.ID); err != nil {
			return err
		}
		return tx.InsertPaymentAttempt(ctx, id, order.ID, order.Raw)
	})
	if err != nil {
		return nil, fmt.Errorf("record donation: %w", err)
	}
	donation.CampaignTitle = campaignTitle

	s.logger.Info().
		Str("donation_id", id).
		Str("order_id", order.ID).
		Str("type", string(in.Type)).
		Str("amount", in.Amount.String()).
		Msg("donation opened")
	return &Checkout{DonationID: id, Order: *order, KeyID: s.gateway.KeyID(), Donation: *donation}, nil
}

// VerifyDonation settles a donation from the browser callback. requesterID,
// when set, must own the donation. Replaying a confirmation that was already
// applied returns the donation unchanged.
func (s *Service) VerifyDonation(ctx context.Context, donationID, requesterID string, cb PaymentCallback) (*domain.Donation, error) {
	d, err := s.ledger.GetDonation(ctx, donationID)
	if err != nil {
		return nil, err
	}
	if requesterID != "" && d.UserID != requesterID {
		return nil, fmt.Errorf("%w: donation belongs to another account", domain.ErrForbidden)
	}
	verified := s.gateway.VerifyPayment(cb.OrderID, cb.PaymentID, cb.Signature)
	return s.settle(ctx, "verify", donationID, cb.OrderID, cb.PaymentID, verified, nil)
}

// settle applies one payment confirmation inside a single transaction with
// the donation row locked.
func (s *Service) settle(ctx context.Context, source, donationID, orderID, paymentRef string, verified bool, payload []byte) (*domain.Donation, error) {
	started := s.now()
	var (
		outcome domain.SettlementOutcome
		result  domain.Donation
		issued  *domain.Receipt
	)
	err := s.ledger.WithinTx(ctx, func(tx domain.LedgerTx) error {
		d, err := tx.LockDonation(ctx, donationID)
		if err != nil {
			return err
		}
		if outcome, err = domain.DecideSettlement(*d, orderID, verified); err != nil {
			return err
		}
		result = *d

		switch outcome {
		case domain.SettleReplay:
			return nil
		case domain.SettleReject:
			if err := tx.UpdateDonationStatus(ctx, d.ID, domain.DonationPending, domain.DonationFailed, ""); err != nil {
				return err
			}
			if err := tx.UpdatePaymentAttempt(ctx, d.ID, d.OrderID, domain.AttemptFailed, payload); err != nil {
				return err
			}
			if d.Type == domain.DonationEventFee {
				if err := tx.MarkRegistrationPayment(ctx, d.ID, domain.RegistrationFailed); err != nil {
					return err
				}
			}
			result.Status = domain.DonationFailed
			return nil
		}

		if err := tx.UpdateDonationStatus(ctx, d.ID, domain.DonationPending, domain.DonationSuccess, paymentRef); err != nil {
			return err
		}
		if err := tx.UpdatePaymentAttempt(ctx, d.ID, d.OrderID, domain.AttemptSuccess, payload); err != nil {
			return err
		}
		result.Status = domain.DonationSuccess
		result.PaymentRef = paymentRef

		if d.CampaignID != nil {
			first, err := tx.AddCampaignDonor(ctx, *d.CampaignID, d.UserID, d.ID)
			if err != nil {
				return err
			}
			if err := tx.AddToCampaign(ctx, *d.CampaignID, d.Amount, first); err != nil {
				return err
			}
		}
		if d.Want80G {
			seq, err := tx.NextReceiptSequence(ctx)
			if err != nil {
				return err
			}
			if issued, err = tx.InsertReceipt(ctx, s.newReceipt(result, seq, started)); err != nil {
				return err
			}
			result.ReceiptNumber = issued.Number
		}
		if d.PledgeID != nil {
			p, err := tx.LockPledge(ctx, *d.PledgeID)
			if err != nil {
				return err
			}
			if p.Status == domain.PledgeActive {
				if err := tx.RecordPledgeCharge(ctx, p.ID, started, p.AdvanceAfterCharge(started)); err != nil {
					return err
				}
			}
		}
		if d.Type == domain.DonationEventFee {
			return tx.MarkRegistrationPayment(ctx, d.ID, domain.RegistrationPaid)
		}
		return nil
	})
	if err != nil {
		metrics.ObserveSettlement(source, settlementErrorLabel(err), started)
		return nil, err
	}

	switch outcome {
	case domain.SettleReplay:
		metrics.ObserveSettlement(source, "replayed", started)
		return &result, nil
	case domain.SettleReject:
		metrics.ObserveSettlement(source, "rejected", started)
		s.logger.Warn().Str("donation_id", donationID).Str("order_id", orderID).Str("source", source).Msg("payment confirmation rejected")
		return &result, fmt.Errorf("%w: signature or order mismatch", domain.ErrPaymentVerification)
	}

	metrics.ObserveSettlement(source, "applied", started)
	s.logger.Info().Str("donation_id", donationID).Str("payment_ref", paymentRef).Str("source", source).Msg("donation settled")
	s.afterSettle(ctx, result, issued)
	return &result, nil
}

// afterSettle runs the best-effort work that must not undo a committed settlement.
func (s *Service) afterSettle(ctx context.Context, d domain.Donation, issued *domain.Receipt) {
	if issued != nil && s.receipts != nil {
		if err := s.receipts.Publish(ctx, *issued); err != nil {
			s.logger.Error().Err(err).Str("receipt", issued.Number).Msg("receipt render failed; it will be rendered on first download")
		}
	}
	if s.notifier == nil || s.users == nil {
		return
	}
	user, err := s.users.GetByID(ctx, d.UserID)
	if err != nil {
		s.logger.Warn().Err(err).Str("donation_id", d.ID).Msg("notify: donor lookup failed")
		return
	}
	if err := s.notifier.DonationSettled(ctx, notify.Recipient{Name: user.FullName, Email: user.Email, Phone: user.Phone}, d); err != nil {
		s.logger.Warn().Err(err).Str("donation_id", d.ID).Msg("notify failed")
	}
}

func (s *Service) newReceipt(d domain.Donation, seq int64, issuedAt time.Time) domain.Receipt {
	r := domain.Receipt{
		DonationID:    d.ID,
		Number:        domain.ReceiptNumber(s.receiptPrefix, issuedAt, seq),
		FinancialYear: domain.FinancialYear(issuedAt),
		Section80G:    true,
		DonorName:     d.LegalName,
		PAN:           d.PAN,
		Address:       d.Address,
		Amount:        d.Amount,
		Currency:      d.Currency,
		CampaignTitle: d.CampaignTitle,
		PaymentRef:    d.PaymentRef,
		IssuedAt:      issuedAt,
	}
	if r.DonorName == "" {
		r.DonorName = d.DonorName
	}
	return r
}

func settlementErrorLabel(err error) string {
	switch {
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	case errors.Is(err, domain.ErrPaymentVerification):
		return "mismatch"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	}
	return "error"
}

// GetDonation returns a donation visible to requesterID (empty for admins).
func (s *Service) GetDonation(ctx context.Context, id, requesterID string) (*domain.Donation, error) {
	d, err := s.ledger.GetDonation(ctx, id)
	if err != nil {
		return nil, err
	}
	if requesterID != "" && d.UserID != requesterID {
		return nil, domain.ErrNotFound
	}
	return d, nil
}

// ListMyDonations lists a donor's own donations, optionally by status.
func (s *Service) ListMyDonations(ctx context.Context, userID string, status domain.DonationStatus) ([]domain.Donation, error) {
	switch status {
	case "", domain.DonationPending, domain.DonationSuccess, domain.DonationFailed, domain.DonationRefunded:
	default:
		return nil, domain.Invalid("status", "unknown donation status")
	}
	return s.ledger.ListDonationsByUser(ctx, userID, status)
}
