// Package pledge manages recurring donation pledges and the loop that
// charges them when they fall due.
package pledge

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/weforyou/ledger/internal/domain"
)

type Service struct {
	pledges   domain.PledgeRepository
	campaigns domain.CampaignRepository
	logger    zerolog.Logger
	now       func() time.Time
}

func NewService(pledges domain.PledgeRepository, campaigns domain.CampaignRepository, logger zerolog.Logger) *Service {
	return &Service{pledges: pledges, campaigns: campaigns, logger: logger, now: time.Now}
}

// CreateInput is a donor's request to give on a schedule.
type CreateInput struct {
	UserID     string
	CampaignID string
	Amount     domain.Money
	Frequency  string
}

// Create opens an active pledge whose first charge is one interval away.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Pledge, error) {
	if in.Amount <= 0 {
		return nil, domain.Invalid("amount", "amount must be greater than zero")
	}
	freq, err := domain.ParseFrequency(in.Frequency)
	if err != nil {
		return nil, err
	}
	if in.CampaignID == "" {
		return nil, domain.Invalid("campaign_id", "campaign_id is required")
	}
	campaign, err := s.campaigns.GetByID(ctx, in.CampaignID)
	if err != nil {
		return nil, err
	}
	if campaign.Status != domain.CampaignActive {
		return nil, fmt.Errorf("%w: campaign is %s", domain.ErrConflict, campaign.Status)
	}
	if !campaign.AllowRecurring {
		return nil, domain.Invalid("campaign_id", "campaign does not accept recurring pledges")
	}

	p, err := s.pledges.Create(ctx, domain.Pledge{
		UserID:       in.UserID,
		CampaignID:   in.CampaignID,
		Amount:       in.Amount,
		Currency:     domain.CurrencyINR,
		Frequency:    freq,
		NextChargeAt: freq.Next(s.now()),
	})
	if err != nil {
		return nil, err
	}
	p.CampaignTitle = campaign.Title
	s.logger.Info().Str("pledge_id", p.ID).Str("frequency", string(freq)).Msg("pledge created")
	return p, nil
}

// Act applies a donor action. Only the owner may act on a pledge, and the
// transition is checked against the version that was read.
func (s *Service) Act(ctx context.Context, pledgeID, userID string, action domain.PledgeAction) (*domain.Pledge, error) {
	p, err := s.pledges.GetByID(ctx, pledgeID)
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, fmt.Errorf("%w: pledge belongs to another account", domain.ErrForbidden)
	}
	to, err := p.Status.NextStatus(action)
	if err != nil {
		return nil, err
	}

	var next *time.Time
	if to == domain.PledgeActive {
		// Resuming restarts the schedule one interval out; periods missed
		// while paused are never charged.
		t := p.Frequency.Next(s.now())
		next = &t
	}
	updated, err := s.pledges.Transition(ctx, p.ID, p.Status, p.Version, to, next)
	if err != nil {
		return nil, err
	}
	s.logger.Info().
		Str("pledge_id", p.ID).
		Str("from", string(p.Status)).
		Str("to", string(to)).
		Msg("pledge transitioned")
	return updated, nil
}

func (s *Service) ListMine(ctx context.Context, userID string) ([]domain.Pledge, error) {
	return s.pledges.ListByUser(ctx, userID)
}
