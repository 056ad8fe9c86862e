package pledge

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/weforyou/ledger/internal/domain"
	"github.com/weforyou/ledger/internal/metrics"
)

// Charger opens (and with the mock gateway, settles) the donation for one
// due pledge.
type Charger interface {
	ChargePledge(ctx context.Context, p domain.Pledge) (*domain.Donation, error)
}

type SchedulerOptions struct {
	Pledges      domain.PledgeRepository
	Charger      Charger
	PollInterval time.Duration
	RetryBackoff time.Duration
	ClaimLease   time.Duration
	BatchSize    int
	Logger       zerolog.Logger
	Now          func() time.Time
}

// Scheduler claims due pledges and charges them. Several schedulers may run
// against the same database; claims skip rows locked by another instance.
type Scheduler struct {
	opts SchedulerOptions
}

func NewScheduler(opts SchedulerOptions) *Scheduler {
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Minute
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = 6 * time.Hour
	}
	if opts.ClaimLease <= 0 {
		opts.ClaimLease = 10 * time.Minute
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 50
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Scheduler{opts: opts}
}

// RunSummary counts what one pass did.
type RunSummary struct {
	Claimed int
	Settled int
	Pending int
	Failed  int
}

// Run charges due pledges every poll interval until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	s.opts.Logger.Info().Dur("interval", s.opts.PollInterval).Msg("pledge scheduler: started")
	ticker := time.NewTicker(s.opts.PollInterval)
	defer ticker.Stop()
	for {
		if _, err := s.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.opts.Logger.Error().Err(err).Msg("pledge scheduler: pass failed")
		}
		select {
		case <-ctx.Done():
			s.opts.Logger.Info().Msg("pledge scheduler: stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunOnce claims one batch of due pledges and charges each of them. A failed
// charge is recorded on the pledge and retried after the backoff; the pledge
// status is never changed here.
func (s *Scheduler) RunOnce(ctx context.Context) (RunSummary, error) {
	var sum RunSummary
	now := s.opts.Now()
	due, err := s.opts.Pledges.ClaimDue(ctx, now, now.Add(-s.opts.RetryBackoff), s.opts.ClaimLease, s.opts.BatchSize)
	if err != nil {
		return sum, err
	}
	sum.Claimed = len(due)

	for _, p := range due {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		log := s.opts.Logger.With().Str("pledge_id", p.ID).Str("amount", p.Amount.String()).Logger()
		d, err := s.opts.Charger.ChargePledge(ctx, p)
		if err != nil {
			sum.Failed++
			metrics.RecordPledgeCharge("failed")
			log.Warn().Err(err).Msg("pledge scheduler: charge failed")
			if recErr := s.opts.Pledges.RecordChargeFailure(ctx, p.ID, now, err.Error()); recErr != nil {
				log.Error().Err(recErr).Msg("pledge scheduler: record failure")
			}
			continue
		}
		if d.Status == domain.DonationSuccess {
			sum.Settled++
			metrics.RecordPledgeCharge("settled")
		} else {
			sum.Pending++
			metrics.RecordPledgeCharge("pending")
		}
		log.Info().Str("donation_id", d.ID).Str("status", string(d.Status)).Msg("pledge scheduler: charged")
	}
	if sum.Claimed > 0 {
		s.opts.Logger.Info().
			Int("claimed", sum.Claimed).
			Int("settled", sum.Settled).
			Int("pending", sum.Pending).
			Int("failed", sum.Failed).
			Msg("pledge scheduler: pass complete")
	}
	return sum, nil
}
