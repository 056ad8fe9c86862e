package ledger

import (
	"context"

	"github.com/weforyou/ledger/internal/domain"
)

// Reconcile recomputes campaign aggregates from settled donations and
// compares them with the stored values. With repair set, drifting campaigns
// are rewritten to the recomputed values. An empty campaignID audits every
// campaign.
func (s *Service) Reconcile(ctx context.Context, campaignID string, repair bool) ([]domain.CampaignAudit, error) {
	audits, err := s.ledger.AuditCampaigns(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if campaignID != "" && len(audits) == 0 {
		return nil, domain.ErrNotFound
	}

	for i, a := range audits {
		if a.Consistent() {
			continue
		}
		s.logger.Warn().
			Str("campaign_id", a.CampaignID).
			Str("stored_amount", a.StoredAmount.String()).
			Str("computed_amount", a.ComputedAmount.String()).
			Int("stored_donors", a.StoredDonors).
			Int("computed_donors", a.ComputedDonors).
			Msg("campaign aggregates drifted")
		if !repair {
			continue
		}
		err := s.ledger.WithinTx(ctx, func(tx domain.LedgerTx) error {
			return tx.RepairCampaign(ctx, a)
		})
		if err != nil {
			return audits, err
		}
		audits[i].Repaired = true
	}
	return audits, nil
}
