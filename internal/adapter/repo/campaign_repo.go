package repo

import (
	"context"

	"github.com/weforyou/ledger/internal/domain"
	"github.com/weforyou/ledger/internal/infra"
	"github.com/weforyou/ledger/internal/sqlinline"
)

const topDonorsPerCampaign = 3

// CampaignRepositoryPG implements domain.CampaignRepository.
type CampaignRepositoryPG struct {
	sql infra.SQLExecutor
}

func NewCampaignRepository(sql infra.SQLExecutor) *CampaignRepositoryPG {
	return &CampaignRepositoryPG{sql: sql}
}

func (r *CampaignRepositoryPG) Create(ctx context.Context, c domain.Campaign) (*domain.Campaign, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QInsertCampaign,
		c.Title,
		c.Description,
		c.GoalAmount.Paise(),
		c.AllowRecurring,
		c.ImageURL,
		c.Currency,
		c.EndDate,
		c.CreatedBy,
	)
	return scanCampaign(row)
}

func (r *CampaignRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Campaign, error) {
	return scanCampaign(r.sql.QueryRow(ctx, sqlinline.QSelectCampaignByID, id))
}

// List returns campaigns newest first. An empty status lists all.
func (r *CampaignRepositoryPG) List(ctx context.Context, status domain.CampaignStatus) ([]domain.Campaign, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListCampaigns, string(status))
	if err != nil {
		return nil, err
	}
	return collect(rows, scanCampaign)
}

func (r *CampaignRepositoryPG) UpdateStatus(ctx context.Context, id string, status domain.CampaignStatus) (*domain.Campaign, error) {
	return scanCampaign(r.sql.QueryRow(ctx, sqlinline.QUpdateCampaignStatus, id, string(status)))
}

// RecentDonors lists the latest non-anonymous settled donations.
func (r *CampaignRepositoryPG) RecentDonors(ctx context.Context, campaignID string, limit int) ([]domain.RecentDonor, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QCampaignRecentDonors, campaignID, limit)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanRecentDonor)
}

// Analytics summarises every campaign and attaches its top donors.
func (r *CampaignRepositoryPG) Analytics(ctx context.Context) ([]domain.CampaignAnalytics, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QCampaignAnalytics)
	if err != nil {
		return nil, err
	}
	items, err := collect(rows, func(row rowScanner) (*domain.CampaignAnalytics, error) {
		var a domain.CampaignAnalytics
		if err := row.Scan(&a.CampaignID, &a.Title, &a.TotalAmount, &a.DonationCount); err != nil {
			return nil, err
		}
		if a.DonationCount > 0 {
			a.AverageAmount = a.TotalAmount / domain.Money(a.DonationCount)
		}
		return &a, nil
	})
	if err != nil {
		return nil, err
	}

	for i := range items {
		rows, err := r.sql.Query(ctx, sqlinline.QCampaignTopDonors, items[i].CampaignID, topDonorsPerCampaign)
		if err != nil {
			return nil, err
		}
		top, err := collect(rows, scanRecentDonor)
		if err != nil {
			return nil, err
		}
		items[i].TopDonors = top
	}
	return items, nil
}

func scanRecentDonor(row rowScanner) (*domain.RecentDonor, error) {
	var d domain.RecentDonor
	if err := row.Scan(&d.Name, &d.Amount, &d.CreatedAt); err != nil {
		return nil, err
	}
	return &d, nil
}

var _ domain.CampaignRepository = (*CampaignRepositoryPG)(nil)
