package repo

import (
	"context"
	"fmt"

	"github.com/weforyou/ledger/internal/domain"
	"github.com/weforyou/ledger/internal/infra"
	"github.com/weforyou/ledger/internal/sqlinline"
)

type exportQuery struct {
	sql     string
	columns []string
}

var exportQueries = map[string]exportQuery{
	"users": {
		sql:     sqlinline.QExportUsers,
		columns: []string{"id", "email", "full_name", "phone", "roles", "is_active", "created_at"},
	},
	"volunteers": {
		sql:     sqlinline.QExportVolunteers,
		columns: []string{"id", "email", "full_name", "phone", "is_active", "created_at"},
	},
	"transactions": {
		sql: sqlinline.QExportTransactions,
		columns: []string{
			"id", "campaign_id", "campaign_title", "donor_email", "amount", "refunded_amount",
			"currency", "status", "type", "order_id", "payment_ref", "created_at",
		},
	},
	"campaigns": {
		sql:     sqlinline.QExportCampaigns,
		columns: []string{"id", "title", "goal_amount", "current_amount", "donor_count", "status", "created_at"},
	},
	"blood-donors": {
		sql: sqlinline.QExportBloodDonors,
		columns: []string{
			"id", "full_name", "blood_group", "city", "state", "district", "phone_masked",
			"availability", "consent_public", "moderation_hidden", "contact_reveal_count", "created_at",
		},
	},
}

// ReportRepositoryPG serves read-only aggregates.
type ReportRepositoryPG struct {
	sql infra.SQLExecutor
}

func NewReportRepository(sql infra.SQLExecutor) *ReportRepositoryPG {
	return &ReportRepositoryPG{sql: sql}
}

func (r *ReportRepositoryPG) PublicStats(ctx context.Context) (*domain.PublicStats, error) {
	var s domain.PublicStats
	err := r.sql.QueryRow(ctx, sqlinline.QPublicStats).Scan(
		&s.TotalRaised,
		&s.TotalDonations,
		&s.UniqueDonors,
		&s.ActiveCampaigns,
		&s.BloodDonors,
		&s.UpcomingEvents,
		&s.ActivePledges,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Export returns one of domain.ExportKinds as a generic table.
func (r *ReportRepositoryPG) Export(ctx context.Context, kind string) (*domain.ExportTable, error) {
	q, ok := exportQueries[kind]
	if !ok {
		return nil, domain.Invalid("kind", fmt.Sprintf("unknown export %q", kind))
	}
	rows, err := r.sql.Query(ctx, q.sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	table := &domain.ExportTable{Name: kind, Columns: q.columns}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		table.Rows = append(table.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return table, nil
}

var _ domain.ReportRepository = (*ReportRepositoryPG)(nil)
