package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/weforyou/ledger/internal/domain"
	"github.com/weforyou/ledger/internal/infra"
	"github.com/weforyou/ledger/internal/sqlinline"
)

// PledgeRepositoryPG implements domain.PledgeRepository.
type PledgeRepositoryPG struct {
	sql infra.SQLExecutor
}

func NewPledgeRepository(sql infra.SQLExecutor) *PledgeRepositoryPG {
	return &PledgeRepositoryPG{sql: sql}
}

func (r *PledgeRepositoryPG) Create(ctx context.Context, p domain.Pledge) (*domain.Pledge, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QInsertPledge,
		p.UserID,
		p.CampaignID,
		p.Amount.Paise(),
		p.Currency,
		string(p.Frequency),
		p.NextChargeAt,
	)
	if err := row.Scan(&p.ID, &p.Status, &p.Version, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PledgeRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Pledge, error) {
	return scanPledge(r.sql.QueryRow(ctx, sqlinline.QSelectPledgeByID, id))
}

func (r *PledgeRepositoryPG) ListByUser(ctx context.Context, userID string) ([]domain.Pledge, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListPledgesByUser, userID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanPledge)
}

// Transition moves a pledge from one status to another only if nobody
// changed it since version was read. A lost race is reported as ErrConflict.
func (r *PledgeRepositoryPG) Transition(ctx context.Context, id string, from domain.PledgeStatus, version int, to domain.PledgeStatus, nextChargeAt *time.Time) (*domain.Pledge, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QTransitionPledge, id, string(from), version, string(to), nextChargeAt)
	p, err := scanPledge(row)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w: pledge changed concurrently", domain.ErrConflict)
	}
	return p, err
}

// ClaimDue leases up to limit due active pledges to the caller. Rows locked
// by another worker are skipped, and a lease keeps a crashed worker's claims
// out of circulation until it expires.
func (r *PledgeRepositoryPG) ClaimDue(ctx context.Context, now, retryBefore time.Time, lease time.Duration, limit int) ([]domain.Pledge, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QClaimDuePledges, now, retryBefore, lease, limit)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanPledge)
}

func (r *PledgeRepositoryPG) RecordChargeFailure(ctx context.Context, id string, at time.Time, reason string) error {
	_, err := r.sql.Exec(ctx, sqlinline.QRecordPledgeFailure, id, at, reason)
	return err
}

var _ domain.PledgeRepository = (*PledgeRepositoryPG)(nil)
