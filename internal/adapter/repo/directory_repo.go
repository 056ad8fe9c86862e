package repo

import (
	"context"
	"encoding/json"
	"time"

	"github.com/weforyou/ledger/internal/domain"
	"github.com/weforyou/ledger/internal/infra"
	"github.com/weforyou/ledger/internal/sqlinline"
)

const defaultSearchLimit = 50

// DirectoryRepositoryPG implements domain.DirectoryRepository.
type DirectoryRepositoryPG struct {
	db infra.DB
}

func NewDirectoryRepository(db infra.DB) *DirectoryRepositoryPG {
	return &DirectoryRepositoryPG{db: db}
}

func (r *DirectoryRepositoryPG) Create(ctx context.Context, d domain.BloodDonor) (*domain.BloodDonor, error) {
	row := r.db.QueryRow(ctx, sqlinline.QInsertBloodDonor,
		d.UserID,
		d.MemberID,
		d.FullName,
		d.BloodGroup,
		d.Age,
		d.Weight,
		d.City,
		d.State,
		d.District,
		d.Phone,
		d.Email,
		d.Availability,
		d.LastDonationDate,
		d.ConsentPublic,
		d.ConsentPublicAt,
		d.CreatedBy,
	)
	return scanBloodDonor(row)
}

func (r *DirectoryRepositoryPG) GetByID(ctx context.Context, id string) (*domain.BloodDonor, error) {
	return scanBloodDonor(r.db.QueryRow(ctx, sqlinline.QSelectBloodDonorByID, id))
}

// Search only returns consented donors that are not hidden by moderation.
func (r *DirectoryRepositoryPG) Search(ctx context.Context, q domain.DonorSearch) ([]domain.BloodDonor, error) {
	limit := q.Limit
	if limit <= 0 || limit > defaultSearchLimit {
		limit = defaultSearchLimit
	}
	rows, err := r.db.Query(ctx, sqlinline.QSearchBloodDonors, q.BloodGroup, q.State, q.District, q.Available, limit)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanBloodDonor)
}

func (r *DirectoryRepositoryPG) SetConsent(ctx context.Context, id string, consent bool, at time.Time) (*domain.BloodDonor, error) {
	return scanBloodDonor(r.db.QueryRow(ctx, sqlinline.QUpdateBloodDonorConsent, id, consent, at))
}

func (r *DirectoryRepositoryPG) SetHidden(ctx context.Context, id string, hidden bool) error {
	tag, err := r.db.Exec(ctx, sqlinline.QUpdateBloodDonorHidden, id, hidden)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// RecordReveal bumps the per-day counter with a conditional upsert, so
// concurrent reveals by the same user never exceed limit.
func (r *DirectoryRepositoryPG) RecordReveal(ctx context.Context, userID, donorID string, day time.Time, limit int) (int, error) {
	var count int
	err := r.db.InTx(ctx, func(tx infra.SQLExecutor) error {
		if err := tx.QueryRow(ctx, sqlinline.QIncrementRevealCounter, userID, day, limit).Scan(&count); err != nil {
			if infra.IsNoRows(err) {
				return domain.ErrRateLimited
			}
			return err
		}
		if _, err := tx.Exec(ctx, sqlinline.QInsertContactReveal, userID, donorID, day); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, sqlinline.QIncrementDonorRevealCount, donorID)
		return err
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *DirectoryRepositoryPG) AppendAudit(ctx context.Context, e domain.AuditEntry) error {
	details, err := json.Marshal(e.Details)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, sqlinline.QInsertAuditLog, e.Event, e.SubjectID, e.ActorID, string(details))
	return err
}

var _ domain.DirectoryRepository = (*DirectoryRepositoryPG)(nil)
