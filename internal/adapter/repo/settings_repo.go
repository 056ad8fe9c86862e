package repo

import (
	"context"
	"encoding/json"
	"time"

	"github.com/weforyou/ledger/internal/domain"
	"github.com/weforyou/ledger/internal/infra"
	"github.com/weforyou/ledger/internal/sqlinline"
)

// SettingsRepositoryPG keeps the site settings as a single jsonb document.
type SettingsRepositoryPG struct {
	sql infra.SQLExecutor
}

func NewSettingsRepository(sql infra.SQLExecutor) *SettingsRepositoryPG {
	return &SettingsRepositoryPG{sql: sql}
}

// Get returns ErrNotFound until an admin saves settings for the first time.
func (r *SettingsRepositoryPG) Get(ctx context.Context) (*domain.SiteSettings, error) {
	var (
		raw       []byte
		updatedBy string
		updatedAt time.Time
	)
	if err := r.sql.QueryRow(ctx, sqlinline.QSelectSiteSettings).Scan(&raw, &updatedBy, &updatedAt); err != nil {
		return nil, notFound(err)
	}
	var s domain.SiteSettings
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	s.UpdatedAt = updatedAt
	s.UpdatedBy = updatedBy
	return &s, nil
}

func (r *SettingsRepositoryPG) Save(ctx context.Context, s domain.SiteSettings) (*domain.SiteSettings, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	if err := r.sql.QueryRow(ctx, sqlinline.QUpsertSiteSettings, string(raw), s.UpdatedBy).Scan(&s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

var _ domain.SettingsRepository = (*SettingsRepositoryPG)(nil)
