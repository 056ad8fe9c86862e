package repo

import (
	"context"

	"github.com/weforyou/ledger/internal/domain"
	"github.com/weforyou/ledger/internal/infra"
	"github.com/weforyou/ledger/internal/sqlinline"
)

// MemberRepositoryPG implements domain.MemberRepository.
type MemberRepositoryPG struct {
	sql infra.SQLExecutor
}

func NewMemberRepository(sql infra.SQLExecutor) *MemberRepositoryPG {
	return &MemberRepositoryPG{sql: sql}
}

func (r *MemberRepositoryPG) Create(ctx context.Context, m domain.Member) (*domain.Member, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QInsertMember,
		m.FullName, m.Phone, m.Email, m.BloodGroup, m.PAN, m.Address,
		m.City, m.State, m.District, m.ConsentPublic, m.CreatedBy,
	)
	return scanMember(row)
}

func (r *MemberRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Member, error) {
	return scanMember(r.sql.QueryRow(ctx, sqlinline.QSelectMemberByID, id))
}

func (r *MemberRepositoryPG) ListByCreator(ctx context.Context, createdBy string) ([]domain.Member, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListMembersByCreator, createdBy)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanMember)
}

func (r *MemberRepositoryPG) Update(ctx context.Context, m domain.Member) (*domain.Member, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QUpdateMember,
		m.ID, m.FullName, m.Phone, m.Email, m.BloodGroup, m.PAN, m.Address,
		m.City, m.State, m.District, m.ConsentPublic,
	)
	return scanMember(row)
}

var _ domain.MemberRepository = (*MemberRepositoryPG)(nil)
