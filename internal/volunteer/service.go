// Package volunteer lets volunteers keep member records and pay donations on
// a member's behalf.
package volunteer

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/weforyou/ledger/internal/domain"
	"github.com/weforyou/ledger/internal/ledger"
)

// DonationOpener opens a pending donation and its gateway order.
type DonationOpener interface {
	CreateDonation(ctx context.Context, in domain.DonationIntent) (*ledger.Checkout, error)
}

type Service struct {
	members   domain.MemberRepository
	donations DonationOpener
	logger    zerolog.Logger
}

func NewService(members domain.MemberRepository, donations DonationOpener, logger zerolog.Logger) *Service {
	return &Service{members: members, donations: donations, logger: logger}
}

// MemberInput carries member fields. On update nil fields are unchanged.
type MemberInput struct {
	FullName      *string `json:"full_name"`
	Phone         *string `json:"phone"`
	Email         *string `json:"email"`
	BloodGroup    *string `json:"blood_group"`
	PAN           *string `json:"pan"`
	Address       *string `json:"address"`
	City          *string `json:"city"`
	State         *string `json:"state"`
	District      *string `json:"district"`
	ConsentPublic *bool   `json:"consent_public"`
}

func (in MemberInput) apply(m *domain.Member) error {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&m.FullName, in.FullName)
	set(&m.Phone, in.Phone)
	set(&m.Email, in.Email)
	set(&m.Address, in.Address)
	set(&m.City, in.City)
	set(&m.State, in.State)
	set(&m.District, in.District)
	if in.PAN != nil {
		m.PAN = strings.ToUpper(strings.TrimSpace(*in.PAN))
	}
	if in.BloodGroup != nil {
		m.BloodGroup = ""
		if strings.TrimSpace(*in.BloodGroup) != "" {
			group, err := domain.NormalizeBloodGroup(*in.BloodGroup)
			if err != nil {
				return err
			}
			m.BloodGroup = group
		}
	}
	if in.ConsentPublic != nil {
		m.ConsentPublic = *in.ConsentPublic
	}

	if m.FullName == "" {
		return domain.Invalid("full_name", "full_name is required")
	}
	if m.Phone == "" {
		return domain.Invalid("phone", "phone is required")
	}
	if m.PAN != "" && !domain.ValidPAN(m.PAN) {
		return domain.Invalid("pan", "PAN must look like AAAAA9999A")
	}
	return nil
}

// CreateMember stores a member owned by volunteerID.
func (s *Service) CreateMember(ctx context.Context, volunteerID string, in MemberInput) (*domain.Member, error) {
	m := domain.Member{CreatedBy: volunteerID}
	if err := in.apply(&m); err != nil {
		return nil, err
	}
	return s.members.Create(ctx, m)
}

// ListMembers returns the members volunteerID created.
func (s *Service) ListMembers(ctx context.Context, volunteerID string) ([]domain.Member, error) {
	return s.members.ListByCreator(ctx, volunteerID)
}

// UpdateMember edits a member. Volunteers may only edit their own members.
func (s *Service) UpdateMember(ctx context.Context, volunteerID, id string, in MemberInput, admin bool) (*domain.Member, error) {
	m, err := s.owned(ctx, volunteerID, id, admin)
	if err != nil {
		return nil, err
	}
	if err := in.apply(m); err != nil {
		return nil, err
	}
	return s.members.Update(ctx, *m)
}

func (s *Service) owned(ctx context.Context, volunteerID, id string, admin bool) (*domain.Member, error) {
	m, err := s.members.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.CreatedBy != volunteerID && !admin {
		return nil, fmt.Errorf("%w: member belongs to another volunteer", domain.ErrForbidden)
	}
	return m, nil
}

// OnBehalfInput is a donation a volunteer pays for a member.
type OnBehalfInput struct {
	CampaignID  *string      `json:"campaign_id"`
	Amount      domain.Money `json:"amount"`
	Method      string       `json:"method"`
	IsAnonymous bool         `json:"is_anonymous"`
	Want80G     bool         `json:"want_80g"`
}

// DonateOnBehalf opens an ON_BEHALF donation paid by the volunteer. The
// donor name, PAN and address on the receipt come from the member record.
func (s *Service) DonateOnBehalf(ctx context.Context, volunteerID, memberID string, in OnBehalfInput) (*ledger.Checkout, error) {
	m, err := s.owned(ctx, volunteerID, memberID, false)
	if err != nil {
		return nil, err
	}
	if in.Want80G && m.PAN == "" {
		return nil, domain.Invalid("pan", "member has no PAN on record for an 80G receipt")
	}
	checkout, err := s.donations.CreateDonation(ctx, domain.DonationIntent{
		CampaignID:  in.CampaignID,
		UserID:      volunteerID,
		Amount:      in.Amount,
		Type:        domain.DonationOnBehalf,
		Method:      in.Method,
		IsAnonymous: in.IsAnonymous,
		Want80G:     in.Want80G,
		PAN:         m.PAN,
		LegalName:   m.FullName,
		Address:     m.Address,
		MemberID:    &m.ID,
		DonorName:   m.FullName,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("donation_id", checkout.DonationID).Str("member_id", m.ID).Str("volunteer_id", volunteerID).Msg("on-behalf donation opened")
	return checkout, nil
}
