package volunteer

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"github.com/weforyou/ledger/internal/domain"
	"github.com/weforyou/ledger/internal/ledger"
)

type memMembers struct {
	members map[string]domain.Member
}

func (m *memMembers) Create(_ context.Context, in domain.Member) (*domain.Member, error) {
	in.ID = fmt.Sprintf("mem-%d", len(m.members)+1)
	m.members[in.ID] = in
	return &in, nil
}

func (m *memMembers) GetByID(_ context.Context, id string) (*domain.Member, error) {
	v, ok := m.members[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &v, nil
}

func (m *memMembers) ListByCreator(_ context.Context, createdBy string) ([]domain.Member, error) {
	var out []domain.Member
	for _, v := range m.members {
		if v.CreatedBy == createdBy {
			out = append(out, v)
		}
	}
	return out, nil
}

func (m *memMembers) Update(_ context.Context, in domain.Member) (*domain.Member, error) {
	m.members[in.ID] = in
	return &in, nil
}

type recordingOpener struct {
	intents []domain.DonationIntent
}

func (r *recordingOpener) CreateDonation(_ context.Context, in domain.DonationIntent) (*ledger.Checkout, error) {
	if err := in.Normalize(); err != nil {
		return nil, err
	}
	r.intents = append(r.intents, in)
	return &ledger.Checkout{DonationID: fmt.Sprintf("don-%d", len(r.intents))}, nil
}

func str(s string) *string { return &s }

func newTestService() (*Service, *recordingOpener) {
	opener := &recordingOpener{}
	return NewService(&memMembers{members: map[string]domain.Member{}}, opener, zerolog.Nop()), opener
}

func TestCreateMemberValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	tests := []struct {
		name  string
		in    MemberInput
		field string
	}{
		{"missing name", MemberInput{Phone: str("9876543210")}, "full_name"},
		{"missing phone", MemberInput{FullName: str("Ravi")}, "phone"},
		{"bad pan", MemberInput{FullName: str("Ravi"), Phone: str("9876543210"), PAN: str("12345")}, "pan"},
		{"bad blood group", MemberInput{FullName: str("Ravi"), Phone: str("9876543210"), BloodGroup: str("C+")}, "blood_group"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateMember(ctx, "vol-1", tc.in)
			var ve *domain.ValidationError
			if !errors.As(err, &ve) || ve.Field != tc.field {
				t.Fatalf("error = %v, want validation on %s", err, tc.field)
			}
		})
	}

	m, err := svc.CreateMember(ctx, "vol-1", MemberInput{FullName: str(" Ravi "), Phone: str("9876543210"), PAN: str("abcde1234f"), BloodGroup: str("o+")})
	if err != nil {
		t.Fatalf("CreateMember() error: %v", err)
	}
	if m.FullName != "Ravi" || m.PAN != "ABCDE1234F" || m.BloodGroup != "O+" || m.CreatedBy != "vol-1" {
		t.Fatalf("member = %+v", m)
	}
}

func TestMembersAreOwnedByTheirVolunteer(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	m, err := svc.CreateMember(ctx, "vol-1", MemberInput{FullName: str("Ravi"), Phone: str("9876543210")})
	if err != nil {
		t.Fatalf("CreateMember() error: %v", err)
	}
	if _, err := svc.UpdateMember(ctx, "vol-2", m.ID, MemberInput{City: str("Pune")}, false); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("foreign UpdateMember() error = %v, want ErrForbidden", err)
	}
	updated, err := svc.UpdateMember(ctx, "vol-1", m.ID, MemberInput{City: str("Pune")}, false)
	if err != nil {
		t.Fatalf("UpdateMember() error: %v", err)
	}
	if updated.City != "Pune" || updated.FullName != "Ravi" {
		t.Fatalf("updated = %+v", updated)
	}
	list, err := svc.ListMembers(ctx, "vol-2")
	if err != nil || len(list) != 0 {
		t.Fatalf("ListMembers(vol-2) = %v, %v", list, err)
	}
}

func TestDonateOnBehalfUsesMemberDetails(t *testing.T) {
	svc, opener := newTestService()
	ctx := context.Background()
	m, err := svc.CreateMember(ctx, "vol-1", MemberInput{
		FullName: str("Meera Iyer"), Phone: str("9876543210"), PAN: str("ABCDE1234F"), Address: str("12 MG Road"),
	})
	if err != nil {
		t.Fatalf("CreateMember() error: %v", err)
	}

	if _, err := svc.DonateOnBehalf(ctx, "vol-2", m.ID, OnBehalfInput{Amount: 50000}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("foreign DonateOnBehalf() error = %v, want ErrForbidden", err)
	}
	if _, err := svc.DonateOnBehalf(ctx, "vol-1", m.ID, OnBehalfInput{Amount: 50000, Want80G: true}); err != nil {
		t.Fatalf("DonateOnBehalf() error: %v", err)
	}
	in := opener.intents[0]
	if in.Type != domain.DonationOnBehalf || in.UserID != "vol-1" || in.MemberID == nil || *in.MemberID != m.ID {
		t.Fatalf("intent = %+v", in)
	}
	if in.DonorName != "Meera Iyer" || in.LegalName != "Meera Iyer" || in.PAN != "ABCDE1234F" || in.Address != "12 MG Road" {
		t.Fatalf("member details not carried: %+v", in)
	}

	bare, _ := svc.CreateMember(ctx, "vol-1", MemberInput{FullName: str("No Pan"), Phone: str("9000000000")})
	if _, err := svc.DonateOnBehalf(ctx, "vol-1", bare.ID, OnBehalfInput{Amount: 1000, Want80G: true}); !domain.IsValidation(err) {
		t.Fatalf("80G without PAN error = %v, want validation", err)
	}
}
