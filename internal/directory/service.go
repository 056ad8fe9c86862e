// Package directory runs the public blood donor directory: consented
// registration, masked search and rate-limited contact reveal.
package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/weforyou/ledger/internal/domain"
	"github.com/weforyou/ledger/internal/metrics"
	"github.com/weforyou/ledger/internal/providers/captcha"
)

const (
	minDonorAge    = 18
	maxDonorAge    = 65
	minDonorWeight = 45
)

type Service struct {
	repo    domain.DirectoryRepository
	captcha captcha.Verifier
	logger  zerolog.Logger
	now     func() time.Time
}

func NewService(repo domain.DirectoryRepository, verifier captcha.Verifier, logger zerolog.Logger) *Service {
	return &Service{repo: repo, captcha: verifier, logger: logger, now: time.Now}
}

// RegisterInput is a blood donor sign-up, made by the donor or by a
// volunteer for one of their members.
type RegisterInput struct {
	FullName         string
	BloodGroup       string
	Age              int
	Weight           int
	City             string
	State            string
	District         string
	Phone            string
	Email            string
	Availability     *bool
	LastDonationDate *time.Time
	ConsentPublic    bool
	MemberID         *string
}

// Register adds a donor to the directory. Public consent is mandatory.
func (s *Service) Register(ctx context.Context, in RegisterInput, actorID string, selfRegistered bool) (*domain.BloodDonor, error) {
	if !in.ConsentPublic {
		return nil, domain.Invalid("consent_public", "consent to be listed publicly is required")
	}
	group, err := domain.NormalizeBloodGroup(in.BloodGroup)
	if err != nil {
		return nil, err
	}
	in.FullName = strings.TrimSpace(in.FullName)
	in.Phone = strings.TrimSpace(in.Phone)
	switch {
	case in.FullName == "":
		return nil, domain.Invalid("full_name", "full_name is required")
	case in.Phone == "":
		return nil, domain.Invalid("phone", "phone is required")
	case in.Age < minDonorAge || in.Age > maxDonorAge:
		return nil, domain.Invalid("age", fmt.Sprintf("donors must be %d to %d years old", minDonorAge, maxDonorAge))
	case in.Weight < minDonorWeight:
		return nil, domain.Invalid("weight", fmt.Sprintf("donors must weigh at least %d kg", minDonorWeight))
	}

	now := s.now()
	donor := domain.BloodDonor{
		MemberID:         in.MemberID,
		FullName:         in.FullName,
		BloodGroup:       group,
		Age:              in.Age,
		Weight:           in.Weight,
		City:             strings.TrimSpace(in.City),
		State:            strings.TrimSpace(in.State),
		District:         strings.TrimSpace(in.District),
		Phone:            in.Phone,
		Email:            strings.TrimSpace(in.Email),
		Availability:     in.Availability == nil || *in.Availability,
		LastDonationDate: in.LastDonationDate,
		ConsentPublic:    true,
		ConsentPublicAt:  &now,
		CreatedBy:        actorID,
	}
	if selfRegistered {
		donor.UserID = actorID
	}
	created, err := s.repo.Create(ctx, donor)
	if err != nil {
		return nil, err
	}
	s.audit(ctx, "blood_donor.registered", created.ID, actorID, map[string]any{"consent_public": true, "blood_group": group})
	return created, nil
}

// Search lists discoverable donors of a blood group. Results carry masked
// phone numbers only.
func (s *Service) Search(ctx context.Context, q domain.DonorSearch) ([]domain.DonorListing, error) {
	group, err := domain.NormalizeBloodGroup(q.BloodGroup)
	if err != nil {
		return nil, err
	}
	q.BloodGroup = group
	q.State = strings.TrimSpace(q.State)
	q.District = strings.TrimSpace(q.District)
	donors, err := s.repo.Search(ctx, q)
	if err != nil {
		return nil, err
	}
	out := make([]domain.DonorListing, 0, len(donors))
	for _, d := range donors {
		if d.Discoverable() {
			out = append(out, d.Listing())
		}
	}
	return out, nil
}

// Reveal returns a donor's contact details. The captcha is checked first and
// the daily counter is consumed only for a discoverable donor.
func (s *Service) Reveal(ctx context.Context, userID, donorID, captchaToken, remoteIP string) (*domain.DonorContact, error) {
	if err := s.captcha.Verify(ctx, captchaToken, remoteIP); err != nil {
		metrics.RecordReveal("captcha_failed")
		return nil, err
	}
	donor, err := s.repo.GetByID(ctx, donorID)
	if err != nil {
		return nil, err
	}
	if !donor.Discoverable() {
		metrics.RecordReveal("forbidden")
		return nil, fmt.Errorf("%w: donor is not publicly listed", domain.ErrForbidden)
	}

	count, err := s.repo.RecordReveal(ctx, userID, donorID, domain.RevealDay(s.now()), domain.MaxRevealsPerDay)
	if errors.Is(err, domain.ErrRateLimited) {
		metrics.RecordReveal("rate_limited")
		s.logger.Warn().Str("user_id", userID).Str("donor_id", donorID).Msg("contact reveal limit reached")
		return nil, fmt.Errorf("%w: at most %d contact reveals per day", domain.ErrRateLimited, domain.MaxRevealsPerDay)
	}
	if err != nil {
		return nil, err
	}
	metrics.RecordReveal("granted")
	return &domain.DonorContact{
		DonorID:        donor.ID,
		FullName:       donor.FullName,
		Phone:          donor.Phone,
		Email:          donor.Email,
		RevealsToday:   count,
		RevealsAllowed: domain.MaxRevealsPerDay,
	}, nil
}

// SetConsent lets the donor's creator or an admin change public consent.
func (s *Service) SetConsent(ctx context.Context, donorID string, consent bool, actorID string, admin bool) (*domain.BloodDonor, error) {
	donor, err := s.repo.GetByID(ctx, donorID)
	if err != nil {
		return nil, err
	}
	if !admin && donor.CreatedBy != actorID && donor.UserID != actorID {
		return nil, fmt.Errorf("%w: only the registrant can change consent", domain.ErrForbidden)
	}
	updated, err := s.repo.SetConsent(ctx, donorID, consent, s.now())
	if err != nil {
		return nil, err
	}
	s.audit(ctx, "blood_donor.consent_changed", donorID, actorID, map[string]any{"consent_public": consent})
	return updated, nil
}

// Hide removes or restores a donor in search results by moderation.
func (s *Service) Hide(ctx context.Context, donorID string, hidden bool, actorID, reason string) error {
	if _, err := s.repo.GetByID(ctx, donorID); err != nil {
		return err
	}
	if err := s.repo.SetHidden(ctx, donorID, hidden); err != nil {
		return err
	}
	s.audit(ctx, "blood_donor.moderated", donorID, actorID, map[string]any{"hidden": hidden, "reason": reason})
	return nil
}

func (s *Service) audit(ctx context.Context, event, subject, actor string, details map[string]any) {
	err := s.repo.AppendAudit(ctx, domain.AuditEntry{Event: event, SubjectID: subject, ActorID: actor, Details: details})
	if err != nil {
		s.logger.Error().Err(err).Str("event", event).Str("subject", subject).Msg("audit log write failed")
	}
}
