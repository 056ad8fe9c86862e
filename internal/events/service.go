// Package events manages foundation events and member registrations. Paid
// events open an EVENT_FEE donation; the registration is marked PAID when
// that donation settles.
package events

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/weforyou/ledger/internal/domain"
	"github.com/weforyou/ledger/internal/ledger"
)

// DonationOpener opens a pending donation and its gateway order.
type DonationOpener interface {
	CreateDonation(ctx context.Context, in domain.DonationIntent) (*ledger.Checkout, error)
}

type Service struct {
	events    domain.EventRepository
	donations DonationOpener
	logger    zerolog.Logger
}

func NewService(events domain.EventRepository, donations DonationOpener, logger zerolog.Logger) *Service {
	return &Service{events: events, donations: donations, logger: logger}
}

// Patch carries the admin-editable event fields. Nil fields are left as is.
type Patch struct {
	Title         *string             `json:"title"`
	Description   *string             `json:"description"`
	ScheduleStart *time.Time          `json:"schedule_start"`
	ScheduleEnd   *time.Time          `json:"schedule_end"`
	Venue         *string             `json:"venue"`
	Capacity      *int                `json:"capacity"`
	FeeEnabled    *bool               `json:"fee_enabled"`
	FeeAmount     *domain.Money       `json:"fee_amount"`
	ImageURL      *string             `json:"image_url"`
	Status        *domain.EventStatus `json:"status"`
}

func (p Patch) apply(e *domain.Event) {
	if p.Title != nil {
		e.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.ScheduleStart != nil {
		e.ScheduleStart = *p.ScheduleStart
	}
	if p.ScheduleEnd != nil {
		e.ScheduleEnd = p.ScheduleEnd
	}
	if p.Venue != nil {
		e.Venue = *p.Venue
	}
	if p.Capacity != nil {
		e.Capacity = p.Capacity
	}
	if p.FeeEnabled != nil {
		e.FeeEnabled = *p.FeeEnabled
	}
	if p.FeeAmount != nil {
		e.FeeAmount = *p.FeeAmount
	}
	if p.ImageURL != nil {
		e.ImageURL = *p.ImageURL
	}
	if p.Status != nil {
		e.Status = domain.EventStatus(strings.ToUpper(string(*p.Status)))
	}
}

// Create stores a new event. Events start as DRAFT unless a status is given.
func (s *Service) Create(ctx context.Context, actorID string, p Patch) (*domain.Event, error) {
	e := domain.Event{Status: domain.EventDraft, CreatedBy: actorID}
	p.apply(&e)
	if !e.FeeEnabled {
		e.FeeAmount = 0
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	created, err := s.events.Create(ctx, e)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("event_id", created.ID).Str("actor_id", actorID).Msg("event created")
	return created, nil
}

// Update applies p to an existing event.
func (s *Service) Update(ctx context.Context, id string, p Patch) (*domain.Event, error) {
	e, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.apply(e)
	if !e.FeeEnabled {
		e.FeeAmount = 0
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	if e.Capacity != nil && *e.Capacity < e.RegisteredCount {
		return nil, domain.Invalid("capacity", fmt.Sprintf("capacity is below the %d existing registrations", e.RegisteredCount))
	}
	return s.events.Update(ctx, *e)
}

// Archive removes an event from listings. Registrations are kept.
func (s *Service) Archive(ctx context.Context, id string) error {
	return s.events.Archive(ctx, id)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Event, error) {
	return s.events.GetByID(ctx, id)
}

// List returns events with status, or every non-archived event when status
// is empty.
func (s *Service) List(ctx context.Context, status string) ([]domain.Event, error) {
	st := domain.EventStatus(strings.ToUpper(strings.TrimSpace(status)))
	if st != "" && !st.Valid() {
		return nil, domain.Invalid("status", "unknown event status")
	}
	return s.events.List(ctx, st)
}

// Registration is the result of signing up for an event. Checkout is set
// when a fee has to be paid.
type Registration struct {
	Registration *domain.EventRegistration `json:"registration"`
	Checkout     *ledger.Checkout          `json:"checkout,omitempty"`
}

// Register signs userID up for an event. Free events are confirmed at once;
// paid events open an EVENT_FEE donation and stay PENDING until it settles.
func (s *Service) Register(ctx context.Context, eventID, userID string) (*Registration, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.Status != domain.EventLive {
		return nil, fmt.Errorf("%w: event is not open for registration", domain.ErrConflict)
	}
	if event.Capacity != nil && event.RegisteredCount >= *event.Capacity {
		return nil, fmt.Errorf("%w: event is full", domain.ErrConflict)
	}
	existing, err := s.events.GetRegistration(ctx, eventID, userID)
	switch {
	case err == nil:
		return nil, fmt.Errorf("%w: already registered (%s)", domain.ErrConflict, existing.PaymentStatus)
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}

	reg := domain.EventRegistration{EventID: eventID, UserID: userID, PaymentStatus: domain.RegistrationFree}
	if !event.FeeEnabled {
		saved, err := s.events.Register(ctx, reg)
		if err != nil {
			return nil, err
		}
		return &Registration{Registration: saved}, nil
	}

	checkout, err := s.donations.CreateDonation(ctx, domain.DonationIntent{
		UserID:  userID,
		Amount:  event.FeeAmount,
		Type:    domain.DonationEventFee,
		EventID: &event.ID,
	})
	if err != nil {
		return nil, err
	}
	reg.PaymentRequired = true
	reg.PaymentStatus = domain.RegistrationPending
	reg.DonationID = &checkout.DonationID
	saved, err := s.events.Register(ctx, reg)
	if err != nil {
		// The pending donation stays behind and is never settled into a
		// registration.
		s.logger.Warn().Err(err).Str("event_id", eventID).Str("donation_id", checkout.DonationID).Msg("event registration lost after order was opened")
		return nil, err
	}
	return &Registration{Registration: saved, Checkout: checkout}, nil
}
