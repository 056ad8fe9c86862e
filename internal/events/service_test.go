package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/weforyou/ledger/internal/domain"
	"github.com/weforyou/ledger/internal/ledger"
	"github.com/weforyou/ledger/internal/providers/payment"
)

type memEvents struct {
	mu     sync.Mutex
	events map[string]domain.Event
	regs   map[string]domain.EventRegistration
}

func newMemEvents() *memEvents {
	return &memEvents{events: map[string]domain.Event{}, regs: map[string]domain.EventRegistration{}}
}

func (m *memEvents) Create(_ context.Context, e domain.Event) (*domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.ID = fmt.Sprintf("evt-%d", len(m.events)+1)
	m.events[e.ID] = e
	return &e, nil
}

func (m *memEvents) Update(_ context.Context, e domain.Event) (*domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.events[e.ID]; !ok {
		return nil, domain.ErrNotFound
	}
	m.events[e.ID] = e
	return &e, nil
}

func (m *memEvents) Archive(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[id]
	if !ok {
		return domain.ErrNotFound
	}
	e.Status = domain.EventArchived
	m.events[id] = e
	return nil
}

func (m *memEvents) GetByID(_ context.Context, id string) (*domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &e, nil
}

func (m *memEvents) List(_ context.Context, status domain.EventStatus) ([]domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Event
	for _, e := range m.events {
		if (status == "" && e.Status != domain.EventArchived) || e.Status == status {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memEvents) GetRegistration(_ context.Context, eventID, userID string) (*domain.EventRegistration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.regs[eventID+"/"+userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &r, nil
}

func (m *memEvents) Register(_ context.Context, reg domain.EventRegistration) (*domain.EventRegistration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.events[reg.EventID]
	if e.Capacity != nil && e.RegisteredCount >= *e.Capacity {
		return nil, fmt.Errorf("%w: event is full", domain.ErrConflict)
	}
	key := reg.EventID + "/" + reg.UserID
	if _, ok := m.regs[key]; ok {
		return nil, fmt.Errorf("%w: already registered", domain.ErrConflict)
	}
	reg.ID = fmt.Sprintf("reg-%d", len(m.regs)+1)
	m.regs[key] = reg
	e.RegisteredCount++
	m.events[reg.EventID] = e
	return &reg, nil
}

type recordingOpener struct {
	intents []domain.DonationIntent
	err     error
}

func (r *recordingOpener) CreateDonation(_ context.Context, in domain.DonationIntent) (*ledger.Checkout, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.intents = append(r.intents, in)
	id := fmt.Sprintf("don-%d", len(r.intents))
	return &ledger.Checkout{
		DonationID: id,
		Order:      payment.Order{ID: "order_" + id, Amount: in.Amount.Paise(), Currency: domain.CurrencyINR},
		KeyID:      payment.MockKeyID,
	}, nil
}

func ptr[T any](v T) *T { return &v }

func newLiveEvent(t *testing.T, svc *Service, fee domain.Money, capacity *int) *domain.Event {
	t.Helper()
	p := Patch{
		Title:         ptr("Health camp"),
		ScheduleStart: ptr(time.Date(2024, 9, 1, 9, 0, 0, 0, time.UTC)),
		Capacity:      capacity,
		Status:        ptr(domain.EventLive),
	}
	if fee > 0 {
		p.FeeEnabled = ptr(true)
		p.FeeAmount = ptr(fee)
	}
	e, err := svc.Create(context.Background(), "admin-1", p)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	return e
}

func TestCreateValidatesAndDefaultsToDraft(t *testing.T) {
	svc := NewService(newMemEvents(), &recordingOpener{}, zerolog.Nop())
	ctx := context.Background()

	e, err := svc.Create(ctx, "admin-1", Patch{Title: ptr(" Walkathon "), ScheduleStart: ptr(time.Now())})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if e.Status != domain.EventDraft || e.Title != "Walkathon" || e.CreatedBy != "admin-1" {
		t.Fatalf("event = %+v", e)
	}

	_, err = svc.Create(ctx, "admin-1", Patch{Title: ptr("Paid"), ScheduleStart: ptr(time.Now()), FeeEnabled: ptr(true)})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) || ve.Field != "fee_amount" {
		t.Fatalf("error = %v, want fee_amount validation", err)
	}
	if _, err := svc.List(ctx, "bogus"); !domain.IsValidation(err) {
		t.Fatalf("List(bogus) error = %v", err)
	}
}

func TestRegisterFreeEvent(t *testing.T) {
	opener := &recordingOpener{}
	svc := NewService(newMemEvents(), opener, zerolog.Nop())
	e := newLiveEvent(t, svc, 0, ptr(1))
	ctx := context.Background()

	got, err := svc.Register(ctx, e.ID, "u1")
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	if got.Checkout != nil || got.Registration.PaymentStatus != domain.RegistrationFree {
		t.Fatalf("registration = %+v", got)
	}
	if len(opener.intents) != 0 {
		t.Fatal("free events must not open a donation")
	}
	if _, err := svc.Register(ctx, e.ID, "u1"); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("duplicate Register() error = %v, want ErrConflict", err)
	}
	if _, err := svc.Register(ctx, e.ID, "u2"); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("full event Register() error = %v, want ErrConflict", err)
	}
}

func TestRegisterPaidEventOpensFeeDonation(t *testing.T) {
	opener := &recordingOpener{}
	svc := NewService(newMemEvents(), opener, zerolog.Nop())
	e := newLiveEvent(t, svc, 25000, nil)

	got, err := svc.Register(context.Background(), e.ID, "u1")
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	if got.Checkout == nil || got.Registration.PaymentStatus != domain.RegistrationPending {
		t.Fatalf("registration = %+v", got)
	}
	if got.Registration.DonationID == nil || *got.Registration.DonationID != got.Checkout.DonationID {
		t.Fatalf("registration not linked to donation: %+v", got.Registration)
	}
	in := opener.intents[0]
	if in.Type != domain.DonationEventFee || in.Amount != 25000 || in.EventID == nil || *in.EventID != e.ID || in.UserID != "u1" {
		t.Fatalf("intent = %+v", in)
	}
}

func TestRegisterRejectsClosedEvents(t *testing.T) {
	opener := &recordingOpener{}
	svc := NewService(newMemEvents(), opener, zerolog.Nop())
	ctx := context.Background()
	e := newLiveEvent(t, svc, 1000, nil)
	if err := svc.Archive(ctx, e.ID); err != nil {
		t.Fatalf("Archive() error: %v", err)
	}
	if _, err := svc.Register(ctx, e.ID, "u1"); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("Register() on archived event error = %v", err)
	}
	if len(opener.intents) != 0 {
		t.Fatal("no order may be opened for a closed event")
	}
	if _, err := svc.Register(ctx, "missing", "u1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Register() on missing event error = %v", err)
	}
}

func TestUpdateKeepsCapacityAboveRegistrations(t *testing.T) {
	svc := NewService(newMemEvents(), &recordingOpener{}, zerolog.Nop())
	ctx := context.Background()
	e := newLiveEvent(t, svc, 0, ptr(5))
	for _, u := range []string{"u1", "u2"} {
		if _, err := svc.Register(ctx, e.ID, u); err != nil {
			t.Fatalf("Register(%s) error: %v", u, err)
		}
	}
	if _, err := svc.Update(ctx, e.ID, Patch{Capacity: ptr(1)}); !domain.IsValidation(err) {
		t.Fatalf("Update() error = %v, want validation", err)
	}
	updated, err := svc.Update(ctx, e.ID, Patch{Venue: ptr("Town hall"), Status: ptr(domain.EventStatus("paused"))})
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if updated.Venue != "Town hall" || updated.Status != domain.EventPaused {
		t.Fatalf("updated = %+v", updated)
	}
}
