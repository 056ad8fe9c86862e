package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/weforyou/ledger/internal/domain"
	"github.com/weforyou/ledger/internal/providers/captcha"
)

// memDirectory mirrors the bounded counter upsert under one mutex.
type memDirectory struct {
	mu       sync.Mutex
	donors   map[string]domain.BloodDonor
	counters map[string]int
	reveals  int
	audits   []domain.AuditEntry
}

func newMemDirectory() *memDirectory {
	return &memDirectory{donors: map[string]domain.BloodDonor{}, counters: map[string]int{}}
}

func (m *memDirectory) Create(_ context.Context, d domain.BloodDonor) (*domain.BloodDonor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d.ID = fmt.Sprintf("donor-%d", len(m.donors)+1)
	m.donors[d.ID] = d
	return &d, nil
}

func (m *memDirectory) GetByID(_ context.Context, id string) (*domain.BloodDonor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.donors[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &d, nil
}

func (m *memDirectory) Search(_ context.Context, q domain.DonorSearch) ([]domain.BloodDonor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.BloodDonor
	for _, d := range m.donors {
		if d.BloodGroup == q.BloodGroup && (q.State == "" || strings.EqualFold(d.State, q.State)) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *memDirectory) SetConsent(_ context.Context, id string, consent bool, at time.Time) (*domain.BloodDonor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := m.donors[id]
	d.ConsentPublic = consent
	d.ConsentPublicAt = &at
	m.donors[id] = d
	return &d, nil
}

func (m *memDirectory) SetHidden(_ context.Context, id string, hidden bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := m.donors[id]
	d.ModerationHidden = hidden
	m.donors[id] = d
	return nil
}

func (m *memDirectory) RecordReveal(_ context.Context, userID, donorID string, day time.Time, limit int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := userID + "/" + day.Format(time.DateOnly)
	if m.counters[key] >= limit {
		return 0, domain.ErrRateLimited
	}
	m.counters[key]++
	m.reveals++
	d := m.donors[donorID]
	d.ContactRevealCount++
	m.donors[donorID] = d
	return m.counters[key], nil
}

func (m *memDirectory) AppendAudit(_ context.Context, e domain.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.audits = append(m.audits, e)
	return nil
}

func newTestService(repo *memDirectory, now time.Time) *Service {
	svc := NewService(repo, captcha.Static{}, zerolog.Nop())
	svc.now = func() time.Time { return now }
	return svc
}

func seedDonor(repo *memDirectory, id string, consent, hidden bool) {
	repo.donors[id] = domain.BloodDonor{
		ID: id, FullName: "Ravi Kumar", BloodGroup: "O+", State: "Karnataka",
		Phone: "9876543210", Email: "ravi@example.org", ConsentPublic: consent, ModerationHidden: hidden,
		Availability: true, CreatedBy: "vol-1",
	}
}

func TestRevealRateLimit(t *testing.T) {
	repo := newMemDirectory()
	seedDonor(repo, "d1", true, false)
	svc := newTestService(repo, time.Date(2024, 8, 15, 23, 30, 0, 0, time.UTC))
	ctx := context.Background()

	for i := 1; i <= domain.MaxRevealsPerDay; i++ {
		contact, err := svc.Reveal(ctx, "u1", "d1", "token", "")
		if err != nil {
			t.Fatalf("reveal %d error: %v", i, err)
		}
		if contact.Phone != "9876543210" || contact.RevealsToday != i {
			t.Fatalf("reveal %d = %+v", i, contact)
		}
	}
	contact, err := svc.Reveal(ctx, "u1", "d1", "token", "")
	if !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("6th reveal error = %v, want ErrRateLimited", err)
	}
	if contact != nil {
		t.Fatal("rate-limited reveal must not return contact details")
	}
	if repo.reveals != domain.MaxRevealsPerDay || repo.donors["d1"].ContactRevealCount != domain.MaxRevealsPerDay {
		t.Fatalf("reveals logged = %d, donor count = %d", repo.reveals, repo.donors["d1"].ContactRevealCount)
	}

	// Another user has their own allowance.
	if _, err := svc.Reveal(ctx, "u2", "d1", "token", ""); err != nil {
		t.Fatalf("other user reveal error: %v", err)
	}

	// A new UTC day resets the counter.
	svc.now = func() time.Time { return time.Date(2024, 8, 16, 0, 5, 0, 0, time.UTC) }
	if _, err := svc.Reveal(ctx, "u1", "d1", "token", ""); err != nil {
		t.Fatalf("next day reveal error: %v", err)
	}
}

func TestRevealConcurrentAttempts(t *testing.T) {
	repo := newMemDirectory()
	seedDonor(repo, "d1", true, false)
	svc := newTestService(repo, time.Date(2024, 8, 15, 12, 0, 0, 0, time.UTC))

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		granted int
		limited int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Reveal(context.Background(), "u1", "d1", "token", "")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				granted++
			case errors.Is(err, domain.ErrRateLimited):
				limited++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()
	if granted != domain.MaxRevealsPerDay || limited != 50-domain.MaxRevealsPerDay {
		t.Fatalf("granted = %d, limited = %d", granted, limited)
	}
}

func TestRevealChecksBeforeCounting(t *testing.T) {
	repo := newMemDirectory()
	seedDonor(repo, "private", false, false)
	seedDonor(repo, "hidden", true, true)
	seedDonor(repo, "public", true, false)
	svc := newTestService(repo, time.Date(2024, 8, 15, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()

	if _, err := svc.Reveal(ctx, "u1", "public", "", ""); !errors.Is(err, domain.ErrCaptcha) {
		t.Fatalf("missing captcha error = %v, want ErrCaptcha", err)
	}
	for _, id := range []string{"private", "hidden"} {
		if _, err := svc.Reveal(ctx, "u1", id, "token", ""); !errors.Is(err, domain.ErrForbidden) {
			t.Fatalf("%s donor error = %v, want ErrForbidden", id, err)
		}
	}
	if _, err := svc.Reveal(ctx, "u1", "missing", "token", ""); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown donor error = %v, want ErrNotFound", err)
	}
	if repo.reveals != 0 || len(repo.counters) != 0 {
		t.Fatalf("rejected reveals consumed allowance: %v", repo.counters)
	}
}

func TestSearchReturnsMaskedListings(t *testing.T) {
	repo := newMemDirectory()
	seedDonor(repo, "public", true, false)
	seedDonor(repo, "hidden", true, true)
	svc := newTestService(repo, time.Now())

	if _, err := svc.Search(context.Background(), domain.DonorSearch{BloodGroup: "X"}); !domain.IsValidation(err) {
		t.Fatalf("bad group error = %v, want validation", err)
	}
	got, err := svc.Search(context.Background(), domain.DonorSearch{BloodGroup: "o+", Available: true})
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "public" {
		t.Fatalf("listings = %+v", got)
	}
	if got[0].PhoneMasked != "987***10" {
		t.Fatalf("masked phone = %q", got[0].PhoneMasked)
	}
	body, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(body), "9876543210") || strings.Contains(string(body), "ravi@example.org") {
		t.Fatalf("listing leaks contact details: %s", body)
	}
}

func TestRegister(t *testing.T) {
	repo := newMemDirectory()
	svc := newTestService(repo, time.Date(2024, 8, 15, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()
	valid := RegisterInput{FullName: "Meera", BloodGroup: "ab-", Age: 30, Weight: 60, Phone: "9000000001", ConsentPublic: true}

	tests := []struct {
		name  string
		edit  func(*RegisterInput)
		field string
	}{
		{"no consent", func(in *RegisterInput) { in.ConsentPublic = false }, "consent_public"},
		{"too young", func(in *RegisterInput) { in.Age = 17 }, "age"},
		{"too light", func(in *RegisterInput) { in.Weight = 40 }, "weight"},
		{"no phone", func(in *RegisterInput) { in.Phone = " " }, "phone"},
		{"bad group", func(in *RegisterInput) { in.BloodGroup = "C" }, "blood_group"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := valid
			tc.edit(&in)
			_, err := svc.Register(ctx, in, "u1", true)
			var ve *domain.ValidationError
			if !errors.As(err, &ve) || ve.Field != tc.field {
				t.Fatalf("error = %v, want validation on %s", err, tc.field)
			}
		})
	}

	d, err := svc.Register(ctx, valid, "u1", true)
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	if d.BloodGroup != "AB-" || d.UserID != "u1" || !d.Availability || d.ConsentPublicAt == nil {
		t.Fatalf("registered donor = %+v", d)
	}
	if len(repo.audits) != 1 || repo.audits[0].Event != "blood_donor.registered" {
		t.Fatalf("audits = %+v", repo.audits)
	}
}

func TestConsentAndModeration(t *testing.T) {
	repo := newMemDirectory()
	seedDonor(repo, "d1", true, false)
	svc := newTestService(repo, time.Now())
	ctx := context.Background()

	if _, err := svc.SetConsent(ctx, "d1", false, "stranger", false); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("stranger consent error = %v, want ErrForbidden", err)
	}
	d, err := svc.SetConsent(ctx, "d1", false, "vol-1", false)
	if err != nil || d.ConsentPublic {
		t.Fatalf("SetConsent() = %+v, %v", d, err)
	}
	if err := svc.Hide(ctx, "d1", true, "admin", "spam"); err != nil {
		t.Fatalf("Hide() error: %v", err)
	}
	if !repo.donors["d1"].ModerationHidden {
		t.Fatal("donor not hidden")
	}
	if len(repo.audits) != 2 {
		t.Fatalf("audits = %d, want 2", len(repo.audits))
	}
}
