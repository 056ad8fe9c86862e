package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/weforyou/ledger/internal/account"
	"github.com/weforyou/ledger/internal/directory"
	"github.com/weforyou/ledger/internal/domain"
	"github.com/weforyou/ledger/internal/events"
	"github.com/weforyou/ledger/internal/ledger"
	"github.com/weforyou/ledger/internal/pledge"
	"github.com/weforyou/ledger/internal/receipt"
	"github.com/weforyou/ledger/internal/volunteer"
)

type AccountService interface {
	Register(ctx context.Context, in account.RegisterInput) (*account.Session, error)
	Login(ctx context.Context, email, password string) (*account.Session, error)
	Me(ctx context.Context, userID string) (*domain.User, error)
}

type LedgerService interface {
	CreateDonation(ctx context.Context, in domain.DonationIntent) (*ledger.Checkout, error)
	VerifyDonation(ctx context.Context, donationID, requesterID string, cb ledger.PaymentCallback) (*domain.Donation, error)
	ListMyDonations(ctx context.Context, userID string, status domain.DonationStatus) ([]domain.Donation, error)
	HandleWebhook(ctx context.Context, body []byte, signature string) (*ledger.WebhookResult, error)
	Refund(ctx context.Context, donationID string, req ledger.RefundRequest) (*domain.Donation, error)
	Reconcile(ctx context.Context, campaignID string, repair bool) ([]domain.CampaignAudit, error)
}

type ReceiptService interface {
	Fetch(ctx context.Context, donationID, requesterID string, admin bool) (*receipt.Document, error)
}

type PledgeService interface {
	Create(ctx context.Context, in pledge.CreateInput) (*domain.Pledge, error)
	Act(ctx context.Context, pledgeID, userID string, action domain.PledgeAction) (*domain.Pledge, error)
	ListMine(ctx context.Context, userID string) ([]domain.Pledge, error)
}

type DirectoryService interface {
	Register(ctx context.Context, in directory.RegisterInput, actorID string, selfRegistered bool) (*domain.BloodDonor, error)
	Search(ctx context.Context, q domain.DonorSearch) ([]domain.DonorListing, error)
	Reveal(ctx context.Context, userID, donorID, captchaToken, remoteIP string) (*domain.DonorContact, error)
	SetConsent(ctx context.Context, donorID string, consent bool, actorID string, admin bool) (*domain.BloodDonor, error)
	Hide(ctx context.Context, donorID string, hidden bool, actorID, reason string) error
}

type EventService interface {
	Create(ctx context.Context, actorID string, p events.Patch) (*domain.Event, error)
	Update(ctx context.Context, id string, p events.Patch) (*domain.Event, error)
	Archive(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*domain.Event, error)
	List(ctx context.Context, status string) ([]domain.Event, error)
	Register(ctx context.Context, eventID, userID string) (*events.Registration, error)
}

type VolunteerService interface {
	CreateMember(ctx context.Context, volunteerID string, in volunteer.MemberInput) (*domain.Member, error)
	ListMembers(ctx context.Context, volunteerID string) ([]domain.Member, error)
	UpdateMember(ctx context.Context, volunteerID, id string, in volunteer.MemberInput, admin bool) (*domain.Member, error)
	DonateOnBehalf(ctx context.Context, volunteerID, memberID string, in volunteer.OnBehalfInput) (*ledger.Checkout, error)
}

// Pinger reports database reachability for the health check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// App holds the services the HTTP handlers call.
type App struct {
	Logger     zerolog.Logger
	Accounts   AccountService
	Campaigns  domain.CampaignRepository
	Ledger     LedgerService
	Receipts   ReceiptService
	Pledges    PledgeService
	Directory  DirectoryService
	Events     EventService
	Volunteers VolunteerService
	Settings   domain.SettingsRepository
	Defaults   domain.SiteSettings
	Reports    domain.ReportRepository
	DB         Pinger
	Now        func() time.Time

	statsMu   sync.Mutex
	lastStats *domain.PublicStats
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
