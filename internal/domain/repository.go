package domain

import (
	"context"
	"time"
)

// UserRepository defines access methods for accounts.
type UserRepository interface {
	Create(ctx context.Context, user User) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	SetRoles(ctx context.Context, email string, roles []Role) (*User, error)
}

// CampaignRepository covers campaign reads and admin writes. Aggregates are
// only changed through LedgerTx.
type CampaignRepository interface {
	Create(ctx context.Context, c Campaign) (*Campaign, error)
	GetByID(ctx context.Context, id string) (*Campaign, error)
	List(ctx context.Context, status CampaignStatus) ([]Campaign, error)
	UpdateStatus(ctx context.Context, id string, status CampaignStatus) (*Campaign, error)
	RecentDonors(ctx context.Context, campaignID string, limit int) ([]RecentDonor, error)
	Analytics(ctx context.Context) ([]CampaignAnalytics, error)
}

// LedgerRepository owns donation settlement state.
type LedgerRepository interface {
	WithinTx(ctx context.Context, fn func(LedgerTx) error) error
	GetDonation(ctx context.Context, id string) (*Donation, error)
	GetDonationByOrderID(ctx context.Context, orderID string) (*Donation, error)
	ListDonationsByUser(ctx context.Context, userID string, status DonationStatus) ([]Donation, error)
	AuditCampaigns(ctx context.Context, campaignID string) ([]CampaignAudit, error)
}

// LedgerTx is the set of writes available inside one ledger transaction.
type LedgerTx interface {
	InsertDonation(ctx context.Context, id string, in DonationIntent, orderID string) (*Donation, error)
	InsertPaymentAttempt(ctx context.Context, donationID, orderID string, payload []byte) error
	LockDonation(ctx context.Context, id string) (*Donation, error)
	UpdateDonationStatus(ctx context.Context, id string, from, to DonationStatus, paymentRef string) error
	UpdatePaymentAttempt(ctx context.Context, donationID, orderID, status string, payload []byte) error
	AddCampaignDonor(ctx context.Context, campaignID, userID, donationID string) (bool, error)
	AddToCampaign(ctx context.Context, campaignID string, amount Money, newDonor bool) error
	SubtractFromCampaign(ctx context.Context, campaignID string, amount Money) error
	ClaimRefund(ctx context.Context, id string) error
	ReleaseRefund(ctx context.Context, id string) error
	MarkRefunded(ctx context.Context, id string, amount Money, refundRef string) error
	NextReceiptSequence(ctx context.Context) (int64, error)
	InsertReceipt(ctx context.Context, r Receipt) (*Receipt, error)
	LockPledge(ctx context.Context, id string) (*Pledge, error)
	RecordPledgeCharge(ctx context.Context, id string, chargedAt, next time.Time) error
	MarkRegistrationPayment(ctx context.Context, donationID, status string) error
	RepairCampaign(ctx context.Context, audit CampaignAudit) error
}

// PledgeRepository persists recurring pledges. Transition is a
// compare-and-swap on (status, version).
type PledgeRepository interface {
	Create(ctx context.Context, p Pledge) (*Pledge, error)
	GetByID(ctx context.Context, id string) (*Pledge, error)
	ListByUser(ctx context.Context, userID string) ([]Pledge, error)
	Transition(ctx context.Context, id string, from PledgeStatus, version int, to PledgeStatus, nextChargeAt *time.Time) (*Pledge, error)
	ClaimDue(ctx context.Context, now, retryBefore time.Time, lease time.Duration, limit int) ([]Pledge, error)
	RecordChargeFailure(ctx context.Context, id string, at time.Time, reason string) error
}

// DirectoryRepository owns blood donor records and the reveal counter.
type DirectoryRepository interface {
	Create(ctx context.Context, d BloodDonor) (*BloodDonor, error)
	GetByID(ctx context.Context, id string) (*BloodDonor, error)
	Search(ctx context.Context, q DonorSearch) ([]BloodDonor, error)
	SetConsent(ctx context.Context, id string, consent bool, at time.Time) (*BloodDonor, error)
	SetHidden(ctx context.Context, id string, hidden bool) error
	// RecordReveal atomically increments the (user, day) counter if it is
	// below limit and logs the reveal. It returns ErrRateLimited and changes
	// nothing when the cap is reached.
	RecordReveal(ctx context.Context, userID, donorID string, day time.Time, limit int) (int, error)
	AppendAudit(ctx context.Context, e AuditEntry) error
}

// ReceiptRepository reads issued receipts.
type ReceiptRepository interface {
	GetByDonationID(ctx context.Context, donationID string) (*Receipt, error)
	SetStorageKey(ctx context.Context, donationID, key string) error
}

// EventRepository persists events and registrations.
type EventRepository interface {
	Create(ctx context.Context, e Event) (*Event, error)
	Update(ctx context.Context, e Event) (*Event, error)
	Archive(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*Event, error)
	List(ctx context.Context, status EventStatus) ([]Event, error)
	GetRegistration(ctx context.Context, eventID, userID string) (*EventRegistration, error)
	// Register enforces LIVE status, capacity and one registration per user.
	Register(ctx context.Context, reg EventRegistration) (*EventRegistration, error)
}

// MemberRepository persists volunteer-managed donor records.
type MemberRepository interface {
	Create(ctx context.Context, m Member) (*Member, error)
	GetByID(ctx context.Context, id string) (*Member, error)
	ListByCreator(ctx context.Context, createdBy string) ([]Member, error)
	Update(ctx context.Context, m Member) (*Member, error)
}

// SettingsRepository stores the site settings document.
type SettingsRepository interface {
	Get(ctx context.Context) (*SiteSettings, error)
	Save(ctx context.Context, s SiteSettings) (*SiteSettings, error)
}

// ReportRepository serves read-only aggregates and exports.
type ReportRepository interface {
	PublicStats(ctx context.Context) (*PublicStats, error)
	Export(ctx context.Context, kind string) (*ExportTable, error)
}
