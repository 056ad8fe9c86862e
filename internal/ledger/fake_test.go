package ledger

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/weforyou/ledger/internal/domain"
	"github.com/weforyou/ledger/internal/notify"
)

// memLedger keeps ledger state in maps. Transactions are serialized and
// rolled back by restoring a snapshot.
type memLedger struct {
	mu            sync.Mutex
	donations     map[string]domain.Donation
	campaigns     map[string]domain.Campaign
	donors        map[string]bool
	receipts      map[string]domain.Receipt
	pledges       map[string]domain.Pledge
	registrations map[string]string
	attempts      map[string]string
	refundClaims  map[string]bool
	seq           int64
}

func newMemLedger() *memLedger {
	return &memLedger{
		donations:     map[string]domain.Donation{},
		campaigns:     map[string]domain.Campaign{},
		donors:        map[string]bool{},
		receipts:      map[string]domain.Receipt{},
		pledges:       map[string]domain.Pledge{},
		registrations: map[string]string{},
		attempts:      map[string]string{},
		refundClaims:  map[string]bool{},
	}
}

func (m *memLedger) snapshot() *memLedger {
	return &memLedger{
		donations:     maps.Clone(m.donations),
		campaigns:     maps.Clone(m.campaigns),
		donors:        maps.Clone(m.donors),
		receipts:      maps.Clone(m.receipts),
		pledges:       maps.Clone(m.pledges),
		registrations: maps.Clone(m.registrations),
		attempts:      maps.Clone(m.attempts),
		refundClaims:  maps.Clone(m.refundClaims),
		seq:           m.seq,
	}
}

func (m *memLedger) restore(s *memLedger) {
	m.donations, m.campaigns, m.donors = s.donations, s.campaigns, s.donors
	m.receipts, m.pledges, m.registrations = s.receipts, s.pledges, s.registrations
	m.attempts, m.refundClaims, m.seq = s.attempts, s.refundClaims, s.seq
}

func (m *memLedger) WithinTx(_ context.Context, fn func(domain.LedgerTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	before := m.snapshot()
	if err := fn(memTx{m}); err != nil {
		m.restore(before)
		return err
	}
	return nil
}

func (m *memLedger) GetDonation(_ context.Context, id string) (*domain.Donation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.donations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &d, nil
}

func (m *memLedger) GetDonationByOrderID(_ context.Context, orderID string) (*domain.Donation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.donations {
		if d.OrderID == orderID {
			return &d, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memLedger) ListDonationsByUser(_ context.Context, userID string, status domain.DonationStatus) ([]domain.Donation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Donation
	for _, d := range m.donations {
		if d.UserID == userID && (status == "" || d.Status == status) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *memLedger) AuditCampaigns(_ context.Context, campaignID string) ([]domain.CampaignAudit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.CampaignAudit
	for id, c := range m.campaigns {
		if campaignID != "" && id != campaignID {
			continue
		}
		a := domain.CampaignAudit{CampaignID: id, Title: c.Title, StoredAmount: c.CurrentAmount, StoredDonors: c.DonorCount}
		users := map[string]bool{}
		for _, d := range m.donations {
			if d.CampaignID == nil || *d.CampaignID != id {
				continue
			}
			if d.Status == domain.DonationSuccess || d.Status == domain.DonationRefunded {
				a.ComputedAmount += d.Amount - d.RefundedAmount
				users[d.UserID] = true
			}
		}
		a.ComputedDonors = len(users)
		out = append(out, a)
	}
	return out, nil
}

type memTx struct{ m *memLedger }

func (t memTx) InsertDonation(_ context.Context, id string, in domain.DonationIntent, orderID string) (*domain.Donation, error) {
	d := domain.Donation{
		ID: id, CampaignID: in.CampaignID, UserID: in.UserID, Amount: in.Amount, Currency: in.Currency,
		Status: domain.DonationPending, Type: in.Type, Want80G: in.Want80G, PAN: in.PAN,
		LegalName: in.LegalName, Address: in.Address, OrderID: orderID, PledgeID: in.PledgeID,
		EventID: in.EventID, MemberID: in.MemberID, DonorName: in.DonorName,
	}
	if in.CampaignID != nil {
		d.CampaignTitle = t.m.campaigns[*in.CampaignID].Title
	}
	t.m.donations[id] = d
	return &d, nil
}

func (t memTx) InsertPaymentAttempt(_ context.Context, donationID, _ string, _ []byte) error {
	t.m.attempts[donationID] = domain.AttemptInitiated
	return nil
}

func (t memTx) LockDonation(_ context.Context, id string) (*domain.Donation, error) {
	d, ok := t.m.donations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &d, nil
}

func (t memTx) UpdateDonationStatus(_ context.Context, id string, from, to domain.DonationStatus, paymentRef string) error {
	d, ok := t.m.donations[id]
	if !ok || d.Status != from {
		return domain.ErrConflict
	}
	d.Status = to
	if paymentRef != "" {
		d.PaymentRef = paymentRef
	}
	t.m.donations[id] = d
	return nil
}

func (t memTx) UpdatePaymentAttempt(_ context.Context, donationID, _ string, status string, _ []byte) error {
	t.m.attempts[donationID] = status
	return nil
}

func (t memTx) AddCampaignDonor(_ context.Context, campaignID, userID, _ string) (bool, error) {
	key := campaignID + "/" + userID
	if t.m.donors[key] {
		return false, nil
	}
	t.m.donors[key] = true
	return true, nil
}

func (t memTx) AddToCampaign(_ context.Context, campaignID string, amount domain.Money, newDonor bool) error {
	c, ok := t.m.campaigns[campaignID]
	if !ok {
		return domain.ErrNotFound
	}
	c.CurrentAmount += amount
	if newDonor {
		c.DonorCount++
	}
	t.m.campaigns[campaignID] = c
	return nil
}

func (t memTx) SubtractFromCampaign(_ context.Context, campaignID string, amount domain.Money) error {
	c, ok := t.m.campaigns[campaignID]
	if !ok {
		return domain.ErrNotFound
	}
	c.CurrentAmount -= amount
	t.m.campaigns[campaignID] = c
	return nil
}

func (t memTx) ClaimRefund(_ context.Context, id string) error {
	if t.m.donations[id].Status != domain.DonationSuccess || t.m.refundClaims[id] {
		return domain.ErrConflict
	}
	t.m.refundClaims[id] = true
	return nil
}

func (t memTx) ReleaseRefund(_ context.Context, id string) error {
	delete(t.m.refundClaims, id)
	return nil
}

func (t memTx) MarkRefunded(_ context.Context, id string, amount domain.Money, refundRef string) error {
	d := t.m.donations[id]
	if d.Status != domain.DonationSuccess {
		return domain.ErrConflict
	}
	delete(t.m.refundClaims, id)
	d.Status, d.RefundedAmount, d.RefundRef = domain.DonationRefunded, amount, refundRef
	t.m.donations[id] = d
	return nil
}

func (t memTx) NextReceiptSequence(context.Context) (int64, error) {
	t.m.seq++
	return t.m.seq, nil
}

func (t memTx) InsertReceipt(_ context.Context, r domain.Receipt) (*domain.Receipt, error) {
	if existing, ok := t.m.receipts[r.DonationID]; ok {
		return &existing, nil
	}
	r.ID = fmt.Sprintf("receipt-%d", len(t.m.receipts)+1)
	t.m.receipts[r.DonationID] = r
	return &r, nil
}

func (t memTx) LockPledge(_ context.Context, id string) (*domain.Pledge, error) {
	p, ok := t.m.pledges[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (t memTx) RecordPledgeCharge(_ context.Context, id string, chargedAt, next time.Time) error {
	p := t.m.pledges[id]
	p.LastChargeAt = &chargedAt
	p.NextChargeAt = next
	t.m.pledges[id] = p
	return nil
}

func (t memTx) MarkRegistrationPayment(_ context.Context, donationID, status string) error {
	t.m.registrations[donationID] = status
	return nil
}

func (t memTx) RepairCampaign(_ context.Context, a domain.CampaignAudit) error {
	c := t.m.campaigns[a.CampaignID]
	c.CurrentAmount, c.DonorCount = a.ComputedAmount, a.ComputedDonors
	t.m.campaigns[a.CampaignID] = c
	return nil
}

// memCampaigns reads campaigns from the same store.
type memCampaigns struct{ m *memLedger }

func (c memCampaigns) Create(context.Context, domain.Campaign) (*domain.Campaign, error) {
	return nil, fmt.Errorf("not implemented")
}

func (c memCampaigns) GetByID(_ context.Context, id string) (*domain.Campaign, error) {
	c.m.mu.Lock()
	defer c.m.mu.Unlock()
	campaign, ok := c.m.campaigns[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &campaign, nil
}

func (c memCampaigns) List(context.Context, domain.CampaignStatus) ([]domain.Campaign, error) {
	return nil, nil
}

func (c memCampaigns) UpdateStatus(context.Context, string, domain.CampaignStatus) (*domain.Campaign, error) {
	return nil, fmt.Errorf("not implemented")
}

func (c memCampaigns) RecentDonors(context.Context, string, int) ([]domain.RecentDonor, error) {
	return nil, nil
}

func (c memCampaigns) Analytics(context.Context) ([]domain.CampaignAnalytics, error) {
	return nil, nil
}

type stubUsers struct{}

func (stubUsers) Create(context.Context, domain.User) (*domain.User, error) { return nil, nil }

func (stubUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	if id == "ghost" {
		return nil, domain.ErrNotFound
	}
	return &domain.User{ID: id, FullName: "Donor " + id, Email: id + "@example.org"}, nil
}

func (stubUsers) GetByEmail(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrNotFound
}

func (stubUsers) SetRoles(context.Context, string, []domain.Role) (*domain.User, error) {
	return nil, nil
}

type recordingNotifier struct {
	mu      sync.Mutex
	settled []string
	due     []string
}

func (n *recordingNotifier) DonationSettled(_ context.Context, _ notify.Recipient, d domain.Donation) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.settled = append(n.settled, d.ID)
	return nil
}

func (n *recordingNotifier) PledgeChargeDue(_ context.Context, _ notify.Recipient, p domain.Pledge, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.due = append(n.due, p.ID)
	return nil
}

type recordingPublisher struct {
	mu        sync.Mutex
	published []domain.Receipt
}

func (p *recordingPublisher) Publish(_ context.Context, r domain.Receipt) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, r)
	return nil
}
