package receipt

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/weforyou/ledger/internal/domain"
	"github.com/weforyou/ledger/internal/storage"
)

func TestAmountInWords(t *testing.T) {
	tests := []struct {
		paise int64
		want  string
	}{
		{0, "Rupees Zero Only"},
		{100, "Rupees One Only"},
		{100000, "Rupees One Thousand Only"},
		{5050, "Rupees Fifty and Fifty Paise Only"},
		{1234500, "Rupees Twelve Thousand Three Hundred Forty Five Only"},
		{10000000, "Rupees One Lakh Only"},
		{250075000, "Rupees Twenty Five Lakh Seven Hundred Fifty Only"},
		{1000000000, "Rupees One Crore Only"},
		{1000000001, "Rupees One Crore and One Paise Only"},
	}
	for _, tc := range tests {
		if got := AmountInWords(domain.Money(tc.paise)); got != tc.want {
			t.Errorf("AmountInWords(%d) = %q, want %q", tc.paise, got, tc.want)
		}
	}
}

func sampleReceipt() domain.Receipt {
	return domain.Receipt{
		DonationID:    "don-1",
		Number:        "WFY202400007",
		FinancialYear: "2024-25",
		Section80G:    true,
		DonorName:     "Asha Rao",
		PAN:           "ABCDE1234F",
		Address:       "12 MG Road, Bengaluru",
		Amount:        domain.Money(150000),
		Currency:      "INR",
		CampaignTitle: "School Kits",
		PaymentRef:    "pay_123",
		IssuedAt:      time.Date(2024, 8, 15, 10, 0, 0, 0, time.UTC),
	}
}

func TestRenderProducesPDF(t *testing.T) {
	data, err := Render(sampleReceipt(), Issuer{Settings: domain.SiteSettings{OrgName: "We For You Foundation", PAN: "AAATW1234K"}})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("output does not start with a PDF header: %q", data[:min(len(data), 8)])
	}
}

type memReceipts struct {
	receipt domain.Receipt
	keys    []string
}

func (m *memReceipts) GetByDonationID(_ context.Context, donationID string) (*domain.Receipt, error) {
	if donationID != m.receipt.DonationID {
		return nil, domain.ErrNotFound
	}
	r := m.receipt
	return &r, nil
}

func (m *memReceipts) SetStorageKey(_ context.Context, _ string, key string) error {
	m.receipt.StorageKey = key
	m.keys = append(m.keys, key)
	return nil
}

type donationsByID map[string]domain.Donation

func (d donationsByID) GetDonation(_ context.Context, id string) (*domain.Donation, error) {
	don, ok := d[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &don, nil
}

type noSettings struct{}

func (noSettings) Get(context.Context) (*domain.SiteSettings, error) { return nil, domain.ErrNotFound }

func (noSettings) Save(context.Context, domain.SiteSettings) (*domain.SiteSettings, error) {
	return nil, errors.New("read only")
}

func newTestService(t *testing.T) (*Service, *memReceipts, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore() error: %v", err)
	}
	receipts := &memReceipts{receipt: sampleReceipt()}
	svc := NewService(Options{
		Receipts:  receipts,
		Donations: donationsByID{"don-1": {ID: "don-1", UserID: "u1"}},
		Settings:  noSettings{},
		Store:     store,
		Defaults:  domain.SiteSettings{OrgName: "We For You Foundation"},
		Logger:    zerolog.Nop(),
	})
	return svc, receipts, dir
}

func TestPublishStoresUnderFinancialYear(t *testing.T) {
	svc, receipts, dir := newTestService(t)
	if err := svc.Publish(context.Background(), receipts.receipt); err != nil {
		t.Fatalf("Publish() error: %v", err)
	}
	want := "receipts/2024-25/WFY202400007-2024-25.pdf"
	if receipts.receipt.StorageKey != want {
		t.Fatalf("storage key = %q, want %q", receipts.receipt.StorageKey, want)
	}
	if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(want))); err != nil {
		t.Fatalf("rendered file missing: %v", err)
	}
}

func TestFetchAccess(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Fetch(ctx, "don-1", "u2", false); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("other donor error = %v, want ErrForbidden", err)
	}
	if _, err := svc.Fetch(ctx, "missing", "u1", false); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown donation error = %v, want ErrNotFound", err)
	}
	doc, err := svc.Fetch(ctx, "don-1", "", true)
	if err != nil {
		t.Fatalf("admin Fetch() error: %v", err)
	}
	if doc.Filename != "receipt-WFY202400007-2024-25.pdf" {
		t.Fatalf("filename = %q", doc.Filename)
	}
}

func TestFetchRendersMissingDocument(t *testing.T) {
	svc, receipts, dir := newTestService(t)
	receipts.receipt.StorageKey = "receipts/2024-25/WFY202400007-2024-25.pdf"

	doc, err := svc.Fetch(context.Background(), "don-1", "u1", false)
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if !bytes.HasPrefix(doc.Data, []byte("%PDF")) {
		t.Fatal("fetched data is not a PDF")
	}
	if len(receipts.keys) != 1 {
		t.Fatalf("storage key recorded %d times, want 1", len(receipts.keys))
	}
	if _, err := os.Stat(filepath.Join(dir, "receipts", "2024-25", "WFY202400007-2024-25.pdf")); err != nil {
		t.Fatalf("re-rendered file missing: %v", err)
	}

	again, err := svc.Fetch(context.Background(), "don-1", "u1", false)
	if err != nil {
		t.Fatalf("second Fetch() error: %v", err)
	}
	if !bytes.Equal(again.Data, doc.Data) || len(receipts.keys) != 1 {
		t.Fatal("second fetch should read the stored document")
	}
}
