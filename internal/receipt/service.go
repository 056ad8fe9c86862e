package receipt

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/weforyou/ledger/internal/domain"
	"github.com/weforyou/ledger/internal/storage"
)

// DonationReader is the part of the ledger needed for ownership checks.
type DonationReader interface {
	GetDonation(ctx context.Context, id string) (*domain.Donation, error)
}

type Options struct {
	Receipts  domain.ReceiptRepository
	Donations DonationReader
	Settings  domain.SettingsRepository
	Store     storage.BlobStore
	// Defaults is used when no site settings were saved yet.
	Defaults  domain.SiteSettings
	Signatory string
	Footer    string
	Logger    zerolog.Logger
}

type Service struct {
	receipts  domain.ReceiptRepository
	donations DonationReader
	settings  domain.SettingsRepository
	store     storage.BlobStore
	defaults  domain.SiteSettings
	signatory string
	footer    string
	logger    zerolog.Logger
}

func NewService(opts Options) *Service {
	return &Service{
		receipts:  opts.Receipts,
		donations: opts.Donations,
		settings:  opts.Settings,
		store:     opts.Store,
		defaults:  opts.Defaults,
		signatory: opts.Signatory,
		footer:    opts.Footer,
		logger:    opts.Logger,
	}
}

// Document is a rendered receipt ready to be served.
type Document struct {
	Filename string
	Data     []byte
}

// Publish renders r, stores it and records the storage key.
func (s *Service) Publish(ctx context.Context, r domain.Receipt) error {
	_, err := s.publish(ctx, r)
	return err
}

func (s *Service) publish(ctx context.Context, r domain.Receipt) ([]byte, error) {
	issuer, err := s.issuer(ctx)
	if err != nil {
		return nil, err
	}
	data, err := Render(r, issuer)
	if err != nil {
		return nil, err
	}
	key, err := s.store.Write(ctx, domain.ReceiptStorageKey(r), data)
	if err != nil {
		return nil, fmt.Errorf("receipt %s: store: %w", r.Number, err)
	}
	if err := s.receipts.SetStorageKey(ctx, r.DonationID, key); err != nil {
		return nil, fmt.Errorf("receipt %s: record key: %w", r.Number, err)
	}
	s.logger.Info().Str("receipt", r.Number).Str("key", key).Msg("receipt stored")
	return data, nil
}

// Fetch returns the receipt PDF of a donation. requesterID must own the
// donation unless admin is set. A receipt whose document is missing from
// storage is rendered again from the stored snapshot.
func (s *Service) Fetch(ctx context.Context, donationID, requesterID string, admin bool) (*Document, error) {
	d, err := s.donations.GetDonation(ctx, donationID)
	if err != nil {
		return nil, err
	}
	if !admin && d.UserID != requesterID {
		return nil, fmt.Errorf("%w: donation belongs to another account", domain.ErrForbidden)
	}
	r, err := s.receipts.GetByDonationID(ctx, donationID)
	if err != nil {
		return nil, err
	}
	doc := &Document{Filename: fmt.Sprintf("receipt-%s-%s.pdf", r.Number, r.FinancialYear)}

	if r.StorageKey != "" {
		data, err := s.store.Read(ctx, r.StorageKey)
		if err == nil {
			doc.Data = data
			return doc, nil
		}
		if !errors.Is(err, storage.ErrNotExist) {
			return nil, fmt.Errorf("receipt %s: read: %w", r.Number, err)
		}
		s.logger.Warn().Str("receipt", r.Number).Str("key", r.StorageKey).Msg("stored receipt missing, rendering again")
	}
	if doc.Data, err = s.publish(ctx, *r); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *Service) issuer(ctx context.Context) (Issuer, error) {
	issuer := Issuer{Settings: s.defaults, Signatory: s.signatory, Footer: s.footer}
	if s.settings == nil {
		return issuer, nil
	}
	saved, err := s.settings.Get(ctx)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return issuer, nil
	case err != nil:
		return issuer, fmt.Errorf("load site settings: %w", err)
	}
	issuer.Settings = *saved
	return issuer, nil
}
