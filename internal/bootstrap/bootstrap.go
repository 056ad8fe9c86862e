// Package bootstrap wires the repositories and services shared by the
// api, worker and ledgerctl binaries.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/weforyou/ledger/internal/account"
	"github.com/weforyou/ledger/internal/adapter/repo"
	"github.com/weforyou/ledger/internal/directory"
	"github.com/weforyou/ledger/internal/domain"
	"github.com/weforyou/ledger/internal/events"
	"github.com/weforyou/ledger/internal/infra"
	"github.com/weforyou/ledger/internal/infra/credentials"
	"github.com/weforyou/ledger/internal/infra/geoip"
	"github.com/weforyou/ledger/internal/ledger"
	"github.com/weforyou/ledger/internal/middleware"
	"github.com/weforyou/ledger/internal/notify"
	"github.com/weforyou/ledger/internal/pledge"
	"github.com/weforyou/ledger/internal/providers/captcha"
	"github.com/weforyou/ledger/internal/providers/payment"
	"github.com/weforyou/ledger/internal/receipt"
	"github.com/weforyou/ledger/internal/storage"
	"github.com/weforyou/ledger/internal/volunteer"
)

// Services is the assembled application.
type Services struct {
	Pool    *pgxpool.Pool
	Runner  *infra.SQLRunner
	Profile *infra.FoundationProfile

	Users     domain.UserRepository
	Campaigns domain.CampaignRepository
	Settings  domain.SettingsRepository
	Reports   domain.ReportRepository
	Pledges   domain.PledgeRepository

	Credentials *credentials.Store
	Accounts    *account.Service
	Ledger      *ledger.Service
	Receipts    *receipt.Service
	PledgeSvc   *pledge.Service
	Directory   *directory.Service
	Events      *events.Service
	Volunteers  *volunteer.Service
	Scheduler   *pledge.Scheduler

	geo *geoip.Resolver
}

// Build connects to the database and assembles every service.
func Build(ctx context.Context, cfg *infra.Config, logger zerolog.Logger) (*Services, error) {
	profile, err := infra.LoadFoundationProfile(cfg.FoundationPath)
	if err != nil {
		return nil, err
	}
	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	runner := infra.NewSQLRunner(pool, logger)
	s := &Services{
		Pool:        pool,
		Runner:      runner,
		Profile:     profile,
		Users:       repo.NewUserRepository(runner),
		Campaigns:   repo.NewCampaignRepository(runner),
		Settings:    repo.NewSettingsRepository(runner),
		Reports:     repo.NewReportRepository(runner),
		Pledges:     repo.NewPledgeRepository(runner),
		Credentials: credentials.NewStore(runner),
	}

	gateway, err := newGateway(ctx, cfg, s.Credentials, logger)
	if err != nil {
		s.Close()
		return nil, err
	}
	verifier, err := newCaptcha(ctx, cfg, s.Credentials)
	if err != nil {
		s.Close()
		return nil, err
	}
	store, err := newBlobStore(ctx, cfg)
	if err != nil {
		s.Close()
		return nil, err
	}
	if cfg.GeoIPDBPath != "" {
		if s.geo, err = geoip.NewResolver(cfg.GeoIPDBPath); err != nil {
			s.Close()
			return nil, fmt.Errorf("geoip: %w", err)
		}
	}

	ledgerRepo := repo.NewLedgerRepository(runner)
	s.Receipts = receipt.NewService(receipt.Options{
		Receipts:  repo.NewReceiptRepository(runner),
		Donations: ledgerRepo,
		Settings:  s.Settings,
		Store:     store,
		Defaults:  profile.DefaultSettings(),
		Signatory: profile.Receipts.Signatory,
		Footer:    profile.Receipts.Footer,
		Logger:    logger.With().Str("component", "receipt").Logger(),
	})
	s.Ledger = ledger.NewService(ledger.Options{
		Ledger:        ledgerRepo,
		Campaigns:     s.Campaigns,
		Users:         s.Users,
		Gateway:       gateway,
		Receipts:      s.Receipts,
		Notifier:      notify.NewLogNotifier(logger.With().Str("component", "notify").Logger(), profile.Organization.Name),
		ReceiptPrefix: profile.Receipts.Prefix,
		Logger:        logger.With().Str("component", "ledger").Logger(),
	})
	s.Accounts = account.NewService(s.Users, cfg.JWTSecret, cfg.TokenTTL)
	s.PledgeSvc = pledge.NewService(s.Pledges, s.Campaigns, logger.With().Str("component", "pledge").Logger())
	s.Directory = directory.NewService(repo.NewDirectoryRepository(runner), verifier, logger.With().Str("component", "directory").Logger())
	s.Events = events.NewService(repo.NewEventRepository(runner), s.Ledger, logger.With().Str("component", "events").Logger())
	s.Volunteers = volunteer.NewService(repo.NewMemberRepository(runner), s.Ledger, logger.With().Str("component", "volunteer").Logger())
	s.Scheduler = pledge.NewScheduler(pledge.SchedulerOptions{
		Pledges:      s.Pledges,
		Charger:      s.Ledger,
		PollInterval: cfg.Scheduler.PollInterval,
		RetryBackoff: cfg.Scheduler.RetryBackoff,
		ClaimLease:   cfg.Scheduler.ClaimLease,
		BatchSize:    cfg.Scheduler.BatchSize,
		Logger:       logger.With().Str("component", "scheduler").Logger(),
	})

	logger.Info().
		Str("payment_mode", cfg.Payment.Mode).
		Bool("s3_receipts", cfg.Storage.Bucket != "").
		Bool("geoip", s.geo != nil).
		Msg("services ready")
	return s, nil
}

// CountryLookup returns the GeoIP lookup, or nil when no database is loaded.
func (s *Services) CountryLookup() middleware.CountryLookup {
	if s.geo == nil {
		return nil
	}
	return s.geo.CountryCode
}

func (s *Services) Close() {
	if s.geo != nil {
		_ = s.geo.Close()
	}
	if s.Pool != nil {
		s.Pool.Close()
	}
}

func newGateway(ctx context.Context, cfg *infra.Config, creds *credentials.Store, logger zerolog.Logger) (payment.Gateway, error) {
	if cfg.MockPayments() {
		logger.Warn().Msg("payment gateway in mock mode, orders settle without a real charge")
		return payment.NewMock(cfg.Payment.WebhookSecret), nil
	}
	secret, err := creds.Resolve(ctx, credentials.ProviderRazorpaySecret, cfg.Payment.KeySecret)
	if err != nil {
		return nil, fmt.Errorf("resolve razorpay secret: %w", err)
	}
	webhookSecret, err := creds.Resolve(ctx, credentials.ProviderRazorpayWebhook, cfg.Payment.WebhookSecret)
	if err != nil {
		return nil, fmt.Errorf("resolve razorpay webhook secret: %w", err)
	}
	gwLogger := logger.With().Str("component", "razorpay").Logger()
	return payment.NewRazorpay(payment.Options{
		KeyID:          cfg.Payment.KeyID,
		KeySecret:      secret,
		WebhookSecret:  webhookSecret,
		BaseURL:        cfg.Payment.BaseURL,
		Logger:         &gwLogger,
		RequestTimeout: 20 * time.Second,
	})
}

func newCaptcha(ctx context.Context, cfg *infra.Config, creds *credentials.Store) (captcha.Verifier, error) {
	secret, err := creds.Resolve(ctx, credentials.ProviderCaptcha, cfg.Captcha.Secret)
	if err != nil {
		return nil, fmt.Errorf("resolve captcha secret: %w", err)
	}
	if secret == "" {
		return captcha.Static{}, nil
	}
	return captcha.NewSiteVerify(secret, cfg.Captcha.VerifyURL, &http.Client{Timeout: 10 * time.Second}), nil
}

func newBlobStore(ctx context.Context, cfg *infra.Config) (storage.BlobStore, error) {
	if cfg.Storage.Bucket != "" {
		return storage.NewS3Store(ctx, cfg.Storage.Bucket, cfg.Storage.Region)
	}
	return storage.NewFileStore(cfg.Storage.Path)
}
