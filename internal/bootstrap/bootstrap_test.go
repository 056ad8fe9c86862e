package bootstrap

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/weforyou/ledger/internal/infra"
	"github.com/weforyou/ledger/internal/infra/credentials"
	"github.com/weforyou/ledger/internal/providers/captcha"
	"github.com/weforyou/ledger/internal/providers/payment"
	"github.com/weforyou/ledger/internal/storage"
)

// emptyTokens behaves like an integration_tokens table with no rows.
type emptyTokens struct{ reads int }

func (e *emptyTokens) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, errors.New("read only")
}

func (e *emptyTokens) QueryRow(context.Context, string, ...any) pgx.Row {
	e.reads++
	return noRow{}
}

func (e *emptyTokens) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

type noRow struct{}

func (noRow) Scan(...any) error { return pgx.ErrNoRows }

func TestNewGatewayMockMode(t *testing.T) {
	cfg := &infra.Config{AppEnv: "development"}
	cfg.Payment.Mode = infra.PaymentModeMock
	cfg.Payment.WebhookSecret = "whsec"

	gw, err := newGateway(context.Background(), cfg, credentials.NewStore(&emptyTokens{}), zerolog.Nop())
	if err != nil {
		t.Fatalf("newGateway: %v", err)
	}
	if gw.KeyID() != payment.MockKeyID {
		t.Fatalf("KeyID() = %q, want mock", gw.KeyID())
	}
}

func TestNewCaptchaFallsBackToStatic(t *testing.T) {
	tokens := &emptyTokens{}
	v, err := newCaptcha(context.Background(), &infra.Config{}, credentials.NewStore(tokens))
	if err != nil {
		t.Fatalf("newCaptcha: %v", err)
	}
	if _, ok := v.(captcha.Static); !ok {
		t.Fatalf("verifier = %T, want captcha.Static", v)
	}
	if tokens.reads != 1 {
		t.Fatalf("store reads = %d, want 1", tokens.reads)
	}

	cfg := &infra.Config{}
	cfg.Captcha.Secret = "site-secret"
	v, err = newCaptcha(context.Background(), cfg, credentials.NewStore(tokens))
	if err != nil {
		t.Fatalf("newCaptcha: %v", err)
	}
	if _, ok := v.(*captcha.SiteVerify); !ok {
		t.Fatalf("verifier = %T, want *captcha.SiteVerify", v)
	}
	if tokens.reads != 1 {
		t.Fatal("configured secret must not hit the store")
	}
}

func TestNewBlobStoreUsesFilesystemWithoutBucket(t *testing.T) {
	cfg := &infra.Config{}
	cfg.Storage.Path = t.TempDir()
	store, err := newBlobStore(context.Background(), cfg)
	if err != nil {
		t.Fatalf("newBlobStore: %v", err)
	}
	if _, ok := store.(*storage.FileStore); !ok {
		t.Fatalf("store = %T, want *storage.FileStore", store)
	}
}

func TestCountryLookupNilWithoutDatabase(t *testing.T) {
	if (&Services{}).CountryLookup() != nil {
		t.Fatal("CountryLookup() should be nil when no GeoIP database is loaded")
	}
}
