package infra

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	PaymentModeMock     = "mock"
	PaymentModeRazorpay = "razorpay"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv          string        `env:"APP_ENV,default=development"`
	Port            string        `env:"PORT,default=8080"`
	DatabaseURL     string        `env:"DATABASE_URL,required"`
	DBMaxConns      int32         `env:"DB_MAX_CONNS,default=10"`
	JWTSecret       string        `env:"JWT_SECRET,required"`
	TokenTTL        time.Duration `env:"TOKEN_TTL,default=24h"`
	AllowedOrigins  []string      `env:"CORS_ALLOWED_ORIGINS,default=http://localhost:3000"`
	GeoIPDBPath     string        `env:"GEOIP_DB_PATH"`
	FoundationPath  string        `env:"FOUNDATION_PROFILE"`
	RateLimitPerMin int           `env:"RATE_LIMIT_PER_MINUTE,default=120"`
	RateLimitBurst  int           `env:"RATE_LIMIT_BURST,default=30"`

	HTTP      HTTPConfig      `env:",prefix=HTTP_"`
	Payment   PaymentConfig   `env:",prefix=PAYMENT_"`
	Captcha   CaptchaConfig   `env:",prefix=CAPTCHA_"`
	Storage   StorageConfig   `env:",prefix=STORAGE_"`
	Scheduler SchedulerConfig `env:",prefix=SCHEDULER_"`
}

// HTTPConfig holds server timeouts in seconds.
type HTTPConfig struct {
	ReadTimeoutSeconds  int `env:"READ_TIMEOUT_SECONDS,default=15"`
	WriteTimeoutSeconds int `env:"WRITE_TIMEOUT_SECONDS,default=30"`
	IdleTimeoutSeconds  int `env:"IDLE_TIMEOUT_SECONDS,default=60"`
}

// PaymentConfig selects the gateway. Mode mock is refused in production.
type PaymentConfig struct {
	Mode          string `env:"MODE,default=mock"`
	KeyID         string `env:"RAZORPAY_KEY_ID"`
	KeySecret     string `env:"RAZORPAY_KEY_SECRET"`
	WebhookSecret string `env:"RAZORPAY_WEBHOOK_SECRET"`
	BaseURL       string `env:"RAZORPAY_BASE_URL,default=https://api.razorpay.com/v1"`
}

// CaptchaConfig configures the reveal captcha. An empty secret outside
// production accepts any non-empty token.
type CaptchaConfig struct {
	Secret    string `env:"SECRET"`
	VerifyURL string `env:"VERIFY_URL,default=https://hcaptcha.com/siteverify"`
}

// StorageConfig selects the receipt blob store.
type StorageConfig struct {
	Path   string `env:"PATH,default=./storage"`
	Bucket string `env:"S3_BUCKET"`
	Region string `env:"S3_REGION,default=ap-south-1"`
}

// SchedulerConfig drives the pledge charge loop.
type SchedulerConfig struct {
	Embedded     bool          `env:"EMBEDDED,default=false"`
	PollInterval time.Duration `env:"POLL_INTERVAL,default=1m"`
	RetryBackoff time.Duration `env:"RETRY_BACKOFF,default=6h"`
	ClaimLease   time.Duration `env:"CLAIM_LEASE,default=10m"`
	BatchSize    int           `env:"BATCH_SIZE,default=50"`
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(context.Background(), envconfig.OsLookuper())
}

// LoadConfigFrom decodes configuration from an arbitrary lookuper.
func LoadConfigFrom(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	c.Payment.Mode = strings.ToLower(strings.TrimSpace(c.Payment.Mode))
	switch c.Payment.Mode {
	case PaymentModeMock:
		if c.IsProduction() {
			return errors.New("PAYMENT_MODE=mock is not allowed when APP_ENV=production")
		}
	case PaymentModeRazorpay:
		if c.Payment.KeyID == "" {
			return errors.New("PAYMENT_RAZORPAY_KEY_ID is required when PAYMENT_MODE=razorpay")
		}
	default:
		return fmt.Errorf("unsupported PAYMENT_MODE %q", c.Payment.Mode)
	}
	if c.IsProduction() && c.Captcha.Secret == "" {
		return errors.New("CAPTCHA_SECRET is required when APP_ENV=production")
	}
	if c.RateLimitPerMin <= 0 {
		return errors.New("RATE_LIMIT_PER_MINUTE must be positive")
	}
	return nil
}

// IsProduction reports whether the service runs with production safeguards.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// MockPayments reports whether the gateway bypass may be used.
func (c *Config) MockPayments() bool {
	return c.Payment.Mode == PaymentModeMock && !c.IsProduction()
}

func (c *Config) HTTPReadTimeout() time.Duration {
	return time.Duration(c.HTTP.ReadTimeoutSeconds) * time.Second
}

func (c *Config) HTTPWriteTimeout() time.Duration {
	return time.Duration(c.HTTP.WriteTimeoutSeconds) * time.Second
}

func (c *Config) HTTPIdleTimeout() time.Duration {
	return time.Duration(c.HTTP.IdleTimeoutSeconds) * time.Second
}
