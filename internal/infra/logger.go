package infra

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the logging type passed across package boundaries.
type Logger = zerolog.Logger

// NewLogger builds the root logger for one binary. LOG_LEVEL overrides the
// environment default (debug in development, info elsewhere).
func NewLogger(appEnv, service string) zerolog.Logger {
	dev := strings.EqualFold(appEnv, "development")

	level := zerolog.InfoLevel
	if dev {
		level = zerolog.DebugLevel
	}
	if raw := strings.TrimSpace(os.Getenv("LOG_LEVEL")); raw != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(raw)); err == nil {
			level = parsed
		}
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.DurationFieldUnit = time.Millisecond

	ctx := zerolog.New(os.Stdout).Level(level).With().Timestamp().Str("service", service)
	if dev {
		return ctx.Caller().Logger().Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05.000"})
	}
	return ctx.Str("env", appEnv).Logger()
}
