package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/weforyou/ledger/internal/bootstrap"
	"github.com/weforyou/ledger/internal/http/handlers"
	httpapi "github.com/weforyou/ledger/internal/http/httpapi"
	"github.com/weforyou/ledger/internal/infra"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, "api")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := bootstrap.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to start services")
	}
	defer svc.Close()

	app := &handlers.App{
		Logger:     logger,
		Accounts:   svc.Accounts,
		Campaigns:  svc.Campaigns,
		Ledger:     svc.Ledger,
		Receipts:   svc.Receipts,
		Pledges:    svc.PledgeSvc,
		Directory:  svc.Directory,
		Events:     svc.Events,
		Volunteers: svc.Volunteers,
		Settings:   svc.Settings,
		Defaults:   svc.Profile.DefaultSettings(),
		Reports:    svc.Reports,
		DB:         svc.Pool,
	}
	router := httpapi.NewRouter(app, httpapi.Options{
		JWTSecret:          cfg.JWTSecret,
		AllowedOrigins:     cfg.AllowedOrigins,
		RateLimitPerMinute: cfg.RateLimitPerMin,
		RateLimitBurst:     cfg.RateLimitBurst,
		DefaultLocale:      "en",
		CountryLookup:      svc.CountryLookup(),
		Logger:             logger,
	})
	server := infra.NewHTTPServer(cfg, router, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", server.Addr()).Msg("api listening")
		return server.Start()
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	if cfg.Scheduler.Embedded {
		g.Go(func() error {
			logger.Info().Dur("poll_interval", cfg.Scheduler.PollInterval).Msg("embedded pledge scheduler started")
			if err := svc.Scheduler.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("api stopped with error")
		svc.Close()
		os.Exit(1)
	}
	logger.Info().Msg("server stopped")
}
