package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/weforyou/ledger/internal/bootstrap"
	"github.com/weforyou/ledger/internal/infra"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, "worker")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := bootstrap.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to start services")
	}
	defer svc.Close()

	logger.Info().
		Dur("poll_interval", cfg.Scheduler.PollInterval).
		Int("batch_size", cfg.Scheduler.BatchSize).
		Msg("worker: pledge scheduler started")
	if err := svc.Scheduler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("worker: stopped with error")
		svc.Close()
		os.Exit(1)
	}
	logger.Info().Msg("worker: stopped")
}
