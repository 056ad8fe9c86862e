// Command ledgerctl is the operator CLI: schema migrations, aggregate
// reconciliation, role grants and integration secrets.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/weforyou/ledger/internal/infra"
)

var Version = "dev"

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:           "ledgerctl",
		Short:         "Operator tooling for the donation ledger",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(reconcileCmd())
	rootCmd.AddCommand(usersCmd())
	rootCmd.AddCommand(credentialsCmd())
	rootCmd.AddCommand(pledgesCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "ledgerctl:", err)
		os.Exit(1)
	}
}

// session is a database connection opened for one command.
type session struct {
	cfg    *infra.Config
	logger infra.Logger
	pool   *pgxpool.Pool
	runner *infra.SQLRunner
}

func loadConfig(name string) (*infra.Config, infra.Logger, error) {
	cfg, err := infra.LoadConfig()
	if err != nil {
		return nil, infra.Logger{}, err
	}
	logger := infra.NewLogger(cfg.AppEnv, "ledgerctl").With().Str("cmd", name).Logger()
	return cfg, logger, nil
}

func openSession(ctx context.Context, name string) (*session, error) {
	cfg, logger, err := loadConfig(name)
	if err != nil {
		return nil, err
	}
	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return &session{cfg: cfg, logger: logger, pool: pool, runner: infra.NewSQLRunner(pool, logger)}, nil
}

func (s *session) Close() { s.pool.Close() }
