package infra

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migration is one embedded schema file.
type Migration struct {
	Version string
	SQL     string
}

// Migrations returns the embedded schema files ordered by version.
func Migrations() ([]Migration, error) {
	entries, err := fs.ReadDir(migrationFiles, "migrations")
	if err != nil {
		return nil, err
	}
	out := make([]Migration, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		body, err := migrationFiles.ReadFile(path.Join("migrations", e.Name()))
		if err != nil {
			return nil, err
		}
		out = append(out, Migration{Version: strings.TrimSuffix(e.Name(), ".sql"), SQL: string(body)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// Migrate applies pending migrations over a database/sql connection. Each
// file runs in its own transaction together with its bookkeeping row.
func Migrate(ctx context.Context, databaseURL string, logger zerolog.Logger) ([]string, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("migrate: connect: %w", err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, `create table if not exists schema_migrations (
    version text primary key,
    applied_at timestamptz not null default now()
)`); err != nil {
		return nil, fmt.Errorf("migrate: bookkeeping table: %w", err)
	}

	var applied []string
	if err := db.SelectContext(ctx, &applied, `select version from schema_migrations order by version`); err != nil {
		return nil, fmt.Errorf("migrate: list applied: %w", err)
	}
	done := make(map[string]bool, len(applied))
	for _, v := range applied {
		done[v] = true
	}

	migrations, err := Migrations()
	if err != nil {
		return nil, fmt.Errorf("migrate: read embedded files: %w", err)
	}

	var ran []string
	for _, m := range migrations {
		if done[m.Version] {
			continue
		}
		tx, err := db.BeginTxx(ctx, nil)
		if err != nil {
			return ran, fmt.Errorf("migrate: begin %s: %w", m.Version, err)
		}
		if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
			_ = tx.Rollback()
			return ran, fmt.Errorf("migrate: apply %s: %w", m.Version, err)
		}
		if _, err := tx.ExecContext(ctx, `insert into schema_migrations (version) values ($1)`, m.Version); err != nil {
			_ = tx.Rollback()
			return ran, fmt.Errorf("migrate: record %s: %w", m.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return ran, fmt.Errorf("migrate: commit %s: %w", m.Version, err)
		}
		logger.Info().Str("version", m.Version).Msg("migration applied")
		ran = append(ran, m.Version)
	}
	return ran, nil
}

// MigrationStatus is one embedded migration and whether it was applied.
type MigrationStatus struct {
	Version   string     `db:"version"`
	AppliedAt *time.Time `db:"applied_at"`
}

// MigrationStatuses lists every embedded migration alongside its
// schema_migrations row, if any.
func MigrationStatuses(ctx context.Context, databaseURL string) ([]MigrationStatus, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("migrate: connect: %w", err)
	}
	defer db.Close()

	var rows []MigrationStatus
	err = db.SelectContext(ctx, &rows, `select version, applied_at from schema_migrations order by version`)
	if err != nil && !isUndefinedTable(err) {
		return nil, fmt.Errorf("migrate: list applied: %w", err)
	}
	applied := make(map[string]*time.Time, len(rows))
	for _, r := range rows {
		applied[r.Version] = r.AppliedAt
	}

	migrations, err := Migrations()
	if err != nil {
		return nil, err
	}
	out := make([]MigrationStatus, 0, len(migrations))
	for _, m := range migrations {
		out = append(out, MigrationStatus{Version: m.Version, AppliedAt: applied[m.Version]})
	}
	return out, nil
}

func isUndefinedTable(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "42P01"
}
