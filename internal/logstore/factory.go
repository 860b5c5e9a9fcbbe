// Package logstore selects and constructs the core.LogStore backend for
// the running deployment profile.
package logstore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/CaoDuyThanh/drtrace/internal/config"
	"github.com/CaoDuyThanh/drtrace/internal/core"
	"github.com/CaoDuyThanh/drtrace/internal/logstore/memory"
	"github.com/CaoDuyThanh/drtrace/internal/logstore/postgres"
	"github.com/CaoDuyThanh/drtrace/internal/logstore/sqlite"
	"github.com/CaoDuyThanh/drtrace/internal/migrations"
	"github.com/CaoDuyThanh/drtrace/pkg/metrics"
)

// New creates the log store backend matching cfg.Storage.Backend, wrapped
// so every operation reports its latency and error count through reg.
//
// Profiles:
//   - "sqlite": embedded, single file, no external dependencies
//   - "postgres": external, shared across daemon replicas; pgPool must
//     already be connected and migrated
func New(ctx context.Context, cfg *config.Config, pgPool *pgxpool.Pool, logger *slog.Logger, reg *metrics.Registry) (core.LogStore, error) {
	logger.Info("initializing log store", "backend", cfg.Storage.Backend)

	switch cfg.Storage.Backend {
	case config.StorageBackendSQLite:
		store, err := sqlite.New(ctx, cfg.Storage.FilesystemPath, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize sqlite log store: %w", err)
		}
		return instrument(store, "sqlite", reg), nil

	case config.StorageBackendPostgres:
		if pgPool == nil {
			return nil, fmt.Errorf("postgres backend selected but no connection pool was provided")
		}
		if err := pgPool.Ping(ctx); err != nil {
			return nil, fmt.Errorf("postgres connection failed: %w", err)
		}
		return instrument(postgres.New(pgPool, logger), "postgres", reg), nil

	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Storage.Backend)
	}
}

// MigratePostgres opens a *sql.DB on dsn (pgx stdlib driver) and applies
// pending goose migrations, for use by `drtrace-daemon migrate`.
func MigratePostgres(dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("failed to open postgres connection: %w", err)
	}
	defer db.Close()

	return migrations.Up(db)
}

// NewFallback creates an in-memory log store for graceful degradation
// when the configured backend fails to initialize.
func NewFallback(logger *slog.Logger, reg *metrics.Registry) core.LogStore {
	logger.Warn("falling back to in-memory log store (data will NOT persist)")
	return instrument(memory.New(logger), "memory", reg)
}
