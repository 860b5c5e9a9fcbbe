// Package migrations applies the daemon's PostgreSQL schema with goose.
// The embedded SQLite backend bootstraps its own schema inline (see
// internal/logstore/sqlite) since a single-file embedded database has no
// equivalent need for forward-only versioned migrations across replicas.
package migrations

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed sql/*.sql
var migrationFiles embed.FS

// Up applies all pending migrations to db using the postgres dialect.
func Up(db *sql.DB) error {
	goose.SetBaseFS(migrationFiles)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	if err := goose.Up(db, "sql"); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// Status reports the current migration version and pending migrations.
func Status(db *sql.DB) error {
	goose.SetBaseFS(migrationFiles)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	return goose.Status(db, "sql")
}
