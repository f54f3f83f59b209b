package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// InitSchema creates the address cache tables for the given driver.
func InitSchema(ctx context.Context, db *sql.DB, driver string) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	var statements []string
	switch driver {
	case DriverSQLite:
		statements = []string{`
		CREATE TABLE IF NOT EXISTS reverse_geocode_cache (
			coord_key TEXT PRIMARY KEY,
			address TEXT NOT NULL,
			created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		`}
	case DriverPostgres:
		statements = []string{`
		CREATE TABLE IF NOT EXISTS reverse_geocode_cache (
			coord_key TEXT PRIMARY KEY,
			address TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		`}
	default:
		return fmt.Errorf("init schema: unsupported driver %q", driver)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
