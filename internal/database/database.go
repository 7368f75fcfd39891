// Package database opens the sqlite dataset store that holds provisioned
// zone polygons and ancestry records.
package database

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// Open opens (creating if needed) the sqlite database at path and applies
// the dataset schema. ":memory:" is accepted for tests.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, eris.Wrap(err, "database: create data directory")
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "database: open")
	}
	if path == ":memory:" {
		// Every pooled connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}

	// Set pragmas for performance
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA cache_size=10000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, eris.Wrapf(err, "database: %s", pragma)
		}
	}

	if err := EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates the dataset tables if they do not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS zone_polygons (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			zone_type TEXT NOT NULL,
			school_name TEXT NOT NULL DEFAULT '',
			geometry TEXT NOT NULL,
			bbox_min_lat REAL NOT NULL,
			bbox_max_lat REAL NOT NULL,
			bbox_min_lon REAL NOT NULL,
			bbox_max_lon REAL NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_zone_polygons_type ON zone_polygons(zone_type);

		CREATE TABLE IF NOT EXISTS ancestry (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			suburb TEXT NOT NULL,
			total_population INTEGER NOT NULL,
			ancestries TEXT NOT NULL
		);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_ancestry_suburb ON ancestry(suburb);
	`)
	if err != nil {
		return eris.Wrap(err, "database: create schema")
	}
	return nil
}

// TableRows returns the row count of table, or 0 if it does not exist.
func TableRows(ctx context.Context, db *sql.DB, table string) (int, error) {
	var exists int
	err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table,
	).Scan(&exists)
	if err != nil {
		return 0, eris.Wrapf(err, "database: check table %s", table)
	}
	if exists == 0 {
		return 0, nil
	}

	var n int
	// table is checked against sqlite_master above.
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, eris.Wrapf(err, "database: count %s", table)
	}
	return n, nil
}
