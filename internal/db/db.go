// Package db manages the database connection
package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	// Import modernc.org/sqlite as a blank import to register the driver
	_ "modernc.org/sqlite"
)

// DB wraps the SQL database connection with application-specific methods.
type DB struct {
	*sql.DB
	path string
}

// New creates a new database connection and initializes the schema.
func New(path string) (*DB, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := sqlDB.PingContext(context.Background()); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := &DB{
		DB:   sqlDB,
		path: path,
	}

	if err := db.configure(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}

	if err := db.createSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return db, nil
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// configure sets up database pragmas for optimal performance.
func (db *DB) configure() error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA cache_size=-64000", // 64MB cache
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA temp_store=MEMORY",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(context.Background(), pragma); err != nil {
			return fmt.Errorf("failed to execute %s: %w", pragma, err)
		}
	}

	return nil
}

func (db *DB) createSchema() error {
	if err := db.createWindowSnapshotsTable(); err != nil {
		return err
	}
	return db.createFleetSnapshotsTable()
}

func (db *DB) createWindowSnapshotsTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS window_snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		account_id TEXT NOT NULL,
		label TEXT NOT NULL,
		ratio REAL NOT NULL DEFAULT 0,
		limit_value REAL NOT NULL DEFAULT 0,
		used_value REAL NOT NULL DEFAULT 0,
		remaining_value REAL NOT NULL DEFAULT 0,
		window_minutes REAL NOT NULL DEFAULT 0,
		reset_at TEXT,
		health_state TEXT NOT NULL DEFAULT 'healthy',
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_window_snapshots_account ON window_snapshots(account_id, timestamp);
	CREATE INDEX IF NOT EXISTS idx_window_snapshots_timestamp ON window_snapshots(timestamp);
	`
	_, err := db.ExecContext(context.Background(), query)
	return err
}

func (db *DB) createFleetSnapshotsTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS fleet_snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		signature TEXT NOT NULL,
		label TEXT NOT NULL,
		remaining_percent REAL NOT NULL DEFAULT 0,
		account_count INTEGER NOT NULL DEFAULT 0,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_fleet_snapshots_signature ON fleet_snapshots(signature, timestamp);
	CREATE INDEX IF NOT EXISTS idx_fleet_snapshots_timestamp ON fleet_snapshots(timestamp);
	`
	_, err := db.ExecContext(context.Background(), query)
	return err
}

// Close closes the database connection gracefully.
func (db *DB) Close() error {
	// Checkpoint WAL before closing
	_, _ = db.ExecContext(context.Background(), "PRAGMA wal_checkpoint(TRUNCATE)")
	return db.DB.Close()
}

// Vacuum performs database maintenance to reclaim space.
func (db *DB) Vacuum() error {
	_, err := db.ExecContext(context.Background(), "VACUUM")
	return err
}
