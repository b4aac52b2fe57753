// Package sqlite stores intake events, profiles and idempotency keys in a
// local SQLite file. It backs single-user and offline deployments.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	// Import modernc.org/sqlite as a blank import to register the driver
	_ "modernc.org/sqlite"
)

// timeFormat is fixed width so TEXT comparison orders chronologically
const timeFormat = "2006-01-02T15:04:05.000000000Z"

// DB wraps the SQL database connection
type DB struct {
	*sql.DB
	path string
}

// Open creates the database file if needed, configures it and creates the schema
func Open(path string) (*DB, error) {
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
	// Pragmas are per connection
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.PingContext(context.Background()); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := &DB{DB: sqlDB, path: path}

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

func (db *DB) configure() error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(context.Background(), pragma); err != nil {
			return fmt.Errorf("failed to execute %s: %w", pragma, err)
		}
	}

	return nil
}

func (db *DB) createSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS intake_events (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		amount REAL NOT NULL CHECK (amount > 0),
		source TEXT NOT NULL DEFAULT 'manual',
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_intake_events_user_timestamp ON intake_events(user_id, timestamp);

	CREATE TABLE IF NOT EXISTS profiles (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		gender TEXT NOT NULL DEFAULT '',
		weight_kg REAL,
		height_cm REAL,
		activity_level TEXT NOT NULL DEFAULT '',
		daily_goal INTEGER NOT NULL DEFAULT 0,
		timezone TEXT NOT NULL DEFAULT '',
		city TEXT NOT NULL DEFAULT '',
		notifications_enabled INTEGER NOT NULL DEFAULT 0,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS idempotency_keys (
		key TEXT NOT NULL,
		route TEXT NOT NULL,
		user_id TEXT NOT NULL,
		response_body TEXT NOT NULL,
		status_code INTEGER NOT NULL,
		created_at TEXT NOT NULL,
		PRIMARY KEY (key, route, user_id)
	);
	`
	_, err := db.ExecContext(context.Background(), query)
	return err
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse stored time %q: %w", s, err)
	}
	return t, nil
}
