// Package sqlitedb opens SQLite databases (modernc.org/sqlite, pure Go) with
// the pragmas and pool settings shared by the durable stores.
package sqlitedb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Memory is the DSN path for a private in-memory database.
const Memory = ":memory:"

// filePragmas are applied by the driver to every pooled connection.
const filePragmas = "_pragma=busy_timeout(5000)" +
	"&_pragma=foreign_keys(1)" +
	"&_pragma=journal_mode(WAL)" +
	"&_pragma=synchronous(NORMAL)" +
	"&_pragma=temp_store(MEMORY)"

// timeLayout is fixed-width so TEXT comparison matches time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Open opens (creating if needed) the database at path and applies pragmas.
// An in-memory database is pinned to a single connection so every query sees
// the same data.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	dsn := Memory
	if path != Memory {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
		dsn = "file:" + path + "?" + filePragmas
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if path == Memory {
		db.SetMaxOpenConns(1)
		err = initMemoryPragmas(ctx, db)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(5 * time.Minute)
		err = db.PingContext(ctx)
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return db, nil
}

// initMemoryPragmas configures the single connection of an in-memory database.
func initMemoryPragmas(ctx context.Context, db *sql.DB) error {
	for _, q := range []string{"PRAGMA foreign_keys=ON;", "PRAGMA temp_store=MEMORY;"} {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("apply %q: %w", q, err)
		}
	}
	return nil
}

// Migrate executes each schema statement in order.
func Migrate(ctx context.Context, db *sql.DB, schema []string) error {
	for _, q := range schema {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// WithTx runs fn inside a transaction, committing on success.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// FormatTime encodes t in UTC for storage in a TEXT column. Encoded values
// sort in time order.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

// ParseTime decodes a value written by FormatTime. RFC 3339 values with
// trimmed fractions are accepted too.
func ParseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}
