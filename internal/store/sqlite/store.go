// Package sqlite implements the kinship stores on an embedded SQLite database
// (modernc.org/sqlite, no cgo). It serves single-user and editor deployments
// with the same contracts as the PostgreSQL stores; tenants are scoped by a
// tenant_id column instead of row-level security.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	sqlitelib "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/persistorai/kinship/internal/db"
)

const defaultQueryTimeout = 30 * time.Second

// Store is a SQLite-backed implementation of every kinship store.
type Store struct {
	db  *sql.DB
	log *logrus.Logger
}

// Open opens (creating if needed) the database at path and applies migrations.
// path may be ":memory:" for a private in-memory database.
func Open(ctx context.Context, path string, log *logrus.Logger) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "busy_timeout(5000)")
	q.Add("_time_format", "sqlite")
	if path != ":memory:" {
		q.Add("_pragma", "journal_mode(WAL)")
	}

	sqlDB, err := sql.Open("sqlite", "file:"+path+"?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	// One connection serialises writers and keeps ":memory:" databases alive.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()

		return nil, fmt.Errorf("pinging sqlite database: %w", err)
	}

	if err := db.RunSQLiteMigrations(ctx, sqlDB, log); err != nil {
		sqlDB.Close()

		return nil, err
	}

	return &Store{db: sqlDB, log: log}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// HealthCheck verifies the database is reachable.
func (s *Store) HealthCheck(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("health check: %w", err)
	}

	return nil
}

// CheckSchema verifies that migrations have created the core tables.
func (s *Store) CheckSchema(ctx context.Context) error {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM people").Scan(&count); err != nil {
		return fmt.Errorf("schema check: %w", err)
	}

	return nil
}

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, defaultQueryTimeout)
}

// inTx runs fn in a transaction, committing when it returns nil.
func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	defer tx.Rollback() //nolint:errcheck // best-effort rollback after commit.

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// constraint classifies a constraint violation by SQLite result code, falling
// back to the message when only the primary code is reported.
func constraint(err error) string {
	var se *sqlitelib.Error
	if !errors.As(err, &se) {
		return ""
	}

	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		return "unique"
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		return "foreign_key"
	case sqlite3.SQLITE_CONSTRAINT_CHECK:
		return "check"
	}

	msg := se.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint"):
		return "unique"
	case strings.Contains(msg, "FOREIGN KEY constraint"):
		return "foreign_key"
	case strings.Contains(msg, "CHECK constraint"):
		return "check"
	}

	return ""
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func partnerPair(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}

// placeholders returns "?, ?, ?" for n arguments.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
