// Package db provides the embedded SQLite store: connection handling,
// the forward-only migration ledger, and parameterized query primitives.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// EphemeralPath opens an in-memory store that vanishes on Close.
const EphemeralPath = ":memory:"

// EnvPath is the environment variable consulted when no explicit path is given.
const EnvPath = "AIM_DB_PATH"

// Store owns the single database connection for a process. All operations go
// through it serially; SQLite serializes file-level writers itself.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (or creates) the store at the given path. An empty path falls
// back to the AIM_DB_PATH environment variable, then to an ephemeral
// in-memory store. Open does not run migrations; call Initialize.
func Open(path string) (*Store, error) {
	if path == "" {
		path = os.Getenv(EnvPath)
	}
	if path == "" {
		path = EphemeralPath
	}

	if path != EphemeralPath {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	database, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection for the whole process. A second pooled connection would
	// see a separate empty database when the path is :memory:.
	database.SetMaxOpenConns(1)

	if _, err := database.Exec("PRAGMA foreign_keys = ON"); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &Store{db: database, path: path}, nil
}

// Initialize ensures the migration ledger exists and applies all pending
// migrations in order. Safe to call repeatedly; recorded versions are never
// re-applied.
func (s *Store) Initialize(ctx context.Context) error {
	return s.runMigrations(ctx)
}

// Path returns the resolved database path.
func (s *Store) Path() string {
	return s.path
}

// Execute runs a parameterized statement.
func (s *Store) Execute(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, query, args...)
}

// QueryOne runs a parameterized query expected to return at most one row.
func (s *Store) QueryOne(ctx context.Context, query string, args ...any) *sql.Row {
	return s.db.QueryRowContext(ctx, query, args...)
}

// QueryAll runs a parameterized query returning any number of rows.
func (s *Store) QueryAll(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, query, args...)
}

// Begin starts an explicit transaction for multi-statement atomicity.
func (s *Store) Begin(ctx context.Context) (*sql.Tx, error) {
	return s.db.BeginTx(ctx, nil)
}

// Close closes the connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
