package db

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
)

// Migration is a single forward-only schema change. Versions are monotonic
// lexicographic strings; the ledger records each exactly once.
type Migration struct {
	Version string
	Name    string
	Up      func(*sql.Tx) error
}

// MigrationError reports a failed migration. It is fatal: the remaining set
// is never attempted and nothing is partially retried.
type MigrationError struct {
	Version string
	Err     error
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("migration %s failed: %v", e.Version, e.Err)
}

func (e *MigrationError) Unwrap() error {
	return e.Err
}

// migrations is the full ordered migration set.
var migrations = []Migration{
	{
		Version: "0001_create_config",
		Name:    "create config table",
		Up:      migration0001,
	},
	{
		Version: "0002_create_goals",
		Name:    "create goals table",
		Up:      migration0002,
	},
	{
		Version: "0003_create_llm_providers",
		Name:    "create llm_providers table",
		Up:      migration0003,
	},
	{
		Version: "0004_create_structure_rules",
		Name:    "create structure_rules table",
		Up:      migration0004,
	},
	{
		Version: "0005_add_goal_indexes",
		Name:    "add goal lookup indexes",
		Up:      migration0005,
	},
}

// runMigrations ensures the ledger table exists, then applies every
// migration not yet recorded, each in its own transaction with the ledger
// row inserted inside that transaction. The first failure aborts the rest.
func (s *Store) runMigrations(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	applied := make(map[string]bool)
	rows, err := s.db.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return fmt.Errorf("failed to read migration ledger: %w", err)
	}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan migration ledger: %w", err)
		}
		applied[v] = true
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("failed to read migration ledger: %w", err)
	}
	rows.Close()

	pending := make([]Migration, 0, len(migrations))
	for _, m := range migrations {
		if !applied[m.Version] {
			pending = append(pending, m)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].Version < pending[j].Version
	})

	for _, m := range pending {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return &MigrationError{Version: m.Version, Err: fmt.Errorf("begin transaction: %w", err)}
		}

		if err := m.Up(tx); err != nil {
			tx.Rollback()
			return &MigrationError{Version: m.Version, Err: err}
		}

		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", m.Version); err != nil {
			tx.Rollback()
			return &MigrationError{Version: m.Version, Err: fmt.Errorf("record in ledger: %w", err)}
		}

		if err := tx.Commit(); err != nil {
			return &MigrationError{Version: m.Version, Err: fmt.Errorf("commit: %w", err)}
		}
	}

	return nil
}

// AppliedVersions returns the recorded ledger entries in ascending order.
func (s *Store) AppliedVersions(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT version FROM schema_migrations ORDER BY version ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to read migration ledger: %w", err)
	}
	defer rows.Close()

	var versions []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan migration ledger: %w", err)
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// PendingCount returns how many migrations are not yet recorded.
func (s *Store) PendingCount(ctx context.Context) (int, error) {
	applied, err := s.AppliedVersions(ctx)
	if err != nil {
		return 0, err
	}
	recorded := make(map[string]bool, len(applied))
	for _, v := range applied {
		recorded[v] = true
	}
	pending := 0
	for _, m := range migrations {
		if !recorded[m.Version] {
			pending++
		}
	}
	return pending, nil
}

func migration0001(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE config (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			type TEXT NOT NULL DEFAULT 'string',
			description TEXT,
			category TEXT,
			required BOOLEAN NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}
	return nil
}

func migration0002(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE goals (
			id TEXT PRIMARY KEY CHECK(id LIKE 'g-%'),
			github_issue_id INTEGER UNIQUE,
			title TEXT NOT NULL,
			status TEXT NOT NULL CHECK(status IN ('todo', 'in_progress', 'done', 'archived')) DEFAULT 'todo',
			branch_name TEXT,
			description TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			completed_at DATETIME
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create goals: %w", err)
	}
	return nil
}

func migration0003(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE llm_providers (
			id TEXT PRIMARY KEY CHECK(id LIKE 'p-%'),
			name TEXT NOT NULL UNIQUE,
			model TEXT NOT NULL,
			api_key_env TEXT,
			enabled BOOLEAN NOT NULL DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create llm_providers: %w", err)
	}
	return nil
}

func migration0004(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE structure_rules (
			id TEXT PRIMARY KEY CHECK(id LIKE 's-%'),
			pattern TEXT NOT NULL,
			rule TEXT NOT NULL,
			description TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create structure_rules: %w", err)
	}
	return nil
}

func migration0005(tx *sql.Tx) error {
	stmts := []string{
		"CREATE INDEX idx_goals_status ON goals(status)",
		"CREATE INDEX idx_goals_issue ON goals(github_issue_id)",
		"CREATE INDEX idx_goals_branch ON goals(branch_name)",
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}
