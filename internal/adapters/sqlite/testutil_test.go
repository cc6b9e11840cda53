// Package sqlite_test contains integration tests for SQLite repositories.
//
// All test setup goes through setupTestStore, which opens an in-memory
// store and runs the real migration set, so tests always exercise the
// authoritative schema.
package sqlite_test

import (
	"context"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/aim/internal/db"
	"github.com/example/aim/internal/ports/secondary"
)

// setupTestStore creates an in-memory store with all migrations applied.
func setupTestStore(t *testing.T) *db.Store {
	t.Helper()

	store, err := db.Open(db.EphemeralPath)
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	if err := store.Initialize(context.Background()); err != nil {
		t.Fatalf("failed to initialize test store: %v", err)
	}

	t.Cleanup(func() {
		store.Close()
	})

	return store
}

// seedGoal inserts a test goal and returns its record.
func seedGoal(t *testing.T, store *db.Store, id, title, status string) *secondary.GoalRecord {
	t.Helper()
	if id == "" {
		id = "g-test01"
	}
	if title == "" {
		title = "Test Goal"
	}
	if status == "" {
		status = "todo"
	}
	_, err := store.Execute(context.Background(),
		"INSERT INTO goals (id, title, status) VALUES (?, ?, ?)",
		id, title, status,
	)
	if err != nil {
		t.Fatalf("failed to seed goal: %v", err)
	}
	return &secondary.GoalRecord{ID: id, Title: title, Status: status}
}
