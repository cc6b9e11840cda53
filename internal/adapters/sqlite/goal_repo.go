// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/aim/internal/db"
	"github.com/example/aim/internal/ports/secondary"
)

const goalSelectCols = "id, github_issue_id, title, status, branch_name, description, created_at, updated_at, completed_at"

// GoalRepository implements secondary.GoalRepository with SQLite. It is a
// thin persistence boundary; legality checks live in the validation gate.
type GoalRepository struct {
	store *db.Store
}

// NewGoalRepository creates a new SQLite goal repository.
func NewGoalRepository(store *db.Store) *GoalRepository {
	return &GoalRepository{store: store}
}

// scanGoal scans a goal row into a GoalRecord.
func scanGoal(scanner interface {
	Scan(dest ...any) error
}) (*secondary.GoalRecord, error) {
	var (
		issueID     sql.NullInt64
		branch      sql.NullString
		desc        sql.NullString
		createdAt   time.Time
		updatedAt   time.Time
		completedAt sql.NullTime
	)

	record := &secondary.GoalRecord{}
	err := scanner.Scan(
		&record.ID, &issueID, &record.Title, &record.Status,
		&branch, &desc, &createdAt, &updatedAt, &completedAt,
	)
	if err != nil {
		return nil, err
	}

	record.GitHubIssueID = issueID.Int64
	record.BranchName = branch.String
	record.Description = desc.String
	record.CreatedAt = createdAt.Format(time.RFC3339)
	record.UpdatedAt = updatedAt.Format(time.RFC3339)
	if completedAt.Valid {
		record.CompletedAt = completedAt.Time.Format(time.RFC3339)
	}

	return record, nil
}

// Create persists a new goal. The id must be a pre-minted, confirmed-unique
// AID.
func (r *GoalRepository) Create(ctx context.Context, goal *secondary.GoalRecord) error {
	var issueID sql.NullInt64
	var branch, desc sql.NullString

	if goal.GitHubIssueID != 0 {
		issueID = sql.NullInt64{Int64: goal.GitHubIssueID, Valid: true}
	}
	if goal.BranchName != "" {
		branch = sql.NullString{String: goal.BranchName, Valid: true}
	}
	if goal.Description != "" {
		desc = sql.NullString{String: goal.Description, Valid: true}
	}

	status := goal.Status
	if status == "" {
		status = "todo"
	}

	_, err := r.store.Execute(ctx,
		"INSERT INTO goals (id, github_issue_id, title, status, branch_name, description) VALUES (?, ?, ?, ?, ?, ?)",
		goal.ID, issueID, goal.Title, status, branch, desc,
	)
	if err != nil {
		return fmt.Errorf("failed to create goal: %w", err)
	}

	return nil
}

// GetByID retrieves a goal by its id.
func (r *GoalRepository) GetByID(ctx context.Context, id string) (*secondary.GoalRecord, error) {
	row := r.store.QueryOne(ctx, "SELECT "+goalSelectCols+" FROM goals WHERE id = ?", id)

	record, err := scanGoal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("goal %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get goal: %w", err)
	}

	return record, nil
}

// GetByIssueID retrieves the goal linked to a remote issue, or nil.
func (r *GoalRepository) GetByIssueID(ctx context.Context, issueID int64) (*secondary.GoalRecord, error) {
	row := r.store.QueryOne(ctx, "SELECT "+goalSelectCols+" FROM goals WHERE github_issue_id = ?", issueID)

	record, err := scanGoal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get goal by issue: %w", err)
	}

	return record, nil
}

// GetByBranch retrieves the goal attached to a branch, or nil.
func (r *GoalRepository) GetByBranch(ctx context.Context, branch string) (*secondary.GoalRecord, error) {
	row := r.store.QueryOne(ctx, "SELECT "+goalSelectCols+" FROM goals WHERE branch_name = ?", branch)

	record, err := scanGoal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get goal by branch: %w", err)
	}

	return record, nil
}

// List retrieves goals matching the given filters.
func (r *GoalRepository) List(ctx context.Context, filters secondary.GoalFilters) ([]*secondary.GoalRecord, error) {
	query := "SELECT " + goalSelectCols + " FROM goals WHERE 1=1"
	args := []any{}

	if filters.Status != "" {
		query += " AND status = ?"
		args = append(args, filters.Status)
	}

	query += " ORDER BY created_at ASC"

	rows, err := r.store.QueryAll(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	defer rows.Close()

	var goals []*secondary.GoalRecord
	for rows.Next() {
		record, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		goals = append(goals, record)
	}

	return goals, rows.Err()
}

// Update applies only the provided fields, refreshes updated_at, and sets
// completed_at when the status moves to done.
func (r *GoalRepository) Update(ctx context.Context, id string, patch secondary.GoalPatch) error {
	sets := []string{"updated_at = CURRENT_TIMESTAMP"}
	args := []any{}

	if patch.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *patch.Description)
	}
	if patch.BranchName != nil {
		sets = append(sets, "branch_name = ?")
		if *patch.BranchName == "" {
			args = append(args, nil)
		} else {
			args = append(args, *patch.BranchName)
		}
	}
	if patch.GitHubIssueID != nil {
		sets = append(sets, "github_issue_id = ?")
		if *patch.GitHubIssueID == 0 {
			args = append(args, nil)
		} else {
			args = append(args, *patch.GitHubIssueID)
		}
	}
	if patch.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *patch.Status)
		if *patch.Status == "done" {
			sets = append(sets, "completed_at = CURRENT_TIMESTAMP")
		}
	}

	args = append(args, id)
	result, err := r.store.Execute(ctx,
		"UPDATE goals SET "+strings.Join(sets, ", ")+" WHERE id = ?",
		args...,
	)
	if err != nil {
		return fmt.Errorf("failed to update goal: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("goal %s not found", id)
	}

	return nil
}

// Delete hard-deletes a goal.
func (r *GoalRepository) Delete(ctx context.Context, id string) error {
	result, err := r.store.Execute(ctx, "DELETE FROM goals WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete goal: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("goal %s not found", id)
	}

	return nil
}

// IsIDUnique reports whether no goal row uses the candidate id. Wired into
// the identity generator as its persistence probe.
func (r *GoalRepository) IsIDUnique(ctx context.Context, id string) (bool, error) {
	var n int
	err := r.store.QueryOne(ctx, "SELECT COUNT(*) FROM goals WHERE id = ?", id).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check id uniqueness: %w", err)
	}
	return n == 0, nil
}
