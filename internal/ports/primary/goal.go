// Package primary defines the primary ports (driving interfaces) for the
// application: the services the CLI calls into.
package primary

import (
	"context"

	"github.com/example/aim/internal/core/goal"
)

// Goal is the service-level view of a goal.
type Goal struct {
	ID            string
	Title         string
	Status        string
	Description   string
	GitHubIssueID int64
	BranchName    string
	CreatedAt     string
	UpdatedAt     string
	CompletedAt   string
}

// CreateGoalRequest asks for a new goal.
type CreateGoalRequest struct {
	Title       string
	Description string
}

// CreateGoalResponse returns the created goal and the gate results that
// accompanied admission (warnings and info pass through).
type CreateGoalResponse struct {
	Goal    *Goal
	Results []goal.Result
}

// TransitionRequest moves a goal to a new status.
type TransitionRequest struct {
	GoalID     string
	NewStatus  string
	BranchName string // optional; set when starting work
}

// TransitionResponse returns the updated goal and the gate results.
type TransitionResponse struct {
	Goal    *Goal
	Results []goal.Result
}

// UpdateGoalRequest applies partial field updates outside the status
// lifecycle.
type UpdateGoalRequest struct {
	GoalID      string
	Title       *string
	Description *string
	BranchName  *string
}

// GoalFilters filters goal listings.
type GoalFilters struct {
	Status string
}

// GoalService is the primary port for goal workflows. All state transitions
// pass through the validation gate before persisting.
type GoalService interface {
	// CreateGoal validates and persists a new goal with a freshly minted id.
	CreateGoal(ctx context.Context, req CreateGoalRequest) (*CreateGoalResponse, error)

	// TransitionGoal validates and persists a status transition.
	TransitionGoal(ctx context.Context, req TransitionRequest) (*TransitionResponse, error)

	// UpdateGoal validates and persists partial field updates.
	UpdateGoal(ctx context.Context, req UpdateGoalRequest) (*TransitionResponse, error)

	// GetGoal retrieves a goal by id.
	GetGoal(ctx context.Context, id string) (*Goal, error)

	// GetGoalByBranch retrieves the goal attached to a branch, or nil.
	GetGoalByBranch(ctx context.Context, branch string) (*Goal, error)

	// ListGoals lists goals, optionally filtered by status.
	ListGoals(ctx context.Context, filters GoalFilters) ([]*Goal, error)

	// DeleteGoal hard-deletes a goal. Rare and explicit.
	DeleteGoal(ctx context.Context, id string) error

	// Validate runs the gate against a hypothetical goal without persisting.
	Validate(ctx context.Context, candidate goal.Candidate) ([]goal.Result, error)
}
