// Package secondary defines the secondary ports (driven adapters) for the
// application: persistence and the remote tracker.
package secondary

import "context"

// GoalRecord represents a goal as stored in persistence. Timestamps are
// RFC3339 strings; a zero GitHubIssueID means no linked issue.
type GoalRecord struct {
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

// GoalPatch carries the fields an update provides. Nil pointers are left
// untouched.
type GoalPatch struct {
	Title         *string
	Status        *string
	Description   *string
	GitHubIssueID *int64
	BranchName    *string
}

// GoalFilters contains filter options for listing goals.
type GoalFilters struct {
	Status string
}

// GoalRepository defines the secondary port for goal persistence. It is the
// only writer of goal rows and performs no business validation.
type GoalRepository interface {
	// Create persists a new goal. The id must already be a confirmed-unique
	// AID; minting is the caller's responsibility.
	Create(ctx context.Context, goal *GoalRecord) error

	// GetByID retrieves a goal by its id.
	GetByID(ctx context.Context, id string) (*GoalRecord, error)

	// GetByIssueID retrieves the goal linked to a remote issue, or nil if
	// no goal references it.
	GetByIssueID(ctx context.Context, issueID int64) (*GoalRecord, error)

	// GetByBranch retrieves the goal attached to a branch, or nil.
	GetByBranch(ctx context.Context, branch string) (*GoalRecord, error)

	// List retrieves goals matching the given filters.
	List(ctx context.Context, filters GoalFilters) ([]*GoalRecord, error)

	// Update applies only the provided fields and refreshes updated_at.
	Update(ctx context.Context, id string, patch GoalPatch) error

	// Delete hard-deletes a goal. Rare, explicit; sync never calls it.
	Delete(ctx context.Context, id string) error

	// IsIDUnique reports whether no goal row uses the candidate id.
	IsIDUnique(ctx context.Context, id string) (bool, error)
}

// ConfigRepository defines the secondary port for stored configuration.
type ConfigRepository interface {
	// Get returns the value for a key, or ("", nil) when unset.
	Get(ctx context.Context, key string) (string, error)

	// Set upserts a key/value pair.
	Set(ctx context.Context, key, value string) error

	// All returns every stored key/value pair.
	All(ctx context.Context) (map[string]string, error)
}
