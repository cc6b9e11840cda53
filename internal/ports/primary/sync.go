package primary

import "context"

// SyncItemError records a single non-fatal failure during batch
// reconciliation. The batch continues past it.
type SyncItemError struct {
	IssueNumber int64
	GoalID      string
	Err         error
}

func (e SyncItemError) Error() string {
	if e.GoalID != "" {
		return "goal " + e.GoalID + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// SyncResult aggregates a pull run. Partial progress is never discarded:
// per-item errors land here alongside the counts.
type SyncResult struct {
	Created int
	Updated int
	Errors  []SyncItemError
}

// MergeCheck is the tagged result of merged-PR detection. It is data, not an
// error: Merged false simply means no merged PR was found. Detection never
// mutates goal status.
type MergeCheck struct {
	Merged   bool
	Number   int64
	MergedAt string
}

// SyncService is the primary port for tracker reconciliation.
type SyncService interface {
	// Pull imports eligible remote issues as local goals and updates goals
	// whose remote title or description diverged. Idempotent against an
	// unchanged remote set.
	Pull(ctx context.Context) (*SyncResult, error)

	// Push propagates a goal's status outward: issue state, milestone
	// assignment, and a completion comment on done.
	Push(ctx context.Context, goalID string) error

	// CheckMerged reports whether a merged pull request exists for the
	// goal's branch. Read-only.
	CheckMerged(ctx context.Context, goalID string) (*MergeCheck, error)
}
