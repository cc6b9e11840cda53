package secondary

import "context"

// RemoteIssueRef is a transient view of a tracker issue fetched per sync run.
// It is never persisted.
type RemoteIssueRef struct {
	Number        int64
	Title         string
	Body          string
	State         string // "open" | "closed"
	IsPullRequest bool
	Milestone     *RemoteMilestoneRef
	UpdatedAt     string
}

// RemoteMilestoneRef is a transient view of a tracker milestone.
type RemoteMilestoneRef struct {
	Number int64
	Title  string
	State  string // "open" | "closed"
}

// PullRequestRef is a transient view of a pull request against a branch.
type PullRequestRef struct {
	Number   int64
	Merged   bool
	MergedAt string
}

// TrackerClient defines the secondary port for the remote issue tracker.
// Implementations page sequentially; callers bound total work with page caps.
type TrackerClient interface {
	// VerifyAccess confirms the configured repository is reachable with the
	// configured token. Failure is fatal to synchronization.
	VerifyAccess(ctx context.Context) error

	// ListOpenIssues returns one page of open issues sorted by update time,
	// most recent first. An empty page means pagination is done.
	ListOpenIssues(ctx context.Context, page int) ([]*RemoteIssueRef, error)

	// ListMilestones returns all milestones in any state.
	ListMilestones(ctx context.Context) ([]*RemoteMilestoneRef, error)

	// CreateMilestone creates an open milestone with the given title.
	CreateMilestone(ctx context.Context, title string) (*RemoteMilestoneRef, error)

	// UpdateIssue sets an issue's state and milestone assignment.
	UpdateIssue(ctx context.Context, number int64, state string, milestoneNumber int64) error

	// CreateComment posts a comment on an issue.
	CreateComment(ctx context.Context, number int64, body string) error

	// ListPullRequestsByBranch returns pull requests whose head is the
	// given branch.
	ListPullRequestsByBranch(ctx context.Context, branch string) ([]*PullRequestRef, error)
}
