package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/example/aim/internal/aid"
	"github.com/example/aim/internal/core/goal"
	"github.com/example/aim/internal/ports/primary"
	"github.com/example/aim/internal/ports/secondary"
)

// maxPullPages bounds worst-case pull work; there is no other backstop.
const maxPullPages = 10

// pageRetryDelay is the pause before the single retry of a failed page fetch.
const pageRetryDelay = 2 * time.Second

// admissionMilestone is the milestone title that admits an issue into pull
// sync, compared case-insensitively.
const admissionMilestone = "Todo"

// statusMilestones maps a goal status to the milestone title push sync
// resolves by title on every call.
var statusMilestones = map[string]string{
	goal.StatusTodo:       "Todo",
	goal.StatusInProgress: "In Progress",
	goal.StatusDone:       "Done",
	goal.StatusArchived:   "Archived",
}

// statusIssueStates maps a goal status to the remote issue state.
var statusIssueStates = map[string]string{
	goal.StatusTodo:       "open",
	goal.StatusInProgress: "open",
	goal.StatusDone:       "closed",
	goal.StatusArchived:   "closed",
}

// SyncEngine implements the SyncService interface: pull reconciles remote
// issues into local goals, push propagates local status outward. Issue
// number is the dedup key for pull; milestone title is the key for push.
type SyncEngine struct {
	tracker  secondary.TrackerClient
	goalRepo secondary.GoalRepository
	gen      *aid.Generator
	sleep    func(time.Duration)
	verified bool
}

// NewSyncEngine creates a SyncEngine. Access is verified lazily on the first
// operation and is fatal when it fails.
func NewSyncEngine(tracker secondary.TrackerClient, goalRepo secondary.GoalRepository, gen *aid.Generator) *SyncEngine {
	return &SyncEngine{
		tracker:  tracker,
		goalRepo: goalRepo,
		gen:      gen,
		sleep:    time.Sleep,
	}
}

// ensureAccess verifies repository access once per engine instance.
func (e *SyncEngine) ensureAccess(ctx context.Context) error {
	if e.verified {
		return nil
	}
	if err := e.tracker.VerifyAccess(ctx); err != nil {
		return fmt.Errorf("tracker access check failed: %w", err)
	}
	e.verified = true
	return nil
}

// Pull pages through open remote issues and reconciles the eligible ones
// against local goals. Per-issue failures are collected, never fatal;
// a page failing twice aborts the remaining pages but keeps partial results.
func (e *SyncEngine) Pull(ctx context.Context) (*primary.SyncResult, error) {
	if err := e.ensureAccess(ctx); err != nil {
		return nil, err
	}

	result := &primary.SyncResult{}

	for page := 1; page <= maxPullPages; page++ {
		issues, err := e.fetchPage(ctx, page)
		if err != nil {
			result.Errors = append(result.Errors, primary.SyncItemError{
				Err: fmt.Errorf("page %d: %w", page, err),
			})
			break
		}
		if len(issues) == 0 {
			break
		}

		for _, issue := range issues {
			if !admissible(issue) {
				continue
			}
			if err := e.reconcileIssue(ctx, issue, result); err != nil {
				result.Errors = append(result.Errors, primary.SyncItemError{
					IssueNumber: issue.Number,
					Err:         err,
				})
			}
		}
	}

	return result, nil
}

// fetchPage lists one page of issues, retrying once after a short delay.
func (e *SyncEngine) fetchPage(ctx context.Context, page int) ([]*secondary.RemoteIssueRef, error) {
	issues, err := e.tracker.ListOpenIssues(ctx, page)
	if err == nil {
		return issues, nil
	}
	e.sleep(pageRetryDelay)
	return e.tracker.ListOpenIssues(ctx, page)
}

// admissible applies the single pull admission filter: not a pull request,
// milestone present, open, and titled "Todo" case-insensitively.
func admissible(issue *secondary.RemoteIssueRef) bool {
	if issue.IsPullRequest {
		return false
	}
	m := issue.Milestone
	if m == nil {
		return false
	}
	if m.State != "open" {
		return false
	}
	return strings.EqualFold(m.Title, admissionMilestone)
}

// reconcileIssue creates a goal for a new issue or updates a diverged one.
// Unchanged issues are a no-op so re-running pull is idempotent.
func (e *SyncEngine) reconcileIssue(ctx context.Context, issue *secondary.RemoteIssueRef, result *primary.SyncResult) error {
	existing, err := e.goalRepo.GetByIssueID(ctx, issue.Number)
	if err != nil {
		return err
	}

	if existing == nil {
		id, err := e.gen.GenerateUnique(ctx, "g", e.goalRepo.IsIDUnique)
		if err != nil {
			return fmt.Errorf("failed to mint goal id: %w", err)
		}
		record := &secondary.GoalRecord{
			ID:            id,
			Title:         issue.Title,
			Status:        goal.StatusTodo,
			Description:   issue.Body,
			GitHubIssueID: issue.Number,
		}
		if err := e.goalRepo.Create(ctx, record); err != nil {
			return err
		}
		result.Created++
		return nil
	}

	patch := secondary.GoalPatch{}
	changed := false
	if existing.Title != issue.Title {
		patch.Title = &issue.Title
		changed = true
	}
	if existing.Description != issue.Body {
		patch.Description = &issue.Body
		changed = true
	}
	if !changed {
		return nil
	}

	if err := e.goalRepo.Update(ctx, existing.ID, patch); err != nil {
		return err
	}
	result.Updated++
	return nil
}

// Push propagates a goal's status to the tracker: issue state, milestone
// assignment resolved by title on every call, and exactly one completion
// comment when the goal reaches done.
func (e *SyncEngine) Push(ctx context.Context, goalID string) error {
	if err := e.ensureAccess(ctx); err != nil {
		return err
	}

	record, err := e.goalRepo.GetByID(ctx, goalID)
	if err != nil {
		return err
	}
	if record.GitHubIssueID == 0 {
		return fmt.Errorf("goal %s has no linked issue", goalID)
	}

	state, ok := statusIssueStates[record.Status]
	if !ok {
		return fmt.Errorf("goal %s has unknown status %q", goalID, record.Status)
	}

	milestone, err := e.resolveMilestone(ctx, statusMilestones[record.Status])
	if err != nil {
		return err
	}

	if err := e.tracker.UpdateIssue(ctx, record.GitHubIssueID, state, milestone.Number); err != nil {
		return err
	}

	if record.Status == goal.StatusDone {
		completedAt := record.CompletedAt
		if completedAt == "" {
			completedAt = time.Now().UTC().Format(time.RFC3339)
		}
		body := fmt.Sprintf("Goal %s completed at %s.", record.ID, completedAt)
		if err := e.tracker.CreateComment(ctx, record.GitHubIssueID, body); err != nil {
			return fmt.Errorf("failed to post completion comment: %w", err)
		}
	}

	return nil
}

// resolveMilestone looks a milestone up by title, creating it when missing.
// The lookup happens on every call; out-of-band milestone edits are
// tolerated rather than cached around.
func (e *SyncEngine) resolveMilestone(ctx context.Context, title string) (*secondary.RemoteMilestoneRef, error) {
	milestones, err := e.tracker.ListMilestones(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve milestone %q: %w", title, err)
	}
	for _, m := range milestones {
		if strings.EqualFold(m.Title, title) {
			return m, nil
		}
	}
	return e.tracker.CreateMilestone(ctx, title)
}

// CheckMerged reports whether a merged pull request exists for the goal's
// branch. It returns data and never promotes the goal itself; mutation is
// the caller's decision.
func (e *SyncEngine) CheckMerged(ctx context.Context, goalID string) (*primary.MergeCheck, error) {
	if err := e.ensureAccess(ctx); err != nil {
		return nil, err
	}

	record, err := e.goalRepo.GetByID(ctx, goalID)
	if err != nil {
		return nil, err
	}
	if record.BranchName == "" {
		return &primary.MergeCheck{}, nil
	}

	prs, err := e.tracker.ListPullRequestsByBranch(ctx, record.BranchName)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect pull requests: %w", err)
	}

	for _, pr := range prs {
		if pr.Merged {
			return &primary.MergeCheck{
				Merged:   true,
				Number:   pr.Number,
				MergedAt: pr.MergedAt,
			}, nil
		}
	}

	return &primary.MergeCheck{}, nil
}
