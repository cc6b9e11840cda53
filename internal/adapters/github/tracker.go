// Package github implements the tracker client port against the GitHub REST
// API. Requests are issued sequentially; callers bound pagination with page
// caps.
package github

import (
	"context"
	"fmt"
	"time"

	gh "github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"

	"github.com/example/aim/internal/config"
	"github.com/example/aim/internal/ports/secondary"
)

// perPage is the page size for issue listing.
const perPage = 100

// TrackerClient implements secondary.TrackerClient over go-github.
type TrackerClient struct {
	client *gh.Client
	owner  string
	repo   string
}

// NewTrackerClient builds a client from the resolved GitHub configuration.
func NewTrackerClient(ctx context.Context, cfg config.GitHubConfig) (*TrackerClient, error) {
	if cfg.Owner == "" || cfg.Repo == "" {
		return nil, fmt.Errorf("%w: github owner/repo", config.ErrMissingConfig)
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("%w: github.token", config.ErrMissingConfig)
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
	httpClient := oauth2.NewClient(ctx, ts)

	return &TrackerClient{
		client: gh.NewClient(httpClient),
		owner:  cfg.Owner,
		repo:   cfg.Repo,
	}, nil
}

// VerifyAccess confirms the repository is reachable with the configured
// token. Sync refuses to start without this.
func (t *TrackerClient) VerifyAccess(ctx context.Context) error {
	_, _, err := t.client.Repositories.Get(ctx, t.owner, t.repo)
	if err != nil {
		return fmt.Errorf("failed to access %s/%s: %w", t.owner, t.repo, err)
	}
	return nil
}

// ListOpenIssues returns one page of open issues sorted by update time,
// most recent first.
func (t *TrackerClient) ListOpenIssues(ctx context.Context, page int) ([]*secondary.RemoteIssueRef, error) {
	opts := &gh.IssueListByRepoOptions{
		State:     "open",
		Sort:      "updated",
		Direction: "desc",
		ListOptions: gh.ListOptions{
			Page:    page,
			PerPage: perPage,
		},
	}

	issues, _, err := t.client.Issues.ListByRepo(ctx, t.owner, t.repo, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list issues page %d: %w", page, err)
	}

	refs := make([]*secondary.RemoteIssueRef, 0, len(issues))
	for _, issue := range issues {
		refs = append(refs, toIssueRef(issue))
	}
	return refs, nil
}

// ListMilestones returns all milestones in any state.
func (t *TrackerClient) ListMilestones(ctx context.Context) ([]*secondary.RemoteMilestoneRef, error) {
	opts := &gh.MilestoneListOptions{
		State:       "all",
		ListOptions: gh.ListOptions{PerPage: perPage},
	}

	milestones, _, err := t.client.Issues.ListMilestones(ctx, t.owner, t.repo, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list milestones: %w", err)
	}

	refs := make([]*secondary.RemoteMilestoneRef, 0, len(milestones))
	for _, m := range milestones {
		refs = append(refs, toMilestoneRef(m))
	}
	return refs, nil
}

// CreateMilestone creates an open milestone with the given title.
func (t *TrackerClient) CreateMilestone(ctx context.Context, title string) (*secondary.RemoteMilestoneRef, error) {
	m, _, err := t.client.Issues.CreateMilestone(ctx, t.owner, t.repo, &gh.Milestone{
		Title: gh.String(title),
		State: gh.String("open"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create milestone %q: %w", title, err)
	}
	return toMilestoneRef(m), nil
}

// UpdateIssue sets an issue's state and milestone assignment.
func (t *TrackerClient) UpdateIssue(ctx context.Context, number int64, state string, milestoneNumber int64) error {
	req := &gh.IssueRequest{State: gh.String(state)}
	if milestoneNumber != 0 {
		req.Milestone = gh.Int(int(milestoneNumber))
	}

	_, _, err := t.client.Issues.Edit(ctx, t.owner, t.repo, int(number), req)
	if err != nil {
		return fmt.Errorf("failed to update issue #%d: %w", number, err)
	}
	return nil
}

// CreateComment posts a comment on an issue.
func (t *TrackerClient) CreateComment(ctx context.Context, number int64, body string) error {
	_, _, err := t.client.Issues.CreateComment(ctx, t.owner, t.repo, int(number), &gh.IssueComment{
		Body: gh.String(body),
	})
	if err != nil {
		return fmt.Errorf("failed to comment on issue #%d: %w", number, err)
	}
	return nil
}

// ListPullRequestsByBranch returns pull requests whose head is the given
// branch.
func (t *TrackerClient) ListPullRequestsByBranch(ctx context.Context, branch string) ([]*secondary.PullRequestRef, error) {
	opts := &gh.PullRequestListOptions{
		State:       "all",
		Head:        t.owner + ":" + branch,
		ListOptions: gh.ListOptions{PerPage: perPage},
	}

	prs, _, err := t.client.PullRequests.List(ctx, t.owner, t.repo, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list pull requests for %s: %w", branch, err)
	}

	refs := make([]*secondary.PullRequestRef, 0, len(prs))
	for _, pr := range prs {
		ref := &secondary.PullRequestRef{
			Number: int64(pr.GetNumber()),
			Merged: pr.MergedAt != nil,
		}
		if pr.MergedAt != nil {
			ref.MergedAt = pr.MergedAt.Format(time.RFC3339)
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func toIssueRef(issue *gh.Issue) *secondary.RemoteIssueRef {
	ref := &secondary.RemoteIssueRef{
		Number:        int64(issue.GetNumber()),
		Title:         issue.GetTitle(),
		Body:          issue.GetBody(),
		State:         issue.GetState(),
		IsPullRequest: issue.IsPullRequest(),
	}
	if issue.UpdatedAt != nil {
		ref.UpdatedAt = issue.UpdatedAt.Format(time.RFC3339)
	}
	if issue.Milestone != nil {
		ref.Milestone = toMilestoneRef(issue.Milestone)
	}
	return ref
}

func toMilestoneRef(m *gh.Milestone) *secondary.RemoteMilestoneRef {
	return &secondary.RemoteMilestoneRef{
		Number: int64(m.GetNumber()),
		Title:  m.GetTitle(),
		State:  m.GetState(),
	}
}
