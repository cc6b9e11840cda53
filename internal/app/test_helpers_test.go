package app

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/example/aim/internal/ports/secondary"
)

// Ensure the mocks implement their interfaces.
var _ secondary.GoalRepository = (*mockGoalRepo)(nil)
var _ secondary.TrackerClient = (*fakeTracker)(nil)

// mockGoalRepo implements secondary.GoalRepository in memory.
type mockGoalRepo struct {
	goals     map[string]*secondary.GoalRecord
	createErr error
}

func newMockGoalRepo() *mockGoalRepo {
	return &mockGoalRepo{goals: make(map[string]*secondary.GoalRecord)}
}

func (m *mockGoalRepo) Create(_ context.Context, g *secondary.GoalRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	cp := *g
	now := time.Now().UTC().Format(time.RFC3339)
	cp.CreatedAt = now
	cp.UpdatedAt = now
	if cp.Status == "" {
		cp.Status = "todo"
	}
	m.goals[cp.ID] = &cp
	return nil
}

func (m *mockGoalRepo) GetByID(_ context.Context, id string) (*secondary.GoalRecord, error) {
	g, ok := m.goals[id]
	if !ok {
		return nil, fmt.Errorf("goal %s not found", id)
	}
	cp := *g
	return &cp, nil
}

func (m *mockGoalRepo) GetByIssueID(_ context.Context, issueID int64) (*secondary.GoalRecord, error) {
	for _, g := range m.goals {
		if g.GitHubIssueID == issueID {
			cp := *g
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockGoalRepo) GetByBranch(_ context.Context, branch string) (*secondary.GoalRecord, error) {
	for _, g := range m.goals {
		if g.BranchName == branch {
			cp := *g
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockGoalRepo) List(_ context.Context, filters secondary.GoalFilters) ([]*secondary.GoalRecord, error) {
	var out []*secondary.GoalRecord
	for _, g := range m.goals {
		if filters.Status != "" && g.Status != filters.Status {
			continue
		}
		cp := *g
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockGoalRepo) Update(_ context.Context, id string, patch secondary.GoalPatch) error {
	g, ok := m.goals[id]
	if !ok {
		return fmt.Errorf("goal %s not found", id)
	}
	if patch.Title != nil {
		g.Title = *patch.Title
	}
	if patch.Description != nil {
		g.Description = *patch.Description
	}
	if patch.BranchName != nil {
		g.BranchName = *patch.BranchName
	}
	if patch.GitHubIssueID != nil {
		g.GitHubIssueID = *patch.GitHubIssueID
	}
	if patch.Status != nil {
		g.Status = *patch.Status
		if *patch.Status == "done" {
			g.CompletedAt = time.Now().UTC().Format(time.RFC3339)
		}
	}
	g.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	return nil
}

func (m *mockGoalRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.goals[id]; !ok {
		return fmt.Errorf("goal %s not found", id)
	}
	delete(m.goals, id)
	return nil
}

func (m *mockGoalRepo) IsIDUnique(_ context.Context, id string) (bool, error) {
	_, taken := m.goals[id]
	return !taken, nil
}

// fakeTracker implements secondary.TrackerClient in memory and records the
// mutations sync performs.
type fakeTracker struct {
	issues     []*secondary.RemoteIssueRef
	milestones []*secondary.RemoteMilestoneRef
	prs        map[string][]*secondary.PullRequestRef

	accessErr    error
	listErr      error
	listErrOnce  bool
	pageFetches  int
	nextMsNumber int64

	updatedIssues []issueUpdate
	comments      []comment
	created       []string
}

type issueUpdate struct {
	number    int64
	state     string
	milestone int64
}

type comment struct {
	number int64
	body   string
}

func newFakeTracker() *fakeTracker {
	return &fakeTracker{
		prs:          make(map[string][]*secondary.PullRequestRef),
		nextMsNumber: 100,
	}
}

func (f *fakeTracker) VerifyAccess(_ context.Context) error {
	return f.accessErr
}

func (f *fakeTracker) ListOpenIssues(_ context.Context, page int) ([]*secondary.RemoteIssueRef, error) {
	f.pageFetches++
	if f.listErr != nil {
		err := f.listErr
		if f.listErrOnce {
			f.listErr = nil
		}
		return nil, err
	}
	const perPage = 100
	start := (page - 1) * perPage
	if start >= len(f.issues) {
		return nil, nil
	}
	end := start + perPage
	if end > len(f.issues) {
		end = len(f.issues)
	}
	return f.issues[start:end], nil
}

func (f *fakeTracker) ListMilestones(_ context.Context) ([]*secondary.RemoteMilestoneRef, error) {
	return f.milestones, nil
}

func (f *fakeTracker) CreateMilestone(_ context.Context, title string) (*secondary.RemoteMilestoneRef, error) {
	f.nextMsNumber++
	m := &secondary.RemoteMilestoneRef{Number: f.nextMsNumber, Title: title, State: "open"}
	f.milestones = append(f.milestones, m)
	f.created = append(f.created, title)
	return m, nil
}

func (f *fakeTracker) UpdateIssue(_ context.Context, number int64, state string, milestoneNumber int64) error {
	f.updatedIssues = append(f.updatedIssues, issueUpdate{number: number, state: state, milestone: milestoneNumber})
	return nil
}

func (f *fakeTracker) CreateComment(_ context.Context, number int64, body string) error {
	f.comments = append(f.comments, comment{number: number, body: body})
	return nil
}

func (f *fakeTracker) ListPullRequestsByBranch(_ context.Context, branch string) ([]*secondary.PullRequestRef, error) {
	return f.prs[branch], nil
}

// openTodoIssue builds an admissible remote issue.
func openTodoIssue(number int64, title, body string) *secondary.RemoteIssueRef {
	return &secondary.RemoteIssueRef{
		Number: number,
		Title:  title,
		Body:   body,
		State:  "open",
		Milestone: &secondary.RemoteMilestoneRef{
			Number: 1,
			Title:  "Todo",
			State:  "open",
		},
	}
}

// commentsMentioning counts comments containing the given substring.
func (f *fakeTracker) commentsMentioning(s string) int {
	n := 0
	for _, c := range f.comments {
		if strings.Contains(c.body, s) {
			n++
		}
	}
	return n
}
