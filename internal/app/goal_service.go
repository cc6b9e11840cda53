// Package app implements the primary ports: goal workflows and tracker
// synchronization.
package app

import (
	"context"
	"fmt"

	"github.com/example/aim/internal/aid"
	"github.com/example/aim/internal/core/goal"
	"github.com/example/aim/internal/ports/primary"
	"github.com/example/aim/internal/ports/secondary"
)

// EnvironmentProbe supplies the gate context pieces that come from the
// working copy rather than the store. Best effort: a zero probe means no
// branch and a clean tree.
type EnvironmentProbe interface {
	CurrentBranch(ctx context.Context) string
	WorkingTreeClean(ctx context.Context) bool
}

// GoalServiceImpl implements the GoalService interface. Every state
// transition is evaluated by the gate before it is persisted.
type GoalServiceImpl struct {
	goalRepo secondary.GoalRepository
	gen      *aid.Generator
	gate     *goal.Gate
	env      EnvironmentProbe
}

// NewGoalService creates a new GoalService with injected dependencies.
// env may be nil.
func NewGoalService(goalRepo secondary.GoalRepository, gen *aid.Generator, gate *goal.Gate, env EnvironmentProbe) *GoalServiceImpl {
	return &GoalServiceImpl{
		goalRepo: goalRepo,
		gen:      gen,
		gate:     gate,
		env:      env,
	}
}

// gateContext assembles the read-only snapshot the rules evaluate against.
func (s *GoalServiceImpl) gateContext(ctx context.Context) (goal.Context, error) {
	records, err := s.goalRepo.List(ctx, secondary.GoalFilters{})
	if err != nil {
		return goal.Context{}, fmt.Errorf("failed to load goals for validation: %w", err)
	}

	gctx := goal.Context{WorkingTreeClean: true}
	for _, r := range records {
		gctx.Goals = append(gctx.Goals, goal.Snapshot{
			ID:            r.ID,
			Title:         r.Title,
			Status:        r.Status,
			BranchName:    r.BranchName,
			GitHubIssueID: r.GitHubIssueID,
		})
	}
	if s.env != nil {
		gctx.CurrentBranch = s.env.CurrentBranch(ctx)
		gctx.WorkingTreeClean = s.env.WorkingTreeClean(ctx)
	}
	return gctx, nil
}

// CreateGoal validates and persists a new goal with a freshly minted id.
func (s *GoalServiceImpl) CreateGoal(ctx context.Context, req primary.CreateGoalRequest) (*primary.CreateGoalResponse, error) {
	gctx, err := s.gateContext(ctx)
	if err != nil {
		return nil, err
	}

	candidate := goal.Candidate{
		Title:       req.Title,
		Status:      goal.StatusTodo,
		Description: req.Description,
	}
	results := s.gate.Evaluate(candidate, gctx)
	if goal.HasErrors(results) {
		return &primary.CreateGoalResponse{Results: results}, fmt.Errorf("goal rejected by validation")
	}

	id, err := s.gen.GenerateUnique(ctx, "g", s.goalRepo.IsIDUnique)
	if err != nil {
		return nil, fmt.Errorf("failed to mint goal id: %w", err)
	}

	record := &secondary.GoalRecord{
		ID:          id,
		Title:       req.Title,
		Status:      goal.StatusTodo,
		Description: req.Description,
	}
	if err := s.goalRepo.Create(ctx, record); err != nil {
		return nil, err
	}

	created, err := s.goalRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch created goal: %w", err)
	}

	return &primary.CreateGoalResponse{
		Goal:    recordToGoal(created),
		Results: results,
	}, nil
}

// TransitionGoal validates and persists a status transition.
func (s *GoalServiceImpl) TransitionGoal(ctx context.Context, req primary.TransitionRequest) (*primary.TransitionResponse, error) {
	current, err := s.goalRepo.GetByID(ctx, req.GoalID)
	if err != nil {
		return nil, err
	}

	branch := current.BranchName
	if req.BranchName != "" {
		branch = req.BranchName
	}
	// Leaving in_progress for todo drops the branch association.
	if req.NewStatus == goal.StatusTodo {
		branch = ""
	}

	gctx, err := s.gateContext(ctx)
	if err != nil {
		return nil, err
	}

	candidate := goal.Candidate{
		ID:            current.ID,
		Title:         current.Title,
		Status:        req.NewStatus,
		PrevStatus:    current.Status,
		Description:   current.Description,
		BranchName:    branch,
		GitHubIssueID: current.GitHubIssueID,
	}
	results := s.gate.Evaluate(candidate, gctx)
	if goal.HasErrors(results) {
		return &primary.TransitionResponse{Results: results}, fmt.Errorf("transition rejected by validation")
	}

	patch := secondary.GoalPatch{Status: &req.NewStatus}
	if branch != current.BranchName {
		patch.BranchName = &branch
	}
	if err := s.goalRepo.Update(ctx, req.GoalID, patch); err != nil {
		return nil, err
	}

	updated, err := s.goalRepo.GetByID(ctx, req.GoalID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch updated goal: %w", err)
	}

	return &primary.TransitionResponse{
		Goal:    recordToGoal(updated),
		Results: results,
	}, nil
}

// UpdateGoal validates and persists partial field updates.
func (s *GoalServiceImpl) UpdateGoal(ctx context.Context, req primary.UpdateGoalRequest) (*primary.TransitionResponse, error) {
	current, err := s.goalRepo.GetByID(ctx, req.GoalID)
	if err != nil {
		return nil, err
	}

	candidate := goal.Candidate{
		ID:            current.ID,
		Title:         current.Title,
		Status:        current.Status,
		Description:   current.Description,
		BranchName:    current.BranchName,
		GitHubIssueID: current.GitHubIssueID,
	}
	if req.Title != nil {
		candidate.Title = *req.Title
	}
	if req.Description != nil {
		candidate.Description = *req.Description
	}
	if req.BranchName != nil {
		candidate.BranchName = *req.BranchName
	}

	gctx, err := s.gateContext(ctx)
	if err != nil {
		return nil, err
	}

	results := s.gate.Evaluate(candidate, gctx)
	if goal.HasErrors(results) {
		return &primary.TransitionResponse{Results: results}, fmt.Errorf("update rejected by validation")
	}

	patch := secondary.GoalPatch{
		Title:       req.Title,
		Description: req.Description,
		BranchName:  req.BranchName,
	}
	if err := s.goalRepo.Update(ctx, req.GoalID, patch); err != nil {
		return nil, err
	}

	updated, err := s.goalRepo.GetByID(ctx, req.GoalID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch updated goal: %w", err)
	}

	return &primary.TransitionResponse{
		Goal:    recordToGoal(updated),
		Results: results,
	}, nil
}

// GetGoal retrieves a goal by id.
func (s *GoalServiceImpl) GetGoal(ctx context.Context, id string) (*primary.Goal, error) {
	record, err := s.goalRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return recordToGoal(record), nil
}

// GetGoalByBranch retrieves the goal attached to a branch, or nil.
func (s *GoalServiceImpl) GetGoalByBranch(ctx context.Context, branch string) (*primary.Goal, error) {
	record, err := s.goalRepo.GetByBranch(ctx, branch)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, nil
	}
	return recordToGoal(record), nil
}

// ListGoals lists goals, optionally filtered by status.
func (s *GoalServiceImpl) ListGoals(ctx context.Context, filters primary.GoalFilters) ([]*primary.Goal, error) {
	records, err := s.goalRepo.List(ctx, secondary.GoalFilters{Status: filters.Status})
	if err != nil {
		return nil, err
	}

	goals := make([]*primary.Goal, 0, len(records))
	for _, r := range records {
		goals = append(goals, recordToGoal(r))
	}
	return goals, nil
}

// DeleteGoal hard-deletes a goal.
func (s *GoalServiceImpl) DeleteGoal(ctx context.Context, id string) error {
	return s.goalRepo.Delete(ctx, id)
}

// Validate runs the gate against a hypothetical goal without persisting.
func (s *GoalServiceImpl) Validate(ctx context.Context, candidate goal.Candidate) ([]goal.Result, error) {
	gctx, err := s.gateContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.gate.Evaluate(candidate, gctx), nil
}

// recordToGoal converts a persistence record to the service-level view.
func recordToGoal(r *secondary.GoalRecord) *primary.Goal {
	return &primary.Goal{
		ID:            r.ID,
		Title:         r.Title,
		Status:        r.Status,
		Description:   r.Description,
		GitHubIssueID: r.GitHubIssueID,
		BranchName:    r.BranchName,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
		CompletedAt:   r.CompletedAt,
	}
}
