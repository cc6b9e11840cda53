package app

import (
	"context"
	"testing"

	"github.com/example/aim/internal/aid"
	"github.com/example/aim/internal/core/goal"
	"github.com/example/aim/internal/ports/primary"
	"github.com/example/aim/internal/ports/secondary"
)

func newTestGoalService(repo *mockGoalRepo) *GoalServiceImpl {
	return NewGoalService(repo, aid.NewGenerator(aid.DefaultConfig()), goal.NewGate(), nil)
}

func TestCreateGoal(t *testing.T) {
	repo := newMockGoalRepo()
	svc := newTestGoalService(repo)
	ctx := context.Background()

	resp, err := svc.CreateGoal(ctx, primary.CreateGoalRequest{
		Title:       "Ship the importer",
		Description: "Import remote issues.\n\nAcceptance:\n- [ ] idempotent reruns",
	})
	if err != nil {
		t.Fatalf("CreateGoal failed: %v", err)
	}
	if resp.Goal == nil {
		t.Fatal("expected created goal")
	}
	if resp.Goal.Status != "todo" {
		t.Errorf("expected status todo, got %q", resp.Goal.Status)
	}
	if !aid.IsValidAID(resp.Goal.ID) {
		t.Errorf("expected valid AID, got %q", resp.Goal.ID)
	}
	if len(resp.Results) == 0 {
		t.Error("expected gate results to accompany creation")
	}
}

func TestCreateGoal_DuplicateTitleRejected(t *testing.T) {
	repo := newMockGoalRepo()
	svc := newTestGoalService(repo)
	ctx := context.Background()

	if _, err := svc.CreateGoal(ctx, primary.CreateGoalRequest{Title: "Fix Login Bug"}); err != nil {
		t.Fatalf("first CreateGoal failed: %v", err)
	}

	resp, err := svc.CreateGoal(ctx, primary.CreateGoalRequest{Title: "fix login bug"})
	if err == nil {
		t.Fatal("expected case-insensitive duplicate to be rejected")
	}
	if resp == nil || !goal.HasErrors(resp.Results) {
		t.Error("expected error-severity gate results in the rejection")
	}

	goals, _ := svc.ListGoals(ctx, primary.GoalFilters{})
	if len(goals) != 1 {
		t.Errorf("rejected goal must not persist, found %d goals", len(goals))
	}
}

func TestTransitionGoal_Lifecycle(t *testing.T) {
	repo := newMockGoalRepo()
	svc := newTestGoalService(repo)
	ctx := context.Background()

	created, err := svc.CreateGoal(ctx, primary.CreateGoalRequest{Title: "Lifecycle goal"})
	if err != nil {
		t.Fatalf("CreateGoal failed: %v", err)
	}
	id := created.Goal.ID

	// todo -> in_progress with a branch.
	resp, err := svc.TransitionGoal(ctx, primary.TransitionRequest{
		GoalID: id, NewStatus: "in_progress", BranchName: "feat/lifecycle",
	})
	if err != nil {
		t.Fatalf("start transition failed: %v", err)
	}
	if resp.Goal.Status != "in_progress" || resp.Goal.BranchName != "feat/lifecycle" {
		t.Errorf("unexpected goal after start: %+v", resp.Goal)
	}

	// in_progress -> done.
	resp, err = svc.TransitionGoal(ctx, primary.TransitionRequest{GoalID: id, NewStatus: "done"})
	if err != nil {
		t.Fatalf("done transition failed: %v", err)
	}
	if resp.Goal.CompletedAt == "" {
		t.Error("expected completed_at set on done")
	}

	// done -> archived.
	if _, err := svc.TransitionGoal(ctx, primary.TransitionRequest{GoalID: id, NewStatus: "archived"}); err != nil {
		t.Fatalf("archive transition failed: %v", err)
	}

	// archived is terminal.
	if _, err := svc.TransitionGoal(ctx, primary.TransitionRequest{GoalID: id, NewStatus: "todo"}); err == nil {
		t.Error("expected transition out of archived to be rejected")
	}
}

func TestTransitionGoal_IllegalJumpRejected(t *testing.T) {
	repo := newMockGoalRepo()
	svc := newTestGoalService(repo)
	ctx := context.Background()

	created, _ := svc.CreateGoal(ctx, primary.CreateGoalRequest{Title: "Jumpy goal"})

	resp, err := svc.TransitionGoal(ctx, primary.TransitionRequest{
		GoalID: created.Goal.ID, NewStatus: "done",
	})
	if err == nil {
		t.Fatal("expected todo -> done to be rejected")
	}
	if resp == nil || !goal.HasErrors(resp.Results) {
		t.Error("expected error-severity results explaining the rejection")
	}

	g, _ := svc.GetGoal(ctx, created.Goal.ID)
	if g.Status != "todo" {
		t.Errorf("rejected transition must not persist, status is %q", g.Status)
	}
}

func TestTransitionGoal_BackToTodoClearsBranch(t *testing.T) {
	repo := newMockGoalRepo()
	svc := newTestGoalService(repo)
	ctx := context.Background()

	created, _ := svc.CreateGoal(ctx, primary.CreateGoalRequest{Title: "Parked goal"})
	id := created.Goal.ID

	if _, err := svc.TransitionGoal(ctx, primary.TransitionRequest{
		GoalID: id, NewStatus: "in_progress", BranchName: "feat/parked",
	}); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	resp, err := svc.TransitionGoal(ctx, primary.TransitionRequest{GoalID: id, NewStatus: "todo"})
	if err != nil {
		t.Fatalf("park failed: %v", err)
	}
	if resp.Goal.BranchName != "" {
		t.Errorf("expected branch cleared on return to todo, got %q", resp.Goal.BranchName)
	}
}

func TestUpdateGoal_PartialFields(t *testing.T) {
	repo := newMockGoalRepo()
	svc := newTestGoalService(repo)
	ctx := context.Background()

	created, _ := svc.CreateGoal(ctx, primary.CreateGoalRequest{Title: "Original", Description: "Old"})
	newTitle := "Renamed goal"

	resp, err := svc.UpdateGoal(ctx, primary.UpdateGoalRequest{
		GoalID: created.Goal.ID,
		Title:  &newTitle,
	})
	if err != nil {
		t.Fatalf("UpdateGoal failed: %v", err)
	}
	if resp.Goal.Title != "Renamed goal" {
		t.Errorf("expected renamed title, got %q", resp.Goal.Title)
	}
	if resp.Goal.Description != "Old" {
		t.Errorf("untouched description changed: %q", resp.Goal.Description)
	}
}

func TestUpdateGoal_DuplicateTitleRejected(t *testing.T) {
	repo := newMockGoalRepo()
	svc := newTestGoalService(repo)
	ctx := context.Background()

	svc.CreateGoal(ctx, primary.CreateGoalRequest{Title: "Taken title"})
	created, _ := svc.CreateGoal(ctx, primary.CreateGoalRequest{Title: "Free title"})

	dup := "TAKEN TITLE"
	if _, err := svc.UpdateGoal(ctx, primary.UpdateGoalRequest{
		GoalID: created.Goal.ID, Title: &dup,
	}); err == nil {
		t.Error("expected rename onto an existing title to be rejected")
	}
}

func TestDeleteGoal(t *testing.T) {
	repo := newMockGoalRepo()
	svc := newTestGoalService(repo)
	ctx := context.Background()

	created, _ := svc.CreateGoal(ctx, primary.CreateGoalRequest{Title: "Doomed"})

	if err := svc.DeleteGoal(ctx, created.Goal.ID); err != nil {
		t.Fatalf("DeleteGoal failed: %v", err)
	}
	if _, err := svc.GetGoal(ctx, created.Goal.ID); err == nil {
		t.Error("expected goal to be gone")
	}
}

func TestGetGoalByBranch(t *testing.T) {
	repo := newMockGoalRepo()
	svc := newTestGoalService(repo)
	ctx := context.Background()

	repo.Create(ctx, &secondary.GoalRecord{
		ID: "g-abc123", Title: "Branchy", Status: "in_progress", BranchName: "feat/x",
	})

	g, err := svc.GetGoalByBranch(ctx, "feat/x")
	if err != nil {
		t.Fatalf("GetGoalByBranch failed: %v", err)
	}
	if g == nil || g.ID != "g-abc123" {
		t.Errorf("expected g-abc123, got %+v", g)
	}

	missing, err := svc.GetGoalByBranch(ctx, "feat/none")
	if err != nil {
		t.Fatalf("GetGoalByBranch failed: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown branch, got %+v", missing)
	}
}

func TestValidate_DryRun(t *testing.T) {
	repo := newMockGoalRepo()
	svc := newTestGoalService(repo)
	ctx := context.Background()

	results, err := svc.Validate(ctx, goal.Candidate{Title: "x", Status: "todo"})
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if !goal.HasErrors(results) {
		t.Error("expected short title to produce an error result")
	}

	goals, _ := svc.ListGoals(ctx, primary.GoalFilters{})
	if len(goals) != 0 {
		t.Error("Validate must not persist anything")
	}
}
