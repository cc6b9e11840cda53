package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/aim/internal/core/goal"
	"github.com/example/aim/internal/ports/primary"
	"github.com/example/aim/internal/wire"
)

var goalCmd = &cobra.Command{
	Use:   "goal",
	Short: "Manage goals (tracked units of work)",
	Long:  "Create, list, transition, and manage goals in the aim ledger",
}

var goalCreateCmd = &cobra.Command{
	Use:   "create [title]",
	Short: "Create a new goal",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		title := args[0]
		description, _ := cmd.Flags().GetString("description")

		resp, err := wire.GoalService().CreateGoal(ctx, primary.CreateGoalRequest{
			Title:       title,
			Description: description,
		})
		if err != nil {
			if resp != nil {
				printResults(resp.Results)
			}
			return fmt.Errorf("failed to create goal: %w", err)
		}

		fmt.Printf("✓ Created goal %s: %s\n", resp.Goal.ID, resp.Goal.Title)
		printResults(resp.Results)
		return nil
	},
}

var goalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List goals",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		status, _ := cmd.Flags().GetString("status")

		goals, err := wire.GoalService().ListGoals(ctx, primary.GoalFilters{Status: status})
		if err != nil {
			return fmt.Errorf("failed to list goals: %w", err)
		}

		if len(goals) == 0 {
			fmt.Println("No goals found")
			return nil
		}

		for _, g := range goals {
			fmt.Printf("%s %s  %-12s %s\n", statusIcon(g.Status), g.ID, g.Status, g.Title)
			if g.BranchName != "" {
				fmt.Printf("    branch: %s\n", g.BranchName)
			}
			if g.GitHubIssueID != 0 {
				fmt.Printf("    issue:  #%d\n", g.GitHubIssueID)
			}
		}
		return nil
	},
}

var goalShowCmd = &cobra.Command{
	Use:   "show [goal-id]",
	Short: "Show a goal's details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := wire.GoalService().GetGoal(context.Background(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("%s %s\n", statusIcon(g.Status), g.ID)
		fmt.Printf("  Title:   %s\n", g.Title)
		fmt.Printf("  Status:  %s\n", g.Status)
		if g.BranchName != "" {
			fmt.Printf("  Branch:  %s\n", g.BranchName)
		}
		if g.GitHubIssueID != 0 {
			fmt.Printf("  Issue:   #%d\n", g.GitHubIssueID)
		}
		if g.Description != "" {
			fmt.Printf("  Description:\n    %s\n", g.Description)
		}
		fmt.Printf("  Created: %s\n", g.CreatedAt)
		fmt.Printf("  Updated: %s\n", g.UpdatedAt)
		if g.CompletedAt != "" {
			fmt.Printf("  Completed: %s\n", g.CompletedAt)
		}
		return nil
	},
}

var goalStartCmd = &cobra.Command{
	Use:   "start [goal-id]",
	Short: "Move a goal to in_progress",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		branch, _ := cmd.Flags().GetString("branch")
		return transition(args[0], goal.StatusInProgress, branch)
	},
}

var goalDoneCmd = &cobra.Command{
	Use:   "done [goal-id]",
	Short: "Mark a goal done",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return transition(args[0], goal.StatusDone, "")
	},
}

var goalParkCmd = &cobra.Command{
	Use:   "park [goal-id]",
	Short: "Return an in-progress goal to todo",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return transition(args[0], goal.StatusTodo, "")
	},
}

var goalArchiveCmd = &cobra.Command{
	Use:   "archive [goal-id]",
	Short: "Archive a done goal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return transition(args[0], goal.StatusArchived, "")
	},
}

var goalUpdateCmd = &cobra.Command{
	Use:   "update [goal-id]",
	Short: "Update a goal's fields",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := primary.UpdateGoalRequest{GoalID: args[0]}

		if cmd.Flags().Changed("title") {
			title, _ := cmd.Flags().GetString("title")
			req.Title = &title
		}
		if cmd.Flags().Changed("description") {
			desc, _ := cmd.Flags().GetString("description")
			req.Description = &desc
		}
		if cmd.Flags().Changed("branch") {
			branch, _ := cmd.Flags().GetString("branch")
			req.BranchName = &branch
		}

		resp, err := wire.GoalService().UpdateGoal(context.Background(), req)
		if err != nil {
			if resp != nil {
				printResults(resp.Results)
			}
			return fmt.Errorf("failed to update goal: %w", err)
		}

		fmt.Printf("✓ Updated goal %s\n", resp.Goal.ID)
		printResults(resp.Results)
		return nil
	},
}

var goalDeleteCmd = &cobra.Command{
	Use:   "delete [goal-id]",
	Short: "Permanently delete a goal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		if !force {
			return fmt.Errorf("deletion is permanent; re-run with --force")
		}
		if err := wire.GoalService().DeleteGoal(context.Background(), args[0]); err != nil {
			return err
		}
		fmt.Printf("✓ Deleted goal %s\n", args[0])
		return nil
	},
}

// transition moves a goal through the lifecycle and prints gate output.
func transition(goalID, newStatus, branch string) error {
	resp, err := wire.GoalService().TransitionGoal(context.Background(), primary.TransitionRequest{
		GoalID:     goalID,
		NewStatus:  newStatus,
		BranchName: branch,
	})
	if err != nil {
		if resp != nil {
			printResults(resp.Results)
		}
		return fmt.Errorf("failed to transition goal: %w", err)
	}

	fmt.Printf("✓ Goal %s is now %s\n", resp.Goal.ID, resp.Goal.Status)
	printResults(resp.Results)
	return nil
}

// printResults prints the gate's findings. Passing checks stay quiet.
func printResults(results []goal.Result) {
	for _, r := range results {
		if r.Valid {
			continue
		}
		icon := "ℹ"
		switch r.Severity {
		case goal.SeverityError:
			icon = "✗"
		case goal.SeverityWarning:
			icon = "⚠"
		}
		fmt.Printf("  %s [%s] %s\n", icon, r.Rule, r.Message)
		if r.Suggestion != "" {
			fmt.Printf("    hint: %s\n", r.Suggestion)
		}
	}
}

// statusIcon returns an icon for a goal status.
func statusIcon(status string) string {
	switch status {
	case goal.StatusTodo:
		return "📦"
	case goal.StatusInProgress:
		return "🔧"
	case goal.StatusDone:
		return "✅"
	case goal.StatusArchived:
		return "🗄"
	default:
		return "📋"
	}
}

// GoalCmd returns the goal command tree.
func GoalCmd() *cobra.Command {
	goalCreateCmd.Flags().StringP("description", "d", "", "Goal description")
	goalListCmd.Flags().StringP("status", "s", "", "Filter by status (todo|in_progress|done|archived)")
	goalStartCmd.Flags().StringP("branch", "b", "", "Branch to associate with the goal")
	goalUpdateCmd.Flags().String("title", "", "New title")
	goalUpdateCmd.Flags().StringP("description", "d", "", "New description")
	goalUpdateCmd.Flags().StringP("branch", "b", "", "New branch name (empty clears)")
	goalDeleteCmd.Flags().Bool("force", false, "Confirm permanent deletion")

	goalCmd.AddCommand(goalCreateCmd)
	goalCmd.AddCommand(goalListCmd)
	goalCmd.AddCommand(goalShowCmd)
	goalCmd.AddCommand(goalStartCmd)
	goalCmd.AddCommand(goalDoneCmd)
	goalCmd.AddCommand(goalParkCmd)
	goalCmd.AddCommand(goalArchiveCmd)
	goalCmd.AddCommand(goalUpdateCmd)
	goalCmd.AddCommand(goalDeleteCmd)
	return goalCmd
}
