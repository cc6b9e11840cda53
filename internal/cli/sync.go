package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/aim/internal/wire"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile goals with the remote issue tracker",
	Long: `Pull imports open issues under the "Todo" milestone as local goals.
Push propagates a goal's status to its linked issue: open/closed state,
milestone assignment, and a completion comment when done.`,
}

var syncPullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Import eligible remote issues as goals",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		svc, err := wire.SyncService(ctx)
		if err != nil {
			return err
		}

		result, err := svc.Pull(ctx)
		if err != nil {
			return fmt.Errorf("pull sync failed: %w", err)
		}

		fmt.Printf("✓ Pull complete: %d created, %d updated\n", result.Created, result.Updated)
		if len(result.Errors) > 0 {
			fmt.Printf("%s %d item(s) failed:\n", color.New(color.FgYellow).Sprint("⚠"), len(result.Errors))
			for _, e := range result.Errors {
				if e.IssueNumber != 0 {
					fmt.Printf("  issue #%d: %v\n", e.IssueNumber, e.Err)
				} else {
					fmt.Printf("  %v\n", e.Err)
				}
			}
		}
		return nil
	},
}

var syncPushCmd = &cobra.Command{
	Use:   "push [goal-id]",
	Short: "Propagate a goal's status to its linked issue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		svc, err := wire.SyncService(ctx)
		if err != nil {
			return err
		}

		if err := svc.Push(ctx, args[0]); err != nil {
			return fmt.Errorf("push sync failed: %w", err)
		}

		fmt.Printf("✓ Pushed goal %s to the tracker\n", args[0])
		return nil
	},
}

var syncCheckPRCmd = &cobra.Command{
	Use:   "check-pr [goal-id]",
	Short: "Check whether a merged PR exists for the goal's branch",
	Long: `Read-only: reports merge state without changing the goal.
Mark the goal done explicitly if you want the status to follow.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		svc, err := wire.SyncService(ctx)
		if err != nil {
			return err
		}

		check, err := svc.CheckMerged(ctx, args[0])
		if err != nil {
			return fmt.Errorf("merge check failed: %w", err)
		}

		if !check.Merged {
			fmt.Println("No merged pull request found")
			return nil
		}
		fmt.Printf("✓ PR #%d merged at %s\n", check.Number, check.MergedAt)
		fmt.Printf("  Mark the goal done with: aim goal done %s\n", args[0])
		return nil
	},
}

// SyncCmd returns the sync command tree.
func SyncCmd() *cobra.Command {
	syncCmd.AddCommand(syncPullCmd)
	syncCmd.AddCommand(syncPushCmd)
	syncCmd.AddCommand(syncCheckPRCmd)
	return syncCmd
}
