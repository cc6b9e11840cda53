package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/aim/internal/wire"
)

// CheckResult represents the outcome of a single health check.
type CheckResult struct {
	Name    string
	Status  string // "✓", "⚠", "✗"
	Details string // only shown if Status != "✓"
}

// DoctorCmd returns the doctor command for environment validation.
func DoctorCmd() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Validate the aim environment",
		Long: `Health check for aim.

Validates:
- Database reachable and migrations current
- Configuration resolvable (owner/repo/token for sync)

Examples:
  aim doctor              # Run full health check
  aim doctor --quiet      # Exit code only (0=healthy, 1=issues)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			results := []CheckResult{
				checkDatabase(),
				checkMigrations(),
				checkGitHubConfig(),
			}

			hasErrors := false
			for _, r := range results {
				if r.Status == "✗" {
					hasErrors = true
				}
				if quiet {
					continue
				}
				icon := r.Status
				switch r.Status {
				case "✓":
					icon = color.New(color.FgGreen).Sprint("✓")
				case "⚠":
					icon = color.New(color.FgYellow).Sprint("⚠")
				case "✗":
					icon = color.New(color.FgRed).Sprint("✗")
				}
				fmt.Printf("%s %s\n", icon, r.Name)
				if r.Details != "" && r.Status != "✓" {
					fmt.Printf("    %s\n", r.Details)
				}
			}

			if hasErrors {
				return fmt.Errorf("environment has issues")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&quiet, "quiet", false, "Exit code only, no output")
	return cmd
}

func checkDatabase() CheckResult {
	store := wire.Store()
	var one int
	err := store.QueryOne(context.Background(), "SELECT 1").Scan(&one)
	if err != nil {
		return CheckResult{Name: "database", Status: "✗", Details: err.Error()}
	}
	return CheckResult{Name: fmt.Sprintf("database (%s)", store.Path()), Status: "✓"}
}

func checkMigrations() CheckResult {
	pending, err := wire.Store().PendingCount(context.Background())
	if err != nil {
		return CheckResult{Name: "migrations", Status: "✗", Details: err.Error()}
	}
	if pending > 0 {
		return CheckResult{Name: "migrations", Status: "✗", Details: fmt.Sprintf("%d pending", pending)}
	}
	return CheckResult{Name: "migrations current", Status: "✓"}
}

func checkGitHubConfig() CheckResult {
	cfg := wire.Config()
	if err := cfg.RequireGitHub(); err != nil {
		return CheckResult{
			Name:    "github configuration",
			Status:  "⚠",
			Details: fmt.Sprintf("%v (sync commands will not work)", err),
		}
	}
	return CheckResult{Name: fmt.Sprintf("github configuration (%s/%s)", cfg.GitHub.Owner, cfg.GitHub.Repo), Status: "✓"}
}
