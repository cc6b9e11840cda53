package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/aim/internal/cli"
	"github.com/example/aim/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "aim",
		Short:   "aim - goal tracking with tracker synchronization",
		Version: version.String(),
		Long: `aim tracks goals in a local ledger and keeps them reconciled with a
GitHub repository's issues and milestones.`,
	}

	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.DoctorCmd())
	rootCmd.AddCommand(cli.GoalCmd())
	rootCmd.AddCommand(cli.SyncCmd())
	rootCmd.AddCommand(cli.ConfigCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
