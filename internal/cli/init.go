package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/aim/internal/config"
	"github.com/example/aim/internal/wire"
)

// InitCmd returns the init command: creates the .aim directory, writes the
// project config, opens the store, and runs migrations.
func InitCmd() *cobra.Command {
	var dbPath, owner, repo string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize aim in the current directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to resolve working directory: %w", err)
			}

			cfg := config.Config{
				Database: config.DatabaseConfig{Path: dbPath, Type: "sqlite"},
				GitHub:   config.GitHubConfig{Owner: owner, Repo: repo},
			}
			if err := config.Save(cwd, cfg); err != nil {
				return err
			}
			fmt.Println("✓ Wrote .aim/config.json")

			// Opening the store through wire runs migrations.
			store := wire.Store()
			fmt.Printf("✓ Database ready at %s\n", store.Path())
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", ".aim/aim.db", "Database file path")
	cmd.Flags().StringVar(&owner, "owner", "", "GitHub repository owner")
	cmd.Flags().StringVar(&repo, "repo", "", "GitHub repository name")
	return cmd
}
