package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/aim/internal/wire"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage stored configuration",
	Long: `Stored configuration is the highest-precedence layer, overriding
the environment and the project file. Keys: database.path, github.owner,
github.repo, github.token.`,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Read a stored configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := wire.ConfigRepo().Get(context.Background(), args[0])
		if err != nil {
			return err
		}
		if value == "" {
			fmt.Printf("%s is not set\n", args[0])
			return nil
		}
		fmt.Println(value)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Store a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := wire.ConfigRepo().Set(context.Background(), args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("✓ Set %s\n", args[0])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		values, err := wire.ConfigRepo().All(context.Background())
		if err != nil {
			return err
		}
		if len(values) == 0 {
			fmt.Println("No stored configuration")
			return nil
		}

		keys := make([]string, 0, len(values))
		for k := range values {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			v := values[k]
			if strings.Contains(k, "token") {
				v = "(redacted)"
			}
			fmt.Printf("%s = %s\n", k, v)
		}
		return nil
	},
}

// ConfigCmd returns the config command tree.
func ConfigCmd() *cobra.Command {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configListCmd)
	return configCmd
}
