package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/conferencia/internal/buildinfo"
	"github.com/cleared-dev/conferencia/internal/config"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var opts globalOptions

	rootCmd := &cobra.Command{
		Use:     "conferencia",
		Short:   "Fiscal vs. accounting ledger reconciliation",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", config.FileName, "path to conferencia.yaml")
	rootCmd.PersistentFlags().StringVar(&opts.envPath, "env", "", "dotenv file (default: .env next to the config)")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newImportCommand(&opts))
	rootCmd.AddCommand(newRunCommand(&opts))
	rootCmd.AddCommand(newServeCommand(&opts))
	rootCmd.AddCommand(newChartCommand(&opts))
	rootCmd.AddCommand(newPlanCommand(&opts))
	rootCmd.AddCommand(newHistoryCommand(&opts))

	return rootCmd
}
