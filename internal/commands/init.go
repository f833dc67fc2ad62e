package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/conferencia/internal/accounts"
	"github.com/cleared-dev/conferencia/internal/config"
	"github.com/cleared-dev/conferencia/internal/store"
)

func newInitCommand() *cobra.Command {
	var demoCompany int

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new conferencia project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd.Context(), cmd.OutOrStdout(), absDir, demoCompany)
		},
	}

	cmd.Flags().IntVar(&demoCompany, "demo", 0, "seed the sample chart of accounts for this company id")

	return cmd
}

func runInit(ctx context.Context, out io.Writer, dir string, demoCompany int) error {
	dirs := []string{
		"data",
		"exports",
		"logs",
		"import",
		filepath.Join("import", "processed"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists", cfgPath)
	}
	cfg := config.Default()
	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	gitignore := "data/\nexports/\n.env\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "import", ".gitkeep"), []byte{}, 0o644); err != nil {
		return fmt.Errorf("writing .gitkeep: %w", err)
	}

	// Creating the store applies the schema.
	st, err := store.Open(filepath.Join(dir, cfg.Database.Path), nil)
	if err != nil {
		return fmt.Errorf("creating database: %w", err)
	}
	defer st.Close()

	if demoCompany > 0 {
		if err := st.SaveAccounts(ctx, demoCompany, accounts.SampleChart()); err != nil {
			return fmt.Errorf("seeding chart of accounts: %w", err)
		}
		fmt.Fprintf(out, "Seeded sample chart of accounts for company %d\n", demoCompany)
	}

	fmt.Fprintf(out, "Initialized conferencia project at %s\n", dir)
	fmt.Fprintf(out, "Database: %s\n", st.Path())
	return nil
}
