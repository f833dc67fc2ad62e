package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/conferencia/internal/accounts"
	"github.com/cleared-dev/conferencia/internal/importer"
)

type importOptions struct {
	companyID int
	scan      bool
	strict    bool
}

func newImportCommand(g *globalOptions) *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import [kind] [file]",
		Short: "Import a chart, plan, fiscal ledger or postings file",
		Long: `Import a data file into the project database.

Kinds: chart, plan, entradas, saidas, lancamentos.

With --scan every file in import/ whose name starts with a kind is imported
and moved to import/processed/.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if opts.scan {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(2)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(g, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			reg := importer.DefaultRegistry()
			out := cmd.OutOrStdout()
			if opts.scan {
				return runImportScan(cmd.Context(), out, a, reg, opts)
			}
			return runImportFile(cmd.Context(), out, a, reg, args[0], args[1], opts)
		},
	}

	cmd.Flags().IntVar(&opts.companyID, "empresa", 0, "company id (required except for plans)")
	cmd.Flags().BoolVar(&opts.scan, "scan", false, "import every pending file in import/")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "refuse files with validation findings")

	return cmd
}

func runImportFile(ctx context.Context, out io.Writer, a *app, reg *importer.Registry, kind, path string, opts importOptions) error {
	batch, err := reg.LoadFile(kind, path)
	if err != nil {
		return err
	}
	return importBatch(ctx, out, a, batch, path, opts)
}

func runImportScan(ctx context.Context, out io.Writer, a *app, reg *importer.Registry, opts importOptions) error {
	files, err := reg.Scan(a.root)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintln(out, "No files to import")
		return nil
	}

	var imported int
	for _, f := range files {
		if f.Kind == "" {
			fmt.Fprintf(out, "skip  %s: unknown kind\n", f.Name)
			continue
		}
		batch, err := reg.LoadFile(f.Kind, f.Path)
		if err != nil {
			return err
		}
		if err := importBatch(ctx, out, a, batch, f.Name, opts); err != nil {
			return err
		}
		if err := importer.MarkProcessed(a.root, f.Name); err != nil {
			return err
		}
		imported++
	}
	fmt.Fprintf(out, "Imported %d of %d files\n", imported, len(files))
	return nil
}

// importBatch validates the batch against the company's stored chart and
// saves it. Findings are warnings unless opts.strict is set.
func importBatch(ctx context.Context, out io.Writer, a *app, batch *importer.Batch, name string, opts importOptions) error {
	chart, err := a.store.FetchAccounts(ctx, opts.companyID)
	if err != nil {
		return err
	}

	var checker importer.AccountChecker
	// Account references are only checked against a stored chart.
	if len(chart) > 0 && batch.Kind != importer.KindChart {
		checker = accounts.NewService(chart)
	}

	findings := batch.Validate(checker)
	for _, f := range findings {
		fmt.Fprintf(out, "warn  %s: %s\n", name, f.Error())
	}
	if opts.strict && len(findings) > 0 {
		return fmt.Errorf("%s: %d validation findings", name, len(findings))
	}

	if err := batch.Save(ctx, a.store, opts.companyID); err != nil {
		return err
	}
	a.logger.Info("imported file", "file", name, "kind", batch.Kind, "records", batch.Len())
	fmt.Fprintf(out, "ok    %s: %d %s records\n", name, batch.Len(), batch.Kind)
	return nil
}
