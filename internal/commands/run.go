package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/conferencia/internal/reconcile"
	"github.com/cleared-dev/conferencia/internal/report"
	"github.com/cleared-dev/conferencia/internal/runlog"
)

type runOptions struct {
	companyID int
	start     string
	end       string
	planID    int
	export    bool
	json      bool
}

func newRunCommand(g *globalOptions) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Reconcile the fiscal ledger against the accounting ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(g, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()
			return runReconcile(cmd.Context(), cmd.OutOrStdout(), a, opts, time.Now())
		},
	}

	cmd.Flags().IntVar(&opts.companyID, "empresa", 0, "company id")
	cmd.Flags().StringVar(&opts.start, "inicio", "", "period start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.end, "fim", "", "period end (YYYY-MM-DD)")
	cmd.Flags().IntVar(&opts.planID, "plano", 0, "mapping plan id")
	cmd.Flags().BoolVar(&opts.export, "export", false, "write CSV reports to exports/")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the result as JSON")
	_ = cmd.MarkFlagRequired("empresa")
	_ = cmd.MarkFlagRequired("inicio")
	_ = cmd.MarkFlagRequired("fim")
	_ = cmd.MarkFlagRequired("plano")

	return cmd
}

func runReconcile(ctx context.Context, out io.Writer, a *app, opts runOptions, now time.Time) error {
	start, err := time.Parse(time.DateOnly, opts.start)
	if err != nil {
		return fmt.Errorf("parsing --inicio: %w", err)
	}
	end, err := time.Parse(time.DateOnly, opts.end)
	if err != nil {
		return fmt.Errorf("parsing --fim: %w", err)
	}

	engine, err := a.engine()
	if err != nil {
		return err
	}
	params := reconcile.Params{CompanyID: opts.companyID, Start: start, End: end, PlanID: opts.planID}
	res, err := engine.Run(ctx, params)
	if err != nil {
		return err
	}

	if opts.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("encoding result: %w", err)
		}
	} else if err := report.Summary(out, res); err != nil {
		return err
	}

	var exportDir string
	if opts.export {
		rel := filepath.Join("exports", fmt.Sprintf("%d-%s-%s", opts.companyID, opts.start, opts.end))
		paths, err := report.Export(filepath.Join(a.root, rel), res)
		if err != nil {
			return err
		}
		exportDir = rel
		if !opts.json {
			for _, p := range paths {
				fmt.Fprintf(out, "wrote %s\n", p)
			}
		}
	}

	entry := runlog.FromResult(now, opts.companyID, opts.planID, start, end, res, exportDir)
	if err := runlog.Append(a.root, entry); err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	return nil
}
