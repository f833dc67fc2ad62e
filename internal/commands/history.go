package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/conferencia/internal/report"
	"github.com/cleared-dev/conferencia/internal/runlog"
)

func newHistoryCommand(g *globalOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show previous reconciliation runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := projectRoot(g)
			if err != nil {
				return err
			}
			entries, err := runlog.Read(root)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			if limit > 0 && len(entries) > limit {
				entries = entries[len(entries)-limit:]
			}

			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{
					e.Timestamp.Format(time.DateTime),
					strconv.Itoa(e.CompanyID),
					strconv.Itoa(e.PlanID),
					e.Start.Format(time.DateOnly) + ".." + e.End.Format(time.DateOnly),
					strconv.Itoa(e.CFOPs),
					strconv.Itoa(e.Confirmed),
					strconv.Itoa(e.Divergences),
				})
			}
			headers := []string{"QUANDO", "EMPRESA", "PLANO", "PERIODO", "CFOPS", "CONFERIDOS", "DIVERGENCIAS"}
			_, err = fmt.Fprintln(out, report.Table(headers, rows))
			return err
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "show only the last n runs (0 for all)")

	return cmd
}
