package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/conferencia/internal/accounts"
	"github.com/cleared-dev/conferencia/internal/model"
)

func newChartCommand(g *globalOptions) *cobra.Command {
	var (
		companyID int
		asCSV     bool
	)

	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Show a company's chart of accounts as a tree",
		Long: `Show a company's chart of accounts as a tree.

Without --empresa the companies that have a chart are listed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(g, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			if companyID == 0 {
				ids, err := a.store.Companies(cmd.Context())
				if err != nil {
					return err
				}
				if len(ids) == 0 {
					fmt.Fprintln(out, "No charts imported")
				}
				for _, id := range ids {
					fmt.Fprintln(out, id)
				}
				return nil
			}

			chart, err := a.store.FetchAccounts(cmd.Context(), companyID)
			if err != nil {
				return err
			}
			if len(chart) == 0 {
				return fmt.Errorf("no chart of accounts for company %d", companyID)
			}
			if asCSV {
				return accounts.WriteAccounts(out, chart)
			}
			printTree(out, accounts.Resolve(chart))
			return nil
		},
	}

	cmd.Flags().IntVar(&companyID, "empresa", 0, "company id")
	cmd.Flags().BoolVar(&asCSV, "csv", false, "print the flat chart as CSV")

	return cmd
}

// printTree writes one line per account, indented by depth in the tree.
func printTree(w io.Writer, t *accounts.Tree) {
	t.Walk(func(n *accounts.Node, depth int) {
		label := strings.Repeat("  ", depth) + classificationOrDash(n.Account)
		fmt.Fprintf(w, "%-24s %6d  %s\n", label, n.ID, n.Description)
	})
}

func classificationOrDash(a model.Account) string {
	if a.Classification == "" {
		return "-"
	}
	return a.Classification
}
