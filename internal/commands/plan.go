package commands

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/conferencia/internal/accounts"
	"github.com/cleared-dev/conferencia/internal/model"
	"github.com/cleared-dev/conferencia/internal/report"
	"github.com/cleared-dev/conferencia/internal/store"
)

func newPlanCommand(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Inspect mapping plans",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List stored mapping plans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(g, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			plans, err := a.store.ListPlans(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(plans) == 0 {
				fmt.Fprintln(out, "No plans")
				return nil
			}
			rows := make([][]string, 0, len(plans))
			for _, p := range plans {
				rows = append(rows, []string{strconv.Itoa(p.ID), p.Name, strconv.Itoa(p.Items)})
			}
			_, err = fmt.Fprintln(out, report.Table([]string{"ID", "NOME", "ITENS"}, rows))
			return err
		},
	})

	var companyID int
	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show the CFOP rules of a mapping plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			planID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid plan id %q", args[0])
			}

			a, err := openApp(g, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			plan, err := a.store.GetPlan(cmd.Context(), planID)
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("plan %d not found", planID)
			}
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if err := printPlan(out, plan); err != nil {
				return err
			}
			if companyID == 0 {
				return nil
			}

			chart, err := a.store.FetchAccounts(cmd.Context(), companyID)
			if err != nil {
				return err
			}
			missing := accounts.NewService(chart).Missing(planAccounts(plan)...)
			if len(missing) == 0 {
				fmt.Fprintf(out, "\nAll accounts present in the chart of company %d\n", companyID)
				return nil
			}
			fmt.Fprintf(out, "\nAccounts missing from the chart of company %d: %v\n", companyID, missing)
			return nil
		},
	}
	show.Flags().IntVar(&companyID, "empresa", 0, "check the plan's accounts against this company's chart")
	cmd.AddCommand(show)

	return cmd
}

func printPlan(w io.Writer, plan *model.MappingPlan) error {
	fmt.Fprintf(w, "Plano %d: %s\n\n", plan.ID, plan.Name)
	rows := make([][]string, 0, len(plan.Items))
	for _, it := range plan.Items {
		rows = append(rows, []string{it.CFOP, accountCell(it.DebitAccount), accountCell(it.CreditAccount), treatment(it), retentionCell(it.Retention)})
	}
	_, err := fmt.Fprintln(w, report.Table([]string{"CFOP", "DEBITO", "CREDITO", "TRATAMENTO", "RETENCOES"}, rows))
	return err
}

// planAccounts lists every account a plan names, without duplicates.
func planAccounts(plan *model.MappingPlan) []int {
	seen := make(map[int]bool)
	var ids []int
	for _, it := range plan.Items {
		r := it.Retention
		for _, id := range []int{it.DebitAccount, it.CreditAccount, r.INSS, r.ISSQN, r.IRPJ, r.CSLL, r.IRRF, r.PIS, r.COFINS} {
			if id != 0 && !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids
}

func accountCell(id int) string {
	if id == 0 {
		return "-"
	}
	return strconv.Itoa(id)
}

func retentionCell(r model.RetentionAccounts) string {
	var parts []string
	for _, t := range []struct {
		name string
		id   int
	}{
		{"inss", r.INSS}, {"issqn", r.ISSQN}, {"irpj", r.IRPJ}, {"csll", r.CSLL},
		{"irrf", r.IRRF}, {"pis", r.PIS}, {"cofins", r.COFINS},
	} {
		if t.id != 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", t.name, t.id))
		}
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " ")
}

func treatment(it model.MappingItem) string {
	switch {
	case !it.Posts:
		return string(model.TreatmentNonPosting)
	case it.Retained:
		return string(model.TreatmentRetained)
	default:
		return string(model.TreatmentPosted)
	}
}
