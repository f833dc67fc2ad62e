package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/charmbracelet/lipgloss"

	"github.com/cleared-dev/conferencia/internal/model"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#00D787", Dark: "#00D787"})
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#FF5F87", Dark: "#FF5F87"})
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#808080", Dark: "#808080"})
)

// Summary prints the run totals and a count of divergences per kind.
func Summary(w io.Writer, res *model.Result) error {
	lines := []string{
		titleStyle.Render("Conferência fiscal x contábil"),
		row("Entradas", fmt.Sprintf("%d notas, %d/%d CFOPs conferidos",
			res.TotalEntradas, res.CFOPsEntradaConferidos, res.TotalCFOPsEntrada)),
		row("Saídas", fmt.Sprintf("%d notas, %d/%d CFOPs conferidos",
			res.TotalSaidas, res.CFOPsSaidaConferidos, res.TotalCFOPsSaida)),
	}

	if res.DivergenceCount == 0 {
		lines = append(lines, okStyle.Render("✓ nenhuma divergência"))
	} else {
		lines = append(lines, warnStyle.Render(fmt.Sprintf("✗ %d divergências", res.DivergenceCount)))
		for _, kc := range countKinds(res.Divergences) {
			lines = append(lines, row("  "+string(kc.kind), fmt.Sprint(kc.n)))
		}
	}

	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}

func row(label, value string) string {
	return labelStyle.Render(label+":") + " " + value
}

type kindCount struct {
	kind model.DivergenceKind
	n    int
}

func countKinds(divs []model.Divergence) []kindCount {
	counts := make(map[model.DivergenceKind]int)
	for _, d := range divs {
		counts[d.Kind]++
	}
	out := make([]kindCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, kindCount{k, n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].n != out[j].n {
			return out[i].n > out[j].n
		}
		return out[i].kind < out[j].kind
	})
	return out
}
