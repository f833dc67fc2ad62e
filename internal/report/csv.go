// Package report renders reconciliation results as CSV files and as a
// terminal summary.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/conferencia/internal/model"
)

// NotesHeader lists the matched-note CSV columns.
var NotesHeader = []string{
	"numero_nf", "tipo", "cfop", "chave_fiscal", "chave_contabil", "valor_fiscal", "valor_grupo",
	"valor_contabil", "diferenca", "conta_debito", "conta_credito", "tratamento", "chave_contabil_liquido", "valor_retido",
}

// DivergencesHeader lists the divergence CSV columns.
var DivergencesHeader = []string{
	"tipo_divergencia", "numero_nf", "tipo", "cfop", "chave_fiscal", "valor_fiscal", "valor_grupo",
	"chave_contabil", "valor_contabil", "diferenca",
	"conta_debito", "conta_credito", "conta_debito_esperada", "conta_credito_esperada",
	"classificacao_debito", "classificacao_credito",
	"classificacao_debito_esperada", "classificacao_credito_esperada", "descricao",
}

// WriteNotes writes matched notes as CSV.
func WriteNotes(w io.Writer, notes []model.MatchedNote) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(NotesHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, n := range notes {
		if err := cw.Write(MarshalNote(n)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteDivergences writes divergences as CSV.
func WriteDivergences(w io.Writer, divs []model.Divergence) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(DivergencesHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, d := range divs {
		if err := cw.Write(MarshalDivergence(d)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalNote converts a note to a CSV row.
func MarshalNote(n model.MatchedNote) []string {
	return []string{
		strconv.Itoa(n.InvoiceNumber),
		string(n.Direction),
		strconv.Itoa(n.CFOP),
		strconv.Itoa(n.FiscalKey),
		key(n.AccountingKey),
		money(n.FiscalValue),
		nullMoney(n.GroupValue),
		nullMoney(n.AccountingValue),
		nullMoney(n.Difference()),
		key(n.DebitAccount),
		key(n.CreditAccount),
		string(n.Treatment),
		key(n.NetAccountingKey),
		nullMoney(n.RetainedValue),
	}
}

// MarshalDivergence converts a divergence to a CSV row.
func MarshalDivergence(d model.Divergence) []string {
	return []string{
		string(d.Kind),
		strconv.Itoa(d.InvoiceNumber),
		string(d.Direction),
		strconv.Itoa(d.CFOP),
		strconv.Itoa(d.FiscalKey),
		money(d.FiscalValue),
		nullMoney(d.GroupValue),
		key(d.AccountingKey),
		nullMoney(d.AccountingValue),
		money(d.Difference()),
		key(d.DebitAccount),
		key(d.CreditAccount),
		key(d.ExpectedDebitAccount),
		key(d.ExpectedCreditAccount),
		d.DebitClassification,
		d.CreditClassification,
		d.ExpectedDebitClassification,
		d.ExpectedCreditClassification,
		d.Description,
	}
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func nullMoney(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return money(d.Decimal)
}

// key renders an id, leaving 0 ("none") blank.
func key(id int) string {
	if id == 0 {
		return ""
	}
	return strconv.Itoa(id)
}
