package report

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/conferencia/internal/model"
)

func sampleResult() *model.Result {
	return &model.Result{
		TotalEntradas: 1, TotalSaidas: 1,
		TotalCFOPsEntrada: 1, TotalCFOPsSaida: 3,
		CFOPsEntradaConferidos: 1, CFOPsSaidaConferidos: 1,
		DivergenceCount: 2,
		Notes: []model.MatchedNote{
			{InvoiceNumber: 555, Direction: model.DirectionEntrada, CFOP: 1949, FiscalKey: 2, AccountingKey: 104,
				FiscalValue: decimal.NewFromInt(1000), GroupValue: decimal.NewNullDecimal(decimal.NewFromInt(1000)),
				AccountingValue: decimal.NewNullDecimal(decimal.NewFromInt(1000)),
				DebitAccount: 51, CreditAccount: 30, Treatment: model.TreatmentRetained,
				NetAccountingKey: 105, RetainedValue: decimal.NewNullDecimal(decimal.NewFromInt(100))},
			{InvoiceNumber: 1002, Direction: model.DirectionSaida, CFOP: 5949, FiscalKey: 2,
				FiscalValue: decimal.NewFromInt(5), Treatment: model.TreatmentNonPosting},
		},
		Divergences: []model.Divergence{
			{Kind: model.KindValueMismatch, InvoiceNumber: 1001, Direction: model.DirectionSaida, CFOP: 5933, FiscalKey: 1,
				FiscalValue: decimal.RequireFromString("20"), GroupValue: decimal.NewNullDecimal(decimal.RequireFromString("20")),
				AccountingKey: 102, AccountingValue: decimal.NewNullDecimal(decimal.RequireFromString("19.5")),
				DebitAccount: 10, CreditAccount: 41, ExpectedDebitAccount: 10, ExpectedCreditAccount: 41,
				Description: "Divergência de valor, NF 1001"},
			{Kind: model.KindUnconfigured, InvoiceNumber: 1001, Direction: model.DirectionSaida, CFOP: 9999, FiscalKey: 1,
				FiscalValue: decimal.RequireFromString("3")},
		},
	}
}

func readCSV(t *testing.T, data []byte) [][]string {
	t.Helper()
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	return records
}

func TestWriteNotes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteNotes(&buf, sampleResult().Notes))

	records := readCSV(t, buf.Bytes())
	require.Len(t, records, 3)
	assert.Equal(t, NotesHeader, records[0])

	retained := records[1]
	assert.Equal(t, "1000.00", retained[6])
	assert.Equal(t, "1000.00", retained[7])
	assert.Equal(t, "0.00", retained[8])
	assert.Equal(t, "RETIDO", retained[11])
	assert.Equal(t, "105", retained[12])
	assert.Equal(t, "100.00", retained[13])

	nonPosting := records[2]
	assert.Equal(t, "", nonPosting[4], "no accounting key")
	assert.Equal(t, "", nonPosting[6], "no group value")
	assert.Equal(t, "", nonPosting[7], "no accounting value")
	assert.Equal(t, "", nonPosting[8], "no difference")
}

func TestWriteNotes_GroupDifference(t *testing.T) {
	group := decimal.NewNullDecimal(decimal.RequireFromString("150.00"))
	posted := decimal.NewNullDecimal(decimal.RequireFromString("150.01"))
	notes := []model.MatchedNote{
		{InvoiceNumber: 1001, Direction: model.DirectionSaida, CFOP: 5102, FiscalKey: 1, AccountingKey: 900,
			FiscalValue: decimal.RequireFromString("100.00"), GroupValue: group, AccountingValue: posted,
			Treatment: model.TreatmentPosted},
		{InvoiceNumber: 1001, Direction: model.DirectionSaida, CFOP: 5405, FiscalKey: 1, AccountingKey: 900,
			FiscalValue: decimal.RequireFromString("50.00"), GroupValue: group, AccountingValue: posted,
			Treatment: model.TreatmentPosted},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteNotes(&buf, notes))

	records := readCSV(t, buf.Bytes())
	require.Len(t, records, 3)
	for _, r := range records[1:] {
		assert.Equal(t, "150.00", r[6])
		assert.Equal(t, "150.01", r[7])
		assert.Equal(t, "0.01", r[8], "lines sharing a posting compare through the group total")
	}
}

func TestWriteDivergences(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteDivergences(&buf, sampleResult().Divergences))

	records := readCSV(t, buf.Bytes())
	require.Len(t, records, 3)
	assert.Equal(t, DivergencesHeader, records[0])
	assert.Equal(t, "VALOR_DIVERGENTE", records[1][0])
	assert.Equal(t, "0.50", records[1][9])
	assert.Equal(t, "Divergência de valor, NF 1001", records[1][18])

	// Without an accounting side the difference is the fiscal value.
	assert.Equal(t, "", records[2][8])
	assert.Equal(t, "3.00", records[2][9])
}

func TestExport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	paths, err := Export(dir, sampleResult())
	require.NoError(t, err)
	require.Len(t, paths, 4)
	assert.Equal(t, filepath.Join(dir, "entradas-corretas.csv"), paths[0])
	assert.Equal(t, filepath.Join(dir, "saidas-divergencias.csv"), paths[3])

	data, err := os.ReadFile(filepath.Join(dir, "entradas-divergencias.csv"))
	require.NoError(t, err)
	assert.Len(t, readCSV(t, data), 1, "header only")

	data, err = os.ReadFile(filepath.Join(dir, "saidas-divergencias.csv"))
	require.NoError(t, err)
	assert.Len(t, readCSV(t, data), 3)
}

func TestSummary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Summary(&buf, sampleResult()))

	out := buf.String()
	assert.Contains(t, out, "1 notas, 1/3 CFOPs conferidos")
	assert.Contains(t, out, "2 divergências")
	assert.Contains(t, out, "VALOR_DIVERGENTE")
	assert.Contains(t, out, "CFOP_NAO_CONFIGURADO")
}

func TestSummaryClean(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Summary(&buf, &model.Result{}))
	assert.Contains(t, buf.String(), "nenhuma divergência")
}

func TestCountKinds(t *testing.T) {
	divs := []model.Divergence{
		{Kind: model.KindNotFound}, {Kind: model.KindWrongAccount}, {Kind: model.KindNotFound},
	}
	got := countKinds(divs)
	require.Len(t, got, 2)
	assert.Equal(t, kindCount{model.KindNotFound, 2}, got[0])
}

func TestTable(t *testing.T) {
	out := Table([]string{"ID", "NOME"}, [][]string{{"1", "Comercio"}, {"2", "Servicos"}})

	assert.Contains(t, out, "NOME")
	assert.Contains(t, out, "Comercio")
	assert.Contains(t, out, "Servicos")
	assert.Less(t, strings.Index(out, "Comercio"), strings.Index(out, "Servicos"), "rows keep their order")
}
