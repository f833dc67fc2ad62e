package importer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/conferencia/internal/model"
)

func TestFiscalLoader_Saidas(t *testing.T) {
	b, err := DefaultRegistry().LoadFile(KindSaidas, "../../testdata/saidas.csv")
	require.NoError(t, err)

	assert.Equal(t, KindSaidas, b.Kind)
	assert.Equal(t, model.DirectionSaida, b.Direction)
	require.Len(t, b.Documents, 2)

	first := b.Documents[0]
	assert.Equal(t, 1, first.Key)
	assert.Equal(t, 1001, first.InvoiceNumber)
	assert.Equal(t, 10, first.IssueDate.Day())
	assert.Equal(t, "170.00", first.TotalValue.StringFixed(2))
	require.Len(t, first.Lines, 2)
	assert.Equal(t, 5933, first.Lines[1].CFOP)
	assert.Equal(t, "20.00", first.Lines[1].TaxableValue.StringFixed(2))

	// Missing valor_contabil falls back to the sum of the lines.
	assert.Equal(t, "85.00", b.Documents[1].TotalValue.StringFixed(2))
	assert.Equal(t, 2, b.Len())
}

func TestFiscalLoader_SemicolonBrazilianNumbers(t *testing.T) {
	b, err := DefaultRegistry().LoadFile(KindEntradas, "../../testdata/entradas.csv")
	require.NoError(t, err)

	assert.Equal(t, model.DirectionEntrada, b.Direction)
	require.Len(t, b.Documents, 2)
	assert.Equal(t, "1250.00", b.Documents[0].TotalValue.StringFixed(2))
	assert.Equal(t, 2025, b.Documents[0].IssueDate.Year())
	assert.Equal(t, 5, b.Documents[0].IssueDate.Day())
	assert.Equal(t, 555, b.Documents[1].InvoiceNumber)
}

func TestFiscalLoader_MissingColumn(t *testing.T) {
	l := &FiscalLoader{Direction: model.DirectionSaida}
	_, err := l.Load(strings.NewReader("chave,numero_nf,data,cfop\n1,1,2025-01-01,5102\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing column "valor_cfop"`)
}

func TestFiscalLoader_BadRows(t *testing.T) {
	header := "chave,numero_nf,data,valor_contabil,cfop,valor_cfop\n"
	tests := []struct {
		name   string
		row    string
		errMsg string
	}{
		{"bad key", "x,1,2025-01-01,,5102,1.00", "parsing chave"},
		{"bad date", "1,1,01-2025-01,,5102,1.00", "parsing data"},
		{"bad cfop", "1,1,2025-01-01,,51O2,1.00", "parsing cfop"},
		{"bad value", "1,1,2025-01-01,,5102,abc", "parsing valor_cfop"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := (&FiscalLoader{}).Load(strings.NewReader(header + tt.row + "\n"))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "row 2")
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestPostingLoader(t *testing.T) {
	b, err := DefaultRegistry().LoadFile(KindLancamentos, "../../testdata/lancamentos.csv")
	require.NoError(t, err)
	require.Len(t, b.Postings, 6)

	p := b.Postings[0]
	assert.Equal(t, 100, p.Key)
	assert.Equal(t, 20, p.DebitAccount)
	assert.Equal(t, 30, p.CreditAccount)
	assert.True(t, p.Value.Equal(decimal.NewFromInt(1250)))
	assert.Equal(t, "FE-1", p.OriginKey)
	assert.Equal(t, "COMPRA NF 4001", p.FreeText)

	gross, net := b.Postings[4], b.Postings[5]
	assert.Equal(t, 0, gross.CreditAccount)
	assert.Equal(t, 0, net.DebitAccount)
	assert.Equal(t, "900.00", net.Value.StringFixed(2))
}

func TestChartLoader(t *testing.T) {
	b, err := DefaultRegistry().LoadFile(KindChart, "../../testdata/contas.csv")
	require.NoError(t, err)
	require.Len(t, b.Accounts, 10)
	assert.Equal(t, model.Account{ID: 11, Classification: "1.1.2.001", Description: "CLIENTES NACIONAIS"}, b.Accounts[3])
}

func TestPlanLoader(t *testing.T) {
	b, err := DefaultRegistry().LoadFile(KindPlan, "../../testdata/plano.yaml")
	require.NoError(t, err)
	require.NotNil(t, b.Plan)

	assert.Equal(t, 1, b.Plan.ID)
	assert.Len(t, b.Plan.Items, 5)
	rule, ok := b.Plan.Rule(1949)
	require.True(t, ok)
	assert.True(t, rule.Retained)
	assert.Equal(t, 61, rule.Retention.IRRF)

	rule, ok = b.Plan.Rule(5949)
	require.True(t, ok)
	assert.False(t, rule.Posts)
}

func TestPlanLoader_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		yaml   string
		errMsg string
	}{
		{"empty", "", "empty file"},
		{"no id", "nome: x\n", "plan id must be positive"},
		{"unknown field", "id: 1\nfoo: bar\n", "parsing plan"},
		{"bad cfop", "id: 1\nitens:\n  - cfop: abc\n", "not numeric"},
		{"posting without accounts", "id: 1\nitens:\n  - cfop: \"5102\"\n    contabiliza: true\n", "lacks a debit or credit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := (&PlanLoader{}).Load(strings.NewReader(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestParseAmount(t *testing.T) {
	for in, want := range map[string]string{
		"150.00":   "150",
		"1.234,56": "1234.56",
		"19,5":     "19.5",
		"-10":      "-10",
		"1 000,00": "1000",
	} {
		got, err := parseAmount(in, "valor")
		require.NoError(t, err, in)
		assert.True(t, got.Equal(decimal.RequireFromString(want)), "%s → %s", in, got)
	}
	_, err := parseAmount("", "valor")
	assert.Error(t, err)
}

func TestDetectComma(t *testing.T) {
	assert.Equal(t, ';', DetectComma([]byte("a;b;c\n1,5;2;3\n")))
	assert.Equal(t, ',', DetectComma([]byte("a,b,c\n1;2;3\n")))
	assert.Equal(t, ',', DetectComma(nil))
}

type recordingSink struct {
	calls   []string
	company int
}

func (s *recordingSink) SaveAccounts(_ context.Context, companyID int, _ []model.Account) error {
	s.calls, s.company = append(s.calls, "accounts"), companyID
	return nil
}

func (s *recordingSink) SavePlan(_ context.Context, _ *model.MappingPlan) error {
	s.calls = append(s.calls, "plan")
	return nil
}

func (s *recordingSink) SaveDocuments(_ context.Context, companyID int, dir model.Direction, _ []model.FiscalDocument) error {
	s.calls, s.company = append(s.calls, "documents:"+string(dir)), companyID
	return nil
}

func (s *recordingSink) SavePostings(_ context.Context, companyID int, _ []model.Posting) error {
	s.calls, s.company = append(s.calls, "postings"), companyID
	return nil
}

func TestBatchSave(t *testing.T) {
	ctx := context.Background()
	sink := &recordingSink{}

	require.NoError(t, (&Batch{Kind: KindPlan, Plan: model.NewMappingPlan(1, "", nil)}).Save(ctx, sink, 0))
	require.NoError(t, (&Batch{Kind: KindChart}).Save(ctx, sink, 7))
	require.NoError(t, (&Batch{Kind: KindEntradas, Direction: model.DirectionEntrada}).Save(ctx, sink, 7))
	require.NoError(t, (&Batch{Kind: KindLancamentos}).Save(ctx, sink, 7))

	assert.Equal(t, []string{"plan", "accounts", "documents:ENTRADA", "postings"}, sink.calls)
	assert.Equal(t, 7, sink.company)

	err := (&Batch{Kind: KindSaidas}).Save(ctx, sink, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "company id is required")
}

func TestRegistry_GetUnknown(t *testing.T) {
	r := NewRegistry()
	assert.Nil(t, r.Get("nonexistent"))

	_, err := DefaultRegistry().LoadFile("nonexistent", "x.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chart, entradas, lancamentos, plan, saidas")
}

func TestRegistry_CaseInsensitive(t *testing.T) {
	r := NewRegistry()
	r.Register(&ChartLoader{})
	assert.NotNil(t, r.Get("Chart"))
	assert.NotNil(t, r.Get("CHART"))
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	r := NewRegistry()
	r.Register(&PostingLoader{})
	assert.Panics(t, func() { r.Register(&PostingLoader{}) })
}

func TestKindOf(t *testing.T) {
	r := DefaultRegistry()
	assert.Equal(t, KindSaidas, r.KindOf("saidas-2025-01.csv"))
	assert.Equal(t, KindPlan, r.KindOf("/tmp/Plano_padrao.yaml"))
	assert.Equal(t, KindLancamentos, r.KindOf("lancamentos.csv"))
	assert.Equal(t, "", r.KindOf("bank.csv"))
}

func TestScan_FindsDataFiles(t *testing.T) {
	dir := t.TempDir()
	importDir := filepath.Join(dir, "import")
	require.NoError(t, os.MkdirAll(importDir, 0o755))

	for _, name := range []string{"saidas-jan.csv", "plano.yml", "notes.txt", "bank.csv"} {
		require.NoError(t, os.WriteFile(filepath.Join(importDir, name), []byte("data"), 0o644))
	}

	files, err := DefaultRegistry().Scan(dir)
	require.NoError(t, err)
	require.Len(t, files, 3)

	kinds := map[string]string{}
	for _, f := range files {
		kinds[f.Name] = f.Kind
	}
	assert.Equal(t, map[string]string{"saidas-jan.csv": KindSaidas, "plano.yml": KindPlan, "bank.csv": ""}, kinds)
}

func TestScan_IgnoresProcessedDir(t *testing.T) {
	dir := t.TempDir()
	importDir := filepath.Join(dir, "import")
	processedDir := filepath.Join(importDir, "processed")
	require.NoError(t, os.MkdirAll(processedDir, 0o755))

	require.NoError(t, os.WriteFile(filepath.Join(importDir, "new.csv"), []byte("data"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(processedDir, "old.csv"), []byte("data"), 0o644))

	files, err := DefaultRegistry().Scan(dir)
	require.NoError(t, err)
	assert.Len(t, files, 1)
	assert.Equal(t, "new.csv", files[0].Name)
}

func TestScan_EmptyDir(t *testing.T) {
	files, err := DefaultRegistry().Scan(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, files)
}

func TestMarkProcessed(t *testing.T) {
	dir := t.TempDir()
	importDir := filepath.Join(dir, "import")
	require.NoError(t, os.MkdirAll(importDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(importDir, "saidas.csv"), []byte("data"), 0o644))

	require.NoError(t, MarkProcessed(dir, "saidas.csv"))

	_, err := os.Stat(filepath.Join(importDir, "saidas.csv"))
	assert.True(t, os.IsNotExist(err))

	info, err := os.Stat(filepath.Join(dir, "import", "processed", "saidas.csv"))
	require.NoError(t, err)
	assert.False(t, info.IsDir())
}
