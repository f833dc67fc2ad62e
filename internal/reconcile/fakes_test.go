package reconcile

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/conferencia/internal/model"
)

// fakeSources implements every collaborator interface in memory.
type fakeSources struct {
	mu       sync.Mutex
	plans    map[int]*model.MappingPlan
	chart    []model.Account
	entradas []model.FiscalDocument
	saidas   []model.FiscalDocument
	postings []model.Posting

	failPostings error
	failChart    error
	calls        []string
}

func (f *fakeSources) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
}

func (f *fakeSources) FetchEntradas(_ context.Context, _ int, _, _ time.Time) ([]model.FiscalDocument, error) {
	f.record("entradas")
	return f.entradas, nil
}

func (f *fakeSources) FetchSaidas(_ context.Context, _ int, _, _ time.Time) ([]model.FiscalDocument, error) {
	f.record("saidas")
	return f.saidas, nil
}

func (f *fakeSources) FetchPostings(_ context.Context, _ int, _, _ time.Time, _ string) ([]model.Posting, error) {
	f.record("postings")
	if f.failPostings != nil {
		return nil, f.failPostings
	}
	return f.postings, nil
}

func (f *fakeSources) FetchPlanWithItems(_ context.Context, planID int) (*model.MappingPlan, error) {
	f.record("plan")
	return f.plans[planID], nil
}

func (f *fakeSources) FetchAccounts(_ context.Context, _ int) ([]model.Account, error) {
	f.record("chart")
	if f.failChart != nil {
		return nil, f.failChart
	}
	return f.chart, nil
}

func (f *fakeSources) sources() Sources {
	return Sources{Fiscal: f, Accounting: f, Plans: f, Charts: f}
}

var errBoom = errors.New("boom")

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func testChart() []model.Account {
	return []model.Account{
		{ID: 100, Classification: "1.1.2", Description: "Clientes"},
		{ID: 101, Classification: "1.1.2.001", Description: "Clientes SP"},
		{ID: 200, Classification: "3.1.1", Description: "Vendas"},
		{ID: 300, Classification: "4.1", Description: "Servicos tomados"},
		{ID: 301, Classification: "4.1.001", Description: "Servicos PJ"},
		{ID: 400, Classification: "2.1.1", Description: "Fornecedores"},
		{ID: 500, Classification: "1.1.5", Description: "Adiantamentos"},
		{ID: 600, Classification: "3.1.2", Description: "Servicos prestados"},
	}
}

func testPlan() *model.MappingPlan {
	return model.NewMappingPlan(1, "Padrao", []model.MappingItem{
		{CFOP: "5102", DebitAccount: 100, CreditAccount: 200, Posts: true},
		{CFOP: "5405", DebitAccount: 100, CreditAccount: 200, Posts: true},
		{CFOP: "5933", DebitAccount: 100, CreditAccount: 600, Posts: true},
		{CFOP: "1949", DebitAccount: 300, CreditAccount: 400, Posts: true, Retained: true},
		{CFOP: "5949", Posts: false},
	})
}

func newFake() *fakeSources {
	return &fakeSources{
		plans: map[int]*model.MappingPlan{1: testPlan()},
		chart: testChart(),
	}
}

func fiscalDoc(key, nf int, lines ...model.CFOPLine) model.FiscalDocument {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.TaxableValue)
	}
	return model.FiscalDocument{Key: key, InvoiceNumber: nf, IssueDate: date(2025, 1, 10), TotalValue: total, Lines: lines}
}

func line(cfop int, value string) model.CFOPLine {
	return model.CFOPLine{CFOP: cfop, TaxableValue: dec(value)}
}

func posting(key, debit, credit int, value, origin, text string) model.Posting {
	return model.Posting{Key: key, Date: date(2025, 1, 10), DebitAccount: debit, CreditAccount: credit,
		Value: dec(value), OriginKey: origin, FreeText: text}
}

func january() Params {
	return Params{CompanyID: 7, Start: date(2025, 1, 1), End: date(2025, 1, 31), PlanID: 1}
}
