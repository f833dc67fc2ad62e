package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/conferencia/internal/importer"
	"github.com/cleared-dev/conferencia/internal/model"
	"github.com/cleared-dev/conferencia/internal/reconcile"
	"github.com/cleared-dev/conferencia/internal/store"
)

type fakeRunner struct {
	got reconcile.Params
	res *model.Result
	err error
}

func (f *fakeRunner) Run(_ context.Context, p reconcile.Params) (*model.Result, error) {
	f.got = p
	return f.res, f.err
}

type fakeStore struct {
	accounts []model.Account
	plans    map[int]*model.MappingPlan
	pingErr  error
}

func (f *fakeStore) FetchAccounts(_ context.Context, _ int) ([]model.Account, error) {
	return f.accounts, nil
}

func (f *fakeStore) GetPlan(_ context.Context, id int) (*model.MappingPlan, error) {
	if p, ok := f.plans[id]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("plan %d: %w", id, store.ErrNotFound)
}

func (f *fakeStore) Ping(context.Context) error { return f.pingErr }

func testStore() *fakeStore {
	return &fakeStore{
		accounts: []model.Account{
			{ID: 1, Classification: "1", Description: "Ativo"},
			{ID: 10, Classification: "1.1.2", Description: "Clientes"},
			{ID: 11, Classification: "1.1.2.001", Description: "Clientes SP"},
		},
		plans: map[int]*model.MappingPlan{
			1: model.NewMappingPlan(1, "Padrao", []model.MappingItem{{CFOP: "5102", DebitAccount: 10, CreditAccount: 40, Posts: true}}),
		},
	}
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var e ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
	return e
}

const validBody = `{"codigoEmpresa": 7, "dataInicio": "2025-01-01", "dataFim": "2025-01-31", "planoContabilizacaoId": 1}`

func TestReconcile(t *testing.T) {
	runner := &fakeRunner{res: &model.Result{TotalSaidas: 3, Divergences: []model.Divergence{}, Notes: []model.MatchedNote{}}}
	h := New(runner, testStore(), nil).Router()

	rec := do(t, h, http.MethodPost, "/conferencia-fiscal/executar", validBody)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, 7, runner.got.CompanyID)
	assert.Equal(t, 1, runner.got.PlanID)
	assert.Equal(t, 31, runner.got.End.Day())

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.EqualValues(t, 3, body["totalSaidas"])
	assert.Contains(t, body, "divergenciasEncontradas")
	assert.Contains(t, body, "notasCorretas")
}

func TestReconcileErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
		code   string
	}{
		{"bad json", `{`, nil, http.StatusBadRequest, "invalid_request"},
		{"missing company", `{"dataInicio": "2025-01-01", "dataFim": "2025-01-31", "planoContabilizacaoId": 1}`, nil, http.StatusBadRequest, "invalid_parameter"},
		{"bad date", `{"codigoEmpresa": 7, "dataInicio": "01/01/2025", "dataFim": "2025-01-31", "planoContabilizacaoId": 1}`, nil, http.StatusBadRequest, "invalid_parameter"},
		{"plan not found", validBody, fmt.Errorf("plan 1: %w", reconcile.ErrPlanNotFound), http.StatusNotFound, "not_found"},
		{"invalid period", validBody, reconcile.ErrInvalidPeriod, http.StatusBadRequest, "invalid_parameter"},
		{"fetch failure", validBody, errors.New("disk gone"), http.StatusInternalServerError, "server_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := New(&fakeRunner{err: tt.err}, testStore(), nil).Router()
			rec := do(t, h, http.MethodPost, "/conferencia-fiscal/executar", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, decodeError(t, rec).Error)
		})
	}
}

func TestChartEndpoints(t *testing.T) {
	h := New(&fakeRunner{}, testStore(), nil).Router()

	rec := do(t, h, http.MethodGet, "/plano-contas/7", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var flat []model.Account
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &flat))
	assert.Len(t, flat, 3)

	rec = do(t, h, http.MethodGet, "/plano-contas/7/mapa", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var index map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &index))
	assert.Equal(t, "1.1.2.001", index["11"])

	rec = do(t, h, http.MethodGet, "/plano-contas/x/arvore", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type treeNode struct {
	ID       int             `json:"conta"`
	Total    decimal.Decimal `json:"valorTotal"`
	Children []treeNode      `json:"filhos"`
}

type treeBody struct {
	Roots []treeNode `json:"raizes"`
	Total int        `json:"totalContas"`
}

func TestTreeEndpoints(t *testing.T) {
	h := New(&fakeRunner{}, testStore(), nil).Router()

	rec := do(t, h, http.MethodGet, "/plano-contas/7/arvore", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var tree treeBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tree))
	assert.Equal(t, 3, tree.Total)
	require.Len(t, tree.Roots, 1)
	require.Len(t, tree.Roots[0].Children, 1)
	assert.Equal(t, 10, tree.Roots[0].Children[0].ID)

	rec = do(t, h, http.MethodPost, "/plano-contas/7/arvore-valores", `{"valores": {"11": "100.50", "10": 5}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tree))
	assert.True(t, tree.Roots[0].Total.Equal(decimal.RequireFromString("105.50")))

	rec = do(t, h, http.MethodPost, "/plano-contas/7/arvore-valores", `{"valores": {"abc": 1}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlanEndpoint(t *testing.T) {
	h := New(&fakeRunner{}, testStore(), nil).Router()

	rec := do(t, h, http.MethodGet, "/planos/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var plan model.MappingPlan
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &plan))
	assert.Equal(t, "Padrao", plan.Name)
	require.Len(t, plan.Items, 1)
	assert.Equal(t, "5102", plan.Items[0].CFOP)

	rec = do(t, h, http.MethodGet, "/planos/9", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/planos/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealth(t *testing.T) {
	st := testStore()
	h := New(&fakeRunner{}, st, nil).Router()

	rec := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	st.pingErr = errors.New("closed")
	rec = do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestReconcileEndToEnd(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st, err := store.Open(filepath.Join(t.TempDir(), "conferencia.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	reg := importer.DefaultRegistry()
	for kind, file := range map[string]string{
		importer.KindChart:       "contas.csv",
		importer.KindPlan:        "plano.yaml",
		importer.KindEntradas:    "entradas.csv",
		importer.KindSaidas:      "saidas.csv",
		importer.KindLancamentos: "lancamentos.csv",
	} {
		b, err := reg.LoadFile(kind, filepath.Join("../../testdata", file))
		require.NoError(t, err, kind)
		require.NoError(t, b.Save(ctx, st, 7), kind)
	}

	engine := reconcile.NewEngine(reconcile.Sources{Fiscal: st, Accounting: st, Plans: st, Charts: st}, reconcile.DefaultOptions(), logger)
	h := New(engine, st, logger).Router()

	rec := do(t, h, http.MethodPost, "/conferencia-fiscal/executar", validBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res model.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 2, res.TotalEntradas)
	assert.Equal(t, 2, res.TotalSaidas)
	assert.Equal(t, 2, res.CFOPsEntradaConferidos)
	assert.Equal(t, 3, res.CFOPsSaidaConferidos)
	require.Len(t, res.Divergences, 1)
	assert.Equal(t, model.KindValueMismatch, res.Divergences[0].Kind)
	assert.Equal(t, 5933, res.Divergences[0].CFOP)
	assert.Equal(t, 102, res.Divergences[0].AccountingKey)

	rec = do(t, h, http.MethodPost, "/conferencia-fiscal/executar",
		`{"codigoEmpresa": 7, "dataInicio": "2025-01-01", "dataFim": "2025-01-31", "planoContabilizacaoId": 2}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
