package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/conferencia/internal/accounts"
	"github.com/cleared-dev/conferencia/internal/reconcile"
	"github.com/cleared-dev/conferencia/internal/store"
)

// ReconcileRequest is the body of POST /conferencia-fiscal/executar.
type ReconcileRequest struct {
	CompanyID int    `json:"codigoEmpresa"`
	Start     string `json:"dataInicio"`
	End       string `json:"dataFim"`
	PlanID    int    `json:"planoContabilizacaoId"`
}

func (req ReconcileRequest) params() (reconcile.Params, error) {
	if req.CompanyID <= 0 {
		return reconcile.Params{}, errors.New("codigoEmpresa is required")
	}
	if req.PlanID <= 0 {
		return reconcile.Params{}, errors.New("planoContabilizacaoId is required")
	}
	start, err := time.Parse(time.DateOnly, req.Start)
	if err != nil {
		return reconcile.Params{}, errors.New("dataInicio must be YYYY-MM-DD")
	}
	end, err := time.Parse(time.DateOnly, req.End)
	if err != nil {
		return reconcile.Params{}, errors.New("dataFim must be YYYY-MM-DD")
	}
	return reconcile.Params{CompanyID: req.CompanyID, Start: start, End: end, PlanID: req.PlanID}, nil
}

func (s *Server) handleReconcile(w http.ResponseWriter, r *http.Request) {
	var req ReconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Failed to parse request body")
		return
	}
	p, err := req.params()
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
		return
	}

	res, err := s.runner.Run(r.Context(), p)
	switch {
	case errors.Is(err, reconcile.ErrPlanNotFound):
		writeJSONError(w, http.StatusNotFound, "not_found", err.Error())
		return
	case errors.Is(err, reconcile.ErrInvalidPeriod):
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
		return
	case err != nil:
		s.logger.Error("reconciliation failed", "empresa", p.CompanyID, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "server_error", "Reconciliation failed")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// chartFor loads the company chart named in the URL. It writes the error
// reply itself and returns false on failure.
func (s *Server) chartFor(w http.ResponseWriter, r *http.Request) (*accounts.Service, bool) {
	companyID, err := strconv.Atoi(chi.URLParam(r, "empresa"))
	if err != nil || companyID <= 0 {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Invalid empresa")
		return nil, false
	}
	accts, err := s.store.FetchAccounts(r.Context(), companyID)
	if err != nil {
		s.logger.Error("loading chart failed", "empresa", companyID, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "server_error", "Failed to load chart of accounts")
		return nil, false
	}
	return accounts.NewService(accts), true
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	svc, ok := s.chartFor(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, svc.All())
}

// TreeResponse is the body of the tree endpoints.
type TreeResponse struct {
	Roots         []*accounts.Node `json:"raizes"`
	TotalAccounts int              `json:"totalContas"`
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	svc, ok := s.chartFor(w, r)
	if !ok {
		return
	}
	t := svc.Tree()
	writeJSON(w, http.StatusOK, TreeResponse{Roots: t.Roots, TotalAccounts: len(svc.All())})
}

// TreeValuesRequest carries per-account values keyed by account id.
type TreeValuesRequest struct {
	Values map[string]decimal.Decimal `json:"valores"`
}

func (s *Server) handleTreeWithValues(w http.ResponseWriter, r *http.Request) {
	var req TreeValuesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Failed to parse request body")
		return
	}
	values := make(map[int]decimal.Decimal, len(req.Values))
	for k, v := range req.Values {
		id, err := strconv.Atoi(k)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Invalid account id "+strconv.Quote(k))
			return
		}
		values[id] = v
	}

	svc, ok := s.chartFor(w, r)
	if !ok {
		return
	}
	t := accounts.ResolveWithValues(svc.All(), values)
	writeJSON(w, http.StatusOK, TreeResponse{Roots: t.Roots, TotalAccounts: len(svc.All())})
}

func (s *Server) handleClassificationMap(w http.ResponseWriter, r *http.Request) {
	svc, ok := s.chartFor(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, svc.Index())
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Invalid plan ID")
		return
	}
	plan, err := s.store.GetPlan(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, "not_found", "Plan not found")
			return
		}
		s.logger.Error("loading plan failed", "plano", id, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "server_error", "Failed to get plan")
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		writeJSONError(w, http.StatusServiceUnavailable, "unavailable", "Database unreachable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
