// Package server exposes reconciliation and chart lookups over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/cleared-dev/conferencia/internal/model"
	"github.com/cleared-dev/conferencia/internal/reconcile"
)

// Store is what the handlers read besides the engine.
type Store interface {
	FetchAccounts(ctx context.Context, companyID int) ([]model.Account, error)
	GetPlan(ctx context.Context, planID int) (*model.MappingPlan, error)
	Ping(ctx context.Context) error
}

// Runner executes a reconciliation.
type Runner interface {
	Run(ctx context.Context, p reconcile.Params) (*model.Result, error)
}

// Server wires handlers to a chi router.
type Server struct {
	runner Runner
	store  Store
	logger *slog.Logger
}

// New creates a Server. A nil logger uses slog.Default().
func New(runner Runner, store Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{runner: runner, store: store, logger: logger}
}

// Router returns the HTTP handler for all routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Post("/conferencia-fiscal/executar", s.handleReconcile)

	r.Route("/plano-contas/{empresa}", func(r chi.Router) {
		r.Get("/", s.handleChart)
		r.Get("/arvore", s.handleTree)
		r.Post("/arvore-valores", s.handleTreeWithValues)
		r.Get("/mapa", s.handleClassificationMap)
	})

	r.Get("/planos/{id}", s.handlePlan)
	r.Get("/health", s.handleHealth)
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, code, description string) {
	writeJSON(w, status, ErrorResponse{Error: code, ErrorDescription: description})
}
