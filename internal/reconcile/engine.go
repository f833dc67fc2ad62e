package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cleared-dev/conferencia/internal/accounts"
	"github.com/cleared-dev/conferencia/internal/id"
	"github.com/cleared-dev/conferencia/internal/model"
)

// Params selects what one reconciliation run covers.
type Params struct {
	CompanyID int
	Start     time.Time
	End       time.Time
	PlanID    int
}

// Engine audits a company's fiscal ledger against its accounting ledger.
// It holds no state between runs and may be used concurrently.
type Engine struct {
	src    Sources
	opts   Options
	logger *slog.Logger
}

// NewEngine creates an Engine. A nil logger uses slog.Default().
func NewEngine(src Sources, opts Options, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{src: src, opts: opts.withDefaults(), logger: logger}
}

type ledgers struct {
	entradas []model.FiscalDocument
	saidas   []model.FiscalDocument
	postings []model.Posting
}

// Run recomputes the reconciliation for the period from scratch.
func (e *Engine) Run(ctx context.Context, p Params) (*model.Result, error) {
	if p.End.Before(p.Start) {
		return nil, fmt.Errorf("%w: %s before %s", ErrInvalidPeriod,
			p.End.Format(time.DateOnly), p.Start.Format(time.DateOnly))
	}
	log := e.logger.With("empresa", p.CompanyID, "plano", p.PlanID,
		"inicio", p.Start.Format(time.DateOnly), "fim", p.End.Format(time.DateOnly))

	plan, chart, err := e.loadPlanAndChart(ctx, p)
	if err != nil {
		return nil, err
	}
	log.Info("plan loaded", "itens", len(plan.Items), "contas", len(chart))

	l, err := e.loadLedgers(ctx, p)
	if err != nil {
		return nil, err
	}
	log.Info("ledgers loaded", "entradas", len(l.entradas), "saidas", len(l.saidas), "lancamentos", len(l.postings))

	index := accounts.NewIndex(chart)
	pools := e.indexPostings(l.postings, log)
	retention := NewRetentionReconciler(l.postings, e.opts.RetentionPrefix, e.opts.Correlator, index, e.opts.Tolerance)
	log.Info("postings indexed", "origens", len(pools), "retencoes", retention.Candidates())

	r := &runState{
		plan:      plan,
		pools:     pools,
		matcher:   NewMatcher(index, e.opts.Tolerance),
		retention: retention,
		result:    &model.Result{Divergences: []model.Divergence{}, Notes: []model.MatchedNote{}},
		log:       log,
	}

	for _, doc := range l.entradas {
		r.document(Document{Direction: model.DirectionEntrada, FiscalDocument: doc}, e.opts.EntradaOrigin)
	}
	for _, doc := range l.saidas {
		r.document(Document{Direction: model.DirectionSaida, FiscalDocument: doc}, e.opts.SaidaOrigin)
	}

	res := r.result
	res.TotalEntradas = len(l.entradas)
	res.TotalSaidas = len(l.saidas)
	res.DivergenceCount = len(res.Divergences)

	log.Info("reconciliation finished",
		"cfops_entrada", res.TotalCFOPsEntrada, "cfops_saida", res.TotalCFOPsSaida,
		"conferidos", res.CFOPsEntradaConferidos+res.CFOPsSaidaConferidos,
		"divergencias", res.DivergenceCount, "lancamentos_baixados", r.claimed)
	return res, nil
}

func (e *Engine) loadPlanAndChart(ctx context.Context, p Params) (*model.MappingPlan, []model.Account, error) {
	var plan *model.MappingPlan
	var chart []model.Account

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		plan, err = e.src.Plans.FetchPlanWithItems(gctx, p.PlanID)
		if err != nil {
			return fmt.Errorf("loading plan %d: %w", p.PlanID, err)
		}
		if plan == nil {
			return fmt.Errorf("plan %d: %w", p.PlanID, ErrPlanNotFound)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		chart, err = e.src.Charts.FetchAccounts(gctx, p.CompanyID)
		if err != nil {
			return fmt.Errorf("loading chart of accounts: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return plan, chart, nil
}

func (e *Engine) loadLedgers(ctx context.Context, p Params) (ledgers, error) {
	var l ledgers

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		l.entradas, err = e.src.Fiscal.FetchEntradas(gctx, p.CompanyID, p.Start, p.End)
		if err != nil {
			return fmt.Errorf("loading entradas: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		l.saidas, err = e.src.Fiscal.FetchSaidas(gctx, p.CompanyID, p.Start, p.End)
		if err != nil {
			return fmt.Errorf("loading saidas: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		l.postings, err = e.src.Accounting.FetchPostings(gctx, p.CompanyID, p.Start, p.End, "")
		if err != nil {
			return fmt.Errorf("loading accounting postings: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return ledgers{}, err
	}
	return l, nil
}

// indexPostings buckets postings by parsed origin key. Postings without a
// parsable key are left out of every bucket.
func (e *Engine) indexPostings(postings []model.Posting, log *slog.Logger) map[id.OriginKey][]model.Posting {
	pools := make(map[id.OriginKey][]model.Posting)
	for _, p := range postings {
		key, err := id.ParseOriginKey(p.OriginKey)
		if err != nil {
			log.Debug("posting skipped", "chave", p.Key, "chave_origem", p.OriginKey, "error", err)
			continue
		}
		pools[key] = append(pools[key], p)
	}
	return pools
}

// runState accumulates one Run's result across documents.
type runState struct {
	plan      *model.MappingPlan
	pools     map[id.OriginKey][]model.Posting
	matcher   *Matcher
	retention *RetentionReconciler
	result    *model.Result
	log       *slog.Logger
	claimed   int
}

func (r *runState) document(doc Document, originCode string) {
	pool := NewPool(r.pools[id.OriginKey{Code: originCode, Key: doc.Key}])
	out := ReconcileDocument(doc, r.plan, r.matcher, r.retention, pool)

	claimed := pool.ClaimedKeys()
	r.claimed += len(claimed)
	r.log.Debug("document reconciled", "direcao", doc.Direction, "chave", doc.Key,
		"linhas_padrao", out.StandardLines, "lancamentos", claimed)

	res := r.result
	switch doc.Direction {
	case model.DirectionEntrada:
		res.TotalCFOPsEntrada += len(doc.Lines)
		res.CFOPsEntradaConferidos += len(out.Notes)
	case model.DirectionSaida:
		res.TotalCFOPsSaida += len(doc.Lines)
		res.CFOPsSaidaConferidos += len(out.Notes)
	}
	res.Notes = append(res.Notes, out.Notes...)
	res.Divergences = append(res.Divergences, out.Divergences...)
}

// ReconcileDocument runs grouping, standard matching and retention checks for
// one document. Every CFOP line yields exactly one note or one divergence.
func ReconcileDocument(doc Document, plan *model.MappingPlan, m *Matcher, ret *RetentionReconciler, pool *Pool) Outcome {
	part := PartitionLines(doc.Lines, plan)

	var out Outcome
	for _, line := range part.Unconfigured {
		d := baseDivergence(doc, line, model.KindUnconfigured)
		d.Description = fmt.Sprintf("CFOP %d da NF %d não configurado no plano de contabilização", line.CFOP, doc.InvoiceNumber)
		out.Divergences = append(out.Divergences, d)
	}
	for _, rl := range part.NonPosting {
		out.Notes = append(out.Notes, model.MatchedNote{
			InvoiceNumber: doc.InvoiceNumber,
			Direction:     doc.Direction,
			CFOP:          rl.Line.CFOP,
			FiscalKey:     doc.Key,
			FiscalValue:   rl.Line.TaxableValue,
			Treatment:     model.TreatmentNonPosting,
		})
	}
	out.merge(ret.Reconcile(doc, part.Retained))
	out.merge(m.Match(doc, part.Groups, pool))
	out.StandardLines = part.StandardLines()
	return out
}
