package reconcile

import "github.com/shopspring/decimal"

// Options tunes matching.
type Options struct {
	// Tolerance is the largest accepted |fiscal - accounting| difference.
	Tolerance decimal.Decimal
	// EntradaOrigin and SaidaOrigin are the origin codes under which postings
	// generated from incoming and outgoing documents are filed.
	EntradaOrigin string
	SaidaOrigin   string
	// RetentionPrefix marks postings that carry retained-tax legs.
	RetentionPrefix string
	// Correlator ties retention postings to an invoice. Defaults to NFTextCorrelator.
	Correlator Correlator
}

// DefaultOptions returns the standard matching options.
func DefaultOptions() Options {
	return Options{
		Tolerance:       decimal.New(1, -2),
		EntradaOrigin:   "FE",
		SaidaOrigin:     "FS",
		RetentionPrefix: "RE",
		Correlator:      NFTextCorrelator{},
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Tolerance.IsZero() {
		o.Tolerance = d.Tolerance
	}
	if o.EntradaOrigin == "" {
		o.EntradaOrigin = d.EntradaOrigin
	}
	if o.SaidaOrigin == "" {
		o.SaidaOrigin = d.SaidaOrigin
	}
	if o.RetentionPrefix == "" {
		o.RetentionPrefix = d.RetentionPrefix
	}
	if o.Correlator == nil {
		o.Correlator = d.Correlator
	}
	return o
}

func withinTolerance(a, b, tol decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(tol)
}
