package reconcile

import (
	"github.com/cleared-dev/conferencia/internal/id"
	"github.com/cleared-dev/conferencia/internal/model"
)

// Correlator decides whether a retention posting belongs to an invoice.
type Correlator interface {
	Correlates(p model.Posting, invoiceNumber int) bool
}

// CorrelatorFunc adapts a function to Correlator.
type CorrelatorFunc func(p model.Posting, invoiceNumber int) bool

// Correlates calls f.
func (f CorrelatorFunc) Correlates(p model.Posting, invoiceNumber int) bool {
	return f(p, invoiceNumber)
}

// NFTextCorrelator matches postings whose history cites "NF <number>".
type NFTextCorrelator struct{}

// Correlates reports whether the posting's free text references the invoice.
func (NFTextCorrelator) Correlates(p model.Posting, invoiceNumber int) bool {
	return id.ReferencesInvoice(p.FreeText, invoiceNumber)
}
