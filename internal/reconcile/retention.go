package reconcile

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/conferencia/internal/accounts"
	"github.com/cleared-dev/conferencia/internal/id"
	"github.com/cleared-dev/conferencia/internal/model"
)

// RetentionReconciler confirms retained CFOPs against a gross leg (debit
// only) and a net leg (credit only, smaller than the gross value).
type RetentionReconciler struct {
	candidates []model.Posting
	correlator Correlator
	index      accounts.Index
	tolerance  decimal.Decimal
}

// NewRetentionReconciler keeps the postings whose origin key starts with
// prefix. Postings are read, never claimed.
func NewRetentionReconciler(postings []model.Posting, prefix string, correlator Correlator, index accounts.Index, tolerance decimal.Decimal) *RetentionReconciler {
	var candidates []model.Posting
	for _, p := range postings {
		if id.HasOriginCode(p.OriginKey, prefix) {
			candidates = append(candidates, p)
		}
	}
	return &RetentionReconciler{
		candidates: candidates,
		correlator: correlator,
		index:      index,
		tolerance:  tolerance,
	}
}

// Candidates returns the number of retention postings under consideration.
func (r *RetentionReconciler) Candidates() int {
	return len(r.candidates)
}

// Reconcile checks each retained line of a document.
func (r *RetentionReconciler) Reconcile(doc Document, lines []RuledLine) Outcome {
	var out Outcome
	if len(lines) == 0 {
		return out
	}

	var related []model.Posting
	for _, p := range r.candidates {
		if r.correlator.Correlates(p, doc.InvoiceNumber) {
			related = append(related, p)
		}
	}

	for _, rl := range lines {
		gross, hasGross := r.findGross(related, rl)
		var net model.Posting
		hasNet := false
		if hasGross {
			net, hasNet = r.findNet(related, rl, gross.Value)
		}

		if hasGross && hasNet {
			out.Notes = append(out.Notes, model.MatchedNote{
				InvoiceNumber:    doc.InvoiceNumber,
				Direction:        doc.Direction,
				CFOP:             rl.Line.CFOP,
				FiscalKey:        doc.Key,
				AccountingKey:    gross.Key,
				FiscalValue:      rl.Line.TaxableValue,
				GroupValue:       decimal.NewNullDecimal(rl.Line.TaxableValue),
				AccountingValue:  decimal.NewNullDecimal(gross.Value),
				DebitAccount:     gross.DebitAccount,
				CreditAccount:    net.CreditAccount,
				Treatment:        model.TreatmentRetained,
				NetAccountingKey: net.Key,
				RetainedValue:    decimal.NewNullDecimal(gross.Value.Sub(net.Value)),
			})
			continue
		}
		out.Divergences = append(out.Divergences, r.missingLeg(doc, rl, gross, hasGross))
	}
	return out
}

func (r *RetentionReconciler) findGross(related []model.Posting, rl RuledLine) (model.Posting, bool) {
	for _, p := range related {
		if p.CreditAccount == 0 &&
			r.index.Satisfies(p.DebitAccount, rl.Rule.DebitAccount) &&
			withinTolerance(p.Value, rl.Line.TaxableValue, r.tolerance) {
			return p, true
		}
	}
	return model.Posting{}, false
}

func (r *RetentionReconciler) findNet(related []model.Posting, rl RuledLine, gross decimal.Decimal) (model.Posting, bool) {
	for _, p := range related {
		if p.DebitAccount == 0 &&
			r.index.Satisfies(p.CreditAccount, rl.Rule.CreditAccount) &&
			p.Value.LessThan(gross) {
			return p, true
		}
	}
	return model.Posting{}, false
}

func (r *RetentionReconciler) missingLeg(doc Document, rl RuledLine, gross model.Posting, hasGross bool) model.Divergence {
	d := baseDivergence(doc, rl.Line, model.KindValueMismatch)
	d.ExpectedDebitAccount = rl.Rule.DebitAccount
	d.ExpectedCreditAccount = rl.Rule.CreditAccount
	d.ExpectedDebitClassification = r.index.Label(rl.Rule.DebitAccount)
	d.ExpectedCreditClassification = r.index.Label(rl.Rule.CreditAccount)

	missing := "lançamento bruto (débito) e líquido (crédito)"
	if hasGross {
		d.AccountingKey = gross.Key
		d.AccountingValue = decimal.NewNullDecimal(gross.Value)
		d.DebitAccount = gross.DebitAccount
		d.DebitClassification = r.index.Label(gross.DebitAccount)
		missing = "lançamento líquido (crédito)"
	}
	d.Description = fmt.Sprintf("CFOP retido %d na NF %d: esperado bruto R$ %s a débito de %s e líquido menor a crédito de %s; ausente: %s",
		rl.Line.CFOP, doc.InvoiceNumber, rl.Line.TaxableValue.StringFixed(2),
		d.ExpectedDebitClassification, d.ExpectedCreditClassification, missing)
	return d
}
