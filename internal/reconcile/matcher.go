package reconcile

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/conferencia/internal/accounts"
	"github.com/cleared-dev/conferencia/internal/model"
)

// Document is a fiscal document tagged with its direction.
type Document struct {
	Direction model.Direction
	model.FiscalDocument
}

// Outcome collects what reconciling part of a document produced.
type Outcome struct {
	Notes       []model.MatchedNote
	Divergences []model.Divergence

	StandardLines int // lines routed to standard matching
}

func (o *Outcome) merge(other Outcome) {
	o.Notes = append(o.Notes, other.Notes...)
	o.Divergences = append(o.Divergences, other.Divergences...)
}

// Matcher pairs standard CFOP groups with accounting postings.
type Matcher struct {
	index     accounts.Index
	tolerance decimal.Decimal
}

// NewMatcher creates a Matcher over a classification index.
func NewMatcher(index accounts.Index, tolerance decimal.Decimal) *Matcher {
	return &Matcher{index: index, tolerance: tolerance}
}

// Match resolves each group against the document's pool in order. A posting
// that matches a group is claimed and unavailable to later groups.
func (m *Matcher) Match(doc Document, groups []*Group, pool *Pool) Outcome {
	var out Outcome
	if len(groups) == 0 {
		return out
	}

	if pool.Len() == 0 {
		for _, g := range groups {
			for _, line := range g.Lines {
				out.Divergences = append(out.Divergences, m.notFound(doc, g, line))
			}
		}
		return out
	}

	for _, g := range groups {
		out.merge(m.matchGroup(doc, g, pool))
	}
	return out
}

func (m *Matcher) matchGroup(doc Document, g *Group, pool *Pool) Outcome {
	var out Outcome

	sameValue := func(p model.Posting) bool {
		return withinTolerance(g.Total, p.Value, m.tolerance)
	}

	if i, ok := pool.Find(func(p model.Posting) bool {
		return sameValue(p) &&
			m.index.Satisfies(p.DebitAccount, g.DebitAccount) &&
			m.index.Satisfies(p.CreditAccount, g.CreditAccount)
	}); ok {
		post := pool.Claim(i)
		for _, line := range g.Lines {
			out.Notes = append(out.Notes, model.MatchedNote{
				InvoiceNumber:   doc.InvoiceNumber,
				Direction:       doc.Direction,
				CFOP:            line.CFOP,
				FiscalKey:       doc.Key,
				AccountingKey:   post.Key,
				FiscalValue:     line.TaxableValue,
				GroupValue:      decimal.NewNullDecimal(g.Total),
				AccountingValue: decimal.NewNullDecimal(post.Value),
				DebitAccount:    post.DebitAccount,
				CreditAccount:   post.CreditAccount,
				Treatment:       model.TreatmentPosted,
			})
		}
		return out
	}

	if i, ok := pool.Find(sameValue); ok {
		post := pool.Get(i)
		for _, line := range g.Lines {
			out.Divergences = append(out.Divergences, m.wrongAccount(doc, g, line, post))
		}
		return out
	}

	if first, ok := pool.First(); ok {
		for _, line := range g.Lines {
			out.Divergences = append(out.Divergences, m.valueMismatch(doc, g, line, first))
		}
		return out
	}

	for _, line := range g.Lines {
		out.Divergences = append(out.Divergences, m.notFound(doc, g, line))
	}
	return out
}

func baseDivergence(doc Document, line model.CFOPLine, kind model.DivergenceKind) model.Divergence {
	return model.Divergence{
		Kind:          kind,
		InvoiceNumber: doc.InvoiceNumber,
		Direction:     doc.Direction,
		CFOP:          line.CFOP,
		FiscalKey:     doc.Key,
		FiscalValue:   line.TaxableValue,
	}
}

func (m *Matcher) expect(d *model.Divergence, debit, credit int) {
	d.ExpectedDebitAccount = debit
	d.ExpectedCreditAccount = credit
	d.ExpectedDebitClassification = m.index.Label(debit)
	d.ExpectedCreditClassification = m.index.Label(credit)
}

func (m *Matcher) actual(d *model.Divergence, p model.Posting) {
	d.AccountingKey = p.Key
	d.AccountingValue = decimal.NewNullDecimal(p.Value)
	d.DebitAccount = p.DebitAccount
	d.CreditAccount = p.CreditAccount
	d.DebitClassification = m.index.Label(p.DebitAccount)
	d.CreditClassification = m.index.Label(p.CreditAccount)
}

func (m *Matcher) notFound(doc Document, g *Group, line model.CFOPLine) model.Divergence {
	d := baseDivergence(doc, line, model.KindNotFound)
	d.GroupValue = decimal.NewNullDecimal(g.Total)
	m.expect(&d, g.DebitAccount, g.CreditAccount)
	d.Description = fmt.Sprintf("Nota fiscal %d CFOP %d não encontrada nos lançamentos contábeis", doc.InvoiceNumber, line.CFOP)
	return d
}

func (m *Matcher) wrongAccount(doc Document, g *Group, line model.CFOPLine, p model.Posting) model.Divergence {
	d := baseDivergence(doc, line, model.KindWrongAccount)
	d.GroupValue = decimal.NewNullDecimal(g.Total)
	m.expect(&d, g.DebitAccount, g.CreditAccount)
	m.actual(&d, p)
	d.Description = fmt.Sprintf("Conta incorreta na NF %d CFOP %d: esperado D %s / C %s, lançado D %s / C %s",
		doc.InvoiceNumber, line.CFOP,
		d.ExpectedDebitClassification, d.ExpectedCreditClassification,
		d.DebitClassification, d.CreditClassification)
	return d
}

func (m *Matcher) valueMismatch(doc Document, g *Group, line model.CFOPLine, p model.Posting) model.Divergence {
	d := baseDivergence(doc, line, model.KindValueMismatch)
	d.GroupValue = decimal.NewNullDecimal(g.Total)
	m.expect(&d, g.DebitAccount, g.CreditAccount)
	m.actual(&d, p)
	d.Description = fmt.Sprintf("Divergência de valor na NF %d CFOP %d: Fiscal R$ %s vs Contábil R$ %s",
		doc.InvoiceNumber, line.CFOP, g.Total.StringFixed(2), p.Value.StringFixed(2))
	return d
}
