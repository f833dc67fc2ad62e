package importer

import (
	"fmt"
	"io"

	"github.com/cleared-dev/conferencia/internal/model"
)

const (
	colDebit    = "conta_debito"
	colCredit   = "conta_credito"
	colValue    = "valor"
	colOrigin   = "chave_origem"
	colFreeText = "historico"
)

// PostingLoader reads accounting postings. An empty account column is an
// empty leg.
type PostingLoader struct{}

// Kind returns the loader name.
func (l *PostingLoader) Kind() string { return KindLancamentos }

// Load parses the postings.
func (l *PostingLoader) Load(r io.Reader) (*Batch, error) {
	t, err := readTable(r, colKey, colDate, colDebit, colCredit, colValue, colOrigin)
	if err != nil {
		return nil, err
	}

	postings := make([]model.Posting, 0, len(t.rows))
	for i, row := range t.rows {
		p, err := l.posting(t, row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		postings = append(postings, p)
	}
	return &Batch{Kind: KindLancamentos, Postings: postings}, nil
}

func (l *PostingLoader) posting(t *table, row []string) (model.Posting, error) {
	var (
		p   model.Posting
		err error
	)
	if p.Key, err = parseInt(t.get(row, colKey), colKey); err != nil {
		return p, err
	}
	if p.Date, err = parseDate(t.get(row, colDate), colDate); err != nil {
		return p, err
	}
	if p.DebitAccount, err = parseAccount(t.get(row, colDebit), colDebit); err != nil {
		return p, err
	}
	if p.CreditAccount, err = parseAccount(t.get(row, colCredit), colCredit); err != nil {
		return p, err
	}
	if p.Value, err = parseAmount(t.get(row, colValue), colValue); err != nil {
		return p, err
	}
	p.OriginKey = t.get(row, colOrigin)
	p.FreeText = t.get(row, colFreeText)
	return p, nil
}
