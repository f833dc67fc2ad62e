package importer

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/conferencia/internal/model"
)

const (
	colKey          = "chave"
	colInvoice      = "numero_nf"
	colDate         = "data"
	colTotal        = "valor_contabil"
	colCFOP         = "cfop"
	colTaxableValue = "valor_cfop"
)

// FiscalLoader reads fiscal documents, one row per CFOP line. Rows sharing a
// chave form one document in file order.
type FiscalLoader struct {
	Direction model.Direction
}

// Kind returns "entradas" or "saidas".
func (l *FiscalLoader) Kind() string {
	if l.Direction == model.DirectionEntrada {
		return KindEntradas
	}
	return KindSaidas
}

// Load parses the documents.
func (l *FiscalLoader) Load(r io.Reader) (*Batch, error) {
	t, err := readTable(r, colKey, colInvoice, colDate, colCFOP, colTaxableValue)
	if err != nil {
		return nil, err
	}

	var docs []model.FiscalDocument
	pos := make(map[int]int)
	hasTotal := make(map[int]bool)

	for i, row := range t.rows {
		line := i + 2
		key, err := parseInt(t.get(row, colKey), colKey)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}

		idx, seen := pos[key]
		if !seen {
			doc, total, err := l.document(t, row, key)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", line, err)
			}
			idx = len(docs)
			pos[key] = idx
			hasTotal[key] = total
			docs = append(docs, doc)
		}

		cfop, err := parseInt(t.get(row, colCFOP), colCFOP)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		value, err := parseAmount(t.get(row, colTaxableValue), colTaxableValue)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		d := &docs[idx]
		d.Lines = append(d.Lines, model.CFOPLine{CFOP: cfop, TaxableValue: value})
		if !hasTotal[key] {
			d.TotalValue = d.TotalValue.Add(value)
		}
	}
	return &Batch{Kind: l.Kind(), Direction: l.Direction, Documents: docs}, nil
}

// document builds the header of a document from its first row. The bool
// reports whether the row carried valor_contabil.
func (l *FiscalLoader) document(t *table, row []string, key int) (model.FiscalDocument, bool, error) {
	nf, err := parseInt(t.get(row, colInvoice), colInvoice)
	if err != nil {
		return model.FiscalDocument{}, false, err
	}
	date, err := parseDate(t.get(row, colDate), colDate)
	if err != nil {
		return model.FiscalDocument{}, false, err
	}
	doc := model.FiscalDocument{Key: key, InvoiceNumber: nf, IssueDate: date, TotalValue: decimal.Zero}

	raw := strings.TrimSpace(t.get(row, colTotal))
	if raw == "" {
		return doc, false, nil
	}
	if doc.TotalValue, err = parseAmount(raw, colTotal); err != nil {
		return model.FiscalDocument{}, false, err
	}
	return doc, true, nil
}
