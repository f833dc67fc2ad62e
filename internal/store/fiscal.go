package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/conferencia/internal/model"
)

// lineBatchSize caps the number of document keys per CFOP line query.
const lineBatchSize = 500

// SaveDocuments creates or replaces fiscal documents and their CFOP lines.
func (s *Store) SaveDocuments(ctx context.Context, companyID int, dir model.Direction, docs []model.FiscalDocument) error {
	return s.tx(ctx, func(tx *sql.Tx) error {
		docStmt, err := tx.PrepareContext(ctx, `INSERT INTO documentos_fiscais
			(empresa, tipo, chave, numero_nf, data, valor_contabil) VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(empresa, tipo, chave) DO UPDATE SET
				numero_nf = excluded.numero_nf, data = excluded.data, valor_contabil = excluded.valor_contabil`)
		if err != nil {
			return fmt.Errorf("preparing document insert: %w", err)
		}
		defer docStmt.Close()

		lineStmt, err := tx.PrepareContext(ctx, `INSERT INTO cfop_linhas
			(empresa, tipo, chave_documento, seq, cfop, valor) VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("preparing line insert: %w", err)
		}
		defer lineStmt.Close()

		for _, d := range docs {
			if _, err := docStmt.ExecContext(ctx, companyID, string(dir), d.Key, d.InvoiceNumber,
				d.IssueDate.Format(dateLayout), d.TotalValue); err != nil {
				return fmt.Errorf("saving document %d: %w", d.Key, err)
			}
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM cfop_linhas WHERE empresa = ? AND tipo = ? AND chave_documento = ?`,
				companyID, string(dir), d.Key); err != nil {
				return fmt.Errorf("clearing lines of document %d: %w", d.Key, err)
			}
			for i, l := range d.Lines {
				if _, err := lineStmt.ExecContext(ctx, companyID, string(dir), d.Key, i, l.CFOP, l.TaxableValue); err != nil {
					return fmt.Errorf("saving line %d of document %d: %w", i, d.Key, err)
				}
			}
		}
		return nil
	})
}

// FetchEntradas returns incoming documents issued in [start, end].
func (s *Store) FetchEntradas(ctx context.Context, companyID int, start, end time.Time) ([]model.FiscalDocument, error) {
	return s.fetchDocuments(ctx, companyID, model.DirectionEntrada, start, end)
}

// FetchSaidas returns outgoing documents issued in [start, end].
func (s *Store) FetchSaidas(ctx context.Context, companyID int, start, end time.Time) ([]model.FiscalDocument, error) {
	return s.fetchDocuments(ctx, companyID, model.DirectionSaida, start, end)
}

func (s *Store) fetchDocuments(ctx context.Context, companyID int, dir model.Direction, start, end time.Time) ([]model.FiscalDocument, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT chave, numero_nf, data, valor_contabil
		FROM documentos_fiscais
		WHERE empresa = ? AND tipo = ? AND data BETWEEN ? AND ?
		ORDER BY data, chave`,
		companyID, string(dir), start.Format(dateLayout), end.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("querying %s documents: %w", dir, err)
	}
	defer rows.Close()

	var docs []model.FiscalDocument
	for rows.Next() {
		var (
			d     model.FiscalDocument
			nf    sql.NullInt64
			date  string
			total decimal.NullDecimal
		)
		if err := rows.Scan(&d.Key, &nf, &date, &total); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		if !nf.Valid {
			s.logger.Warn("document skipped", "tipo", dir, "chave", d.Key, "reason", "missing numero_nf")
			continue
		}
		d.InvoiceNumber = int(nf.Int64)
		d.TotalValue = total.Decimal
		if d.IssueDate, err = parseDate(date); err != nil {
			return nil, fmt.Errorf("document %d: parsing date %q: %w", d.Key, date, err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading %s documents: %w", dir, err)
	}

	if err := s.attachLines(ctx, companyID, dir, docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// attachLines loads the CFOP lines of docs in batches of document keys.
func (s *Store) attachLines(ctx context.Context, companyID int, dir model.Direction, docs []model.FiscalDocument) error {
	pos := make(map[int]int, len(docs))
	for i, d := range docs {
		pos[d.Key] = i
	}

	for from := 0; from < len(docs); from += lineBatchSize {
		to := min(from+lineBatchSize, len(docs))
		args := []any{companyID, string(dir)}
		for _, d := range docs[from:to] {
			args = append(args, d.Key)
		}

		rows, err := s.db.QueryContext(ctx, `SELECT chave_documento, cfop, valor FROM cfop_linhas
			WHERE empresa = ? AND tipo = ? AND chave_documento IN (`+placeholders(to-from)+`)
			ORDER BY chave_documento, seq`, args...)
		if err != nil {
			return fmt.Errorf("querying cfop lines: %w", err)
		}
		if err := s.scanLines(rows, dir, docs, pos); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) scanLines(rows *sql.Rows, dir model.Direction, docs []model.FiscalDocument, pos map[int]int) error {
	defer rows.Close()
	for rows.Next() {
		var (
			key   int
			cfop  sql.NullInt64
			value decimal.NullDecimal
		)
		if err := rows.Scan(&key, &cfop, &value); err != nil {
			return fmt.Errorf("scanning cfop line: %w", err)
		}
		if !cfop.Valid || !value.Valid {
			s.logger.Warn("cfop line skipped", "tipo", dir, "chave", key, "reason", "missing cfop or valor")
			continue
		}
		i := pos[key]
		docs[i].Lines = append(docs[i].Lines, model.CFOPLine{CFOP: int(cfop.Int64), TaxableValue: value.Decimal})
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("reading cfop lines: %w", err)
	}
	return nil
}
