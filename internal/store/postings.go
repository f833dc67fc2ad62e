package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/conferencia/internal/model"
)

// SavePostings creates or replaces accounting postings.
func (s *Store) SavePostings(ctx context.Context, companyID int, postings []model.Posting) error {
	return s.tx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO lancamentos_contabeis
			(empresa, chave, data, conta_debito, conta_credito, valor, chave_origem, historico)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(empresa, chave) DO UPDATE SET
				data = excluded.data, conta_debito = excluded.conta_debito,
				conta_credito = excluded.conta_credito, valor = excluded.valor,
				chave_origem = excluded.chave_origem, historico = excluded.historico`)
		if err != nil {
			return fmt.Errorf("preparing insert: %w", err)
		}
		defer stmt.Close()

		for _, p := range postings {
			if _, err := stmt.ExecContext(ctx, companyID, p.Key, p.Date.Format(dateLayout),
				nullAccount(p.DebitAccount), nullAccount(p.CreditAccount), p.Value,
				p.OriginKey, p.FreeText); err != nil {
				return fmt.Errorf("saving posting %d: %w", p.Key, err)
			}
		}
		return nil
	})
}

// FetchPostings returns postings dated in [start, end]. A non-empty
// originFilter keeps only postings whose origin key starts with it.
func (s *Store) FetchPostings(ctx context.Context, companyID int, start, end time.Time, originFilter string) ([]model.Posting, error) {
	query := `SELECT chave, data, conta_debito, conta_credito, valor, chave_origem, historico
		FROM lancamentos_contabeis
		WHERE empresa = ? AND data BETWEEN ? AND ?`
	args := []any{companyID, start.Format(dateLayout), end.Format(dateLayout)}
	if originFilter != "" {
		query += ` AND UPPER(TRIM(chave_origem)) LIKE ?`
		args = append(args, strings.ToUpper(originFilter)+"%")
	}
	query += ` ORDER BY chave`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying postings: %w", err)
	}
	defer rows.Close()

	var postings []model.Posting
	for rows.Next() {
		var (
			p             model.Posting
			date          string
			debit, credit sql.NullInt64
			value         decimal.NullDecimal
		)
		if err := rows.Scan(&p.Key, &date, &debit, &credit, &value, &p.OriginKey, &p.FreeText); err != nil {
			return nil, fmt.Errorf("scanning posting: %w", err)
		}
		if !value.Valid {
			s.logger.Warn("posting skipped", "chave", p.Key, "reason", "missing valor")
			continue
		}
		p.Value = value.Decimal
		p.DebitAccount = int(debit.Int64)
		p.CreditAccount = int(credit.Int64)
		if p.Date, err = parseDate(date); err != nil {
			return nil, fmt.Errorf("posting %d: parsing date %q: %w", p.Key, date, err)
		}
		postings = append(postings, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading postings: %w", err)
	}
	return postings, nil
}
