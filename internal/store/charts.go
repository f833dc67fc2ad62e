package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cleared-dev/conferencia/internal/model"
)

// SaveAccounts replaces the chart of accounts of a company.
func (s *Store) SaveAccounts(ctx context.Context, companyID int, accounts []model.Account) error {
	return s.tx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM contas WHERE empresa = ?`, companyID); err != nil {
			return fmt.Errorf("clearing chart: %w", err)
		}
		stmt, err := tx.PrepareContext(ctx,
			`INSERT OR REPLACE INTO contas (empresa, conta, classificacao, descricao) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("preparing insert: %w", err)
		}
		defer stmt.Close()

		for _, a := range accounts {
			if _, err := stmt.ExecContext(ctx, companyID, a.ID, a.Classification, a.Description); err != nil {
				return fmt.Errorf("inserting account %d: %w", a.ID, err)
			}
		}
		return nil
	})
}

// FetchAccounts returns a company's chart ordered by classification.
// Accounts without a classification are skipped.
func (s *Store) FetchAccounts(ctx context.Context, companyID int) ([]model.Account, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT conta, classificacao, descricao FROM contas WHERE empresa = ? ORDER BY classificacao, conta`,
		companyID)
	if err != nil {
		return nil, fmt.Errorf("querying chart: %w", err)
	}
	defer rows.Close()

	var accounts []model.Account
	for rows.Next() {
		var (
			a     model.Account
			class sql.NullString
		)
		if err := rows.Scan(&a.ID, &class, &a.Description); err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}
		if !class.Valid {
			s.logger.Warn("account skipped", "empresa", companyID, "conta", a.ID, "reason", "missing classificacao")
			continue
		}
		a.Classification = class.String
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading chart: %w", err)
	}
	return accounts, nil
}

// Companies lists the companies that have a chart of accounts.
func (s *Store) Companies(ctx context.Context) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT empresa FROM contas ORDER BY empresa`)
	if err != nil {
		return nil, fmt.Errorf("querying companies: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning company: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
