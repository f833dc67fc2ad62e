package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cleared-dev/conferencia/internal/model"
)

// SavePlan creates or replaces a mapping plan and all of its items.
func (s *Store) SavePlan(ctx context.Context, plan *model.MappingPlan) error {
	return s.tx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO planos (id, nome) VALUES (?, ?) ON CONFLICT(id) DO UPDATE SET nome = excluded.nome`,
			plan.ID, plan.Name); err != nil {
			return fmt.Errorf("saving plan %d: %w", plan.ID, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM plano_itens WHERE plano_id = ?`, plan.ID); err != nil {
			return fmt.Errorf("clearing items of plan %d: %w", plan.ID, err)
		}

		stmt, err := tx.PrepareContext(ctx, `INSERT INTO plano_itens
			(plano_id, seq, cfop, conta_debito, conta_credito, contabiliza, retido,
			 conta_inss, conta_issqn, conta_irpj, conta_csll, conta_irrf, conta_pis, conta_cofins)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("preparing insert: %w", err)
		}
		defer stmt.Close()

		for i, it := range plan.Items {
			r := it.Retention
			if _, err := stmt.ExecContext(ctx, plan.ID, i, it.CFOP,
				nullAccount(it.DebitAccount), nullAccount(it.CreditAccount), it.Posts, it.Retained,
				nullAccount(r.INSS), nullAccount(r.ISSQN), nullAccount(r.IRPJ), nullAccount(r.CSLL),
				nullAccount(r.IRRF), nullAccount(r.PIS), nullAccount(r.COFINS)); err != nil {
				return fmt.Errorf("inserting item %s of plan %d: %w", it.CFOP, plan.ID, err)
			}
		}
		return nil
	})
}

// GetPlan returns a plan with its items, or ErrNotFound.
func (s *Store) GetPlan(ctx context.Context, planID int) (*model.MappingPlan, error) {
	var name string
	err := s.db.QueryRowContext(ctx, `SELECT nome FROM planos WHERE id = ?`, planID).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("plan %d: %w", planID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying plan %d: %w", planID, err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT cfop, conta_debito, conta_credito, contabiliza, retido,
			conta_inss, conta_issqn, conta_irpj, conta_csll, conta_irrf, conta_pis, conta_cofins
		FROM plano_itens WHERE plano_id = ? ORDER BY seq`, planID)
	if err != nil {
		return nil, fmt.Errorf("querying items of plan %d: %w", planID, err)
	}
	defer rows.Close()

	var items []model.MappingItem
	for rows.Next() {
		var (
			it                                         model.MappingItem
			debit, credit                              sql.NullInt64
			inss, issqn, irpj, csll, irrf, pis, cofins sql.NullInt64
		)
		if err := rows.Scan(&it.CFOP, &debit, &credit, &it.Posts, &it.Retained,
			&inss, &issqn, &irpj, &csll, &irrf, &pis, &cofins); err != nil {
			return nil, fmt.Errorf("scanning plan item: %w", err)
		}
		it.DebitAccount = int(debit.Int64)
		it.CreditAccount = int(credit.Int64)
		it.Retention = model.RetentionAccounts{
			INSS: int(inss.Int64), ISSQN: int(issqn.Int64), IRPJ: int(irpj.Int64), CSLL: int(csll.Int64),
			IRRF: int(irrf.Int64), PIS: int(pis.Int64), COFINS: int(cofins.Int64),
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading items of plan %d: %w", planID, err)
	}
	return model.NewMappingPlan(planID, name, items), nil
}

// FetchPlanWithItems returns nil when the plan does not exist.
func (s *Store) FetchPlanWithItems(ctx context.Context, planID int) (*model.MappingPlan, error) {
	plan, err := s.GetPlan(ctx, planID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return plan, err
}

// PlanSummary identifies a stored plan.
type PlanSummary struct {
	ID    int    `json:"id"`
	Name  string `json:"nome"`
	Items int    `json:"itens"`
}

// ListPlans returns every stored plan ordered by id.
func (s *Store) ListPlans(ctx context.Context) ([]PlanSummary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT p.id, p.nome, COUNT(i.seq)
		FROM planos p LEFT JOIN plano_itens i ON i.plano_id = p.id
		GROUP BY p.id, p.nome ORDER BY p.id`)
	if err != nil {
		return nil, fmt.Errorf("querying plans: %w", err)
	}
	defer rows.Close()

	var plans []PlanSummary
	for rows.Next() {
		var p PlanSummary
		if err := rows.Scan(&p.ID, &p.Name, &p.Items); err != nil {
			return nil, fmt.Errorf("scanning plan: %w", err)
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

// nullAccount stores the "no account" id 0 as NULL.
func nullAccount(id int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(id), Valid: id != 0}
}
