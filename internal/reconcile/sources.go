package reconcile

import (
	"context"
	"errors"
	"time"

	"github.com/cleared-dev/conferencia/internal/model"
)

var (
	// ErrPlanNotFound is returned when the mapping plan id does not resolve.
	ErrPlanNotFound = errors.New("plano de contabilização não encontrado")

	// ErrInvalidPeriod is returned when the period ends before it starts.
	ErrInvalidPeriod = errors.New("invalid period")
)

// FiscalLedgerSource delivers fiscal documents with their CFOP lines joined.
type FiscalLedgerSource interface {
	FetchEntradas(ctx context.Context, companyID int, start, end time.Time) ([]model.FiscalDocument, error)
	FetchSaidas(ctx context.Context, companyID int, start, end time.Time) ([]model.FiscalDocument, error)
}

// AccountingLedgerSource delivers general-ledger postings. An empty
// originFilter returns postings of every origin.
type AccountingLedgerSource interface {
	FetchPostings(ctx context.Context, companyID int, start, end time.Time, originFilter string) ([]model.Posting, error)
}

// MappingPlanStore delivers a plan with its items, or nil when the plan does
// not exist.
type MappingPlanStore interface {
	FetchPlanWithItems(ctx context.Context, planID int) (*model.MappingPlan, error)
}

// ChartOfAccountsSource delivers a company's chart of accounts.
type ChartOfAccountsSource interface {
	FetchAccounts(ctx context.Context, companyID int) ([]model.Account, error)
}

// Sources groups the collaborators the engine reads from.
type Sources struct {
	Fiscal     FiscalLedgerSource
	Accounting AccountingLedgerSource
	Plans      MappingPlanStore
	Charts     ChartOfAccountsSource
}
