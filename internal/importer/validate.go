package importer

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/conferencia/internal/model"
)

// Validation rules checked before a batch is saved.
const (
	RuleUnknownAccount = "conta_inexistente"
	RuleNoAccount      = "sem_conta"
	RuleAmount         = "valor_invalido"
	RuleDuplicateKey   = "chave_duplicada"
	RuleNoLines        = "sem_cfop"
)

// ValidationError describes a single problem found in imported data.
type ValidationError struct {
	Rule        string
	Key         string
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s [%s]: %s", e.Rule, e.Key, e.Description)
}

// AccountChecker tests whether an account ID exists in the chart of accounts.
type AccountChecker interface {
	Exists(id int) bool
}

// Validate checks a batch. Account references are only checked when
// accounts is non-nil.
func (b *Batch) Validate(accounts AccountChecker) []ValidationError {
	switch b.Kind {
	case KindPlan:
		if b.Plan == nil {
			return nil
		}
		return ValidatePlan(b.Plan, accounts)
	case KindEntradas, KindSaidas:
		return ValidateDocuments(b.Documents)
	case KindLancamentos:
		return ValidatePostings(b.Postings, accounts)
	}
	return nil
}

// ValidatePostings checks keys, amounts and account references.
func ValidatePostings(postings []model.Posting, accounts AccountChecker) []ValidationError {
	var errs []ValidationError
	seen := make(map[int]bool, len(postings))

	for _, p := range postings {
		key := strconv.Itoa(p.Key)
		if seen[p.Key] {
			errs = append(errs, ValidationError{RuleDuplicateKey, key, "chave repeated in file"})
		}
		seen[p.Key] = true

		if p.DebitAccount == 0 && p.CreditAccount == 0 {
			errs = append(errs, ValidationError{RuleNoAccount, key, "posting has neither debit nor credit account"})
		}
		for _, acct := range []int{p.DebitAccount, p.CreditAccount} {
			if acct != 0 && accounts != nil && !accounts.Exists(acct) {
				errs = append(errs, ValidationError{RuleUnknownAccount, key, fmt.Sprintf("unknown account %d", acct)})
			}
		}
		if err := checkAmount(p.Value); err != "" {
			errs = append(errs, ValidationError{RuleAmount, key, err})
		}
	}
	return errs
}

// ValidateDocuments checks that each document has lines with sane amounts.
func ValidateDocuments(docs []model.FiscalDocument) []ValidationError {
	var errs []ValidationError
	for _, d := range docs {
		key := strconv.Itoa(d.Key)
		if len(d.Lines) == 0 {
			errs = append(errs, ValidationError{RuleNoLines, key, "document has no CFOP lines"})
		}
		for _, l := range d.Lines {
			if err := checkAmount(l.TaxableValue); err != "" {
				errs = append(errs, ValidationError{RuleAmount, key, fmt.Sprintf("cfop %d: %s", l.CFOP, err)})
			}
		}
	}
	return errs
}

// ValidatePlan checks that every account a plan item names is in the chart.
func ValidatePlan(plan *model.MappingPlan, accounts AccountChecker) []ValidationError {
	if accounts == nil {
		return nil
	}
	var errs []ValidationError
	for _, it := range plan.Items {
		r := it.Retention
		for _, acct := range []int{it.DebitAccount, it.CreditAccount, r.INSS, r.ISSQN, r.IRPJ, r.CSLL, r.IRRF, r.PIS, r.COFINS} {
			if acct != 0 && !accounts.Exists(acct) {
				errs = append(errs, ValidationError{RuleUnknownAccount, "cfop " + it.CFOP, fmt.Sprintf("unknown account %d", acct)})
			}
		}
	}
	return errs
}

var hundred = decimal.NewFromInt(100)

// checkAmount returns a description of what is wrong with v, or "".
func checkAmount(v decimal.Decimal) string {
	if v.IsNegative() {
		return fmt.Sprintf("negative amount %s", v)
	}
	if !v.Mul(hundred).Equal(v.Mul(hundred).Floor()) {
		return fmt.Sprintf("amount %s has more than 2 decimal places", v)
	}
	return ""
}
