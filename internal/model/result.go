package model

import "github.com/shopspring/decimal"

// DivergenceKind classifies a divergence.
type DivergenceKind string

const (
	KindNotFound      DivergenceKind = "NAO_ENCONTRADO_CONTABIL"
	KindValueMismatch DivergenceKind = "VALOR_DIVERGENTE"
	KindWrongAccount  DivergenceKind = "CONTA_INCORRETA"
	KindUnconfigured  DivergenceKind = "CFOP_NAO_CONFIGURADO"
)

// Treatment records how a matched CFOP line was confirmed.
type Treatment string

const (
	TreatmentPosted     Treatment = "CONTABILIZADO"
	TreatmentNonPosting Treatment = "NAO_CONTABILIZA"
	TreatmentRetained   Treatment = "RETIDO"
)

// Divergence describes one CFOP line that could not be confirmed.
type Divergence struct {
	Kind          DivergenceKind      `json:"tipo"`
	InvoiceNumber int                 `json:"numeroNf"`
	Direction     Direction           `json:"tipoLancamento"`
	CFOP          int                 `json:"cfop"`
	FiscalKey     int                 `json:"chaveFiscal"`
	FiscalValue   decimal.Decimal     `json:"valorFiscal"`
	GroupValue    decimal.NullDecimal `json:"valorGrupo"`

	AccountingKey   int                 `json:"chaveContabil,omitempty"`
	AccountingValue decimal.NullDecimal `json:"valorContabil"`
	DebitAccount    int                 `json:"contaDebito,omitempty"`
	CreditAccount   int                 `json:"contaCredito,omitempty"`

	ExpectedDebitAccount  int `json:"contaDebitoEsperada,omitempty"`
	ExpectedCreditAccount int `json:"contaCreditoEsperada,omitempty"`

	DebitClassification          string `json:"classificacaoDebito,omitempty"`
	CreditClassification         string `json:"classificacaoCredito,omitempty"`
	ExpectedDebitClassification  string `json:"classificacaoDebitoEsperada,omitempty"`
	ExpectedCreditClassification string `json:"classificacaoCreditoEsperada,omitempty"`

	Description string `json:"descricao"`
}

// Difference returns |fiscal - accounting|, or the fiscal value when there is
// no accounting side.
func (d Divergence) Difference() decimal.Decimal {
	if !d.AccountingValue.Valid {
		return d.FiscalValue.Abs()
	}
	return d.FiscalValue.Sub(d.AccountingValue.Decimal).Abs()
}

// MatchedNote is a confirmed CFOP line.
type MatchedNote struct {
	InvoiceNumber   int                 `json:"numeroNf"`
	Direction       Direction           `json:"tipoLancamento"`
	CFOP            int                 `json:"cfop"`
	FiscalKey       int                 `json:"chaveFiscal"`
	AccountingKey   int                 `json:"chaveContabil,omitempty"` // 0 for non-posting CFOPs
	FiscalValue     decimal.Decimal     `json:"valorFiscal"`
	GroupValue      decimal.NullDecimal `json:"valorGrupo"`    // fiscal total compared with the posting
	AccountingValue decimal.NullDecimal `json:"valorContabil"` // null for non-posting CFOPs
	DebitAccount    int                 `json:"contaDebito,omitempty"`
	CreditAccount   int                 `json:"contaCredito,omitempty"`
	Treatment       Treatment           `json:"tratamento"`

	// Set for retained CFOPs only.
	NetAccountingKey int                 `json:"chaveContabilLiquido,omitempty"`
	RetainedValue    decimal.NullDecimal `json:"valorRetido"`
}

// Difference returns |group - accounting|. Lines that share a posting are
// compared through their group total, not their own value. It is null when
// the note has no accounting side.
func (n MatchedNote) Difference() decimal.NullDecimal {
	if !n.AccountingValue.Valid {
		return decimal.NullDecimal{}
	}
	fiscal := n.FiscalValue
	if n.GroupValue.Valid {
		fiscal = n.GroupValue.Decimal
	}
	return decimal.NewNullDecimal(fiscal.Sub(n.AccountingValue.Decimal).Abs())
}

// Result is the outcome of one reconciliation run.
type Result struct {
	TotalEntradas          int           `json:"totalEntradas"`
	TotalSaidas            int           `json:"totalSaidas"`
	TotalCFOPsEntrada      int           `json:"totalCFOPsEntrada"`
	TotalCFOPsSaida        int           `json:"totalCFOPsSaida"`
	CFOPsEntradaConferidos int           `json:"cfopsEntradasConferidos"`
	CFOPsSaidaConferidos   int           `json:"cfopsSaidasConferidos"`
	DivergenceCount        int           `json:"divergenciasEncontradas"`
	Divergences            []Divergence  `json:"divergencias"`
	Notes                  []MatchedNote `json:"notasCorretas"`
}
