package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction tells whether a fiscal document is incoming or outgoing.
type Direction string

const (
	DirectionEntrada Direction = "ENTRADA"
	DirectionSaida   Direction = "SAIDA"
)

// CFOPLine is one tax-classification line of a fiscal document.
type CFOPLine struct {
	CFOP         int             `json:"cfop"`
	TaxableValue decimal.Decimal `json:"valor"`
}

// FiscalDocument is an invoice-level record with its CFOP lines.
type FiscalDocument struct {
	Key           int             `json:"chave"` // unique per direction
	InvoiceNumber int             `json:"numeroNf"`
	IssueDate     time.Time       `json:"data"`
	TotalValue    decimal.Decimal `json:"valorContabil"`
	Lines         []CFOPLine      `json:"cfops"`
}

// Posting is a general-ledger entry.
type Posting struct {
	Key           int             `json:"chave"`
	Date          time.Time       `json:"data"`
	DebitAccount  int             `json:"contaDebito"`  // 0 = empty leg
	CreditAccount int             `json:"contaCredito"` // 0 = empty leg
	Value         decimal.Decimal `json:"valor"`
	OriginKey     string          `json:"chaveOrigem"`
	FreeText      string          `json:"historico"`
}
