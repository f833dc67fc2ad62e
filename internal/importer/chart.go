package importer

import (
	"bytes"
	"fmt"
	"io"

	"github.com/cleared-dev/conferencia/internal/accounts"
)

// ChartLoader reads a chart-of-accounts CSV (conta, classificacao, descricao).
type ChartLoader struct{}

// Kind returns the loader name.
func (l *ChartLoader) Kind() string { return KindChart }

// Load parses the chart.
func (l *ChartLoader) Load(r io.Reader) (*Batch, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading chart: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\ufeff"))

	accts, err := accounts.ReadAccounts(bytes.NewReader(data), DetectComma(data))
	if err != nil {
		return nil, err
	}
	return &Batch{Kind: KindChart, Accounts: accts}, nil
}
