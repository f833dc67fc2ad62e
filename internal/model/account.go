package model

import "strings"

// Account represents one row of a company's chart of accounts.
type Account struct {
	ID             int    `json:"conta"`
	Classification string `json:"classificacao"` // dot-separated, e.g. "1.1.002"
	Description    string `json:"descricao"`
}

// Level returns the number of dot-separated segments in the classification.
// An empty classification has level 0.
func (a Account) Level() int {
	c := strings.TrimSpace(a.Classification)
	if c == "" {
		return 0
	}
	return strings.Count(c, ".") + 1
}
