package accounts

import (
	"strconv"
	"strings"

	"github.com/cleared-dev/conferencia/internal/model"
)

// Index maps account ids to their trimmed classification strings.
type Index map[int]string

// NewIndex builds an Index, skipping accounts without a classification.
func NewIndex(accounts []model.Account) Index {
	idx := make(Index, len(accounts))
	for _, a := range accounts {
		c := strings.TrimSpace(a.Classification)
		if c != "" {
			idx[a.ID] = c
		}
	}
	return idx
}

// ClassificationOf returns the classification of an account.
func (idx Index) ClassificationOf(id int) (string, bool) {
	c, ok := idx[id]
	return c, ok
}

// Label returns the classification of an account, or its id when the account
// has none.
func (idx Index) Label(id int) string {
	if c, ok := idx[id]; ok {
		return c
	}
	if id == 0 {
		return ""
	}
	return "#" + strconv.Itoa(id)
}

// Satisfies reports whether a posting made to posted fulfils a rule that
// expects rule: the same account, or any strict descendant of it.
func (idx Index) Satisfies(posted, rule int) bool {
	if posted == rule {
		return true
	}
	cp, ok := idx[posted]
	if !ok {
		return false
	}
	cr, ok := idx[rule]
	if !ok {
		return false
	}
	cp = strings.TrimSpace(cp)
	cr = strings.TrimSpace(cr)
	return cp == cr || strings.HasPrefix(cp, cr+".")
}
