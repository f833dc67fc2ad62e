package accounts

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/conferencia/internal/model"
)

// Node is one account placed in the classification hierarchy.
type Node struct {
	model.Account
	Level    int             `json:"nivel"`
	Parent   string          `json:"pai,omitempty"` // parent classification, empty for roots
	Children []*Node         `json:"filhos"`
	Own      decimal.Decimal `json:"valor"`
	RolledUp decimal.Decimal `json:"valorTotal"`
}

// Tree is a chart of accounts resolved into a hierarchy.
type Tree struct {
	Roots            []*Node
	ByID             map[int]*Node
	ByClassification map[string]*Node
}

// Resolve builds the classification tree for a flat chart of accounts.
//
// Accounts are sorted by classification and each one is attached to its
// nearest existing ancestor: the last dot-separated segment is stripped until
// a classification present in the chart is found. "1.1.002.01" therefore hangs
// directly under "1.1" when "1.1.002" does not exist. Accounts with an empty
// classification, or with no existing ancestor, become roots. When two
// accounts share a classification the later one in sort order owns the
// ByClassification entry.
func Resolve(accounts []model.Account) *Tree {
	sorted := make([]model.Account, len(accounts))
	copy(sorted, accounts)
	for i := range sorted {
		sorted[i].Classification = strings.TrimSpace(sorted[i].Classification)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Classification < sorted[j].Classification
	})

	t := &Tree{
		ByID:             make(map[int]*Node, len(sorted)),
		ByClassification: make(map[string]*Node, len(sorted)),
	}

	nodes := make([]*Node, 0, len(sorted))
	for _, acct := range sorted {
		n := &Node{Account: acct, Level: acct.Level(), Children: []*Node{}}
		nodes = append(nodes, n)
		t.ByID[acct.ID] = n
		if acct.Classification != "" {
			t.ByClassification[acct.Classification] = n
		}
	}

	for _, n := range nodes {
		parent := t.nearestAncestor(n)
		if parent == nil {
			t.Roots = append(t.Roots, n)
			continue
		}
		n.Parent = parent.Classification
		parent.Children = append(parent.Children, n)
	}
	return t
}

func (t *Tree) nearestAncestor(n *Node) *Node {
	c := n.Classification
	for {
		i := strings.LastIndex(c, ".")
		if i < 0 {
			return nil
		}
		c = c[:i]
		if c == "" {
			continue
		}
		if p, ok := t.ByClassification[c]; ok && p.ID != n.ID {
			return p
		}
	}
}

// ResolveWithValues resolves the tree and fills each node's own value from
// values and its rolled-up value as own plus all descendants.
func ResolveWithValues(accounts []model.Account, values map[int]decimal.Decimal) *Tree {
	t := Resolve(accounts)
	for id, v := range values {
		if n, ok := t.ByID[id]; ok {
			n.Own = n.Own.Add(v)
		}
	}
	for _, r := range t.Roots {
		rollUp(r)
	}
	return t
}

func rollUp(n *Node) decimal.Decimal {
	total := n.Own
	for _, c := range n.Children {
		total = total.Add(rollUp(c))
	}
	n.RolledUp = total
	return total
}

// Index returns the id→classification index for the resolved accounts.
func (t *Tree) Index() Index {
	idx := make(Index, len(t.ByID))
	for id, n := range t.ByID {
		if n.Classification != "" {
			idx[id] = n.Classification
		}
	}
	return idx
}

// Walk visits every node depth-first in child order. Roots have depth 0.
func (t *Tree) Walk(fn func(n *Node, depth int)) {
	var visit func(n *Node, depth int)
	visit = func(n *Node, depth int) {
		fn(n, depth)
		for _, c := range n.Children {
			visit(c, depth+1)
		}
	}
	for _, r := range t.Roots {
		visit(r, 0)
	}
}
