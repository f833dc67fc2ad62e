package reconcile

import (
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/conferencia/internal/model"
)

// RuledLine is a CFOP line together with the plan item that governs it.
type RuledLine struct {
	Line model.CFOPLine
	Rule model.MappingItem
}

// GroupKey is the expected (debit, credit) account pair of a group.
type GroupKey struct {
	DebitAccount  int
	CreditAccount int
}

// Group sums the standard lines of one document that expect the same
// account pair.
type Group struct {
	GroupKey
	Total decimal.Decimal
	Lines []model.CFOPLine
}

// Partition is a document's CFOP lines split by rule outcome.
type Partition struct {
	Unconfigured []model.CFOPLine
	NonPosting   []RuledLine
	Retained     []RuledLine
	Groups       []*Group // in order of first appearance
}

// PartitionLines classifies each line against the plan and groups the lines
// that need standard matching by their expected account pair.
func PartitionLines(lines []model.CFOPLine, plan *model.MappingPlan) Partition {
	var part Partition
	byKey := make(map[GroupKey]*Group)

	for _, line := range lines {
		rule, ok := plan.Rule(line.CFOP)
		switch {
		case !ok:
			part.Unconfigured = append(part.Unconfigured, line)
		case !rule.Posts:
			part.NonPosting = append(part.NonPosting, RuledLine{Line: line, Rule: rule})
		case rule.Retained:
			part.Retained = append(part.Retained, RuledLine{Line: line, Rule: rule})
		default:
			key := GroupKey{DebitAccount: rule.DebitAccount, CreditAccount: rule.CreditAccount}
			g, ok := byKey[key]
			if !ok {
				g = &Group{GroupKey: key}
				byKey[key] = g
				part.Groups = append(part.Groups, g)
			}
			g.Total = g.Total.Add(line.TaxableValue)
			g.Lines = append(g.Lines, line)
		}
	}
	return part
}

// StandardLines returns the number of lines routed to standard matching.
func (p Partition) StandardLines() int {
	n := 0
	for _, g := range p.Groups {
		n += len(g.Lines)
	}
	return n
}
