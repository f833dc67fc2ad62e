package model

import "strconv"

// RetentionAccounts lists the per-tax accounts a retained CFOP may post to.
// Zero means not configured.
type RetentionAccounts struct {
	INSS   int `json:"contaInss,omitempty" yaml:"inss,omitempty"`
	ISSQN  int `json:"contaIssqn,omitempty" yaml:"issqn,omitempty"`
	IRPJ   int `json:"contaIrpj,omitempty" yaml:"irpj,omitempty"`
	CSLL   int `json:"contaCsll,omitempty" yaml:"csll,omitempty"`
	IRRF   int `json:"contaIrrf,omitempty" yaml:"irrf,omitempty"`
	PIS    int `json:"contaPis,omitempty" yaml:"pis,omitempty"`
	COFINS int `json:"contaCofins,omitempty" yaml:"cofins,omitempty"`
}

// MappingItem is the rule for a single CFOP within a plan.
type MappingItem struct {
	CFOP          string            `json:"cfop" yaml:"cfop"`
	DebitAccount  int               `json:"contaDebito" yaml:"conta_debito"`   // 0 = none
	CreditAccount int               `json:"contaCredito" yaml:"conta_credito"` // 0 = none
	Posts         bool              `json:"contabiliza" yaml:"contabiliza"`
	Retained      bool              `json:"retido" yaml:"retido"`
	Retention     RetentionAccounts `json:"retencoes" yaml:"retencoes,omitempty"`
}

// MappingPlan is an ordered set of CFOP rules.
type MappingPlan struct {
	ID    int           `json:"id" yaml:"id"`
	Name  string        `json:"nome" yaml:"nome"`
	Items []MappingItem `json:"itens" yaml:"itens"`

	byCFOP map[string]int
}

// NewMappingPlan builds a plan and its CFOP index. A later item for the same
// CFOP replaces an earlier one.
func NewMappingPlan(id int, name string, items []MappingItem) *MappingPlan {
	p := &MappingPlan{ID: id, Name: name, Items: items}
	p.index()
	return p
}

func (p *MappingPlan) index() {
	p.byCFOP = make(map[string]int, len(p.Items))
	for i, it := range p.Items {
		p.byCFOP[it.CFOP] = i
	}
}

// Rule returns the item configured for a CFOP code.
func (p *MappingPlan) Rule(cfop int) (MappingItem, bool) {
	if p.byCFOP == nil {
		p.index()
	}
	i, ok := p.byCFOP[strconv.Itoa(cfop)]
	if !ok {
		return MappingItem{}, false
	}
	return p.Items[i], true
}
