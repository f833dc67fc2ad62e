package importer

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/conferencia/internal/model"
)

// PlanLoader reads a mapping plan from YAML.
type PlanLoader struct{}

// Kind returns the loader name.
func (l *PlanLoader) Kind() string { return KindPlan }

// Load parses and checks the plan.
func (l *PlanLoader) Load(r io.Reader) (*Batch, error) {
	var p model.MappingPlan
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parsing plan: empty file")
		}
		return nil, fmt.Errorf("parsing plan: %w", err)
	}
	if p.ID <= 0 {
		return nil, fmt.Errorf("plan id must be positive, got %d", p.ID)
	}

	for i := range p.Items {
		it := &p.Items[i]
		it.CFOP = strings.TrimSpace(it.CFOP)
		if _, err := strconv.Atoi(it.CFOP); err != nil {
			return nil, fmt.Errorf("item %d: cfop %q is not numeric", i+1, it.CFOP)
		}
		if it.Posts && (it.DebitAccount == 0 || it.CreditAccount == 0) {
			return nil, fmt.Errorf("item %d: cfop %s posts but lacks a debit or credit account", i+1, it.CFOP)
		}
	}
	return &Batch{Kind: KindPlan, Plan: model.NewMappingPlan(p.ID, p.Name, p.Items)}, nil
}
