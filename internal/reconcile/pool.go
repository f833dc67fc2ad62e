package reconcile

import "github.com/cleared-dev/conferencia/internal/model"

// Pool is a per-document working set of postings. Claimed postings stay in
// place and are skipped by lookups; the source slice is never modified.
type Pool struct {
	postings  []model.Posting
	claimed   []bool
	remaining int
}

// NewPool copies postings into a fresh pool.
func NewPool(postings []model.Posting) *Pool {
	cp := make([]model.Posting, len(postings))
	copy(cp, postings)
	return &Pool{postings: cp, claimed: make([]bool, len(cp)), remaining: len(cp)}
}

// Len returns the number of unclaimed postings.
func (p *Pool) Len() int {
	return p.remaining
}

// Find returns the index of the first unclaimed posting accepted by fn.
func (p *Pool) Find(fn func(model.Posting) bool) (int, bool) {
	for i, post := range p.postings {
		if p.claimed[i] {
			continue
		}
		if fn(post) {
			return i, true
		}
	}
	return -1, false
}

// First returns the first unclaimed posting.
func (p *Pool) First() (model.Posting, bool) {
	i, ok := p.Find(func(model.Posting) bool { return true })
	if !ok {
		return model.Posting{}, false
	}
	return p.postings[i], true
}

// Get returns the posting at index i.
func (p *Pool) Get(i int) model.Posting {
	return p.postings[i]
}

// Claim removes the posting at index i from future lookups and returns it.
func (p *Pool) Claim(i int) model.Posting {
	if !p.claimed[i] {
		p.claimed[i] = true
		p.remaining--
	}
	return p.postings[i]
}

// ClaimedKeys returns the keys of claimed postings in pool order.
func (p *Pool) ClaimedKeys() []int {
	var keys []int
	for i, c := range p.claimed {
		if c {
			keys = append(keys, p.postings[i].Key)
		}
	}
	return keys
}
