package accounts

import "github.com/cleared-dev/conferencia/internal/model"

// Service provides in-memory lookup over one company's chart of accounts.
type Service struct {
	accounts []model.Account
	byID     map[int]model.Account
	index    Index
}

// NewService creates a Service from a slice of accounts.
func NewService(accounts []model.Account) *Service {
	byID := make(map[int]model.Account, len(accounts))
	for _, a := range accounts {
		byID[a.ID] = a
	}
	return &Service{accounts: accounts, byID: byID, index: NewIndex(accounts)}
}

// All returns all accounts.
func (s *Service) All() []model.Account {
	return s.accounts
}

// Get returns an account by ID.
func (s *Service) Get(id int) (model.Account, bool) {
	a, ok := s.byID[id]
	return a, ok
}

// Exists reports whether an account ID exists.
func (s *Service) Exists(id int) bool {
	_, ok := s.byID[id]
	return ok
}

// Index returns the id→classification index.
func (s *Service) Index() Index {
	return s.index
}

// Tree resolves a fresh classification tree.
func (s *Service) Tree() *Tree {
	return Resolve(s.accounts)
}

// Missing returns the ids in ids that are not part of the chart, in input order.
func (s *Service) Missing(ids ...int) []int {
	var missing []int
	for _, id := range ids {
		if id != 0 && !s.Exists(id) {
			missing = append(missing, id)
		}
	}
	return missing
}
