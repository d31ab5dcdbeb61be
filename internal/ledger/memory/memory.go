package memory

import (
	"context"
	"sort"
	"sync"

	"financetracker/internal/ledger"
)

// Store is an in-process ledger used by tests and local runs without Google credentials.
type Store struct {
	mu      sync.Mutex
	entries map[int64]ledger.Entry
}

var _ ledger.Writer = (*Store)(nil)

func New() *Store {
	return &Store{entries: make(map[int64]ledger.Entry)}
}

func (s *Store) Upsert(_ context.Context, e ledger.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[e.TransactionID] = e
	return nil
}

func (s *Store) Delete(_ context.Context, transactionID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, transactionID)
	return nil
}

// Entries returns a snapshot ordered by transaction id.
func (s *Store) Entries() []ledger.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ledger.Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TransactionID < out[j].TransactionID })
	return out
}
