package memory

import (
	"context"
	"sort"
	"sync"

	"quiz-session-engine/internal/domain"
)

// ResultStore keeps finalized results in memory, keyed by session token.
type ResultStore struct {
	mu      sync.RWMutex
	results map[string]domain.Result
}

func NewResultStore() *ResultStore {
	return &ResultStore{results: make(map[string]domain.Result)}
}

// SaveResult stores the first result seen for a token; later saves are ignored.
func (s *ResultStore) SaveResult(_ context.Context, result domain.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.results[result.Token]; !ok {
		s.results[result.Token] = result
	}
	return nil
}

func (s *ResultStore) ListResults(_ context.Context, userID string) ([]domain.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Result, 0)
	for _, r := range s.results {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].FinalizedAt.After(out[j].FinalizedAt)
	})
	return out, nil
}
