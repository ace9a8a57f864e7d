package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/veritrail/veritrail/internal/model"
)

// MemoryStore implements Store with an in-process map guarded by a lock.
// Results live for the process lifetime; eviction is a collaborator concern.
type MemoryStore struct {
	mu     sync.RWMutex
	claims map[string]*model.ProcessedClaim
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		claims: make(map[string]*model.ProcessedClaim),
	}
}

// Put records a processed claim.
func (s *MemoryStore) Put(_ context.Context, claim *model.ProcessedClaim) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.claims[claim.ContentID]; exists {
		return fmt.Errorf("content %s already processed", claim.ContentID)
	}
	s.claims[claim.ContentID] = claim
	return nil
}

// Get returns the claim for a content identifier, nil when unknown.
func (s *MemoryStore) Get(_ context.Context, contentID string) (*model.ProcessedClaim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.claims[contentID], nil
}

// Has reports whether a content identifier has been processed.
func (s *MemoryStore) Has(_ context.Context, contentID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.claims[contentID]
	return ok, nil
}

// List returns all processed claims, most recent first.
func (s *MemoryStore) List(_ context.Context) ([]*model.ProcessedClaim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	claims := make([]*model.ProcessedClaim, 0, len(s.claims))
	for _, c := range s.claims {
		claims = append(claims, c)
	}
	sort.Slice(claims, func(i, j int) bool {
		return claims[i].ProcessedAt.After(claims[j].ProcessedAt)
	})
	return claims, nil
}

// Stats returns aggregate statistics.
func (s *MemoryStore) Stats(ctx context.Context) (*Stats, error) {
	claims, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return aggregate(claims), nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}
