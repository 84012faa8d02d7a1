package booking

import (
	"context"
	"sync"
)

// RequestStore persists submitted drafts as booking requests.
type RequestStore interface {
	// Save stores a draft. Saving an ID twice is not an error; inserted reports
	// whether this call created the row.
	Save(ctx context.Context, draft Draft) (inserted bool, err error)

	// Get retrieves a request by draft ID.
	Get(ctx context.Context, id string) (*Draft, error)
}

// InMemoryRequestStore is an in-memory RequestStore for tests and local runs.
type InMemoryRequestStore struct {
	mu       sync.RWMutex
	requests map[string]Draft
}

// NewInMemoryRequestStore creates an empty store.
func NewInMemoryRequestStore() *InMemoryRequestStore {
	return &InMemoryRequestStore{requests: make(map[string]Draft)}
}

// Save stores a draft.
func (s *InMemoryRequestStore) Save(_ context.Context, draft Draft) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.requests[draft.ID]; ok {
		return false, nil
	}
	s.requests[draft.ID] = draft
	return true, nil
}

// Get retrieves a request by draft ID.
func (s *InMemoryRequestStore) Get(_ context.Context, id string) (*Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.requests[id]
	if !ok {
		return nil, ErrRequestNotFound
	}
	return &d, nil
}

var _ RequestStore = (*InMemoryRequestStore)(nil)
