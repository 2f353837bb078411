// Package memory is a process-local entry repository used for development and tests.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/MrSnakeDoc/snote/internal/domain"
	"github.com/MrSnakeDoc/snote/internal/store"
)

// Store keeps entries in a map guarded by a RWMutex.
// Stored entries are never handed out; every read returns clones.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*domain.Entry // ID -> Entry
}

var _ store.Repository = (*Store)(nil)

// NewStore creates an empty memory store
func NewStore() *Store {
	return &Store{entries: make(map[string]*domain.Entry)}
}

// List returns all entries, newest first
func (s *Store) List(_ context.Context) ([]*domain.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.Clone())
	}
	slices.SortStableFunc(out, func(a, b *domain.Entry) int {
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}
		return cmp.Compare(b.Index, a.Index)
	})
	return out, nil
}

// Get retrieves an entry by ID
func (s *Store) Get(_ context.Context, id string) (*domain.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	return e.Clone(), nil
}

// Create inserts e with the next index
func (s *Store) Create(_ context.Context, e *domain.Entry) (*domain.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[e.ID]; exists {
		return nil, fmt.Errorf("%w: duplicate id %s", domain.ErrStore, e.ID)
	}

	var maxIndex int64
	for _, existing := range s.entries {
		maxIndex = max(maxIndex, existing.Index)
	}

	stored := e.Clone()
	stored.Index = maxIndex + 1
	s.entries[stored.ID] = stored
	return stored.Clone(), nil
}

// Update applies p to the entry with the given ID
func (s *Store) Update(_ context.Context, id string, p store.Patch) (*domain.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}

	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Content != nil {
		e.Content = *p.Content
	}
	if p.Preview != nil {
		e.Preview = *p.Preview
	}
	if p.Icon != nil {
		e.Icon = *p.Icon
	}

	ts := p.LastUpdated
	if ts.Before(e.Date) {
		ts = e.Date
	}
	e.LastUpdated = &ts

	return e.Clone(), nil
}

// Delete removes an entry
func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[id]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	delete(s.entries, id)
	return nil
}

// Count returns the number of stored entries
func (s *Store) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries), nil
}

func (s *Store) Ping(context.Context) error { return nil }
