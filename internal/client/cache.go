package client

import (
	"context"
	"sync"

	"github.com/MrSnakeDoc/snote/internal/domain"
)

// API is the subset of Client the cache needs.
type API interface {
	ListEntries(ctx context.Context) ([]*domain.Entry, error)
	GetEntry(ctx context.Context, id string) (*domain.Entry, error)
	CreateEntry(ctx context.Context, in domain.CreateInput) (*domain.Entry, error)
	UpdateEntry(ctx context.Context, id string, in domain.UpdateInput) (*domain.Entry, error)
	DeleteEntry(ctx context.Context, id string) error
	CopyEntry(ctx context.Context, id string) (*domain.Entry, error)
}

// Status is the lifecycle of a cached query.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusError
	StatusSuccess
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusError:
		return "error"
	case StatusSuccess:
		return "success"
	default:
		return "idle"
	}
}

// Query is the loading/error/data triple of a read. On error, Data keeps the
// last successful value.
type Query[T any] struct {
	Status Status
	Data   T
	Err    error
}

func (q Query[T]) Loading() bool { return q.Status == StatusLoading }

// slot holds one cached query. gen is bumped by every invalidation; a fetch
// that started under an older gen may return its result to its caller but
// never populates the slot.
type slot[T any] struct {
	state Query[T]
	valid bool
	gen   uint64
}

func (s *slot[T]) invalidate() {
	s.gen++
	s.valid = false
}

// Cache is the client-side query cache: one slot for the full collection and
// one per entry id. Successful mutations invalidate the affected slots.
type Cache struct {
	api API

	mu   sync.Mutex
	list slot[[]*domain.Entry]
	byID map[string]*slot[*domain.Entry]
}

func NewCache(api API) *Cache {
	return &Cache{api: api, byID: make(map[string]*slot[*domain.Entry])}
}

// Entries returns the cached collection, fetching it when invalid.
func (c *Cache) Entries(ctx context.Context) Query[[]*domain.Entry] {
	c.mu.Lock()
	if c.list.valid {
		q := c.list.state
		c.mu.Unlock()
		return q
	}
	gen := c.list.gen
	c.list.state.Status = StatusLoading
	c.mu.Unlock()

	data, err := c.api.ListEntries(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	return settle(&c.list, gen, data, err)
}

// Entry returns one cached entry, fetching it when invalid.
func (c *Cache) Entry(ctx context.Context, id string) Query[*domain.Entry] {
	c.mu.Lock()
	s := c.entrySlot(id)
	if s.valid {
		q := s.state
		c.mu.Unlock()
		return q
	}
	gen := s.gen
	s.state.Status = StatusLoading
	c.mu.Unlock()

	data, err := c.api.GetEntry(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	return settle(s, gen, data, err)
}

// PeekEntries returns the collection state without fetching.
func (c *Cache) PeekEntries() Query[[]*domain.Entry] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.list.state
}

func settle[T any](s *slot[T], gen uint64, data T, err error) Query[T] {
	stale := s.gen != gen
	if err != nil {
		if !stale {
			s.state = Query[T]{Status: StatusError, Data: s.state.Data, Err: err}
		}
		return Query[T]{Status: StatusError, Data: s.state.Data, Err: err}
	}
	fresh := Query[T]{Status: StatusSuccess, Data: data}
	if !stale {
		s.state = fresh
		s.valid = true
	}
	return fresh
}

func (c *Cache) entrySlot(id string) *slot[*domain.Entry] {
	s, ok := c.byID[id]
	if !ok {
		s = &slot[*domain.Entry]{}
		c.byID[id] = s
	}
	return s
}

// Invalidate drops the collection and, for each id given, the entry slot.
func (c *Cache) Invalidate(ids ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.list.invalidate()
	for _, id := range ids {
		c.entrySlot(id).invalidate()
	}
}

// Create resolves with the server-computed entry.
func (c *Cache) Create(ctx context.Context, in domain.CreateInput) (*domain.Entry, error) {
	e, err := c.api.CreateEntry(ctx, in)
	if err != nil {
		return nil, err
	}
	c.Invalidate()
	return e, nil
}

func (c *Cache) Update(ctx context.Context, id string, in domain.UpdateInput) (*domain.Entry, error) {
	e, err := c.api.UpdateEntry(ctx, id, in)
	if err != nil {
		return nil, err
	}
	c.Invalidate(id)
	return e, nil
}

func (c *Cache) Delete(ctx context.Context, id string) error {
	if err := c.api.DeleteEntry(ctx, id); err != nil {
		return err
	}
	c.Invalidate(id)
	return nil
}

func (c *Cache) Copy(ctx context.Context, id string) (*domain.Entry, error) {
	e, err := c.api.CopyEntry(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Invalidate()
	return e, nil
}
