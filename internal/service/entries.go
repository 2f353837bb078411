// Package service holds the entry use cases shared by the REST and RPC surfaces.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/snote/internal/domain"
	"github.com/MrSnakeDoc/snote/internal/events"
	"github.com/MrSnakeDoc/snote/internal/logger"
	"github.com/MrSnakeDoc/snote/internal/store"
)

// CopySuffix is appended to the title of a copied entry.
const CopySuffix = " (Copy)"

// Cache is the optional read cache consulted before the repository.
// Generation is read before the repository and handed back on save; the
// cache drops a save whose generation was overtaken by an invalidation.
type Cache interface {
	Generation(ctx context.Context) (uint64, error)
	GetEntries(ctx context.Context) ([]*domain.Entry, bool, error)
	SaveEntries(ctx context.Context, gen uint64, entries []*domain.Entry) error
	GetEntry(ctx context.Context, id string) (*domain.Entry, bool, error)
	SaveEntry(ctx context.Context, gen uint64, e *domain.Entry) error
}

// EntryService validates input, derives server-owned fields and publishes
// an event after every persisted mutation.
type EntryService struct {
	repo   store.Repository
	cache  Cache
	bus    *events.Bus[domain.EntryEvent]
	logger logger.Logger
	now    func() time.Time
	loc    *time.Location
	newID  func() string
}

type Option func(*EntryService)

// WithCache enables read-through caching.
func WithCache(c Cache) Option { return func(s *EntryService) { s.cache = c } }

// WithBus sets the bus mutation events are published on.
func WithBus(b *events.Bus[domain.EntryEvent]) Option { return func(s *EntryService) { s.bus = b } }

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option { return func(s *EntryService) { s.now = now } }

// WithLocation sets the zone default titles are written in. Timestamps are
// stored in UTC regardless.
func WithLocation(loc *time.Location) Option { return func(s *EntryService) { s.loc = loc } }

// WithIDGenerator overrides uuid.NewString.
func WithIDGenerator(gen func() string) Option { return func(s *EntryService) { s.newID = gen } }

func NewEntryService(repo store.Repository, log logger.Logger, opts ...Option) *EntryService {
	s := &EntryService{
		repo:   repo,
		logger: log,
		now:    time.Now,
		loc:    time.Local,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// timestamp truncates to the precision PostgreSQL keeps.
func (s *EntryService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func (s *EntryService) defaultTitle(t time.Time) string {
	if s.loc == nil {
		return domain.DefaultTitle(t)
	}
	return domain.DefaultTitle(t.In(s.loc))
}

// List returns every entry, newest first.
func (s *EntryService) List(ctx context.Context) ([]*domain.Entry, error) {
	var (
		gen  uint64
		fill bool
	)
	if s.cache != nil {
		entries, ok, err := s.cache.GetEntries(ctx)
		if err != nil {
			s.logger.Warn("entry list cache read failed", logger.Error(err))
		} else if ok {
			return entries, nil
		}
		gen, fill = s.generation(ctx)
	}

	entries, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	if fill {
		if err := s.cache.SaveEntries(ctx, gen, entries); err != nil {
			s.logger.Warn("entry list cache write failed", logger.Error(err))
		}
	}
	return entries, nil
}

// Get returns one entry or domain.ErrNotFound.
func (s *EntryService) Get(ctx context.Context, id string) (*domain.Entry, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: id is required", domain.ErrValidation)
	}

	var (
		gen  uint64
		fill bool
	)
	if s.cache != nil {
		e, ok, err := s.cache.GetEntry(ctx, id)
		if err != nil {
			s.logger.Warn("entry cache read failed", logger.String("entry_id", id), logger.Error(err))
		} else if ok {
			return e, nil
		}
		gen, fill = s.generation(ctx)
	}

	e, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if fill {
		if err := s.cache.SaveEntry(ctx, gen, e); err != nil {
			s.logger.Warn("entry cache write failed", logger.String("entry_id", id), logger.Error(err))
		}
	}
	return e, nil
}

// generation snapshots the cache generation ahead of a repository read.
// The read is not cached when the generation is unavailable.
func (s *EntryService) generation(ctx context.Context) (uint64, bool) {
	gen, err := s.cache.Generation(ctx)
	if err != nil {
		s.logger.Warn("cache generation read failed", logger.Error(err))
		return 0, false
	}
	return gen, true
}

// Create stores a new entry. The title defaults to the creation date and
// the preview is always derived from the sanitized content.
func (s *EntryService) Create(ctx context.Context, in domain.CreateInput) (*domain.Entry, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	content := domain.SanitizeContent(in.Content)
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: content is empty after sanitizing", domain.ErrValidation)
	}

	now := s.timestamp()
	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = s.defaultTitle(now)
	}

	created, err := s.repo.Create(ctx, &domain.Entry{
		ID:      s.newID(),
		Title:   title,
		Content: content,
		Preview: domain.Preview(content),
		Date:    now,
		Icon:    in.Icon,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("entry created",
		logger.String("entry_id", created.ID),
		logger.Int64("index", created.Index))
	s.publish(ctx, domain.EntryCreated, created.ID, now)
	return created, nil
}

// Update applies a partial update and stamps lastUpdated.
func (s *EntryService) Update(ctx context.Context, id string, in domain.UpdateInput) (*domain.Entry, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: id is required", domain.ErrValidation)
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	now := s.timestamp()
	patch := store.Patch{Icon: in.Icon, LastUpdated: now}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			existing, err := s.repo.Get(ctx, id)
			if err != nil {
				return nil, err
			}
			title = s.defaultTitle(existing.Date)
		}
		patch.Title = &title
	}

	if in.Content != nil {
		content := domain.SanitizeContent(*in.Content)
		if strings.TrimSpace(content) == "" {
			return nil, fmt.Errorf("%w: content is empty after sanitizing", domain.ErrValidation)
		}
		preview := domain.Preview(content)
		patch.Content = &content
		patch.Preview = &preview
	}

	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	s.logger.Info("entry updated", logger.String("entry_id", id))
	s.publish(ctx, domain.EntryUpdated, id, now)
	return updated, nil
}

// Delete removes an entry. Deleting an unknown id returns domain.ErrNotFound.
func (s *EntryService) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: id is required", domain.ErrValidation)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("entry deleted", logger.String("entry_id", id))
	s.publish(ctx, domain.EntryDeleted, id, s.timestamp())
	return nil
}

// Copy creates a new entry with the same content and icon as id and the
// title suffixed with CopySuffix.
func (s *EntryService) Copy(ctx context.Context, id string) (*domain.Entry, error) {
	src, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.Create(ctx, domain.CreateInput{
		Title:   src.Title + CopySuffix,
		Content: src.Content,
		Icon:    src.Icon,
	})
}

// Count returns the number of stored entries.
func (s *EntryService) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

func (s *EntryService) publish(ctx context.Context, kind domain.EntryEventKind, id string, at time.Time) {
	s.bus.Publish(ctx, domain.EntryEvent{Kind: kind, ID: id, At: at})
}
