// Package store defines the persistence boundary for entries.
package store

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/snote/internal/domain"
)

// Patch is a partial update applied by Repository.Update.
// Nil fields are left untouched. A non-nil empty Icon clears the icon.
type Patch struct {
	Title       *string
	Content     *string
	Preview     *string
	Icon        *domain.Icon
	LastUpdated time.Time
}

// Repository persists entries.
//
// Implementations must assign Index on Create as max(existing)+1 atomically,
// return domain.ErrNotFound for unknown ids and wrap every other failure
// with domain.ErrStore.
type Repository interface {
	// List returns all entries ordered by Date descending.
	List(ctx context.Context) ([]*domain.Entry, error)
	Get(ctx context.Context, id string) (*domain.Entry, error)
	// Create stores e, filling in e.Index. The returned entry is a copy.
	Create(ctx context.Context, e *domain.Entry) (*domain.Entry, error)
	Update(ctx context.Context, id string, p Patch) (*domain.Entry, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
	Ping(ctx context.Context) error
}
