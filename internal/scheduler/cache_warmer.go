// Package scheduler runs the background jobs of the snote server.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/snote/internal/domain"
	"github.com/MrSnakeDoc/snote/internal/logger"
)

// EntrySource is the authoritative entry list (the repository).
type EntrySource interface {
	List(ctx context.Context) ([]*domain.Entry, error)
}

// EntryCache is the subset of the Redis cache the warmer writes to.
type EntryCache interface {
	Generation(ctx context.Context) (uint64, error)
	SaveEntries(ctx context.Context, gen uint64, entries []*domain.Entry) error
	CachedIDs(ctx context.Context) ([]string, error)
	DeleteEntries(ctx context.Context, ids ...string) error
}

// CacheWarmer rebuilds the read cache from the store on start, on every
// interval tick and whenever manualTrigger fires. Each run also drops cached
// entries whose id no longer exists in the store.
type CacheWarmer struct {
	source        EntrySource
	cache         EntryCache
	logger        logger.Logger
	interval      time.Duration
	now           func() time.Time
	stopCh        chan struct{}
	stopOnce      sync.Once
	manualTrigger chan struct{}

	mu      sync.RWMutex
	lastRun time.Time
}

// NewCacheWarmer creates a warmer. manualTrigger may be nil.
func NewCacheWarmer(
	source EntrySource,
	cache EntryCache,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *CacheWarmer {
	return &CacheWarmer{
		source:        source,
		cache:         cache,
		logger:        log,
		interval:      interval,
		now:           time.Now,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start warms the cache once, then keeps it warm in the background until
// Stop is called or ctx is done. A failed initial warm is logged, not
// returned: the service falls back to the store on cache misses.
func (cw *CacheWarmer) Start(ctx context.Context) {
	if _, err := cw.Warm(ctx); err != nil {
		cw.logger.Warn("initial cache warm failed", logger.Error(err))
	}

	var tick <-chan time.Time
	if cw.interval > 0 {
		ticker := time.NewTicker(cw.interval)
		tick = ticker.C
		go func() {
			<-cw.stopCh
			ticker.Stop()
		}()
	}

	go func() {
		for {
			select {
			case <-tick:
				cw.run(ctx, "interval")
			case <-cw.manualTrigger:
				cw.run(ctx, "manual")
			case <-cw.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the background loop. It is safe to call more than once.
func (cw *CacheWarmer) Stop() {
	cw.stopOnce.Do(func() { close(cw.stopCh) })
}

func (cw *CacheWarmer) run(ctx context.Context, reason string) {
	if _, err := cw.Warm(ctx); err != nil {
		cw.logger.Error("cache warm failed",
			logger.String("reason", reason),
			logger.Error(err))
	}
}

// Warm copies the current entry list into the cache and prunes cached entries
// that were deleted from the store. It returns the number of entries listed.
// When a mutation is invalidated while the list is read, the cache drops the
// fill and the next read repopulates it.
func (cw *CacheWarmer) Warm(ctx context.Context) (int, error) {
	gen, err := cw.cache.Generation(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read cache generation: %w", err)
	}
	entries, err := cw.source.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list entries: %w", err)
	}
	if err := cw.cache.SaveEntries(ctx, gen, entries); err != nil {
		return 0, fmt.Errorf("failed to cache entries: %w", err)
	}

	pruned, err := cw.prune(ctx, entries)
	if err != nil {
		// the list is fresh; stale per-id keys still expire with their TTL
		cw.logger.Warn("failed to prune cached entries", logger.Error(err))
	}

	cw.mu.Lock()
	cw.lastRun = cw.now()
	cw.mu.Unlock()

	cw.logger.Info("entry cache warmed",
		logger.Int("entries", len(entries)),
		logger.Int("pruned", pruned))
	return len(entries), nil
}

func (cw *CacheWarmer) prune(ctx context.Context, entries []*domain.Entry) (int, error) {
	cached, err := cw.cache.CachedIDs(ctx)
	if err != nil {
		return 0, err
	}
	live := make(map[string]bool, len(entries))
	for _, e := range entries {
		live[e.ID] = true
	}
	var stale []string
	for _, id := range cached {
		if !live[id] {
			stale = append(stale, id)
		}
	}
	if err := cw.cache.DeleteEntries(ctx, stale...); err != nil {
		return 0, err
	}
	return len(stale), nil
}

// LastRun is the time of the last successful warm, zero before the first one.
func (cw *CacheWarmer) LastRun() time.Time {
	cw.mu.RLock()
	defer cw.mu.RUnlock()
	return cw.lastRun
}
