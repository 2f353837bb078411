// Package redis is a read-through cache for entries kept in Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/snote/internal/domain"
)

// DefaultEntryTTL bounds how long a cached entry may outlive a missed invalidation.
const DefaultEntryTTL = 10 * time.Minute

// Cache stores entries and the full entry list as JSON blobs.
// Misses are reported as (nil, false, nil).
//
// Fills are guarded by a generation counter: callers read Generation before
// querying the store and pass it to SaveEntry/SaveEntries. Invalidate bumps
// the counter, so a fill built from a read that an invalidation overtook is
// dropped instead of resurrecting stale data.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache creates a new Redis entry cache. ttl <= 0 selects DefaultEntryTTL.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultEntryTTL
	}
	return &Cache{client: client, ttl: ttl}
}

// Generation returns the current invalidation counter, 0 when unset.
func (c *Cache) Generation(ctx context.Context) (uint64, error) {
	gen, err := c.client.Get(ctx, KeyGeneration).Uint64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, fmt.Errorf("failed to read cache generation: %w", err)
	}
	return gen, nil
}

// SaveEntry caches a single entry read at generation gen.
func (c *Cache) SaveEntry(ctx context.Context, gen uint64, e *domain.Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}
	if err := c.fill(ctx, gen, func(pipe redis.Pipeliner) {
		pipe.Set(ctx, EntryKey(e.ID), data, c.ttl)
	}); err != nil {
		return fmt.Errorf("failed to cache entry: %w", err)
	}
	return nil
}

// GetEntry retrieves a cached entry by ID
func (c *Cache) GetEntry(ctx context.Context, id string) (*domain.Entry, bool, error) {
	data, err := c.client.Get(ctx, EntryKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get cached entry: %w", err)
	}

	var e domain.Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal entry: %w", err)
	}
	return &e, true, nil
}

// SaveEntries caches the full list and every entry in it, read at generation gen.
func (c *Cache) SaveEntries(ctx context.Context, gen uint64, entries []*domain.Entry) error {
	list, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to marshal entry list: %w", err)
	}
	blobs := make(map[string][]byte, len(entries))
	for _, e := range entries {
		data, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("failed to marshal entry %s: %w", e.ID, err)
		}
		blobs[EntryKey(e.ID)] = data
	}

	if err := c.fill(ctx, gen, func(pipe redis.Pipeliner) {
		pipe.Set(ctx, KeyEntryList, list, c.ttl)
		for key, data := range blobs {
			pipe.Set(ctx, key, data, c.ttl)
		}
	}); err != nil {
		return fmt.Errorf("failed to cache entries: %w", err)
	}
	return nil
}

// errGenerationMoved aborts a fill whose generation was overtaken.
var errGenerationMoved = errors.New("cache generation moved")

// fill runs write in a MULTI/EXEC guarded by WATCH on KeyGeneration. It is a
// no-op when the generation differs from gen or changes before EXEC.
func (c *Cache) fill(ctx context.Context, gen uint64, write func(redis.Pipeliner)) error {
	err := c.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, KeyGeneration).Uint64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return errGenerationMoved
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			write(pipe)
			return nil
		})
		return err
	}, KeyGeneration)
	if errors.Is(err, errGenerationMoved) || errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	return err
}

// GetEntries retrieves the cached entry list
func (c *Cache) GetEntries(ctx context.Context) ([]*domain.Entry, bool, error) {
	data, err := c.client.Get(ctx, KeyEntryList).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get cached entries: %w", err)
	}

	var entries []*domain.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal entry list: %w", err)
	}
	return entries, true, nil
}

// Ping checks the Redis connection
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
