package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/snote/internal/domain"
	"github.com/MrSnakeDoc/snote/internal/logger"
)

// Invalidate drops the cached list and, when id is set, the cached entry,
// and bumps the generation so in-flight fills are discarded.
func (c *Cache) Invalidate(ctx context.Context, id string) error {
	keys := []string{KeyEntryList}
	if id != "" {
		keys = append(keys, EntryKey(id))
	}
	if _, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, keys...)
		pipe.Incr(ctx, KeyGeneration)
		return nil
	}); err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}
	return nil
}

// Flush removes every snote key except the generation, which it bumps.
func (c *Cache) Flush(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, KeyPrefixAll+"*", 0).Iterator()
	for iter.Next(ctx) {
		if iter.Val() == KeyGeneration {
			continue
		}
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to delete cache key: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to flush cache: %w", err)
	}
	if err := c.client.Incr(ctx, KeyGeneration).Err(); err != nil {
		return fmt.Errorf("failed to bump cache generation: %w", err)
	}
	return nil
}

// Invalidator returns an event handler that keeps the cache consistent with
// persisted mutations. Failures are logged; the TTL bounds any staleness.
func (c *Cache) Invalidator(log logger.Logger) func(ctx context.Context, ev domain.EntryEvent) {
	return func(ctx context.Context, ev domain.EntryEvent) {
		if err := c.Invalidate(ctx, ev.ID); err != nil {
			log.Warn("cache invalidation failed",
				logger.String("entry_id", ev.ID),
				logger.String("event", string(ev.Kind)),
				logger.Error(err))
		}
	}
}

// CachedIDs lists the IDs of every individually cached entry
func (c *Cache) CachedIDs(ctx context.Context) ([]string, error) {
	var ids []string
	iter := c.client.Scan(ctx, 0, KeyPrefixEntry+"*", 0).Iterator()
	for iter.Next(ctx) {
		id, err := ExtractEntryID(iter.Val())
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan entry keys: %w", err)
	}
	return ids, nil
}

// DeleteEntries removes cached entries by ID
func (c *Cache) DeleteEntries(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, EntryKey(id))
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete cached entries: %w", err)
	}
	return nil
}
