package cache

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// DefaultTTL is the entry lifetime when none is configured.
const DefaultTTL = 120 * time.Second

// FetchFunc is the fetch primitive the cache wraps.
type FetchFunc func(ctx context.Context) ([]byte, error)

// Cache memoizes fetch results by argument key for a fixed duration.
type Cache struct {
	store  Store
	ttl    time.Duration
	logger zerolog.Logger
}

// New creates a cache over the given store. A non-positive ttl falls
// back to DefaultTTL.
func New(store Store, ttl time.Duration, logger zerolog.Logger) *Cache {
	if store == nil {
		panic("cache store cannot be nil")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		store:  store,
		ttl:    ttl,
		logger: logger,
	}
}

// TTL returns the configured entry lifetime.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Fetch returns the memoized result for key when a live entry exists,
// and otherwise invokes fetch and stores its result. Stale entries are
// swept on every access rather than by a background job. A failed fetch
// is never cached.
func (c *Cache) Fetch(ctx context.Context, key Key, fetch FetchFunc) ([]byte, error) {
	if err := c.store.Sweep(ctx, c.ttl); err != nil {
		c.logger.Warn().Err(err).Msg("Cache sweep failed")
	}

	entry, err := c.store.Get(ctx, key, c.ttl)
	switch {
	case err == nil:
		CacheHits.WithLabelValues(c.store.Name()).Inc()
		c.logger.Debug().
			Str("key", key.String()).
			Dur("age", entry.Age()).
			Msg("Cache hit")
		return entry.Data, nil
	case err != ErrCacheMiss:
		// Backend trouble degrades to a direct fetch.
		c.logger.Warn().Err(err).Str("key", key.String()).Msg("Cache get error")
	}
	CacheMisses.Inc()

	data, err := fetch(ctx)
	if err != nil {
		return nil, err
	}

	if err := c.store.Set(ctx, key, &Entry{Data: data, StoredAt: time.Now()}, c.ttl); err != nil {
		c.logger.Warn().Err(err).Str("key", key.String()).Msg("Cache set failed")
	}

	return data, nil
}
