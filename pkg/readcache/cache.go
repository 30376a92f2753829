package readcache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/multierr"

	"github.com/angelmondragon/garmentz-backend/pkg/logger"
)

// Store is the subset of the redis client used for cached read models.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CacheKey(parts ...string) string
}

// Cache is a JSON read-through cache. A nil Cache, a nil store or a
// non-positive TTL disables caching and every Fetch hits the loader.
type Cache struct {
	store Store
	ttl   time.Duration
	logg  *logger.Logger
}

func New(store Store, ttl time.Duration, logg *logger.Logger) *Cache {
	return &Cache{store: store, ttl: ttl, logg: logg}
}

// Enabled reports whether reads are served from the store.
func (c *Cache) Enabled() bool {
	return c != nil && c.store != nil && c.ttl > 0
}

// Key builds the namespaced key for the given parts.
func (c *Cache) Key(parts ...string) string {
	if c == nil || c.store == nil {
		return strings.Join(parts, ":")
	}
	return c.store.CacheKey(parts...)
}

// Fetch returns the cached value for key or calls load and stores its result.
// Store failures are logged and never fail the read.
func Fetch[T any](ctx context.Context, c *Cache, key string, load func(context.Context) (T, error)) (T, error) {
	if !c.Enabled() {
		return load(ctx)
	}

	raw, err := c.store.Get(ctx, key)
	switch {
	case err == nil:
		var cached T
		decodeErr := json.Unmarshal([]byte(raw), &cached)
		if decodeErr == nil {
			return cached, nil
		}
		c.warn(ctx, key, "cache.decode_failed", decodeErr)
	case errors.Is(err, goredis.Nil):
	default:
		c.warn(ctx, key, "cache.read_failed", err)
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}

	payload, err := json.Marshal(value)
	if err != nil {
		c.warn(ctx, key, "cache.encode_failed", err)
		return value, nil
	}
	if err := c.store.Set(ctx, key, string(payload), c.ttl); err != nil {
		c.warn(ctx, key, "cache.write_failed", err)
	}
	return value, nil
}

// Invalidate removes the provided keys. It is a no-op when caching is disabled.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) error {
	if c == nil || c.store == nil || len(keys) == 0 {
		return nil
	}
	var errs error
	for _, key := range keys {
		errs = multierr.Append(errs, c.store.Del(ctx, key))
	}
	return errs
}

func (c *Cache) warn(ctx context.Context, key, msg string, err error) {
	if c.logg == nil {
		return
	}
	ctx = c.logg.WithFields(ctx, map[string]any{"cache_key": key, "error": err.Error()})
	c.logg.Warn(ctx, msg)
}
