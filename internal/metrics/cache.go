package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

const cacheVersionPrefix = "metrics:version"

var (
	defaultCacheOnce    sync.Once
	defaultCacheLookups *prometheus.CounterVec
)

// Cache stores persisted metrics rows in Redis behind a per-business version so a
// refresh invalidates every cached read of that business at once.
type Cache struct {
	client  *redis.Client
	ttl     time.Duration
	lookups *prometheus.CounterVec
}

// NewCache instantiates the cache helper. A nil registerer uses the default registry.
func NewCache(client *redis.Client, ttl time.Duration, registerer prometheus.Registerer) *Cache {
	return &Cache{client: client, ttl: ttl, lookups: cacheLookups(registerer)}
}

func cacheLookups(registerer prometheus.Registerer) *prometheus.CounterVec {
	build := func(reg prometheus.Registerer) *prometheus.CounterVec {
		vec := prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "amazpen_metrics_cache_lookups_total",
			Help: "Metrics read cache lookups partitioned by result.",
		}, []string{"result"})
		reg.MustRegister(vec)
		return vec
	}
	if registerer == nil {
		defaultCacheOnce.Do(func() {
			defaultCacheLookups = build(prometheus.DefaultRegisterer)
		})
		return defaultCacheLookups
	}
	return build(registerer)
}

func versionKey(businessID uuid.UUID) string {
	return cacheVersionPrefix + ":" + businessID.String()
}

// Version returns the current cache version of a business, initialising when missing.
func (c *Cache) Version(ctx context.Context, businessID uuid.UUID) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	key := versionKey(businessID)
	ver, err := c.client.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		if err := c.client.SetNX(ctx, key, 1, 0).Err(); err != nil {
			return 0, err
		}
		return c.client.Get(ctx, key).Int64()
	}
	if err != nil {
		return 0, err
	}
	return ver, nil
}

// BuildKey composes the cache key of a business read with its current version.
func (c *Cache) BuildKey(ctx context.Context, businessID uuid.UUID, parts ...string) (string, error) {
	joined := strings.Join(append([]string{"metrics", businessID.String()}, parts...), ":")
	if c == nil || c.client == nil {
		return joined, nil
	}
	ver, err := c.Version(ctx, businessID)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:v%d", joined, ver), nil
}

// FetchJSON loads a cached value or populates it using the loader.
func (c *Cache) FetchJSON(ctx context.Context, key string, dest interface{}, loader func(context.Context) (interface{}, error)) error {
	if loader == nil {
		return errors.New("metrics cache: loader required")
	}
	if c == nil || c.client == nil {
		value, err := loader(ctx)
		if err != nil {
			return err
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return err
		}
		return json.Unmarshal(raw, dest)
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		c.observe("hit")
		return json.Unmarshal(payload, dest)
	}
	if !errors.Is(err, redis.Nil) {
		return err
	}
	c.observe("miss")
	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

// Bump invalidates every cached read of a business.
func (c *Cache) Bump(ctx context.Context, businessID uuid.UUID) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Incr(ctx, versionKey(businessID)).Err()
}

func (c *Cache) observe(result string) {
	if c.lookups != nil {
		c.lookups.WithLabelValues(result).Inc()
	}
}
