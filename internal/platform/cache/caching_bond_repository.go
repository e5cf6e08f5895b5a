// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"bond_dashboard/internal/feature/bonds/domain/entity"
	"bond_dashboard/internal/feature/bonds/usecase"
)

const (
	// DefaultTTL is how long query results stay cached when no TTL is configured.
	DefaultTTL = time.Hour
	// DefaultNamespace prefixes every cache key.
	DefaultNamespace = "bonds"
	// DefaultQueryTimeout bounds a database query shared by collapsed cache misses.
	DefaultQueryTimeout = 30 * time.Second

	KindPrices  = "prices"
	KindSummary = "summary"
)

// Recorder receives cache and query observations.
type Recorder interface {
	CacheHit(kind string)
	CacheMiss(kind string)
	ObserveQuery(kind string, d time.Duration, err error)
}

type noopRecorder struct{}

func (noopRecorder) CacheHit(string)                           {}
func (noopRecorder) CacheMiss(string)                          {}
func (noopRecorder) ObserveQuery(string, time.Duration, error) {}

// CachingBondRepository decorates a BondRepository with a TTL cache.
// Results are stored as JSON in Redis, or in process memory when no
// Redis client is configured. Errors are never cached.
type CachingBondRepository struct {
	inner     usecase.BondRepository
	rdb       *redis.Client
	mem       *memoryStore
	ttl       time.Duration
	namespace string
	rec       Recorder
	group     singleflight.Group

	// queryTimeout bounds a shared database query.
	queryTimeout time.Duration
	// waiting, if set, runs once a caller has joined the shared query.
	waiting func()
}

var _ usecase.BondRepository = (*CachingBondRepository)(nil)

// NewCachingBondRepository decorates a BondRepository with caching.
// If ttl is 0, it defaults to one hour. If namespace is empty, it uses "bonds".
// A nil rdb selects the in-process store; a nil rec disables metrics.
func NewCachingBondRepository(rdb *redis.Client, ttl time.Duration, inner usecase.BondRepository, namespace string, rec Recorder) *CachingBondRepository {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if rec == nil {
		rec = noopRecorder{}
	}
	c := &CachingBondRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
		rec:       rec,

		queryTimeout: DefaultQueryTimeout,
	}
	if rdb == nil {
		c.mem = newMemoryStore(time.Now)
	}
	return c
}

// FindPrices returns cached prices for seriesID, querying the inner repository on a miss.
func (c *CachingBondRepository) FindPrices(ctx context.Context, seriesID string) ([]entity.PricePoint, error) {
	return fetch(ctx, c, KindPrices, seriesID, func(ctx context.Context) ([]entity.PricePoint, error) {
		return c.inner.FindPrices(ctx, seriesID)
	})
}

// FindSummary returns cached summary rows for symbol, querying the inner repository on a miss.
func (c *CachingBondRepository) FindSummary(ctx context.Context, symbol string) (entity.SummaryTable, error) {
	return fetch(ctx, c, KindSummary, symbol, func(ctx context.Context) (entity.SummaryTable, error) {
		return c.inner.FindSummary(ctx, symbol)
	})
}

// Purge drops every cached entry in the namespace.
func (c *CachingBondRepository) Purge(ctx context.Context) error {
	if c.rdb == nil {
		c.mem.purge(c.namespace + ":")
		return nil
	}
	return c.deleteByPattern(ctx, c.namespace+":*")
}

func fetch[T any](ctx context.Context, c *CachingBondRepository, kind, param string, load func(context.Context) (T, error)) (T, error) {
	key := c.cacheKey(kind, param)

	// 1) Check cache
	if b, ok := c.get(ctx, key); ok {
		var out T
		if err := json.Unmarshal(b, &out); err == nil {
			c.rec.CacheHit(kind)
			return out, nil
		}
		// Delete corrupted cache entry
		c.del(ctx, key)
	}
	c.rec.CacheMiss(kind)

	// 2) Fallback to database, one query per key at a time.
	// The shared query must not end when the caller that started it goes away,
	// so it runs on a detached context and each caller waits on its own.
	ch := c.group.DoChan(key, func() (any, error) {
		qctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.queryTimeout)
		defer cancel()

		start := time.Now()
		out, err := load(qctx)
		c.rec.ObserveQuery(kind, time.Since(start), err)
		if err != nil {
			return nil, err
		}

		// 3) Store in cache (best effort). The decoded copy is returned so that
		// a miss and a later hit yield the same values.
		b, err := json.Marshal(out)
		if err != nil {
			return out, nil
		}
		c.set(qctx, key, b)
		var decoded T
		if err := json.Unmarshal(b, &decoded); err != nil {
			return out, nil
		}
		return decoded, nil
	})
	if c.waiting != nil {
		c.waiting()
	}

	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}

func (c *CachingBondRepository) get(ctx context.Context, key string) ([]byte, bool) {
	if c.rdb == nil {
		return c.mem.get(key)
	}
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil || len(b) == 0 {
		return nil, false
	}
	return b, true
}

func (c *CachingBondRepository) set(ctx context.Context, key string, b []byte) {
	if c.rdb == nil {
		c.mem.set(key, b, c.ttl)
		return
	}
	_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
}

func (c *CachingBondRepository) del(ctx context.Context, key string) {
	if c.rdb == nil {
		c.mem.del(key)
		return
	}
	_ = c.rdb.Del(ctx, key).Err()
}

// cacheKey generates a cache key for a specific query.
func (c *CachingBondRepository) cacheKey(kind, param string) string {
	return fmt.Sprintf("%s:%s:%s", c.namespace, kind, safe(param))
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingBondRepository) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	s = strings.ReplaceAll(s, "*", "_")
	return s
}
