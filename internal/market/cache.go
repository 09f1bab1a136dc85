package market

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"market-scanner/internal/logging"
)

// CandleCache is a short-TTL cache in front of a Provider. Concurrent
// scans of the same symbol hit the cache instead of the exchange.
type CandleCache interface {
	Get(ctx context.Context, symbol string, lookbackDays int) *Series
	Set(ctx context.Context, symbol string, lookbackDays int, s *Series)
}

func cacheKey(symbol string, lookbackDays int) string {
	return fmt.Sprintf("candles:%s:%d", symbol, lookbackDays)
}

// ==================== IN-MEMORY CACHE ====================

type cachedSeries struct {
	series    *Series
	expiresAt time.Time
}

// MemoryCache is a mutex-guarded TTL map.
type MemoryCache struct {
	mu    sync.RWMutex
	cache map[string]*cachedSeries
	ttl   time.Duration
}

// NewMemoryCache creates an in-memory candle cache with the given TTL.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		cache: make(map[string]*cachedSeries),
		ttl:   ttl,
	}
}

// Get returns a cached series, or nil when absent or expired.
func (c *MemoryCache) Get(_ context.Context, symbol string, lookbackDays int) *Series {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.cache[cacheKey(symbol, lookbackDays)]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil
	}
	return entry.series
}

// Set stores a series with the cache TTL.
func (c *MemoryCache) Set(_ context.Context, symbol string, lookbackDays int, s *Series) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache[cacheKey(symbol, lookbackDays)] = &cachedSeries{
		series:    s,
		expiresAt: time.Now().Add(c.ttl),
	}
}

// CleanupExpired removes expired entries.
func (c *MemoryCache) CleanupExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, entry := range c.cache {
		if now.After(entry.expiresAt) {
			delete(c.cache, key)
		}
	}
}

// ==================== REDIS CACHE ====================

// RedisCache stores serialized series in Redis with a TTL. Redis outages
// degrade to cache misses; the provider is still consulted and the service
// keeps running.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

// NewRedisCache connects to Redis and verifies connectivity. A failed ping
// is logged but not fatal; the cache starts in degraded mode.
func NewRedisCache(addr, password string, db int, ttl time.Duration) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	rc := &RedisCache{
		client: client,
		ttl:    ttl,
		log:    logging.Component("candle-cache"),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		rc.log.Warn().Err(err).Msg("redis unavailable, candle cache degraded")
	}

	return rc
}

// Get returns a cached series, or nil on miss or Redis failure.
func (c *RedisCache) Get(ctx context.Context, symbol string, lookbackDays int) *Series {
	data, err := c.client.Get(ctx, cacheKey(symbol, lookbackDays)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Debug().Err(err).Str("symbol", symbol).Msg("cache read failed")
		}
		return nil
	}

	var s Series
	if err := json.Unmarshal(data, &s); err != nil {
		c.log.Warn().Err(err).Str("symbol", symbol).Msg("corrupt cache entry")
		return nil
	}
	return &s
}

// Set stores a series best-effort.
func (c *RedisCache) Set(ctx context.Context, symbol string, lookbackDays int, s *Series) {
	data, err := json.Marshal(s)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, cacheKey(symbol, lookbackDays), data, c.ttl).Err(); err != nil {
		c.log.Debug().Err(err).Str("symbol", symbol).Msg("cache write failed")
	}
}

// ==================== CACHED PROVIDER ====================

// CachedProvider wraps a Provider with a CandleCache.
type CachedProvider struct {
	provider Provider
	cache    CandleCache
}

// NewCachedProvider wraps provider with cache.
func NewCachedProvider(provider Provider, cache CandleCache) *CachedProvider {
	return &CachedProvider{provider: provider, cache: cache}
}

// FetchOHLCV serves from cache when possible, otherwise delegates to the
// underlying provider and caches the result. Unavailable data (nil series)
// is never cached, so a symbol can recover as soon as history appears.
func (p *CachedProvider) FetchOHLCV(ctx context.Context, symbol string, lookbackDays int) (*Series, error) {
	if s := p.cache.Get(ctx, symbol, lookbackDays); s != nil {
		return s, nil
	}

	s, err := p.provider.FetchOHLCV(ctx, symbol, lookbackDays)
	if err != nil || s == nil {
		return s, err
	}

	p.cache.Set(ctx, symbol, lookbackDays, s)
	return s, nil
}
