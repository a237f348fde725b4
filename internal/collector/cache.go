package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"Wayne/internal/metrics"
	"Wayne/internal/model"

	"github.com/go-redis/redis/v8"
)

// CachedFetcher is a read-through Redis cache in front of another Fetcher.
// Redis failures fall back to the wrapped fetcher.
type CachedFetcher struct {
	Next    Fetcher
	Client  *redis.Client
	TTL     time.Duration
	Metrics *metrics.Metrics
}

// NewCachedFetcher wraps next with a Redis cache.
func NewCachedFetcher(next Fetcher, client *redis.Client, ttl time.Duration, m *metrics.Metrics) *CachedFetcher {
	return &CachedFetcher{Next: next, Client: client, TTL: ttl, Metrics: m}
}

func (c *CachedFetcher) Name() string { return c.Next.Name() + "+redis" }

func cacheKey(source, symbol, interval string, limit int, startTime time.Time) string {
	start := int64(0)
	if !startTime.IsZero() {
		start = startTime.UnixMilli()
	}
	return fmt.Sprintf("wayne:klines:%s:%s:%s:%d:%d", source, symbol, interval, limit, start)
}

func (c *CachedFetcher) FetchKlines(ctx context.Context, symbol, interval string, limit int, startTime time.Time) ([]model.OHLCV, error) {
	key := cacheKey(c.Next.Name(), symbol, interval, limit, startTime)

	data, err := c.Client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var bars []model.OHLCV
		if err := json.Unmarshal(data, &bars); err == nil {
			c.Metrics.CacheHit()
			return bars, nil
		}
		log.Printf("[WARN] corrupt cache entry %s, refetching", key)
	case !errors.Is(err, redis.Nil):
		log.Printf("[WARN] redis get %s: %v", key, err)
	}

	bars, err := c.Next.FetchKlines(ctx, symbol, interval, limit, startTime)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(bars); err == nil {
		if err := c.Client.Set(ctx, key, data, c.TTL).Err(); err != nil {
			log.Printf("[WARN] redis set %s: %v", key, err)
		}
	}
	return bars, nil
}
