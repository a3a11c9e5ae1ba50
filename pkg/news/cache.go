package news

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	cacheKeyPrefix  = "newsmentor:news:"
	DefaultCacheTTL = 5 * time.Minute
)

type Cache interface {
	Get(ctx context.Context, category string) (*Result, error)
	Set(ctx context.Context, result *Result) error
}

// RedisCache stores merged results per category. Get returns nil, nil on a
// miss.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, category string) (*Result, error) {
	data, err := c.client.Get(ctx, cacheKeyPrefix+category).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *RedisCache) Set(ctx context.Context, result *Result) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, cacheKeyPrefix+result.Category, data, c.ttl).Err()
}

// Feed serves merged results, from the cache when one is configured.
type Feed struct {
	aggregator *Aggregator
	cache      Cache
}

func NewFeed(aggregator *Aggregator, cache Cache) *Feed {
	return &Feed{aggregator: aggregator, cache: cache}
}

func (f *Feed) Get(ctx context.Context, category string) (*Result, error) {
	if f.cache != nil {
		cached, err := f.cache.Get(ctx, category)
		if err != nil {
			slog.Error("error reading news cache", "category", category, "error", err)
		}
		if cached != nil {
			return cached, nil
		}
	}

	return f.Refresh(ctx, category)
}

// Refresh fetches from the providers and stores the result. A result where
// every provider failed is returned but not cached.
func (f *Feed) Refresh(ctx context.Context, category string) (*Result, error) {
	result := f.aggregator.Fetch(ctx, category)

	if f.cache != nil && !result.Failed() {
		if err := f.cache.Set(ctx, result); err != nil {
			slog.Error("error writing news cache", "category", category, "error", err)
		}
	}

	return result, nil
}
