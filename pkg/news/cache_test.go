package news

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-playground/assert/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedisCacheRoundTrip(t *testing.T) {
	mr, client := newTestRedis(t)
	cache := NewRedisCache(client, time.Minute)
	ctx := context.Background()

	miss, err := cache.Get(ctx, "science")
	assert.Equal(t, nil, err)
	assert.Equal(t, true, miss == nil)

	at := time.Date(2026, 4, 4, 4, 0, 0, 0, time.UTC)
	in := &Result{
		Category:  "science",
		Articles:  []Article{article("Comet spotted", "https://s/1", at)},
		Providers: []ProviderStatus{{Name: "NewsAPI", Articles: 1}},
		FetchedAt: at,
	}
	assert.Equal(t, nil, cache.Set(ctx, in))
	assert.Equal(t, time.Minute, mr.TTL(cacheKeyPrefix+"science"))

	out, err := cache.Get(ctx, "science")
	assert.Equal(t, nil, err)
	assert.Equal(t, "Comet spotted", out.Articles[0].Title)
	assert.Equal(t, at.Unix(), out.Articles[0].PublishedAt.Unix())
	assert.Equal(t, in.Providers, out.Providers)

	mr.FastForward(2 * time.Minute)
	expired, err := cache.Get(ctx, "science")
	assert.Equal(t, nil, err)
	assert.Equal(t, true, expired == nil)
}

func TestFeedServesFromCache(t *testing.T) {
	_, client := newTestRedis(t)
	provider := &stubClient{name: "NewsAPI", articles: []Article{article("Cached story", "https://c/1", time.Now())}}
	feed := NewFeed(NewAggregator([]NewsClient{provider}), NewRedisCache(client, time.Minute))
	ctx := context.Background()

	first, err := feed.Get(ctx, "general")
	assert.Equal(t, nil, err)
	second, err := feed.Get(ctx, "general")
	assert.Equal(t, nil, err)

	assert.Equal(t, 1, provider.calls)
	assert.Equal(t, first.Articles[0].URL, second.Articles[0].URL)

	_, err = feed.Refresh(ctx, "general")
	assert.Equal(t, nil, err)
	assert.Equal(t, 2, provider.calls)
}

func TestFeedDoesNotCacheTotalFailure(t *testing.T) {
	_, client := newTestRedis(t)
	provider := &stubClient{name: "NewsAPI", err: errors.New("down")}
	feed := NewFeed(NewAggregator([]NewsClient{provider}), NewRedisCache(client, time.Minute))
	ctx := context.Background()

	feed.Get(ctx, "general")
	feed.Get(ctx, "general")

	assert.Equal(t, 2, provider.calls)
}

func TestFeedWithoutCache(t *testing.T) {
	provider := &stubClient{name: "NewsAPI", articles: []Article{article("Story", "https://c/1", time.Now())}}
	feed := NewFeed(NewAggregator([]NewsClient{provider}), nil)

	result, err := feed.Get(context.Background(), "general")

	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(result.Articles))
}
