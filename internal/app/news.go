// Package app builds the shared components of the api and fetcher binaries
// from configuration.
package app

import (
	"log/slog"

	"github.com/redis/go-redis/v9"

	"newsmentor/internal/config"
	"newsmentor/pkg/news"
)

// NewsClients returns a client for every provider that has credentials, in
// fetch order.
func NewsClients(cfg *config.Config) []news.NewsClient {
	var clients []news.NewsClient
	if cfg.NewsAPIKey != "" {
		clients = append(clients, news.NewNewsAPIClient(cfg.NewsAPIKey))
	}
	if cfg.GuardianAPIKey != "" {
		clients = append(clients, news.NewGuardianClient(cfg.GuardianAPIKey))
	}
	if cfg.MediaStackAPIKey != "" {
		clients = append(clients, news.NewMediaStackClient(cfg.MediaStackAPIKey))
	}
	if cfg.FinnHubAPIKey != "" {
		clients = append(clients, news.NewFinnHubClient(cfg.FinnHubAPIKey))
	}
	if len(cfg.RSSFeeds) > 0 {
		clients = append(clients, news.NewRSSClient(cfg.RSSFeeds))
	}
	return clients
}

// NewsFeed wires the aggregator to the Redis cache. A nil client disables
// caching.
func NewsFeed(cfg *config.Config, rdb *redis.Client, observer news.FetchObserver) *news.Feed {
	clients := NewsClients(cfg)
	if len(clients) == 0 {
		slog.Warn("no news providers configured")
	}

	names := make([]string, 0, len(clients))
	for _, c := range clients {
		names = append(names, c.Name())
	}
	slog.Info("news providers", "providers", names)

	opts := []news.Option{news.WithPageSize(cfg.NewsPageSize)}
	if observer != nil {
		opts = append(opts, news.WithObserver(observer))
	}
	aggregator := news.NewAggregator(clients, opts...)

	var cache news.Cache
	if rdb != nil {
		cache = news.NewRedisCache(rdb, cfg.NewsCacheTTL)
	}
	return news.NewFeed(aggregator, cache)
}
