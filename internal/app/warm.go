package app

import (
	"context"
	"log/slog"

	"newsmentor/internal/model"
	"newsmentor/pkg/news"
)

type Refresher interface {
	Refresh(ctx context.Context, category string) (*news.Result, error)
}

// RefreshAll fetches every category once and returns how many came back
// with all providers failing. Those categories keep their previous cache
// entry.
func RefreshAll(ctx context.Context, feed Refresher) int {
	failed := 0
	for _, c := range model.Categories {
		if ctx.Err() != nil {
			break
		}

		result, err := feed.Refresh(ctx, c.ID)
		if err != nil {
			slog.Error("error refreshing category", "category", c.ID, "error", err)
			failed++
			continue
		}

		for _, p := range result.Providers {
			if p.Err != "" {
				slog.Warn("provider failed", "category", c.ID, "provider", p.Name, "error", p.Err)
			}
		}
		if result.Failed() {
			failed++
			continue
		}

		slog.Info("category refreshed", "category", c.ID, "articles", len(result.Articles), "providers", len(result.Providers))
	}
	return failed
}
