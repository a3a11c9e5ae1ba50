package news

import (
	"context"
	"fmt"
	"strconv"
	"time"

	finnhub "github.com/Finnhub-Stock-API/finnhub-go/v2"
)

// FinnHubClient reads FinnHub market news. It only contributes to the
// business category.
type FinnHubClient struct {
	client *finnhub.DefaultApiService
}

func NewFinnHubClient(apiKey string) *FinnHubClient {
	cfg := finnhub.NewConfiguration()
	cfg.AddDefaultHeader("X-Finnhub-Token", apiKey)
	client := finnhub.NewAPIClient(cfg).DefaultApi
	return &FinnHubClient{client: client}
}

func (c *FinnHubClient) Fetch(ctx context.Context, category string, limit int) ([]Article, error) {
	if category != "business" {
		return nil, nil
	}

	res, _, err := c.client.MarketNews(ctx).Category("general").Execute()
	if err != nil {
		return nil, fmt.Errorf("finnhub fetch: %w", err)
	}

	articles := make([]Article, 0, limit)
	for _, item := range res {
		if len(articles) == limit {
			break
		}
		articles = append(articles, fromMarketNews(item, category))
	}

	return articles, nil
}

func (c *FinnHubClient) Name() string {
	return "FinnHub"
}

func fromMarketNews(item finnhub.MarketNews, category string) Article {
	a := Article{
		Source:   Source{ID: "finnhub", Name: "FinnHub"},
		Category: category,
	}

	if item.Source != nil && *item.Source != "" {
		a.Source.Name = *item.Source
	}

	if item.Headline != nil {
		a.Title = *item.Headline
	}

	if item.Summary != nil {
		a.Description = *item.Summary
		a.Content = *item.Summary
	}

	if item.Url != nil {
		a.URL = *item.Url
	}

	if item.Image != nil {
		a.ImageURL = *item.Image
	}

	if item.Datetime != nil {
		a.PublishedAt = time.Unix(*item.Datetime, 0)
	}

	if a.URL == "" && item.Id != nil {
		a.URL = "finnhub:" + strconv.FormatInt(*item.Id, 10)
	}

	return a
}
