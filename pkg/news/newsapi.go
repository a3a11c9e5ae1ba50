package news

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

type NewsAPIClient struct {
	apiKey     string
	httpClient *http.Client
}

func NewNewsAPIClient(apiKey string) *NewsAPIClient {
	return &NewsAPIClient{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *NewsAPIClient) Name() string {
	return "NewsAPI"
}

func (c *NewsAPIClient) Fetch(ctx context.Context, category string, limit int) ([]Article, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("newsapi fetch: NEWS_API_KEY is not defined")
	}

	endpoint := fmt.Sprintf(
		"https://newsapi.org/v2/top-headlines?country=us&category=%s&pageSize=%d&apiKey=%s",
		url.QueryEscape(category), limit, url.QueryEscape(c.apiKey),
	)

	var raw newsAPIResponse
	if err := getJSON(ctx, c.httpClient, endpoint, &raw); err != nil {
		return nil, fmt.Errorf("newsapi fetch: %w", err)
	}

	if raw.Status == "error" {
		return nil, fmt.Errorf("newsapi fetch: %s: %s", raw.Code, raw.Message)
	}

	articles := make([]Article, 0, len(raw.Articles))
	for _, item := range raw.Articles {
		source := Source{ID: "newsapi", Name: "News API"}
		if item.Source.ID != "" {
			source.ID = item.Source.ID
		}
		if item.Source.Name != "" {
			source.Name = item.Source.Name
		}

		articles = append(articles, Article{
			Source:      source,
			Author:      item.Author,
			Title:       item.Title,
			Description: item.Description,
			URL:         item.URL,
			ImageURL:    item.URLToImage,
			PublishedAt: parseTime(time.RFC3339, item.PublishedAt),
			Content:     item.Content,
			Category:    category,
		})
	}

	return articles, nil
}

type newsAPIResponse struct {
	Status   string           `json:"status"`
	Code     string           `json:"code"`
	Message  string           `json:"message"`
	Articles []newsAPIArticle `json:"articles"`
}

type newsAPIArticle struct {
	Source      newsAPISource `json:"source"`
	Author      string        `json:"author"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	URL         string        `json:"url"`
	URLToImage  string        `json:"urlToImage"`
	PublishedAt string        `json:"publishedAt"`
	Content     string        `json:"content"`
}

type newsAPISource struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
