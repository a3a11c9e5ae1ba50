package news

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type MediaStackClient struct {
	apiKey     string
	httpClient *http.Client
}

func NewMediaStackClient(apiKey string) *MediaStackClient {
	return &MediaStackClient{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *MediaStackClient) Name() string {
	return "MediaStack"
}

func (c *MediaStackClient) Fetch(ctx context.Context, category string, limit int) ([]Article, error) {
	endpoint := fmt.Sprintf(
		"http://api.mediastack.com/v1/news?access_key=%s&countries=us&categories=%s&limit=%d&sort=published_desc",
		url.QueryEscape(c.apiKey), url.QueryEscape(category), limit,
	)

	var raw mediaStackResponse
	if err := getJSON(ctx, c.httpClient, endpoint, &raw); err != nil {
		return nil, fmt.Errorf("mediastack fetch: %w", err)
	}

	if raw.Error != nil {
		return nil, fmt.Errorf("mediastack fetch: %s: %s", raw.Error.Code, raw.Error.Message)
	}

	articles := make([]Article, 0, len(raw.Data))
	for _, item := range raw.Data {
		if strings.Contains(item.Title, "[Removed]") {
			continue
		}

		name := item.Source
		if name == "" {
			name = "MediaStack"
		}

		articles = append(articles, Article{
			Source:      Source{ID: "mediastack", Name: name},
			Author:      item.Author,
			Title:       item.Title,
			Description: item.Description,
			URL:         item.URL,
			ImageURL:    item.Image,
			PublishedAt: parseTime(time.RFC3339, item.PublishedAt),
			Content:     item.Description,
			Category:    category,
		})
	}

	return articles, nil
}

type mediaStackResponse struct {
	Data  []mediaStackArticle `json:"data"`
	Error *mediaStackError    `json:"error"`
}

type mediaStackArticle struct {
	Author      string `json:"author"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Source      string `json:"source"`
	Image       string `json:"image"`
	PublishedAt string `json:"published_at"`
}

type mediaStackError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
