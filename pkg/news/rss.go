package news

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// RSSClient reads one feed URL per category.
type RSSClient struct {
	feeds      map[string][]string
	httpClient *http.Client
	parser     *gofeed.Parser
}

func NewRSSClient(feeds map[string][]string) *RSSClient {
	return &RSSClient{
		feeds:      feeds,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		parser:     gofeed.NewParser(),
	}
}

func (c *RSSClient) Name() string {
	return "RSS"
}

func (c *RSSClient) Fetch(ctx context.Context, category string, limit int) ([]Article, error) {
	urls := c.feeds[category]
	if len(urls) == 0 {
		return nil, nil
	}

	var articles []Article
	for _, feedURL := range urls {
		feed, err := c.load(ctx, feedURL)
		if err != nil {
			return articles, fmt.Errorf("rss fetch %s: %w", feedURL, err)
		}

		for i, item := range feed.Items {
			if i == limit {
				break
			}
			articles = append(articles, fromFeedItem(feed, item, category))
		}
	}

	return articles, nil
}

func (c *RSSClient) load(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return c.parser.Parse(resp.Body)
}

func fromFeedItem(feed *gofeed.Feed, item *gofeed.Item, category string) Article {
	a := Article{
		Source:      Source{ID: "rss", Name: strings.TrimSpace(feed.Title)},
		Title:       strings.TrimSpace(item.Title),
		Description: plainText(item.Description),
		URL:         item.Link,
		Content:     plainText(item.Content),
		Category:    category,
	}

	if a.Content == "" {
		a.Content = a.Description
	}

	if len(item.Authors) > 0 && item.Authors[0] != nil {
		a.Author = item.Authors[0].Name
	}

	if item.Image != nil {
		a.ImageURL = item.Image.URL
	}

	switch {
	case item.PublishedParsed != nil:
		a.PublishedAt = *item.PublishedParsed
	case item.UpdatedParsed != nil:
		a.PublishedAt = *item.UpdatedParsed
	}

	return a
}
