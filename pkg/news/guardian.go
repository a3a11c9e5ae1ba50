package news

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const guardianDescriptionChars = 200

var guardianSections = map[string]string{
	"general":    "news",
	"business":   "business",
	"technology": "technology",
	"science":    "science",
	"health":     "healthcare",
}

type GuardianClient struct {
	apiKey     string
	httpClient *http.Client
}

func NewGuardianClient(apiKey string) *GuardianClient {
	return &GuardianClient{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *GuardianClient) Name() string {
	return "Guardian"
}

func (c *GuardianClient) Fetch(ctx context.Context, category string, limit int) ([]Article, error) {
	section, ok := guardianSections[category]
	if !ok {
		return nil, fmt.Errorf("guardian fetch: no section for category %q", category)
	}

	endpoint := fmt.Sprintf(
		"https://content.guardianapis.com/search?api-key=%s&section=%s&show-fields=thumbnail,bodyText,byline&page-size=%d&order-by=newest",
		url.QueryEscape(c.apiKey), section, limit,
	)

	var raw guardianResponse
	if err := getJSON(ctx, c.httpClient, endpoint, &raw); err != nil {
		return nil, fmt.Errorf("guardian fetch: %w", err)
	}

	articles := make([]Article, 0, len(raw.Response.Results))
	for _, item := range raw.Response.Results {
		var description string
		if item.Fields.BodyText != "" {
			description = truncateRunes(item.Fields.BodyText, guardianDescriptionChars) + "..."
		}

		content := item.Fields.BodyText
		if content == "" {
			content = item.WebTitle
		}

		articles = append(articles, Article{
			Source:      Source{ID: "guardian", Name: "The Guardian"},
			Author:      item.Fields.Byline,
			Title:       item.WebTitle,
			Description: description,
			URL:         item.WebURL,
			ImageURL:    item.Fields.Thumbnail,
			PublishedAt: parseTime(time.RFC3339, item.WebPublicationDate),
			Content:     content,
			Category:    category,
		})
	}

	return articles, nil
}

type guardianResponse struct {
	Response struct {
		Status  string           `json:"status"`
		Results []guardianResult `json:"results"`
	} `json:"response"`
}

type guardianResult struct {
	WebTitle           string         `json:"webTitle"`
	WebURL             string         `json:"webUrl"`
	WebPublicationDate string         `json:"webPublicationDate"`
	Fields             guardianFields `json:"fields"`
}

type guardianFields struct {
	Thumbnail string `json:"thumbnail"`
	BodyText  string `json:"bodyText"`
	Byline    string `json:"byline"`
}
