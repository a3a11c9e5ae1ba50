package news

import (
	"context"
	"testing"

	finnhub "github.com/Finnhub-Stock-API/finnhub-go/v2"
	"github.com/go-playground/assert/v2"
)

func TestFromMarketNews(t *testing.T) {
	id := int64(7)
	headline := "Chipmaker shares jump"
	summary := "Shares rose after earnings."
	url := "https://example.com/chips"
	source := "CNBC"
	image := "https://example.com/chips.png"
	datetime := int64(1767225600)

	a := fromMarketNews(finnhub.MarketNews{
		Id:       &id,
		Headline: &headline,
		Summary:  &summary,
		Url:      &url,
		Source:   &source,
		Image:    &image,
		Datetime: &datetime,
	}, "business")

	assert.Equal(t, headline, a.Title)
	assert.Equal(t, summary, a.Description)
	assert.Equal(t, url, a.URL)
	assert.Equal(t, Source{ID: "finnhub", Name: "CNBC"}, a.Source)
	assert.Equal(t, image, a.ImageURL)
	assert.Equal(t, datetime, a.PublishedAt.Unix())
	assert.Equal(t, "business", a.Category)
}

func TestFinnHubSkipsOtherCategories(t *testing.T) {
	client := NewFinnHubClient("test-key")

	articles, err := client.Fetch(context.Background(), "science", 10)

	assert.Equal(t, nil, err)
	assert.Equal(t, 0, len(articles))
}
