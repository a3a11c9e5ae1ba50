package news

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Science Daily</title>
  <item>
    <title>New exoplanet found</title>
    <link>https://science.example/exoplanet</link>
    <description><![CDATA[<p>Astronomers spotted <b>a planet</b>.</p>]]></description>
    <pubDate>Mon, 02 Mar 2026 10:00:00 GMT</pubDate>
  </item>
  <item>
    <title>Second story</title>
    <link>https://science.example/second</link>
    <description>Plain text</description>
    <pubDate>Mon, 02 Mar 2026 09:00:00 GMT</pubDate>
  </item>
</channel>
</rss>`

func TestRSSFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	client := NewRSSClient(map[string][]string{"science": {srv.URL + "/feed"}})

	articles, err := client.Fetch(context.Background(), "science", 1)

	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(articles))

	a := articles[0]
	assert.Equal(t, "New exoplanet found", a.Title)
	assert.Equal(t, "Astronomers spotted a planet.", a.Description)
	assert.Equal(t, a.Description, a.Content)
	assert.Equal(t, Source{ID: "rss", Name: "Science Daily"}, a.Source)
	assert.Equal(t, "https://science.example/exoplanet", a.URL)
	assert.Equal(t, time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC).Unix(), a.PublishedAt.Unix())
	assert.Equal(t, "science", a.Category)
}

func TestRSSFetchUnconfiguredCategory(t *testing.T) {
	client := NewRSSClient(map[string][]string{})

	articles, err := client.Fetch(context.Background(), "health", 10)

	assert.Equal(t, nil, err)
	assert.Equal(t, 0, len(articles))
}

func TestRSSFetchBadFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not a feed"))
	}))
	defer srv.Close()

	client := NewRSSClient(map[string][]string{"general": {srv.URL}})

	_, err := client.Fetch(context.Background(), "general", 10)

	assert.NotEqual(t, nil, err)
}
