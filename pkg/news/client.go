package news

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type Source struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Article struct {
	Source      Source    `json:"source"`
	Author      string    `json:"author,omitempty"`
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description" validate:"required"`
	URL         string    `json:"url" validate:"required"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	PublishedAt time.Time `json:"publishedAt" validate:"required"`
	Content     string    `json:"content"`
	Category    string    `json:"category"`
}

type NewsClient interface {
	Fetch(ctx context.Context, category string, limit int) ([]Article, error)
	Name() string
}

func getJSON(ctx context.Context, httpClient *http.Client, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// parseTime returns the zero time for unparseable input; such articles are
// dropped during the merge.
func parseTime(layout, value string) time.Time {
	t, err := time.Parse(layout, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
