package news

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
	"github.com/sony/gobreaker"
)

type stubClient struct {
	name     string
	articles []Article
	err      error

	mu    sync.Mutex
	calls int
}

func (s *stubClient) Name() string { return s.name }

func (s *stubClient) Fetch(ctx context.Context, category string, limit int) ([]Article, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.articles, nil
}

type recordingObserver struct {
	mu       sync.Mutex
	outcomes map[string]string
}

func (r *recordingObserver) ObserveFetch(provider, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes[provider] = outcome
}

func TestAggregatorProviderFailureYieldsMergeOfOthers(t *testing.T) {
	at := time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)
	b := []Article{article("Bond yields climb", "https://b/1", at)}
	c := []Article{article("Tech rally continues", "https://c/1", at.Add(time.Hour))}

	obs := &recordingObserver{outcomes: map[string]string{}}
	agg := NewAggregator([]NewsClient{
		&stubClient{name: "A", err: errors.New("boom")},
		&stubClient{name: "B", articles: b},
		&stubClient{name: "C", articles: c},
	}, WithObserver(obs))

	result := agg.Fetch(context.Background(), "business")

	assert.Equal(t, Merge("business", b, c), result.Articles)
	assert.Equal(t, "business", result.Category)
	assert.Equal(t, 3, len(result.Providers))
	assert.Equal(t, "boom", result.Providers[0].Err)
	assert.Equal(t, 1, result.Providers[1].Articles)
	assert.Equal(t, "", result.Providers[2].Err)
	assert.Equal(t, false, result.Failed())
	assert.Equal(t, "error", obs.outcomes["A"])
	assert.Equal(t, "ok", obs.outcomes["B"])
}

func TestAggregatorPreservesProviderOrder(t *testing.T) {
	at := time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)
	agg := NewAggregator([]NewsClient{
		&stubClient{name: "MediaStack", articles: []Article{article("AI breakthroughs in 2024", "https://ms/1", at)}},
		&stubClient{name: "NewsAPI", articles: []Article{article("Breakthroughs in 2024", "https://na/1", at)}},
	})

	result := agg.Fetch(context.Background(), "technology")

	assert.Equal(t, 1, len(result.Articles))
	assert.Equal(t, "https://ms/1", result.Articles[0].URL)
}

func TestAggregatorAllFailed(t *testing.T) {
	agg := NewAggregator([]NewsClient{
		&stubClient{name: "A", err: errors.New("down")},
		&stubClient{name: "B", err: errors.New("down")},
	})

	result := agg.Fetch(context.Background(), "general")

	assert.Equal(t, 0, len(result.Articles))
	assert.Equal(t, true, result.Failed())
}

func TestAggregatorBreakerOpens(t *testing.T) {
	failing := &stubClient{name: "Flaky", err: errors.New("timeout")}
	agg := NewAggregator([]NewsClient{failing}, WithBreakerSettings(gobreaker.Settings{
		Timeout: time.Hour,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 2
		},
	}))

	for i := 0; i < 4; i++ {
		agg.Fetch(context.Background(), "general")
	}

	assert.Equal(t, 2, failing.calls)

	result := agg.Fetch(context.Background(), "general")
	assert.Equal(t, gobreaker.ErrOpenState.Error(), result.Providers[0].Err)
}

func TestAggregatorProviders(t *testing.T) {
	agg := NewAggregator([]NewsClient{&stubClient{name: "NewsAPI"}, &stubClient{name: "RSS"}})

	assert.Equal(t, []string{"NewsAPI", "RSS"}, agg.Providers())
}
