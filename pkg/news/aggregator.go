package news

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const DefaultPageSize = 10

// ProviderStatus reports how one provider fared during a fetch. Err is empty
// on success.
type ProviderStatus struct {
	Name     string `json:"name"`
	Articles int    `json:"articles"`
	Err      string `json:"error,omitempty"`
}

type Result struct {
	Category  string           `json:"category"`
	Articles  []Article        `json:"articles"`
	Providers []ProviderStatus `json:"providers"`
	FetchedAt time.Time        `json:"fetchedAt"`
}

// Failed reports whether every provider errored.
func (r *Result) Failed() bool {
	if len(r.Providers) == 0 {
		return false
	}
	for _, p := range r.Providers {
		if p.Err == "" {
			return false
		}
	}
	return true
}

// FetchObserver receives one call per provider fetch.
type FetchObserver interface {
	ObserveFetch(provider, outcome string, elapsed time.Duration)
}

type Option func(*Aggregator)

func WithPageSize(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.pageSize = n
		}
	}
}

func WithObserver(o FetchObserver) Option {
	return func(a *Aggregator) { a.observer = o }
}

func WithTracer(t trace.Tracer) Option {
	return func(a *Aggregator) { a.tracer = t }
}

// WithBreakerSettings overrides the circuit breaker settings used for every
// provider. Name is replaced by the provider name.
func WithBreakerSettings(st gobreaker.Settings) Option {
	return func(a *Aggregator) { a.breakerSettings = st }
}

// Aggregator fans a category request out to every provider in parallel and
// merges the results in provider order.
type Aggregator struct {
	clients         []NewsClient
	breakers        []*gobreaker.CircuitBreaker
	breakerSettings gobreaker.Settings
	pageSize        int
	observer        FetchObserver
	tracer          trace.Tracer
	now             func() time.Time
}

func NewAggregator(clients []NewsClient, opts ...Option) *Aggregator {
	a := &Aggregator{
		clients:  clients,
		pageSize: DefaultPageSize,
		tracer:   otel.Tracer("newsmentor/news"),
		now:      time.Now,
		breakerSettings: gobreaker.Settings{
			Timeout: time.Minute,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
		},
	}
	for _, opt := range opts {
		opt(a)
	}

	a.breakers = make([]*gobreaker.CircuitBreaker, len(clients))
	for i, c := range clients {
		st := a.breakerSettings
		st.Name = c.Name()
		st.OnStateChange = func(name string, from, to gobreaker.State) {
			slog.Warn("news provider circuit changed", "source", name, "from", from.String(), "to", to.String())
		}
		a.breakers[i] = gobreaker.NewCircuitBreaker(st)
	}

	return a
}

func (a *Aggregator) Providers() []string {
	names := make([]string, len(a.clients))
	for i, c := range a.clients {
		names[i] = c.Name()
	}
	return names
}

// Fetch never fails as a whole: a provider error yields zero articles from
// that provider and is recorded in the returned statuses.
func (a *Aggregator) Fetch(ctx context.Context, category string) *Result {
	ctx, span := a.tracer.Start(ctx, "news.aggregate", trace.WithAttributes(attribute.String("news.category", category)))
	defer span.End()

	batches := make([][]Article, len(a.clients))
	statuses := make([]ProviderStatus, len(a.clients))

	var wg sync.WaitGroup
	for i := range a.clients {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			batches[i], statuses[i] = a.fetchOne(ctx, i, category)
		}(i)
	}
	wg.Wait()

	articles := Merge(category, batches...)
	span.SetAttributes(attribute.Int("news.articles", len(articles)))

	return &Result{
		Category:  category,
		Articles:  articles,
		Providers: statuses,
		FetchedAt: a.now().UTC(),
	}
}

func (a *Aggregator) fetchOne(ctx context.Context, i int, category string) ([]Article, ProviderStatus) {
	client := a.clients[i]
	status := ProviderStatus{Name: client.Name()}

	ctx, span := a.tracer.Start(ctx, "news.provider", trace.WithAttributes(
		attribute.String("news.provider", client.Name()),
		attribute.String("news.category", category),
	))
	defer span.End()

	start := time.Now()
	out, err := a.breakers[i].Execute(func() (interface{}, error) {
		return client.Fetch(ctx, category, a.pageSize)
	})
	elapsed := time.Since(start)

	if err != nil {
		slog.Error("error fetching articles", "source", client.Name(), "category", category, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		status.Err = err.Error()
		a.observe(client.Name(), "error", elapsed)
		return nil, status
	}

	articles, _ := out.([]Article)
	status.Articles = len(articles)
	a.observe(client.Name(), "ok", elapsed)

	return articles, status
}

func (a *Aggregator) observe(provider, outcome string, elapsed time.Duration) {
	if a.observer != nil {
		a.observer.ObserveFetch(provider, outcome, elapsed)
	}
}
