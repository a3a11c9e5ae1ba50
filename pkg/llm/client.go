package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrMalformedResponse is returned when a model reply cannot be parsed or is
// missing required fields.
var ErrMalformedResponse = errors.New("malformed model response")

// Completion is a single system + user prompt exchange. JSON asks the
// backend for a JSON object reply.
type Completion struct {
	System      string
	User        string
	JSON        bool
	Temperature float64
	MaxTokens   int
}

// Completer is implemented by each model vendor.
type Completer interface {
	Complete(ctx context.Context, req Completion) (string, error)
	Model() string
}

// Observer receives one call per model request.
type Observer interface {
	ObserveCall(operation, outcome string, elapsed time.Duration)
}

type Option func(*Client)

func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// Client implements the discussion and study prompts on top of a Completer.
type Client struct {
	completer Completer
	observer  Observer
	tracer    trace.Tracer
}

func New(completer Completer, opts ...Option) *Client {
	c := &Client{
		completer: completer,
		tracer:    otel.Tracer("newsmentor/llm"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Model() string {
	return c.completer.Model()
}

func (c *Client) complete(ctx context.Context, operation string, req Completion) (string, error) {
	ctx, span := c.tracer.Start(ctx, "llm."+operation, trace.WithAttributes(
		attribute.String("llm.model", c.completer.Model()),
	))
	defer span.End()

	start := time.Now()
	content, err := c.completer.Complete(ctx, req)
	outcome := "ok"
	if err != nil {
		outcome = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if c.observer != nil {
		c.observer.ObserveCall("llm."+operation, outcome, time.Since(start))
	}

	return content, err
}

// completeJSON runs a JSON completion and decodes the reply into out.
func (c *Client) completeJSON(ctx context.Context, operation string, req Completion, out any) error {
	req.JSON = true
	content, err := c.complete(ctx, operation, req)
	if err != nil {
		return err
	}

	content = cleanJSONResponse(content)
	if content == "" {
		return fmt.Errorf("%w: empty reply", ErrMalformedResponse)
	}

	if err := json.Unmarshal([]byte(content), out); err != nil {
		return fmt.Errorf("%w: %v, content: %s", ErrMalformedResponse, err, content)
	}
	return nil
}
