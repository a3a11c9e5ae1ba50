package llm

import (
	"context"
	"fmt"
	"strings"
)

const maxDiscussionInput = 4000

type Discussion struct {
	Discussion string `json:"discussion"`
	Question   string `json:"question"`
}

type EvaluationInput struct {
	Question string
	Response string
	Context  string
}

type Evaluation struct {
	Acknowledgment   string `json:"acknowledgment"`
	FollowUpQuestion string `json:"followUpQuestion"`
}

// GenerateDiscussion produces a short spoken summary of text and an opening
// question about it.
func (c *Client) GenerateDiscussion(ctx context.Context, text string) (*Discussion, error) {
	prepared := prepareText(text, maxDiscussionInput)
	if prepared == "" {
		return nil, fmt.Errorf("generate discussion: empty text")
	}

	var d Discussion
	err := c.completeJSON(ctx, "generate_discussion", Completion{
		System:      discussionPrompt,
		User:        prepared,
		Temperature: 0.7,
	}, &d)
	if err != nil {
		return nil, fmt.Errorf("generate discussion: %w", err)
	}

	d.Discussion = strings.TrimSpace(d.Discussion)
	d.Question = strings.TrimSpace(d.Question)
	if d.Discussion == "" || d.Question == "" {
		return nil, fmt.Errorf("generate discussion: %w: missing discussion or question", ErrMalformedResponse)
	}

	return &d, nil
}

// EvaluateResponse acknowledges the user's answer and asks a follow-up.
func (c *Client) EvaluateResponse(ctx context.Context, in EvaluationInput) (*Evaluation, error) {
	if in.Question == "" || in.Response == "" || in.Context == "" {
		return nil, fmt.Errorf("evaluate response: question, response and context are required")
	}

	user := fmt.Sprintf("Context: %s\n\nPrevious Question: %s\n\nUser's Response: %s",
		prepareText(in.Context, maxDiscussionInput), in.Question, in.Response)

	var e Evaluation
	err := c.completeJSON(ctx, "evaluate_response", Completion{
		System:      evaluatePrompt,
		User:        user,
		Temperature: 0.7,
	}, &e)
	if err != nil {
		return nil, fmt.Errorf("evaluate response: %w", err)
	}

	e.Acknowledgment = strings.TrimSpace(e.Acknowledgment)
	e.FollowUpQuestion = strings.TrimSpace(e.FollowUpQuestion)
	if e.Acknowledgment == "" || e.FollowUpQuestion == "" {
		return nil, fmt.Errorf("evaluate response: %w: missing acknowledgment or follow-up", ErrMalformedResponse)
	}

	return &e, nil
}

// prepareText collapses whitespace and keeps at most max runes.
func prepareText(text string, max int) string {
	cleaned := strings.Join(strings.Fields(text), " ")
	runes := []rune(cleaned)
	if len(runes) > max {
		return string(runes[:max])
	}
	return cleaned
}
