package discussion

import (
	"context"

	"newsmentor/internal/model"
	"newsmentor/pkg/llm"
)

type Generator interface {
	GenerateDiscussion(ctx context.Context, text string) (*llm.Discussion, error)
	EvaluateResponse(ctx context.Context, in llm.EvaluationInput) (*llm.Evaluation, error)
}

type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// TranscriptStream is one live transcription connection. Transcripts must be
// closed once the stream ends, including after Close.
type TranscriptStream interface {
	Send(chunk []byte) error
	Transcripts() <-chan string
	Finish(ctx context.Context) error
	Close() error
	Err() error
}

type Transcriber interface {
	Open(ctx context.Context) (TranscriptStream, error)
}

type TranscriberFunc func(ctx context.Context) (TranscriptStream, error)

func (f TranscriberFunc) Open(ctx context.Context) (TranscriptStream, error) {
	return f(ctx)
}

type Archive interface {
	SaveDiscussion(ctx context.Context, summary *model.DiscussionSummary) error
}

type ClipStore interface {
	Put(ctx context.Context, clip []byte) (string, error)
}

// Observer receives the outcome of every discussion operation.
type Observer interface {
	ObserveTurn(operation, outcome string)
}

// Deps are the collaborators shared by every coordinator. Transcriber and
// Archive may be nil: capture is then unavailable and flushing is a no-op.
type Deps struct {
	Generator   Generator
	Synthesizer Synthesizer
	Transcriber Transcriber
	Archive     Archive
	Clips       ClipStore
	Observer    Observer
}
