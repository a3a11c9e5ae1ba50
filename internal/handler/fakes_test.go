package handler

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"

	"newsmentor/internal/audio"
	"newsmentor/internal/discussion"
	"newsmentor/internal/middleware"
	"newsmentor/internal/model"
	"newsmentor/pkg/llm"
)

var errUpstream = errors.New("upstream unavailable")

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine() *gin.Engine {
	r := gin.New()
	r.Use(middleware.NewAuthenticator("").Subject())
	return r
}

type fakeGenerator struct {
	evaluateErr error
	evaluated   []llm.EvaluationInput
}

func (g *fakeGenerator) GenerateDiscussion(ctx context.Context, text string) (*llm.Discussion, error) {
	return &llm.Discussion{Discussion: "Rates held steady.", Question: "Why did the Fed wait?"}, nil
}

func (g *fakeGenerator) EvaluateResponse(ctx context.Context, in llm.EvaluationInput) (*llm.Evaluation, error) {
	if g.evaluateErr != nil {
		return nil, g.evaluateErr
	}
	g.evaluated = append(g.evaluated, in)
	return &llm.Evaluation{Acknowledgment: "Good point.", FollowUpQuestion: "What about jobs?"}, nil
}

type fakeSynth struct {
	err error
}

func (s *fakeSynth) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []byte("mp3:" + text), nil
}

type fakeClips struct {
	mu    sync.Mutex
	n     int
	clips map[string][]byte
}

func (c *fakeClips) Put(ctx context.Context, clip []byte) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.clips == nil {
		c.clips = map[string][]byte{}
	}
	c.n++
	id := "clip-" + strconv.Itoa(c.n)
	c.clips[id] = clip
	return id, nil
}

func (c *fakeClips) Get(ctx context.Context, id string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	clip, ok := c.clips[id]
	if !ok {
		return nil, audio.ErrNotFound
	}
	return clip, nil
}

type fakeArchive struct {
	mu    sync.Mutex
	saved []*model.DiscussionSummary
}

func (a *fakeArchive) SaveDiscussion(ctx context.Context, s *model.DiscussionSummary) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.saved = append(a.saved, s)
	return nil
}

func (a *fakeArchive) RecentDiscussions(ctx context.Context, userID string, limit int) ([]model.DiscussionSummary, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []model.DiscussionSummary
	for i := len(a.saved) - 1; i >= 0 && len(out) < limit; i-- {
		if a.saved[i].SubjectID == userID {
			out = append(out, *a.saved[i])
		}
	}
	return out, nil
}

func (a *fakeArchive) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.saved)
}

// echoStream transcribes every audio chunk as its own bytes.
type echoStream struct {
	mu     sync.Mutex
	ch     chan string
	closed bool
}

func (s *echoStream) Send(chunk []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("stream closed")
	}
	s.ch <- string(chunk)
	return nil
}

func (s *echoStream) Transcripts() <-chan string { return s.ch }

func (s *echoStream) Finish(ctx context.Context) error {
	return s.Close()
}

func (s *echoStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
	return nil
}

func (s *echoStream) Err() error { return nil }

func echoTranscriber() discussion.Transcriber {
	return discussion.TranscriberFunc(func(ctx context.Context) (discussion.TranscriptStream, error) {
		return &echoStream{ch: make(chan string, 64)}, nil
	})
}
