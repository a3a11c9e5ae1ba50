package discussion

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"newsmentor/internal/model"
	"newsmentor/pkg/llm"
)

type fakeGenerator struct {
	mu          sync.Mutex
	discussion  *llm.Discussion
	discussErr  error
	evaluation  *llm.Evaluation
	evaluateErr error
	block       chan struct{}
	started     chan struct{}

	discussCalls  int
	evaluateCalls []llm.EvaluationInput
}

func newFakeGenerator() *fakeGenerator {
	return &fakeGenerator{
		discussion: &llm.Discussion{Discussion: "Rates held steady.", Question: "Why did the Fed wait?"},
		evaluation: &llm.Evaluation{Acknowledgment: "Good point on inflation.", FollowUpQuestion: "What about jobs?"},
	}
}

func (g *fakeGenerator) wait() {
	if g.started != nil {
		g.started <- struct{}{}
	}
	if g.block != nil {
		<-g.block
	}
}

func (g *fakeGenerator) GenerateDiscussion(ctx context.Context, text string) (*llm.Discussion, error) {
	g.wait()
	g.mu.Lock()
	defer g.mu.Unlock()
	g.discussCalls++
	if g.discussErr != nil {
		return nil, g.discussErr
	}
	return g.discussion, nil
}

func (g *fakeGenerator) EvaluateResponse(ctx context.Context, in llm.EvaluationInput) (*llm.Evaluation, error) {
	g.wait()
	g.mu.Lock()
	defer g.mu.Unlock()
	g.evaluateCalls = append(g.evaluateCalls, in)
	if g.evaluateErr != nil {
		return nil, g.evaluateErr
	}
	return g.evaluation, nil
}

type fakeSynth struct {
	mu    sync.Mutex
	err   error
	texts []string
}

func (s *fakeSynth) Synthesize(ctx context.Context, text string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texts = append(s.texts, text)
	if s.err != nil {
		return nil, s.err
	}
	return []byte("mp3:" + text), nil
}

type fakeClips struct {
	mu    sync.Mutex
	clips map[string][]byte
	n     int
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

type fakeArchive struct {
	mu    sync.Mutex
	err   error
	saved []*model.DiscussionSummary
	calls int
}

func (a *fakeArchive) SaveDiscussion(ctx context.Context, s *model.DiscussionSummary) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	if a.err != nil {
		return a.err
	}
	a.saved = append(a.saved, s)
	return nil
}

type fakeStream struct {
	mu        sync.Mutex
	ch        chan string
	sent      [][]byte
	sendErr   error
	err       error
	trailing  []string
	finished  bool
	closeOnce sync.Once
}

func newFakeStream() *fakeStream {
	return &fakeStream{ch: make(chan string, 16)}
}

func (s *fakeStream) Send(chunk []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sendErr != nil {
		return s.sendErr
	}
	s.sent = append(s.sent, chunk)
	return nil
}

func (s *fakeStream) Transcripts() <-chan string { return s.ch }

func (s *fakeStream) Finish(ctx context.Context) error {
	s.mu.Lock()
	s.finished = true
	trailing := s.trailing
	s.mu.Unlock()

	for _, t := range trailing {
		s.ch <- t
	}
	s.Close()
	return nil
}

func (s *fakeStream) Close() error {
	s.closeOnce.Do(func() { close(s.ch) })
	return nil
}

func (s *fakeStream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

type fakeTranscriber struct {
	streams []*fakeStream
	err     error
}

func (t *fakeTranscriber) Open(ctx context.Context) (TranscriptStream, error) {
	if t.err != nil {
		return nil, t.err
	}
	s := newFakeStream()
	t.streams = append(t.streams, s)
	return s, nil
}

type harness struct {
	gen         *fakeGenerator
	synth       *fakeSynth
	clips       *fakeClips
	archive     *fakeArchive
	transcriber *fakeTranscriber
	registry    *Registry
}

var errVendor = errors.New("vendor unavailable")

func newHarness() *harness {
	h := &harness{
		gen:         newFakeGenerator(),
		synth:       &fakeSynth{},
		clips:       &fakeClips{},
		archive:     &fakeArchive{},
		transcriber: &fakeTranscriber{},
	}
	clock := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	h.registry = NewRegistry(Deps{
		Generator:   h.gen,
		Synthesizer: h.synth,
		Transcriber: h.transcriber,
		Archive:     h.archive,
		Clips:       h.clips,
	}, WithClock(func() time.Time { return clock }), WithFinishTimeout(time.Second))
	return h
}
