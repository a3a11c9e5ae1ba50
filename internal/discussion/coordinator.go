package discussion

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"newsmentor/internal/model"
	"newsmentor/internal/transcript"
	"newsmentor/pkg/llm"
)

type State string

const (
	StateIdle               State = "idle"
	StateGenerating         State = "generating"
	StateSpeaking           State = "speaking"
	StateAwaitingUserSpeech State = "awaiting_user_speech"
	StateTranscribing       State = "transcribing"
	StateProcessing         State = "processing"
)

type PlaybackEvent string

const (
	PlaybackEnded   PlaybackEvent = "ended"
	PlaybackPaused  PlaybackEvent = "paused"
	PlaybackResumed PlaybackEvent = "resumed"
)

const (
	topicPrefixChars     = 100
	defaultFinishTimeout = 5 * time.Second
)

// Source is the text a discussion starts from. A non-blank Highlight takes
// precedence over Article.
type Source struct {
	Article   string
	Highlight string
}

// Turn is the spoken output of Start, StopCapture or Submit.
type Turn struct {
	Discussion     string `json:"discussion,omitempty"`
	Transcript     string `json:"transcript,omitempty"`
	Acknowledgment string `json:"acknowledgment,omitempty"`
	Question       string `json:"question"`
	AudioID        string `json:"audio_id"`
}

type Snapshot struct {
	ID         string                    `json:"id"`
	State      State                     `json:"state"`
	Topic      string                    `json:"topic"`
	Entries    []model.ConversationEntry `json:"entries"`
	Transcript string                    `json:"transcript"`
	Playing    bool                      `json:"playing"`
	AudioID    string                    `json:"audio_id,omitempty"`
}

type CaptureOption func(*captureConfig)

type captureConfig struct {
	onTranscript func(current string)
}

// OnTranscript registers a callback invoked with the cleaned transcript each
// time a fragment arrives.
func OnTranscript(fn func(current string)) CaptureOption {
	return func(c *captureConfig) { c.onTranscript = fn }
}

// Coordinator drives one discussion session through its turn states. Turn
// operations that find another one in flight fail with ErrBusy; Reset waits
// for it. Vendor calls are detached from the caller's context once issued.
type Coordinator struct {
	id            string
	subjectID     string
	deps          Deps
	now           func() time.Time
	finishTimeout time.Duration

	// op serializes Start, BeginCapture, StopCapture, Submit and Reset.
	op sync.Mutex

	mu           sync.Mutex
	state        State
	topic        string
	context      string
	entries      []model.ConversationEntry
	playing      bool
	audioID      string
	buffer       *transcript.Buffer
	stream       TranscriptStream
	consumerDone chan struct{}
	lastActive   time.Time
	disposed     bool
}

func newCoordinator(id, subjectID string, deps Deps, now func() time.Time, finishTimeout time.Duration) *Coordinator {
	return &Coordinator{
		id:            id,
		subjectID:     subjectID,
		deps:          deps,
		now:           now,
		finishTimeout: finishTimeout,
		state:         StateIdle,
		buffer:        &transcript.Buffer{},
		lastActive:    now(),
	}
}

func (c *Coordinator) ID() string { return c.id }

func (c *Coordinator) SubjectID() string { return c.subjectID }

func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Coordinator) touch() {
	c.mu.Lock()
	c.lastActive = c.now()
	c.mu.Unlock()
}

// LastActive is the last time the session was looked up or received audio.
func (c *Coordinator) LastActive() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastActive
}

func (c *Coordinator) isDisposed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disposed
}

// Start begins a new discussion. A session with entries is archived and
// cleared first. The question entry is only recorded once its audio is
// stored; on any failure the session is left Idle with no new entry.
func (c *Coordinator) Start(ctx context.Context, src Source) (*Turn, error) {
	if !c.op.TryLock() {
		return nil, ErrBusy
	}
	defer c.op.Unlock()
	if c.isDisposed() {
		return nil, ErrNotFound
	}
	ctx = context.WithoutCancel(ctx)

	text := strings.TrimSpace(src.Highlight)
	if text == "" {
		text = strings.TrimSpace(src.Article)
	}
	if text == "" {
		return nil, ErrNoText
	}

	c.mu.Lock()
	state := c.state
	c.mu.Unlock()
	switch state {
	case StateIdle, StateAwaitingUserSpeech, StateSpeaking:
	default:
		return nil, fmt.Errorf("start in state %s: %w", state, ErrInvalidState)
	}

	if err := c.flush(ctx); err != nil {
		c.observe("start", "error")
		return nil, err
	}

	c.mu.Lock()
	c.clearLocked()
	c.state = StateGenerating
	c.mu.Unlock()

	turn, err := c.open(ctx, text)
	if err != nil {
		slog.Error("error starting discussion", "session", c.id, "error", err)
		c.mu.Lock()
		c.state = StateIdle
		c.mu.Unlock()
		c.observe("start", "error")
		return nil, err
	}

	c.mu.Lock()
	c.topic = topicFor(src)
	c.context = text
	c.entries = append(c.entries, c.entry(model.EntryQuestion, turn.Question))
	c.audioID = turn.AudioID
	c.playing = true
	c.state = StateSpeaking
	c.mu.Unlock()

	c.observe("start", "ok")
	return turn, nil
}

func (c *Coordinator) open(ctx context.Context, text string) (*Turn, error) {
	d, err := c.deps.Generator.GenerateDiscussion(ctx, text)
	if err != nil {
		return nil, err
	}

	audioID, err := c.speak(ctx, d.Discussion+" Here's your question: "+d.Question)
	if err != nil {
		return nil, err
	}

	return &Turn{Discussion: d.Discussion, Question: d.Question, AudioID: audioID}, nil
}

// BeginCapture opens a live transcription stream for the user's answer.
func (c *Coordinator) BeginCapture(ctx context.Context, opts ...CaptureOption) error {
	if !c.op.TryLock() {
		return ErrBusy
	}
	defer c.op.Unlock()
	if c.isDisposed() {
		return ErrNotFound
	}

	if c.deps.Transcriber == nil {
		return ErrNotConfigured
	}

	var cfg captureConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	c.mu.Lock()
	state := c.state
	c.mu.Unlock()
	switch state {
	case StateAwaitingUserSpeech:
	case StateSpeaking:
		return ErrBusy
	default:
		return fmt.Errorf("capture in state %s: %w", state, ErrInvalidState)
	}

	c.buffer.Reset()
	stream, err := c.deps.Transcriber.Open(context.WithoutCancel(ctx))
	if err != nil {
		slog.Error("error opening transcription stream", "session", c.id, "error", err)
		c.observe("capture", "error")
		return err
	}

	done := make(chan struct{})
	go c.consume(stream, done, cfg.onTranscript)

	c.mu.Lock()
	c.stream = stream
	c.consumerDone = done
	c.state = StateTranscribing
	c.mu.Unlock()

	return nil
}

func (c *Coordinator) consume(stream TranscriptStream, done chan struct{}, onTranscript func(string)) {
	defer close(done)
	for fragment := range stream.Transcripts() {
		c.buffer.Append(fragment)
		if onTranscript != nil {
			onTranscript(c.buffer.Current())
		}
	}
}

// Relay forwards one audio chunk to the open stream. Chunks sent after the
// stream failed are dropped so the text gathered so far is kept.
func (c *Coordinator) Relay(chunk []byte) error {
	c.mu.Lock()
	state, stream := c.state, c.stream
	c.lastActive = c.now()
	c.mu.Unlock()

	if state != StateTranscribing || stream == nil {
		return fmt.Errorf("relay in state %s: %w", state, ErrInvalidState)
	}

	if err := stream.Send(chunk); err != nil {
		slog.Debug("dropping audio chunk", "session", c.id, "error", err)
	}
	return nil
}

// StopCapture ends the stream, waits a bounded time for trailing fragments
// and answers with whatever transcript was gathered.
func (c *Coordinator) StopCapture(ctx context.Context) (*Turn, error) {
	if !c.op.TryLock() {
		return nil, ErrBusy
	}
	defer c.op.Unlock()
	if c.isDisposed() {
		return nil, ErrNotFound
	}
	ctx = context.WithoutCancel(ctx)

	c.mu.Lock()
	if c.state != StateTranscribing {
		state := c.state
		c.mu.Unlock()
		return nil, fmt.Errorf("stop capture in state %s: %w", state, ErrInvalidState)
	}
	c.state = StateProcessing
	c.mu.Unlock()

	c.endCapture(ctx, true)

	return c.processTurn(ctx, c.buffer.Current())
}

// AbortCapture drops an open capture without answering. The transcript
// gathered so far stays readable through Snapshot.
func (c *Coordinator) AbortCapture(ctx context.Context) {
	c.op.Lock()
	defer c.op.Unlock()

	if c.State() != StateTranscribing {
		return
	}

	c.endCapture(context.WithoutCancel(ctx), false)
	c.setState(StateAwaitingUserSpeech)
	c.observe("capture", "aborted")
}

// Submit answers the current question with text instead of audio.
func (c *Coordinator) Submit(ctx context.Context, text string) (*Turn, error) {
	if !c.op.TryLock() {
		return nil, ErrBusy
	}
	defer c.op.Unlock()
	if c.isDisposed() {
		return nil, ErrNotFound
	}
	ctx = context.WithoutCancel(ctx)

	c.mu.Lock()
	switch c.state {
	case StateAwaitingUserSpeech:
	case StateSpeaking:
		c.mu.Unlock()
		return nil, ErrBusy
	default:
		state := c.state
		c.mu.Unlock()
		return nil, fmt.Errorf("submit in state %s: %w", state, ErrInvalidState)
	}
	c.state = StateProcessing
	c.mu.Unlock()

	return c.processTurn(ctx, transcript.Clean(text))
}

func (c *Coordinator) processTurn(ctx context.Context, answer string) (*Turn, error) {
	if answer == "" {
		c.setState(StateAwaitingUserSpeech)
		c.observe("turn", "no_speech")
		return nil, ErrNoSpeech
	}

	c.mu.Lock()
	in := llm.EvaluationInput{
		Question: c.lastQuestionLocked(),
		Response: answer,
		Context:  c.context,
	}
	c.mu.Unlock()

	turn, err := c.evaluate(ctx, in)
	if err != nil {
		slog.Error("error processing discussion turn", "session", c.id, "error", err)
		c.setState(StateAwaitingUserSpeech)
		c.observe("turn", "error")
		return nil, err
	}

	c.mu.Lock()
	c.entries = append(c.entries,
		c.entry(model.EntryResponse, answer),
		c.entry(model.EntryAcknowledgment, turn.Acknowledgment),
		c.entry(model.EntryQuestion, turn.Question),
	)
	c.audioID = turn.AudioID
	c.playing = true
	c.state = StateSpeaking
	c.mu.Unlock()

	c.observe("turn", "ok")
	return turn, nil
}

func (c *Coordinator) evaluate(ctx context.Context, in llm.EvaluationInput) (*Turn, error) {
	e, err := c.deps.Generator.EvaluateResponse(ctx, in)
	if err != nil {
		return nil, err
	}

	audioID, err := c.speak(ctx, e.Acknowledgment+" "+e.FollowUpQuestion)
	if err != nil {
		return nil, err
	}

	return &Turn{
		Transcript:     in.Response,
		Acknowledgment: e.Acknowledgment,
		Question:       e.FollowUpQuestion,
		AudioID:        audioID,
	}, nil
}

func (c *Coordinator) speak(ctx context.Context, text string) (string, error) {
	clip, err := c.deps.Synthesizer.Synthesize(ctx, text)
	if err != nil {
		return "", err
	}
	id, err := c.deps.Clips.Put(ctx, clip)
	if err != nil {
		return "", fmt.Errorf("store audio clip: %w", err)
	}
	return id, nil
}

// Playback records a player event. Any event while Speaking hands the turn
// to the user; the conversation log is never touched. Events are only
// accepted while a clip exists, that is while Speaking or
// AwaitingUserSpeech.
func (c *Coordinator) Playback(event PlaybackEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch event {
	case PlaybackEnded, PlaybackPaused, PlaybackResumed:
	default:
		return fmt.Errorf("%w: %q", ErrPlayback, event)
	}
	if c.state != StateSpeaking && c.state != StateAwaitingUserSpeech {
		return fmt.Errorf("playback in state %s: %w", c.state, ErrInvalidState)
	}

	switch event {
	case PlaybackEnded, PlaybackPaused:
		c.playing = false
	case PlaybackResumed:
		c.playing = true
	}

	if c.state == StateSpeaking {
		c.state = StateAwaitingUserSpeech
	}
	return nil
}

// Reset aborts any capture, archives the session if it has entries and
// returns to Idle. It waits for an in-flight operation to finish. If
// archiving fails the entries are kept.
func (c *Coordinator) Reset(ctx context.Context) error {
	return c.reset(ctx, false)
}

// dispose resets the session and marks it unusable so a turn queued behind
// the reset cannot record entries that would never be archived.
func (c *Coordinator) dispose(ctx context.Context) error {
	return c.reset(ctx, true)
}

func (c *Coordinator) reset(ctx context.Context, dispose bool) error {
	c.op.Lock()
	defer c.op.Unlock()
	ctx = context.WithoutCancel(ctx)

	c.endCapture(ctx, false)

	if err := c.flush(ctx); err != nil {
		c.mu.Lock()
		if c.state == StateTranscribing {
			c.state = StateAwaitingUserSpeech
		}
		c.mu.Unlock()
		c.observe("reset", "error")
		return err
	}

	c.mu.Lock()
	c.clearLocked()
	c.state = StateIdle
	c.disposed = dispose
	c.mu.Unlock()

	c.observe("reset", "ok")
	return nil
}

func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries := make([]model.ConversationEntry, len(c.entries))
	copy(entries, c.entries)

	return Snapshot{
		ID:         c.id,
		State:      c.state,
		Topic:      c.topic,
		Entries:    entries,
		Transcript: c.buffer.Current(),
		Playing:    c.playing,
		AudioID:    c.audioID,
	}
}

// endCapture finishes or aborts the open stream and waits for the consumer.
func (c *Coordinator) endCapture(ctx context.Context, graceful bool) {
	c.mu.Lock()
	stream, done := c.stream, c.consumerDone
	c.stream, c.consumerDone = nil, nil
	c.mu.Unlock()

	if stream == nil {
		return
	}

	finishCtx, cancel := context.WithTimeout(ctx, c.finishTimeout)
	defer cancel()

	if graceful {
		if err := stream.Finish(finishCtx); err != nil {
			slog.Warn("transcription stream did not finish cleanly", "session", c.id, "error", err)
		}
	}
	if err := stream.Close(); err != nil {
		slog.Debug("error closing transcription stream", "session", c.id, "error", err)
	}
	if err := stream.Err(); err != nil {
		slog.Warn("transcription stream failed", "session", c.id, "error", err)
	}

	select {
	case <-done:
	case <-finishCtx.Done():
		slog.Warn("timed out waiting for transcripts", "session", c.id)
	}
}

// flush archives the session if it has entries.
func (c *Coordinator) flush(ctx context.Context) error {
	c.mu.Lock()
	if len(c.entries) == 0 {
		c.mu.Unlock()
		return nil
	}
	entries := make([]model.ConversationEntry, len(c.entries))
	copy(entries, c.entries)
	summary := &model.DiscussionSummary{
		SubjectID:     c.subjectID,
		Topic:         c.topic,
		Entries:       entries,
		ExchangeCount: model.CountExchanges(entries),
		CreatedAt:     c.now().UTC(),
	}
	c.mu.Unlock()

	if c.deps.Archive == nil {
		return nil
	}
	if err := c.deps.Archive.SaveDiscussion(ctx, summary); err != nil {
		slog.Error("error archiving discussion", "session", c.id, "error", err)
		return fmt.Errorf("archive discussion: %w", err)
	}
	return nil
}

func (c *Coordinator) clearLocked() {
	c.entries = nil
	c.topic = ""
	c.context = ""
	c.playing = false
	c.audioID = ""
	c.buffer.Reset()
}

func (c *Coordinator) lastQuestionLocked() string {
	for i := len(c.entries) - 1; i >= 0; i-- {
		if c.entries[i].Kind == model.EntryQuestion {
			return c.entries[i].Text
		}
	}
	return ""
}

func (c *Coordinator) entry(kind model.EntryKind, text string) model.ConversationEntry {
	return model.ConversationEntry{Kind: kind, Text: text, OccurredAt: c.now().UTC()}
}

func (c *Coordinator) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *Coordinator) observe(operation, outcome string) {
	if c.deps.Observer != nil {
		c.deps.Observer.ObserveTurn(operation, outcome)
	}
}

func topicFor(src Source) string {
	if h := strings.TrimSpace(src.Highlight); h != "" {
		return h
	}
	runes := []rune(strings.TrimSpace(src.Article))
	if len(runes) > topicPrefixChars {
		runes = runes[:topicPrefixChars]
	}
	return string(runes) + "..."
}
