package discussion

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
)

func TestRelayAudioChunks(t *testing.T) {
	h := newHarness()
	c := startedSession(t, h)
	assert.Equal(t, nil, c.BeginCapture(ctx))

	clip := bytes.Repeat([]byte{7}, 10)
	err := RelayAudio(ctx, c, bytes.NewReader(clip), 4, time.Millisecond)

	assert.Equal(t, nil, err)
	sent := h.transcriber.streams[0].sent
	assert.Equal(t, 3, len(sent))
	assert.Equal(t, 4, len(sent[0]))
	assert.Equal(t, 4, len(sent[1]))
	assert.Equal(t, 2, len(sent[2]))
}

func TestRelayAudioRequiresCapture(t *testing.T) {
	h := newHarness()
	c := startedSession(t, h)

	err := RelayAudio(ctx, c, bytes.NewReader([]byte{1, 2}), 4, 0)

	assert.Equal(t, true, errors.Is(err, ErrInvalidState))
}

func TestRelayAudioCanceled(t *testing.T) {
	h := newHarness()
	c := startedSession(t, h)
	assert.Equal(t, nil, c.BeginCapture(ctx))

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	err := RelayAudio(cctx, c, bytes.NewReader(make([]byte, 64)), 8, time.Hour)

	assert.Equal(t, true, errors.Is(err, context.Canceled))
	assert.Equal(t, 1, len(h.transcriber.streams[0].sent))
}
