package discussion

import "errors"

var (
	ErrBusy         = errors.New("another discussion operation is in progress")
	ErrInvalidState = errors.New("operation not allowed in the current discussion state")
	ErrNoText       = errors.New("no text to discuss")
	ErrNoSpeech     = errors.New("no speech detected")
	ErrNotFound     = errors.New("discussion session not found")
	ErrPlayback     = errors.New("unknown playback event")

	// ErrNotConfigured is returned by capture operations when no
	// transcription vendor is configured.
	ErrNotConfigured = errors.New("transcription is not configured")
)
