package discussion

import (
	"context"
	"errors"
	"io"
	"time"
)

const (
	DefaultChunkBytes = 4096
	DefaultCadence    = 250 * time.Millisecond
)

// RelayAudio feeds a recorded clip to an open capture in fixed-size chunks,
// one chunk per cadence tick.
func RelayAudio(ctx context.Context, c *Coordinator, r io.Reader, chunkBytes int, cadence time.Duration) error {
	if chunkBytes <= 0 {
		chunkBytes = DefaultChunkBytes
	}

	var tick <-chan time.Time
	if cadence > 0 {
		ticker := time.NewTicker(cadence)
		defer ticker.Stop()
		tick = ticker.C
	}

	buf := make([]byte, chunkBytes)
	first := true
	for {
		n, err := io.ReadFull(r, buf)
		if n > 0 {
			if !first && tick != nil {
				select {
				case <-tick:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			first = false

			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			if relayErr := c.Relay(chunk); relayErr != nil {
				return relayErr
			}
		}

		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
