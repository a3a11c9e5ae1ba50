package discussion

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

const minSweepInterval = time.Second

type Option func(*Registry)

func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// WithFinishTimeout bounds how long StopCapture and Reset wait for a
// transcription stream to drain.
func WithFinishTimeout(d time.Duration) Option {
	return func(r *Registry) {
		if d > 0 {
			r.finishTimeout = d
		}
	}
}

// WithIdleTimeout disposes sessions that have not been used for d. Idle
// sessions are archived like any other disposal.
func WithIdleTimeout(d time.Duration) Option {
	return func(r *Registry) {
		if d > 0 {
			r.idleTimeout = d
		}
	}
}

// Registry owns the live coordinators.
type Registry struct {
	deps          Deps
	now           func() time.Time
	finishTimeout time.Duration
	idleTimeout   time.Duration

	mu       sync.Mutex
	sessions map[string]*Coordinator

	stop      chan struct{}
	sweepDone chan struct{}
	stopOnce  sync.Once
}

func NewRegistry(deps Deps, opts ...Option) *Registry {
	r := &Registry{
		deps:          deps,
		now:           time.Now,
		finishTimeout: defaultFinishTimeout,
		sessions:      make(map[string]*Coordinator),
		stop:          make(chan struct{}),
		sweepDone:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.idleTimeout > 0 {
		go r.sweepLoop()
	} else {
		close(r.sweepDone)
	}
	return r
}

func (r *Registry) Create(subjectID string) *Coordinator {
	c := newCoordinator(uuid.NewString(), subjectID, r.deps, r.now, r.finishTimeout)

	r.mu.Lock()
	r.sessions[c.id] = c
	r.mu.Unlock()

	return c
}

// Get returns the session and marks it active.
func (r *Registry) Get(id string) (*Coordinator, error) {
	r.mu.Lock()
	c, ok := r.sessions[id]
	r.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}

	c.touch()
	return c, nil
}

// Dispose resets the session, archiving it if needed, and forgets it. The
// session is unreachable while it is archived and is put back if archiving
// fails.
func (r *Registry) Dispose(ctx context.Context, id string) error {
	r.mu.Lock()
	c, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	r.mu.Unlock()
	if !ok {
		return ErrNotFound
	}

	if err := c.dispose(ctx); err != nil {
		r.mu.Lock()
		r.sessions[id] = c
		r.mu.Unlock()
		return err
	}
	return nil
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Close stops the idle sweeper, disposes every session and returns the
// joined archive errors.
func (r *Registry) Close(ctx context.Context) error {
	r.stopOnce.Do(func() { close(r.stop) })
	<-r.sweepDone

	var errs []error
	for _, id := range r.ids() {
		if err := r.Dispose(ctx, id); err != nil && !errors.Is(err, ErrNotFound) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *Registry) ids() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	return ids
}

func (r *Registry) sweepLoop() {
	defer close(r.sweepDone)

	interval := r.idleTimeout / 2
	if interval < minSweepInterval {
		interval = minSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			r.sweepIdle(context.Background())
		}
	}
}

// sweepIdle disposes every session idle for at least the idle timeout and
// returns how many were removed.
func (r *Registry) sweepIdle(ctx context.Context) int {
	cutoff := r.now().Add(-r.idleTimeout)

	removed := 0
	for _, id := range r.ids() {
		r.mu.Lock()
		c, ok := r.sessions[id]
		r.mu.Unlock()
		if !ok || c.LastActive().After(cutoff) {
			continue
		}

		if err := r.Dispose(ctx, id); err != nil {
			if !errors.Is(err, ErrNotFound) {
				slog.Error("error disposing idle discussion", "session", id, "error", err)
			}
			continue
		}
		slog.Info("idle discussion disposed", "session", id)
		removed++
	}
	return removed
}
