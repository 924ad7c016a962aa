package operator

import (
	"context"
	"sync"

	"github.com/kbukum/liquidkit/errors"
)

// Gate is an Operator resumed from outside the run, usually over HTTP.
type Gate struct {
	mu      sync.Mutex
	message string
	resume  chan struct{}
}

// NewGate returns a closed gate.
func NewGate() *Gate {
	return &Gate{}
}

// Pause blocks until Resume is called or ctx is done.
func (g *Gate) Pause(ctx context.Context, message string) error {
	return g.PauseAnnounced(ctx, message, nil)
}

// PauseAnnounced is Pause, calling waiting once Resume would succeed.
func (g *Gate) PauseAnnounced(ctx context.Context, message string, waiting func()) error {
	g.mu.Lock()
	if g.resume != nil {
		g.mu.Unlock()
		return errors.Conflict("a pause is already waiting")
	}
	ch := make(chan struct{})
	g.resume, g.message = ch, message
	g.mu.Unlock()
	if waiting != nil {
		waiting()
	}

	defer func() {
		g.mu.Lock()
		if g.resume == ch {
			g.resume, g.message = nil, ""
		}
		g.mu.Unlock()
	}()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Waiting returns the message of the pending pause, if any.
func (g *Gate) Waiting() (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.message, g.resume != nil
}

// Resume releases the pending pause. It fails with CONFLICT when the run
// is not paused.
func (g *Gate) Resume() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.resume == nil {
		return errors.Conflict("run is not paused")
	}
	close(g.resume)
	g.resume, g.message = nil, ""
	return nil
}
