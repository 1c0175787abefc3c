package server

import (
	"context"
	"sync"

	"github.com/san-kum/heatsim/internal/sim"
)

// Gate is a sim.Pacer that clients can pause. While paused, Wait blocks
// until Resume or context cancellation.
type Gate struct {
	inner  sim.Pacer
	mu     sync.Mutex
	paused bool
	resume chan struct{}
}

// NewGate wraps inner, which may be nil for an unpaced gate.
func NewGate(inner sim.Pacer) *Gate {
	return &Gate{inner: inner}
}

func (g *Gate) Pause() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.paused {
		g.paused = true
		g.resume = make(chan struct{})
	}
}

func (g *Gate) Resume() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.paused {
		g.paused = false
		close(g.resume)
	}
}

func (g *Gate) Paused() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.paused
}

func (g *Gate) Wait(ctx context.Context) error {
	if g.inner != nil {
		if err := g.inner.Wait(ctx); err != nil {
			return err
		}
	}
	for {
		g.mu.Lock()
		if !g.paused {
			g.mu.Unlock()
			return nil
		}
		ch := g.resume
		g.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ch:
		}
	}
}
