package audio

import (
	"context"
	"sync"
	"sync/atomic"

	"go-drummer/debug"
	"go-drummer/instrument"
)

// Gate holds back playback until its backend is initialised. The first play
// request opens the device; until then Ready reports false.
type Gate struct {
	backend instrument.Backend
	ready   atomic.Bool

	mu  sync.Mutex
	err error
}

// NewGate wraps a backend.
func NewGate(b instrument.Backend) *Gate {
	return &Gate{backend: b}
}

// Init initialises the backend once. A failed attempt may be retried.
func (g *Gate) Init(ctx context.Context) error {
	if g.ready.Load() {
		return nil
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.ready.Load() {
		return nil
	}
	if err := g.backend.Init(ctx); err != nil {
		g.err = err
		debug.Log("audio", "init failed: %v", err)
		return err
	}
	g.err = nil
	g.ready.Store(true)
	return nil
}

// Ready reports whether Init succeeded.
func (g *Gate) Ready() bool { return g.ready.Load() }

// Err returns the last init failure.
func (g *Gate) Err() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.err
}

// Voice returns the backend voice; it plays only after Init.
func (g *Gate) Voice(name string) instrument.Instrument {
	return g.backend.Voice(name)
}

// Close closes the backend.
func (g *Gate) Close() error { return g.backend.Close() }
