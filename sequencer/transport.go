package sequencer

import (
	"context"
	"math"
	"sync"
	"time"

	"go-drummer/debug"
)

// PPQ is ticks per quarter note.
const PPQ = 96

// Tempo limits.
const (
	MinBPM = 40
	MaxBPM = 220
)

// BarTicks is one 4/4 bar. New sequences joining a running transport wait
// for the next multiple of it so every loop shares the same downbeat.
const BarTicks = 4 * PPQ

// ClampBPM limits bpm to MinBPM..MaxBPM.
func ClampBPM(bpm int) int {
	if bpm < MinBPM {
		return MinBPM
	}
	if bpm > MaxBPM {
		return MaxBPM
	}
	return bpm
}

// Transport is the shared clock. It owns the tempo and the timeline lock;
// every step callback runs while the lock is held.
//
// Only Run, Advance, AdvanceTo and Locked take the lock. Everything else
// (SetBPM, sequencer Start/Stop, ...) must be called on the timeline: from a
// step callback, inside Locked, or from a single goroutine driving Advance.
type Transport struct {
	mu sync.Mutex

	now       func() time.Time
	virtual   bool
	vnow      time.Time
	lookAhead time.Duration

	bpm     int
	running bool

	// position anchor, moved on every tempo change
	t0         time.Time
	anchorTick float64

	seqs []*StepSequencer
	// due time of the step being dispatched, zero outside callbacks
	cursor time.Time

	interruptChan chan struct{}
}

// Option configures a Transport.
type Option func(*Transport)

// WithNow injects the wall clock.
func WithNow(now func() time.Time) Option {
	return func(t *Transport) { t.now = now }
}

// WithVirtualClock makes time advance only through Advance/AdvanceTo.
func WithVirtualClock(start time.Time) Option {
	return func(t *Transport) {
		t.virtual = true
		t.vnow = start
		t.now = func() time.Time { return t.vnow }
		t.lookAhead = 0
	}
}

// WithLookAhead fires steps this long before they are due so instruments
// can schedule them precisely.
func WithLookAhead(d time.Duration) Option {
	return func(t *Transport) { t.lookAhead = d }
}

// NewTransport creates a stopped transport at 120 BPM.
func NewTransport(opts ...Option) *Transport {
	t := &Transport{
		now:           time.Now,
		lookAhead:     20 * time.Millisecond,
		bpm:           120,
		interruptChan: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.t0 = t.now()
	return t
}

// Now returns the transport's notion of the current time.
func (t *Transport) Now() time.Time { return t.now() }

// BPM returns the tempo.
func (t *Transport) BPM() int { return t.bpm }

// Running reports whether any sequence is live.
func (t *Transport) Running() bool { return t.running }

// SetBPM clamps and applies a tempo, keeping the current musical position.
func (t *Transport) SetBPM(bpm int) int {
	bpm = ClampBPM(bpm)
	if bpm == t.bpm {
		return bpm
	}
	now := t.now()
	t.anchorTick = t.tickAt(now)
	t.t0 = now
	t.bpm = bpm
	debug.Log("transport", "tempo %d at tick %.1f", bpm, t.anchorTick)
	t.interrupt()
	return bpm
}

// tickDuration is the length of one tick at the current tempo.
func (t *Transport) tickDuration() float64 {
	return float64(time.Minute) / float64(t.bpm*PPQ)
}

func (t *Transport) tickAt(at time.Time) float64 {
	return t.anchorTick + float64(at.Sub(t.t0))/t.tickDuration()
}

// TimeToTick converts a time to a whole tick.
func (t *Transport) TimeToTick(at time.Time) int64 {
	return int64(math.Floor(t.tickAt(at) + 1e-6))
}

// TickToTime converts a tick to wall time.
func (t *Transport) TickToTime(tick int64) time.Time {
	return t.t0.Add(time.Duration(math.Round((float64(tick) - t.anchorTick) * t.tickDuration())))
}

// Position returns the current tick; 0 when stopped.
func (t *Transport) Position() int64 {
	if !t.running {
		return 0
	}
	return t.TimeToTick(t.now())
}

// Live lists the names of live sequences in start order.
func (t *Transport) Live() []string {
	names := make([]string, 0, len(t.seqs))
	for _, s := range t.seqs {
		names = append(names, s.name)
	}
	return names
}

// LiveCount counts live sequences with the given name.
func (t *Transport) LiveCount(name string) int {
	n := 0
	for _, s := range t.seqs {
		if s.name == name {
			n++
		}
	}
	return n
}

// Locked runs fn on the timeline.
func (t *Transport) Locked(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fn()
}

// attach registers a sequence and returns the tick of its first step.
func (t *Transport) attach(s *StepSequencer) int64 {
	var start int64
	if !t.running {
		t.running = true
		t.t0 = t.now()
		t.anchorTick = 0
		debug.Log("transport", "start at %d bpm", t.bpm)
	} else {
		pos := t.TimeToTick(t.now())
		start = ((pos + BarTicks - 1) / BarTicks) * BarTicks
	}
	t.seqs = append(t.seqs, s)
	t.interrupt()
	return start
}

// detach removes a sequence; the transport stops with the last one.
func (t *Transport) detach(s *StepSequencer) {
	for i, other := range t.seqs {
		if other == s {
			t.seqs = append(t.seqs[:i], t.seqs[i+1:]...)
			break
		}
	}
	if len(t.seqs) == 0 && t.running {
		t.running = false
		debug.Log("transport", "stop")
	}
	t.interrupt()
}

// interrupt wakes the dispatch loop (non-blocking)
func (t *Transport) interrupt() {
	select {
	case t.interruptChan <- struct{}{}:
	default:
	}
}

// next returns the earliest pending step. Ties go to the sequence started
// first.
func (t *Transport) next() (*StepSequencer, int64, bool) {
	var best *StepSequencer
	var bestTick int64
	for _, s := range t.seqs {
		tick := s.nextTick()
		if best == nil || tick < bestTick {
			best, bestTick = s, tick
		}
	}
	return best, bestTick, best != nil
}

// fireDue runs every step due at or before limit, in time order.
func (t *Transport) fireDue(limit time.Time) int {
	fired := 0
	for {
		s, tick, ok := t.next()
		if !ok || t.TickToTime(tick).After(limit) {
			return fired
		}
		t.dispatch(s, t.TickToTime(tick))
		fired++
	}
}

func (t *Transport) dispatch(s *StepSequencer, due time.Time) {
	t.cursor = due
	s.fire(due)
	t.cursor = time.Time{}
}

// Cursor returns the due time of the step being dispatched, or Now when
// called outside a step callback. Sounds triggered in reaction to another
// player's step use it to land on the same grid point.
func (t *Transport) Cursor() time.Time {
	if t.cursor.IsZero() {
		return t.now()
	}
	return t.cursor
}

// AdvanceTo fires every step due up to at. On a virtual clock time moves
// with each step, so callbacks observe their own due time.
func (t *Transport) AdvanceTo(at time.Time) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.virtual {
		return t.fireDue(at)
	}
	fired := 0
	for {
		s, tick, ok := t.next()
		if !ok {
			break
		}
		due := t.TickToTime(tick)
		if due.After(at) {
			break
		}
		if due.After(t.vnow) {
			t.vnow = due
		}
		t.dispatch(s, due)
		fired++
	}
	if at.After(t.vnow) {
		t.vnow = at
	}
	return fired
}

// Advance moves a virtual clock forward by d, firing due steps.
func (t *Transport) Advance(d time.Duration) {
	t.mu.Lock()
	at := t.now().Add(d)
	t.mu.Unlock()
	t.AdvanceTo(at)
}

// Run dispatches steps in real time until ctx is done.
func (t *Transport) Run(ctx context.Context) {
	for {
		t.mu.Lock()
		t.fireDue(t.now().Add(t.lookAhead))
		wait := time.Second
		if _, tick, ok := t.next(); ok {
			wait = t.TickToTime(tick).Sub(t.now()) - t.lookAhead
		}
		t.mu.Unlock()

		if wait < time.Millisecond {
			wait = time.Millisecond
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-t.interruptChan:
			timer.Stop()
		case <-timer.C:
		}
	}
}
