package sequencer

import (
	"fmt"
	"time"

	"go-drummer/debug"
)

// Duration is the musical length of one step.
type Duration int

const (
	Sixteenth     Duration = iota // 4 per beat
	EighthTriplet                 // 3 per beat
	Eighth                        // 2 per beat
)

// Ticks returns the step length in transport ticks.
func (d Duration) Ticks() int64 {
	switch d {
	case Sixteenth:
		return PPQ / 4
	case EighthTriplet:
		return PPQ / 3
	case Eighth:
		return PPQ / 2
	}
	return 0
}

// Seconds returns the step length at bpm.
func (d Duration) Seconds(bpm int) time.Duration {
	return time.Duration(d.Ticks()) * time.Minute / time.Duration(bpm*PPQ)
}

func (d Duration) String() string {
	switch d {
	case Sixteenth:
		return "16n"
	case EighthTriplet:
		return "8t"
	case Eighth:
		return "8n"
	}
	return fmt.Sprintf("Duration(%d)", int(d))
}

// Grid is the step length of a bar: sixteenths, or eighth triplets for
// compound meters.
func Grid(triplet bool) Duration {
	if triplet {
		return EighthTriplet
	}
	return Sixteenth
}

// StepFunc receives the slot index and the exact time the slot sounds.
type StepFunc func(step int, at time.Time)

// StepSequencer loops a fixed number of slots on the transport. It is
// restarted, never edited: Start replaces whatever was running.
type StepSequencer struct {
	t    *Transport
	name string

	live      bool
	steps     int
	dur       Duration
	cb        StepFunc
	startTick int64
	fired     int64
	current   int
}

// NewSequencer creates a stopped sequencer. name identifies its role in
// diagnostics.
func (t *Transport) NewSequencer(name string) *StepSequencer {
	return &StepSequencer{t: t, name: name, current: -1}
}

// Name returns the role name.
func (s *StepSequencer) Name() string { return s.name }

// Live reports whether the sequence is scheduled.
func (s *StepSequencer) Live() bool { return s.live }

// Step returns the last fired slot, -1 before the first.
func (s *StepSequencer) Step() int { return s.current }

// Steps returns the slot count of the running sequence.
func (s *StepSequencer) Steps() int { return s.steps }

// Start schedules steps slots of dur, looping from slot 0. A live sequence is
// stopped first, so callbacks of the old one can never fire again.
func (s *StepSequencer) Start(steps int, dur Duration, cb StepFunc) error {
	if steps <= 0 {
		return fmt.Errorf("%s: step count must be positive, got %d", s.name, steps)
	}
	if dur.Ticks() == 0 {
		return fmt.Errorf("%s: unknown step duration %d", s.name, int(dur))
	}
	s.Stop()

	s.steps = steps
	s.dur = dur
	s.cb = cb
	s.fired = 0
	s.current = -1
	s.live = true
	s.startTick = s.t.attach(s)
	debug.Log("transport", "%s start: %d x %s from tick %d", s.name, steps, dur, s.startTick)
	return nil
}

// Stop releases the sequence. Safe to call repeatedly.
func (s *StepSequencer) Stop() {
	if !s.live {
		return
	}
	s.live = false
	s.cb = nil
	s.current = -1
	s.t.detach(s)
	debug.Log("transport", "%s stop", s.name)
}

func (s *StepSequencer) nextTick() int64 {
	return s.startTick + s.fired*s.dur.Ticks()
}

func (s *StepSequencer) fire(at time.Time) {
	step := int(s.fired % int64(s.steps))
	s.fired++
	s.current = step
	if s.cb != nil {
		s.cb(step, at)
	}
}
