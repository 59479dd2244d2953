package studio

import (
	"go-drummer/drums"
	"go-drummer/fretboard"
	"go-drummer/harmony"
)

// Snapshot is everything the display draws, copied under the timeline lock.
type Snapshot struct {
	Drums   drums.Snapshot
	Harmony harmony.Snapshot
	Bass    fretboard.Snapshot

	Status     string
	Italian    bool
	AudioReady bool
	Position   int64
	Running    bool

	// Hits counts triggers per voice since the studio started.
	Hits map[string]uint64
}

// Snapshot copies the display state.
func (s *Studio) Snapshot() Snapshot {
	var snap Snapshot
	s.tr.Locked(func() {
		snap = Snapshot{
			Drums:      s.Drums.Snapshot(),
			Harmony:    s.Harmony.Snapshot(),
			Bass:       s.Bass.Snapshot(),
			Status:     s.status,
			Italian:    s.italian,
			AudioReady: s.gate.Ready(),
			Position:   s.tr.Position(),
			Running:    s.tr.Running(),
			Hits:       make(map[string]uint64, len(s.taps)),
		}
	})
	for name, t := range s.taps {
		snap.Hits[name] = t.hits.Load()
	}
	return snap
}

// Status returns the last user-facing message, empty after a success.
func (s *Studio) Status() string {
	var msg string
	s.tr.Locked(func() { msg = s.status })
	return msg
}
