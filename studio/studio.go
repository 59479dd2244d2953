// Package studio builds the three players around one transport and one
// event bus, and is the only way the outside world touches them: every
// call runs on the transport timeline.
package studio

import (
	"context"
	"math/rand/v2"

	"go-drummer/audio"
	"go-drummer/catalog"
	"go-drummer/debug"
	"go-drummer/drums"
	"go-drummer/failure"
	"go-drummer/fretboard"
	"go-drummer/harmony"
	"go-drummer/instrument"
	"go-drummer/sequencer"
	"go-drummer/store"
	"go-drummer/syncbus"
	"go-drummer/theory"
)

// MaxSavedMelodies caps the saved-melody list unless configured otherwise.
const MaxSavedMelodies = 20

const melodiesKey = "melodies"

// Options configures New. Zero values pick silent, in-memory defaults.
type Options struct {
	Catalog     *catalog.Catalog
	Backend     instrument.Backend
	Store       store.Store
	MaxMelodies int
	Transport   []sequencer.Option
	Rand        *rand.Rand
	Policy      fretboard.TransposePolicy
	Italian     bool
}

// Studio owns the session.
type Studio struct {
	tr   *sequencer.Transport
	bus  *syncbus.Bus
	gate *audio.Gate
	cat  *catalog.Catalog

	Drums   *drums.Player
	Harmony *harmony.Engine
	Bass    *fretboard.Player

	melodies *store.List[harmony.SavedMelody]
	taps     map[string]*tap

	status  string
	italian bool

	// Notify display of updates
	UpdateChan chan struct{}
}

// New wires a studio. Nothing sounds until the first play request opens
// the backend.
func New(o Options) *Studio {
	if o.Catalog == nil {
		o.Catalog = catalog.Default()
	}
	if o.Backend == nil {
		o.Backend = instrument.NullBackend{}
	}
	if o.Store == nil {
		o.Store = store.NewMemoryStore()
	}
	if o.MaxMelodies <= 0 {
		o.MaxMelodies = MaxSavedMelodies
	}
	if o.Rand == nil {
		o.Rand = harmony.NewRand(rand.Uint64())
	}

	s := &Studio{
		tr:         sequencer.NewTransport(o.Transport...),
		bus:        syncbus.New(),
		gate:       audio.NewGate(o.Backend),
		cat:        o.Catalog,
		taps:       make(map[string]*tap),
		italian:    o.Italian,
		UpdateChan: make(chan struct{}, 1),
	}
	for _, v := range instrument.Voices {
		s.taps[v] = &tap{inner: s.gate.Voice(v)}
	}
	s.melodies = store.OpenList[harmony.SavedMelody](o.Store, melodiesKey, "melodies", o.MaxMelodies)

	s.Drums = drums.New(drums.Config{
		Catalog:   o.Catalog,
		Transport: s.tr,
		Bus:       s.bus,
		Voices: map[string]instrument.Instrument{
			instrument.Kick:  s.taps[instrument.Kick],
			instrument.Snare: s.taps[instrument.Snare],
			instrument.Hihat: s.taps[instrument.Hihat],
		},
		Ready:  s.gate.Ready,
		Notify: s.notify,
	})
	s.Harmony = harmony.New(harmony.Config{
		Catalog:   o.Catalog,
		Transport: s.tr,
		Bus:       s.bus,
		Drums:     s.Drums,
		Chords:    s.taps[instrument.Chords],
		Melody:    s.taps[instrument.Melody],
		Saved:     s.melodies,
		Rand:      o.Rand,
		Ready:     s.gate.Ready,
		Notify:    s.notify,
	})
	s.Bass = fretboard.New(fretboard.Config{
		Catalog:   o.Catalog,
		Transport: s.tr,
		Bus:       s.bus,
		Drums:     s.Drums,
		Bass:      s.taps[instrument.Bass],
		Policy:    o.Policy,
		Rand:      o.Rand,
		Ready:     s.gate.Ready,
		Notify:    s.notify,
	})
	s.Harmony.SetBass(s.Bass)
	s.bus.OnRootChanged(func(e syncbus.RootChanged) {
		if e.Origin != syncbus.OriginHarmony {
			s.Harmony.SelectKey(e.PitchClass, true)
		}
	})
	s.Harmony.SetItalian(o.Italian)
	s.Bass.SetItalian(o.Italian)
	return s
}

// Transport returns the shared clock.
func (s *Studio) Transport() *sequencer.Transport { return s.tr }

// Bus returns the event bus.
func (s *Studio) Bus() *syncbus.Bus { return s.bus }

// Catalog returns the static tables.
func (s *Studio) Catalog() *catalog.Catalog { return s.cat }

// Updates signals that a new snapshot is worth drawing.
func (s *Studio) Updates() <-chan struct{} { return s.UpdateChan }

func (s *Studio) notify() {
	select {
	case s.UpdateChan <- struct{}{}:
	default:
	}
}

// Run dispatches steps in real time until ctx is done.
func (s *Studio) Run(ctx context.Context) { s.tr.Run(ctx) }

// Do runs fn on the timeline. A returned error becomes the status line and
// is returned as well; success clears the status.
func (s *Studio) Do(fn func() error) error {
	var err error
	s.tr.Locked(func() {
		err = fn()
		if err != nil {
			s.status = failure.Message(err)
			debug.Log("studio", "%v", err)
		} else {
			s.status = ""
		}
	})
	s.notify()
	return err
}

// Play is Do for operations that start sound: the audio backend is opened
// first if it is not yet.
func (s *Studio) Play(ctx context.Context, fn func() error) error {
	if err := s.InitAudio(ctx); err != nil {
		return s.Do(func() error { return err })
	}
	return s.Do(fn)
}

// InitAudio opens the backend. It may block; it never holds the timeline.
func (s *Studio) InitAudio(ctx context.Context) error {
	if s.gate.Ready() {
		return nil
	}
	if err := s.gate.Init(ctx); err != nil {
		return failure.NotReady("audio: " + err.Error())
	}
	debug.Log("studio", "audio ready")
	return nil
}

// AudioReady reports whether the backend is open.
func (s *Studio) AudioReady() bool { return s.gate.Ready() }

// SetItalian switches every note name to Do Re Mi.
func (s *Studio) SetItalian(on bool) {
	s.Do(func() error {
		s.italian = on
		s.Harmony.SetItalian(on)
		s.Bass.SetItalian(on)
		return nil
	})
}

// ToggleItalian flips the notation.
func (s *Studio) ToggleItalian() { s.SetItalian(!s.italian) }

// SelectRoot sets the key from outside both players, e.g. a MIDI keyboard.
// Bass and harmony each follow once.
func (s *Studio) SelectRoot(pc theory.PitchClass) {
	s.Do(func() error {
		s.bus.PublishRoot(syncbus.RootChanged{PitchClass: pc, Origin: syncbus.OriginMIDI})
		return nil
	})
}

// StopAll halts every player.
func (s *Studio) StopAll() {
	s.Do(func() error {
		s.Bass.Stop()
		s.Harmony.Stop()
		s.Drums.Stop()
		return nil
	})
}

// SavedMelodies reports the saved list and whether it only lives in memory.
func (s *Studio) SavedMelodies() (items []harmony.SavedMelody, degraded bool) {
	s.tr.Locked(func() {
		items, degraded = s.melodies.Items(), s.melodies.Degraded()
	})
	return items, degraded
}

// Close stops playback, frees the voices and closes the backend.
func (s *Studio) Close() error {
	s.tr.Locked(func() {
		s.Bass.Dispose()
		s.Harmony.Dispose()
		s.Drums.Dispose()
	})
	return s.gate.Close()
}
