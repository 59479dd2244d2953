package studio

import (
	"sync/atomic"
	"time"

	"go-drummer/instrument"
)

// tap counts triggers on the way to a voice so the display can animate
// level meters. Optional capabilities pass through to the wrapped voice.
type tap struct {
	inner instrument.Instrument
	hits  atomic.Uint64
}

func (t *tap) TriggerAttackRelease(note uint8, dur time.Duration, at time.Time) {
	t.hits.Add(1)
	t.inner.TriggerAttackRelease(note, dur, at)
}

func (t *tap) SetVolume(db float64)          { t.inner.SetVolume(db) }
func (t *tap) Volume() float64               { return t.inner.Volume() }
func (t *tap) Dispose()                      { t.inner.Dispose() }
func (t *tap) ReleaseAll()                   { instrument.Release(t.inner) }
func (t *tap) SetPreset(name string) error   { return instrument.SetPreset(t.inner, name) }
func (t *tap) SetDecay(scale float64)        { instrument.SetDecay(t.inner, scale) }
func (t *tap) Bend(st float64, at time.Time) { instrument.Bend(t.inner, st, at) }

var (
	_ instrument.Releaser  = (*tap)(nil)
	_ instrument.Presetter = (*tap)(nil)
	_ instrument.Decayer   = (*tap)(nil)
	_ instrument.Bender    = (*tap)(nil)
)
