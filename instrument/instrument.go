// Package instrument defines the sound-producing capability the players
// drive. Implementations live in audio (software synth) and midi (external
// gear); tests use Recorder.
package instrument

import (
	"context"
	"math"
	"time"
)

// Voice names. Each player owns one instrument per voice.
const (
	Kick   = "kick"
	Snare  = "snare"
	Hihat  = "hihat"
	Bass   = "bass"
	Chords = "chords"
	Melody = "melody"
)

// Voices lists every voice in mixer order.
var Voices = []string{Kick, Snare, Hihat, Bass, Chords, Melody}

// Instrument plays notes. at is the musical time the note starts; players
// pass the time handed to their step callback.
type Instrument interface {
	TriggerAttackRelease(note uint8, dur time.Duration, at time.Time)
	SetVolume(db float64)
	Volume() float64
	Dispose()
}

// Releaser silences every sounding note.
type Releaser interface {
	ReleaseAll()
}

// Presetter switches the instrument's sound.
type Presetter interface {
	SetPreset(name string) error
}

// Bender glides the most recent note by semitones.
type Bender interface {
	Bend(semitones float64, at time.Time)
}

// Decayer scales the envelope decay of future notes.
type Decayer interface {
	SetDecay(scale float64)
}

// Backend creates the instruments for one output (synth, MIDI, nothing).
// Init may block until the device is usable.
type Backend interface {
	Init(ctx context.Context) error
	Voice(name string) Instrument
	Close() error
}

// Mute is the level of a silenced voice.
var Mute = math.Inf(-1)

// VolumeToDB maps a 0..100 slider to decibels; 0 mutes.
func VolumeToDB(v int) float64 {
	if v <= 0 {
		return Mute
	}
	if v > 100 {
		v = 100
	}
	return float64(v-100) * 0.6
}

// DBToGain converts decibels to linear amplitude.
func DBToGain(db float64) float64 {
	if math.IsInf(db, -1) {
		return 0
	}
	return math.Pow(10, db/20)
}

// DBToVelocity converts decibels to a MIDI velocity.
func DBToVelocity(db float64) uint8 {
	v := math.Round(DBToGain(db) * 127)
	if v < 0 {
		return 0
	}
	if v > 127 {
		return 127
	}
	return uint8(v)
}

// Release calls ReleaseAll when inst supports it.
func Release(inst Instrument) {
	if r, ok := inst.(Releaser); ok {
		r.ReleaseAll()
	}
}

// SetPreset applies a preset when inst supports presets. Instruments without
// presets accept any name.
func SetPreset(inst Instrument, name string) error {
	if p, ok := inst.(Presetter); ok {
		return p.SetPreset(name)
	}
	return nil
}

// SetDecay scales decay when inst supports it.
func SetDecay(inst Instrument, scale float64) {
	if d, ok := inst.(Decayer); ok {
		d.SetDecay(scale)
	}
}

// Bend bends when inst supports it.
func Bend(inst Instrument, semitones float64, at time.Time) {
	if b, ok := inst.(Bender); ok {
		b.Bend(semitones, at)
	}
}
