// Package syncbus carries the cross-module events between players and
// declares the narrow ports players use to reach each other.
//
// Delivery is synchronous and in subscription order on the caller's
// goroutine, which is always the transport timeline.
package syncbus

import (
	"go-drummer/catalog"
	"go-drummer/debug"
	"go-drummer/theory"
)

// Origin names the module that raised a root change.
type Origin string

const (
	OriginHarmony Origin = "harmony"
	OriginBass    Origin = "bass"
	OriginMIDI    Origin = "midi"
)

type PatternChanged struct {
	PatternID string
}

type GenreChanged struct {
	GenreID string
}

// RootChanged is published by a root setter unless the change itself came
// from a peer.
type RootChanged struct {
	PitchClass theory.PitchClass
	FromPeer   bool
	Origin     Origin
}

// DrumsStopped is published when running drums stop, whoever stopped them.
type DrumsStopped struct{}

// ChordChanged carries the sounding chord root and its MIDI notes.
type ChordChanged struct {
	Root  theory.PitchClass
	Notes []int
}

// Bus fans events out to typed handlers.
type Bus struct {
	pattern []func(PatternChanged)
	genre   []func(GenreChanged)
	root    []func(RootChanged)
	chord   []func(ChordChanged)
	stopped []func(DrumsStopped)
}

func New() *Bus { return &Bus{} }

func (b *Bus) OnPatternChanged(fn func(PatternChanged)) { b.pattern = append(b.pattern, fn) }
func (b *Bus) OnGenreChanged(fn func(GenreChanged))     { b.genre = append(b.genre, fn) }
func (b *Bus) OnRootChanged(fn func(RootChanged))       { b.root = append(b.root, fn) }
func (b *Bus) OnChordChanged(fn func(ChordChanged))     { b.chord = append(b.chord, fn) }
func (b *Bus) OnDrumsStopped(fn func(DrumsStopped))     { b.stopped = append(b.stopped, fn) }

func (b *Bus) PublishPattern(e PatternChanged) {
	if b == nil {
		return
	}
	debug.Log("bus", "patternChanged %s", e.PatternID)
	for _, fn := range b.pattern {
		fn(e)
	}
}

func (b *Bus) PublishGenre(e GenreChanged) {
	if b == nil {
		return
	}
	debug.Log("bus", "genreChanged %s", e.GenreID)
	for _, fn := range b.genre {
		fn(e)
	}
}

// PublishRoot delivers a root change. Subscribers skip their own Origin.
func (b *Bus) PublishRoot(e RootChanged) {
	if b == nil {
		return
	}
	debug.Log("bus", "rootChanged %s from %s", e.PitchClass, e.Origin)
	for _, fn := range b.root {
		fn(e)
	}
}

func (b *Bus) PublishChord(e ChordChanged) {
	if b == nil {
		return
	}
	debug.LogEvery(8, "bus", "chordChanged %s %v", e.Root, e.Notes)
	for _, fn := range b.chord {
		fn(e)
	}
}

func (b *Bus) PublishDrumsStopped(e DrumsStopped) {
	if b == nil {
		return
	}
	debug.Log("bus", "drumsStopped")
	for _, fn := range b.stopped {
		fn(e)
	}
}

// DrumPort is what the bass and harmony players may ask of the drums.
type DrumPort interface {
	CurrentPattern() (catalog.DrumPattern, bool)
	IsPlaying() bool
	Play() error
	Stop()
	SelectPattern(id string) error
	SetBPM(bpm int) int
}

// BassSyncPort is what the harmony player may ask of the bass.
type BassSyncPort interface {
	IsFollowingHarmony() bool
	PlayRoot(pc theory.PitchClass)
	ShowMelodyChord(root theory.PitchClass, notes []int)
	ClearMelodyChord()
}
