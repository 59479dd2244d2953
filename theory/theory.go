// Package theory holds pitch classes, note names, chord qualities, scale
// degrees and the bass fretboard geometry shared by the players.
package theory

import (
	"fmt"
	"strings"
)

// PitchClass is a note name without octave, 0 = C .. 11 = B.
type PitchClass int

const (
	C PitchClass = iota
	Cs
	D
	Ds
	E
	F
	Fs
	G
	Gs
	A
	As
	B
)

var sharpNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}
var italianNames = [12]string{"Do", "Do#", "Re", "Re#", "Mi", "Fa", "Fa#", "Sol", "Sol#", "La", "La#", "Si"}

// Mod wraps any integer into 0..11.
func Mod(n int) PitchClass {
	return PitchClass(((n % 12) + 12) % 12)
}

// Valid reports whether pc is in 0..11.
func (pc PitchClass) Valid() bool { return pc >= 0 && pc < 12 }

// Add transposes by semitones, wrapping.
func (pc PitchClass) Add(semitones int) PitchClass { return Mod(int(pc) + semitones) }

func (pc PitchClass) String() string { return pc.Name(false) }

// Name returns the sharp name, or the solfege name when italian is set.
func (pc PitchClass) Name(italian bool) string {
	if !pc.Valid() {
		return "?"
	}
	if italian {
		return italianNames[pc]
	}
	return sharpNames[pc]
}

// ParsePitchClass accepts C, C#, Db, do, sol# and similar spellings.
func ParsePitchClass(s string) (PitchClass, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty note name")
	}
	lower := strings.ToLower(s)
	for i, n := range italianNames {
		if strings.ToLower(n) == lower {
			return PitchClass(i), nil
		}
	}
	base := -1
	switch lower[0] {
	case 'c':
		base = 0
	case 'd':
		base = 2
	case 'e':
		base = 4
	case 'f':
		base = 5
	case 'g':
		base = 7
	case 'a':
		base = 9
	case 'b':
		base = 11
	}
	if base < 0 {
		return 0, fmt.Errorf("unknown note %q", s)
	}
	for _, r := range lower[1:] {
		switch r {
		case '#', 's':
			base++
		case 'b':
			base--
		default:
			return 0, fmt.Errorf("unknown note %q", s)
		}
	}
	return Mod(base), nil
}

// MIDINote returns the MIDI number for pc at octave (C4 = 60).
func MIDINote(pc PitchClass, octave int) int {
	return (octave+1)*12 + int(pc)
}

// NoteName formats a MIDI note as e.g. "A#3".
func NoteName(midi int, italian bool) string {
	return fmt.Sprintf("%s%d", Mod(midi).Name(italian), midi/12-1)
}

var intervalNames = [12]string{"R", "b2", "2", "b3", "3", "4", "b5", "5", "b6", "6", "b7", "7"}

// IntervalName names a distance above the root ("R", "b3", "5", ...).
func IntervalName(semitones int) string {
	return intervalNames[Mod(semitones)]
}
