package theory

import "fmt"

// Quality is a chord type such as "maj" or "min7".
type Quality string

var qualities = map[Quality][]int{
	"maj":  {0, 4, 7},
	"min":  {0, 3, 7},
	"dom7": {0, 4, 7, 10},
	"maj7": {0, 4, 7, 11},
	"min7": {0, 3, 7, 10},
	"dim":  {0, 3, 6},
	"aug":  {0, 4, 8},
	"sus4": {0, 5, 7},
	"sus2": {0, 2, 7},
}

var qualitySuffix = map[Quality]string{
	"maj":  "",
	"min":  "m",
	"dom7": "7",
	"maj7": "maj7",
	"min7": "m7",
	"dim":  "dim",
	"aug":  "aug",
	"sus4": "sus4",
	"sus2": "sus2",
}

// Intervals returns the chord tones above the root.
func (q Quality) Intervals() ([]int, bool) {
	iv, ok := qualities[q]
	return iv, ok
}

// Suffix returns the display suffix, "" for major.
func (q Quality) Suffix() string { return qualitySuffix[q] }

// Degrees maps roman numerals to semitones above the key root.
var degrees = map[string]int{
	"I": 0, "bII": 1, "II": 2, "bIII": 3, "III": 4, "IV": 5,
	"#IV": 6, "bV": 6, "V": 7, "bVI": 8, "VI": 9, "bVII": 10, "VII": 11,
}

// DegreeOffset returns the semitone offset of a roman degree.
func DegreeOffset(degree string) (int, bool) {
	off, ok := degrees[degree]
	return off, ok
}

// Chord is a resolved chord.
type Chord struct {
	Root    PitchClass
	Quality Quality
	Notes   []int // MIDI notes, root position
}

// Name returns e.g. "Am7".
func (c Chord) Name(italian bool) string {
	return c.Root.Name(italian) + c.Quality.Suffix()
}

// PitchClasses returns the chord tones without octave.
func (c Chord) PitchClasses() []PitchClass {
	out := make([]PitchClass, len(c.Notes))
	for i, n := range c.Notes {
		out[i] = Mod(n)
	}
	return out
}

// ResolveChord builds the chord on degree of key at octave.
func ResolveChord(key PitchClass, degree string, q Quality, octave int) (Chord, error) {
	off, ok := DegreeOffset(degree)
	if !ok {
		return Chord{}, fmt.Errorf("unknown degree %q", degree)
	}
	iv, ok := q.Intervals()
	if !ok {
		return Chord{}, fmt.Errorf("unknown chord quality %q", q)
	}
	root := key.Add(off)
	base := MIDINote(root, octave)
	notes := make([]int, len(iv))
	for i, s := range iv {
		notes[i] = base + s
	}
	return Chord{Root: root, Quality: q, Notes: notes}, nil
}
