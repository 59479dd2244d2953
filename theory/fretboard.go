package theory

// Bass string geometry. Absolute pitch is counted in semitones above the
// open low E, so the open strings sit at 0, 5, 10 and 15.

// String is a bass string, low to high.
type String int

const (
	StringE String = iota
	StringA
	StringD
	StringG
)

// Strings lists the bass strings low to high.
var Strings = []String{StringE, StringA, StringD, StringG}

// MaxFret is the highest fret drawn and played.
const MaxFret = 12

var openOffset = [4]int{0, 5, 10, 15}
var openPitch = [4]PitchClass{E, A, D, G}

// Offset returns the absolute pitch of the open string.
func (s String) Offset() int { return openOffset[s] }

// Open returns the pitch class of the open string.
func (s String) Open() PitchClass { return openPitch[s] }

func (s String) String() string {
	if s < StringE || s > StringG {
		return "?"
	}
	return openPitch[s].String()
}

// ParseString accepts "E", "A", "D" or "G".
func ParseString(name string) (String, bool) {
	for _, s := range Strings {
		if s.String() == name {
			return s, true
		}
	}
	return 0, false
}

// Position is a fretted note.
type Position struct {
	String String
	Fret   int
}

// Pitch returns the absolute pitch above open E.
func (p Position) Pitch() int { return p.String.Offset() + p.Fret }

// PitchClass returns the note name of the position.
func (p Position) PitchClass() PitchClass { return E.Add(p.Pitch()) }

// MIDI returns the MIDI note of the position; open E1 is 28.
func (p Position) MIDI() int { return 28 + p.Pitch() }

// FretFor returns the lowest fret on s sounding pc.
func FretFor(s String, pc PitchClass) int {
	return int(Mod(int(pc) - int(s.Open())))
}

// ShapeWindow returns the four-fret box anchored one fret below the root on
// the E string.
func ShapeWindow(root PitchClass) (start, end int) {
	rootFret := FretFor(StringE, root)
	start = rootFret - 1
	if start < 0 {
		start = 0
	}
	return start, start + 4
}

// MIDIToPosition returns the lowest-fret position of a MIDI note in range.
func MIDIToPosition(midi int) (Position, bool) {
	pitch := midi - 28
	for i := len(Strings) - 1; i >= 0; i-- {
		s := Strings[i]
		f := pitch - s.Offset()
		if f >= 0 && f <= MaxFret {
			// prefer lower frets on higher strings
			return Position{String: s, Fret: f}, true
		}
	}
	return Position{}, false
}
