package fretboard

import (
	"go-drummer/catalog"
	"go-drummer/theory"
)

// TransposePolicy moves a fretted note by semitones and decides where on
// the neck the result is played. Implementations must keep the absolute
// pitch whenever some string can reach it within 0..MaxFret.
type TransposePolicy func(p theory.Position, semitones int) theory.Position

// KeepString plays the moved note on its original string while the fret
// stays on the neck, and falls back to HighestString otherwise.
func KeepString(p theory.Position, semitones int) theory.Position {
	pitch := p.Pitch() + semitones
	if f := pitch - p.String.Offset(); f >= 0 && f <= theory.MaxFret {
		return theory.Position{String: p.String, Fret: f}
	}
	return HighestString(p, semitones)
}

// HighestString plays the moved note on the highest string that reaches it,
// clamping onto the E string when none does.
func HighestString(p theory.Position, semitones int) theory.Position {
	pitch := p.Pitch() + semitones
	for i := len(theory.Strings) - 1; i >= 0; i-- {
		s := theory.Strings[i]
		if f := pitch - s.Offset(); f >= 0 && f <= theory.MaxFret {
			return theory.Position{String: s, Fret: f}
		}
	}
	return theory.Position{String: theory.StringE, Fret: min(max(pitch, 0), theory.MaxFret)}
}

// RootOffset is the upward shift from the groove key to root, 0..11.
func RootOffset(root theory.PitchClass) int {
	return int(theory.Mod(int(root) - int(catalog.GrooveRoot)))
}

// Transpose applies policy to every step. Rests stay nil.
func Transpose(steps []*theory.Position, semitones int, policy TransposePolicy) []*theory.Position {
	if policy == nil {
		policy = KeepString
	}
	out := make([]*theory.Position, len(steps))
	for i, st := range steps {
		if st == nil {
			continue
		}
		moved := policy(*st, semitones)
		out[i] = &moved
	}
	return out
}
