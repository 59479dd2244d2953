package theory

import "testing"

func TestParsePitchClass(t *testing.T) {
	tests := []struct {
		in   string
		want PitchClass
	}{
		{"C", C},
		{"c#", Cs},
		{"Db", Cs},
		{"Bb", As},
		{"Cb", B},
		{"Sol", G},
		{"la#", As},
		{"E", E},
	}
	for _, tt := range tests {
		got, err := ParsePitchClass(tt.in)
		if err != nil {
			t.Fatalf("ParsePitchClass(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParsePitchClass(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if _, err := ParsePitchClass("H"); err == nil {
		t.Error("expected error for H")
	}
}

func TestNames(t *testing.T) {
	if got := A.Name(true); got != "La" {
		t.Errorf("A italian = %q", got)
	}
	if got := NoteName(60, false); got != "C4" {
		t.Errorf("NoteName(60) = %q", got)
	}
	if got := NoteName(67, true); got != "Sol4" {
		t.Errorf("NoteName(67, italian) = %q", got)
	}
	if got := Mod(-1); got != B {
		t.Errorf("Mod(-1) = %v", got)
	}
	if got := IntervalName(10); got != "b7" {
		t.Errorf("IntervalName(10) = %q", got)
	}
}

func TestResolveChord(t *testing.T) {
	c, err := ResolveChord(C, "V", "dom7", 3)
	if err != nil {
		t.Fatal(err)
	}
	if c.Root != G {
		t.Errorf("root = %v, want G", c.Root)
	}
	want := []int{55, 59, 62, 65}
	for i, n := range want {
		if c.Notes[i] != n {
			t.Fatalf("notes = %v, want %v", c.Notes, want)
		}
	}
	if c.Name(false) != "G7" {
		t.Errorf("name = %q", c.Name(false))
	}
	if _, err := ResolveChord(C, "VIII", "maj", 3); err == nil {
		t.Error("expected error for bad degree")
	}
	if _, err := ResolveChord(C, "I", "power", 3); err == nil {
		t.Error("expected error for bad quality")
	}
}

func TestShapeWindow(t *testing.T) {
	tests := []struct {
		root       PitchClass
		start, end int
	}{
		{E, 0, 4},
		{F, 0, 4},
		{A, 4, 8},
		{G, 2, 6},
		{Ds, 10, 14},
	}
	for _, tt := range tests {
		s, e := ShapeWindow(tt.root)
		if s != tt.start || e != tt.end {
			t.Errorf("ShapeWindow(%v) = %d..%d, want %d..%d", tt.root, s, e, tt.start, tt.end)
		}
	}
}

func TestPositions(t *testing.T) {
	p := Position{String: StringA, Fret: 2}
	if p.PitchClass() != B {
		t.Errorf("A2 = %v, want B", p.PitchClass())
	}
	if p.MIDI() != 35 {
		t.Errorf("A2 midi = %d, want 35", p.MIDI())
	}
	if FretFor(StringD, E) != 2 {
		t.Errorf("E on D string = %d", FretFor(StringD, E))
	}
	pos, ok := MIDIToPosition(43)
	if !ok || pos.String != StringG || pos.Fret != 0 {
		t.Errorf("MIDIToPosition(43) = %+v", pos)
	}
}
