package fretboard

import (
	"slices"
	"strconv"

	"go-drummer/theory"
)

// CellState is how one fret position is drawn.
type CellState int

const (
	CellNone CellState = iota
	CellScale
	CellRoot
	CellDim // in the scale, outside the shape box
	CellChord
	CellGroove
	CellPlaying
)

// Cell is one string/fret position.
type Cell struct {
	State CellState
	Label string
}

// Frets is the number of drawn positions per string, open string included.
const Frets = theory.MaxFret + 1

// Snapshot is what the display draws for the bass. Cells are indexed by
// string, low E first.
type Snapshot struct {
	Root       string
	Scale      string
	ScaleName  string
	Cells      [4][Frets]Cell
	ShapeStart int
	ShapeEnd   int

	Shape     bool
	Arpeggio  bool
	Intervals bool
	Italian   bool

	Playing       bool
	PlayingGroove bool
	GrooveMode    bool
	Category      string
	Groove        string
	GrooveName    string
	GrooveBPM     int
	GrooveSteps   []string
	GrooveStep    int

	MelodySync bool
	ChordRoot  string
	Preset     string
	Volume     int
}

// Snapshot copies the display state.
func (p *Player) Snapshot() Snapshot {
	s := Snapshot{
		Root:          p.root.Name(p.italian),
		Shape:         p.shape,
		Arpeggio:      p.arpeggio,
		Intervals:     p.intervals,
		Italian:       p.italian,
		Playing:       p.playing,
		PlayingGroove: p.playingGroove,
		GrooveMode:    p.grooveMode,
		Category:      p.category,
		GrooveStep:    p.grooveStep,
		MelodySync:    p.following,
		Preset:        p.preset,
		Volume:        p.volume,
	}
	s.ShapeStart, s.ShapeEnd = p.ShapeWindow()
	if p.scale != nil {
		s.Scale, s.ScaleName = p.scale.ID, p.scale.Name
	}
	if p.following && p.hasChord {
		s.ChordRoot = p.chordRoot.Name(p.italian)
	}

	var groove []*theory.Position
	if p.groove != nil {
		s.Groove, s.GrooveName, s.GrooveBPM = p.groove.ID, p.groove.Name, p.groove.BPM
		groove = p.grooveSteps
		if !p.playingGroove {
			groove = p.TransposedGroove()
		}
		s.GrooveSteps = make([]string, len(groove))
		for i, st := range groove {
			s.GrooveSteps[i] = "."
			if st != nil {
				s.GrooveSteps[i] = st.String.String() + strconv.Itoa(st.Fret)
			}
		}
	}
	p.fillCells(&s, groove)
	return s
}

func (p *Player) fillCells(s *Snapshot, groove []*theory.Position) {
	tones := p.activeTones()
	for _, str := range theory.Strings {
		for f := 0; f < Frets; f++ {
			pos := theory.Position{String: str, Fret: f}
			s.Cells[str][f] = Cell{State: p.cellState(pos, tones, groove), Label: p.label(pos.PitchClass())}
		}
	}
}

func (p *Player) cellState(pos theory.Position, tones []theory.PitchClass, groove []*theory.Position) CellState {
	if p.sounding != nil && *p.sounding == pos {
		return CellPlaying
	}
	// a shown groove replaces the scale display
	if groove != nil {
		if slices.ContainsFunc(groove, func(g *theory.Position) bool { return g != nil && *g == pos }) {
			return CellGroove
		}
		return CellNone
	}
	pc := pos.PitchClass()
	if p.following && p.hasChord && slices.Contains(p.chordTones, pc) {
		return CellChord
	}
	if !slices.Contains(tones, pc) {
		return CellNone
	}
	if !p.inShape(pos.Fret) {
		return CellDim
	}
	if pc == p.scaleRoot() {
		return CellRoot
	}
	return CellScale
}

func (p *Player) label(pc theory.PitchClass) string {
	if p.intervals {
		return theory.IntervalName(int(pc) - int(p.scaleRoot()))
	}
	return pc.Name(p.italian)
}
