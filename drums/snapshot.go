package drums

import "go-drummer/catalog"

// Snapshot is what the display draws for the drum machine.
type Snapshot struct {
	Genre         string
	Pattern       string
	PatternName   string
	BPM           int
	Playing       bool
	Auto          bool
	Step          int // -1 when stopped
	StepInBar     int // -1 when stopped
	Bar           int
	Bars          int
	Beat          int // 1-based, 0 when stopped
	BeatsPerBar   int
	StepsPerBar   int
	TimeSignature catalog.TimeSignature

	// rows of the bar being played
	Kick, Snare, Hihat []int

	Volumes map[string]int
	Presets map[string]string
	Master  int
}

// Snapshot copies the display state.
func (p *Player) Snapshot() Snapshot {
	s := Snapshot{
		Genre:     p.genre,
		BPM:       p.tr.BPM(),
		Playing:   p.playing,
		Auto:      p.auto,
		Step:      -1,
		StepInBar: -1,
		Bar:       p.bar,
		Volumes:   make(map[string]int, len(p.volumes)),
		Presets:   make(map[string]string, len(p.presets)),
		Master:    p.master,
	}
	for k, v := range p.volumes {
		s.Volumes[k] = v
	}
	for k, v := range p.presets {
		s.Presets[k] = v
	}
	if !p.hasPattern {
		return s
	}
	pat := p.pattern
	ts := pat.TimeSignature
	spb := ts.StepsPerBar()
	s.Pattern, s.PatternName = pat.ID, pat.Name
	s.Bars = pat.Bars
	s.TimeSignature = ts
	s.StepsPerBar = spb
	s.BeatsPerBar = ts.BeatsPerBar()
	if p.playing && p.seq.Step() >= 0 {
		s.Step = p.step
		s.StepInBar = p.step % spb
		s.Beat = s.StepInBar/ts.StepsPerBeat() + 1
	}
	lo, hi := p.bar*spb, (p.bar+1)*spb
	s.Kick = barRow(pat.Kick, lo, hi)
	s.Snare = barRow(pat.Snare, lo, hi)
	s.Hihat = barRow(pat.Hihat, lo, hi)
	return s
}

func barRow(row []int, lo, hi int) []int {
	if hi > len(row) {
		hi = len(row)
	}
	if lo >= hi {
		return nil
	}
	return append([]int(nil), row[lo:hi]...)
}
