package catalog

import (
	"errors"
	"fmt"

	"go-drummer/theory"
)

// Highest groove pitch above open E. Eleven semitones of transposition
// then still lands on the G string at fret 12 or below.
const maxGroovePitch = 16

// Validate checks every cross-reference and length invariant.
func (c *Catalog) Validate() error {
	var errs []error
	for _, p := range c.Patterns {
		if err := validatePattern(p); err != nil {
			errs = append(errs, err)
		}
	}
	for _, g := range c.Genres {
		if len(g.Patterns) == 0 {
			errs = append(errs, fmt.Errorf("genre %s: no patterns", g.ID))
		}
		for _, id := range g.Patterns {
			if _, ok := c.Patterns[id]; !ok {
				errs = append(errs, fmt.Errorf("genre %s: unknown pattern %q", g.ID, id))
			}
		}
	}
	for _, p := range c.Progressions {
		if err := validateProgression(p); err != nil {
			errs = append(errs, err)
		}
	}
	for _, a := range c.Artists {
		if err := c.validateArtist(a); err != nil {
			errs = append(errs, err)
		}
	}
	for _, s := range c.Scales {
		if len(s.Intervals) == 0 || len(s.Arpeggio) == 0 {
			errs = append(errs, fmt.Errorf("scale %s: empty", s.ID))
		}
	}
	for _, g := range c.Grooves {
		if err := c.validateGroove(g); err != nil {
			errs = append(errs, err)
		}
	}
	if _, ok := c.Patterns[c.Accompaniment]; !ok {
		errs = append(errs, fmt.Errorf("accompaniment pattern %q missing", c.Accompaniment))
	}
	return errors.Join(errs...)
}

func validatePattern(p DrumPattern) error {
	switch p.TimeSignature {
	case FourFour, SixEight, TwelveEight:
	default:
		return fmt.Errorf("pattern %s: unsupported time signature %q", p.ID, p.TimeSignature)
	}
	if p.Bars < 1 {
		return fmt.Errorf("pattern %s: bars must be at least 1", p.ID)
	}
	want := p.TotalSteps()
	if len(p.Kick) != want || len(p.Snare) != want || len(p.Hihat) != want {
		return fmt.Errorf("pattern %s: rows %d/%d/%d, want %d",
			p.ID, len(p.Kick), len(p.Snare), len(p.Hihat), want)
	}
	if p.BPM < 40 || p.BPM > 220 {
		return fmt.Errorf("pattern %s: bpm %d out of range", p.ID, p.BPM)
	}
	return nil
}

func validateProgression(p Progression) error {
	if p.Bars < 1 || len(p.Steps) == 0 {
		return fmt.Errorf("progression %s: empty", p.ID)
	}
	lastBar, lastBeat := -1, -1.0
	for i, s := range p.Steps {
		if _, err := theory.ResolveChord(theory.C, s.Degree, s.Quality, 3); err != nil {
			return fmt.Errorf("progression %s step %d: %w", p.ID, i, err)
		}
		if s.Bar < 0 || s.Bar >= p.Bars {
			return fmt.Errorf("progression %s step %d: bar %d outside 0..%d", p.ID, i, s.Bar, p.Bars-1)
		}
		if s.Beat < 0 || s.Beat >= 4 {
			return fmt.Errorf("progression %s step %d: beat %.2f outside the bar", p.ID, i, s.Beat)
		}
		if s.Bar < lastBar || (s.Bar == lastBar && s.Beat <= lastBeat) {
			return fmt.Errorf("progression %s step %d: out of order", p.ID, i)
		}
		lastBar, lastBeat = s.Bar, s.Beat
	}
	if first := p.Steps[0]; first.Bar != 0 || first.Beat != 0 {
		return fmt.Errorf("progression %s: must start on the first downbeat", p.ID)
	}
	return nil
}

func (c *Catalog) validateArtist(a ArtistStyle) error {
	if _, ok := c.Progression(a.Progression); !ok {
		return fmt.Errorf("artist %s: unknown progression %q", a.ID, a.Progression)
	}
	if len(a.Intervals) == 0 || len(a.Rhythms) == 0 {
		return fmt.Errorf("artist %s: needs intervals and rhythms", a.ID)
	}
	for _, r := range a.Rhythms {
		if r <= 0 {
			return fmt.Errorf("artist %s: rhythm %.2f must be positive", a.ID, r)
		}
	}
	if a.Phrase.Min < 1 || a.Phrase.Max < a.Phrase.Min {
		return fmt.Errorf("artist %s: bad phrase range %d..%d", a.ID, a.Phrase.Min, a.Phrase.Max)
	}
	for _, p := range []float64{a.NoteDensity, a.RestProbability, a.BendProbability} {
		if p < 0 || p > 1 {
			return fmt.Errorf("artist %s: probability %.2f outside 0..1", a.ID, p)
		}
	}
	return nil
}

func (c *Catalog) validateGroove(g Groove) error {
	if _, ok := c.Category(g.Category); !ok {
		return fmt.Errorf("groove %s: unknown category %q", g.ID, g.Category)
	}
	if len(g.Steps) == 0 || len(g.Steps)%16 != 0 {
		return fmt.Errorf("groove %s: %d steps, want whole bars of 16", g.ID, len(g.Steps))
	}
	for i, st := range g.Steps {
		if st == nil {
			continue
		}
		if st.Fret < 0 || st.Fret > theory.MaxFret {
			return fmt.Errorf("groove %s step %d: fret %d off the neck", g.ID, i, st.Fret)
		}
		if st.Pitch() > maxGroovePitch {
			return fmt.Errorf("groove %s step %d: %s%d too high to transpose", g.ID, i, st.String, st.Fret)
		}
	}
	if g.Difficulty < 1 || g.Difficulty > 3 {
		return fmt.Errorf("groove %s: difficulty %d outside 1..3", g.ID, g.Difficulty)
	}
	return nil
}
