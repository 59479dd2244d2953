package catalog

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"go-drummer/theory"
)

// TimeSignature is one of 4/4, 6/8 or 12/8.
type TimeSignature string

const (
	FourFour    TimeSignature = "4/4"
	SixEight    TimeSignature = "6/8"
	TwelveEight TimeSignature = "12/8"
)

// StepsPerBar is 16 sixteenths for 4/4, 6 or 12 eighth triplets otherwise.
func (ts TimeSignature) StepsPerBar() int {
	switch ts {
	case SixEight:
		return 6
	case TwelveEight:
		return 12
	default:
		return 16
	}
}

// Triplet reports whether steps are eighth-note triplets.
func (ts TimeSignature) Triplet() bool {
	return ts == SixEight || ts == TwelveEight
}

// BeatsPerBar returns the counted beats for the beat display.
func (ts TimeSignature) BeatsPerBar() int {
	switch ts {
	case SixEight:
		return 2
	default:
		return 4
	}
}

// StepsPerBeat returns steps per counted beat.
func (ts TimeSignature) StepsPerBeat() int {
	return ts.StepsPerBar() / ts.BeatsPerBar()
}

// Meter returns numerator and denominator.
func (ts TimeSignature) Meter() (num, denom uint8) {
	switch ts {
	case SixEight:
		return 6, 8
	case TwelveEight:
		return 12, 8
	default:
		return 4, 4
	}
}

// DrumPattern is a fixed kick/snare/hihat grid.
type DrumPattern struct {
	ID            string        `yaml:"id"`
	Name          string        `yaml:"name"`
	Genre         string        `yaml:"genre"`
	BPM           int           `yaml:"bpm"`
	Bars          int           `yaml:"bars"`
	TimeSignature TimeSignature `yaml:"timeSignature"`
	Kick          []int         `yaml:"kick"`
	Snare         []int         `yaml:"snare"`
	Hihat         []int         `yaml:"hihat"`
}

// TotalSteps is bars times steps per bar.
func (p DrumPattern) TotalSteps() int {
	return p.Bars * p.TimeSignature.StepsPerBar()
}

// VoiceSetting is one drum voice in a genre preset.
type VoiceSetting struct {
	Type   string `yaml:"type"`
	Volume int    `yaml:"volume"`
	Decay  int    `yaml:"decay"`
}

// AudioPreset is the tempo and drum voicing applied when a genre is picked.
type AudioPreset struct {
	BPM   int          `yaml:"bpm"`
	Kick  VoiceSetting `yaml:"kick"`
	Snare VoiceSetting `yaml:"snare"`
	Hihat VoiceSetting `yaml:"hihat"`
}

// Genre groups drum patterns.
type Genre struct {
	ID       string      `yaml:"id"`
	Name     string      `yaml:"name"`
	Patterns []string    `yaml:"patterns"`
	Preset   AudioPreset `yaml:"preset"`
}

// ChordStep places one chord inside a progression.
type ChordStep struct {
	Degree   string         `yaml:"degree"`
	Quality  theory.Quality `yaml:"quality"`
	Bar      int            `yaml:"bar"`
	Beat     float64        `yaml:"beat"`     // quarter notes into the bar
	Duration float64        `yaml:"duration"` // quarter notes
}

// Progression is a roman-numeral chord sequence.
type Progression struct {
	ID       string      `yaml:"id"`
	Name     string      `yaml:"name"`
	Category string      `yaml:"category"`
	Bars     int         `yaml:"bars"`
	Steps    []ChordStep `yaml:"steps"`
}

// ChordAt returns the chord sounding at the start of bar. Steps are
// ordered, so the last one starting at or before the downbeat wins.
func (p Progression) ChordAt(bar int) (ChordStep, bool) {
	var found ChordStep
	ok := false
	for _, s := range p.Steps {
		if s.Bar < bar || (s.Bar == bar && s.Beat == 0) {
			found, ok = s, true
		}
	}
	return found, ok
}

// Range is an inclusive integer range.
type Range struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// ArtistStyle parameterizes the melody generator.
type ArtistStyle struct {
	ID              string    `yaml:"id"`
	Name            string    `yaml:"name"`
	Genre           string    `yaml:"genre"`
	Scale           string    `yaml:"scale"`
	Progression     string    `yaml:"progression"`
	NoteDensity     float64   `yaml:"noteDensity"`
	RestProbability float64   `yaml:"restProbability"`
	Intervals       []int     `yaml:"intervals"`
	Rhythms         []float64 `yaml:"rhythms"` // quarter notes
	Phrase          Range     `yaml:"phrase"`
	BendProbability float64   `yaml:"bendProbability"`
}

// Scale is a bass scale with its arpeggio subset.
type Scale struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name"`
	Intervals []int  `yaml:"intervals"`
	Arpeggio  []int  `yaml:"arpeggio"`
}

// PitchClasses returns the scale (or arpeggio) notes on root.
func (s Scale) PitchClasses(root theory.PitchClass, arpeggio bool) []theory.PitchClass {
	iv := s.Intervals
	if arpeggio {
		iv = s.Arpeggio
	}
	out := make([]theory.PitchClass, len(iv))
	for i, n := range iv {
		out[i] = root.Add(n)
	}
	return out
}

// GrooveCategory labels a family of grooves.
type GrooveCategory struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// Groove is a bass line written in E. Nil steps are rests.
type Groove struct {
	ID          string
	Name        string
	Description string
	Category    string
	BPM         int
	Difficulty  int
	Steps       []*theory.Position
}

// GrooveRoot is the key every groove is written in.
const GrooveRoot = theory.E

type grooveYAML struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Category    string `yaml:"category"`
	BPM         int    `yaml:"bpm"`
	Difficulty  int    `yaml:"difficulty"`
	Steps       string `yaml:"steps"`
}

// UnmarshalYAML reads the compact "E0 . A2 |" step notation.
func (g *Groove) UnmarshalYAML(n *yaml.Node) error {
	var raw grooveYAML
	if err := n.Decode(&raw); err != nil {
		return err
	}
	steps, err := ParseGrooveSteps(raw.Steps)
	if err != nil {
		return fmt.Errorf("groove %s: %w", raw.ID, err)
	}
	*g = Groove{
		ID:          raw.ID,
		Name:        raw.Name,
		Description: raw.Description,
		Category:    raw.Category,
		BPM:         raw.BPM,
		Difficulty:  raw.Difficulty,
		Steps:       steps,
	}
	return nil
}

// ParseGrooveSteps parses string+fret tokens, "." for rests, "|" ignored.
func ParseGrooveSteps(s string) ([]*theory.Position, error) {
	var steps []*theory.Position
	for _, tok := range strings.Fields(s) {
		switch tok {
		case "|":
			continue
		case ".":
			steps = append(steps, nil)
			continue
		}
		str, ok := theory.ParseString(tok[:1])
		if !ok {
			return nil, fmt.Errorf("bad string in %q", tok)
		}
		fret, err := strconv.Atoi(tok[1:])
		if err != nil {
			return nil, fmt.Errorf("bad fret in %q", tok)
		}
		steps = append(steps, &theory.Position{String: str, Fret: fret})
	}
	return steps, nil
}

// FormatGrooveSteps writes steps back in the compact notation.
func FormatGrooveSteps(steps []*theory.Position) string {
	var b strings.Builder
	for i, st := range steps {
		if i > 0 {
			if i%4 == 0 {
				b.WriteString(" | ")
			} else {
				b.WriteByte(' ')
			}
		}
		if st == nil {
			b.WriteByte('.')
			continue
		}
		fmt.Fprintf(&b, "%s%d", st.String, st.Fret)
	}
	return b.String()
}

// Envelope is an ADSR in seconds (sustain is a level).
type Envelope struct {
	Attack  float64 `yaml:"attack"`
	Decay   float64 `yaml:"decay"`
	Sustain float64 `yaml:"sustain"`
	Release float64 `yaml:"release"`
}

// Seconds converts a stage length.
func Seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// Voicing describes one synth sound.
type Voicing struct {
	Wave       string    `yaml:"wave"` // sine, triangle, sawtooth, square, fm, white, pink
	Partials   []float64 `yaml:"partials"`
	Drop       float64   `yaml:"drop"`
	PitchDecay float64   `yaml:"pitchDecay"`
	HighPass   float64   `yaml:"highpass"`
	LowPass    float64   `yaml:"lowpass"`
	Envelope   Envelope  `yaml:"envelope"`
}

// Voices holds voicings per instrument family.
type Voices struct {
	Kick  map[string]Voicing `yaml:"kick"`
	Snare map[string]Voicing `yaml:"snare"`
	Hihat map[string]Voicing `yaml:"hihat"`
	Bass  map[string]Voicing `yaml:"bass"`
	Keys  map[string]Voicing `yaml:"keys"`
}

// Family returns the voicings for a voice name.
func (v Voices) Family(voice string) map[string]Voicing {
	switch voice {
	case "kick":
		return v.Kick
	case "snare":
		return v.Snare
	case "hihat":
		return v.Hihat
	case "bass":
		return v.Bass
	case "keys", "chords", "melody":
		return v.Keys
	}
	return nil
}
