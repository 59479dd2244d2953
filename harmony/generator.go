package harmony

import (
	"math/rand/v2"

	"go-drummer/catalog"
)

// BeatsPerBar is the length of a generated bar in quarter notes.
const BeatsPerBar = 4

// triad tones pulled in 30% of the time to keep lines grounded
var triad = []int{0, 4, 7}

const triadBias = 0.3

// Note is one generated melody note. Beat and Duration are quarter notes.
type Note struct {
	Interval int     `json:"interval"`
	Duration float64 `json:"duration"`
	Beat     float64 `json:"beat"`
	Bar      int     `json:"bar"`
	Bend     bool    `json:"bend,omitempty"`
}

// Melody is a generated line over a progression.
type Melody struct {
	ArtistID    string `json:"artistStyleId"`
	Progression string `json:"progressionId"`
	Scale       string `json:"scaleName"`
	Bars        int    `json:"bars"`
	Notes       []Note `json:"notes"`
}

// NewRand returns a generator seeded with seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

// Generate writes bars of melody in the style of artist. Lines are built
// phrase by phrase: each phrase draws its length from the artist's range and
// each slot is either a rest or a note drawn from the artist's intervals.
// Between phrases the line breathes with probability 1-noteDensity.
func Generate(artist catalog.ArtistStyle, bars int, rng *rand.Rand) Melody {
	m := Melody{
		ArtistID:    artist.ID,
		Progression: artist.Progression,
		Scale:       artist.Scale,
		Bars:        bars,
	}
	if len(artist.Rhythms) == 0 {
		return m
	}
	rhythm := func() float64 { return artist.Rhythms[rng.IntN(len(artist.Rhythms))] }
	lo, hi := artist.Phrase.Min, artist.Phrase.Max
	if lo < 1 {
		lo = 1
	}
	if hi < lo {
		hi = lo
	}

	for bar := 0; bar < bars; bar++ {
		beat := 0.0
		for beat < BeatsPerBar {
			phrase := lo + rng.IntN(hi-lo+1)
			for i := 0; i < phrase && beat < BeatsPerBar; i++ {
				if rng.Float64() < artist.RestProbability {
					beat += rhythm()
					continue
				}
				var interval int
				if rng.Float64() < triadBias || len(artist.Intervals) == 0 {
					interval = triad[rng.IntN(len(triad))]
				} else {
					interval = artist.Intervals[rng.IntN(len(artist.Intervals))]
				}
				dur := rhythm()
				if beat+dur > BeatsPerBar {
					dur = BeatsPerBar - beat
				}
				bend := artist.BendProbability > 0 && rng.Float64() < artist.BendProbability
				m.Notes = append(m.Notes, Note{
					Interval: interval,
					Duration: dur,
					Beat:     beat,
					Bar:      bar,
					Bend:     bend,
				})
				beat += dur
			}
			if beat < BeatsPerBar && rng.Float64() >= artist.NoteDensity {
				beat += rhythm()
			}
		}
	}
	return m
}
