// Package catalog loads the static pattern, progression, scale, groove and
// voice tables embedded in the binary.
package catalog

import (
	"embed"
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var dataFS embed.FS

// Catalog holds every static table, indexed by id.
type Catalog struct {
	Genres       []Genre
	Patterns     map[string]DrumPattern
	Progressions []Progression
	Artists      []ArtistStyle
	Scales       []Scale
	Categories   []GrooveCategory
	Grooves      []Groove
	Voices       Voices

	// Accompaniment is the drum pattern started under a groove when the
	// drummer has no pattern.
	Accompaniment string

	patternOrder []string
}

type drumsFile struct {
	Genres   []Genre       `yaml:"genres"`
	Patterns []DrumPattern `yaml:"patterns"`
}

type harmonyFile struct {
	Progressions []Progression `yaml:"progressions"`
	Artists      []ArtistStyle `yaml:"artists"`
}

type fretboardFile struct {
	Scales        []Scale          `yaml:"scales"`
	Accompaniment string           `yaml:"accompaniment"`
	Categories    []GrooveCategory `yaml:"categories"`
	Grooves       []Groove         `yaml:"grooves"`
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
)

// Default returns the embedded catalog. The data ships with the binary, so a
// parse or validation failure is a programming error and panics.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Load()
		if err != nil {
			panic(err)
		}
		defaultCat = c
	})
	return defaultCat
}

// Load parses and validates the embedded tables.
func Load() (*Catalog, error) {
	var drums drumsFile
	var harmony harmonyFile
	var fret fretboardFile
	var voices Voices

	files := []struct {
		name string
		dst  any
	}{
		{"data/drums.yaml", &drums},
		{"data/harmony.yaml", &harmony},
		{"data/fretboard.yaml", &fret},
		{"data/voices.yaml", &voices},
	}
	for _, f := range files {
		data, err := dataFS.ReadFile(f.name)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, f.dst); err != nil {
			return nil, fmt.Errorf("%s: %w", f.name, err)
		}
	}

	c := &Catalog{
		Genres:        drums.Genres,
		Patterns:      make(map[string]DrumPattern, len(drums.Patterns)),
		Progressions:  harmony.Progressions,
		Artists:       harmony.Artists,
		Scales:        fret.Scales,
		Categories:    fret.Categories,
		Grooves:       fret.Grooves,
		Voices:        voices,
		Accompaniment: fret.Accompaniment,
	}
	for _, p := range drums.Patterns {
		if _, dup := c.Patterns[p.ID]; dup {
			return nil, fmt.Errorf("duplicate pattern %q", p.ID)
		}
		c.Patterns[p.ID] = p
		c.patternOrder = append(c.patternOrder, p.ID)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Genre looks up a genre by id.
func (c *Catalog) Genre(id string) (Genre, bool) {
	for _, g := range c.Genres {
		if g.ID == id {
			return g, true
		}
	}
	return Genre{}, false
}

// Pattern looks up a drum pattern by id.
func (c *Catalog) Pattern(id string) (DrumPattern, bool) {
	p, ok := c.Patterns[id]
	return p, ok
}

// PatternIDs returns pattern ids in file order.
func (c *Catalog) PatternIDs() []string {
	return append([]string(nil), c.patternOrder...)
}

// Progression looks up a chord progression by id.
func (c *Catalog) Progression(id string) (Progression, bool) {
	for _, p := range c.Progressions {
		if p.ID == id {
			return p, true
		}
	}
	return Progression{}, false
}

// Artist looks up an artist style by id.
func (c *Catalog) Artist(id string) (ArtistStyle, bool) {
	for _, a := range c.Artists {
		if a.ID == id {
			return a, true
		}
	}
	return ArtistStyle{}, false
}

// ArtistsByGenre groups artist styles by genre, genres sorted.
func (c *Catalog) ArtistsByGenre() map[string][]ArtistStyle {
	out := make(map[string][]ArtistStyle)
	for _, a := range c.Artists {
		out[a.Genre] = append(out[a.Genre], a)
	}
	return out
}

// ArtistGenres returns the sorted genre names used by artist styles.
func (c *Catalog) ArtistGenres() []string {
	var names []string
	for g := range c.ArtistsByGenre() {
		names = append(names, g)
	}
	sort.Strings(names)
	return names
}

// RandomArtist picks any artist style.
func (c *Catalog) RandomArtist(rng *rand.Rand) ArtistStyle {
	return c.Artists[rng.IntN(len(c.Artists))]
}

// Scale looks up a bass scale by id.
func (c *Catalog) Scale(id string) (Scale, bool) {
	for _, s := range c.Scales {
		if s.ID == id {
			return s, true
		}
	}
	return Scale{}, false
}

// Groove looks up a groove by id.
func (c *Catalog) Groove(id string) (Groove, bool) {
	for _, g := range c.Grooves {
		if g.ID == id {
			return g, true
		}
	}
	return Groove{}, false
}

// GroovesIn returns grooves of a category; "" means all.
func (c *Catalog) GroovesIn(category string) []Groove {
	if category == "" {
		return append([]Groove(nil), c.Grooves...)
	}
	var out []Groove
	for _, g := range c.Grooves {
		if g.Category == category {
			out = append(out, g)
		}
	}
	return out
}

// RandomGroove picks a groove from category ("" for any).
func (c *Catalog) RandomGroove(category string, rng *rand.Rand) (Groove, bool) {
	list := c.GroovesIn(category)
	if len(list) == 0 {
		return Groove{}, false
	}
	return list[rng.IntN(len(list))], true
}

// Category looks up a groove category by id.
func (c *Catalog) Category(id string) (GrooveCategory, bool) {
	for _, cat := range c.Categories {
		if cat.ID == id {
			return cat, true
		}
	}
	return GrooveCategory{}, false
}
