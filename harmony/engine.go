// Package harmony plays chord progressions and generated melodies in a key,
// locked to the drum grid.
package harmony

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"go-drummer/catalog"
	"go-drummer/debug"
	"go-drummer/failure"
	"go-drummer/instrument"
	"go-drummer/sequencer"
	"go-drummer/syncbus"
	"go-drummer/theory"
)

// Mode selects what the engine plays.
type Mode string

const (
	ModeChords Mode = "chords"
	ModeMelody Mode = "melody"
)

// Octave limits for chords; melodies sound one octave higher.
const (
	MinOctave     = 1
	MaxOctave     = 5
	DefaultOctave = 3
)

// Instruments the chord and melody voices can switch between.
var Instruments = []string{"piano", "organ"}

const bendSemitones = 2

// DefaultVolume is the chord and melody level before any change.
const DefaultVolume = 80

// SavedMelody is a melody kept for later replay.
type SavedMelody struct {
	ID            string    `json:"id"`
	ArtistID      string    `json:"artistStyleId"`
	Key           string    `json:"key"`
	ProgressionID string    `json:"progressionId"`
	Notes         []Note    `json:"notes"`
	Bars          int       `json:"bars"`
	SavedAt       time.Time `json:"savedAt"`
}

// MelodyStore keeps saved melodies.
type MelodyStore interface {
	Add(SavedMelody) error
	Items() []SavedMelody
}

// Config wires an Engine.
type Config struct {
	Catalog   *catalog.Catalog
	Transport *sequencer.Transport
	Bus       *syncbus.Bus
	Drums     syncbus.DrumPort
	Chords    instrument.Instrument
	Melody    instrument.Instrument
	Saved     MelodyStore
	Rand      *rand.Rand
	Ready     func() bool
	Notify    func()
}

// slot is what one sequencer step does.
type slot struct {
	chord    *catalog.ChordStep // chords mode
	note     *Note              // melody mode
	barChord *catalog.ChordStep // melody mode, first step of a bar
}

// Engine is the chord/melody player. All methods run on the transport
// timeline.
type Engine struct {
	cat    *catalog.Catalog
	tr     *sequencer.Transport
	seq    *sequencer.StepSequencer
	bus    *syncbus.Bus
	drums  syncbus.DrumPort
	bass   syncbus.BassSyncPort
	chords instrument.Instrument
	lead   instrument.Instrument
	saved  MelodyStore
	rng    *rand.Rand
	ready  func() bool
	notify func()

	key         theory.PitchClass
	octave      int
	mode        Mode
	progression *catalog.Progression
	artist      *catalog.ArtistStyle
	melody      *Melody
	instrument  string
	volume      int
	italian     bool
	playing     bool

	slots     []slot
	chordRoot theory.PitchClass
	hasChord  bool
	display   string
	detail    string
}

// New creates a stopped engine in chords mode, key C.
func New(c Config) *Engine {
	rng := c.Rand
	if rng == nil {
		rng = NewRand(uint64(time.Now().UnixNano()))
	}
	e := &Engine{
		cat:        c.Catalog,
		tr:         c.Transport,
		seq:        c.Transport.NewSequencer("harmony"),
		bus:        c.Bus,
		drums:      c.Drums,
		chords:     c.Chords,
		lead:       c.Melody,
		saved:      c.Saved,
		rng:        rng,
		ready:      c.Ready,
		notify:     c.Notify,
		key:        theory.C,
		octave:     DefaultOctave,
		mode:       ModeChords,
		instrument: Instruments[0],
		volume:     DefaultVolume,
		display:    "-",
		detail:     "Select a pattern",
	}
	e.applyVolume()
	if e.bus != nil {
		e.bus.OnPatternChanged(func(syncbus.PatternChanged) { e.restartIfPlaying() })
	}
	return e
}

// SetBass connects the bass player once it exists.
func (e *Engine) SetBass(b syncbus.BassSyncPort) { e.bass = b }

func (e *Engine) changed() {
	if e.notify != nil {
		e.notify()
	}
}

// SelectKey sets the tonal center. fromPeer marks a change that came from
// the bass and must not be echoed back.
func (e *Engine) SelectKey(pc theory.PitchClass, fromPeer bool) {
	if !pc.Valid() {
		return
	}
	e.key = pc
	debug.Log("harmony", "key %s (peer=%v)", pc, fromPeer)
	e.restartIfPlaying()
	if !fromPeer {
		e.bus.PublishRoot(syncbus.RootChanged{PitchClass: pc, Origin: syncbus.OriginHarmony})
	}
	e.changed()
}

// Key returns the tonal center.
func (e *Engine) Key() theory.PitchClass { return e.key }

// SelectMode switches between chords and melody. Playback stops and any
// generated melody is dropped.
func (e *Engine) SelectMode(m Mode) error {
	if m != ModeChords && m != ModeMelody {
		return failure.Invalid("mode", string(m))
	}
	if e.playing {
		e.Stop()
	}
	e.mode = m
	e.progression = nil
	e.artist = nil
	e.melody = nil
	e.setDisplay("-", "Select a pattern")
	debug.Log("harmony", "mode %s", m)
	e.changed()
	return nil
}

// Mode returns the current mode.
func (e *Engine) Mode() Mode { return e.mode }

// SelectPattern picks a chord progression and plays it.
func (e *Engine) SelectPattern(id string) error {
	p, ok := e.cat.Progression(id)
	if !ok {
		debug.Log("harmony", "unknown progression %q", id)
		return failure.Invalid("progression", id)
	}
	e.progression = &p
	if e.mode == ModeMelody {
		e.melody = nil
	}
	return e.playOrRestart()
}

// SelectArtist picks an artist style and plays a fresh melody over its
// progression. Chords mode switches to melody mode.
func (e *Engine) SelectArtist(id string) error {
	a, ok := e.cat.Artist(id)
	if !ok {
		debug.Log("harmony", "unknown artist %q", id)
		return failure.Invalid("artist", id)
	}
	if e.mode != ModeMelody {
		e.SelectMode(ModeMelody)
	}
	e.setArtist(a)
	e.melody = nil
	return e.playOrRestart()
}

func (e *Engine) setArtist(a catalog.ArtistStyle) {
	e.artist = &a
	if p, ok := e.cat.Progression(a.Progression); ok {
		e.progression = &p
	}
}

func (e *Engine) playOrRestart() error {
	if e.playing {
		e.seq.Stop()
		e.playing = false
	}
	return e.Play()
}

// Play starts the current content.
func (e *Engine) Play() error {
	if e.ready != nil && !e.ready() {
		debug.Log("harmony", "play before audio init")
		return failure.NotReady("harmony")
	}
	if e.mode == ModeMelody {
		if e.artist == nil {
			e.setArtist(e.cat.RandomArtist(e.rng))
		}
		if e.progression == nil {
			e.setDisplay("ERROR", "Select an artist first")
			return failure.Missing("melody without progression", "Select an artist first")
		}
		if e.melody == nil {
			m := Generate(*e.artist, e.progression.Bars, e.rng)
			m.Progression = e.progression.ID
			e.melody = &m
		}
	} else if e.progression == nil {
		e.setDisplay("ERROR", "Select a pattern first")
		e.changed()
		return failure.Missing("chords without progression", "Select a pattern first")
	}
	if err := e.start(); err != nil {
		return err
	}
	e.playing = true
	debug.Log("harmony", "playing %s %s in %s", e.mode, e.progression.ID, e.key)
	e.changed()
	return nil
}

// Stop releases every voice, drops the generated melody and clears the
// bass chord display.
func (e *Engine) Stop() {
	e.seq.Stop()
	e.playing = false
	if e.chords != nil {
		instrument.Release(e.chords)
	}
	if e.lead != nil {
		instrument.Release(e.lead)
	}
	e.melody = nil
	e.hasChord = false
	e.setDisplay("-", "Stopped")
	if e.bass != nil {
		e.bass.ClearMelodyChord()
	}
	e.changed()
}

// TogglePlay starts or stops.
func (e *Engine) TogglePlay() error {
	if e.playing {
		e.Stop()
		return nil
	}
	return e.Play()
}

// IsPlaying reports playback.
func (e *Engine) IsPlaying() bool { return e.playing }

func (e *Engine) restartIfPlaying() {
	if !e.playing {
		return
	}
	e.seq.Stop()
	if err := e.start(); err != nil {
		debug.Log("harmony", "restart: %v", err)
		e.playing = false
	}
}

func (e *Engine) timeSignature() catalog.TimeSignature {
	if e.drums != nil {
		if p, ok := e.drums.CurrentPattern(); ok {
			return p.TimeSignature
		}
	}
	return catalog.FourFour
}

func (e *Engine) start() error {
	ts := e.timeSignature()
	spb := ts.StepsPerBar()
	e.slots = e.buildSlots(spb)
	return e.seq.Start(len(e.slots), sequencer.Grid(ts.Triplet()), e.onStep)
}

// stepIndex places a chord or note on the step grid.
func stepIndex(bar int, beat float64, stepsPerBar int) int {
	return bar*stepsPerBar + int(beat*float64(stepsPerBar)/BeatsPerBar)
}

func (e *Engine) buildSlots(stepsPerBar int) []slot {
	p := e.progression
	bars := p.Bars
	if bars < 1 {
		bars = 1
	}
	slots := make([]slot, bars*stepsPerBar)
	if e.mode == ModeChords {
		for i := range p.Steps {
			idx := stepIndex(p.Steps[i].Bar, p.Steps[i].Beat, stepsPerBar)
			if idx >= 0 && idx < len(slots) {
				slots[idx].chord = &p.Steps[i]
			}
		}
		return slots
	}
	for bar := 0; bar < bars; bar++ {
		if c, ok := p.ChordAt(bar); ok {
			slots[bar*stepsPerBar].barChord = &c
		}
	}
	for i := range e.melody.Notes {
		n := &e.melody.Notes[i]
		idx := stepIndex(n.Bar, n.Beat, stepsPerBar)
		if idx >= 0 && idx < len(slots) {
			slots[idx].note = n
		}
	}
	return slots
}

func quarters(q float64, bpm int) time.Duration {
	return time.Duration(q * float64(time.Minute) / float64(bpm))
}

func (e *Engine) onStep(step int, at time.Time) {
	if step >= len(e.slots) {
		return
	}
	s := e.slots[step]
	bpm := e.tr.BPM()
	if s.chord != nil {
		if c, ok := e.resolve(*s.chord); ok {
			dur := s.chord.Duration
			if dur <= 0 {
				dur = 2
			}
			if e.chords != nil {
				for _, n := range c.Notes {
					e.chords.TriggerAttackRelease(uint8(n), quarters(dur, bpm), at)
				}
			}
			e.setDisplay(c.Name(e.italian), noteList(c.Notes, e.italian))
			e.harmonicEvent(c)
		}
	}
	if s.barChord != nil {
		if c, ok := e.resolve(*s.barChord); ok {
			e.harmonicEvent(c)
		}
	}
	if s.note != nil {
		pitch := e.notePitch(*s.note)
		dur := quarters(s.note.Duration, bpm)
		if e.lead != nil {
			e.lead.TriggerAttackRelease(uint8(pitch), dur, at)
			if s.note.Bend {
				instrument.Bend(e.lead, bendSemitones, at.Add(dur/2))
			}
		}
		e.setDisplay(theory.NoteName(pitch, e.italian), fmt.Sprintf("Octave %d", e.octave+1))
	}
	e.changed()
}

func (e *Engine) notePitch(n Note) int {
	return theory.MIDINote(e.key, e.octave+1) + n.Interval
}

func (e *Engine) resolve(s catalog.ChordStep) (theory.Chord, bool) {
	c, err := theory.ResolveChord(e.key, s.Degree, s.Quality, e.octave)
	if err != nil {
		debug.Log("harmony", "resolve %s%s: %v", s.Degree, s.Quality, err)
		return theory.Chord{}, false
	}
	return c, true
}

// harmonicEvent publishes a sounding chord and feeds the bass.
func (e *Engine) harmonicEvent(c theory.Chord) {
	e.chordRoot, e.hasChord = c.Root, true
	e.bus.PublishChord(syncbus.ChordChanged{Root: c.Root, Notes: c.Notes})
	if e.bass == nil {
		return
	}
	e.bass.ShowMelodyChord(c.Root, c.Notes)
	if e.bass.IsFollowingHarmony() {
		e.bass.PlayRoot(c.Root)
	}
}

// ChordRoot returns the root of the sounding chord.
func (e *Engine) ChordRoot() (theory.PitchClass, bool) { return e.chordRoot, e.hasChord }

func (e *Engine) setDisplay(main, detail string) {
	e.display, e.detail = main, detail
}

func noteList(notes []int, italian bool) string {
	names := make([]string, len(notes))
	for i, n := range notes {
		names[i] = theory.Mod(n).Name(italian)
	}
	return strings.Join(names, " - ")
}

// AdjustOctave moves chords and melody by whole octaves within 1..5.
func (e *Engine) AdjustOctave(delta int) int {
	o := e.octave + delta
	if o < MinOctave || o > MaxOctave {
		return e.octave
	}
	e.octave = o
	e.restartIfPlaying()
	e.changed()
	return o
}

// Octave returns the chord octave.
func (e *Engine) Octave() int { return e.octave }

// SelectInstrument switches the chord and melody voicing.
func (e *Engine) SelectInstrument(name string) error {
	known := false
	for _, n := range Instruments {
		known = known || n == name
	}
	if !known {
		return failure.Invalid("instrument", name)
	}
	for _, inst := range []instrument.Instrument{e.chords, e.lead} {
		if inst == nil {
			continue
		}
		if err := instrument.SetPreset(inst, name); err != nil {
			return err
		}
	}
	e.instrument = name
	e.changed()
	return nil
}

// SetVolume sets the 0..100 level of the chord and melody voices.
func (e *Engine) SetVolume(v int) {
	e.volume = min(max(v, 0), 100)
	e.applyVolume()
	e.changed()
}

// Volume returns the chord and melody level.
func (e *Engine) Volume() int { return e.volume }

func (e *Engine) applyVolume() {
	db := instrument.VolumeToDB(e.volume)
	for _, inst := range []instrument.Instrument{e.chords, e.lead} {
		if inst != nil {
			inst.SetVolume(db)
		}
	}
}

// SetItalian switches note names to Do Re Mi.
func (e *Engine) SetItalian(on bool) {
	e.italian = on
	e.changed()
}

// Italian reports the notation.
func (e *Engine) Italian() bool { return e.italian }

// Melody returns the generated melody, if any.
func (e *Engine) Melody() (Melody, bool) {
	if e.melody == nil {
		return Melody{}, false
	}
	return *e.melody, true
}

// NextMelody regenerates the melody with the same artist and restarts.
func (e *Engine) NextMelody() error {
	if e.mode != ModeMelody || e.artist == nil {
		return failure.Missing("next without artist", "Select an artist first")
	}
	e.melody = nil
	return e.playOrRestart()
}

// SaveMelody stores the current melody.
func (e *Engine) SaveMelody() (SavedMelody, error) {
	if e.melody == nil || e.artist == nil {
		return SavedMelody{}, failure.Missing("save without melody", "Generate a melody first")
	}
	if e.saved == nil {
		return SavedMelody{}, failure.Missing("no melody store", "Saving is not available")
	}
	now := e.tr.Now()
	sm := SavedMelody{
		ID:            e.savedID(fmt.Sprintf("%s-%d", e.artist.ID, now.UnixMilli())),
		ArtistID:      e.artist.ID,
		Key:           e.key.String(),
		ProgressionID: e.melody.Progression,
		Notes:         append([]Note(nil), e.melody.Notes...),
		Bars:          e.melody.Bars,
		SavedAt:       now,
	}
	// a storage-kind error still means the melody was kept in memory
	err := e.saved.Add(sm)
	if err != nil && !failure.Is(err, failure.Storage) {
		return SavedMelody{}, err
	}
	debug.Log("harmony", "saved melody %s", sm.ID)
	e.changed()
	return sm, err
}

// savedID returns base, suffixed with a counter when a saved melody already
// uses it.
func (e *Engine) savedID(base string) string {
	taken := make(map[string]bool)
	for _, sm := range e.saved.Items() {
		taken[sm.ID] = true
	}
	id := base
	for n := 2; taken[id]; n++ {
		id = fmt.Sprintf("%s-%d", base, n)
	}
	return id
}

// LoadMelody replays a saved melody in melody mode.
func (e *Engine) LoadMelody(id string) error {
	if e.saved == nil {
		return failure.Invalid("saved melody", id)
	}
	for _, sm := range e.saved.Items() {
		if sm.ID != id {
			continue
		}
		p, ok := e.cat.Progression(sm.ProgressionID)
		if !ok {
			return failure.Invalid("progression", sm.ProgressionID)
		}
		if e.mode != ModeMelody {
			e.SelectMode(ModeMelody)
		}
		if a, ok := e.cat.Artist(sm.ArtistID); ok {
			e.artist = &a
		}
		if key, err := theory.ParsePitchClass(sm.Key); err == nil && key != e.key {
			e.key = key
			e.bus.PublishRoot(syncbus.RootChanged{PitchClass: key, Origin: syncbus.OriginHarmony})
		}
		e.progression = &p
		e.melody = &Melody{
			ArtistID:    sm.ArtistID,
			Progression: sm.ProgressionID,
			Bars:        sm.Bars,
			Notes:       append([]Note(nil), sm.Notes...),
		}
		if e.artist != nil {
			e.melody.Scale = e.artist.Scale
		}
		return e.playOrRestart()
	}
	return failure.Invalid("saved melody", id)
}

// SavedMelodies lists stored melodies.
func (e *Engine) SavedMelodies() []SavedMelody {
	if e.saved == nil {
		return nil
	}
	return e.saved.Items()
}

// Dispose stops and frees the voices.
func (e *Engine) Dispose() {
	e.Stop()
	if e.chords != nil {
		e.chords.Dispose()
	}
	if e.lead != nil {
		e.lead.Dispose()
	}
}
