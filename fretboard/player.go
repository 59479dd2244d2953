// Package fretboard is the bass trainer: scale display on a four-string
// neck, kick-synced scale autoplay, transposed groove playback and the bass
// half of the harmony sync.
package fretboard

import (
	"math/rand/v2"
	"slices"
	"strconv"
	"time"

	"go-drummer/catalog"
	"go-drummer/debug"
	"go-drummer/failure"
	"go-drummer/instrument"
	"go-drummer/sequencer"
	"go-drummer/syncbus"
	"go-drummer/theory"
)

// DefaultVolume is the bass level before any change.
const DefaultVolume = 80

// Config wires a Player.
type Config struct {
	Catalog   *catalog.Catalog
	Transport *sequencer.Transport
	Bus       *syncbus.Bus
	Drums     syncbus.DrumPort
	Bass      instrument.Instrument
	Policy    TransposePolicy // nil means KeepString
	Rand      *rand.Rand
	Ready     func() bool
	Notify    func()
}

// Player is the bass. All methods run on the transport timeline.
type Player struct {
	cat    *catalog.Catalog
	tr     *sequencer.Transport
	seq    *sequencer.StepSequencer
	bus    *syncbus.Bus
	drums  syncbus.DrumPort
	bass   instrument.Instrument
	policy TransposePolicy
	rng    *rand.Rand
	ready  func() bool
	notify func()

	root      theory.PitchClass
	scale     *catalog.Scale
	shape     bool
	arpeggio  bool
	intervals bool
	italian   bool

	// scale autoplay
	playing    bool
	scaleNotes []theory.Position
	kick       []int
	noteIndex  int

	// grooves
	grooveMode    bool
	category      string
	groove        *catalog.Groove
	playingGroove bool
	grooveSteps   []*theory.Position
	grooveStep    int
	ownsDrums     bool

	// harmony sync
	following  bool
	chordRoot  theory.PitchClass
	chordTones []theory.PitchClass
	hasChord   bool

	sounding *theory.Position
	preset   string
	volume   int
}

// New creates a stopped player with root E and no scale.
func New(c Config) *Player {
	rng := c.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}
	policy := c.Policy
	if policy == nil {
		policy = KeepString
	}
	p := &Player{
		cat:        c.Catalog,
		tr:         c.Transport,
		seq:        c.Transport.NewSequencer("bass"),
		bus:        c.Bus,
		drums:      c.Drums,
		bass:       c.Bass,
		policy:     policy,
		rng:        rng,
		ready:      c.Ready,
		notify:     c.Notify,
		root:       theory.E,
		grooveStep: -1,
		volume:     DefaultVolume,
	}
	p.applyVolume()
	if p.bus != nil {
		p.bus.OnRootChanged(func(e syncbus.RootChanged) {
			if e.Origin != syncbus.OriginBass {
				p.SelectRoot(e.PitchClass, true)
			}
		})
		p.bus.OnPatternChanged(func(syncbus.PatternChanged) { p.resyncIfPlaying() })
		p.bus.OnGenreChanged(func(syncbus.GenreChanged) { p.reset() })
		// drums stopped by anyone else are no longer the groove's to stop
		p.bus.OnDrumsStopped(func(syncbus.DrumsStopped) { p.ownsDrums = false })
	}
	return p
}

func (p *Player) changed() {
	if p.notify != nil {
		p.notify()
	}
}

// SelectRoot moves the key. fromPeer marks a change that came from another
// module and must not be published again.
func (p *Player) SelectRoot(pc theory.PitchClass, fromPeer bool) {
	if !pc.Valid() {
		return
	}
	p.root = pc
	p.sounding = nil
	debug.Log("bass", "root %s (peer=%v)", pc, fromPeer)
	p.resyncIfPlaying()
	p.resyncGrooveIfPlaying()
	if !fromPeer {
		p.bus.PublishRoot(syncbus.RootChanged{PitchClass: pc, Origin: syncbus.OriginBass})
	}
	p.changed()
}

// Root returns the selected root.
func (p *Player) Root() theory.PitchClass { return p.root }

// SelectScale toggles a scale: choosing the active one again clears it.
func (p *Player) SelectScale(id string) error {
	if p.scale != nil && p.scale.ID == id {
		p.scale = nil
	} else {
		s, ok := p.cat.Scale(id)
		if !ok {
			debug.Log("bass", "unknown scale %q", id)
			return failure.Invalid("scale", id)
		}
		p.scale = &s
	}
	p.sounding = nil
	p.resyncIfPlaying()
	p.changed()
	return nil
}

// Scale returns the active scale.
func (p *Player) Scale() (catalog.Scale, bool) {
	if p.scale == nil {
		return catalog.Scale{}, false
	}
	return *p.scale, true
}

// ShapeWindow returns the box used for autoplay and shape display.
func (p *Player) ShapeWindow() (start, end int) { return theory.ShapeWindow(p.scaleRoot()) }

// scaleRoot is the root scales are built on: the sounding chord root while
// following harmony, the selected root otherwise.
func (p *Player) scaleRoot() theory.PitchClass { return p.grooveKey() }

func (p *Player) inShape(fret int) bool {
	if !p.shape {
		return true
	}
	start, end := p.ShapeWindow()
	return fret >= start && fret <= end
}

func (p *Player) activeTones() []theory.PitchClass {
	if p.scale == nil {
		return nil
	}
	return p.scale.PitchClasses(p.scaleRoot(), p.arpeggio)
}

// BuildScaleNotes lists the scale (or arpeggio) notes inside the shape box
// on every string, lowest first. It is empty with no scale selected.
func (p *Player) BuildScaleNotes() []theory.Position {
	tones := p.activeTones()
	if len(tones) == 0 {
		return nil
	}
	start, end := p.ShapeWindow()
	var notes []theory.Position
	for _, s := range theory.Strings {
		for f := start; f <= end; f++ {
			pos := theory.Position{String: s, Fret: f}
			if slices.Contains(tones, pos.PitchClass()) {
				notes = append(notes, pos)
			}
		}
	}
	slices.SortStableFunc(notes, func(a, b theory.Position) int { return a.Pitch() - b.Pitch() })
	return notes
}

// ToggleShape limits the display to the box around the root.
func (p *Player) ToggleShape() {
	p.shape = !p.shape
	p.resyncIfPlaying()
	p.changed()
}

// ToggleArpeggio narrows the scale to its chord tones.
func (p *Player) ToggleArpeggio() {
	p.arpeggio = !p.arpeggio
	p.resyncIfPlaying()
	p.changed()
}

// ToggleIntervals labels cells with intervals instead of note names.
func (p *Player) ToggleIntervals() {
	p.intervals = !p.intervals
	p.changed()
}

// SetItalian switches note names to Do Re Mi.
func (p *Player) SetItalian(on bool) {
	p.italian = on
	p.changed()
}

// StartPlay walks the scale notes round-robin, one note on every kick of
// the drum pattern.
func (p *Player) StartPlay() error {
	if p.ready != nil && !p.ready() {
		debug.Log("bass", "autoplay before audio init")
		return failure.NotReady("bass")
	}
	notes := p.BuildScaleNotes()
	if len(notes) == 0 {
		return failure.Missing("autoplay without scale", "Select a scale first")
	}
	var pat catalog.DrumPattern
	ok := false
	if p.drums != nil {
		pat, ok = p.drums.CurrentPattern()
	}
	if !ok {
		return failure.Missing("autoplay without drum pattern", "Select a drum pattern first")
	}
	if p.playingGroove {
		p.StopGroovePlay()
	}
	p.scaleNotes = notes
	p.kick = pat.Kick
	p.noteIndex = 0
	if err := p.seq.Start(pat.TotalSteps(), sequencer.Grid(pat.TimeSignature.Triplet()), p.onScaleStep); err != nil {
		return err
	}
	p.playing = true
	debug.Log("bass", "autoplay %d notes over %s", len(notes), pat.ID)
	p.changed()
	return nil
}

// StopPlay ends scale autoplay.
func (p *Player) StopPlay() {
	if !p.playing {
		return
	}
	p.seq.Stop()
	p.playing = false
	p.sounding = nil
	p.changed()
}

func (p *Player) resyncIfPlaying() {
	if !p.playing {
		return
	}
	p.StopPlay()
	if err := p.StartPlay(); err != nil {
		debug.Log("bass", "resync: %v", err)
	}
}

func (p *Player) onScaleStep(step int, at time.Time) {
	if step >= len(p.kick) || p.kick[step] == 0 || len(p.scaleNotes) == 0 {
		return
	}
	n := p.scaleNotes[p.noteIndex%len(p.scaleNotes)]
	p.noteIndex++
	p.play(n, sequencer.Eighth.Seconds(p.tr.BPM()), at)
}

func (p *Player) play(pos theory.Position, dur time.Duration, at time.Time) {
	p.sounding = &pos
	if p.bass != nil {
		p.bass.TriggerAttackRelease(uint8(pos.MIDI()), dur, at)
	}
	p.changed()
}

// ToggleGrooveMode switches Play between scale autoplay and grooves.
// Leaving groove mode stops the groove and clears the selection.
func (p *Player) ToggleGrooveMode() {
	p.grooveMode = !p.grooveMode
	if !p.grooveMode {
		p.StopGroovePlay()
		p.groove = nil
	}
	p.changed()
}

// GrooveMode reports whether Play starts grooves.
func (p *Player) GrooveMode() bool { return p.grooveMode }

// FilterCategory narrows the groove list; "" shows every category.
func (p *Player) FilterCategory(id string) error {
	if id != "" {
		if _, ok := p.cat.Category(id); !ok {
			return failure.Invalid("groove category", id)
		}
	}
	p.category = id
	p.changed()
	return nil
}

// Grooves lists the grooves of the current category.
func (p *Player) Grooves() []catalog.Groove { return p.cat.GroovesIn(p.category) }

// SelectGroove picks a groove and turns groove mode on; "" clears it.
// Any groove playback stops.
func (p *Player) SelectGroove(id string) error {
	var g catalog.Groove
	if id != "" {
		var ok bool
		if g, ok = p.cat.Groove(id); !ok {
			debug.Log("bass", "unknown groove %q", id)
			return failure.Invalid("groove", id)
		}
	}
	p.StopGroovePlay()
	if id == "" {
		p.groove = nil
	} else {
		p.groove = &g
		p.grooveMode = true
		debug.Log("bass", "groove %s (%d steps)", g.ID, len(g.Steps))
	}
	p.changed()
	return nil
}

// RandomGroove selects any groove of the current category.
func (p *Player) RandomGroove() error {
	g, ok := p.cat.RandomGroove(p.category, p.rng)
	if !ok {
		return failure.Missing("no grooves in "+p.category, "No grooves in this category")
	}
	return p.SelectGroove(g.ID)
}

// Groove returns the selected groove.
func (p *Player) Groove() (catalog.Groove, bool) {
	if p.groove == nil {
		return catalog.Groove{}, false
	}
	return *p.groove, true
}

// grooveKey is the chord root while following harmony, the root otherwise.
func (p *Player) grooveKey() theory.PitchClass {
	if p.following && p.hasChord {
		return p.chordRoot
	}
	return p.root
}

// TransposedGroove returns the selected groove moved to the current key.
func (p *Player) TransposedGroove() []*theory.Position {
	if p.groove == nil {
		return nil
	}
	return Transpose(p.groove.Steps, RootOffset(p.grooveKey()), p.policy)
}

// StartGroovePlay loops the transposed groove in sixteenths. When the drums
// are idle the groove sets the tempo and starts them, falling back to the
// backing pattern if none is selected; those drums stop with the groove.
func (p *Player) StartGroovePlay() error {
	if p.ready != nil && !p.ready() {
		debug.Log("bass", "groove before audio init")
		return failure.NotReady("bass")
	}
	if p.groove == nil {
		return failure.Missing("groove play without groove", "Select a groove first")
	}
	if len(p.groove.Steps) == 0 {
		return failure.Missing("empty groove "+p.groove.ID, "This groove has no steps")
	}
	p.StopPlay()
	if p.drums != nil && !p.drums.IsPlaying() {
		if _, ok := p.drums.CurrentPattern(); !ok {
			if err := p.drums.SelectPattern(p.cat.Accompaniment); err != nil {
				return err
			}
		}
		p.drums.SetBPM(p.groove.BPM)
		if err := p.drums.Play(); err != nil {
			return err
		}
		p.ownsDrums = true
	}
	if err := p.startGrooveSequence(); err != nil {
		p.releaseDrums()
		return err
	}
	p.playingGroove = true
	p.changed()
	return nil
}

func (p *Player) startGrooveSequence() error {
	p.grooveSteps = p.TransposedGroove()
	p.grooveStep = -1
	debug.Log("bass", "groove %s in %s", p.groove.ID, p.grooveKey())
	return p.seq.Start(len(p.grooveSteps), sequencer.Sixteenth, p.onGrooveStep)
}

// StopGroovePlay ends groove playback and any drums it started.
func (p *Player) StopGroovePlay() {
	if !p.playingGroove {
		return
	}
	p.seq.Stop()
	p.playingGroove = false
	p.grooveStep = -1
	p.sounding = nil
	p.releaseDrums()
	p.changed()
}

func (p *Player) releaseDrums() {
	if p.ownsDrums {
		p.ownsDrums = false
		p.drums.Stop()
	}
}

func (p *Player) resyncGrooveIfPlaying() {
	if !p.playingGroove {
		return
	}
	p.seq.Stop()
	if err := p.startGrooveSequence(); err != nil {
		debug.Log("bass", "groove resync: %v", err)
		p.StopGroovePlay()
	}
}

func (p *Player) onGrooveStep(step int, at time.Time) {
	p.grooveStep = step
	if step >= len(p.grooveSteps) || p.grooveSteps[step] == nil {
		p.sounding = nil
		p.changed()
		return
	}
	p.play(*p.grooveSteps[step], sequencer.Sixteenth.Seconds(p.tr.BPM()), at)
}

// TogglePlay starts or stops the groove in groove mode with a groove
// selected, scale autoplay otherwise.
func (p *Player) TogglePlay() error {
	if p.grooveMode && p.groove != nil {
		if p.playingGroove {
			p.StopGroovePlay()
			return nil
		}
		return p.StartGroovePlay()
	}
	if p.playing {
		p.StopPlay()
		return nil
	}
	return p.StartPlay()
}

// Stop ends any bass playback.
func (p *Player) Stop() {
	p.StopPlay()
	p.StopGroovePlay()
}

// IsPlaying reports scale autoplay.
func (p *Player) IsPlaying() bool { return p.playing }

// IsPlayingGroove reports groove playback.
func (p *Player) IsPlayingGroove() bool { return p.playingGroove }

func (p *Player) reset() {
	p.Stop()
	p.groove = nil
	p.sounding = nil
	p.changed()
}

// SetMelodySync makes the bass follow the harmony engine's chords.
func (p *Player) SetMelodySync(on bool) {
	p.following = on
	if !on {
		p.hasChord = false
		p.chordTones = nil
	}
	p.followChord()
	p.changed()
}

// IsFollowingHarmony reports melody-sync mode.
func (p *Player) IsFollowingHarmony() bool { return p.following }

// ShowMelodyChord records the sounding chord for display and, in sync
// mode, moves a playing groove onto its root.
func (p *Player) ShowMelodyChord(root theory.PitchClass, notes []int) {
	p.chordRoot, p.hasChord = root, true
	p.chordTones = p.chordTones[:0]
	for _, n := range notes {
		if pc := theory.Mod(n); !slices.Contains(p.chordTones, pc) {
			p.chordTones = append(p.chordTones, pc)
		}
	}
	if p.following {
		p.followChord()
	}
	p.changed()
}

// ClearMelodyChord forgets the sounding chord.
func (p *Player) ClearMelodyChord() {
	if !p.hasChord {
		return
	}
	p.hasChord = false
	p.chordTones = nil
	if p.following {
		p.followChord()
	}
	p.changed()
}

// followChord moves whatever is playing onto the current scale root. Notes
// are swapped in place so the sequence keeps its position; autoplay starts
// the new scale from its lowest note.
func (p *Player) followChord() {
	if p.playingGroove {
		p.grooveSteps = p.TransposedGroove()
	}
	if p.playing {
		if notes := p.BuildScaleNotes(); len(notes) > 0 {
			p.scaleNotes = notes
			p.noteIndex = 0
		}
	}
}

// PlayRoot sounds pc on the E string for a quarter note, on the grid point
// being dispatched. A playing groove or scale autoplay already follows the
// chord, so either takes precedence.
func (p *Player) PlayRoot(pc theory.PitchClass) {
	if p.playingGroove || p.playing || !pc.Valid() {
		return
	}
	pos := theory.Position{String: theory.StringE, Fret: theory.FretFor(theory.StringE, pc)}
	p.play(pos, 2*sequencer.Eighth.Seconds(p.tr.BPM()), p.tr.Cursor())
}

// PlayNote sounds one fret position for a quarter note, as when the neck
// is clicked. It is allowed while anything else plays.
func (p *Player) PlayNote(pos theory.Position) error {
	if pos.String < theory.StringE || pos.String > theory.StringG || pos.Fret < 0 || pos.Fret > theory.MaxFret {
		return failure.Invalid("fret position", pos.String.String()+strconv.Itoa(pos.Fret))
	}
	if p.ready != nil && !p.ready() {
		debug.Log("bass", "note before audio init")
		return failure.NotReady("bass")
	}
	p.play(pos, 2*sequencer.Eighth.Seconds(p.tr.BPM()), p.tr.Cursor())
	return nil
}

// SetBassPreset switches the bass voicing.
func (p *Player) SetBassPreset(name string) error {
	if err := instrument.SetPreset(p.bass, name); err != nil {
		return err
	}
	p.preset = name
	p.changed()
	return nil
}

// SetBassVolume sets the 0..100 bass level.
func (p *Player) SetBassVolume(v int) {
	p.volume = min(max(v, 0), 100)
	p.applyVolume()
	p.changed()
}

func (p *Player) applyVolume() {
	if p.bass != nil {
		p.bass.SetVolume(instrument.VolumeToDB(p.volume))
	}
}

// Dispose stops playback and frees the bass voice.
func (p *Player) Dispose() {
	p.Stop()
	if p.bass != nil {
		p.bass.Dispose()
	}
}

var _ syncbus.BassSyncPort = (*Player)(nil)
