// Package drums plays the catalog's kick/snare/hihat patterns on the shared
// transport.
package drums

import (
	"time"

	"go-drummer/catalog"
	"go-drummer/debug"
	"go-drummer/failure"
	"go-drummer/instrument"
	"go-drummer/sequencer"
	"go-drummer/syncbus"
)

// General MIDI drum notes.
const (
	NoteKick  = 36
	NoteSnare = 38
	NoteHihat = 42
)

// DefaultGenre is selected when Play is pressed with nothing chosen.
const DefaultGenre = "rock"

var drumVoices = []string{instrument.Kick, instrument.Snare, instrument.Hihat}

// Config wires a Player.
type Config struct {
	Catalog   *catalog.Catalog
	Transport *sequencer.Transport
	Bus       *syncbus.Bus
	Voices    map[string]instrument.Instrument // kick, snare, hihat
	Ready     func() bool                      // nil means always ready
	Notify    func()
}

// Player is the drum machine. All methods run on the transport timeline.
type Player struct {
	cat    *catalog.Catalog
	tr     *sequencer.Transport
	seq    *sequencer.StepSequencer
	bus    *syncbus.Bus
	voices map[string]instrument.Instrument
	ready  func() bool
	notify func()

	genre      string
	pattern    catalog.DrumPattern
	hasPattern bool
	playing    bool
	step       int
	bar        int

	auto    bool
	volumes map[string]int
	presets map[string]string
	master  int
}

// New creates a stopped player in auto mode.
func New(c Config) *Player {
	p := &Player{
		cat:     c.Catalog,
		tr:      c.Transport,
		seq:     c.Transport.NewSequencer("drums"),
		bus:     c.Bus,
		voices:  c.Voices,
		ready:   c.Ready,
		notify:  c.Notify,
		auto:    true,
		volumes: map[string]int{instrument.Kick: 80, instrument.Snare: 80, instrument.Hihat: 70},
		presets: make(map[string]string),
		master:  100,
	}
	for _, v := range drumVoices {
		p.applyVolume(v)
	}
	return p
}

func (p *Player) changed() {
	if p.notify != nil {
		p.notify()
	}
}

// SelectGenre switches genre, applies its sound in auto mode and picks the
// genre's first pattern.
func (p *Player) SelectGenre(id string) error {
	g, ok := p.cat.Genre(id)
	if !ok {
		debug.Log("drums", "unknown genre %q", id)
		return failure.Invalid("genre", id)
	}
	p.genre = id
	if p.auto {
		p.applyPreset(g.Preset)
	}
	p.bus.PublishGenre(syncbus.GenreChanged{GenreID: id})
	if len(g.Patterns) == 0 {
		p.changed()
		return nil
	}
	return p.SelectPattern(g.Patterns[0])
}

func (p *Player) applyPreset(pre catalog.AudioPreset) {
	if pre.BPM > 0 {
		p.tr.SetBPM(pre.BPM)
	}
	settings := map[string]catalog.VoiceSetting{
		instrument.Kick:  pre.Kick,
		instrument.Snare: pre.Snare,
		instrument.Hihat: pre.Hihat,
	}
	for _, v := range drumVoices {
		s := settings[v]
		inst := p.voices[v]
		if inst == nil {
			continue
		}
		if s.Type != "" {
			if err := instrument.SetPreset(inst, s.Type); err != nil {
				debug.Log("drums", "%s preset: %v", v, err)
			} else {
				p.presets[v] = s.Type
			}
		}
		p.volumes[v] = s.Volume
		p.applyVolume(v)
		instrument.SetDecay(inst, 0.5+float64(s.Decay)/100)
	}
	debug.Log("drums", "preset applied: %d bpm", pre.BPM)
}

func (p *Player) applyVolume(v string) {
	inst := p.voices[v]
	if inst == nil {
		return
	}
	inst.SetVolume(instrument.VolumeToDB(p.volumes[v]) + instrument.VolumeToDB(p.master))
}

// SelectPattern loads a pattern and rewinds to its first step.
func (p *Player) SelectPattern(id string) error {
	pat, ok := p.cat.Pattern(id)
	if !ok {
		debug.Log("drums", "unknown pattern %q", id)
		return failure.Invalid("pattern", id)
	}
	p.pattern, p.hasPattern = pat, true
	p.step, p.bar = 0, 0
	if p.auto && pat.BPM > 0 {
		p.tr.SetBPM(pat.BPM)
	}
	debug.Log("drums", "pattern %s (%s, %d bars)", id, pat.TimeSignature, pat.Bars)
	p.bus.PublishPattern(syncbus.PatternChanged{PatternID: id})
	p.restartIfPlaying()
	p.changed()
	return nil
}

// SetBPM sets the tempo and returns the clamped value.
func (p *Player) SetBPM(bpm int) int {
	bpm = p.tr.SetBPM(bpm)
	p.changed()
	return bpm
}

// AdjustBPM nudges the tempo and leaves auto mode.
func (p *Player) AdjustBPM(delta int) int {
	p.auto = false
	return p.SetBPM(p.tr.BPM() + delta)
}

// BPM returns the transport tempo.
func (p *Player) BPM() int { return p.tr.BPM() }

// Play starts the current pattern, choosing the default genre when none is
// selected.
func (p *Player) Play() error {
	if p.ready != nil && !p.ready() {
		debug.Log("drums", "play before audio init")
		return failure.NotReady("drums")
	}
	if !p.hasPattern {
		if err := p.SelectGenre(DefaultGenre); err != nil {
			return err
		}
	}
	if err := p.start(); err != nil {
		return err
	}
	p.playing = true
	p.changed()
	return nil
}

// Stop halts playback and rewinds.
func (p *Player) Stop() {
	was := p.playing
	p.seq.Stop()
	p.playing = false
	p.step, p.bar = 0, 0
	if was {
		p.bus.PublishDrumsStopped(syncbus.DrumsStopped{})
	}
	p.changed()
}

// TogglePlay starts or stops.
func (p *Player) TogglePlay() error {
	if p.playing {
		p.Stop()
		return nil
	}
	return p.Play()
}

func (p *Player) start() error {
	dur := sequencer.Grid(p.pattern.TimeSignature.Triplet())
	return p.seq.Start(p.pattern.TotalSteps(), dur, p.onStep)
}

func (p *Player) restartIfPlaying() {
	if !p.playing {
		return
	}
	p.seq.Stop()
	p.step, p.bar = 0, 0
	if err := p.start(); err != nil {
		debug.Log("drums", "restart: %v", err)
		p.playing = false
	}
}

func (p *Player) onStep(step int, at time.Time) {
	pat := &p.pattern
	bpm := p.tr.BPM()
	eighth := sequencer.Eighth.Seconds(bpm)
	if hit(pat.Kick, step) {
		p.trigger(instrument.Kick, NoteKick, eighth, at)
	}
	if hit(pat.Snare, step) {
		p.trigger(instrument.Snare, NoteSnare, eighth, at)
	}
	if hit(pat.Hihat, step) {
		p.trigger(instrument.Hihat, NoteHihat, sequencer.Sixteenth.Seconds(bpm)/2, at)
	}
	p.step = step
	p.bar = step / pat.TimeSignature.StepsPerBar()
	p.changed()
}

func hit(row []int, step int) bool {
	return step < len(row) && row[step] != 0
}

func (p *Player) trigger(voice string, note uint8, dur time.Duration, at time.Time) {
	if inst := p.voices[voice]; inst != nil {
		inst.TriggerAttackRelease(note, dur, at)
	}
}

// SetAutoMode toggles auto mode. Turning it on reapplies the genre sound.
func (p *Player) SetAutoMode(on bool) {
	p.auto = on
	if on && p.genre != "" {
		if g, ok := p.cat.Genre(p.genre); ok {
			p.applyPreset(g.Preset)
		}
	}
	p.changed()
}

// Auto reports auto mode.
func (p *Player) Auto() bool { return p.auto }

func validVoice(voice string) bool {
	for _, v := range drumVoices {
		if v == voice {
			return true
		}
	}
	return false
}

// SetVoicePreset picks a voicing for one drum and leaves auto mode.
func (p *Player) SetVoicePreset(voice, preset string) error {
	if !validVoice(voice) {
		return failure.Invalid("drum voice", voice)
	}
	if err := instrument.SetPreset(p.voices[voice], preset); err != nil {
		return err
	}
	p.auto = false
	p.presets[voice] = preset
	p.changed()
	return nil
}

// SetVoiceVolume sets one drum's 0..100 level and leaves auto mode.
func (p *Player) SetVoiceVolume(voice string, v int) error {
	if !validVoice(voice) {
		return failure.Invalid("drum voice", voice)
	}
	p.auto = false
	p.volumes[voice] = clampVolume(v)
	p.applyVolume(voice)
	p.changed()
	return nil
}

// SetMasterVolume scales all three drums.
func (p *Player) SetMasterVolume(v int) {
	p.master = clampVolume(v)
	for _, voice := range drumVoices {
		p.applyVolume(voice)
	}
	p.changed()
}

func clampVolume(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// CurrentPattern returns the selected pattern.
func (p *Player) CurrentPattern() (catalog.DrumPattern, bool) {
	return p.pattern, p.hasPattern
}

// IsPlaying reports playback.
func (p *Player) IsPlaying() bool { return p.playing }

// Genre returns the selected genre id.
func (p *Player) Genre() string { return p.genre }

// Step returns the step counter and bar.
func (p *Player) Step() (step, bar int) { return p.step, p.bar }

// Dispose stops playback and frees the voices.
func (p *Player) Dispose() {
	p.Stop()
	for _, v := range drumVoices {
		if inst := p.voices[v]; inst != nil {
			inst.Dispose()
		}
	}
}

var _ syncbus.DrumPort = (*Player)(nil)
