// Package audio is the built-in software synth. Engine mixes scheduled notes
// into float frames; Synth streams an Engine to the sound card through oto and
// render drives one offline.
package audio

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"go-drummer/catalog"
	"go-drummer/debug"
	"go-drummer/failure"
	"go-drummer/instrument"
)

const (
	maxNotes   = 64
	bendGlide  = 0.1 // seconds
	masterGain = 0.3
)

// DefaultPresets is the voicing each voice starts with.
var DefaultPresets = map[string]string{
	instrument.Kick:   "punchy",
	instrument.Snare:  "tight",
	instrument.Hihat:  "closed",
	instrument.Bass:   "finger",
	instrument.Chords: "piano",
	instrument.Melody: "piano",
}

// Engine mixes notes against a sample clock. Wall-clock note times are
// mapped to samples through an origin: the time at which sample originPos is
// heard.
type Engine struct {
	mu     sync.Mutex
	rate   int
	voices catalog.Voices
	rng    *rand.Rand

	pos       int64
	origin    time.Time
	originPos int64

	notes  []*note
	master float64
	byName map[string]*Voice
}

// NewEngine creates an engine at rate samples per second.
func NewEngine(rate int, voices catalog.Voices) *Engine {
	return &Engine{
		rate:   rate,
		voices: voices,
		rng:    rand.New(rand.NewPCG(1, 2)),
		master: masterGain,
		byName: make(map[string]*Voice),
	}
}

// SampleRate returns the engine rate.
func (e *Engine) SampleRate() int { return e.rate }

// SetOrigin declares that the next rendered sample is heard at t.
func (e *Engine) SetOrigin(t time.Time) {
	e.mu.Lock()
	e.origin = t
	e.originPos = e.pos
	e.mu.Unlock()
}

// SetMaster sets the master gain (0..1).
func (e *Engine) SetMaster(gain float64) {
	e.mu.Lock()
	e.master = math.Max(0, math.Min(1, gain))
	e.mu.Unlock()
}

// Active returns the number of sounding or pending notes.
func (e *Engine) Active() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.notes)
}

// Position returns the number of frames rendered.
func (e *Engine) Position() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pos
}

func (e *Engine) sampleAt(at time.Time) int64 {
	if e.origin.IsZero() {
		return e.pos
	}
	s := e.originPos + int64(math.Round(at.Sub(e.origin).Seconds()*float64(e.rate)))
	if s < e.pos {
		return e.pos
	}
	return s
}

// Voice returns the instrument for a voice name, creating it with its
// default preset.
func (e *Engine) Voice(name string) *Voice {
	e.mu.Lock()
	defer e.mu.Unlock()
	if v, ok := e.byName[name]; ok {
		return v
	}
	v := &Voice{e: e, name: name, decay: 1}
	if p, ok := e.voices.Family(name)[DefaultPresets[name]]; ok {
		v.voicing, v.preset = p, DefaultPresets[name]
	} else {
		v.voicing = catalog.Voicing{Wave: "sine", Envelope: catalog.Envelope{Attack: 0.01, Decay: 0.2, Sustain: 0.5, Release: 0.3}}
	}
	e.byName[name] = v
	return v
}

func (e *Engine) add(n *note) {
	if len(e.notes) >= maxNotes {
		e.notes = e.notes[1:]
	}
	e.notes = append(e.notes, n)
}

// Fill renders len(out) stereo frames.
func (e *Engine) Fill(out [][2]float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	rate := float64(e.rate)
	for i := range out {
		var mix float64
		for _, n := range e.notes {
			mix += n.sample(e.pos, rate, e.rng)
		}
		mix *= e.master
		if mix > 1 {
			mix = 1
		} else if mix < -1 {
			mix = -1
		}
		out[i] = [2]float64{mix, mix}
		e.pos++
	}
	live := e.notes[:0]
	for _, n := range e.notes {
		if !n.done {
			live = append(live, n)
		}
	}
	for i := len(live); i < len(e.notes); i++ {
		e.notes[i] = nil
	}
	e.notes = live
}

// Voice is one instrument voice of an Engine.
type Voice struct {
	e       *Engine
	name    string
	preset  string
	voicing catalog.Voicing
	db      float64
	decay   float64
	last    *note
}

func (v *Voice) TriggerAttackRelease(midi uint8, dur time.Duration, at time.Time) {
	v.e.mu.Lock()
	defer v.e.mu.Unlock()
	if math.IsInf(v.db, -1) {
		return
	}
	env := v.voicing.Envelope
	env.Decay *= v.decay
	n := &note{
		owner:    v,
		start:    v.e.sampleAt(at),
		gate:     dur.Seconds(),
		freq:     440 * math.Pow(2, (float64(midi)-69)/12),
		gain:     instrument.DBToGain(v.db),
		env:      env,
		voicing:  v.voicing,
		bendFrom: -1,
	}
	v.e.add(n)
	v.last = n
}

func (v *Voice) SetVolume(db float64) {
	v.e.mu.Lock()
	v.db = db
	v.e.mu.Unlock()
}

func (v *Voice) Volume() float64 {
	v.e.mu.Lock()
	defer v.e.mu.Unlock()
	return v.db
}

// Dispose silences the voice.
func (v *Voice) Dispose() { v.ReleaseAll() }

// ReleaseAll moves every note of this voice into its release stage now.
func (v *Voice) ReleaseAll() {
	v.e.mu.Lock()
	defer v.e.mu.Unlock()
	rate := float64(v.e.rate)
	for _, n := range v.e.notes {
		if n.owner != v {
			continue
		}
		t := float64(v.e.pos-n.start) / rate
		if t < 0 {
			n.done = true
			continue
		}
		if t < n.gate {
			n.gate = t
		}
	}
}

// SetPreset switches to a named voicing of this voice's family.
func (v *Voice) SetPreset(name string) error {
	v.e.mu.Lock()
	defer v.e.mu.Unlock()
	p, ok := v.e.voices.Family(v.name)[name]
	if !ok {
		return failure.Invalid(v.name+" preset", name)
	}
	v.voicing, v.preset = p, name
	debug.Log("audio", "%s preset %s", v.name, name)
	return nil
}

// Preset returns the current voicing name.
func (v *Voice) Preset() string {
	v.e.mu.Lock()
	defer v.e.mu.Unlock()
	return v.preset
}

func (v *Voice) SetDecay(scale float64) {
	v.e.mu.Lock()
	v.decay = scale
	v.e.mu.Unlock()
}

// Bend glides the last note by semitones starting at at.
func (v *Voice) Bend(semitones float64, at time.Time) {
	v.e.mu.Lock()
	defer v.e.mu.Unlock()
	if v.last == nil || v.last.done {
		return
	}
	v.last.bendFrom = v.e.sampleAt(at)
	v.last.bendTo = semitones
}

// note is one scheduled sound.
type note struct {
	owner    *Voice
	start    int64
	gate     float64 // seconds held before release
	freq     float64
	gain     float64
	env      catalog.Envelope
	voicing  catalog.Voicing
	bendFrom int64
	bendTo   float64

	phase, modPhase float64
	pink            [3]float64
	lp, hp          float64
	done            bool
}

func (n *note) sample(pos int64, rate float64, rng *rand.Rand) float64 {
	if n.done || pos < n.start {
		return 0
	}
	t := float64(pos-n.start) / rate
	if t >= n.gate+n.env.Release {
		n.done = true
		return 0
	}
	f := n.freq
	if v := n.voicing; v.Drop > 1 && v.PitchDecay > 0 && t < v.PitchDecay {
		f *= math.Pow(v.Drop, 1-t/v.PitchDecay)
	}
	if n.bendFrom >= 0 && pos >= n.bendFrom {
		k := math.Min(1, float64(pos-n.bendFrom)/(bendGlide*rate))
		f *= math.Pow(2, n.bendTo*k/12)
	}
	x := n.osc(f, rate, rng)
	if c := n.voicing.LowPass; c > 0 {
		n.lp += onePole(c, rate) * (x - n.lp)
		x = n.lp
	}
	if c := n.voicing.HighPass; c > 0 {
		n.hp += onePole(c, rate) * (x - n.hp)
		x -= n.hp
	}
	return x * n.gain * level(n.env, t, n.gate)
}

func onePole(cutoff, rate float64) float64 {
	return 1 - math.Exp(-2*math.Pi*cutoff/rate)
}

func (n *note) osc(f, rate float64, rng *rand.Rand) float64 {
	p := n.phase
	n.phase += f / rate
	n.phase -= math.Floor(n.phase)
	switch n.voicing.Wave {
	case "square":
		if p < 0.5 {
			return 0.8
		}
		return -0.8
	case "sawtooth":
		return 2*p - 1
	case "triangle":
		if p < 0.5 {
			return 4*p - 1
		}
		return 3 - 4*p
	case "fm":
		m := math.Sin(2 * math.Pi * n.modPhase)
		n.modPhase += 2 * f / rate
		n.modPhase -= math.Floor(n.modPhase)
		return math.Sin(2*math.Pi*p + 1.5*m)
	case "white":
		return rng.Float64()*2 - 1
	case "pink":
		w := rng.Float64()*2 - 1
		n.pink[0] = 0.99765*n.pink[0] + w*0.0990460
		n.pink[1] = 0.96300*n.pink[1] + w*0.2965164
		n.pink[2] = 0.57000*n.pink[2] + w*1.0526913
		return (n.pink[0] + n.pink[1] + n.pink[2] + w*0.1848) * 0.2
	}
	if len(n.voicing.Partials) > 0 {
		var sum, norm float64
		for k, a := range n.voicing.Partials {
			sum += a * math.Sin(2*math.Pi*p*float64(k+1))
			norm += a
		}
		return sum / norm
	}
	return math.Sin(2 * math.Pi * p)
}

// level is the ADSR amplitude t seconds into a note held for gate seconds.
func level(e catalog.Envelope, t, gate float64) float64 {
	if t < gate {
		return hold(e, t)
	}
	if e.Release <= 0 {
		return 0
	}
	return hold(e, gate) * math.Max(0, 1-(t-gate)/e.Release)
}

func hold(e catalog.Envelope, t float64) float64 {
	if t < e.Attack {
		return t / e.Attack
	}
	t -= e.Attack
	if t < e.Decay {
		return 1 - (1-e.Sustain)*t/e.Decay
	}
	return e.Sustain
}
