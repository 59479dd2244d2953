package midi

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"go-drummer/debug"
	"go-drummer/failure"
	"go-drummer/instrument"
)

// Sender writes one message to a port.
type Sender func(msg gomidi.Message) error

// Output plays the voices on an external MIDI port, one channel per voice.
// Notes are scheduled against wall-clock time so the lookahead of the
// transport is preserved on the wire.
type Output struct {
	portName string
	channels map[string]uint8

	mu     sync.Mutex
	send   Sender
	port   drivers.Out
	voices map[string]*Voice

	now   func() time.Time
	after func(d time.Duration, f func())
}

// OutputOption configures an Output.
type OutputOption func(*Output)

// WithSender replaces the port with send; Init then opens nothing.
func WithSender(send Sender) OutputOption {
	return func(o *Output) { o.send = send }
}

// WithScheduler replaces the wall clock used to delay messages.
func WithScheduler(now func() time.Time, after func(d time.Duration, f func())) OutputOption {
	return func(o *Output) {
		o.now = now
		o.after = after
	}
}

// NewOutput creates an output for the port whose name contains portName
// ("" picks the first port). channels maps voice names to 0-based channels.
func NewOutput(portName string, channels map[string]uint8, opts ...OutputOption) *Output {
	o := &Output{
		portName: portName,
		channels: channels,
		voices:   make(map[string]*Voice),
		now:      time.Now,
		after:    func(d time.Duration, f func()) { time.AfterFunc(d, f) },
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Init opens the port.
func (o *Output) Init(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.send != nil {
		return nil
	}
	_, outs, err := ListPorts(ctx)
	if err != nil {
		return err
	}
	want := strings.ToLower(o.portName)
	for _, p := range outs {
		if want != "" && !strings.Contains(strings.ToLower(p.String()), want) {
			continue
		}
		send, err := gomidi.SendTo(p)
		if err != nil {
			return fmt.Errorf("open %s: %w", p.String(), err)
		}
		o.port, o.send = p, send
		debug.Log("midi", "output %s", p.String())
		return nil
	}
	return fmt.Errorf("midi output %q not found", o.portName)
}

// Voice returns the instrument for a voice name.
func (o *Output) Voice(name string) instrument.Instrument {
	o.mu.Lock()
	defer o.mu.Unlock()
	if v, ok := o.voices[name]; ok {
		return v
	}
	v := &Voice{out: o, name: name, channel: o.channels[name]}
	o.voices[name] = v
	return v
}

// Close silences every used channel and closes the port.
func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.send != nil {
		for _, v := range o.voices {
			o.send(Event{Type: CC, Channel: v.channel, Note: ccAllNotesOff}.Message())
		}
	}
	if o.port != nil {
		err := o.port.Close()
		o.port, o.send = nil, nil
		return err
	}
	return nil
}

func (o *Output) write(e Event) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.send == nil {
		return
	}
	if err := o.send(e.Message()); err != nil {
		debug.Log("midi", "send: %v", err)
	}
}

// schedule sends e at e.At, at once if that has passed.
func (o *Output) schedule(e Event) {
	d := e.At.Sub(o.now())
	if d <= 0 {
		o.write(e)
		return
	}
	o.after(d, func() { o.write(e) })
}

// Voice is one channel of an Output.
type Voice struct {
	out     *Output
	name    string
	channel uint8
	db      float64
	preset  string
	note    uint8 // drum note override, 0 for none
	bent    bool
}

func (v *Voice) TriggerAttackRelease(note uint8, dur time.Duration, at time.Time) {
	if math.IsInf(v.db, -1) {
		return
	}
	if v.note != 0 {
		note = v.note
	}
	if v.bent {
		v.bent = false
		v.out.schedule(Event{At: at, Type: PitchBend, Channel: v.channel})
	}
	v.out.schedule(Event{At: at, Type: NoteOn, Channel: v.channel, Note: note, Velocity: instrument.DBToVelocity(v.db)})
	v.out.schedule(Event{At: at.Add(dur), Type: NoteOff, Channel: v.channel, Note: note})
}

func (v *Voice) SetVolume(db float64) { v.db = db }
func (v *Voice) Volume() float64      { return v.db }

func (v *Voice) Dispose() { v.ReleaseAll() }

func (v *Voice) ReleaseAll() {
	v.out.write(Event{Type: CC, Channel: v.channel, Note: ccAllNotesOff})
}

// SetPreset maps a voicing name to a drum note or a program change.
func (v *Voice) SetPreset(name string) error {
	if isDrum(v.name) {
		n, ok := drumNotes[v.name][name]
		if !ok {
			return failure.Invalid(v.name+" preset", name)
		}
		v.note, v.preset = n, name
		return nil
	}
	prog, ok := programs[v.name][name]
	if !ok {
		return failure.Invalid(v.name+" preset", name)
	}
	v.preset = name
	v.out.write(Event{Type: Program, Channel: v.channel, Note: prog})
	return nil
}

// Preset returns the last applied preset name.
func (v *Voice) Preset() string { return v.preset }

// Bend moves the channel pitch; the wheel is assumed to span two semitones
// each way and is re-centred on the next note.
func (v *Voice) Bend(semitones float64, at time.Time) {
	val := math.Round(semitones / 2 * 8191)
	val = math.Max(-8192, math.Min(8191, val))
	v.bent = true
	v.out.schedule(Event{At: at, Type: PitchBend, Channel: v.channel, Bend: int16(val)})
}

var (
	_ instrument.Backend   = (*Output)(nil)
	_ instrument.Releaser  = (*Voice)(nil)
	_ instrument.Presetter = (*Voice)(nil)
	_ instrument.Bender    = (*Voice)(nil)
)
