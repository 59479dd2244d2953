package instrument

import (
	"context"
	"sync"
	"time"
)

// Hit is one recorded note.
type Hit struct {
	Voice string
	Note  uint8
	Dur   time.Duration
	At    time.Time
}

// Recorder is an Instrument that remembers what it was asked to play.
type Recorder struct {
	mu       sync.Mutex
	name     string
	volume   float64
	preset   string
	hits     []Hit
	bends    []float64
	releases int
	decay    float64
	disposed bool
}

// NewRecorder returns a Recorder for voice name.
func NewRecorder(name string) *Recorder {
	return &Recorder{name: name}
}

func (r *Recorder) TriggerAttackRelease(note uint8, dur time.Duration, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hits = append(r.hits, Hit{Voice: r.name, Note: note, Dur: dur, At: at})
}

func (r *Recorder) SetVolume(db float64) {
	r.mu.Lock()
	r.volume = db
	r.mu.Unlock()
}

func (r *Recorder) Volume() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.volume
}

func (r *Recorder) Dispose() {
	r.mu.Lock()
	r.disposed = true
	r.mu.Unlock()
}

func (r *Recorder) ReleaseAll() {
	r.mu.Lock()
	r.releases++
	r.mu.Unlock()
}

func (r *Recorder) SetPreset(name string) error {
	r.mu.Lock()
	r.preset = name
	r.mu.Unlock()
	return nil
}

func (r *Recorder) SetDecay(scale float64) {
	r.mu.Lock()
	r.decay = scale
	r.mu.Unlock()
}

// Decay returns the last decay scale, 0 if never set.
func (r *Recorder) Decay() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.decay
}

func (r *Recorder) Bend(semitones float64, at time.Time) {
	r.mu.Lock()
	r.bends = append(r.bends, semitones)
	r.mu.Unlock()
}

// Hits returns a copy of the recorded notes.
func (r *Recorder) Hits() []Hit {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Hit(nil), r.hits...)
}

// Notes returns the recorded note numbers in order.
func (r *Recorder) Notes() []uint8 {
	r.mu.Lock()
	defer r.mu.Unlock()
	notes := make([]uint8, len(r.hits))
	for i, h := range r.hits {
		notes[i] = h.Note
	}
	return notes
}

// Count returns how many notes were played.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.hits)
}

// Reset forgets the recorded notes.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.hits = nil
	r.bends = nil
	r.releases = 0
	r.mu.Unlock()
}

func (r *Recorder) Preset() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.preset
}

func (r *Recorder) Bends() []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]float64(nil), r.bends...)
}

func (r *Recorder) Releases() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.releases
}

func (r *Recorder) Disposed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.disposed
}

// RecordingBackend hands out one Recorder per voice. It is ready at once.
type RecordingBackend struct {
	mu     sync.Mutex
	voices map[string]*Recorder
}

func NewRecordingBackend() *RecordingBackend {
	return &RecordingBackend{voices: make(map[string]*Recorder)}
}

func (b *RecordingBackend) Init(ctx context.Context) error { return ctx.Err() }

func (b *RecordingBackend) Voice(name string) Instrument {
	return b.Recorder(name)
}

// Recorder returns the recorder behind voice name.
func (b *RecordingBackend) Recorder(name string) *Recorder {
	b.mu.Lock()
	defer b.mu.Unlock()
	r, ok := b.voices[name]
	if !ok {
		r = NewRecorder(name)
		b.voices[name] = r
	}
	return r
}

func (b *RecordingBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, r := range b.voices {
		r.Dispose()
	}
	return nil
}

// Null plays nothing. It backs the "none" audio setting.
type Null struct{ db float64 }

func (n *Null) TriggerAttackRelease(uint8, time.Duration, time.Time) {}
func (n *Null) SetVolume(db float64)                                  { n.db = db }
func (n *Null) Volume() float64                                       { return n.db }
func (n *Null) Dispose()                                              {}

// NullBackend hands out Null voices.
type NullBackend struct{}

func (NullBackend) Init(ctx context.Context) error { return ctx.Err() }
func (NullBackend) Voice(string) Instrument        { return &Null{} }
func (NullBackend) Close() error                   { return nil }
