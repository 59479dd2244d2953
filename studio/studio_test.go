package studio

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-drummer/failure"
	"go-drummer/harmony"
	"go-drummer/instrument"
	"go-drummer/midi"
	"go-drummer/sequencer"
	"go-drummer/syncbus"
	"go-drummer/theory"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func newStudio(t *testing.T) (*Studio, *instrument.RecordingBackend) {
	t.Helper()
	rec := instrument.NewRecordingBackend()
	s := New(Options{
		Backend:   rec,
		Transport: []sequencer.Option{sequencer.WithVirtualClock(epoch)},
		Rand:      harmony.NewRand(7),
	})
	t.Cleanup(func() { s.Close() })
	return s, rec
}

func countRoots(s *Studio) *[]syncbus.RootChanged {
	var seen []syncbus.RootChanged
	s.Bus().OnRootChanged(func(e syncbus.RootChanged) { seen = append(seen, e) })
	return &seen
}

func TestRootPropagatesOncePerSide(t *testing.T) {
	tests := []struct {
		name   string
		change func(s *Studio)
		pc     theory.PitchClass
		origin syncbus.Origin
	}{
		{"from bass", func(s *Studio) { s.Bass.SelectRoot(theory.G, false) }, theory.G, syncbus.OriginBass},
		{"from harmony", func(s *Studio) { s.Harmony.SelectKey(theory.D, false) }, theory.D, syncbus.OriginHarmony},
	}
	for _, tt := range tests {
		s, _ := newStudio(t)
		seen := countRoots(s)
		s.Do(func() error { tt.change(s); return nil })

		if len(*seen) != 1 || (*seen)[0].Origin != tt.origin {
			t.Errorf("%s: events = %+v", tt.name, *seen)
		}
		if s.Bass.Root() != tt.pc || s.Harmony.Key() != tt.pc {
			t.Errorf("%s: bass %s harmony %s, want %s", tt.name, s.Bass.Root(), s.Harmony.Key(), tt.pc)
		}
	}
}

func TestKeyboardRootReachesBoth(t *testing.T) {
	for _, target := range []string{TargetBoth, TargetBass, TargetHarmony} {
		s, _ := newStudio(t)
		seen := countRoots(s)
		s.KeyboardRoot(theory.A, target)
		if s.Bass.Root() != theory.A || s.Harmony.Key() != theory.A {
			t.Errorf("target %q: bass %s harmony %s", target, s.Bass.Root(), s.Harmony.Key())
		}
		if len(*seen) != 1 {
			t.Errorf("target %q: %d root events", target, len(*seen))
		}
	}
}

func TestPlayOpensAudio(t *testing.T) {
	s, _ := newStudio(t)
	err := s.Do(s.Drums.Play)
	if !failure.Is(err, failure.AudioNotReady) {
		t.Fatalf("play before init = %v", err)
	}
	if s.Status() == "" {
		t.Error("no status after failed play")
	}

	if err := s.Play(context.Background(), s.Drums.Play); err != nil {
		t.Fatal(err)
	}
	if !s.AudioReady() || s.Status() != "" {
		t.Errorf("ready %v status %q", s.AudioReady(), s.Status())
	}
	s.Transport().Advance(2 * time.Second)

	snap := s.Snapshot()
	if !snap.Drums.Playing || !snap.Running {
		t.Errorf("snapshot = %+v", snap.Drums)
	}
	if snap.Hits[instrument.Kick] == 0 || snap.Hits[instrument.Bass] != 0 {
		t.Errorf("hits = %v", snap.Hits)
	}

	s.StopAll()
	if s.Transport().Running() {
		t.Error("transport still running after StopAll")
	}
}

func TestPlayReportsBackendFailure(t *testing.T) {
	s := New(Options{Backend: brokenBackend{}})
	err := s.Play(context.Background(), s.Drums.Play)
	if !failure.Is(err, failure.AudioNotReady) {
		t.Fatalf("err = %v", err)
	}
	if s.Drums.IsPlaying() {
		t.Error("drums playing without audio")
	}
}

type brokenBackend struct{ instrument.NullBackend }

func (brokenBackend) Init(context.Context) error { return errors.New("no device") }

func TestUpdatesCoalesce(t *testing.T) {
	s, _ := newStudio(t)
	for range 5 {
		s.SetItalian(true)
	}
	select {
	case <-s.Updates():
	default:
		t.Fatal("no update signalled")
	}
	select {
	case <-s.Updates():
		t.Fatal("updates not coalesced")
	default:
	}
	if snap := s.Snapshot(); !snap.Italian || snap.Harmony.Key != "Do" {
		t.Errorf("italian snapshot: %v %q", snap.Italian, snap.Harmony.Key)
	}
}

type brokenStore struct{}

func (brokenStore) Save(string, []byte) error   { return errors.New("disk full") }
func (brokenStore) Load(string) ([]byte, error) { return nil, nil }

func TestSaveFailureKeepsMelody(t *testing.T) {
	s := New(Options{Backend: instrument.NewRecordingBackend(), Store: brokenStore{}, Rand: harmony.NewRand(3)})
	ctx := context.Background()
	if err := s.Play(ctx, func() error {
		if err := s.Harmony.SelectMode(harmony.ModeMelody); err != nil {
			return err
		}
		return s.Harmony.Play()
	}); err != nil {
		t.Fatal(err)
	}
	var saveErr error
	s.Do(func() error { _, saveErr = s.Harmony.SaveMelody(); return nil })
	if !failure.Is(saveErr, failure.Storage) {
		t.Fatalf("save err = %v", saveErr)
	}
	items, degraded := s.SavedMelodies()
	if len(items) != 1 || !degraded {
		t.Errorf("items %d degraded %v", len(items), degraded)
	}
}

func TestStartScene(t *testing.T) {
	s, rec := newStudio(t)
	err := s.Start(context.Background(), Scene{
		Genre:       "rock",
		Key:         "A",
		Progression: "rock-classic",
		Scale:       "minor_pentatonic",
	})
	if err != nil {
		t.Fatal(err)
	}
	snap := s.Snapshot()
	if !snap.Drums.Playing || !snap.Harmony.Playing || !snap.Bass.Playing {
		t.Fatalf("playing: drums %v harmony %v bass %v", snap.Drums.Playing, snap.Harmony.Playing, snap.Bass.Playing)
	}
	if snap.Bass.Root != "A" || snap.Harmony.Key != "A" {
		t.Errorf("roots: bass %s harmony %s", snap.Bass.Root, snap.Harmony.Key)
	}
	s.Transport().Advance(time.Second)
	if rec.Recorder(instrument.Kick).Count() == 0 || rec.Recorder(instrument.Chords).Count() == 0 {
		t.Error("scene did not sound")
	}
}

func TestStartSceneRejectsBadKey(t *testing.T) {
	s, _ := newStudio(t)
	if err := s.Start(context.Background(), Scene{Key: "H"}); !failure.Is(err, failure.InvalidSelection) {
		t.Errorf("err = %v", err)
	}
	if s.Drums.IsPlaying() {
		t.Error("drums started with a bad scene")
	}
}

type fakeKeyboard struct{ notes chan midi.NoteEvent }

func (f *fakeKeyboard) ID() string                        { return "fake" }
func (f *fakeKeyboard) Type() midi.ControllerType         { return midi.ControllerKeyboard }
func (f *fakeKeyboard) NoteEvents() <-chan midi.NoteEvent { return f.notes }
func (f *fakeKeyboard) Close() error                      { return nil }

func TestFollowKeyboard(t *testing.T) {
	s, _ := newStudio(t)
	kb := &fakeKeyboard{notes: make(chan midi.NoteEvent, 2)}
	kb.notes <- midi.NoteEvent{Note: 60}
	kb.notes <- midi.NoteEvent{Note: 62}
	close(kb.notes)
	s.FollowKeyboard(context.Background(), kb, TargetHarmony)
	if s.Bass.Root() != theory.D || s.Harmony.Key() != theory.D {
		t.Errorf("bass %s harmony %s, want D", s.Bass.Root(), s.Harmony.Key())
	}
}
