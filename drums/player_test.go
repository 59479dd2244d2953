package drums

import (
	"testing"
	"time"

	"go-drummer/catalog"
	"go-drummer/failure"
	"go-drummer/instrument"
	"go-drummer/sequencer"
	"go-drummer/syncbus"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type rig struct {
	tr  *sequencer.Transport
	bus *syncbus.Bus
	rec *instrument.RecordingBackend
	p   *Player
}

func newRig(t *testing.T) *rig {
	t.Helper()
	r := &rig{
		tr:  sequencer.NewTransport(sequencer.WithVirtualClock(epoch)),
		bus: syncbus.New(),
		rec: instrument.NewRecordingBackend(),
	}
	r.p = New(Config{
		Catalog:   catalog.Default(),
		Transport: r.tr,
		Bus:       r.bus,
		Voices: map[string]instrument.Instrument{
			instrument.Kick:  r.rec.Voice(instrument.Kick),
			instrument.Snare: r.rec.Voice(instrument.Snare),
			instrument.Hihat: r.rec.Voice(instrument.Hihat),
		},
	})
	return r
}

func TestSelectGenreAppliesPreset(t *testing.T) {
	r := newRig(t)
	var genres, patterns []string
	r.bus.OnGenreChanged(func(e syncbus.GenreChanged) { genres = append(genres, e.GenreID) })
	r.bus.OnPatternChanged(func(e syncbus.PatternChanged) { patterns = append(patterns, e.PatternID) })

	if err := r.p.SelectGenre("rock"); err != nil {
		t.Fatal(err)
	}
	pat, ok := r.p.CurrentPattern()
	if !ok || pat.ID != "rock_basic" {
		t.Fatalf("pattern = %q, want rock_basic", pat.ID)
	}
	// genre preset 120, then the pattern's own tempo in auto mode
	if r.tr.BPM() != 115 {
		t.Errorf("bpm = %d, want 115", r.tr.BPM())
	}
	kick := r.rec.Recorder(instrument.Kick)
	if kick.Preset() != "punchy" {
		t.Errorf("kick preset = %q", kick.Preset())
	}
	if got := kick.Volume(); got != instrument.VolumeToDB(75) {
		t.Errorf("kick volume = %v dB", got)
	}
	if got := kick.Decay(); got < 0.799 || got > 0.801 {
		t.Errorf("kick decay = %v", got)
	}
	if len(genres) != 1 || len(patterns) != 1 {
		t.Errorf("events: genres %v patterns %v", genres, patterns)
	}
}

func TestUnknownIDsLeaveState(t *testing.T) {
	r := newRig(t)
	r.p.SelectGenre("funk")
	before := r.p.Snapshot()
	if err := r.p.SelectGenre("polka"); !failure.Is(err, failure.InvalidSelection) {
		t.Errorf("genre error = %v", err)
	}
	if err := r.p.SelectPattern("nope"); !failure.Is(err, failure.InvalidSelection) {
		t.Errorf("pattern error = %v", err)
	}
	after := r.p.Snapshot()
	if after.Genre != before.Genre || after.Pattern != before.Pattern || after.BPM != before.BPM {
		t.Errorf("state changed: %+v -> %+v", before, after)
	}
}

func TestSetBPMKeepsCounters(t *testing.T) {
	r := newRig(t)
	r.p.SelectPattern("rock_basic")
	got := r.p.SetBPM(200)
	pat, _ := r.p.CurrentPattern()
	step, bar := r.p.Step()
	if got != 200 || r.tr.BPM() != 200 {
		t.Errorf("bpm = %d", got)
	}
	if pat.TotalSteps() != 32 {
		t.Errorf("total steps = %d", pat.TotalSteps())
	}
	if step != 0 || bar != 0 {
		t.Errorf("counters moved: step %d bar %d", step, bar)
	}
}

func TestAdjustBPMClampsAndGoesManual(t *testing.T) {
	r := newRig(t)
	tests := []struct{ start, delta, want int }{
		{220, 5, 220},
		{40, -5, 40},
		{100, 5, 105},
	}
	for _, tt := range tests {
		r.p.SetBPM(tt.start)
		if got := r.p.AdjustBPM(tt.delta); got != tt.want {
			t.Errorf("AdjustBPM(%d%+d) = %d, want %d", tt.start, tt.delta, got, tt.want)
		}
	}
	if r.p.Auto() {
		t.Error("AdjustBPM should leave auto mode")
	}
	r.p.SelectPattern("funk_basic")
	if r.tr.BPM() != 105 {
		t.Errorf("manual mode tempo overwritten: %d", r.tr.BPM())
	}
}

func TestPlayWithoutPatternPicksDefault(t *testing.T) {
	r := newRig(t)
	if err := r.p.Play(); err != nil {
		t.Fatal(err)
	}
	if r.p.Genre() != DefaultGenre || !r.p.IsPlaying() {
		t.Fatalf("genre %q playing %v", r.p.Genre(), r.p.IsPlaying())
	}
	// one bar of rock_basic at 115 BPM
	r.tr.Advance(sequencer.Sixteenth.Seconds(115)*15 + time.Millisecond)

	kick := r.rec.Recorder(instrument.Kick).Hits()
	snare := r.rec.Recorder(instrument.Snare).Hits()
	hihat := r.rec.Recorder(instrument.Hihat).Hits()
	if len(kick) != 2 || len(snare) != 2 || len(hihat) != 8 {
		t.Fatalf("hits kick %d snare %d hihat %d", len(kick), len(snare), len(hihat))
	}
	if kick[0].Note != NoteKick || snare[0].Note != NoteSnare || hihat[0].Note != NoteHihat {
		t.Error("wrong GM notes")
	}
	if kick[0].Dur != sequencer.Eighth.Seconds(115) {
		t.Errorf("kick length = %v", kick[0].Dur)
	}
	if hihat[0].Dur != sequencer.Sixteenth.Seconds(115)/2 {
		t.Errorf("hihat length = %v", hihat[0].Dur)
	}
	s := r.p.Snapshot()
	if s.Step != 15 || s.StepInBar != 15 || s.Beat != 4 || s.Bar != 0 {
		t.Errorf("snapshot step %d in bar %d beat %d bar %d", s.Step, s.StepInBar, s.Beat, s.Bar)
	}
}

func TestPatternChangesKeepOneSequence(t *testing.T) {
	r := newRig(t)
	r.p.Play()
	ids := []string{"rock_hard", "pop_ballad", "blues_12_8", "funk_basic", "rock_basic"}
	for i := 0; i < 20; i++ {
		if err := r.p.SelectPattern(ids[i%len(ids)]); err != nil {
			t.Fatal(err)
		}
		r.tr.Advance(170 * time.Millisecond)
		if n := r.tr.LiveCount("drums"); n != 1 {
			t.Fatalf("change %d: %d drum sequences live", i, n)
		}
	}
}

func TestTripletGrid(t *testing.T) {
	r := newRig(t)
	r.p.SelectPattern("blues_12_8")
	r.p.Play()
	r.tr.Advance(sequencer.EighthTriplet.Seconds(60)*4 + time.Millisecond)
	s := r.p.Snapshot()
	if s.StepsPerBar != 12 || s.Step != 4 {
		t.Fatalf("steps per bar %d step %d", s.StepsPerBar, s.Step)
	}
	if s.Beat != 2 {
		t.Errorf("beat = %d, want 2", s.Beat)
	}
}

func TestStopResets(t *testing.T) {
	r := newRig(t)
	r.p.Play()
	r.tr.Advance(time.Second)
	r.p.Stop()
	r.p.Stop()
	s := r.p.Snapshot()
	if s.Playing || s.Step != -1 || s.Beat != 0 {
		t.Errorf("after stop: %+v", s)
	}
	if step, bar := r.p.Step(); step != 0 || bar != 0 {
		t.Errorf("counters %d/%d", step, bar)
	}
	if r.tr.Running() {
		t.Error("transport still running")
	}
}

func TestNotReady(t *testing.T) {
	r := newRig(t)
	r.p.ready = func() bool { return false }
	if err := r.p.Play(); !failure.Is(err, failure.AudioNotReady) {
		t.Errorf("err = %v", err)
	}
	if r.p.IsPlaying() {
		t.Error("playing without audio")
	}
}

func TestManualVoiceChanges(t *testing.T) {
	r := newRig(t)
	r.p.SelectGenre("rock")
	if err := r.p.SetVoicePreset(instrument.Snare, "clap"); err != nil {
		t.Fatal(err)
	}
	if r.p.Auto() {
		t.Error("preset change should leave auto mode")
	}
	r.p.SetVoiceVolume(instrument.Hihat, 0)
	if v := r.rec.Recorder(instrument.Hihat).Volume(); v != instrument.Mute {
		t.Errorf("hihat at 0 = %v dB", v)
	}
	if err := r.p.SetVoiceVolume("cowbell", 50); !failure.Is(err, failure.InvalidSelection) {
		t.Errorf("unknown voice err = %v", err)
	}
	r.p.SetAutoMode(true)
	if got := r.rec.Recorder(instrument.Snare).Preset(); got != "tight" {
		t.Errorf("auto mode should restore the genre snare, got %q", got)
	}
}

func TestStopAnnouncesOnlyRunningDrums(t *testing.T) {
	r := newRig(t)
	stops := 0
	r.bus.OnDrumsStopped(func(syncbus.DrumsStopped) { stops++ })
	r.p.Stop()
	if stops != 0 {
		t.Errorf("idle stop announced %d times", stops)
	}
	r.p.SelectPattern("rock_basic")
	r.p.Play()
	r.p.Stop()
	r.p.Stop()
	if stops != 1 {
		t.Errorf("stops announced = %d, want 1", stops)
	}
}
