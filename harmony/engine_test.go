package harmony

import (
	"reflect"
	"testing"
	"time"

	"go-drummer/catalog"
	"go-drummer/failure"
	"go-drummer/instrument"
	"go-drummer/sequencer"
	"go-drummer/store"
	"go-drummer/syncbus"
	"go-drummer/theory"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type fakeDrums struct {
	pattern catalog.DrumPattern
	has     bool
}

func (d *fakeDrums) CurrentPattern() (catalog.DrumPattern, bool) { return d.pattern, d.has }
func (d *fakeDrums) IsPlaying() bool                             { return false }
func (d *fakeDrums) Play() error                                 { return nil }
func (d *fakeDrums) Stop()                                       {}
func (d *fakeDrums) SelectPattern(string) error                  { return nil }
func (d *fakeDrums) SetBPM(bpm int) int                          { return bpm }

type fakeBass struct {
	following bool
	roots     []theory.PitchClass
	shown     int
	cleared   int
}

func (b *fakeBass) IsFollowingHarmony() bool                 { return b.following }
func (b *fakeBass) PlayRoot(pc theory.PitchClass)            { b.roots = append(b.roots, pc) }
func (b *fakeBass) ShowMelodyChord(theory.PitchClass, []int) { b.shown++ }
func (b *fakeBass) ClearMelodyChord()                        { b.cleared++ }

type rig struct {
	tr    *sequencer.Transport
	bus   *syncbus.Bus
	rec   *instrument.RecordingBackend
	drums *fakeDrums
	bass  *fakeBass
	saved *store.List[SavedMelody]
	e     *Engine
}

func newRig(t *testing.T, seed uint64) *rig {
	t.Helper()
	r := &rig{
		tr:    sequencer.NewTransport(sequencer.WithVirtualClock(epoch)),
		bus:   syncbus.New(),
		rec:   instrument.NewRecordingBackend(),
		drums: &fakeDrums{},
		bass:  &fakeBass{},
	}
	r.saved = store.OpenList[SavedMelody](store.NewMemoryStore(), "melodies", "melodies", 2)
	r.e = New(Config{
		Catalog:   catalog.Default(),
		Transport: r.tr,
		Bus:       r.bus,
		Drums:     r.drums,
		Chords:    r.rec.Voice(instrument.Chords),
		Melody:    r.rec.Voice(instrument.Melody),
		Saved:     r.saved,
		Rand:      NewRand(seed),
	})
	r.e.SetBass(r.bass)
	return r
}

func TestGenerateIsReproducible(t *testing.T) {
	artist, _ := catalog.Default().Artist("arena-lead")
	a := Generate(artist, 4, NewRand(42))
	b := Generate(artist, 4, NewRand(42))
	if !reflect.DeepEqual(a, b) {
		t.Fatal("same seed produced different melodies")
	}
	differs := false
	for seed := uint64(1); seed < 6 && !differs; seed++ {
		differs = !reflect.DeepEqual(a, Generate(artist, 4, NewRand(seed)))
	}
	if !differs {
		t.Error("every seed produced the same melody")
	}
}

func TestGenerateStaysInBars(t *testing.T) {
	cat := catalog.Default()
	for _, artist := range cat.Artists {
		allowed := map[int]bool{0: true, 4: true, 7: true}
		for _, iv := range artist.Intervals {
			allowed[iv] = true
		}
		m := Generate(artist, 4, NewRand(7))
		if len(m.Notes) == 0 {
			t.Errorf("%s: empty melody", artist.ID)
		}
		for _, n := range m.Notes {
			if n.Bar < 0 || n.Bar >= 4 || n.Beat < 0 || n.Beat+n.Duration > BeatsPerBar+1e-9 {
				t.Errorf("%s: note outside its bar: %+v", artist.ID, n)
			}
			if !allowed[n.Interval] {
				t.Errorf("%s: interval %d not in style", artist.ID, n.Interval)
			}
		}
	}
}

func TestSelectKeyRestartsOnNewRoot(t *testing.T) {
	r := newRig(t, 1)
	var roots []syncbus.RootChanged
	r.bus.OnRootChanged(func(e syncbus.RootChanged) { roots = append(roots, e) })

	if err := r.e.SelectPattern("rock-i-iv-v"); err != nil {
		t.Fatal(err)
	}
	r.tr.Advance(0)
	chords := r.rec.Recorder(instrument.Chords)
	if got := chords.Notes(); !reflect.DeepEqual(got, []uint8{48, 52, 55}) {
		t.Fatalf("first chord in C = %v", got)
	}
	chords.Reset()

	r.tr.Advance(time.Second)
	r.e.SelectKey(theory.D, false)
	r.tr.Advance(0)
	if got := chords.Notes(); !reflect.DeepEqual(got, []uint8{50, 54, 57}) {
		t.Fatalf("first chord after key change = %v", got)
	}
	if root, _ := r.e.ChordRoot(); root != theory.D {
		t.Errorf("chord root = %s", root)
	}
	if len(roots) != 1 || roots[0].PitchClass != theory.D || roots[0].Origin != syncbus.OriginHarmony {
		t.Errorf("root events = %v", roots)
	}
	if n := r.tr.LiveCount("harmony"); n != 1 {
		t.Errorf("%d harmony sequences", n)
	}
}

func TestPeerKeyChangeIsNotEchoed(t *testing.T) {
	r := newRig(t, 1)
	n := 0
	r.bus.OnRootChanged(func(syncbus.RootChanged) { n++ })
	r.e.SelectKey(theory.G, true)
	if n != 0 || r.e.Key() != theory.G {
		t.Errorf("echoes %d key %s", n, r.e.Key())
	}
}

func TestChordPlacementUsesBars(t *testing.T) {
	r := newRig(t, 1)
	r.e.SelectPattern("rock-i-iv-v")
	// bar 2 beat 2 is step 40; at 120 BPM that is 5s in
	r.tr.Advance(5 * time.Second)
	if got := r.rec.Recorder(instrument.Chords).Count(); got != 4*3 {
		t.Fatalf("chord notes = %d, want 12", got)
	}
	hits := r.rec.Recorder(instrument.Chords).Hits()
	if last := hits[len(hits)-1]; last.At.Sub(epoch) != 5*time.Second || last.Dur != time.Second {
		t.Errorf("IV chord at %v for %v", last.At.Sub(epoch), last.Dur)
	}
	if s := r.e.Snapshot(); s.Display != "F" || s.Detail != "F - A - C" {
		t.Errorf("display %q %q", s.Display, s.Detail)
	}
}

func TestChordsFeedBass(t *testing.T) {
	r := newRig(t, 1)
	r.bass.following = true
	r.e.SelectPattern("rock-i-iv-v")
	r.tr.Advance(2*time.Second + time.Millisecond)
	if !reflect.DeepEqual(r.bass.roots, []theory.PitchClass{theory.C, theory.F}) {
		t.Errorf("bass roots = %v", r.bass.roots)
	}
	if r.bass.shown != 2 {
		t.Errorf("shown = %d", r.bass.shown)
	}
	r.e.Stop()
	if r.bass.cleared != 1 || r.rec.Recorder(instrument.Chords).Releases() != 1 {
		t.Error("stop should clear the bass chord and release voices")
	}
}

func TestTimeSignatureFollowsDrums(t *testing.T) {
	r := newRig(t, 1)
	r.drums.pattern, _ = catalog.Default().Pattern("blues_12_8")
	r.drums.has = true
	r.e.SelectPattern("rock-i-iv-v")
	if s := r.e.Snapshot(); s.Steps != 4*12 {
		t.Errorf("steps = %d, want 48", s.Steps)
	}
}

func TestMelodyMode(t *testing.T) {
	r := newRig(t, 9)
	r.bass.following = true
	if err := r.e.SelectArtist("arena-lead"); err != nil {
		t.Fatal(err)
	}
	if r.e.Mode() != ModeMelody {
		t.Fatal("artist should switch to melody mode")
	}
	m, ok := r.e.Melody()
	if !ok || m.Progression != "rock-anthem" {
		t.Fatalf("melody %v %+v", ok, m)
	}
	// one full loop
	prog, _ := catalog.Default().Progression("rock-anthem")
	r.tr.Advance(time.Duration(prog.Bars)*2*time.Second - time.Millisecond)

	notes := r.rec.Recorder(instrument.Melody).Notes()
	if len(notes) != len(m.Notes) {
		t.Fatalf("played %d of %d notes", len(notes), len(m.Notes))
	}
	for i, n := range notes {
		if want := 60 + m.Notes[i].Interval; int(n) != want {
			t.Errorf("note %d = %d, want %d", i, n, want)
		}
	}
	if len(r.bass.roots) != prog.Bars {
		t.Errorf("bass roots per bar = %d, want %d", len(r.bass.roots), prog.Bars)
	}
	if r.rec.Recorder(instrument.Chords).Count() != 0 {
		t.Error("melody mode should not play chords")
	}
}

func TestSameSeedSameEngineMelody(t *testing.T) {
	a := newRig(t, 5)
	b := newRig(t, 5)
	a.e.SelectArtist("delta-slide")
	b.e.SelectArtist("delta-slide")
	ma, _ := a.e.Melody()
	mb, _ := b.e.Melody()
	if !reflect.DeepEqual(ma, mb) {
		t.Error("engines with the same seed diverged")
	}
}

func TestModeSwitchClears(t *testing.T) {
	r := newRig(t, 1)
	r.e.SelectArtist("first-steps")
	r.e.SelectMode(ModeChords)
	if r.e.IsPlaying() {
		t.Error("mode switch should stop")
	}
	if _, ok := r.e.Melody(); ok {
		t.Error("melody survived mode switch")
	}
	if err := r.e.Play(); !failure.Is(err, failure.MissingPrecondition) {
		t.Errorf("play without progression: %v", err)
	}
	if err := r.e.SelectMode("polka"); !failure.Is(err, failure.InvalidSelection) {
		t.Errorf("bad mode: %v", err)
	}
}

func TestMelodyWithoutArtistPicksOne(t *testing.T) {
	r := newRig(t, 3)
	r.e.SelectMode(ModeMelody)
	if err := r.e.Play(); err != nil {
		t.Fatal(err)
	}
	if s := r.e.Snapshot(); s.Artist == "" || s.MelodyNotes == 0 {
		t.Errorf("snapshot %+v", s)
	}
}

func TestSaveAndLoad(t *testing.T) {
	r := newRig(t, 11)
	r.e.SelectArtist("smoky-vocal")
	r.e.SelectKey(theory.A, false)
	want, _ := r.e.Melody()
	sm, err := r.e.SaveMelody()
	if err != nil {
		t.Fatal(err)
	}
	if sm.Key != "A" || sm.ArtistID != "smoky-vocal" {
		t.Errorf("saved %+v", sm)
	}
	r.tr.Advance(time.Millisecond)
	r.e.SaveMelody()
	if _, err := r.e.SaveMelody(); !failure.Is(err, failure.Full) {
		t.Errorf("third save: %v", err)
	}

	r.e.NextMelody()
	r.e.SelectKey(theory.C, false)
	if err := r.e.LoadMelody(sm.ID); err != nil {
		t.Fatal(err)
	}
	got, _ := r.e.Melody()
	if r.e.Key() != theory.A || !reflect.DeepEqual(got.Notes, want.Notes) {
		t.Errorf("loaded key %s notes differ: %v", r.e.Key(), !reflect.DeepEqual(got.Notes, want.Notes))
	}
	if err := r.e.LoadMelody("nope"); !failure.Is(err, failure.InvalidSelection) {
		t.Errorf("unknown saved melody: %v", err)
	}
}

func TestAdjustOctaveBounds(t *testing.T) {
	r := newRig(t, 1)
	for i := 0; i < 5; i++ {
		r.e.AdjustOctave(1)
	}
	if r.e.Octave() != MaxOctave {
		t.Errorf("octave = %d", r.e.Octave())
	}
	for i := 0; i < 10; i++ {
		r.e.AdjustOctave(-1)
	}
	if r.e.Octave() != MinOctave {
		t.Errorf("octave = %d", r.e.Octave())
	}
}

func TestSelectInstrument(t *testing.T) {
	r := newRig(t, 1)
	if err := r.e.SelectInstrument("organ"); err != nil {
		t.Fatal(err)
	}
	if r.rec.Recorder(instrument.Chords).Preset() != "organ" || r.rec.Recorder(instrument.Melody).Preset() != "organ" {
		t.Error("preset not applied to both voices")
	}
	if err := r.e.SelectInstrument("theremin"); !failure.Is(err, failure.InvalidSelection) {
		t.Errorf("err = %v", err)
	}
}

func TestVolume(t *testing.T) {
	r := newRig(t, 1)
	chords, lead := r.rec.Recorder(instrument.Chords), r.rec.Recorder(instrument.Melody)
	if chords.Volume() != instrument.VolumeToDB(DefaultVolume) {
		t.Errorf("initial volume %v", chords.Volume())
	}
	r.e.SetVolume(50)
	if chords.Volume() != instrument.VolumeToDB(50) || lead.Volume() != instrument.VolumeToDB(50) {
		t.Errorf("volumes %v %v", chords.Volume(), lead.Volume())
	}
	r.e.SetVolume(0)
	if chords.Volume() != instrument.Mute || lead.Volume() != instrument.Mute {
		t.Error("volume 0 should mute both voices")
	}
	r.e.SetVolume(250)
	if r.e.Volume() != 100 || r.e.Snapshot().Volume != 100 {
		t.Errorf("volume = %d", r.e.Volume())
	}
}

func TestPlaysWithoutVoices(t *testing.T) {
	tr := sequencer.NewTransport(sequencer.WithVirtualClock(epoch))
	e := New(Config{
		Catalog:   catalog.Default(),
		Transport: tr,
		Bus:       syncbus.New(),
		Rand:      NewRand(1),
	})
	if err := e.SelectPattern("rock-i-iv-v"); err != nil {
		t.Fatal(err)
	}
	tr.Advance(4 * time.Second)
	if err := e.SelectArtist("smoky-vocal"); err != nil {
		t.Fatal(err)
	}
	tr.Advance(4 * time.Second)
	if _, ok := e.ChordRoot(); !ok {
		t.Error("no chord sounded")
	}
}

func TestSavesAtSameInstantGetDistinctIDs(t *testing.T) {
	r := newRig(t, 5)
	r.e.SelectArtist("smoky-vocal")
	first, err := r.e.SaveMelody()
	if err != nil {
		t.Fatal(err)
	}
	r.e.NextMelody()
	want, _ := r.e.Melody()
	second, err := r.e.SaveMelody()
	if err != nil {
		t.Fatal(err)
	}
	if first.ID == second.ID {
		t.Fatalf("both saves got id %q", first.ID)
	}
	if err := r.e.LoadMelody(second.ID); err != nil {
		t.Fatal(err)
	}
	if got, _ := r.e.Melody(); !reflect.DeepEqual(got.Notes, want.Notes) {
		t.Error("loading the second save replayed the first")
	}
}
