package render

import (
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/gopxl/beep/wav"

	"go-drummer/instrument"
	"go-drummer/studio"
)

var rockScene = studio.Scene{Pattern: "rock_basic", BPM: 120, Key: "E", Scale: "minor_pentatonic"}

func TestLength(t *testing.T) {
	if got := Length(2, 120); got != 4*time.Second {
		t.Errorf("2 bars at 120 = %v", got)
	}
}

func TestWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	res, err := WAV(context.Background(), f, Options{Scene: rockScene, Duration: time.Second, SampleRate: 22050})
	f.Close()
	if err != nil {
		t.Fatal(err)
	}
	if res.Frames != 22050 {
		t.Errorf("frames = %d", res.Frames)
	}
	if res.Peak == 0 {
		t.Error("render is silent")
	}
	if res.Hits[instrument.Kick] == 0 || res.Hits[instrument.Bass] == 0 {
		t.Errorf("hits = %v", res.Hits)
	}

	f, err = os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	st, format, err := wav.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if format.SampleRate != 22050 || format.NumChannels != 2 || st.Len() != 22050 {
		t.Errorf("format %+v, %d frames", format, st.Len())
	}
}

func TestUnknownSceneFails(t *testing.T) {
	var buf bytes.Buffer
	err := MIDI(context.Background(), &buf, Options{Scene: studio.Scene{Pattern: "nope"}, Duration: time.Second},
		func(string) uint8 { return 0 })
	if err == nil {
		t.Fatal("unknown pattern rendered")
	}
}

func TestMIDIExport(t *testing.T) {
	var buf bytes.Buffer
	channels := map[string]uint8{instrument.Kick: 9, instrument.Snare: 9, instrument.Hihat: 9, instrument.Bass: 1}
	err := MIDI(context.Background(), &buf, Options{Scene: rockScene, Duration: Length(1, 120)},
		func(v string) uint8 { return channels[v] })
	if err != nil {
		t.Fatal(err)
	}
	rd, err := smf.ReadFrom(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	// tempo track plus kick, snare, hihat and bass
	if len(rd.Tracks) != 5 {
		t.Fatalf("tracks = %d", len(rd.Tracks))
	}
	var bpm float64
	for _, ev := range rd.Tracks[0] {
		if smf.Message(ev.Message).GetMetaTempo(&bpm) {
			break
		}
	}
	if math.Abs(bpm-120) > 0.01 {
		t.Errorf("tempo = %v", bpm)
	}
	var ch, key, vel uint8
	for _, ev := range rd.Tracks[4] {
		if gomidi.Message(ev.Message).GetNoteOn(&ch, &key, &vel) {
			if ch != 1 || key != 28 {
				t.Errorf("first bass note ch %d key %d", ch, key)
			}
			break
		}
	}
}

func TestDominant(t *testing.T) {
	const rate = 44100
	mono := make([]float64, 4*Window)
	for i := range mono {
		mono[i] = math.Sin(2 * math.Pi * 440 * float64(i) / rate)
	}
	if f := Dominant(mono, rate); math.Abs(f-440) > float64(rate)/Window {
		t.Errorf("dominant = %.1f Hz", f)
	}
	bands := Spectrum(mono, rate, 10)
	loudest := 0
	for i, b := range bands {
		if b.Level > bands[loudest].Level {
			loudest = i
		}
	}
	if b := bands[loudest]; b.Lo > 440 || b.Hi < 440 {
		t.Errorf("loudest band %.0f-%.0f Hz", b.Lo, b.Hi)
	}
}

func TestSpectrumTooShort(t *testing.T) {
	if Spectrum(make([]float64, Window-1), 44100, 8) != nil {
		t.Error("spectrum of less than one window")
	}
}
