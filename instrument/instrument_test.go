package instrument

import (
	"context"
	"math"
	"testing"
	"time"
)

func TestVolumeToDB(t *testing.T) {
	tests := []struct {
		in   int
		want float64
	}{
		{100, 0},
		{50, -30},
		{80, -12},
		{150, 0},
	}
	for _, tt := range tests {
		if got := VolumeToDB(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("VolumeToDB(%d) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if !math.IsInf(VolumeToDB(0), -1) {
		t.Error("0 should mute")
	}
	if DBToGain(Mute) != 0 || DBToVelocity(Mute) != 0 {
		t.Error("mute should be silent")
	}
	if DBToVelocity(0) != 127 {
		t.Errorf("0 dB velocity = %d", DBToVelocity(0))
	}
}

func TestRecorderCapabilities(t *testing.T) {
	b := NewRecordingBackend()
	if err := b.Init(context.Background()); err != nil {
		t.Fatal(err)
	}
	inst := b.Voice(Bass)
	at := time.Unix(10, 0)
	inst.TriggerAttackRelease(40, time.Second, at)
	Bend(inst, 1, at)
	Release(inst)
	if err := SetPreset(inst, "pick"); err != nil {
		t.Fatal(err)
	}

	r := b.Recorder(Bass)
	if r.Count() != 1 || r.Hits()[0].At != at || r.Hits()[0].Voice != Bass {
		t.Errorf("hits = %v", r.Hits())
	}
	if r.Preset() != "pick" || len(r.Bends()) != 1 || r.Releases() != 1 {
		t.Error("optional capabilities not recorded")
	}
	b.Close()
	if !r.Disposed() {
		t.Error("close should dispose voices")
	}
}
