package sequencer

import (
	"context"
	"sync"
	"testing"
	"time"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type hit struct {
	step int
	at   time.Duration
}

func record(hits *[]hit) StepFunc {
	return func(step int, at time.Time) {
		*hits = append(*hits, hit{step, at.Sub(epoch)})
	}
}

func TestClampBPM(t *testing.T) {
	tr := NewTransport(WithVirtualClock(epoch))
	tests := []struct {
		start, delta, want int
	}{
		{220, 5, 220},
		{40, -5, 40},
		{120, 10, 130},
		{10, 0, 40},
		{500, 0, 220},
	}
	for _, tt := range tests {
		tr.SetBPM(tt.start)
		if got := tr.SetBPM(tr.BPM() + tt.delta); got != tt.want || tr.BPM() != tt.want {
			t.Errorf("SetBPM(%d%+d) = %d, want %d", tt.start, tt.delta, got, tt.want)
		}
	}
}

func TestDurations(t *testing.T) {
	if Sixteenth.Ticks() != 24 || EighthTriplet.Ticks() != 32 || Eighth.Ticks() != 48 {
		t.Fatal("unexpected tick lengths")
	}
	if got := Sixteenth.Seconds(120); got != 125*time.Millisecond {
		t.Errorf("sixteenth at 120 = %v", got)
	}
	if got := Eighth.Seconds(60); got != 500*time.Millisecond {
		t.Errorf("eighth at 60 = %v", got)
	}
}

func TestStepsLoop(t *testing.T) {
	tr := NewTransport(WithVirtualClock(epoch))
	seq := tr.NewSequencer("drums")
	var hits []hit
	if err := seq.Start(4, Sixteenth, record(&hits)); err != nil {
		t.Fatal(err)
	}
	if !tr.Running() {
		t.Fatal("transport should run once a sequence starts")
	}
	tr.Advance(125*time.Millisecond*5 + time.Millisecond)

	want := []int{0, 1, 2, 3, 0, 1}
	if len(hits) != len(want) {
		t.Fatalf("got %d hits, want %d: %v", len(hits), len(want), hits)
	}
	for i, h := range hits {
		if h.step != want[i] {
			t.Errorf("hit %d step = %d, want %d", i, h.step, want[i])
		}
		exp := time.Duration(i) * 125 * time.Millisecond
		if d := h.at - exp; d < -time.Microsecond || d > time.Microsecond {
			t.Errorf("hit %d at %v, want %v", i, h.at, exp)
		}
	}
	if seq.Step() != 1 {
		t.Errorf("current step = %d, want 1", seq.Step())
	}
}

func TestStopIsIdempotentAndSilences(t *testing.T) {
	tr := NewTransport(WithVirtualClock(epoch))
	seq := tr.NewSequencer("bass")
	var hits []hit
	seq.Start(8, Eighth, record(&hits))
	tr.Advance(0)
	seq.Stop()
	seq.Stop()
	tr.Advance(2 * time.Second)

	if len(hits) != 1 {
		t.Errorf("hits after stop = %d, want 1", len(hits))
	}
	if tr.Running() {
		t.Error("transport should stop with its last sequence")
	}
	if seq.Live() || seq.Step() != -1 {
		t.Error("stopped sequence still reports live state")
	}
}

func TestRestartKeepsOneLive(t *testing.T) {
	tr := NewTransport(WithVirtualClock(epoch))
	seq := tr.NewSequencer("drums")
	var hits []hit
	for i := 0; i < 10; i++ {
		if err := seq.Start(16, Sixteenth, record(&hits)); err != nil {
			t.Fatal(err)
		}
		tr.Advance(300 * time.Millisecond)
		if n := tr.LiveCount("drums"); n != 1 {
			t.Fatalf("after restart %d: %d live sequences", i, n)
		}
	}
	// every restart on an otherwise idle transport begins at slot 0
	zeros := 0
	for _, h := range hits {
		if h.step == 0 {
			zeros++
		}
	}
	if zeros != 10 {
		t.Errorf("slot 0 fired %d times, want 10", zeros)
	}
}

func TestJoinAlignsToBar(t *testing.T) {
	tr := NewTransport(WithVirtualClock(epoch))
	drums := tr.NewSequencer("drums")
	bass := tr.NewSequencer("bass")
	drums.Start(16, Sixteenth, func(int, time.Time) {})
	tr.Advance(700 * time.Millisecond) // inside the first bar at 120 BPM (2s)

	var hits []hit
	bass.Start(16, Sixteenth, record(&hits))
	tr.Advance(1400 * time.Millisecond)

	if len(hits) == 0 {
		t.Fatal("bass never fired")
	}
	if hits[0].step != 0 {
		t.Errorf("first bass step = %d, want 0", hits[0].step)
	}
	if d := hits[0].at - 2*time.Second; d < -time.Microsecond || d > time.Microsecond {
		t.Errorf("bass joined at %v, want the next downbeat at 2s", hits[0].at)
	}
	if got := tr.Live(); len(got) != 2 || got[0] != "drums" || got[1] != "bass" {
		t.Errorf("live = %v", got)
	}
}

func TestTempoChangeKeepsPosition(t *testing.T) {
	tr := NewTransport(WithVirtualClock(epoch))
	seq := tr.NewSequencer("drums")
	var hits []hit
	seq.Start(32, Sixteenth, record(&hits))
	tr.Advance(500 * time.Millisecond) // steps 0..4 at 120 BPM
	before := tr.Position()
	tr.SetBPM(60)
	if after := tr.Position(); after != before {
		t.Errorf("position moved from %d to %d on tempo change", before, after)
	}
	tr.Advance(250 * time.Millisecond) // one sixteenth at 60 BPM

	if len(hits) != 6 {
		t.Fatalf("hits = %d, want 6", len(hits))
	}
	if gap := hits[5].at - hits[4].at; gap < 249*time.Millisecond || gap > 251*time.Millisecond {
		t.Errorf("gap after tempo change = %v, want ~250ms", gap)
	}
	if seq.Steps() != 32 {
		t.Errorf("steps = %d, want 32", seq.Steps())
	}
}

func TestStartRejectsBadArgs(t *testing.T) {
	tr := NewTransport(WithVirtualClock(epoch))
	seq := tr.NewSequencer("x")
	if err := seq.Start(0, Sixteenth, nil); err == nil {
		t.Error("expected error for zero steps")
	}
	if err := seq.Start(4, Duration(9), nil); err == nil {
		t.Error("expected error for bad duration")
	}
	if seq.Live() {
		t.Error("failed start left the sequence live")
	}
}

func TestCallbackCanStopOtherSequence(t *testing.T) {
	tr := NewTransport(WithVirtualClock(epoch))
	a := tr.NewSequencer("a")
	b := tr.NewSequencer("b")
	var bHits []hit
	b.Start(4, Sixteenth, record(&bHits))
	a.Start(4, Sixteenth, func(step int, at time.Time) {
		if step == 1 {
			b.Stop()
		}
	})
	tr.Advance(time.Second)
	if len(bHits) != 2 {
		t.Errorf("b fired %d times, want 2", len(bHits))
	}
}

func TestRunRealTime(t *testing.T) {
	tr := NewTransport(WithLookAhead(0))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		tr.Run(ctx)
		close(done)
	}()

	var mu sync.Mutex
	count := 0
	tr.Locked(func() {
		tr.SetBPM(220)
		seq := tr.NewSequencer("drums")
		seq.Start(16, Sixteenth, func(int, time.Time) {
			mu.Lock()
			count++
			mu.Unlock()
		})
	})
	time.Sleep(300 * time.Millisecond)
	cancel()
	<-done

	mu.Lock()
	defer mu.Unlock()
	// a sixteenth at 220 BPM is ~68ms
	if count < 2 {
		t.Errorf("only %d steps fired in real time", count)
	}
}
