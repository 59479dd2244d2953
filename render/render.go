// Package render plays a scene offline, faster than real time: the transport
// runs on a virtual clock and the synth engine is pulled by a beep streamer.
package render

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"

	"go-drummer/audio"
	"go-drummer/catalog"
	"go-drummer/debug"
	"go-drummer/harmony"
	"go-drummer/instrument"
	"go-drummer/sequencer"
	"go-drummer/studio"
)

// DefaultSampleRate is used when Options leaves it at zero.
const DefaultSampleRate = 44100

var epoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// Options describes one offline render.
type Options struct {
	Scene      studio.Scene
	Duration   time.Duration
	SampleRate int
	Seed       uint64
	Catalog    *catalog.Catalog
}

func (o *Options) defaults() {
	if o.SampleRate <= 0 {
		o.SampleRate = DefaultSampleRate
	}
	if o.Catalog == nil {
		o.Catalog = catalog.Default()
	}
}

// offline is an instrument backend with nothing to open.
type offline struct{ e *audio.Engine }

func (b offline) Init(ctx context.Context) error           { return ctx.Err() }
func (b offline) Voice(name string) instrument.Instrument { return b.e.Voice(name) }
func (b offline) Close() error                            { return nil }

// Result summarises a render.
type Result struct {
	Frames int
	Peak   float64
	Hits   map[string]uint64
	// Mono is the mixed-down signal, kept for analysis.
	Mono []float64
}

// Streamer plays the scene into a beep stream of the given length. The
// studio is returned so the caller can inspect it afterwards.
func Streamer(ctx context.Context, o Options) (beep.Streamer, *studio.Studio, *Result, error) {
	o.defaults()
	eng := audio.NewEngine(o.SampleRate, o.Catalog.Voices)
	eng.SetOrigin(epoch)
	s := studio.New(studio.Options{
		Catalog:   o.Catalog,
		Backend:   offline{e: eng},
		Transport: []sequencer.Option{sequencer.WithVirtualClock(epoch)},
		Rand:      harmony.NewRand(o.Seed),
	})
	if err := s.Start(ctx, o.Scene); err != nil {
		s.Close()
		return nil, nil, nil, fmt.Errorf("start scene: %w", err)
	}

	total := int(o.Duration.Seconds() * float64(o.SampleRate))
	res := &Result{Mono: make([]float64, 0, total)}
	tr := s.Transport()
	frame := time.Second / time.Duration(o.SampleRate)

	st := beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		left := total - res.Frames
		if left <= 0 {
			return 0, false
		}
		n := min(len(samples), left)
		// steps due inside this block are scheduled before it is mixed
		end := epoch.Add(time.Duration(res.Frames+n) * frame)
		tr.AdvanceTo(end)
		eng.Fill(samples[:n])
		for _, f := range samples[:n] {
			m := (f[0] + f[1]) / 2
			res.Mono = append(res.Mono, m)
			if a := abs(m); a > res.Peak {
				res.Peak = a
			}
		}
		res.Frames += n
		return n, true
	})
	return st, s, res, nil
}

// WAV renders to w as 16-bit stereo.
func WAV(ctx context.Context, w io.WriteSeeker, o Options) (*Result, error) {
	o.defaults()
	st, s, res, err := Streamer(ctx, o)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	format := beep.Format{
		SampleRate:  beep.SampleRate(o.SampleRate),
		NumChannels: 2,
		Precision:   2,
	}
	if err := wav.Encode(w, st, format); err != nil {
		return nil, fmt.Errorf("encode wav: %w", err)
	}
	res.Hits = s.Snapshot().Hits
	debug.Log("render", "%d frames, peak %.2f", res.Frames, res.Peak)
	return res, nil
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
