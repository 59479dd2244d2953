package audio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"go-drummer/catalog"
	"go-drummer/debug"
	"go-drummer/instrument"
)

const (
	channelCount = 2 // stereo
	bitDepth     = 2 // 16-bit
	bufferSize   = 50 * time.Millisecond
)

// Synth plays an Engine through the default sound card.
type Synth struct {
	engine *Engine

	mu     sync.Mutex
	otoCtx *oto.Context
	player *oto.Player
	frames [][2]float64
}

// NewSynth creates a synth backend. Nothing is opened until Init.
func NewSynth(sampleRate int, voices catalog.Voices) *Synth {
	return &Synth{engine: NewEngine(sampleRate, voices)}
}

// Engine exposes the mixer.
func (s *Synth) Engine() *Engine { return s.engine }

// Init opens the audio device and waits until it is ready to play.
func (s *Synth) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.player != nil {
		return nil
	}
	op := &oto.NewContextOptions{
		SampleRate:   s.engine.SampleRate(),
		ChannelCount: channelCount,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   bufferSize,
	}
	otoCtx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return fmt.Errorf("open audio device: %w", err)
	}
	select {
	case <-readyChan:
	case <-ctx.Done():
		return ctx.Err()
	}
	s.otoCtx = otoCtx
	s.engine.SetOrigin(time.Now().Add(bufferSize))
	s.player = otoCtx.NewPlayer(&synthReader{s: s})
	s.player.Play()
	debug.Log("audio", "synth ready at %d Hz", s.engine.SampleRate())
	return nil
}

// Voice returns the named voice.
func (s *Synth) Voice(name string) instrument.Instrument {
	return s.engine.Voice(name)
}

// Close stops the stream.
func (s *Synth) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.player != nil {
		s.player.Pause()
	}
	return nil
}

// synthReader implements io.Reader for continuous audio generation
type synthReader struct {
	s *Synth
}

func (r *synthReader) Read(buf []byte) (int, error) {
	n := len(buf) / (channelCount * bitDepth)
	if cap(r.s.frames) < n {
		r.s.frames = make([][2]float64, n)
	}
	frames := r.s.frames[:n]
	r.s.engine.Fill(frames)
	for i, f := range frames {
		idx := i * channelCount * bitDepth
		for c := 0; c < channelCount; c++ {
			v := int16(f[c] * 32767)
			buf[idx+c*bitDepth] = byte(v)
			buf[idx+c*bitDepth+1] = byte(v >> 8)
		}
	}
	return n * channelCount * bitDepth, nil
}
