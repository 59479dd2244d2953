package render

import (
	"context"
	"fmt"
	"io"
	"time"

	"go-drummer/harmony"
	"go-drummer/instrument"
	"go-drummer/midi"
	"go-drummer/sequencer"
	"go-drummer/studio"
)

// Record plays the scene against recording voices and returns every hit per
// voice, the tempo and the drum meter.
func Record(ctx context.Context, o Options) (hits map[string][]instrument.Hit, bpm int, num, denom uint8, err error) {
	o.defaults()
	rec := instrument.NewRecordingBackend()
	s := studio.New(studio.Options{
		Catalog:   o.Catalog,
		Backend:   rec,
		Transport: []sequencer.Option{sequencer.WithVirtualClock(epoch)},
		Rand:      harmony.NewRand(o.Seed),
	})
	defer s.Close()
	if err := s.Start(ctx, o.Scene); err != nil {
		return nil, 0, 0, 0, fmt.Errorf("start scene: %w", err)
	}
	s.Transport().Advance(o.Duration)

	snap := s.Snapshot()
	num, denom = snap.Drums.TimeSignature.Meter()
	hits = make(map[string][]instrument.Hit, len(instrument.Voices))
	end := epoch.Add(o.Duration)
	for _, v := range instrument.Voices {
		for _, h := range rec.Recorder(v).Hits() {
			if h.At.Before(end) {
				hits[v] = append(hits[v], h)
			}
		}
	}
	return hits, snap.Drums.BPM, num, denom, nil
}

// MIDI records the scene and writes it as a Standard MIDI File, one track
// per voice that played. channel maps a voice to its MIDI channel.
func MIDI(ctx context.Context, w io.Writer, o Options, channel func(voice string) uint8) error {
	hits, bpm, num, denom, err := Record(ctx, o)
	if err != nil {
		return err
	}
	var tracks []midi.Track
	for _, v := range instrument.Voices {
		if len(hits[v]) == 0 {
			continue
		}
		tracks = append(tracks, midi.Track{Name: v, Channel: channel(v), Hits: hits[v]})
	}
	return midi.WriteSMF(w, epoch, bpm, num, denom, tracks)
}

// Length returns the duration of bars 4/4 bars at bpm.
func Length(bars, bpm int) time.Duration {
	return time.Duration(bars*sequencer.BarTicks) * time.Minute / time.Duration(bpm*sequencer.PPQ)
}
