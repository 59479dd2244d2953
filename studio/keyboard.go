package studio

import (
	"context"

	"go-drummer/debug"
	"go-drummer/midi"
	"go-drummer/theory"
)

// Keyboard targets. A keyboard note sets the key on its target, which then
// propagates to the other side over the bus.
const (
	TargetBoth    = ""
	TargetBass    = "bass"
	TargetHarmony = "harmony"
)

// KeyboardRoot applies one keyboard note as the new root.
func (s *Studio) KeyboardRoot(pc theory.PitchClass, target string) {
	switch target {
	case TargetBass:
		s.Do(func() error { s.Bass.SelectRoot(pc, false); return nil })
	case TargetHarmony:
		s.Do(func() error { s.Harmony.SelectKey(pc, false); return nil })
	default:
		s.SelectRoot(pc)
	}
}

// FollowKeyboards reads device events from dm and follows every connected
// keyboard until ctx is done. targets maps port names to a target; missing
// ports drive both players.
func (s *Studio) FollowKeyboards(ctx context.Context, dm *midi.DeviceManager, targets map[string]string) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-dm.Events():
			if !ok {
				return
			}
			if ev.Type != midi.DeviceConnected {
				continue
			}
			go s.FollowKeyboard(ctx, ev.Controller, targets[ev.ID])
		}
	}
}

// FollowKeyboard turns every note played on c into a root change until c
// closes or ctx is done.
func (s *Studio) FollowKeyboard(ctx context.Context, c midi.Controller, target string) {
	debug.Log("midi", "following %s (target %q)", c.ID(), target)
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-c.NoteEvents():
			if !ok {
				return
			}
			s.KeyboardRoot(n.PitchClass(), target)
		}
	}
}
