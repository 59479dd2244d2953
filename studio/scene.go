package studio

import (
	"context"

	"go-drummer/failure"
	"go-drummer/theory"
)

// Scene is a complete starting setup, used by the headless commands. Empty
// fields leave the player alone.
type Scene struct {
	Genre   string `json:"genre,omitempty"`
	Pattern string `json:"pattern,omitempty"`
	BPM     int    `json:"bpm,omitempty"`
	Key     string `json:"key,omitempty"`

	Progression string `json:"progression,omitempty"`
	Artist      string `json:"artist,omitempty"` // melody mode
	Instrument  string `json:"instrument,omitempty"`

	Scale      string `json:"scale,omitempty"`
	Groove     string `json:"groove,omitempty"`
	FollowSync bool   `json:"followSync,omitempty"` // bass follows harmony chords
}

// Start applies sc and starts every configured player on the same downbeat.
func (s *Studio) Start(ctx context.Context, sc Scene) error {
	var key theory.PitchClass
	if sc.Key != "" {
		pc, err := theory.ParsePitchClass(sc.Key)
		if err != nil {
			return s.Do(func() error { return failure.Invalid("key", sc.Key) })
		}
		key = pc
	}
	return s.Play(ctx, func() error {
		if sc.Genre != "" {
			if err := s.Drums.SelectGenre(sc.Genre); err != nil {
				return err
			}
		}
		if sc.Pattern != "" {
			if err := s.Drums.SelectPattern(sc.Pattern); err != nil {
				return err
			}
		}
		if sc.BPM > 0 {
			s.Drums.SetAutoMode(false)
			s.Drums.SetBPM(sc.BPM)
		}
		if sc.Key != "" {
			s.Harmony.SelectKey(key, false)
		}
		if err := s.Drums.Play(); err != nil {
			return err
		}

		if sc.Instrument != "" {
			if err := s.Harmony.SelectInstrument(sc.Instrument); err != nil {
				return err
			}
		}
		switch {
		case sc.Artist != "":
			if err := s.Harmony.SelectArtist(sc.Artist); err != nil {
				return err
			}
		case sc.Progression != "":
			if err := s.Harmony.SelectPattern(sc.Progression); err != nil {
				return err
			}
		}

		s.Bass.SetMelodySync(sc.FollowSync)
		switch {
		case sc.Groove != "":
			if err := s.Bass.SelectGroove(sc.Groove); err != nil {
				return err
			}
			return s.Bass.StartGroovePlay()
		case sc.Scale != "":
			if err := s.Bass.SelectScale(sc.Scale); err != nil {
				return err
			}
			return s.Bass.StartPlay()
		}
		return nil
	})
}
