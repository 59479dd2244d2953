package cmd

import (
	"github.com/spf13/pflag"

	"go-drummer/studio"
)

// sceneFlags registers the flags that describe a studio.Scene.
func sceneFlags(f *pflag.FlagSet, sc *studio.Scene) {
	f.StringVarP(&sc.Genre, "genre", "g", "", "drum genre")
	f.StringVarP(&sc.Pattern, "pattern", "p", "", "drum pattern")
	f.IntVarP(&sc.BPM, "bpm", "b", 0, "tempo (40-220); default from the pattern")
	f.StringVarP(&sc.Key, "key", "k", "", "key for chords and bass (C, F#, Sol...)")
	f.StringVar(&sc.Progression, "progression", "", "chord progression")
	f.StringVar(&sc.Artist, "artist", "", "artist style; plays a generated melody")
	f.StringVar(&sc.Instrument, "instrument", "", "chord and melody sound (piano, organ)")
	f.StringVar(&sc.Scale, "scale", "", "bass scale autoplay")
	f.StringVar(&sc.Groove, "groove", "", "bass groove")
	f.BoolVar(&sc.FollowSync, "follow", false, "bass follows the chords")
}
