package midi

import "go-drummer/instrument"

// Drum presets pick a General MIDI percussion note on channel 10.
var drumNotes = map[string]map[string]uint8{
	instrument.Kick:  {"deep": 35, "punchy": 36, "808": 36, "acoustic": 35},
	instrument.Snare: {"tight": 38, "fat": 40, "rim": 37, "clap": 39},
	instrument.Hihat: {"closed": 42, "open": 46, "shaker": 70, "ride": 51},
}

// Melodic presets pick a General MIDI program.
var programs = map[string]map[string]uint8{
	instrument.Bass:   {"finger": 33, "pick": 34, "sub": 38},
	instrument.Chords: {"piano": 0, "organ": 16},
	instrument.Melody: {"piano": 0, "organ": 16},
}

func isDrum(voice string) bool {
	_, ok := drumNotes[voice]
	return ok
}
