package harmony

// Snapshot is what the display draws for the harmony engine.
type Snapshot struct {
	Mode            Mode
	Key             string
	Octave          int
	Progression     string
	ProgressionName string
	Artist          string
	ArtistName      string
	Instrument      string
	Volume          int
	Playing         bool
	Step            int
	Steps           int
	Display         string // chord or note name
	Detail          string // chord tones or octave
	ChordRoot       string
	MelodyNotes     int
	Saved           int
	Italian         bool
}

// Snapshot copies the display state.
func (e *Engine) Snapshot() Snapshot {
	s := Snapshot{
		Mode:       e.mode,
		Key:        e.key.Name(e.italian),
		Octave:     e.octave,
		Instrument: e.instrument,
		Volume:     e.volume,
		Playing:    e.playing,
		Step:       -1,
		Display:    e.display,
		Detail:     e.detail,
		Italian:    e.italian,
	}
	if e.progression != nil {
		s.Progression, s.ProgressionName = e.progression.ID, e.progression.Name
	}
	if e.artist != nil {
		s.Artist, s.ArtistName = e.artist.ID, e.artist.Name
	}
	if e.playing {
		s.Step = e.seq.Step()
		s.Steps = len(e.slots)
	}
	if e.hasChord {
		s.ChordRoot = e.chordRoot.Name(e.italian)
	}
	if e.melody != nil {
		s.MelodyNotes = len(e.melody.Notes)
	}
	if e.saved != nil {
		s.Saved = len(e.saved.Items())
	}
	return s
}
