package midi

import (
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// MIDI message types
const (
	NoteOn    uint8 = 0x90
	NoteOff   uint8 = 0x80
	CC        uint8 = 0xB0
	Program   uint8 = 0xC0
	PitchBend uint8 = 0xE0
)

// ccAllNotesOff silences a channel.
const ccAllNotesOff = 123

// Event is one message due at a wall-clock time.
type Event struct {
	At       time.Time
	Type     uint8 // NoteOn, NoteOff, CC, Program, PitchBend
	Channel  uint8 // 0-15
	Note     uint8 // note, controller or program number
	Velocity uint8 // velocity or controller value
	Bend     int16
}

// Message encodes the event for the wire.
func (e Event) Message() gomidi.Message {
	switch e.Type {
	case NoteOn:
		return gomidi.NoteOn(e.Channel, e.Note, e.Velocity)
	case NoteOff:
		return gomidi.NoteOff(e.Channel, e.Note)
	case CC:
		return gomidi.ControlChange(e.Channel, e.Note, e.Velocity)
	case Program:
		return gomidi.ProgramChange(e.Channel, e.Note)
	case PitchBend:
		return gomidi.Pitchbend(e.Channel, e.Bend)
	}
	return nil
}
