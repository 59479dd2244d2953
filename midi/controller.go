package midi

import "go-drummer/theory"

// ControllerType identifies the kind of controller
type ControllerType int

const (
	ControllerUnknown ControllerType = iota
	ControllerKeyboard
)

// NoteEvent is sent when a note is played on a keyboard
type NoteEvent struct {
	Note     uint8
	Velocity uint8
	Channel  uint8
}

// PitchClass is the note name of the key pressed.
func (e NoteEvent) PitchClass() theory.PitchClass { return theory.Mod(int(e.Note)) }

// Controller is the interface for MIDI input devices
type Controller interface {
	ID() string
	Type() ControllerType
	NoteEvents() <-chan NoteEvent
	Close() error
}
