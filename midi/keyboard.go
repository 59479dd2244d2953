package midi

import (
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// KeyboardController handles a standard MIDI keyboard
type KeyboardController struct {
	id       string
	stopFunc func()
	noteChan chan NoteEvent
}

// NewKeyboardController listens on inPort. Note-ons are dropped when the
// consumer falls behind.
func NewKeyboardController(id string, inPort drivers.In) (*KeyboardController, error) {
	kb := &KeyboardController{
		id:       id,
		noteChan: make(chan NoteEvent, 32),
	}
	if inPort == nil {
		return kb, nil
	}
	stop, err := gomidi.ListenTo(inPort, func(msg gomidi.Message, timestampms int32) {
		var channel, note, velocity uint8
		if msg.GetNoteOn(&channel, &note, &velocity) && velocity > 0 {
			kb.push(NoteEvent{Note: note, Velocity: velocity, Channel: channel})
		}
	})
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	kb.stopFunc = stop
	return kb, nil
}

func (kb *KeyboardController) push(e NoteEvent) {
	select {
	case kb.noteChan <- e:
	default:
	}
}

func (kb *KeyboardController) ID() string { return kb.id }

func (kb *KeyboardController) Type() ControllerType { return ControllerKeyboard }

func (kb *KeyboardController) NoteEvents() <-chan NoteEvent { return kb.noteChan }

func (kb *KeyboardController) Close() error {
	if kb.stopFunc != nil {
		kb.stopFunc()
	}
	close(kb.noteChan)
	return nil
}
