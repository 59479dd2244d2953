package midi

import (
	"context"
	"errors"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver
)

// scanTimeout bounds a port query; CoreMIDI can hang.
const scanTimeout = 3 * time.Second

// ErrScanTimeout is returned when the driver does not answer.
// Fix on macOS: sudo killall coreaudiod midiserver
var ErrScanTimeout = errors.New("midi port scan timed out")

// ErrPortGone is returned when a port vanished between scan and open.
var ErrPortGone = errors.New("midi port not found")

// ListPorts returns the input and output ports.
func ListPorts(ctx context.Context) ([]drivers.In, []drivers.Out, error) {
	type portsResult struct {
		ins  []drivers.In
		outs []drivers.Out
	}
	ch := make(chan portsResult, 1)
	go func() {
		ch <- portsResult{ins: gomidi.GetInPorts(), outs: gomidi.GetOutPorts()}
	}()

	ctx, cancel := context.WithTimeout(ctx, scanTimeout)
	defer cancel()
	select {
	case r := <-ch:
		return r.ins, r.outs, nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, nil, ErrScanTimeout
		}
		return nil, nil, ctx.Err()
	}
}

// PortNames lists input and output port names.
func PortNames(ctx context.Context) (ins, outs []string, err error) {
	in, out, err := ListPorts(ctx)
	if err != nil {
		return nil, nil, err
	}
	for _, p := range in {
		ins = append(ins, p.String())
	}
	for _, p := range out {
		outs = append(outs, p.String())
	}
	return ins, outs, nil
}
