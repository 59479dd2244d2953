package midi

import (
	"fmt"
	"io"
	"math"
	"slices"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"go-drummer/instrument"
)

// TicksPerQuarter is the file resolution.
const TicksPerQuarter = 960

const exportVelocity = 100

// Track is one voice's recorded hits.
type Track struct {
	Name    string
	Channel uint8
	Hits    []instrument.Hit
}

type timedMsg struct {
	tick uint32
	off  bool
	msg  gomidi.Message
}

// WriteSMF writes a format 1 file: a tempo track, then one track per voice.
// Hit times are taken relative to start at a constant bpm.
func WriteSMF(w io.Writer, start time.Time, bpm int, num, denom uint8, tracks []Track) error {
	sm := smf.New()
	sm.TimeFormat = smf.MetricTicks(TicksPerQuarter)

	var track0 smf.Track
	track0.Add(0, smf.MetaMeter(num, denom))
	track0.Add(0, smf.MetaTempo(float64(bpm)))
	track0.Close(0)
	if err := sm.Add(track0); err != nil {
		return fmt.Errorf("add tempo track: %w", err)
	}

	toTick := func(t time.Time) uint32 {
		q := t.Sub(start).Minutes() * float64(bpm)
		return uint32(math.Max(0, math.Round(q*TicksPerQuarter)))
	}

	for _, tr := range tracks {
		msgs := make([]timedMsg, 0, 2*len(tr.Hits))
		for _, h := range tr.Hits {
			on := toTick(h.At)
			off := toTick(h.At.Add(h.Dur))
			if off <= on {
				off = on + 1
			}
			msgs = append(msgs,
				timedMsg{tick: on, msg: gomidi.NoteOn(tr.Channel, h.Note, exportVelocity)},
				timedMsg{tick: off, off: true, msg: gomidi.NoteOff(tr.Channel, h.Note)},
			)
		}
		// note-offs sort before note-ons on the same tick
		slices.SortStableFunc(msgs, func(a, b timedMsg) int {
			if a.tick != b.tick {
				return int(a.tick) - int(b.tick)
			}
			switch {
			case a.off && !b.off:
				return -1
			case b.off && !a.off:
				return 1
			}
			return 0
		})

		var track smf.Track
		track.Add(0, smf.MetaTrackSequenceName(tr.Name))
		var last uint32
		for _, m := range msgs {
			track.Add(m.tick-last, m.msg)
			last = m.tick
		}
		track.Close(0)
		if err := sm.Add(track); err != nil {
			return fmt.Errorf("add track %s: %w", tr.Name, err)
		}
	}

	if _, err := sm.WriteTo(w); err != nil {
		return fmt.Errorf("write midi file: %w", err)
	}
	return nil
}
