// Package tui is the terminal display. It draws studio snapshots and turns
// key presses into studio operations.
package tui

import (
	"context"
	"slices"
	"sort"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"go-drummer/harmony"
	"go-drummer/instrument"
	"go-drummer/midi"
	"go-drummer/studio"
	"go-drummer/theme"
	"go-drummer/theory"
)

type Model struct {
	Studio    *studio.Studio
	DeviceMgr *midi.DeviceManager // nil without keyboards
	Theme     *theme.Theme

	ctx       context.Context
	targets   map[string]string
	keys      keyMap
	help      help.Model
	focus     Panel
	cursor    theory.Position // fret picked on the bass neck
	meters    map[string]*meter
	snap      studio.Snapshot
	keyboards map[string]bool
	quitting  bool
	width     int
}

type UpdateMsg struct{}

type DeviceEventMsg midi.DeviceEvent

// NewModel builds the display. targets maps keyboard port names to the
// player they set the key of.
func NewModel(ctx context.Context, s *studio.Studio, deviceMgr *midi.DeviceManager, th *theme.Theme, targets map[string]string) Model {
	m := Model{
		Studio:    s,
		DeviceMgr: deviceMgr,
		Theme:     th,
		ctx:       ctx,
		targets:   targets,
		keys:      newKeyMap(),
		help:      help.New(),
		meters:    make(map[string]*meter, len(instrument.Voices)),
		keyboards: make(map[string]bool),
	}
	for _, v := range instrument.Voices {
		m.meters[v] = newMeter()
	}
	m.keys.focus(m.focus)
	m.help.Styles.ShortKey = th.Fg(th.Accent())
	m.help.Styles.ShortDesc = th.Fg(th.Muted())
	m.help.Styles.ShortSeparator = th.Fg(th.Surface())
	m.snap = s.Snapshot()
	return m
}

func ListenForUpdates(s *studio.Studio) tea.Cmd {
	return func() tea.Msg {
		<-s.Updates()
		return UpdateMsg{}
	}
}

func ListenForDevices(deviceMgr *midi.DeviceManager) tea.Cmd {
	if deviceMgr == nil {
		return nil
	}
	return func() tea.Msg {
		event, ok := <-deviceMgr.Events()
		if !ok {
			return nil
		}
		return DeviceEventMsg(event)
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		ListenForUpdates(m.Studio),
		ListenForDevices(m.DeviceMgr),
		frame(),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.quitting = true
			m.Studio.StopAll()
			return m, tea.Quit
		}
		m.handleKey(msg)
		m.snap = m.Studio.Snapshot()

	case UpdateMsg:
		m.snap = m.Studio.Snapshot()
		return m, ListenForUpdates(m.Studio)

	case frameMsg:
		hits := m.Studio.Snapshot().Hits
		for v, mt := range m.meters {
			mt.update(hits[v])
		}
		return m, frame()

	case DeviceEventMsg:
		event := midi.DeviceEvent(msg)
		switch event.Type {
		case midi.DeviceConnected:
			m.keyboards[event.ID] = true
			go m.Studio.FollowKeyboard(m.ctx, event.Controller, m.targets[event.ID])
		case midi.DeviceDisconnected:
			delete(m.keyboards, event.ID)
		}
		return m, ListenForDevices(m.DeviceMgr)
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) {
	s := m.Studio
	k := m.keys
	switch {
	case key.Matches(msg, k.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, k.Focus):
		m.focus = (m.focus + 1) % panelCount
		m.keys.focus(m.focus)
	case key.Matches(msg, k.Play):
		s.Play(m.ctx, m.togglePlay)
	case key.Matches(msg, k.StopAll):
		s.StopAll()
	case key.Matches(msg, k.TempoUp):
		s.Do(func() error { s.Drums.AdjustBPM(5); return nil })
	case key.Matches(msg, k.TempoDown):
		s.Do(func() error { s.Drums.AdjustBPM(-5); return nil })
	case key.Matches(msg, k.Italian):
		s.ToggleItalian()
	case key.Matches(msg, k.Next):
		m.step(1)
	case key.Matches(msg, k.Prev):
		m.step(-1)
	case key.Matches(msg, k.Up):
		m.transpose(1)
	case key.Matches(msg, k.Down):
		m.transpose(-1)
	case key.Matches(msg, k.VolUp):
		m.volume(10)
	case key.Matches(msg, k.VolDown):
		m.volume(-10)
	default:
		switch m.focus {
		case PanelDrums:
			m.drumsKey(msg)
		case PanelHarmony:
			m.harmonyKey(msg)
		case PanelBass:
			m.bassKey(msg)
		}
	}
}

func (m *Model) togglePlay() error {
	s := m.Studio
	switch m.focus {
	case PanelHarmony:
		return s.Harmony.TogglePlay()
	case PanelBass:
		return s.Bass.TogglePlay()
	}
	return s.Drums.TogglePlay()
}

// step moves the focused panel's main selection through its list.
func (m *Model) step(delta int) {
	s := m.Studio
	cat := s.Catalog()
	switch m.focus {
	case PanelDrums:
		ids := cat.PatternIDs()
		if g, ok := cat.Genre(m.snap.Drums.Genre); ok {
			ids = g.Patterns
		}
		s.Play(m.ctx, func() error { return s.Drums.SelectPattern(cycle(ids, m.snap.Drums.Pattern, delta)) })
	case PanelHarmony:
		ids := make([]string, len(cat.Progressions))
		for i, p := range cat.Progressions {
			ids[i] = p.ID
		}
		s.Play(m.ctx, func() error { return s.Harmony.SelectPattern(cycle(ids, m.snap.Harmony.Progression, delta)) })
	case PanelBass:
		ids := make([]string, len(cat.Scales))
		for i, sc := range cat.Scales {
			ids[i] = sc.ID
		}
		s.Do(func() error { return s.Bass.SelectScale(cycle(ids, m.snap.Bass.Scale, delta)) })
	}
}

// transpose moves the key of the focused player by a semitone; the other
// follows over the bus.
func (m *Model) transpose(delta int) {
	s := m.Studio
	s.Do(func() error {
		if m.focus == PanelBass {
			s.Bass.SelectRoot(s.Bass.Root().Add(delta), false)
		} else {
			s.Harmony.SelectKey(s.Harmony.Key().Add(delta), false)
		}
		return nil
	})
}

// volume nudges the focused player's level: the drum master, the chord and
// melody voices, or the bass.
func (m *Model) volume(delta int) {
	s := m.Studio
	s.Do(func() error {
		switch m.focus {
		case PanelHarmony:
			s.Harmony.SetVolume(m.snap.Harmony.Volume + delta)
		case PanelBass:
			s.Bass.SetBassVolume(m.snap.Bass.Volume + delta)
		default:
			s.Drums.SetMasterVolume(m.snap.Drums.Master + delta)
		}
		return nil
	})
}

// moveCursor walks the neck cursor, stopping at the edges.
func (m *Model) moveCursor(dString, dFret int) {
	m.cursor.String = theory.String(min(max(int(m.cursor.String)+dString, int(theory.StringE)), int(theory.StringG)))
	m.cursor.Fret = min(max(m.cursor.Fret+dFret, 0), theory.MaxFret)
}

func (m *Model) drumsKey(msg tea.KeyMsg) {
	s := m.Studio
	switch {
	case key.Matches(msg, m.keys.Genre):
		ids := make([]string, len(s.Catalog().Genres))
		for i, g := range s.Catalog().Genres {
			ids[i] = g.ID
		}
		s.Do(func() error { return s.Drums.SelectGenre(cycle(ids, m.snap.Drums.Genre, 1)) })
	case key.Matches(msg, m.keys.Auto):
		s.Do(func() error { s.Drums.SetAutoMode(!s.Drums.Auto()); return nil })
	}
}

func (m *Model) harmonyKey(msg tea.KeyMsg) {
	s := m.Studio
	switch {
	case key.Matches(msg, m.keys.Mode):
		next := harmony.ModeMelody
		if m.snap.Harmony.Mode == harmony.ModeMelody {
			next = harmony.ModeChords
		}
		s.Do(func() error { return s.Harmony.SelectMode(next) })
	case key.Matches(msg, m.keys.Artist):
		ids := make([]string, len(s.Catalog().Artists))
		for i, a := range s.Catalog().Artists {
			ids[i] = a.ID
		}
		s.Play(m.ctx, func() error { return s.Harmony.SelectArtist(cycle(ids, m.snap.Harmony.Artist, 1)) })
	case key.Matches(msg, m.keys.NewMelody):
		s.Play(m.ctx, s.Harmony.NextMelody)
	case key.Matches(msg, m.keys.Save):
		s.Do(func() error { _, err := s.Harmony.SaveMelody(); return err })
	case key.Matches(msg, m.keys.Octave):
		s.Do(func() error {
			if s.Harmony.Octave() == harmony.MaxOctave {
				s.Harmony.AdjustOctave(harmony.MinOctave - harmony.MaxOctave)
			} else {
				s.Harmony.AdjustOctave(1)
			}
			return nil
		})
	case key.Matches(msg, m.keys.Instrument):
		s.Do(func() error {
			return s.Harmony.SelectInstrument(cycle(harmony.Instruments, m.snap.Harmony.Instrument, 1))
		})
	}
}

func (m *Model) bassKey(msg tea.KeyMsg) {
	s := m.Studio
	b := s.Bass
	switch {
	case key.Matches(msg, m.keys.Shape):
		s.Do(func() error { b.ToggleShape(); return nil })
	case key.Matches(msg, m.keys.Arpeggio):
		s.Do(func() error { b.ToggleArpeggio(); return nil })
	case key.Matches(msg, m.keys.Intervals):
		s.Do(func() error { b.ToggleIntervals(); return nil })
	case key.Matches(msg, m.keys.GrooveMode):
		s.Do(func() error { b.ToggleGrooveMode(); return nil })
	case key.Matches(msg, m.keys.Groove):
		s.Do(func() error {
			var ids []string
			for _, g := range b.Grooves() {
				ids = append(ids, g.ID)
			}
			if len(ids) == 0 {
				return nil
			}
			return b.SelectGroove(cycle(ids, m.snap.Bass.Groove, 1))
		})
	case key.Matches(msg, m.keys.Random):
		s.Do(b.RandomGroove)
	case key.Matches(msg, m.keys.Category):
		ids := []string{""}
		for _, c := range s.Catalog().Categories {
			ids = append(ids, c.ID)
		}
		s.Do(func() error { return b.FilterCategory(cycle(ids, m.snap.Bass.Category, 1)) })
	case key.Matches(msg, m.keys.Sync):
		s.Do(func() error { b.SetMelodySync(!b.IsFollowingHarmony()); return nil })
	case key.Matches(msg, m.keys.FretLeft):
		m.moveCursor(0, -1)
	case key.Matches(msg, m.keys.FretRight):
		m.moveCursor(0, 1)
	case key.Matches(msg, m.keys.StringUp):
		m.moveCursor(1, 0)
	case key.Matches(msg, m.keys.StringDown):
		m.moveCursor(-1, 0)
	case key.Matches(msg, m.keys.PlayNote):
		cur := m.cursor
		s.Play(m.ctx, func() error { return b.PlayNote(cur) })
	case key.Matches(msg, m.keys.Preset):
		presets := make([]string, 0)
		for name := range s.Catalog().Voices.Family(instrument.Bass) {
			presets = append(presets, name)
		}
		sort.Strings(presets)
		s.Do(func() error { return b.SetBassPreset(cycle(presets, m.snap.Bass.Preset, 1)) })
	}
}

// cycle returns the id delta places after cur, wrapping; an unknown cur
// starts at either end.
func cycle(ids []string, cur string, delta int) string {
	if len(ids) == 0 {
		return cur
	}
	i := slices.Index(ids, cur)
	if i < 0 {
		if delta < 0 {
			return ids[len(ids)-1]
		}
		return ids[0]
	}
	n := len(ids)
	return ids[((i+delta)%n+n)%n]
}
