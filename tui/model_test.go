package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"go-drummer/fretboard"
	"go-drummer/harmony"
	"go-drummer/instrument"
	"go-drummer/studio"
	"go-drummer/theme"
	"go-drummer/theory"
)

func newModel(t *testing.T) Model {
	t.Helper()
	s := studio.New(studio.Options{Backend: instrument.NewRecordingBackend(), Rand: harmony.NewRand(1)})
	t.Cleanup(func() { s.Close() })
	return NewModel(context.Background(), s, nil, theme.New(theme.DefaultPalette()), nil)
}

func press(m Model, msgs ...tea.KeyMsg) Model {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	space = tea.KeyMsg{Type: tea.KeySpace}
	tab   = tea.KeyMsg{Type: tea.KeyTab}
)

func TestCycle(t *testing.T) {
	ids := []string{"a", "b", "c"}
	tests := []struct {
		cur   string
		delta int
		want  string
	}{
		{"a", 1, "b"},
		{"c", 1, "a"},
		{"a", -1, "c"},
		{"", 1, "a"},
		{"", -1, "c"},
	}
	for _, tt := range tests {
		if got := cycle(ids, tt.cur, tt.delta); got != tt.want {
			t.Errorf("cycle(%q, %d) = %q, want %q", tt.cur, tt.delta, got, tt.want)
		}
	}
	if cycle(nil, "x", 1) != "x" {
		t.Error("empty list changed the selection")
	}
}

func TestSpaceStartsFocusedPlayer(t *testing.T) {
	m := press(newModel(t), space)
	if !m.snap.Drums.Playing || !m.snap.AudioReady {
		t.Fatalf("drums playing %v audio %v", m.snap.Drums.Playing, m.snap.AudioReady)
	}
	m = press(m, space)
	if m.snap.Drums.Playing {
		t.Error("second space did not stop the drums")
	}
}

func TestFocusSwitchesPanelKeys(t *testing.T) {
	m := newModel(t)
	if !m.keys.Genre.Enabled() || m.keys.Shape.Enabled() {
		t.Fatal("drum keys not active at start")
	}
	m = press(m, tab, tab)
	if m.focus != PanelBass || m.keys.Genre.Enabled() || !m.keys.Shape.Enabled() {
		t.Fatalf("focus %v", m.focus)
	}
	m = press(m, runes("]"))
	if m.snap.Bass.Scale == "" {
		t.Error("] on bass did not pick a scale")
	}
	m = press(m, runes("k"))
	if m.snap.Bass.Root != "F" || m.snap.Harmony.Key != "F" {
		t.Errorf("root up: bass %s harmony %s", m.snap.Bass.Root, m.snap.Harmony.Key)
	}
	m = press(m, tab)
	if m.focus != PanelDrums {
		t.Errorf("focus wrapped to %v", m.focus)
	}
}

func TestBassPlayWithoutScaleShowsStatus(t *testing.T) {
	m := press(newModel(t), tab, tab, space)
	if m.snap.Status == "" {
		t.Fatal("no status message")
	}
	if !strings.Contains(m.View(), m.snap.Status) {
		t.Error("status not drawn")
	}
}

func TestViewDrawsPanels(t *testing.T) {
	m := press(newModel(t), space)
	v := m.View()
	for _, want := range []string{"go-drummer", "Drums", "Harmony", "Bass", "kick", "PLAY"} {
		if !strings.Contains(v, want) {
			t.Errorf("view lacks %q", want)
		}
	}
	m = press(m, runes("q"))
	if m.View() != "" {
		t.Error("view after quit")
	}
}

func TestMeterDecays(t *testing.T) {
	mt := newMeter()
	mt.update(1)
	first := mt.level()
	for range 60 {
		mt.update(1)
	}
	if first <= 0.5 || mt.level() != 0 {
		t.Errorf("levels %.2f then %.2f", first, mt.level())
	}
}

func TestVolumeKeysFollowFocus(t *testing.T) {
	m := newModel(t)
	master := m.snap.Drums.Master
	m = press(m, runes(","))
	if m.snap.Drums.Master != master-10 {
		t.Errorf("drum master %d, want %d", m.snap.Drums.Master, master-10)
	}
	m = press(m, tab, runes(","))
	if m.snap.Harmony.Volume != harmony.DefaultVolume-10 {
		t.Errorf("harmony volume %d", m.snap.Harmony.Volume)
	}
	m = press(m, tab, runes("."))
	if m.snap.Bass.Volume != fretboard.DefaultVolume+10 {
		t.Errorf("bass volume %d", m.snap.Bass.Volume)
	}
}

func TestNeckCursorPlaysFret(t *testing.T) {
	right := tea.KeyMsg{Type: tea.KeyRight}
	left := tea.KeyMsg{Type: tea.KeyLeft}
	up := tea.KeyMsg{Type: tea.KeyUp}
	enter := tea.KeyMsg{Type: tea.KeyEnter}

	m := press(newModel(t), tab, tab, right, right, right, up, enter)
	if want := (theory.Position{String: theory.StringA, Fret: 3}); m.cursor != want {
		t.Fatalf("cursor %v, want %v", m.cursor, want)
	}
	if m.snap.Hits[instrument.Bass] != 1 {
		t.Errorf("bass hits %d, want 1", m.snap.Hits[instrument.Bass])
	}
	if st := m.snap.Bass.Cells[theory.StringA][3].State; st != fretboard.CellPlaying {
		t.Errorf("played fret drawn as %v", st)
	}

	m = press(m, left, left, left, left, left, up, up, up, up)
	if want := (theory.Position{String: theory.StringG, Fret: 0}); m.cursor != want {
		t.Errorf("cursor %v not clamped to %v", m.cursor, want)
	}
}
