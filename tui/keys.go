package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"go-drummer/widgets"
)

// Panel is the player the panel keys act on.
type Panel int

const (
	PanelDrums Panel = iota
	PanelHarmony
	PanelBass
	panelCount
)

func (p Panel) String() string {
	switch p {
	case PanelDrums:
		return "Drums"
	case PanelHarmony:
		return "Harmony"
	case PanelBass:
		return "Bass"
	}
	return "?"
}

func Key(help string, keyboardKey ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keyboardKey...), key.WithHelp(keyboardKey[0], help))
}

type keyMap struct {
	// global
	Quit      key.Binding
	Play      key.Binding
	Focus     key.Binding
	StopAll   key.Binding
	TempoUp   key.Binding
	TempoDown key.Binding
	Italian   key.Binding
	Help      key.Binding

	// shared by the panels, meaning depends on focus
	Next key.Binding
	Prev key.Binding
	Up      key.Binding
	Down    key.Binding
	VolUp   key.Binding
	VolDown key.Binding

	// drums
	Genre key.Binding
	Auto  key.Binding

	// harmony
	Mode       key.Binding
	Artist     key.Binding
	NewMelody  key.Binding
	Save       key.Binding
	Octave     key.Binding
	Instrument key.Binding

	// bass
	Shape      key.Binding
	Arpeggio   key.Binding
	Intervals  key.Binding
	GrooveMode key.Binding
	Groove     key.Binding
	Random     key.Binding
	Category   key.Binding
	Sync       key.Binding
	Preset     key.Binding
	FretLeft   key.Binding
	FretRight  key.Binding
	StringUp   key.Binding
	StringDown key.Binding
	PlayNote   key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Quit:      Key("quit", "q", "ctrl+c"),
		Play:      Key("play/stop", "space", " "),
		Focus:     Key("next panel", "tab"),
		StopAll:   Key("stop all", "esc"),
		TempoUp:   Key("tempo +5", "+", "="),
		TempoDown: Key("tempo -5", "-", "_"),
		Italian:   Key("do re mi", "i"),
		Help:      Key("help", "?"),

		Next: Key("next", "]"),
		Prev: Key("previous", "["),
		Up:   Key("key up", "k"),
		Down: Key("key down", "K"),

		VolUp:   Key("volume +10", ".", ">"),
		VolDown: Key("volume -10", ",", "<"),

		Genre: Key("genre", "g"),
		Auto:  Key("auto sound", "a"),

		Mode:       Key("chords/melody", "m"),
		Artist:     Key("artist", "r"),
		NewMelody:  Key("new melody", "n"),
		Save:       Key("save melody", "w"),
		Octave:     Key("octave", "o"),
		Instrument: Key("instrument", "t"),

		Shape:      Key("shape box", "x"),
		Arpeggio:   Key("arpeggio", "p"),
		Intervals:  Key("intervals", "l"),
		GrooveMode: Key("groove mode", "f"),
		Groove:     Key("next groove", "n"),
		Random:     Key("random groove", "z"),
		Category:   Key("category", "c"),
		Sync:       Key("follow chords", "y"),
		Preset:     Key("bass sound", "t"),
		FretLeft:   Key("fret left", "left"),
		FretRight:  Key("fret right", "right"),
		StringUp:   Key("string up", "up"),
		StringDown: Key("string down", "down"),
		PlayNote:   Key("play fret", "enter"),
	}
}

// focus enables the bindings of one panel. Keys shared between panels are
// only matched when enabled.
func (k *keyMap) focus(p Panel) {
	for _, b := range k.panel(PanelDrums) {
		b.SetEnabled(p == PanelDrums)
	}
	for _, b := range k.panel(PanelHarmony) {
		b.SetEnabled(p == PanelHarmony)
	}
	for _, b := range k.panel(PanelBass) {
		b.SetEnabled(p == PanelBass)
	}
	k.Next.SetHelp("]", map[Panel]string{PanelDrums: "pattern", PanelHarmony: "progression", PanelBass: "scale"}[p])
	k.Up.SetEnabled(p != PanelDrums)
	k.Down.SetEnabled(p != PanelDrums)
}

func (k *keyMap) panel(p Panel) []*key.Binding {
	switch p {
	case PanelDrums:
		return []*key.Binding{&k.Genre, &k.Auto}
	case PanelHarmony:
		return []*key.Binding{&k.Mode, &k.Artist, &k.NewMelody, &k.Save, &k.Octave, &k.Instrument}
	case PanelBass:
		return []*key.Binding{&k.Shape, &k.Arpeggio, &k.Intervals, &k.GrooveMode, &k.Groove,
			&k.Random, &k.Category, &k.Sync, &k.Preset, &k.FretLeft, &k.FretRight, &k.StringUp,
			&k.StringDown, &k.PlayNote}
	}
	return nil
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Play, k.Focus, k.Next, k.TempoUp, k.TempoDown, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Play, k.Focus, k.StopAll, k.TempoUp, k.TempoDown, k.Italian, k.Quit},
		{k.Next, k.Prev, k.Up, k.Down, k.VolUp, k.VolDown},
		{k.Genre, k.Auto, k.Mode, k.Artist, k.NewMelody, k.Save, k.Octave, k.Instrument},
		{k.Shape, k.Arpeggio, k.Intervals, k.GrooveMode, k.Groove, k.Random, k.Category, k.Sync, k.Preset},
		{k.FretLeft, k.FretRight, k.StringUp, k.StringDown, k.PlayNote},
	}
}

// sections groups the enabled bindings for the full help page.
func (k keyMap) sections() []widgets.KeySection {
	return []widgets.KeySection{
		{Title: "Transport", Bindings: []key.Binding{k.Play, k.Focus, k.StopAll, k.TempoUp, k.TempoDown, k.Italian, k.Quit}},
		{Title: "Select", Bindings: []key.Binding{k.Next, k.Prev, k.Up, k.Down, k.VolUp, k.VolDown}},
		{Title: "Drums", Bindings: []key.Binding{k.Genre, k.Auto}},
		{Title: "Harmony", Bindings: []key.Binding{k.Mode, k.Artist, k.NewMelody, k.Save, k.Octave, k.Instrument}},
		{Title: "Bass", Bindings: []key.Binding{k.Shape, k.Arpeggio, k.Intervals, k.GrooveMode, k.Groove, k.Random, k.Category, k.Sync, k.Preset}},
		{Title: "Neck", Bindings: []key.Binding{k.FretLeft, k.FretRight, k.StringUp, k.StringDown, k.PlayNote}},
	}
}
