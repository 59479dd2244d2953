package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-drummer/harmony"
	"go-drummer/instrument"
	"go-drummer/theory"
	"go-drummer/widgets"
)

const meterWidth = 12

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	th := m.Theme
	snap := m.snap

	headerStyle := th.Fg(th.Accent()).Bold(true)
	dimStyle := th.Fg(th.Muted())

	playState := "STOP"
	if snap.Running {
		playState = "PLAY"
	}
	audio := ""
	if !snap.AudioReady {
		audio = dimStyle.Render("  audio starts on play")
	}
	kbd := ""
	if n := len(m.keyboards); n > 0 {
		kbd = fmt.Sprintf("  kbd:%d", n)
	}
	header := headerStyle.Render(fmt.Sprintf("go-drummer  %s  %3dbpm%s", playState, snap.Drums.BPM, kbd)) + audio

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(m.panel(PanelDrums, m.drumsView()))
	out.WriteString("\n")
	out.WriteString(m.panel(PanelHarmony, m.harmonyView()))
	out.WriteString("\n")
	out.WriteString(m.panel(PanelBass, m.bassView()))
	out.WriteString("\n")
	out.WriteString(m.metersView())
	out.WriteString("\n\n")
	if snap.Status != "" {
		out.WriteString(th.Fg(th.Warning()).Render(snap.Status))
		out.WriteString("\n")
	}
	if m.help.ShowAll {
		out.WriteString(widgets.RenderKeyHelp(th.Fg(th.FG()).Bold(true), th.Fg(th.Accent()), m.keys.sections()))
	} else {
		out.WriteString(m.help.View(m.keys))
	}
	return out.String()
}

func (m Model) panel(p Panel, body string) string {
	th := m.Theme
	title := th.Fg(th.Muted()).Render(p.String())
	border := th.Surface()
	if p == m.focus {
		title = th.Fg(th.Accent()).Bold(true).Render(p.String())
		border = th.Accent()
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1)
	return title + "\n" + box.Render(body)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func (m Model) drumsView() string {
	th := m.Theme
	d := m.snap.Drums
	dim := th.Fg(th.Muted())

	name := d.PatternName
	if name == "" {
		name = "no pattern"
	}
	info := fmt.Sprintf("%s / %s  %s  bar %d/%d  auto:%s", d.Genre, name, d.TimeSignature, d.Bar+1, max(d.Bars, 1), onOff(d.Auto))
	lines := []string{th.Fg(th.FG()).Render(info)}
	if d.StepsPerBar > 0 {
		beat := d.StepsPerBar / max(d.BeatsPerBar, 1)
		lines = append(lines,
			widgets.RenderStepRow(th, "hihat", d.Hihat, d.StepInBar, beat),
			widgets.RenderStepRow(th, "snare", d.Snare, d.StepInBar, beat),
			widgets.RenderStepRow(th, "kick", d.Kick, d.StepInBar, beat),
			strings.Repeat(" ", 6)+widgets.RenderBeatCounter(th, d.Beat, d.BeatsPerBar),
		)
	} else {
		lines = append(lines, dim.Render("press ] to pick a pattern"))
	}
	return strings.Join(lines, "\n")
}

func (m Model) harmonyView() string {
	th := m.Theme
	h := m.snap.Harmony
	fg := th.Fg(th.FG())

	source := h.ProgressionName
	if h.Mode == harmony.ModeMelody && h.ArtistName != "" {
		source = h.ArtistName + " / " + h.ProgressionName
	}
	if source == "" {
		source = "no progression"
	}
	info := fmt.Sprintf("%s in %s  %s  oct %d  %s  vol %d", h.Mode, h.Key, source, h.Octave, h.Instrument, h.Volume)
	big := th.Fg(th.Success()).Bold(true).Render(h.Display)
	detail := th.Fg(th.Muted()).Render(h.Detail)
	saved := ""
	if h.Saved > 0 {
		saved = th.Fg(th.Muted()).Render(fmt.Sprintf("  saved %d", h.Saved))
	}
	return fg.Render(info) + "\n" + big + "  " + detail + saved
}

func (m Model) bassView() string {
	th := m.Theme
	b := m.snap.Bass
	fg := th.Fg(th.FG())
	dim := th.Fg(th.Muted())

	scale := b.ScaleName
	if scale == "" {
		scale = "no scale"
	}
	info := fmt.Sprintf("%s %s  shape:%s arp:%s intervals:%s sync:%s  %s  vol %d",
		b.Root, scale, onOff(b.Shape), onOff(b.Arpeggio), onOff(b.Intervals), onOff(b.MelodySync), b.Preset, b.Volume)
	lines := []string{fg.Render(info)}
	if b.GrooveMode {
		cat := b.Category
		if cat == "" {
			cat = "all"
		}
		groove := b.GrooveName
		if groove == "" {
			groove = "no groove"
		}
		line := fmt.Sprintf("groove [%s] %s", cat, groove)
		if b.ChordRoot != "" {
			line += "  chord " + b.ChordRoot
		}
		lines = append(lines, fg.Render(line))
		if len(b.GrooveSteps) > 0 {
			lines = append(lines, m.grooveSteps())
		}
	}
	var cursor *theory.Position
	if m.focus == PanelBass {
		cursor = &m.cursor
	}
	lines = append(lines, widgets.RenderFretboard(th, b.Cells, cursor))
	if !b.GrooveMode && b.Scale == "" {
		lines = append(lines, dim.Render("press ] to pick a scale"))
	}
	return strings.Join(lines, "\n")
}

func (m Model) grooveSteps() string {
	th := m.Theme
	b := m.snap.Bass
	parts := make([]string, len(b.GrooveSteps))
	for i, st := range b.GrooveSteps {
		style := th.Fg(th.Muted())
		if st != "." {
			style = th.Fg(th.Cursor())
		}
		if b.PlayingGroove && i == b.GrooveStep {
			style = th.Fg(th.Success()).Bold(true)
		}
		parts[i] = style.Render(fmt.Sprintf("%-3s", st))
	}
	return strings.Join(parts, "")
}

func (m Model) metersView() string {
	var rows []string
	for _, v := range instrument.Voices {
		rows = append(rows, widgets.RenderMeter(m.Theme, v, m.meters[v].level(), meterWidth))
	}
	left := strings.Join(rows[:3], "\n")
	right := strings.Join(rows[3:], "\n")
	return lipgloss.JoinHorizontal(lipgloss.Top, left, "   ", right)
}
