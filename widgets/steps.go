// Package widgets renders the pieces of the display: drum step rows, the
// bass neck, level meters and key help.
package widgets

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-drummer/theme"
)

// RenderStepRow draws one drum voice for a bar. playhead is the step being
// played, or -1. beat groups steps with a space.
func RenderStepRow(th *theme.Theme, label string, row []int, playhead, beat int) string {
	labelStyle := th.Fg(th.FG()).Width(6)
	var out strings.Builder
	out.WriteString(labelStyle.Render(label))
	for i, v := range row {
		if beat > 0 && i > 0 && i%beat == 0 {
			out.WriteByte(' ')
		}
		out.WriteString(stepCell(th, v > 0, i == playhead))
	}
	return out.String()
}

func stepCell(th *theme.Theme, hit, playhead bool) string {
	s := th.Symbols
	switch {
	case hit && playhead:
		return th.Fg(th.Success()).Render(string(s.StepFiring))
	case playhead:
		return th.Fg(th.Cursor()).Render(string(s.StepPlayhead))
	case hit:
		return th.Fg(th.Accent()).Render(string(s.StepActive))
	}
	return th.Fg(th.Muted()).Render(string(s.StepEmpty))
}

// RenderBeatCounter draws 1..beats with the current beat highlighted.
func RenderBeatCounter(th *theme.Theme, beat, beats int) string {
	parts := make([]string, beats)
	for i := range parts {
		st := th.Fg(th.Muted())
		if i+1 == beat {
			st = th.Fg(th.Success()).Bold(true)
		}
		parts[i] = st.Render(string(rune('1' + i%9)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, strings.Join(parts, " "))
}
