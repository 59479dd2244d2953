package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-drummer/fretboard"
	"go-drummer/theme"
	"go-drummer/theory"
)

const cellWidth = 4

// RenderFretboard draws the neck with the high string on top, like tab.
// cursor, when not nil, is highlighted.
func RenderFretboard(th *theme.Theme, cells [4][fretboard.Frets]fretboard.Cell, cursor *theory.Position) string {
	var lines []string
	lines = append(lines, fretNumbers(th))
	for i := len(theory.Strings) - 1; i >= 0; i-- {
		s := theory.Strings[i]
		var line strings.Builder
		line.WriteString(th.Fg(th.FG()).Width(2).Render(s.String()))
		for f, c := range cells[s] {
			at := cursor != nil && cursor.String == s && cursor.Fret == f
			line.WriteString(renderCell(th, c, at))
			if f == 0 {
				line.WriteString(th.Fg(th.Muted()).Render(string(th.Symbols.Nut)))
			}
		}
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}

func fretNumbers(th *theme.Theme) string {
	var b strings.Builder
	b.WriteString("  ")
	for f := range fretboard.Frets {
		label := ""
		switch f {
		case 0, 3, 5, 7, 9, 12:
			label = fmt.Sprint(f)
		}
		b.WriteString(lipgloss.PlaceHorizontal(cellWidth, lipgloss.Center, label))
		if f == 0 {
			b.WriteByte(' ')
		}
	}
	return th.Fg(th.Muted()).Render(b.String())
}

func renderCell(th *theme.Theme, c fretboard.Cell, cursor bool) string {
	if c.State == fretboard.CellNone {
		st := th.Fg(th.Surface())
		if cursor {
			st = st.Background(th.Cursor())
		}
		return st.Render(strings.Repeat(string(th.Symbols.Fret), cellWidth))
	}
	st := lipgloss.NewStyle().Width(cellWidth).Align(lipgloss.Center)
	if cursor {
		st = st.Underline(true)
	}
	switch c.State {
	case fretboard.CellPlaying:
		st = st.Foreground(th.BG()).Background(th.Success()).Bold(true)
	case fretboard.CellRoot:
		st = st.Foreground(th.Active()).Bold(true)
	case fretboard.CellChord:
		st = st.Foreground(th.Warning())
	case fretboard.CellGroove:
		st = st.Foreground(th.Cursor())
	case fretboard.CellDim:
		st = st.Foreground(th.Muted())
	default:
		st = st.Foreground(th.Accent())
	}
	return st.Render(c.Label)
}
