package widgets

import (
	"strings"

	"go-drummer/theme"
)

// RenderMeter draws a horizontal bar for level 0..1.
func RenderMeter(th *theme.Theme, label string, level float64, width int) string {
	level = max(0, min(1, level))
	n := int(level*float64(width) + 0.5)
	color := th.Accent()
	if level > 0.8 {
		color = th.Success()
	}
	return th.Fg(th.FG()).Width(7).Render(label) +
		th.Fg(color).Render(strings.Repeat(string(th.Symbols.Meter), n)) +
		th.Fg(th.Surface()).Render(strings.Repeat(string(th.Symbols.MeterBG), width-n))
}
