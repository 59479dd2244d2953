package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// KeySection groups related key bindings
type KeySection struct {
	Title    string
	Bindings []key.Binding
}

// RenderKeyHelp formats key bindings in a friendly way. Disabled bindings
// are left out.
func RenderKeyHelp(title, keys lipgloss.Style, sections []KeySection) string {
	var lines []string
	for _, sec := range sections {
		if sec.Title != "" {
			lines = append(lines, title.Render(sec.Title))
		}
		for _, b := range sec.Bindings {
			if !b.Enabled() {
				continue
			}
			h := b.Help()
			lines = append(lines, fmt.Sprintf("  %s %s", keys.Render(fmt.Sprintf("%-10s", h.Key)), h.Desc))
		}
	}
	return strings.Join(lines, "\n")
}
