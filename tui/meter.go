package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
)

const meterFPS = 30

type frameMsg time.Time

func frame() tea.Cmd {
	return tea.Tick(time.Second/meterFPS, func(t time.Time) tea.Msg { return frameMsg(t) })
}

// meter jumps to full on every new hit and springs back to zero.
type meter struct {
	spring harmonica.Spring
	pos    float64
	vel    float64
	hits   uint64
}

func newMeter() *meter {
	return &meter{spring: harmonica.NewSpring(harmonica.FPS(meterFPS), 6.0, 1.0)}
}

func (m *meter) update(hits uint64) {
	if hits != m.hits {
		m.hits = hits
		m.pos = 1
	}
	m.pos, m.vel = m.spring.Update(m.pos, m.vel, 0)
	if m.pos < 0.01 {
		m.pos, m.vel = 0, 0
	}
}

func (m *meter) level() float64 { return m.pos }
