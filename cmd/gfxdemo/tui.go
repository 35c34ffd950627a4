package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gogpu/gfxcore"
)

const tuiFrameInterval = 16 * time.Millisecond

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB")).
			Width(18)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(tuiFrameInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// statsModel renders one frame per tick and shows channel occupancy.
type statsModel struct {
	demo    *demo
	bar     progress.Model
	stats   gfxcore.Stats
	err     error
	paused  bool
	started time.Time
}

func newStatsModel(d *demo) *statsModel {
	return &statsModel{
		demo:    d,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		stats:   d.engine.Stats(),
		started: time.Now(),
	}
}

func (m *statsModel) Init() tea.Cmd {
	return tick()
}

func (m *statsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case " ":
			m.paused = !m.paused
		}
		return m, nil

	case tea.WindowSizeMsg:
		w := msg.Width - 40
		if w < 10 {
			w = 10
		}
		if w > 60 {
			w = 60
		}
		m.bar.Width = w
		return m, nil

	case tickMsg:
		if m.err != nil {
			return m, nil
		}
		if m.paused {
			return m, tick()
		}
		if m.demo.done() {
			return m, tea.Quit
		}
		if err := m.demo.step(); err != nil {
			m.err = err
			return m, nil
		}
		m.stats = m.demo.engine.Stats()
		return m, tick()
	}
	return m, nil
}

func (m *statsModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("gfxcore"))
	b.WriteString(" ")
	b.WriteString(m.demo.dev.Info().String())
	b.WriteString("\n\n")

	s := m.stats
	row := func(label, value string) {
		b.WriteString(labelStyle.Render(label))
		b.WriteString(valueStyle.Render(value))
		b.WriteString("\n")
	}
	row("frames", fmt.Sprintf("%d / %d", s.FramesPresented, m.demo.cfg.Frames))
	row("serials", fmt.Sprintf("submitted %d, completed %d", s.SubmittedSerial, s.CompletedSerial))
	row("slot", fmt.Sprintf("%d of %d (%s)", s.Slot, m.demo.engine.Pipeline().FramesInFlight(), s.State))
	row("extent", s.Extent.String())
	if elapsed := time.Since(m.started).Seconds(); elapsed > 0 {
		row("rate", fmt.Sprintf("%.0f fps", float64(s.FramesPresented)/elapsed))
	}
	b.WriteString("\n")

	for _, ch := range s.Channels {
		pct := 0.0
		if ch.Capacity > 0 {
			pct = float64(ch.Live) / float64(ch.Capacity)
		}
		b.WriteString(labelStyle.Render(ch.Label))
		b.WriteString(m.bar.ViewAs(pct))
		fmt.Fprintf(&b, " %d/%d hw %d pending %d\n", ch.Live, ch.Capacity, ch.HighWaterMark, ch.Pending)
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("space pause • q quit"))
	return b.String()
}

func runTUI(d *demo) error {
	m := newStatsModel(d)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return m.err
}
