package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/phasesim/internal/experiment"
	"github.com/san-kum/phasesim/internal/sim"
)

const (
	width           = 60
	height          = 20
	historyCapacity = 4000
	statsWidth      = 44
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(statsWidth)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
)

// SampleMsg carries one committed sample.
type SampleMsg struct {
	T     float64
	Names []string
	Row   []float64
}

// EventMsg carries one applied event.
type EventMsg sim.EventRecord

// DoneMsg ends the run. Outcome is nil when Err is set.
type DoneMsg struct {
	Outcome *experiment.Outcome
	Err     error
}

type TickMsg time.Time

// Model is the live view of one scenario run. It only displays; the run
// itself happens elsewhere and reports through messages.
type Model struct {
	scenario string
	duration float64

	// xChan and yChan name the channels drawn as the trajectory.
	xChan, yChan string

	names   []string
	times   []float64
	columns map[string][]float64
	events  []sim.EventRecord

	charted int
	frozen  bool
	done    bool
	err     error
	outcome *experiment.Outcome

	canvas *Canvas
}

// NewModel creates a view for a run of the given scenario and length. The
// trajectory is drawn from xChan against yChan.
func NewModel(scenario string, duration float64, xChan, yChan string) Model {
	return Model{
		scenario: scenario,
		duration: duration,
		xChan:    xChan,
		yChan:    yChan,
		columns:  make(map[string][]float64),
		canvas:   NewCanvas(width, height),
	}
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			m.frozen = !m.frozen
		case "tab":
			if len(m.names) > 0 {
				m.charted = (m.charted + 1) % len(m.names)
			}
		}
	case SampleMsg:
		m.addSample(msg)
	case EventMsg:
		m.events = append(m.events, sim.EventRecord(msg))
	case DoneMsg:
		m.done = true
		m.err = msg.Err
		m.outcome = msg.Outcome
	case TickMsg:
		return m, tick()
	}
	return m, nil
}

func (m *Model) addSample(msg SampleMsg) {
	if m.names == nil {
		m.names = append([]string(nil), msg.Names...)
		m.charted = m.indexOf(m.yChan)
	}
	if len(m.times) >= historyCapacity {
		m.times = m.times[1:]
		for k, col := range m.columns {
			m.columns[k] = col[1:]
		}
	}
	m.times = append(m.times, msg.T)
	for i, name := range msg.Names {
		if i < len(msg.Row) {
			m.columns[name] = append(m.columns[name], msg.Row[i])
		}
	}
}

func (m *Model) indexOf(name string) int {
	for i, n := range m.names {
		if n == name {
			return i
		}
	}
	return 0
}

// Samples returns how many samples are held.
func (m Model) Samples() int { return len(m.times) }

// Charted returns the name of the charted channel.
func (m Model) Charted() string {
	if len(m.names) == 0 {
		return ""
	}
	return m.names[m.charted]
}

// Done reports whether the run has finished, and its error.
func (m Model) Done() (bool, error) { return m.done, m.err }

func (m Model) View() string {
	var s strings.Builder
	s.WriteString(HeaderStyle.Render(strings.ToUpper(m.scenario)) + "\n")
	s.WriteString(m.status() + "\n\n")

	t := 0.0
	if n := len(m.times); n > 0 {
		t = m.times[n-1]
	}
	if m.duration > 0 {
		s.WriteString(ProgressBar(t/m.duration, 30) + "\n")
	}
	s.WriteString(MetricLabel.Render("time") + MetricValue.Render(fmt.Sprintf("%.3fs", t)) + "\n")
	for _, name := range m.names {
		col := m.columns[name]
		if len(col) == 0 {
			continue
		}
		s.WriteString(MetricLabel.Render(name) + MetricValue.Render(fmt.Sprintf("%.4g", col[len(col)-1])) + "\n")
	}

	if len(m.events) > 0 {
		s.WriteString("\n" + Separator(30) + "\n")
		for _, ev := range m.events {
			style := EventName
			if !ev.Converged {
				style = SparkLow
			}
			s.WriteString(style.Render(fmt.Sprintf("%-12s t=%.4f", ev.Name, ev.Time)) + "\n")
		}
	}

	if m.outcome != nil {
		s.WriteString("\n" + Separator(30) + "\n")
		for _, k := range m.outcome.SummaryKeys() {
			s.WriteString(MetricLabel.Render(k) + MetricValue.Render(fmt.Sprintf("%.4g", m.outcome.Summary[k])) + "\n")
		}
	}
	if m.err != nil {
		s.WriteString("\n" + StatusFailed.Render(m.err.Error()) + "\n")
	}

	s.WriteString("\n" + KeyHint.Render("SP:Freeze TAB:Channel Q:Quit"))

	left := canvasStyle.Render(m.drawTrajectory())
	if chart := m.chart(); chart != "" {
		left = lipgloss.JoinVertical(lipgloss.Left, left, graphStyle.Render(chart))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, left, statsStyle.Render(s.String()))
}

func (m Model) status() string {
	switch {
	case m.err != nil:
		return StatusFailed.Render("FAILED")
	case m.done:
		return StatusDone.Render("DONE")
	case m.frozen:
		return StatusPaused.Render("FROZEN")
	default:
		return StatusRunning.Render("RUNNING")
	}
}

func (m Model) drawTrajectory() string {
	if m.frozen && !m.done {
		return m.canvas.String()
	}
	m.canvas.Clear()
	xs, ys := m.columns[m.xChan], m.columns[m.yChan]
	if len(xs) > 0 && len(ys) > 0 {
		m.canvas.DrawPath(xs, ys, FitFrame(xs, ys))
	}
	return m.canvas.String()
}

func (m Model) chart() string {
	name := m.Charted()
	col := m.columns[name]
	if len(col) < 2 {
		return ""
	}
	return asciigraph.Plot(col,
		asciigraph.Height(6),
		asciigraph.Width(width),
		asciigraph.Caption(name))
}
