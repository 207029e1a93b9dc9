package live

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"mt103perf/internal/runner"
	"mt103perf/internal/stats"
	"mt103perf/internal/tui/components"
	"mt103perf/internal/tui/styles"
)

// Model is the live view of a run in progress, fed by runner events.
type Model struct {
	Target   string
	Progress progress.Model
	Latency  components.Sparkline

	Scenario  stats.Scenario
	Completed int
	Total     int
	OK        int
	Failed    int
	LastError string

	StartTime time.Time
	Width     int
}

func NewModel(target string, total int) Model {
	return Model{
		Target:    target,
		Total:     total,
		Progress:  progress.New(progress.WithDefaultGradient()),
		Latency:   components.NewSparkline(40, "Latency (ms)", styles.Warn),
		StartTime: time.Now(),
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case runner.Event:
		m.Scenario = msg.Scenario
		if msg.Completed > m.Completed {
			m.Completed = msg.Completed
		}
		if msg.Total > 0 {
			m.Total = msg.Total
		}
		if msg.Success {
			m.OK++
			m.Latency.Add(msg.Millis)
		} else {
			m.Failed++
			m.LastError = fmt.Sprintf("%s #%d: %s", msg.Scenario, msg.Seq, msg.Error)
		}
		return m, m.Progress.SetPercent(m.Percent())

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Progress.Width = max(msg.Width-4, 10)
		m.Latency.Width = max(msg.Width/2-4, 10)
		return m, nil

	case progress.FrameMsg:
		prog, cmd := m.Progress.Update(msg)
		m.Progress = prog.(progress.Model)
		return m, cmd
	}

	return m, nil
}

// Percent is the completed share of all probes in [0,1].
func (m Model) Percent() float64 {
	if m.Total <= 0 {
		return 0
	}
	return min(float64(m.Completed)/float64(m.Total), 1)
}

func (m Model) View() string {
	s := strings.Builder{}

	s.WriteString(styles.Title.Render("🚀 MT103 performance run"))
	s.WriteString("\n")
	s.WriteString(styles.Subtle.Render(fmt.Sprintf("Target: %s | Elapsed: %s",
		m.Target, time.Since(m.StartTime).Round(time.Second))))
	s.WriteString("\n\n")

	scenario := string(m.Scenario)
	if scenario == "" {
		scenario = "starting"
	}

	errStyle := styles.Active
	if m.Failed > 0 {
		errStyle = styles.Error
	}

	col1 := fmt.Sprintf("SCENARIO: %s\nDONE: %d/%d", scenario, m.Completed, m.Total)
	col2 := fmt.Sprintf("OK: %d\nFAIL: %s", m.OK, errStyle.Render(fmt.Sprintf("%d", m.Failed)))

	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		styles.Box.Render(col1),
		styles.Box.Render(col2),
		styles.Box.Render(m.Latency.View()),
	))
	s.WriteString("\n\n")

	if m.LastError != "" {
		s.WriteString(styles.Error.Render("last error: " + m.LastError))
		s.WriteString("\n\n")
	}

	s.WriteString(m.Progress.View())
	s.WriteString("\n")
	s.WriteString(styles.RenderKey("ctrl+c", "abort run"))

	return s.String()
}
