package live

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"mt103perf/internal/runner"
	"mt103perf/internal/stats"
)

func TestModel_CountsEvents(t *testing.T) {
	m := NewModel("http://localhost:5000", 4)

	events := []runner.Event{
		{Scenario: stats.ScenarioHealth, Seq: 1, Success: true, Millis: 3, Completed: 1, Total: 4},
		{Scenario: stats.ScenarioPageLoad, Seq: 1, Success: true, Millis: 20, Completed: 2, Total: 4},
		{Scenario: stats.ScenarioPageLoad, Seq: 2, Success: false, Error: "HTTP 500", Completed: 3, Total: 4},
	}
	for _, ev := range events {
		m, _ = m.Update(ev)
	}

	assert.Equal(t, 2, m.OK)
	assert.Equal(t, 1, m.Failed)
	assert.Equal(t, 3, m.Completed)
	assert.Equal(t, stats.ScenarioPageLoad, m.Scenario)
	assert.Equal(t, "page_load #2: HTTP 500", m.LastError)
	assert.InDelta(t, 0.75, m.Percent(), 1e-9)
	assert.Len(t, m.Latency.Data, 2)
}

func TestModel_CompletedNeverRegresses(t *testing.T) {
	m := NewModel("x", 10)
	m, _ = m.Update(runner.Event{Scenario: stats.ScenarioConcurrent, Success: true, Completed: 7, Total: 10})
	m, _ = m.Update(runner.Event{Scenario: stats.ScenarioConcurrent, Success: true, Completed: 6, Total: 10})

	assert.Equal(t, 7, m.Completed)
}

func TestModel_PercentWithoutTotal(t *testing.T) {
	m := NewModel("x", 0)
	assert.Equal(t, 0.0, m.Percent())
}

func TestModel_View(t *testing.T) {
	m := NewModel("http://target", 2)
	m, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m, _ = m.Update(runner.Event{Scenario: stats.ScenarioAPICall, Seq: 1, Success: false, Error: "timeout", Completed: 1, Total: 2})

	out := m.View()
	assert.Contains(t, out, "http://target")
	assert.Contains(t, out, "api_call")
	assert.Contains(t, out, "DONE: 1/2")
	assert.True(t, strings.Contains(out, "last error: api_call #1: timeout"))
}
