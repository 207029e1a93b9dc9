package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"mt103perf/internal/runner"
	"mt103perf/internal/stats"
	"mt103perf/internal/tui/live"
)

// DoneMsg is delivered once the run has finished.
type DoneMsg struct{}

// Model hosts the live view for the duration of one run.
type Model struct {
	Live     live.Model
	updates  runner.EventChan
	finished <-chan struct{}
	Done     bool
	Aborted  bool
}

func NewModel(r *runner.Runner, updates runner.EventChan, finished <-chan struct{}) Model {
	return Model{
		Live:     live.NewModel(r.Cfg.BaseURL, r.Cfg.TotalProbes()),
		updates:  updates,
		finished: finished,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForEvent(m.updates), waitForDone(m.finished))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.Aborted = true
			return m, tea.Quit
		}
		return m, nil

	case runner.Event:
		var cmd tea.Cmd
		m.Live, cmd = m.Live.Update(msg)
		return m, tea.Batch(cmd, waitForEvent(m.updates))

	case DoneMsg:
		m.Done = true
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.Live, cmd = m.Live.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.Done || m.Aborted {
		return ""
	}
	return m.Live.View()
}

func waitForEvent(ch runner.EventChan) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return ev
	}
}

func waitForDone(finished <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-finished
		return DoneMsg{}
	}
}

// Run executes r under the live view and returns its results. Aborting the
// view with ctrl+c cancels the run; the partial results are still returned.
// opts are passed through to the bubbletea program.
func Run(ctx context.Context, r *runner.Runner, opts ...tea.ProgramOption) (stats.ResultSet, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	updates := make(runner.EventChan, 256)
	finished := make(chan struct{})
	r.Updates = updates

	var results stats.ResultSet
	go func() {
		defer close(finished)
		results = r.Run(ctx)
		close(updates)
	}()

	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	_, err := tea.NewProgram(NewModel(r, updates, finished), opts...).Run()

	cancel()
	<-finished
	if errors.Is(err, tea.ErrProgramKilled) {
		err = nil
	}
	return results, err
}
