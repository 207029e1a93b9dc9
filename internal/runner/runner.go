package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"mt103perf/internal/probe"
	"mt103perf/internal/stats"
)

// Prober issues one timed request. *probe.Probe satisfies it.
type Prober interface {
	Do(ctx context.Context, req probe.Request) probe.Outcome
}

// Event is emitted after every probe. It is sent over the Updates channel
type Event struct {
	Scenario  stats.Scenario
	Seq       int
	Success   bool
	Millis    float64
	Error     string
	Completed int
	Total     int
}

// EventChan is the channel type
type EventChan chan Event

// Runner executes the scenarios of one run against a single Collector.
type Runner struct {
	Cfg       Config
	Collector *stats.Collector

	// Out receives the per-iteration progress lines.
	Out io.Writer
	// Updates, when set, receives an Event per probe. Sends never block.
	Updates EventChan
	Logger  *zerolog.Logger

	probe     Prober
	outMu     sync.Mutex
	completed int64
}

func NewRunner(cfg Config, p Prober, c *stats.Collector) *Runner {
	nop := zerolog.Nop()
	return &Runner{
		Cfg:       cfg,
		Collector: c,
		Out:       os.Stdout,
		Logger:    &nop,
		probe:     p,
	}
}

// Run executes health, page load, API call and concurrent scenarios in that
// order and returns a snapshot of the collected results.
func (r *Runner) Run(ctx context.Context) stats.ResultSet {
	r.Logger.Info().
		Str("component", "runner").
		Str("url", r.Cfg.BaseURL).
		Int("total_probes", r.Cfg.TotalProbes()).
		Msg("starting run")

	r.HealthCheck(ctx)
	r.PageLoad(ctx)
	r.APICall(ctx)
	r.Concurrent(ctx)

	r.Logger.Info().
		Str("component", "runner").
		Int64("completed", atomic.LoadInt64(&r.completed)).
		Msg("run finished")

	return r.Collector.Snapshot()
}

// Completed returns the number of probes finished so far.
func (r *Runner) Completed() int {
	return int(atomic.LoadInt64(&r.completed))
}

// record stores a probe outcome and publishes an Event.
func (r *Runner) record(scenario stats.Scenario, seq int, out probe.Outcome) {
	if out.Success {
		r.Collector.AddSample(scenario, seq, out.Millis(), out.Status)
	} else if scenario != stats.ScenarioHealth {
		r.Collector.AddError(scenario, seq, out.Error, string(out.Kind))
	}

	done := atomic.AddInt64(&r.completed, 1)

	ev := r.Logger.Debug().
		Str("component", "runner").
		Str("scenario", string(scenario)).
		Int("seq", seq).
		Float64("ms", out.Millis()).
		Str("proto", out.Proto).
		Bool("reused", out.Reused)
	if !out.Success {
		ev = ev.Str("error", out.Error).Str("kind", string(out.Kind))
	}
	ev.Msg("probe finished")

	r.sendUpdate(Event{
		Scenario:  scenario,
		Seq:       seq,
		Success:   out.Success,
		Millis:    out.Millis(),
		Error:     out.Error,
		Completed: int(done),
		Total:     r.Cfg.TotalProbes(),
	})
}

func (r *Runner) sendUpdate(e Event) {
	if r.Updates == nil {
		return
	}
	// Non-blocking send
	select {
	case r.Updates <- e:
	default:
		// Drop update if channel full, UI acts as backpressure
	}
}

// printf serialises writes from concurrent workers.
func (r *Runner) printf(format string, args ...any) {
	r.outMu.Lock()
	defer r.outMu.Unlock()
	fmt.Fprintf(r.Out, format, args...)
}
