package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"mt103perf/internal/probe"
	"mt103perf/internal/report"
	"mt103perf/internal/runner"
	"mt103perf/internal/stats"
	"mt103perf/internal/tui"
)

// Options controls how a run is driven and where its output goes.
type Options struct {
	// Out is an optional export path (.json, .yaml, .yml or .csv).
	Out string
	// TUI shows the live view instead of per-iteration lines.
	TUI bool

	Stdout io.Writer
	Logger *zerolog.Logger
	// Prober overrides the HTTP probe built from the config.
	Prober runner.Prober
}

// Start validates cfg, runs every scenario, prints the report and exports
// it when requested. Only configuration errors are returned; export
// failures are logged and the run still counts as complete.
func Start(ctx context.Context, cfg runner.Config, opts Options) (*report.Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	w := opts.Stdout
	if w == nil {
		w = os.Stdout
	}
	logger := opts.Logger
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	runID := uuid.NewString()
	runLog := logger.With().Str("run_id", runID).Logger()

	prober := opts.Prober
	if prober == nil {
		p := probe.New(cfg.Protocol)
		defer p.Close()
		prober = p
	}

	printHeader(w, cfg, runID)

	r := runner.NewRunner(cfg, prober, stats.NewCollector())
	r.Out = w
	r.Logger = &runLog

	started := time.Now()
	var rs stats.ResultSet
	if opts.TUI {
		r.Out = io.Discard
		var err error
		rs, err = tui.Run(ctx, r)
		if err != nil {
			runLog.Error().Err(err).Str("component", "cli").Msg("live view failed")
		}
	} else {
		rs = r.Run(ctx)
	}

	rep := report.Build(rs, report.Meta{
		RunID:           runID,
		Target:          cfg.BaseURL,
		Protocol:        cfg.Protocol.String(),
		PageLoads:       cfg.PageLoads,
		APICalls:        cfg.APICalls,
		ConcurrentUsers: cfg.ConcurrentUsers,
		RequestsPerUser: cfg.RequestsPerUser,
		StartedAt:       started,
		Duration:        time.Since(started),
	})
	if err := rep.Render(w); err != nil {
		runLog.Error().Err(err).Str("component", "cli").Msg("render report")
	}

	handleExport(w, &runLog, rep, opts.Out)
	return rep, nil
}

func printHeader(w io.Writer, cfg runner.Config, runID string) {
	fmt.Fprintf(w, "\n🚀 STARTING MT103 PERFORMANCE TEST\n")
	fmt.Fprintf(w, "============================================================\n")
	fmt.Fprintf(w, "Target URL  : %s\n", cfg.BaseURL)
	fmt.Fprintf(w, "Protocol    : %s\n", cfg.Protocol)
	fmt.Fprintf(w, "Page loads  : %d\n", cfg.PageLoads)
	fmt.Fprintf(w, "API calls   : %d\n", cfg.APICalls)
	fmt.Fprintf(w, "Concurrency : %d users × %d requests\n", cfg.ConcurrentUsers, cfg.RequestsPerUser)
	fmt.Fprintf(w, "Run ID      : %s\n", runID)
	fmt.Fprintf(w, "============================================================\n\n")
}

func handleExport(w io.Writer, logger *zerolog.Logger, rep *report.Report, path string) {
	if path == "" {
		return
	}
	if err := rep.Export(path); err != nil {
		logger.Error().Err(err).Str("component", "cli").Str("path", path).Msg("export failed")
		return
	}
	fmt.Fprintf(w, "\n💾 Report saved to %s\n", path)
}
