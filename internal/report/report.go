// Package report turns a run's ResultSet into a structured report with
// verdicts and recommendations, and renders or exports it.
package report

import (
	"time"

	"mt103perf/internal/stats"
)

// Verdict is the qualitative rating of a category's mean latency.
type Verdict string

const (
	VerdictExcellent Verdict = "excellent"
	VerdictGood      Verdict = "good"
	VerdictSlow      Verdict = "slow"
)

// Fixed verdict and recommendation thresholds in ms.
const (
	pageExcellentBelow = 500.0
	pageGoodBelow      = 1000.0
	apiExcellentBelow  = 200.0
	apiGoodBelow       = 500.0

	pageRecommendAbove = 1000.0
	apiRecommendAbove  = 500.0
)

func PageLoadVerdict(mean float64) Verdict {
	switch {
	case mean < pageExcellentBelow:
		return VerdictExcellent
	case mean < pageGoodBelow:
		return VerdictGood
	default:
		return VerdictSlow
	}
}

func APICallVerdict(mean float64) Verdict {
	switch {
	case mean < apiExcellentBelow:
		return VerdictExcellent
	case mean < apiGoodBelow:
		return VerdictGood
	default:
		return VerdictSlow
	}
}

var (
	pageLoadAdvice = []string{
		"Serve static assets through a service worker cache",
		"Enable gzip compression",
		"Minify and bundle CSS/JS",
	}
	apiAdvice = []string{
		"Optimise database queries on the transfer path",
		"Add a caching layer such as Redis",
		"Review the processing algorithms of the API handler",
	}
	errorAdvice = []string{
		"Review the service error logs",
		"Improve exception handling in the request path",
	}
)

// Block is the statistics of one sample category.
type Block struct {
	Title     string           `json:"title" yaml:"title"`
	Stats     stats.Statistics `json:"stats" yaml:"stats"`
	Quantiles stats.Quantiles  `json:"quantiles" yaml:"quantiles"`
	Verdict   Verdict          `json:"verdict" yaml:"verdict"`
}

// Meta describes the run that produced the results.
type Meta struct {
	RunID           string        `json:"run_id" yaml:"run_id"`
	Target          string        `json:"target" yaml:"target"`
	Protocol        string        `json:"protocol" yaml:"protocol"`
	PageLoads       int           `json:"page_loads" yaml:"page_loads"`
	APICalls        int           `json:"api_calls" yaml:"api_calls"`
	ConcurrentUsers int           `json:"concurrent_users" yaml:"concurrent_users"`
	RequestsPerUser int           `json:"requests_per_user" yaml:"requests_per_user"`
	StartedAt       time.Time     `json:"started_at" yaml:"started_at"`
	Duration        time.Duration `json:"duration_ns" yaml:"duration"`
}

// Report is the structured form of a finished run. Blocks are nil when the
// category has no samples.
type Report struct {
	Meta            Meta                    `json:"meta" yaml:"meta"`
	HealthMillis    *float64                `json:"health_ms,omitempty" yaml:"health_ms,omitempty"`
	PageLoad        *Block                  `json:"page_load,omitempty" yaml:"page_load,omitempty"`
	APICalls        *Block                  `json:"api_calls,omitempty" yaml:"api_calls,omitempty"`
	Scenarios       []stats.ScenarioSummary `json:"scenarios" yaml:"scenarios"`
	TotalErrors     int                     `json:"total_errors" yaml:"total_errors"`
	Errors          []stats.ErrorCount      `json:"errors" yaml:"errors"`
	Recommendations []string                `json:"recommendations" yaml:"recommendations"`

	samples  []stats.Sample
	failures []stats.ErrorRecord
}

// Build derives the report from a result snapshot. It never mutates rs.
func Build(rs stats.ResultSet, meta Meta) *Report {
	r := &Report{
		Meta:         meta,
		HealthMillis: rs.Health,
		Scenarios:    rs.ByScenario(),
		TotalErrors:  len(rs.Errors),
		Errors:       stats.CountErrors(rs.Errors),
		samples:      rs.Samples,
		failures:     rs.Failures,
	}

	if len(rs.PageLoad) > 0 {
		s := stats.Compute(rs.PageLoad)
		r.PageLoad = &Block{
			Title:     "Page load",
			Stats:     s,
			Quantiles: rs.Quantiles[stats.CategoryPageLoad],
			Verdict:   PageLoadVerdict(s.Mean),
		}
	}
	if len(rs.APICalls) > 0 {
		s := stats.Compute(rs.APICalls)
		r.APICalls = &Block{
			Title:     "API calls",
			Stats:     s,
			Quantiles: rs.Quantiles[stats.CategoryAPICall],
			Verdict:   APICallVerdict(s.Mean),
		}
	}

	r.Recommendations = recommend(r)
	return r
}

func recommend(r *Report) []string {
	out := []string{}
	if r.PageLoad != nil && r.PageLoad.Stats.Mean > pageRecommendAbove {
		out = append(out, pageLoadAdvice...)
	}
	if r.APICalls != nil && r.APICalls.Stats.Mean > apiRecommendAbove {
		out = append(out, apiAdvice...)
	}
	if r.TotalErrors > 0 {
		out = append(out, errorAdvice...)
	}
	return out
}
