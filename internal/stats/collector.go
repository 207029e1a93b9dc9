package stats

import (
	"sort"
	"sync"
)

// Scenario names the usage pattern that produced a sample or error.
type Scenario string

const (
	ScenarioHealth     Scenario = "health"
	ScenarioPageLoad   Scenario = "page_load"
	ScenarioAPICall    Scenario = "api_call"
	ScenarioConcurrent Scenario = "concurrent"
)

// Scenarios lists the scenarios in execution order.
var Scenarios = []Scenario{ScenarioHealth, ScenarioPageLoad, ScenarioAPICall, ScenarioConcurrent}

// Category is the sample bucket a scenario feeds. The concurrent scenario
// shares the page-load bucket.
type Category string

const (
	CategoryPageLoad Category = "page_load"
	CategoryAPICall  Category = "api_call"
)

func (s Scenario) Category() Category {
	if s == ScenarioAPICall {
		return CategoryAPICall
	}
	return CategoryPageLoad
}

// Sample is one successful probe, tagged with its origin.
type Sample struct {
	Scenario Scenario `json:"scenario" yaml:"scenario"`
	Seq      int      `json:"seq" yaml:"seq"`
	Millis   float64  `json:"ms" yaml:"ms"`
	Status   int      `json:"status" yaml:"status"`
}

// ErrorRecord is one failed probe.
type ErrorRecord struct {
	Scenario    Scenario `json:"scenario" yaml:"scenario"`
	Seq         int      `json:"seq" yaml:"seq"`
	Description string   `json:"description" yaml:"description"`
	Kind        string   `json:"kind" yaml:"kind"`
}

// Quantiles holds histogram-derived percentiles in ms.
type Quantiles struct {
	P90 float64 `json:"p90_ms" yaml:"p90_ms"`
	P99 float64 `json:"p99_ms" yaml:"p99_ms"`
}

// ResultSet is an immutable copy of everything a Collector has seen.
type ResultSet struct {
	PageLoad  []float64
	APICalls  []float64
	Errors    []string
	Samples   []Sample
	Failures  []ErrorRecord
	Health    *float64
	Quantiles map[Category]Quantiles
}

// Collector accumulates the results of one harness run. Appends are safe
// for concurrent use. A Collector is never reset; start a new run with a
// new Collector.
type Collector struct {
	mu       sync.Mutex
	pageLoad []float64
	apiCalls []float64
	errors   []string
	samples  []Sample
	failures []ErrorRecord
	health   *float64

	hist map[Category]*SafeHistogram
}

func NewCollector() *Collector {
	return &Collector{
		hist: map[Category]*SafeHistogram{
			CategoryPageLoad: NewSafeHistogram(),
			CategoryAPICall:  NewSafeHistogram(),
		},
	}
}

// AddSample records a successful probe for scenario. Health samples are not
// part of any bucket; use SetHealth for them.
func (c *Collector) AddSample(scenario Scenario, seq int, ms float64, status int) {
	if scenario == ScenarioHealth {
		c.SetHealth(ms)
		return
	}

	c.mu.Lock()
	switch scenario.Category() {
	case CategoryAPICall:
		c.apiCalls = append(c.apiCalls, ms)
	default:
		c.pageLoad = append(c.pageLoad, ms)
	}
	c.samples = append(c.samples, Sample{Scenario: scenario, Seq: seq, Millis: ms, Status: status})
	c.mu.Unlock()

	c.hist[scenario.Category()].RecordMillis(ms)
}

// AddError records a failed probe.
func (c *Collector) AddError(scenario Scenario, seq int, description, kind string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.errors = append(c.errors, description)
	c.failures = append(c.failures, ErrorRecord{
		Scenario:    scenario,
		Seq:         seq,
		Description: description,
		Kind:        kind,
	})
}

// SetHealth stores the health check latency.
func (c *Collector) SetHealth(ms float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.health = &ms
}

// Snapshot copies the current state.
func (c *Collector) Snapshot() ResultSet {
	c.mu.Lock()
	defer c.mu.Unlock()

	rs := ResultSet{
		PageLoad:  append([]float64(nil), c.pageLoad...),
		APICalls:  append([]float64(nil), c.apiCalls...),
		Errors:    append([]string(nil), c.errors...),
		Samples:   append([]Sample(nil), c.samples...),
		Failures:  append([]ErrorRecord(nil), c.failures...),
		Quantiles: make(map[Category]Quantiles, len(c.hist)),
	}
	if c.health != nil {
		h := *c.health
		rs.Health = &h
	}
	for cat, h := range c.hist {
		if h.TotalCount() == 0 {
			continue
		}
		rs.Quantiles[cat] = Quantiles{
			P90: h.QuantileMillis(90),
			P99: h.QuantileMillis(99),
		}
	}
	return rs
}

// ErrorCount is the frequency of one distinct error description.
type ErrorCount struct {
	Description string `json:"description" yaml:"description"`
	Count       int    `json:"count" yaml:"count"`
}

// CountErrors groups errors by description. The result is ordered by
// descending count, then description.
func CountErrors(errors []string) []ErrorCount {
	counts := make(map[string]int)
	for _, e := range errors {
		counts[e]++
	}

	out := make([]ErrorCount, 0, len(counts))
	for desc, n := range counts {
		out = append(out, ErrorCount{Description: desc, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Description < out[j].Description
	})
	return out
}

// ScenarioSummary is the per-scenario view of a ResultSet.
type ScenarioSummary struct {
	Scenario Scenario   `json:"scenario" yaml:"scenario"`
	Stats    Statistics `json:"stats" yaml:"stats"`
	Errors   int        `json:"errors" yaml:"errors"`
}

// ByScenario splits samples and errors by their scenario of origin. Only
// scenarios that issued at least one recorded probe are returned.
func (rs ResultSet) ByScenario() []ScenarioSummary {
	samples := make(map[Scenario][]float64)
	errs := make(map[Scenario]int)
	for _, s := range rs.Samples {
		samples[s.Scenario] = append(samples[s.Scenario], s.Millis)
	}
	for _, f := range rs.Failures {
		errs[f.Scenario]++
	}

	var out []ScenarioSummary
	for _, scn := range Scenarios {
		if len(samples[scn]) == 0 && errs[scn] == 0 {
			continue
		}
		out = append(out, ScenarioSummary{
			Scenario: scn,
			Stats:    Compute(samples[scn]),
			Errors:   errs[scn],
		})
	}
	return out
}
