// Package stats holds the per-run result collector and the statistics
// computed over its latency samples.
package stats

import (
	"math"
	"sort"
)

// Statistics is a read-only summary of a sample set, all values in ms.
type Statistics struct {
	Count  int     `json:"count" yaml:"count"`
	Min    float64 `json:"min_ms" yaml:"min_ms"`
	Max    float64 `json:"max_ms" yaml:"max_ms"`
	Mean   float64 `json:"mean_ms" yaml:"mean_ms"`
	Median float64 `json:"median_ms" yaml:"median_ms"`
	StdDev float64 `json:"stddev_ms" yaml:"stddev_ms"`
}

// Compute summarises samples. An empty input yields a zero Statistics with
// Count 0; callers skip reporting in that case. StdDev is the sample
// standard deviation and is 0 for fewer than two samples.
func Compute(samples []float64) Statistics {
	n := len(samples)
	if n == 0 {
		return Statistics{}
	}

	s := Statistics{
		Count: n,
		Min:   samples[0],
		Max:   samples[0],
	}

	var sum float64
	for _, v := range samples {
		sum += v
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
	}
	s.Mean = sum / float64(n)
	s.Median = median(samples)

	if n > 1 {
		var sq float64
		for _, v := range samples {
			d := v - s.Mean
			sq += d * d
		}
		s.StdDev = math.Sqrt(sq / float64(n-1))
	}

	// Floating point summation can push the mean a hair outside [min, max]
	// for constant inputs.
	if s.Mean < s.Min {
		s.Mean = s.Min
	}
	if s.Mean > s.Max {
		s.Mean = s.Max
	}
	return s
}

func median(samples []float64) float64 {
	sorted := make([]float64, len(samples))
	copy(sorted, samples)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
