package stats

import (
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// SafeHistogram is a thread-safe wrapper around hdrhistogram
type SafeHistogram struct {
	hist *hdrhistogram.Histogram
	mu   sync.Mutex
}

func NewSafeHistogram() *SafeHistogram {
	// 1us to 10min, 3 significant figures
	h := hdrhistogram.New(1, int64(10*time.Minute/time.Microsecond), 3)
	return &SafeHistogram{hist: h}
}

// RecordMillis records a latency given in milliseconds. Values beyond the
// trackable range are clamped to its bounds so every sample is counted.
func (h *SafeHistogram) RecordMillis(ms float64) {
	v := int64(ms * 1000)

	h.mu.Lock()
	defer h.mu.Unlock()
	v = min(max(v, 0), h.hist.HighestTrackableValue())
	_ = h.hist.RecordValue(v)
}

// QuantileMillis returns the value at quantile q (0-100) in milliseconds.
func (h *SafeHistogram) QuantileMillis(q float64) float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return float64(h.hist.ValueAtQuantile(q)) / 1000.0
}

func (h *SafeHistogram) TotalCount() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hist.TotalCount()
}
