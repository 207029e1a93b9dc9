package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mt103perf/internal/probe"
	"mt103perf/internal/stats"
)

func newTestRunner(t *testing.T, h http.Handler, mutate func(*Config)) (*Runner, *bytes.Buffer) {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	cfg := DefaultConfig()
	cfg.BaseURL = srv.URL
	cfg.HealthTimeout = time.Second
	cfg.PageTimeout = time.Second
	cfg.APITimeout = time.Second
	if mutate != nil {
		mutate(&cfg)
	}
	require.NoError(t, cfg.Validate())

	r := NewRunner(cfg, probe.NewWithClient(srv.Client()), stats.NewCollector())
	var out bytes.Buffer
	r.Out = &syncWriter{w: &out}
	return r, &out
}

type syncWriter struct {
	mu sync.Mutex
	w  *bytes.Buffer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}

func TestRunner_ConcurrentFillsPageLoadBucket(t *testing.T) {
	r, out := newTestRunner(t, okHandler(), func(c *Config) {
		c.ConcurrentUsers = 5
		c.RequestsPerUser = 3
	})

	n := r.Concurrent(context.Background())
	rs := r.Collector.Snapshot()

	assert.Equal(t, 15, n)
	assert.Len(t, rs.PageLoad, 15)
	assert.Empty(t, rs.Errors)
	assert.Empty(t, rs.APICalls)
	assert.Contains(t, out.String(), "completed 15 requests successfully")
}

func TestRunner_AllFailures(t *testing.T) {
	fail := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	r, out := newTestRunner(t, fail, func(c *Config) {
		c.PageLoads = 4
		c.APICalls = 3
		c.ConcurrentUsers = 2
		c.RequestsPerUser = 2
	})

	rs := r.Run(context.Background())

	assert.Empty(t, rs.PageLoad)
	assert.Empty(t, rs.APICalls)
	assert.Nil(t, rs.Health)
	require.Len(t, rs.Errors, 4+3+2*2)
	for _, e := range rs.Errors {
		assert.Equal(t, "HTTP 500", e)
	}
	assert.Contains(t, out.String(), "❌ request 1: HTTP 500")
	assert.Contains(t, out.String(), "❌ user 2 request 2: HTTP 500")
	assert.Equal(t, r.Cfg.TotalProbes(), r.Completed())
}

func TestRunner_ScenarioOrder(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Method+" "+r.URL.Path)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})
	r, _ := newTestRunner(t, h, func(c *Config) {
		c.PageLoads = 2
		c.APICalls = 2
		c.ConcurrentUsers = 1
		c.RequestsPerUser = 1
	})

	r.Run(context.Background())

	assert.Equal(t, []string{
		"GET /health",
		"GET /",
		"GET /",
		"POST /api/send_mt103",
		"POST /api/send_mt103",
		"GET /",
	}, seen)
}

func TestRunner_APICallPayload(t *testing.T) {
	var got MT103
	var contentType string
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	})
	r, _ := newTestRunner(t, h, func(c *Config) { c.APICalls = 1 })

	r.APICall(context.Background())

	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, SamplePayload(), got)
	assert.Equal(t, 1000.0, got.Amount)
	assert.Equal(t, "EUR", got.Currency)
	assert.Len(t, r.Collector.Snapshot().APICalls, 1)
}

func TestRunner_HealthCheck(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		r, out := newTestRunner(t, okHandler(), nil)

		ms, ok := r.HealthCheck(context.Background())

		assert.True(t, ok)
		assert.GreaterOrEqual(t, ms, 0.0)
		rs := r.Collector.Snapshot()
		require.NotNil(t, rs.Health)
		assert.Empty(t, rs.PageLoad)
		assert.Contains(t, out.String(), "✅ health")
	})

	t.Run("unhealthy is not an error record", func(t *testing.T) {
		h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
		r, out := newTestRunner(t, h, nil)

		_, ok := r.HealthCheck(context.Background())

		assert.False(t, ok)
		rs := r.Collector.Snapshot()
		assert.Nil(t, rs.Health)
		assert.Empty(t, rs.Errors)
		assert.Contains(t, out.String(), "❌ health: HTTP 503")
	})
}

func TestRunner_ZeroCounts(t *testing.T) {
	var hits int64
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		w.WriteHeader(http.StatusOK)
	})
	r, out := newTestRunner(t, h, func(c *Config) {
		c.PageLoads = 0
		c.APICalls = 0
		c.ConcurrentUsers = 0
		c.RequestsPerUser = 3
	})

	rs := r.Run(context.Background())

	assert.Equal(t, int64(1), atomic.LoadInt64(&hits))
	assert.Empty(t, rs.PageLoad)
	assert.Empty(t, rs.APICalls)
	assert.Contains(t, out.String(), "completed 0 requests successfully")
}

func TestRunner_MixedConcurrentFailures(t *testing.T) {
	var n int64
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt64(&n, 1)%2 == 0 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	r, _ := newTestRunner(t, h, func(c *Config) {
		c.ConcurrentUsers = 4
		c.RequestsPerUser = 5
	})

	ok := r.Concurrent(context.Background())
	rs := r.Collector.Snapshot()

	assert.Equal(t, 10, ok)
	assert.Len(t, rs.PageLoad, 10)
	assert.Len(t, rs.Errors, 10)
	for _, f := range rs.Failures {
		assert.Equal(t, stats.ScenarioConcurrent, f.Scenario)
		assert.Equal(t, "http_status", f.Kind)
	}
}

func TestRunner_Updates(t *testing.T) {
	r, _ := newTestRunner(t, okHandler(), func(c *Config) {
		c.PageLoads = 2
		c.APICalls = 1
		c.ConcurrentUsers = 1
		c.RequestsPerUser = 1
	})
	r.Updates = make(EventChan, 16)

	r.Run(context.Background())
	close(r.Updates)

	var events []Event
	for e := range r.Updates {
		events = append(events, e)
	}
	require.Len(t, events, 5)
	assert.Equal(t, stats.ScenarioHealth, events[0].Scenario)
	last := events[len(events)-1]
	assert.Equal(t, 5, last.Completed)
	assert.Equal(t, 5, last.Total)
}

func TestConfig_Validate(t *testing.T) {
	vars := []struct {
		name   string
		mutate func(*Config)
		err    error
	}{
		{"default", func(c *Config) {}, nil},
		{"bad scheme", func(c *Config) { c.BaseURL = "ftp://host" }, ErrInvalidURL},
		{"no host", func(c *Config) { c.BaseURL = "http://" }, ErrInvalidURL},
		{"garbage", func(c *Config) { c.BaseURL = "::not a url" }, ErrInvalidURL},
		{"negative pages", func(c *Config) { c.PageLoads = -1 }, ErrInvalidCount},
		{"negative users", func(c *Config) { c.ConcurrentUsers = -3 }, ErrInvalidCount},
		{"zero page timeout", func(c *Config) { c.PageTimeout = 0 }, ErrInvalidTimeout},
		{"negative api timeout", func(c *Config) { c.APITimeout = -time.Second }, ErrInvalidTimeout},
		{"http3 over cleartext", func(c *Config) { c.Protocol = probe.HTTP3 }, ErrInvalidURL},
		{"http2 over cleartext", func(c *Config) { c.Protocol = probe.HTTP2 }, ErrInvalidURL},
		{"http3 over tls", func(c *Config) {
			c.Protocol = probe.HTTP3
			c.BaseURL = "https://bank.example.test"
		}, nil},
		{"http2 over tls", func(c *Config) {
			c.Protocol = probe.HTTP2
			c.BaseURL = "https://bank.example.test"
		}, nil},
	}

	for _, v := range vars {
		t.Run(v.name, func(t *testing.T) {
			cfg := DefaultConfig()
			v.mutate(&cfg)
			err := cfg.Validate()
			if v.err == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, v.err)
		})
	}
}

func TestConfig_Endpoint(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BaseURL = "http://example.test:8080/"

	assert.Equal(t, "http://example.test:8080/health", cfg.Endpoint(PathHealth))
	assert.True(t, strings.HasSuffix(cfg.Endpoint(PathMT103), "/api/send_mt103"))
	assert.Equal(t, 1+10+10+15, DefaultConfig().TotalProbes())
}
