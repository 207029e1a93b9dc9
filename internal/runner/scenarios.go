package runner

import (
	"context"
	"net/http"
	"sync/atomic"

	"github.com/sourcegraph/conc/pool"

	"mt103perf/internal/probe"
	"mt103perf/internal/stats"
)

// HealthCheck issues one GET to the health endpoint. It returns the latency
// in ms and true on success. The result is kept out of the sample buckets.
func (r *Runner) HealthCheck(ctx context.Context) (float64, bool) {
	r.printf("🔍 Health check...\n")

	out := r.probe.Do(ctx, probe.Request{
		Method:  http.MethodGet,
		URL:     r.Cfg.Endpoint(PathHealth),
		Timeout: r.Cfg.HealthTimeout,
	})
	r.record(stats.ScenarioHealth, 1, out)

	if !out.Success {
		r.printf("  ❌ health: %s\n", out.Error)
		return 0, false
	}
	r.printf("  ✅ health: %.2fms\n", out.Millis())
	return out.Millis(), true
}

// PageLoad issues PageLoads sequential GETs to the root page.
func (r *Runner) PageLoad(ctx context.Context) {
	n := r.Cfg.PageLoads
	r.printf("🔍 Page load (%d iterations)...\n", n)

	for i := 1; i <= n; i++ {
		out := r.probe.Do(ctx, probe.Request{
			Method:  http.MethodGet,
			URL:     r.Cfg.Endpoint(PathRoot),
			Timeout: r.Cfg.PageTimeout,
		})
		r.record(stats.ScenarioPageLoad, i, out)

		if out.Success {
			r.printf("  ✅ request %d: %.2fms\n", i, out.Millis())
		} else {
			r.printf("  ❌ request %d: %s\n", i, out.Error)
		}
	}
}

// APICall issues APICalls sequential transfer submissions.
func (r *Runner) APICall(ctx context.Context) {
	n := r.Cfg.APICalls
	r.printf("🔍 API calls (%d iterations)...\n", n)

	payload := SamplePayload()
	for i := 1; i <= n; i++ {
		out := r.probe.Do(ctx, probe.Request{
			Method:  http.MethodPost,
			URL:     r.Cfg.Endpoint(PathMT103),
			Body:    payload,
			Timeout: r.Cfg.APITimeout,
		})
		r.record(stats.ScenarioAPICall, i, out)

		if out.Success {
			r.printf("  ✅ API %d: %.2fms\n", i, out.Millis())
		} else {
			r.printf("  ❌ API %d: %s\n", i, out.Error)
		}
	}
}

// Concurrent runs ConcurrentUsers lanes in parallel, each issuing
// RequestsPerUser sequential GETs to the root page. It returns once every
// lane has finished, with the number of successful requests.
func (r *Runner) Concurrent(ctx context.Context) int {
	users, perUser := r.Cfg.ConcurrentUsers, r.Cfg.RequestsPerUser
	r.printf("🔍 Concurrent load (%d users × %d requests)...\n", users, perUser)

	if users == 0 || perUser == 0 {
		r.printf("  ✅ completed 0 requests successfully\n")
		return 0
	}

	var success int64
	p := pool.New().WithMaxGoroutines(users)
	for u := 1; u <= users; u++ {
		p.Go(func() {
			for i := 1; i <= perUser; i++ {
				seq := (u-1)*perUser + i
				out := r.probe.Do(ctx, probe.Request{
					Method:  http.MethodGet,
					URL:     r.Cfg.Endpoint(PathRoot),
					Timeout: r.Cfg.PageTimeout,
				})
				r.record(stats.ScenarioConcurrent, seq, out)

				if out.Success {
					atomic.AddInt64(&success, 1)
				} else {
					r.printf("  ❌ user %d request %d: %s\n", u, i, out.Error)
				}
			}
		})
	}
	p.Wait()

	n := int(atomic.LoadInt64(&success))
	r.printf("  ✅ completed %d requests successfully\n", n)
	return n
}
