package mock

import (
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// statusRecorder captures the status code written by the wrapped handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// WithTiming logs the handling time of every request routed to next.
func WithTiming(logger *zerolog.Logger, name string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		logger.Info().
			Str("component", "mock").
			Str("handler", name).
			Str("method", r.Method).
			Int("status", rec.status).
			Dur("took", time.Since(start)).
			Msg("request handled")
	})
}

// WithFaults answers with 500 for a rate fraction of requests. Zero disables
// injection and one fails every request.
func WithFaults(rate float64, next http.Handler) http.Handler {
	if rate <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rand.Float64() < rate {
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		next.ServeHTTP(w, r)
	})
}
