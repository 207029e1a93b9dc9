// Package mock is a stand-in MT103 transfer service used as a load target
// for local runs and tests.
package mock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Config of the mock service.
type Config struct {
	Port int
	// Delay simulates transfer processing time on the API endpoint.
	Delay time.Duration
	// FailRate is the probability in [0,1] that a page or API request
	// returns 500. The health endpoint never fails.
	FailRate float64
}

func DefaultConfig() Config {
	return Config{
		Port:  5000,
		Delay: 100 * time.Millisecond,
	}
}

var requiredFields = []string{"amount", "sender", "receiver"}

type Server struct {
	cfg    Config
	logger *zerolog.Logger
	now    func() time.Time
}

func NewServer(cfg Config, logger *zerolog.Logger) *Server {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Server{cfg: cfg, logger: logger, now: time.Now}
}

// Handler returns the routed service with its middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /{$}", WithTiming(s.logger, "index", WithFaults(s.cfg.FailRate, http.HandlerFunc(s.index))))
	mux.Handle("GET /health", WithTiming(s.logger, "health", http.HandlerFunc(s.health)))
	mux.Handle("POST /api/send_mt103", WithTiming(s.logger, "send_mt103", WithFaults(s.cfg.FailRate, http.HandlerFunc(s.sendMT103))))

	return mux
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	s.logger.Info().
		Str("component", "mock").
		Str("addr", addr).
		Dur("delay", s.cfg.Delay).
		Float64("fail_rate", s.cfg.FailRate).
		Msg("mock MT103 service listening")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(indexPage))
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": unixSeconds(s.now()),
	})
}

func (s *Server) sendMT103(w http.ResponseWriter, r *http.Request) {
	var data map[string]any
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil || len(data) == 0 {
		writeError(w, http.StatusBadRequest, "Invalid JSON data")
		return
	}
	for _, f := range requiredFields {
		if _, ok := data[f]; !ok {
			writeError(w, http.StatusBadRequest, "Missing required field: "+f)
			return
		}
	}

	if s.cfg.Delay > 0 {
		select {
		case <-time.After(s.cfg.Delay):
		case <-r.Context().Done():
			return
		}
	}

	now := s.now()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "success",
		"transaction_id": fmt.Sprintf("TXN_%d", now.Unix()),
		"timestamp":      unixSeconds(now),
		"data":           data,
	})
}

func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

const indexPage = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>MT103 Transfer</title></head>
<body>
<h1>MT103 Transfer</h1>
<form id="mt103" method="post" action="/api/send_mt103">
  <label>Amount <input name="amount" type="number" step="0.01"></label>
  <label>Currency <input name="currency" value="EUR"></label>
  <label>Sender IBAN <input name="sender_iban"></label>
  <label>Receiver IBAN <input name="receiver_iban"></label>
  <button type="submit">Send</button>
</form>
</body>
</html>
`
