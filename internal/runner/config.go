package runner

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"mt103perf/internal/probe"
)

var (
	// ErrInvalidURL indicates a target base URL that cannot be probed.
	ErrInvalidURL = errors.New("invalid target url")

	// ErrInvalidCount indicates a negative iteration or concurrency count.
	ErrInvalidCount = errors.New("invalid count")

	// ErrInvalidTimeout indicates a zero or negative scenario timeout.
	ErrInvalidTimeout = errors.New("invalid timeout")
)

// Target service endpoints.
const (
	PathRoot   = "/"
	PathHealth = "/health"
	PathMT103  = "/api/send_mt103"
)

// Default timeouts per scenario.
const (
	DefaultHealthTimeout = 5 * time.Second
	DefaultPageTimeout   = 10 * time.Second
	DefaultAPITimeout    = 30 * time.Second
)

// Config is the scenario configuration of one run. It is not modified once
// the run has started.
type Config struct {
	BaseURL         string
	PageLoads       int
	APICalls        int
	ConcurrentUsers int
	RequestsPerUser int

	HealthTimeout time.Duration
	PageTimeout   time.Duration
	APITimeout    time.Duration

	Protocol probe.Protocol
}

func DefaultConfig() Config {
	return Config{
		BaseURL:         "http://localhost:5000",
		PageLoads:       10,
		APICalls:        10,
		ConcurrentUsers: 5,
		RequestsPerUser: 3,
		HealthTimeout:   DefaultHealthTimeout,
		PageTimeout:     DefaultPageTimeout,
		APITimeout:      DefaultAPITimeout,
		Protocol:        probe.HTTP1,
	}
}

// Validate checks the configuration before any request is issued.
func (c Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: missing host in %q", ErrInvalidURL, c.BaseURL)
	}
	// The h2 and h3 transports only negotiate over TLS.
	if c.Protocol != probe.HTTP1 && u.Scheme != "https" {
		return fmt.Errorf("%w: %s requires an https url, got %q", ErrInvalidURL, c.Protocol, c.BaseURL)
	}

	counts := []struct {
		name string
		v    int
	}{
		{"page-loads", c.PageLoads},
		{"api-calls", c.APICalls},
		{"concurrent-users", c.ConcurrentUsers},
		{"requests-per-user", c.RequestsPerUser},
	}
	for _, n := range counts {
		if n.v < 0 {
			return fmt.Errorf("%w: %s must not be negative, got %d", ErrInvalidCount, n.name, n.v)
		}
	}

	timeouts := []struct {
		name string
		v    time.Duration
	}{
		{"health-timeout", c.HealthTimeout},
		{"page-timeout", c.PageTimeout},
		{"api-timeout", c.APITimeout},
	}
	for _, t := range timeouts {
		if t.v <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %s", ErrInvalidTimeout, t.name, t.v)
		}
	}
	return nil
}

// Endpoint joins the base URL and path.
func (c Config) Endpoint(path string) string {
	return strings.TrimSuffix(c.BaseURL, "/") + path
}

// TotalProbes is the number of requests a full run issues.
func (c Config) TotalProbes() int {
	return 1 + c.PageLoads + c.APICalls + c.ConcurrentUsers*c.RequestsPerUser
}
