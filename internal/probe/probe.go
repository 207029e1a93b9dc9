// Package probe performs single timed HTTP requests and classifies their outcome.
package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptrace"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrorKind is a coarse classification of a failed probe.
type ErrorKind string

const (
	KindNone       ErrorKind = ""
	KindHTTPStatus ErrorKind = "http_status"
	KindTimeout    ErrorKind = "timeout"
	KindRefused    ErrorKind = "connection_refused"
	KindDNS        ErrorKind = "dns"
	KindCanceled   ErrorKind = "canceled"
	KindOther      ErrorKind = "other"
)

// Request describes one probe. Body, when non-nil, is sent JSON encoded.
type Request struct {
	Method  string
	URL     string
	Body    any
	Timeout time.Duration
}

// Outcome is the result of exactly one request.
type Outcome struct {
	Success bool
	Elapsed time.Duration
	Status  int
	Proto   string
	TTFB    time.Duration
	Reused  bool
	Bytes   int64

	// Error is "HTTP <status>" for non-2xx responses and the transport
	// fault message otherwise. Empty on success.
	Error string
	Kind  ErrorKind
}

// Millis returns the elapsed time in fractional milliseconds.
func (o Outcome) Millis() float64 {
	return float64(o.Elapsed.Microseconds()) / 1000.0
}

// Probe issues timed requests over a shared client. It never retries.
type Probe struct {
	client   *http.Client
	protocol Protocol
}

func New(p Protocol) *Probe {
	return &Probe{
		client:   &http.Client{Transport: newTransport(p)},
		protocol: p,
	}
}

// NewWithClient wraps an existing client, mostly for tests.
func NewWithClient(c *http.Client) *Probe {
	return &Probe{client: c, protocol: HTTP1}
}

func (p *Probe) Protocol() Protocol {
	return p.protocol
}

// Close releases idle connections held by the transport.
func (p *Probe) Close() error {
	if c, ok := p.client.Transport.(io.Closer); ok {
		return c.Close()
	}
	p.client.CloseIdleConnections()
	return nil
}

// Do performs req and measures wall clock time from dispatch until the full
// response body has been read.
func (p *Probe) Do(ctx context.Context, req Request) Outcome {
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	var body io.Reader
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return Outcome{Error: fmt.Sprintf("encode body: %v", err), Kind: KindOther}
		}
		body = bytes.NewReader(b)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return Outcome{Error: err.Error(), Kind: KindOther}
	}
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("X-Request-ID", uuid.New().String())

	var (
		start  time.Time
		ttfb   time.Duration
		reused bool
	)
	trace := &httptrace.ClientTrace{
		GotConn: func(info httptrace.GotConnInfo) {
			reused = info.Reused
		},
		GotFirstResponseByte: func() {
			ttfb = time.Since(start)
		},
	}
	httpReq = httpReq.WithContext(httptrace.WithClientTrace(httpReq.Context(), trace))

	start = time.Now()
	resp, err := p.client.Do(httpReq)
	if err != nil {
		return Outcome{
			Elapsed: time.Since(start),
			Error:   err.Error(),
			Kind:    Classify(err),
		}
	}
	n, readErr := io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	elapsed := time.Since(start)

	out := Outcome{
		Elapsed: elapsed,
		Status:  resp.StatusCode,
		Proto:   resp.Proto,
		TTFB:    ttfb,
		Reused:  reused,
		Bytes:   n,
	}

	switch {
	case readErr != nil:
		out.Error = readErr.Error()
		out.Kind = Classify(readErr)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		out.Error = fmt.Sprintf("HTTP %d", resp.StatusCode)
		out.Kind = KindHTTPStatus
	default:
		out.Success = true
	}
	return out
}

// Classify maps a transport error to an ErrorKind.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	if errors.Is(err, context.Canceled) {
		return KindCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return KindDNS
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "connection refused"):
		return KindRefused
	case strings.Contains(msg, "no such host"):
		return KindDNS
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline exceeded"):
		return KindTimeout
	}
	return KindOther
}
