package probe

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/quic-go/quic-go/http3"
)

// Protocol selects the HTTP version used by the probe transport.
type Protocol int

const (
	HTTP1 Protocol = iota
	HTTP2
	HTTP3
)

func (p Protocol) String() string {
	switch p {
	case HTTP1:
		return "HTTP/1.1"
	case HTTP2:
		return "HTTP/2"
	case HTTP3:
		return "HTTP/3"
	default:
		return "Unknown"
	}
}

// ParseProtocol accepts "1.1", "2", "3" and the usual aliases.
func ParseProtocol(s string) (Protocol, error) {
	switch s {
	case "", "1", "1.1", "http1", "HTTP/1.1":
		return HTTP1, nil
	case "2", "h2", "http2", "HTTP/2":
		return HTTP2, nil
	case "3", "h3", "http3", "HTTP/3":
		return HTTP3, nil
	}
	return HTTP1, fmt.Errorf("unsupported http version %q", s)
}

// Per-request deadlines come from the request context, so the clients below
// carry no global Timeout.
func newTransport(p Protocol) http.RoundTripper {
	switch p {
	case HTTP3:
		return &http3.Transport{
			TLSClientConfig: &tls.Config{
				NextProtos: []string{http3.NextProtoH3},
			},
		}
	case HTTP2:
		t := baseTransport()
		t.ForceAttemptHTTP2 = true
		t.TLSClientConfig = &tls.Config{NextProtos: []string{"h2"}}
		return t
	default:
		t := baseTransport()
		t.ForceAttemptHTTP2 = false
		t.TLSClientConfig = &tls.Config{NextProtos: []string{"http/1.1"}}
		return t
	}
}

func baseTransport() *http.Transport {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	return &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         dialer.DialContext,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
}
