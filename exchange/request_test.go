package exchange

import (
	"net"
	"testing"

	"github.com/nabbar/httpcore/internal/tlsstate"
)

type fakeAddr string

func (f fakeAddr) Network() string { return "tcp" }
func (f fakeAddr) String() string  { return string(f) }

func TestResolveAuthorityElidesDefaultHTTPPort(t *testing.T) {
	r := NewRequestHandle("GET", "example.com:80", tlsstate.Disabled, nil, nil)
	if r.Authority() != "example.com" {
		t.Fatalf("expected default port elided, got %q", r.Authority())
	}
}

func TestResolveAuthorityElidesDefaultHTTPSPort(t *testing.T) {
	r := NewRequestHandle("GET", "example.com:443", tlsstate.State{Enabled: true}, nil, nil)
	if r.Authority() != "example.com" {
		t.Fatalf("expected default TLS port elided, got %q", r.Authority())
	}
}

func TestResolveAuthorityKeepsNonDefaultPort(t *testing.T) {
	r := NewRequestHandle("GET", "example.com:8443", tlsstate.State{Enabled: true}, nil, nil)
	if r.Authority() != "example.com:8443" {
		t.Fatalf("expected non-default port kept, got %q", r.Authority())
	}
}

func TestResolveAuthorityFallsBackToRemoteAddr(t *testing.T) {
	r := NewRequestHandle("GET", "", tlsstate.Disabled, nil, fakeAddr("10.0.0.1:80"))
	if r.Authority() != "10.0.0.1" {
		t.Fatalf("expected fallback remote addr authority, got %q", r.Authority())
	}
}

func TestRequestHandleSchemeAndWebSocketScheme(t *testing.T) {
	r := NewRequestHandle("GET", "example.com", tlsstate.State{Enabled: true}, nil, nil)

	if r.Scheme() != "https" {
		t.Fatalf("expected https scheme, got %q", r.Scheme())
	}
	if r.WebSocketScheme() != "wss" {
		t.Fatalf("expected wss scheme, got %q", r.WebSocketScheme())
	}
}

func TestRequestHandleHostHeaderSet(t *testing.T) {
	r := NewRequestHandle("GET", "example.com:8443", tlsstate.State{Enabled: true}, nil, nil)

	if got := r.Headers.Get("Host"); got != "example.com:8443" {
		t.Fatalf("expected Host header set to authority, got %q", got)
	}
}

func TestMarkHeadersWrittenFreezesHeaders(t *testing.T) {
	r := NewRequestHandle("GET", "example.com", tlsstate.Disabled, nil, nil)

	if r.HeadersWritten() {
		t.Fatalf("expected headers not yet written")
	}

	r.MarkHeadersWritten()

	if !r.HeadersWritten() {
		t.Fatalf("expected headers written after MarkHeadersWritten")
	}
	if err := r.Headers.Set("X-Test", "1"); err == nil {
		t.Fatalf("expected error setting header after freeze")
	}
}

func TestRequestLineRendersPath(t *testing.T) {
	r := NewRequestHandle("POST", "example.com", tlsstate.Disabled, nil, nil)
	r.Path = "items"

	if got := r.RequestLine("1.1"); got != "POST /items HTTP/1.1" {
		t.Fatalf("unexpected request line: %q", got)
	}
}

func TestRequestLinePrefersPathBuilder(t *testing.T) {
	r := NewRequestHandle("GET", "example.com", tlsstate.Disabled, nil, nil)
	r.Path = "ignored"
	r.PathBuilder = NewPathBuilder().Segment("items").RawQuery("id=1")

	if got := r.RequestLine("1.1"); got != "GET /items?id=1 HTTP/1.1" {
		t.Fatalf("unexpected request line: %q", got)
	}
}

var _ net.Addr = fakeAddr("")
