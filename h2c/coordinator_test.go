/*
MIT License

Copyright (c) 2025 Nicolas JUHEL

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
*/

package h2c

import (
	"bufio"
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"golang.org/x/net/http2"

	"github.com/nabbar/httpcore/exchange"
)

func pipePair(t *testing.T) (net.Conn, net.Conn) {
	t.Helper()
	a, b := net.Pipe()
	t.Cleanup(func() { _ = a.Close(); _ = b.Close() })
	return a, b
}

// readRequestHead drains a request line and headers up to the blank line,
// returning the parsed header lines (request line included at index 0).
func readRequestHead(t *testing.T, br *bufio.Reader) []string {
	t.Helper()
	var lines []string
	for {
		line, err := br.ReadString('\n')
		if err != nil {
			t.Fatalf("reading request head: %v", err)
		}
		trimmed := strings.TrimRight(line, "\r\n")
		if trimmed == "" {
			break
		}
		lines = append(lines, trimmed)
	}
	return lines
}

func TestCoordinatorAcceptedUpgradePromotesToHTTP2(t *testing.T) {
	client, server := pipePair(t)

	go func() {
		br := bufio.NewReader(server)
		lines := readRequestHead(t, br)

		found := false
		for _, l := range lines {
			if strings.EqualFold(l, "Upgrade: h2c") {
				found = true
			}
		}
		if !found {
			t.Errorf("expected Upgrade: h2c header in request, got %v", lines)
		}

		_, _ = server.Write([]byte("HTTP/1.1 101 Switching Protocols\r\nUpgrade: h2c\r\nConnection: Upgrade\r\n\r\n"))

		h2s := &http2.Server{}
		h2s.ServeConn(server, &http2.ServeConnOpts{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Upgraded", "yes")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("promoted"))
		})})
	}()

	coord := New(client, DefaultConfig(), nil, nil)
	ep := exchange.NewEndpointExchange("GET", "/hello")

	select {
	case res := <-coord.Send(ep):
		if res.Err != nil {
			t.Fatalf("unexpected error: %v", res.Err)
		}
		if res.Response.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want 200", res.Response.StatusCode)
		}
		if got := res.Response.Headers.Get("X-Upgraded"); got != "yes" {
			t.Fatalf("X-Upgraded header = %q", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("exchange never resolved")
	}

	if coord.State() != StateCompleted {
		t.Fatalf("state = %v, want completed", coord.State())
	}
}

func TestCoordinatorRejectedUpgradeDeliversNormalResponse(t *testing.T) {
	client, server := pipePair(t)

	go func() {
		br := bufio.NewReader(server)
		readRequestHead(t, br)
		_, _ = server.Write([]byte("HTTP/1.1 200 OK\r\nContent-Length: 5\r\n\r\nhello"))
	}()

	coord := New(client, DefaultConfig(), nil, nil)
	ep := exchange.NewEndpointExchange("GET", "/hello")

	select {
	case res := <-coord.Send(ep):
		if res.Err != nil {
			t.Fatalf("unexpected error: %v", res.Err)
		}
		if res.Response.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want 200", res.Response.StatusCode)
		}

		var body []byte
		for {
			c, err := res.Response.Body.Next(context.Background())
			if err == io.EOF {
				break
			}
			if err != nil {
				t.Fatalf("reading body: %v", err)
			}
			body = append(body, c.Data...)
			c.Release()
		}
		if string(body) != "hello" {
			t.Fatalf("body = %q, want %q", body, "hello")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("exchange never resolved")
	}

	if coord.State() != StateCompleted {
		t.Fatalf("state = %v, want completed", coord.State())
	}
	if coord.MaxConcurrentRequests() != DefaultConfig().HTTP1.MaxConcurrentRequests {
		t.Fatalf("expected the fallback HTTP/1.x concurrency limit after rejection")
	}
}
