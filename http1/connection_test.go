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

package http1

import (
	"bufio"
	"context"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/nabbar/httpcore/exchange"
	"github.com/nabbar/httpcore/internal/duration"
	liberr "github.com/nabbar/httpcore/internal/errors"
	"github.com/nabbar/httpcore/transport"
)

func pipePair(t *testing.T) (net.Conn, net.Conn) {
	t.Helper()
	a, b := net.Pipe()
	t.Cleanup(func() { _ = a.Close(); _ = b.Close() })
	return a, b
}

// readRequestHead reads a request line and header block (up to the blank
// line) off br, returning the request line and the headers keyed by name.
func readRequestHead(t *testing.T, br *bufio.Reader) (string, map[string]string) {
	t.Helper()

	line, err := br.ReadString('\n')
	if err != nil {
		t.Fatalf("reading request line: %v", err)
	}
	reqLine := strings.TrimRight(line, "\r\n")

	hdr := map[string]string{}
	for {
		l, err := br.ReadString('\n')
		if err != nil {
			t.Fatalf("reading header line: %v", err)
		}
		l = strings.TrimRight(l, "\r\n")
		if l == "" {
			break
		}
		idx := strings.IndexByte(l, ':')
		if idx < 0 {
			t.Fatalf("malformed header line: %q", l)
		}
		hdr[strings.TrimSpace(l[:idx])] = strings.TrimSpace(l[idx+1:])
	}

	return reqLine, hdr
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.RequestTimeout = duration.Seconds(5)
	return cfg
}

func TestConnectionRoundTripContentLength(t *testing.T) {
	a, b := pipePair(t)
	tr := transport.NewNetConn(a)
	conn := New(tr, testConfig(), nil, nil)

	ep := exchange.NewEndpointExchange("GET", "/hello")
	ep.Authority = "example.com"
	respCh := conn.Send(ep)

	br := bufio.NewReader(b)
	reqLine, hdr := readRequestHead(t, br)

	if reqLine != "GET /hello HTTP/1.1" {
		t.Fatalf("unexpected request line: %q", reqLine)
	}
	if hdr["Host"] != "example.com" {
		t.Fatalf("unexpected Host header: %q", hdr["Host"])
	}
	if hdr["Content-Length"] != "0" {
		t.Fatalf("expected Content-Length: 0 for bodyless request, got %q", hdr["Content-Length"])
	}

	if _, err := b.Write([]byte("HTTP/1.1 200 OK\r\nContent-Length: 5\r\n\r\nhello")); err != nil {
		t.Fatalf("writing response: %v", err)
	}

	select {
	case res := <-respCh:
		if res.Err != nil {
			t.Fatalf("unexpected exchange error: %v", res.Err)
		}
		if res.Response.StatusCode != 200 {
			t.Fatalf("unexpected status: %d", res.Response.StatusCode)
		}
		chunk, err := res.Response.Body.Next(context.Background())
		if err != nil {
			t.Fatalf("unexpected body error: %v", err)
		}
		if string(chunk.Data) != "hello" {
			t.Fatalf("unexpected body: %q", chunk.Data)
		}
		if _, err := res.Response.Body.Next(context.Background()); err == nil {
			t.Fatalf("expected EOF after single body chunk")
		}
	case <-time.After(time.Second):
		t.Fatalf("response never delivered")
	}
}

func TestConnectionPipelinesSecondRequestBeforeFirstResponse(t *testing.T) {
	a, b := pipePair(t)
	tr := transport.NewNetConn(a)
	conn := New(tr, testConfig(), nil, nil)

	ep1 := exchange.NewEndpointExchange("GET", "/one")
	ep2 := exchange.NewEndpointExchange("GET", "/two")
	res1Ch := conn.Send(ep1)
	res2Ch := conn.Send(ep2)

	br := bufio.NewReader(b)

	line1, _ := readRequestHead(t, br)
	if line1 != "GET /one HTTP/1.1" {
		t.Fatalf("unexpected first request line: %q", line1)
	}
	line2, _ := readRequestHead(t, br)
	if line2 != "GET /two HTTP/1.1" {
		t.Fatalf("unexpected second request line: %q", line2)
	}

	if _, err := b.Write([]byte("HTTP/1.1 200 OK\r\nContent-Length: 0\r\n\r\n")); err != nil {
		t.Fatalf("writing first response: %v", err)
	}
	if _, err := b.Write([]byte("HTTP/1.1 200 OK\r\nContent-Length: 0\r\n\r\n")); err != nil {
		t.Fatalf("writing second response: %v", err)
	}

	select {
	case res := <-res1Ch:
		if res.Err != nil {
			t.Fatalf("unexpected error on first exchange: %v", res.Err)
		}
	case <-time.After(time.Second):
		t.Fatalf("first response never delivered")
	}

	select {
	case res := <-res2Ch:
		if res.Err != nil {
			t.Fatalf("unexpected error on second exchange: %v", res.Err)
		}
	case <-time.After(time.Second):
		t.Fatalf("second response never delivered")
	}
}

func TestConnectionWritesChunkedRequestBody(t *testing.T) {
	a, b := pipePair(t)
	tr := transport.NewNetConn(a)
	conn := New(tr, testConfig(), nil, nil)

	ep := exchange.NewEndpointExchange("POST", "/upload")
	ep.Body = exchange.NewChunkBody(exchange.SliceChunkSource([][]byte{[]byte("ab"), []byte("cd")}), false)
	respCh := conn.Send(ep)

	br := bufio.NewReader(b)
	_, hdr := readRequestHead(t, br)
	if hdr["Transfer-Encoding"] != "chunked" {
		t.Fatalf("expected chunked transfer-encoding, got headers: %v", hdr)
	}

	var body strings.Builder
	for {
		sizeLine, err := br.ReadString('\n')
		if err != nil {
			t.Fatalf("reading chunk size: %v", err)
		}
		sizeLine = strings.TrimRight(sizeLine, "\r\n")
		size, err := strconv.ParseUint(sizeLine, 16, 64)
		if err != nil {
			t.Fatalf("bad chunk size %q: %v", sizeLine, err)
		}
		if size == 0 {
			// trailer block: just the blank line in this test.
			if _, err := br.ReadString('\n'); err != nil {
				t.Fatalf("reading trailer blank line: %v", err)
			}
			break
		}
		buf := make([]byte, size)
		if _, err := io.ReadFull(br, buf); err != nil {
			t.Fatalf("reading chunk data: %v", err)
		}
		body.Write(buf)
		if _, err := br.Discard(2); err != nil {
			t.Fatalf("discarding chunk CRLF: %v", err)
		}
	}

	if body.String() != "abcd" {
		t.Fatalf("unexpected reconstructed body: %q", body.String())
	}

	if _, err := b.Write([]byte("HTTP/1.1 200 OK\r\nContent-Length: 0\r\n\r\n")); err != nil {
		t.Fatalf("writing response: %v", err)
	}

	select {
	case res := <-respCh:
		if res.Err != nil {
			t.Fatalf("unexpected exchange error: %v", res.Err)
		}
	case <-time.After(time.Second):
		t.Fatalf("response never delivered")
	}
}

// TestConnectionHonorsPresetContentLengthOverMultipleChunks guards the other
// half of step 2's framing choice: a caller that already knows the total
// size and declares it up front must get Content-Length framing even when
// the body arrives as more than one chunk, never Transfer-Encoding: chunked.
func TestConnectionHonorsPresetContentLengthOverMultipleChunks(t *testing.T) {
	a, b := pipePair(t)
	tr := transport.NewNetConn(a)
	conn := New(tr, testConfig(), nil, nil)

	body := exchange.NewChunkBody(exchange.SliceChunkSource([][]byte{[]byte("ab"), []byte("cd")}), false)
	body.HasContentLength = true
	body.ContentLength = 4

	ep := exchange.NewEndpointExchange("POST", "/upload")
	ep.Body = body
	respCh := conn.Send(ep)

	br := bufio.NewReader(b)
	_, hdr := readRequestHead(t, br)
	if hdr["Transfer-Encoding"] == "chunked" {
		t.Fatalf("expected Content-Length framing, got chunked transfer-encoding: %v", hdr)
	}
	if hdr["Content-Length"] != "4" {
		t.Fatalf("unexpected Content-Length: %q", hdr["Content-Length"])
	}

	buf := make([]byte, 4)
	if _, err := io.ReadFull(br, buf); err != nil {
		t.Fatalf("reading body: %v", err)
	}
	if string(buf) != "abcd" {
		t.Fatalf("unexpected body: %q", buf)
	}

	if _, err := b.Write([]byte("HTTP/1.1 200 OK\r\nContent-Length: 0\r\n\r\n")); err != nil {
		t.Fatalf("writing response: %v", err)
	}

	select {
	case res := <-respCh:
		if res.Err != nil {
			t.Fatalf("unexpected exchange error: %v", res.Err)
		}
	case <-time.After(time.Second):
		t.Fatalf("response never delivered")
	}
}

func TestConnectionWritesFileRegionRequestBody(t *testing.T) {
	a, b := pipePair(t)
	tr := transport.NewNetConn(a)
	conn := New(tr, testConfig(), nil, nil)

	f, err := os.CreateTemp(t.TempDir(), "body")
	if err != nil {
		t.Fatalf("tempfile: %v", err)
	}
	defer f.Close()
	if _, err := f.WriteString("payload-bytes"); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	src := exchange.NewFileRegionSource(f, 0, int64(len("payload-bytes")))
	ep := exchange.NewEndpointExchange("PUT", "/file")
	ep.Body = exchange.NewFileRegionBody(src, int64(len("payload-bytes")))
	respCh := conn.Send(ep)

	br := bufio.NewReader(b)
	_, hdr := readRequestHead(t, br)
	if hdr["Content-Length"] != strconv.Itoa(len("payload-bytes")) {
		t.Fatalf("unexpected Content-Length: %q", hdr["Content-Length"])
	}

	buf := make([]byte, len("payload-bytes"))
	if _, err := io.ReadFull(br, buf); err != nil {
		t.Fatalf("reading body: %v", err)
	}
	if string(buf) != "payload-bytes" {
		t.Fatalf("unexpected body: %q", buf)
	}

	if _, err := b.Write([]byte("HTTP/1.1 200 OK\r\nContent-Length: 0\r\n\r\n")); err != nil {
		t.Fatalf("writing response: %v", err)
	}

	select {
	case res := <-respCh:
		if res.Err != nil {
			t.Fatalf("unexpected exchange error: %v", res.Err)
		}
	case <-time.After(time.Second):
		t.Fatalf("response never delivered")
	}
}

func TestConnectionClosesOnConnectionCloseResponse(t *testing.T) {
	a, b := pipePair(t)
	tr := transport.NewNetConn(a)

	closed := make(chan struct{})
	tr.OnInactive(func() { close(closed) })

	conn := New(tr, testConfig(), nil, nil)

	ep := exchange.NewEndpointExchange("GET", "/bye")
	respCh := conn.Send(ep)

	br := bufio.NewReader(b)
	readRequestHead(t, br)

	if _, err := b.Write([]byte("HTTP/1.1 200 OK\r\nConnection: close\r\nContent-Length: 0\r\n\r\n")); err != nil {
		t.Fatalf("writing response: %v", err)
	}

	select {
	case res := <-respCh:
		if res.Err != nil {
			t.Fatalf("unexpected exchange error: %v", res.Err)
		}
	case <-time.After(time.Second):
		t.Fatalf("response never delivered")
	}

	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatalf("expected connection to close after Connection: close response")
	}
}

func TestConnectionShutdownDisposesQueuedExchanges(t *testing.T) {
	a, b := pipePair(t)
	go io.Copy(io.Discard, b) //nolint:errcheck // drain so the request write doesn't block the executor

	tr := transport.NewNetConn(a)
	conn := New(tr, testConfig(), nil, nil)

	ep := exchange.NewEndpointExchange("GET", "/pending")
	respCh := conn.Send(ep)

	conn.Shutdown()

	select {
	case res := <-respCh:
		if res.Err == nil {
			t.Fatalf("expected queued exchange to be disposed with an error on shutdown")
		}
	case <-time.After(time.Second):
		t.Fatalf("exchange was never resolved by Shutdown")
	}
}

func TestConnectionShutdownGracefullyWithEmptyQueueReturnsImmediately(t *testing.T) {
	a, _ := pipePair(t)
	tr := transport.NewNetConn(a)
	conn := New(tr, testConfig(), nil, nil)

	done := make(chan struct{})
	go func() {
		conn.ShutdownGracefully()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("ShutdownGracefully with no pending exchanges should return promptly")
	}
}

func TestConnectionRequestTimeoutDisposesExchange(t *testing.T) {
	a, b := pipePair(t)
	go io.Copy(io.Discard, b) //nolint:errcheck // drain so the request write doesn't block the executor

	tr := transport.NewNetConn(a)

	cfg := DefaultConfig()
	cfg.RequestTimeout = duration.ParseDuration(50 * time.Millisecond)

	conn := New(tr, cfg, nil, nil)

	ep := exchange.NewEndpointExchange("GET", "/slow")
	respCh := conn.Send(ep)

	select {
	case res := <-respCh:
		if res.Err == nil {
			t.Fatalf("expected a timeout error")
		}
		// The exchange must be disposed with the timeout cause itself, not a
		// generic ConnectionClosed substituted in by the teardown path.
		libErr, ok := res.Err.(liberr.Error)
		if !ok || !libErr.IsCode(exchange.KindRequestTimeout) {
			t.Fatalf("expected RequestTimeout, got: %v", res.Err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("exchange was never timed out")
	}
}

// TestConnectionForceShutdownPropagatesCauseToQueuedExchanges guards against
// forceShutdown substituting a fixed ConnectionClosed cause when disposing
// the rest of the queue: every still-queued exchange must resolve with the
// cause that actually triggered the teardown.
func TestConnectionForceShutdownPropagatesCauseToQueuedExchanges(t *testing.T) {
	a, b := pipePair(t)
	go io.Copy(io.Discard, b) //nolint:errcheck // drain so both requests flush without blocking the executor

	tr := transport.NewNetConn(a)

	cfg := DefaultConfig()
	cfg.RequestTimeout = duration.ParseDuration(50 * time.Millisecond)

	conn := New(tr, cfg, nil, nil)

	first := conn.Send(exchange.NewEndpointExchange("GET", "/first"))
	second := conn.Send(exchange.NewEndpointExchange("GET", "/second"))

	for _, respCh := range []<-chan exchange.Result{first, second} {
		select {
		case res := <-respCh:
			if res.Err == nil {
				t.Fatalf("expected a timeout error")
			}
			libErr, ok := res.Err.(liberr.Error)
			if !ok || !libErr.IsCode(exchange.KindRequestTimeout) {
				t.Fatalf("expected both queued exchanges disposed with RequestTimeout, got: %v", res.Err)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("exchange was never timed out")
		}
	}
}
