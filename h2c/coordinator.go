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
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	uuid "github.com/hashicorp/go-uuid"

	"github.com/nabbar/httpcore/exchange"
	"github.com/nabbar/httpcore/headers"
	"github.com/nabbar/httpcore/http1"
	"github.com/nabbar/httpcore/http2"
	libatm "github.com/nabbar/httpcore/internal/atomic"
	"github.com/nabbar/httpcore/internal/logger"
	"github.com/nabbar/httpcore/internal/tlsstate"
	"github.com/nabbar/httpcore/transport"
)

// Coordinator drives exactly one first exchange over a cleartext connection,
// deciding whether the peer accepts the h2c upgrade. Every later Send is
// delegated to whichever engine the coordinator settled on (spec §4.2: "on
// rejection, handle as normal HTTP/1.x... notify pool onUpgrade(self)").
//
// There is no TLS path here: ALPN-negotiated HTTP/2 never goes through this
// package, since the upgrade dance only exists for cleartext connections.
type Coordinator struct {
	conn net.Conn
	cfg  Config
	log  logger.FuncLog
	pool PoolCallbacks

	state libatm.Value[State]

	mu        sync.Mutex
	upgrading bool
	promoted  *http2.Connection
	fallback  *http1.Connection
}

// New wraps an already-dialed cleartext conn, ready to drive the first
// exchange through the upgrade dance.
func New(conn net.Conn, cfg Config, log logger.FuncLog, pool PoolCallbacks) *Coordinator {
	if pool == nil {
		pool = NoopPool
	}
	if log == nil {
		discard := logger.Discard()
		log = func() logger.Logger { return discard }
	}
	if cfg.MaxBufferedBytes <= 0 {
		cfg.MaxBufferedBytes = defaultMaxBufferedBytes
	}

	c := &Coordinator{conn: conn, cfg: cfg, log: log, pool: pool, state: libatm.NewValue[State]()}
	c.state.SetDefaultLoad(StateStarted)
	return c
}

// State reports the coordinator's current position in the upgrade dance.
func (c *Coordinator) State() State { return c.state.Load() }

// MaxConcurrentRequests reports 1 until the coordinator settles, per spec
// §4.2, then whatever the settled engine supports.
func (c *Coordinator) MaxConcurrentRequests() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case c.promoted != nil:
		return c.cfg.HTTP2.MaxConcurrentStreams
	case c.fallback != nil:
		return c.cfg.HTTP1.MaxConcurrentRequests
	default:
		return 1
	}
}

// Send submits ep. The very first call drives the upgrade dance; every call
// after the coordinator has settled is delegated to the live engine.
func (c *Coordinator) Send(ep *exchange.EndpointExchange) <-chan exchange.Result {
	c.mu.Lock()
	switch {
	case c.promoted != nil:
		p := c.promoted
		c.mu.Unlock()
		return p.Send(ep)
	case c.fallback != nil:
		f := c.fallback
		c.mu.Unlock()
		return f.Send(ep)
	case c.upgrading:
		c.mu.Unlock()
		out := make(chan exchange.Result, 1)
		out <- exchange.Result{Err: exchange.ErrConnectionClosed()}
		return out
	}
	c.upgrading = true
	c.mu.Unlock()

	id, _ := uuid.GenerateUUID()
	req := exchange.NewRequestHandle(ep.Method, ep.Authority, tlsstate.Disabled, c.conn.LocalAddr(), c.conn.RemoteAddr())
	req.Path = ep.Path
	req.PathBuilder = ep.PathBuilder
	if ep.Headers != nil {
		ep.Headers.Range(func(name string, values []string) bool {
			if name == "Host" {
				return true
			}
			for _, v := range values {
				_ = req.Headers.Add(name, v)
			}
			return true
		})
	}

	ex := exchange.NewExchange(id, req, ep, func(fn func()) { fn() }, c.conn.Close)
	go c.negotiate(ex, req, ep)
	return ex.Response()
}

// Shutdown tears down whichever engine is live, or the raw conn if the
// upgrade never settled.
func (c *Coordinator) Shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case c.promoted != nil:
		c.promoted.Shutdown()
	case c.fallback != nil:
		c.fallback.Shutdown()
	default:
		_ = c.conn.Close()
	}
}

// ShutdownGracefully delegates to the settled engine's own graceful drain;
// before settling, it behaves like Shutdown since there is no in-flight
// exchange queue to drain yet (only the single upgrade exchange, already
// tracked by negotiate's own timeout).
func (c *Coordinator) ShutdownGracefully() {
	c.mu.Lock()
	p, f := c.promoted, c.fallback
	c.mu.Unlock()

	switch {
	case p != nil:
		p.ShutdownGracefully()
	case f != nil:
		f.ShutdownGracefully()
	default:
		_ = c.conn.Close()
	}
}

// negotiate drives the single upgrade exchange over the wire and resolves ex
// with whatever it settles on: a promoted HTTP/2 response, or the real
// response to a rejected upgrade (spec §4.2).
func (c *Coordinator) negotiate(ex *exchange.Exchange, req *exchange.RequestHandle, ep *exchange.EndpointExchange) {
	_ = req.Headers.Set("Connection", "Upgrade, HTTP2-Settings")
	_ = req.Headers.Set("Upgrade", "h2c")
	_ = req.Headers.Set("HTTP2-Settings", encodeSettings(c.cfg.HTTP2.MaxConcurrentStreams))
	_ = req.Headers.Set("Content-Length", "0")

	bw := bufio.NewWriter(c.conn)
	_, _ = bw.WriteString(req.RequestLine("1.1"))
	_, _ = bw.Write([]byte("\r\n"))
	_, _ = bw.Write(req.Headers.WriteTo(nil))
	_, _ = bw.Write([]byte("\r\n"))
	req.MarkHeadersWritten()

	if err := bw.Flush(); err != nil {
		c.fail(ex, exchange.ErrConnectionClosed())
		return
	}

	if deadline := c.cfg.RequestTimeout.Time(); deadline > 0 {
		_ = c.conn.SetReadDeadline(time.Now().Add(deadline))
		defer func() { _ = c.conn.SetReadDeadline(time.Time{}) }()
	}

	br := bufio.NewReader(c.conn)
	status, hdr, err := http1.ParseResponseHead(br)
	if err != nil {
		c.fail(ex, exchange.ErrProtocolError(err.Error()))
		return
	}

	c.state.Store(StateReceived)

	if status != http.StatusSwitchingProtocols {
		c.settleRejected(ex, status, hdr, br)
		return
	}

	if headers.Upgrade(hdr) != "h2c" {
		c.fail(ex, exchange.ErrHttpClientUpgrade())
		return
	}
	if !containsToken(headers.ConnectionTokens(hdr), "upgrade") {
		c.fail(ex, exchange.ErrHttpClientUpgrade())
		return
	}

	c.state.Store(StateFullyReceived)

	prefix, perr := bufferedPrefix(br, c.cfg.MaxBufferedBytes)
	if perr != nil {
		c.fail(ex, perr)
		return
	}

	c.state.Store(StatePrepared)

	conn := &prefixConn{Conn: c.conn, prefix: prefix}
	h2, err := http2.New(conn, tlsstate.Disabled, c.cfg.HTTP2, c.log, c.pool)
	if err != nil {
		c.fail(ex, err)
		return
	}

	c.mu.Lock()
	c.promoted = h2
	c.upgrading = false
	c.mu.Unlock()

	c.state.Store(StateCompleted)
	c.pool.OnUpgrade(h2)

	// Stream 1's reservation (RFC 7540 §3.2) is outside what
	// golang.org/x/net/http2's client API exposes: it has no hook to resume a
	// ClientConn with a request already considered "sent". The original
	// exchange is resubmitted as a fresh stream on the promoted connection
	// instead (see DESIGN.md).
	res := <-h2.Send(ep)
	if res.Err != nil {
		ex.Dispose(res.Err)
		return
	}
	ex.Resolve(res.Response)
}

// settleRejected treats a non-101 response as the real, final answer to ep
// and keeps the connection on HTTP/1.x for everything after it (spec §4.2).
func (c *Coordinator) settleRejected(ex *exchange.Exchange, status int, hdr *headers.Headers, br *bufio.Reader) {
	body, err := readResponseBody(br, status, hdr, c.cfg.MaxBufferedBytes)
	if err != nil {
		c.fail(ex, err)
		return
	}

	prefix, perr := bufferedPrefix(br, c.cfg.MaxBufferedBytes)
	if perr != nil {
		c.fail(ex, perr)
		return
	}

	resp := exchange.NewResponseHandle(status, hdr, exchange.SliceChunkSource([][]byte{body}))

	conn := &prefixConn{Conn: c.conn, prefix: prefix}
	tr := transport.NewNetConn(conn)
	fallback := http1.New(tr, c.cfg.HTTP1, c.log, c.pool)

	c.mu.Lock()
	c.fallback = fallback
	c.upgrading = false
	c.mu.Unlock()

	c.state.Store(StateCompleted)
	c.pool.OnUpgrade(c)

	ex.Resolve(resp)
}

func (c *Coordinator) fail(ex *exchange.Exchange, err error) {
	c.mu.Lock()
	c.upgrading = false
	c.mu.Unlock()

	ex.Dispose(err)
	c.pool.OnError(err)
}

func containsToken(tokens []string, want string) bool {
	for _, t := range tokens {
		if strings.EqualFold(t, want) {
			return true
		}
	}
	return false
}
