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

// Package http2 drives a single multiplexed connection over
// golang.org/x/net/http2's client primitives, exposing the same
// Send/Shutdown/ShutdownGracefully contract as the http1 engine (spec §4.1's
// "same exchange contract at interface level").
package http2

import (
	"context"
	"net"
	"net/http"

	uuid "github.com/hashicorp/go-uuid"
	"golang.org/x/net/http2"

	"github.com/nabbar/httpcore/exchange"
	"github.com/nabbar/httpcore/headers"
	"github.com/nabbar/httpcore/internal/logger"
	"github.com/nabbar/httpcore/internal/tlsstate"
)

// Connection wraps one http2.ClientConn. Unlike http1, there is no shared
// single-threaded executor to protect: every stream is independent (spec
// §5: "HTTP/2: exchanges are independent; per-stream ordering only"), so
// each Send spawns its own goroutine driving ClientConn.RoundTrip, gated by
// a semaphore sized to Config.MaxConcurrentStreams.
type Connection struct {
	conn net.Conn
	tls  tlsstate.State
	cfg  Config
	log  logger.FuncLog
	pool PoolCallbacks

	cc *http2.ClientConn

	sem chan struct{}
}

// New wraps conn (already TLS-negotiated to "h2", or already upgraded to
// cleartext h2c) into a multiplexed Connection.
func New(conn net.Conn, tls tlsstate.State, cfg Config, log logger.FuncLog, pool PoolCallbacks) (*Connection, error) {
	if pool == nil {
		pool = NoopPool
	}
	if log == nil {
		discard := logger.Discard()
		log = func() logger.Logger { return discard }
	}
	if cfg.MaxConcurrentStreams <= 0 {
		cfg.MaxConcurrentStreams = DefaultConfig().MaxConcurrentStreams
	}

	t := &http2.Transport{AllowHTTP: !tls.Enabled}
	cc, err := t.NewClientConn(conn)
	if err != nil {
		return nil, ErrClientConnSetup(err.Error())
	}

	return &Connection{
		conn: conn,
		tls:  tls,
		cfg:  cfg,
		log:  log,
		pool: pool,
		cc:   cc,
		sem:  make(chan struct{}, cfg.MaxConcurrentStreams),
	}, nil
}

// Send submits an exchange as a new HTTP/2 stream. The returned channel
// resolves exactly once, matching the rest of this module's exchange
// contract (spec §4.4/§8).
func (c *Connection) Send(ep *exchange.EndpointExchange) <-chan exchange.Result {
	id, _ := uuid.GenerateUUID()
	req := exchange.NewRequestHandle(ep.Method, ep.Authority, c.tls, c.conn.LocalAddr(), c.conn.RemoteAddr())
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
	req.Body = ep.Body

	ex := exchange.NewExchange(id, req, ep, c.inlineExecute, c.cancelStream(req))

	select {
	case c.sem <- struct{}{}:
	default:
		ex.Dispose(ErrTooManyConcurrentStreams())
		return ex.Response()
	}

	go c.roundTrip(ex, req)
	return ex.Response()
}

// inlineExecute runs fn synchronously: there is no shared connection-wide
// executor to protect here, each stream owns its own goroutine.
func (c *Connection) inlineExecute(fn func()) { fn() }

// cancelStream returns the CloseConn capability handed to req's bound
// Exchange. The returned func does nothing: on this engine Reset only marks
// and disposes the exchange; it neither cancels the stream's round trip nor
// closes the multiplexed connection (see DESIGN.md).
func (c *Connection) cancelStream(req *exchange.RequestHandle) func() error {
	return func() error { return nil }
}

func (c *Connection) roundTrip(ex *exchange.Exchange, req *exchange.RequestHandle) {
	defer func() { <-c.sem }()

	ctx := context.Background()
	if c.cfg.RequestTimeout.Time() > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.RequestTimeout.Time())
		defer cancel()
	}

	httpReq, err := c.buildRequest(ctx, req)
	if err != nil {
		ex.Dispose(err)
		return
	}

	req.MarkHeadersWritten()

	resp, err := c.cc.RoundTrip(httpReq)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			ex.Dispose(exchange.ErrRequestTimeout())
		} else {
			ex.Dispose(ErrStreamRoundTrip(err.Error()))
		}
		c.pool.OnExchangeTerminate(ex)
		return
	}

	hdr := headers.New()
	for name, values := range resp.Header {
		for _, v := range values {
			_ = hdr.Add(name, v)
		}
	}
	hdr.MarkWritten()

	respHandle := exchange.NewResponseHandle(resp.StatusCode, hdr, newBodyChunkSource(resp.Body))
	ex.Resolve(respHandle)
	c.pool.OnExchangeTerminate(ex)
}

func (c *Connection) buildRequest(ctx context.Context, req *exchange.RequestHandle) (*http.Request, error) {
	path := req.Path
	if req.PathBuilder != nil {
		path = req.PathBuilder.String()
	}
	if path == "" {
		path = "/"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.tls.HTTPScheme()+"://"+req.Authority()+path, nil)
	if err != nil {
		return nil, ErrStreamRoundTrip(err.Error())
	}

	req.Headers.Range(func(name string, values []string) bool {
		for _, v := range values {
			httpReq.Header.Add(name, v)
		}
		return true
	})
	httpReq.Host = req.Authority()

	if body := req.Body; body != nil {
		switch {
		case body.Chunks != nil:
			httpReq.Body = newChunkSourceReader(ctx, body.Chunks)
			if body.HasContentLength {
				httpReq.ContentLength = body.ContentLength
			} else {
				httpReq.ContentLength = -1
			}
		case body.FileRegions != nil:
			// HTTP/2 has no zero-copy file-region primitive in
			// golang.org/x/net/http2's client API: stream it as a
			// plain reader instead of the file-region fast path
			// http1 uses.
			httpReq.Body = newFileRegionReader(ctx, body.FileRegions)
			if body.HasContentLength {
				httpReq.ContentLength = body.ContentLength
			}
		}
	}

	return httpReq, nil
}

// CanTakeNewRequest reports whether this connection is still accepting
// streams (not GOAWAY'd, under its configured stream cap).
func (c *Connection) CanTakeNewRequest() bool { return c.cc.CanTakeNewRequest() }

// Shutdown closes the connection immediately, failing any in-flight streams.
func (c *Connection) Shutdown() {
	_ = c.cc.Close()
	c.pool.OnClose()
}

// ShutdownGracefully waits for in-flight streams to complete (bounded by
// Config.GracefulShutdownTimeout), then closes the connection.
func (c *Connection) ShutdownGracefully() {
	deadline := c.cfg.GracefulShutdownTimeout.Time()
	ctx := context.Background()
	if deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, deadline)
		defer cancel()
	}
	_ = c.cc.Shutdown(ctx)
	c.pool.OnClose()
}
