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

// Package http1 drives sequential HTTP/1.0 and HTTP/1.1 request/response
// exchanges over a single transport.Transport, with pipelining, per-exchange
// timeouts and graceful shutdown.
package http1

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"time"

	uuid "github.com/hashicorp/go-uuid"

	"github.com/nabbar/httpcore/exchange"
	"github.com/nabbar/httpcore/headers"
	"github.com/nabbar/httpcore/internal/logger"
	"github.com/nabbar/httpcore/transport"
)

// transportWriter adapts transport.Transport's callback-based WriteFrame to a
// plain io.Writer so bufio.Writer can buffer request bytes across several
// framing decisions before a single flush.
type transportWriter struct{ tr transport.Transport }

func (w transportWriter) Write(p []byte) (int, error) {
	var n int
	var err error
	w.tr.WriteFrame(p, func(nn int, e error) { n, err = nn, e })
	return n, err
}

// Connection is the HTTP/1.x engine bound to one transport.Transport. All of
// its mutable state (queue, flags, timer) is touched only from within the
// transport's connection executor; Send is the only method safe to call from
// any goroutine.
type Connection struct {
	tr   transport.Transport
	cfg  Config
	log  logger.FuncLog
	pool PoolCallbacks

	br *bufio.Reader
	bw *bufio.Writer

	head       *exchange.Exchange
	tail       *exchange.Exchange
	requesting *exchange.Exchange
	responding *exchange.Exchange

	closing bool
	closed  bool

	timeoutTimer *time.Timer
	gracefulDone chan struct{}
}

// New binds a Connection to tr. pool may be http1.NoopPool when the caller
// manages its own lifecycle outside any endpoint pool.
func New(tr transport.Transport, cfg Config, log logger.FuncLog, pool PoolCallbacks) *Connection {
	if pool == nil {
		pool = NoopPool
	}
	if log == nil {
		discard := logger.Discard()
		log = func() logger.Logger { return discard }
	}

	c := &Connection{
		tr:   tr,
		cfg:  cfg,
		log:  log,
		pool: pool,
		br:   bufio.NewReader(tr),
		bw:   bufio.NewWriter(transportWriter{tr}),
	}

	go c.readLoop()
	return c
}

// Send registers endpoint_exchange for dispatch and returns its one-shot
// response channel (spec §4.1 "send(endpoint_exchange)").
func (c *Connection) Send(ep *exchange.EndpointExchange) <-chan exchange.Result {
	id, _ := uuid.GenerateUUID()

	req := exchange.NewRequestHandle(ep.Method, ep.Authority, c.tr.TLSState(), c.tr.LocalAddr(), c.tr.RemoteAddr())
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

	ex := exchange.NewExchange(id, req, ep, c.tr.Execute, c.tr.Close)

	c.tr.Execute(func() {
		if c.closing || c.closed {
			ex.Dispose(exchange.ErrConnectionClosed())
			return
		}
		c.enqueue(ex)
	})

	return ex.Response()
}

// Shutdown forcibly closes the connection, disposing every still-registered
// exchange with ConnectionClosed. Idempotent.
func (c *Connection) Shutdown() {
	c.tr.Execute(func() {
		c.drainAndClose()
	})
}

// ShutdownGracefully stops accepting new work implicitly (callers should stop
// calling Send) and waits for the queue to drain, up to the configured
// graceful timeout, before forcing a close.
func (c *Connection) ShutdownGracefully() {
	done := make(chan struct{})

	c.tr.Execute(func() {
		if c.closed {
			close(done)
			return
		}
		c.closing = true
		if c.head == nil {
			c.closeNow()
			close(done)
			return
		}
		c.gracefulDone = done
	})

	deadline := c.cfg.GracefulShutdownTimeout.Time()
	if deadline <= 0 {
		<-done
		return
	}

	select {
	case <-done:
	case <-time.After(deadline):
		c.Shutdown()
	}
}

func (c *Connection) enqueue(ex *exchange.Exchange) {
	if c.tail == nil {
		c.head, c.tail = ex, ex
	} else {
		c.tail.Next = ex
		c.tail = ex
	}

	if c.requesting == nil {
		c.start(ex)
	}
}

// start begins sending ex's request. If ex has already sat in the queue
// longer than the configured timeout (a slow pipeline), it is disposed
// without ever touching the wire (spec §4.1 step 1).
func (c *Connection) start(ex *exchange.Exchange) {
	if c.cfg.RequestTimeout > 0 && ex.Age() >= c.cfg.RequestTimeout.Time() {
		c.unlink(ex)
		ex.Dispose(exchange.ErrRequestTimeout())
		return
	}

	c.requesting = ex
	if c.responding == nil {
		c.responding = ex
		c.armTimeoutFor(ex)
	}

	c.writeRequest(ex)
}

// writeRequest renders the request line, headers and body onto the buffered
// writer and flushes once. Chunk sources are pulled synchronously: this
// engine targets in-memory/file-backed bodies, whose Next calls never block
// on external I/O, so there is no need to hop off the connection executor
// while draining one (a source that does block would stall the executor,
// same as a slow handler would in any single-threaded reactor).
func (c *Connection) writeRequest(ex *exchange.Exchange) {
	req := ex.Request
	ctx := context.Background()

	_, _ = c.bw.WriteString(req.RequestLine("1.1"))
	_, _ = c.bw.Write(crlf)
	_, _ = c.bw.Write(req.Headers.WriteTo(nil))

	body := req.Body

	switch {
	case body == nil:
		_, _ = c.bw.WriteString("Content-Length: 0\r\n\r\n")
		req.MarkHeadersWritten()
		c.finishRequest(ex, nil)

	case body.FileRegions != nil:
		if body.HasContentLength {
			_, _ = fmt.Fprintf(c.bw, "Content-Length: %d\r\n", body.ContentLength)
		}
		_, _ = c.bw.Write(crlf)
		req.MarkHeadersWritten()
		if err := c.bw.Flush(); err != nil {
			c.finishRequest(ex, err)
			return
		}
		c.writeFileRegions(ex, body.FileRegions, ctx)

	default:
		c.writeChunkSourceBody(ex, body, ctx)
	}
}

func (c *Connection) writeFileRegions(ex *exchange.Exchange, src exchange.FileRegionSource, ctx context.Context) {
	region, err := src.Next(ctx)
	if err == io.EOF {
		_ = src.Close()
		c.finishRequest(ex, nil)
		return
	}
	if err != nil {
		_ = src.Close()
		c.finishRequest(ex, err)
		return
	}

	c.tr.WriteFileRegion(region, func(n int, werr error) {
		c.tr.Execute(func() {
			if werr != nil {
				_ = src.Close()
				c.finishRequest(ex, werr)
				return
			}
			c.writeFileRegions(ex, src, ctx)
		})
	})
}

// writeChunkSourceBody implements spec §4.1 step 2's dynamic framing choice:
// a single emitted chunk becomes a Content-Length body; two or more switch
// to chunked transfer-encoding, unless the caller already declared a
// Content-Length, in which case the declared length is honored instead.
func (c *Connection) writeChunkSourceBody(ex *exchange.Exchange, body *exchange.RequestBody, ctx context.Context) {
	req := ex.Request

	first, err := body.Chunks.Next(ctx)
	if err == io.EOF {
		_, _ = c.bw.WriteString("Content-Length: 0\r\n\r\n")
		req.MarkHeadersWritten()
		c.finishRequest(ex, nil)
		return
	}
	if err != nil {
		req.MarkHeadersWritten()
		c.finishRequest(ex, err)
		return
	}

	second, err2 := body.Chunks.Next(ctx)
	if err2 == io.EOF {
		_, _ = fmt.Fprintf(c.bw, "Content-Length: %d\r\n\r\n", len(first.Data))
		_, werr := c.bw.Write(first.Data)
		first.Release()
		req.MarkHeadersWritten()
		c.finishRequest(ex, werr)
		return
	}
	if err2 != nil {
		first.Release()
		req.MarkHeadersWritten()
		c.finishRequest(ex, err2)
		return
	}

	// A second chunk arriving normally switches to chunked transfer-encoding,
	// unless the caller already declared a Content-Length (spec §4.1 step 2:
	// "switch to chunked transfer-encoding unless content-length is already
	// set") - e.g. a multi-emission body whose total size was known upfront.
	if body.HasContentLength {
		c.writeFixedLengthMultiChunkBody(ex, body, first, second, ctx)
		return
	}

	_, _ = c.bw.WriteString("Transfer-Encoding: chunked\r\n\r\n")
	req.MarkHeadersWritten()

	cw := newChunkWriter(c.bw)
	if werr := cw.writeChunk(first.Data); werr != nil {
		first.Release()
		second.Release()
		c.finishRequest(ex, werr)
		return
	}
	first.Release()

	if werr := cw.writeChunk(second.Data); werr != nil {
		second.Release()
		c.finishRequest(ex, werr)
		return
	}
	second.Release()

	for {
		chunk, err := body.Chunks.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			c.finishRequest(ex, err)
			return
		}
		if werr := cw.writeChunk(chunk.Data); werr != nil {
			chunk.Release()
			c.finishRequest(ex, werr)
			return
		}
		chunk.Release()
	}

	werr := cw.writeLast(nil)
	c.finishRequest(ex, werr)
}

// writeFixedLengthMultiChunkBody writes a Content-Length framed body whose
// data arrives as more than one chunk, trusting the caller's declared
// length rather than switching to chunked transfer-encoding.
func (c *Connection) writeFixedLengthMultiChunkBody(ex *exchange.Exchange, body *exchange.RequestBody, first, second *exchange.Chunk, ctx context.Context) {
	req := ex.Request

	_, _ = fmt.Fprintf(c.bw, "Content-Length: %d\r\n\r\n", body.ContentLength)
	req.MarkHeadersWritten()

	if _, werr := c.bw.Write(first.Data); werr != nil {
		first.Release()
		second.Release()
		c.finishRequest(ex, werr)
		return
	}
	first.Release()

	if _, werr := c.bw.Write(second.Data); werr != nil {
		second.Release()
		c.finishRequest(ex, werr)
		return
	}
	second.Release()

	for {
		chunk, err := body.Chunks.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			c.finishRequest(ex, err)
			return
		}
		_, werr := c.bw.Write(chunk.Data)
		chunk.Release()
		if werr != nil {
			c.finishRequest(ex, werr)
			return
		}
	}

	c.finishRequest(ex, nil)
}

// finishRequest flushes the buffered writer, clears the requesting pointer
// and, if another exchange is already queued behind this one, pipelines it.
func (c *Connection) finishRequest(ex *exchange.Exchange, writeErr error) {
	if writeErr == nil {
		writeErr = c.bw.Flush()
	}

	if c.requesting == ex {
		c.requesting = nil
	}

	if writeErr != nil {
		c.forceShutdown(exchange.ErrConnectionResetByPeer(writeErr.Error()))
		return
	}

	if next := ex.Next; next != nil && c.requesting == nil && !next.IsReset() {
		c.start(next)
	}
}

// readLoop runs on its own goroutine for the lifetime of the connection,
// decoding one response head + body per iteration and posting connection
// state transitions back onto the executor.
func (c *Connection) readLoop() {
	ctx := context.Background()

	for {
		status, hdr, err := parseResponseHead(c.br)
		if err == io.EOF {
			c.dispatch(func() { c.forceShutdown(exchange.ErrConnectionClosed()) })
			return
		}
		if err != nil {
			c.dispatch(func() { c.forceShutdown(exchange.ErrConnectionResetByPeer(err.Error())) })
			return
		}

		length, hasLength, _ := headers.ContentLength(hdr)
		chunked := headers.IsChunked(hdr)
		noBody := status/100 == 1 || status == 204 || status == 304

		sink := newPushChunkSource()
		resp := exchange.NewResponseHandle(status, hdr, sink)

		var matched *exchange.Exchange
		c.dispatch(func() {
			matched = c.responding
			if matched != nil {
				matched.Resolve(resp)
			}
		})

		if matched == nil {
			c.dispatch(func() { c.forceShutdown(exchange.ErrProtocolError("response with no matching exchange")) })
			return
		}

		if noBody {
			sink.closeOK()
		} else if trailers, berr := readBody(ctx, c.br, length, hasLength, chunked, sink); berr != nil {
			c.dispatch(func() { c.forceShutdown(exchange.ErrConnectionResetByPeer(berr.Error())) })
			return
		} else if trailers != nil {
			resp.SetTrailers(trailers)
		}

		wantsClose := headers.WantsClose(hdr)
		c.dispatch(func() { c.completeExchange(matched, wantsClose) })
	}
}

// dispatch runs fn on the connection executor and blocks until it completes,
// letting the read-loop goroutine observe the resulting state synchronously.
func (c *Connection) dispatch(fn func()) {
	done := make(chan struct{})
	c.tr.Execute(func() {
		fn()
		close(done)
	})
	<-done
}

// completeExchange implements spec §4.1's exchange completion policy.
func (c *Connection) completeExchange(ex *exchange.Exchange, wantsClose bool) {
	c.pool.OnExchangeTerminate(ex)

	next := ex.Next
	if c.head == ex {
		c.head = next
	}
	if c.responding == ex {
		c.responding = next
	}
	if c.tail == ex {
		c.tail = nil
	}

	if wantsClose {
		c.drainAndClose()
		return
	}

	if next != nil {
		c.armTimeoutFor(next)
	} else {
		c.cancelTimeout()
		c.checkGracefulDrain()
	}
}

// unlink removes ex from the queue without disposing it; the caller decides
// the disposal cause.
func (c *Connection) unlink(ex *exchange.Exchange) {
	if c.head == ex {
		c.head = ex.Next
		if c.tail == ex {
			c.tail = nil
		}
		return
	}
	for n := c.head; n != nil; n = n.Next {
		if n.Next == ex {
			n.Next = ex.Next
			if c.tail == ex {
				c.tail = n
			}
			return
		}
	}
}

func (c *Connection) armTimeoutFor(ex *exchange.Exchange) {
	c.cancelTimeout()
	if ex == nil || c.cfg.RequestTimeout <= 0 {
		return
	}

	remaining := c.cfg.RequestTimeout.Time() - ex.Age()
	if remaining < 0 {
		remaining = 0
	}
	c.timeoutTimer = time.AfterFunc(remaining, func() {
		c.tr.Execute(c.onTimeoutFire)
	})
}

func (c *Connection) cancelTimeout() {
	if c.timeoutTimer != nil {
		c.timeoutTimer.Stop()
		c.timeoutTimer = nil
	}
}

// onTimeoutFire walks the queue from responding forward (spec §4.1 "Per-
// exchange timeout"): a timed-out exchange whose request headers were
// already written makes the connection unrecoverable; one that never started
// is simply unlinked and disposed.
func (c *Connection) onTimeoutFire() {
	if c.responding == nil || c.cfg.RequestTimeout <= 0 {
		return
	}

	unrecoverable := false
	cause := exchange.ErrRequestTimeout()

	for ex := c.responding; ex != nil; ex = ex.Next {
		if ex.Age() < c.cfg.RequestTimeout.Time() {
			continue
		}
		if ex.Request.HeadersWritten() {
			unrecoverable = true
		} else {
			c.unlink(ex)
			ex.Dispose(cause)
		}
	}

	if unrecoverable {
		c.forceShutdown(cause)
		return
	}

	c.armTimeoutFor(c.responding)
}

func (c *Connection) checkGracefulDrain() {
	if c.closing && c.head == nil && c.gracefulDone != nil {
		close(c.gracefulDone)
		c.gracefulDone = nil
		c.closeNow()
	}
}

// forceShutdown disposes every still-registered exchange with cause, reports
// cause to the pool and closes the connection. Idempotent. Used for genuine
// failures (timeout, protocol error, I/O error) - not for a server-requested
// "Connection: close", which is a normal event (see drainAndClose).
func (c *Connection) forceShutdown(cause error) {
	if c.closed {
		return
	}

	c.log().Entry(logger.WarnLevel, "closing http1 connection").ErrorAdd(true, cause).Log()
	c.evictQueue(cause)
	c.pool.OnError(cause)
	c.closeNow()
}

// drainAndClose disposes any not-yet-responded queued exchanges and closes
// the connection in response to the server announcing it will not serve any
// further request on this connection (spec §4.1 "Connection: close"
// eviction). This is not an error: the already-completed exchange still
// resolved normally, and the pool is only notified via OnClose.
func (c *Connection) drainAndClose() {
	if c.closed {
		return
	}

	c.evictQueue(exchange.ErrConnectionClosed())
	c.closeNow()
}

func (c *Connection) evictQueue(cause error) {
	c.closing = true
	c.cancelTimeout()

	for ex := c.head; ex != nil; {
		next := ex.Next
		ex.Dispose(cause)
		ex = next
	}
	c.head, c.tail, c.requesting, c.responding = nil, nil, nil, nil

	if c.gracefulDone != nil {
		close(c.gracefulDone)
		c.gracefulDone = nil
	}
}

func (c *Connection) closeNow() {
	if c.closed {
		return
	}
	c.closed = true
	c.pool.OnClose()
	_ = c.tr.Close()
}
