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

// Package pool provides the endpoint pool façade (spec §4.5): a named
// collection of live connections per authority, generalized from the
// teacher's httpserver/pool "named collection of servers" shape to a
// client-side collection of http1/http2/h2c connections, gated by
// golang.org/x/sync/semaphore.Weighted instead of the teacher's own
// in-house semaphore package.
package pool

import (
	"context"

	"github.com/nabbar/httpcore/exchange"
)

// Conn is the surface every engine connection (http1.Connection,
// http2.Connection, h2c.Coordinator) already exposes identically; the pool
// only ever needs these three methods to drive dispatch and teardown.
type Conn interface {
	Send(ep *exchange.EndpointExchange) <-chan exchange.Result
	Shutdown()
	ShutdownGracefully()
}

// Dialer opens one new connection for an endpoint's authority. Callers
// supply the engine-specific construction (transport/TLS setup, http1.New,
// http2.New or h2c.New) behind this func so the pool itself stays
// protocol-agnostic.
type Dialer func(ctx context.Context) (Conn, error)

// Callbacks mirrors http1.PoolCallbacks/http2.PoolCallbacks/h2c.PoolCallbacks
// exactly (spec §4.5): "Contracts consumed by the engines (unchanged in
// meaning): onClose, onError, onUpgrade, onExchangeTerminate." A *slot
// implements this to wire itself back into its owning Endpoint.
type Callbacks interface {
	OnClose()
	OnError(cause error)
	OnUpgrade(newConn interface{})
	OnExchangeTerminate(ex *exchange.Exchange)
}
