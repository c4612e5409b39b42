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

package exchange

import (
	"sync"
	"time"

	libatm "github.com/nabbar/httpcore/internal/atomic"
)

// Result is what an exchange's one-shot response channel carries: exactly
// one of Response or Err is set, never both (spec §7).
type Result struct {
	Response *ResponseHandle
	Err      error
}

// Exchange is the value held by a connection (spec §3's "connection
// exchange"): an immutable link to its connection's executor/closer, the
// request handle, a lazily-populated response, a reset flag, a creation
// timestamp, a pipeline successor pointer, and a cancelable timeout.
//
// Cyclic references to the owning connection are avoided by holding only the
// two functions (Execute, CloseConn) the exchange needs, rather than a
// pointer back to the connection itself (spec §9's arena/index-ownership
// note, realized here as "hold only the capabilities you need back").
type Exchange struct {
	ID        string
	CreatedAt time.Time

	Request  *RequestHandle
	Endpoint *EndpointExchange

	// Next links to the following exchange in the connection's pipeline.
	// Only ever mutated from within the owning connection's executor.
	Next *Exchange

	Execute   func(fn func())
	CloseConn func() error

	respCh      chan Result
	resolveOnce sync.Once

	reset libatm.Value[bool]

	mu          sync.Mutex
	cancelCause error

	timeoutCancel func()
}

// NewExchange binds req/ep to a connection, identified by id, whose executor
// and close function are exec/closeConn.
func NewExchange(id string, req *RequestHandle, ep *EndpointExchange, exec func(func()), closeConn func() error) *Exchange {
	return &Exchange{
		ID:        id,
		CreatedAt: time.Now(),
		Request:   req,
		Endpoint:  ep,
		Execute:   exec,
		CloseConn: closeConn,
		respCh:    make(chan Result, 1),
		reset:     libatm.NewValue[bool](),
	}
}

// Response returns the one-shot channel that resolves exactly once, with
// either a response handle or an error (spec §4.4, §8).
func (e *Exchange) Response() <-chan Result { return e.respCh }

// Resolve delivers resp as the successful outcome. A later Resolve or Dispose
// does not change the delivered result, preserving "resolves exactly once";
// a later Dispose still records its cause.
func (e *Exchange) Resolve(resp *ResponseHandle) {
	e.resolveOnce.Do(func() {
		e.respCh <- Result{Response: resp}
	})
}

// SetTimeoutCanceler registers how to cancel this exchange's scheduled
// per-exchange timer; called by the engine that armed it.
func (e *Exchange) SetTimeoutCanceler(cancel func()) {
	e.timeoutCancel = cancel
}

// Dispose cancels the timeout, records cause as the cancel cause (first one
// wins), and, if the response was not yet delivered, emits cause on the
// response one-shot (spec §4.4).
func (e *Exchange) Dispose(cause error) {
	if e.timeoutCancel != nil {
		e.timeoutCancel()
	}

	e.mu.Lock()
	if e.cancelCause == nil {
		e.cancelCause = cause
	}
	e.mu.Unlock()

	e.resolveOnce.Do(func() {
		e.respCh <- Result{Err: cause}
	})
}

// GetCancelCause returns the recorded cancel cause, if any.
func (e *Exchange) GetCancelCause() (error, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cancelCause, e.cancelCause != nil
}

// Reset marks the exchange reset, disposes it with ErrExchangeReset(code),
// and closes the connection (spec §4.4). The work is always queued through
// Execute; a call made from a task already running on the connection
// executor runs only after that task returns.
func (e *Exchange) Reset(code int) {
	e.Execute(func() {
		e.reset.Store(true)
		e.Dispose(ErrExchangeReset(code))
		if e.CloseConn != nil {
			_ = e.CloseConn()
		}
	})
}

// IsReset reports whether Reset has been called on this exchange.
func (e *Exchange) IsReset() bool { return e.reset.Load() }

// Age returns the time elapsed since the exchange was created, used by the
// per-exchange timeout walk (spec §4.1).
func (e *Exchange) Age() time.Duration { return time.Since(e.CreatedAt) }
