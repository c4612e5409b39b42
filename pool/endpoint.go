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

package pool

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/nabbar/httpcore/exchange"
)

// slot binds one live Conn to its per-connection dispatch semaphore and
// wires the engine's PoolCallbacks contract back into the owning Endpoint
// (spec §4.5: onClose/onError/onUpgrade/onExchangeTerminate).
type slot struct {
	ep   *Endpoint
	sem  *semaphore.Weighted
	mu   sync.Mutex
	conn Conn
	dead bool
}

func (s *slot) OnClose() { s.ep.evict(s) }

func (s *slot) OnError(cause error) { s.ep.evict(s) }

// OnUpgrade replaces the slot's connection in place (h2c promoting itself
// to an http2.Connection after a successful cleartext upgrade): the dial
// capacity already spent on this slot carries over, only the Conn it
// forwards Send to changes.
func (s *slot) OnUpgrade(newConn interface{}) {
	nc, ok := newConn.(Conn)
	if !ok {
		return
	}
	s.mu.Lock()
	s.conn = nc
	s.mu.Unlock()
}

// OnExchangeTerminate releases the per-connection dispatch permit acquired
// when the exchange was sent.
func (s *slot) OnExchangeTerminate(ex *exchange.Exchange) {
	s.sem.Release(1)
}

// current returns the slot's live Conn, safe against a concurrent OnUpgrade
// swap.
func (s *slot) current() Conn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn
}

// Endpoint is one authority's live connection set: a dial-capacity
// semaphore sized to pool_max_size, and per-connection dispatch semaphores
// sized to http1_max_concurrent_requests/http2_max_concurrent_streams
// (spec §4.5).
type Endpoint struct {
	cfg   Config
	dial  Dialer
	dials *semaphore.Weighted

	mu     sync.RWMutex
	slots  []*slot
	closed bool
}

// NewEndpoint builds an Endpoint bound to dial for new connections on
// demand, up to cfg.MaxSize concurrently-dialed/live connections.
func NewEndpoint(cfg Config, dial Dialer) *Endpoint {
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = DefaultConfig().MaxSize
	}
	if cfg.MaxConcurrentPerConn <= 0 {
		cfg.MaxConcurrentPerConn = DefaultConfig().MaxConcurrentPerConn
	}

	return &Endpoint{
		cfg:   cfg,
		dial:  dial,
		dials: semaphore.NewWeighted(cfg.MaxSize),
	}
}

// Len returns the number of live connections currently held.
func (e *Endpoint) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.slots)
}

// Send dispatches ep over an existing connection with spare dispatch
// capacity, dialing a new one (up to pool_max_size) when every existing
// connection is saturated. It blocks on ctx only while waiting for dial
// capacity to free up; dispatch permits are taken without waiting.
func (e *Endpoint) Send(ctx context.Context, ep *exchange.EndpointExchange) (<-chan exchange.Result, error) {
	e.mu.RLock()
	if e.closed {
		e.mu.RUnlock()
		return nil, ErrEndpointClosed()
	}
	for _, s := range e.slots {
		if s.sem.TryAcquire(1) {
			conn := s.current()
			e.mu.RUnlock()
			return conn.Send(ep), nil
		}
	}
	e.mu.RUnlock()

	s, err := e.dialSlot(ctx)
	if err != nil {
		return nil, err
	}

	if !s.sem.TryAcquire(1) {
		// Freshly dialed, nothing else could have raced this permit away.
		return nil, ErrPoolExhausted()
	}
	return s.current().Send(ep), nil
}

// dialSlot acquires dial capacity and opens one new connection, registering
// it in the endpoint's live set.
func (e *Endpoint) dialSlot(ctx context.Context) (*slot, error) {
	if err := e.dials.Acquire(ctx, 1); err != nil {
		return nil, ErrPoolExhausted()
	}

	dialCtx := ctx
	if d := e.cfg.DialTimeout.Time(); d > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	conn, err := e.dial(dialCtx)
	if err != nil {
		e.dials.Release(1)
		return nil, ErrDialFailed(err)
	}

	s := &slot{ep: e, sem: semaphore.NewWeighted(e.cfg.MaxConcurrentPerConn), conn: conn}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		conn.Shutdown()
		e.dials.Release(1)
		return nil, ErrEndpointClosed()
	}
	e.slots = append(e.slots, s)
	e.mu.Unlock()

	return s, nil
}

// evict removes s from the live set and returns its dial-capacity permit.
func (e *Endpoint) evict(s *slot) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if s.dead {
		return
	}
	s.dead = true

	for i, x := range e.slots {
		if x == s {
			e.slots = append(e.slots[:i], e.slots[i+1:]...)
			e.dials.Release(1)
			return
		}
	}
}

// Shutdown tears down every live connection immediately and marks the
// endpoint closed to further dials.
func (e *Endpoint) Shutdown() {
	e.mu.Lock()
	e.closed = true
	slots := e.slots
	e.slots = nil
	e.mu.Unlock()

	for _, s := range slots {
		s.conn.Shutdown()
	}
}

// ShutdownGracefully lets every live connection drain its in-flight
// exchanges before closing, per each engine's own graceful-shutdown policy.
func (e *Endpoint) ShutdownGracefully() {
	e.mu.Lock()
	e.closed = true
	slots := e.slots
	e.slots = nil
	e.mu.Unlock()

	var wg sync.WaitGroup
	for _, s := range slots {
		wg.Add(1)
		go func(s *slot) {
			defer wg.Done()
			s.conn.ShutdownGracefully()
		}(s)
	}
	wg.Wait()
}
