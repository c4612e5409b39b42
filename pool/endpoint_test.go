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
	"errors"
	"sync/atomic"
	"testing"

	"github.com/nabbar/httpcore/exchange"
)

type fakeConn struct {
	dialed      int32
	sent        int32
	shutdown    int32
	gracePeriod int32
}

func (f *fakeConn) Send(ep *exchange.EndpointExchange) <-chan exchange.Result {
	atomic.AddInt32(&f.sent, 1)
	ch := make(chan exchange.Result, 1)
	ch <- exchange.Result{}
	return ch
}

func (f *fakeConn) Shutdown()           { atomic.AddInt32(&f.shutdown, 1) }
func (f *fakeConn) ShutdownGracefully() { atomic.AddInt32(&f.gracePeriod, 1) }

func newFakeDialer(conns *[]*fakeConn) Dialer {
	return func(ctx context.Context) (Conn, error) {
		c := &fakeConn{}
		*conns = append(*conns, c)
		return c, nil
	}
}

func TestEndpointDialsLazilyAndReusesCapacity(t *testing.T) {
	var conns []*fakeConn
	ep := NewEndpoint(Config{MaxSize: 2, MaxConcurrentPerConn: 2}, newFakeDialer(&conns))

	req := exchange.NewEndpointExchange("GET", "/")

	for i := 0; i < 2; i++ {
		if _, err := ep.Send(context.Background(), req); err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
	}

	if got := len(conns); got != 1 {
		t.Fatalf("dialed %d connections, want 1 (capacity not exhausted yet)", got)
	}
	if got := ep.Len(); got != 1 {
		t.Fatalf("endpoint has %d live connections, want 1", got)
	}
}

func TestEndpointDialsNewConnectionWhenSaturated(t *testing.T) {
	var conns []*fakeConn
	ep := NewEndpoint(Config{MaxSize: 2, MaxConcurrentPerConn: 1}, newFakeDialer(&conns))

	req := exchange.NewEndpointExchange("GET", "/")

	for i := 0; i < 2; i++ {
		if _, err := ep.Send(context.Background(), req); err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
	}

	if got := len(conns); got != 2 {
		t.Fatalf("dialed %d connections, want 2", got)
	}
}

func TestEndpointReturnsPoolExhaustedAtMaxSize(t *testing.T) {
	var conns []*fakeConn
	ep := NewEndpoint(Config{MaxSize: 1, MaxConcurrentPerConn: 1}, newFakeDialer(&conns))

	req := exchange.NewEndpointExchange("GET", "/")

	if _, err := ep.Send(context.Background(), req); err != nil {
		t.Fatalf("first send: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ep.Send(ctx, req); err == nil {
		t.Fatalf("expected saturation error once pool_max_size and per-conn capacity are both exhausted")
	}
}

func TestEndpointDialFailurePropagatesAndReleasesCapacity(t *testing.T) {
	boom := errors.New("boom")
	ep := NewEndpoint(Config{MaxSize: 1, MaxConcurrentPerConn: 1}, func(ctx context.Context) (Conn, error) {
		return nil, boom
	})

	req := exchange.NewEndpointExchange("GET", "/")
	if _, err := ep.Send(context.Background(), req); err == nil {
		t.Fatalf("expected dial error to propagate")
	}

	// Dial capacity must have been released on failure, otherwise every
	// subsequent send would wrongly see the pool as exhausted.
	if _, err := ep.Send(context.Background(), req); err == nil {
		t.Fatalf("expected the retried dial to fail again with the same error")
	}
}

func TestEndpointEvictOnErrorFreesDialCapacity(t *testing.T) {
	var conns []*fakeConn
	ep := NewEndpoint(Config{MaxSize: 1, MaxConcurrentPerConn: 1}, newFakeDialer(&conns))

	req := exchange.NewEndpointExchange("GET", "/")
	if _, err := ep.Send(context.Background(), req); err != nil {
		t.Fatalf("first send: %v", err)
	}
	if got := ep.Len(); got != 1 {
		t.Fatalf("live connections = %d, want 1", got)
	}

	ep.mu.RLock()
	s := ep.slots[0]
	ep.mu.RUnlock()
	s.OnError(errors.New("connection reset"))

	if got := ep.Len(); got != 0 {
		t.Fatalf("live connections after eviction = %d, want 0", got)
	}

	if _, err := ep.Send(context.Background(), req); err != nil {
		t.Fatalf("send after eviction should be able to dial again: %v", err)
	}
}

func TestEndpointShutdownStopsEveryConnection(t *testing.T) {
	var conns []*fakeConn
	ep := NewEndpoint(Config{MaxSize: 2, MaxConcurrentPerConn: 1}, newFakeDialer(&conns))

	req := exchange.NewEndpointExchange("GET", "/")
	_, _ = ep.Send(context.Background(), req)
	_, _ = ep.Send(context.Background(), req)

	ep.Shutdown()

	for i, c := range conns {
		if atomic.LoadInt32(&c.shutdown) != 1 {
			t.Fatalf("connection %d not shut down", i)
		}
	}

	if _, err := ep.Send(context.Background(), req); err == nil {
		t.Fatalf("expected send on a shut down endpoint to fail")
	}
}
