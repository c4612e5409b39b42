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
	"strings"
	"sync"

	"github.com/nabbar/httpcore/exchange"
)

// FuncWalk iterates over the endpoints held by a Pool, keyed by authority.
// Return false to stop iteration early.
type FuncWalk func(authority string, ep *Endpoint) bool

// Pool is a named collection of Endpoint connection sets, one per
// authority, generalized from the teacher's "named collection of servers"
// (spec §4.5).
type Pool struct {
	mu  sync.RWMutex
	m   map[string]*Endpoint
	cfg Config
}

// New builds an empty Pool using cfg as the default for every endpoint
// later registered through GetOrCreate.
func New(cfg Config) *Pool {
	return &Pool{m: make(map[string]*Endpoint), cfg: cfg}
}

// Get returns the endpoint registered for authority, or nil if none.
func (p *Pool) Get(authority string) *Endpoint {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.m[authority]
}

// Has reports whether an endpoint is registered for authority.
func (p *Pool) Has(authority string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.m[authority]
	return ok
}

// Store registers ep under authority, replacing any existing endpoint
// there (the caller is responsible for shutting down whatever it replaces).
func (p *Pool) Store(authority string, ep *Endpoint) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.m[authority] = ep
}

// GetOrCreate returns the endpoint registered for authority, building one
// with dial and the pool's default Config if none exists yet. No connection
// is dialed here; the endpoint dials on demand when it sends.
func (p *Pool) GetOrCreate(authority string, dial Dialer) *Endpoint {
	p.mu.Lock()
	defer p.mu.Unlock()

	if ep, ok := p.m[authority]; ok {
		return ep
	}

	ep := NewEndpoint(p.cfg, dial)
	p.m[authority] = ep
	return ep
}

// Delete removes and shuts down the endpoint registered for authority, if
// any.
func (p *Pool) Delete(authority string) {
	p.mu.Lock()
	ep, ok := p.m[authority]
	delete(p.m, authority)
	p.mu.Unlock()

	if ok {
		ep.Shutdown()
	}
}

// Len returns the number of endpoints registered.
func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.m)
}

// Walk iterates over every registered endpoint; iteration stops as soon as
// fct returns false.
func (p *Pool) Walk(fct FuncWalk) {
	if fct == nil {
		return
	}

	p.mu.RLock()
	snapshot := make(map[string]*Endpoint, len(p.m))
	for k, v := range p.m {
		snapshot[k] = v
	}
	p.mu.RUnlock()

	for k, v := range snapshot {
		if !fct(k, v) {
			return
		}
	}
}

// List returns the authorities of every registered endpoint whose name
// contains pattern (case-insensitive substring match).
func (p *Pool) List(pattern string) []string {
	r := make([]string, 0)
	pattern = strings.ToLower(pattern)

	p.Walk(func(authority string, ep *Endpoint) bool {
		if pattern == "" || strings.Contains(strings.ToLower(authority), pattern) {
			r = append(r, authority)
		}
		return true
	})

	return r
}

// Send dispatches ep over the endpoint registered for authority, failing
// with ErrEndpointNotFound if none is registered.
func (p *Pool) Send(ctx context.Context, authority string, ep *exchange.EndpointExchange) (<-chan exchange.Result, error) {
	e := p.Get(authority)
	if e == nil {
		return nil, ErrEndpointNotFound()
	}
	return e.Send(ctx, ep)
}

// Shutdown tears down every registered endpoint immediately.
func (p *Pool) Shutdown() {
	p.Walk(func(authority string, ep *Endpoint) bool {
		ep.Shutdown()
		return true
	})
}

// ShutdownGracefully lets every registered endpoint drain before closing.
func (p *Pool) ShutdownGracefully() {
	var wg sync.WaitGroup

	p.Walk(func(authority string, ep *Endpoint) bool {
		wg.Add(1)
		go func(ep *Endpoint) {
			defer wg.Done()
			ep.ShutdownGracefully()
		}(ep)
		return true
	})

	wg.Wait()
}
