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
	"fmt"
	"net"
	"strings"

	libatm "github.com/nabbar/httpcore/internal/atomic"
	"github.com/nabbar/httpcore/internal/tlsstate"
	"github.com/nabbar/httpcore/headers"
)

// RequestHandle is the outbound side of an exchange: method, resolved
// authority, path, headers (mutable until written) and optional body.
type RequestHandle struct {
	Method string

	scheme    string
	authority string

	Path        string
	PathBuilder *PathBuilder

	LocalAddr  net.Addr
	RemoteAddr net.Addr
	TLS        tlsstate.State

	Headers *headers.Headers
	Body    *RequestBody

	written libatm.Value[bool]
}

// NewRequestHandle builds a RequestHandle. host is the request's declared
// authority (may be empty if absent, per spec §4.1 host-header construction);
// tls/local/remote come from the transport the request will be sent over.
func NewRequestHandle(method, host string, tls tlsstate.State, local, remote net.Addr) *RequestHandle {
	r := &RequestHandle{
		Method:     method,
		scheme:     tls.HTTPScheme(),
		authority:  resolveAuthority(host, remote, tls),
		Headers:    headers.New(),
		LocalAddr:  local,
		RemoteAddr: remote,
		TLS:        tls,
		written:    libatm.NewValue[bool](),
	}
	_ = r.Headers.Set("Host", r.authority)
	return r
}

// resolveAuthority elides the port when it matches the scheme default (spec
// §6/§8: "host:port is elided when port matches the scheme default").
func resolveAuthority(host string, remote net.Addr, tls tlsstate.State) string {
	if host == "" {
		if remote != nil {
			host = remote.String()
		}
	}

	h, p, err := net.SplitHostPort(host)
	if err != nil {
		return host
	}

	if p == tlsstate.DefaultPort(tls.HTTPScheme()) {
		return h
	}
	return net.JoinHostPort(h, p)
}

// Scheme returns "http"/"https" (or, via WebSocketScheme, "ws"/"wss").
func (r *RequestHandle) Scheme() string { return r.scheme }

// WebSocketScheme returns "ws" or "wss" for this request's TLS state.
func (r *RequestHandle) WebSocketScheme() string { return r.TLS.WebSocketScheme() }

// Authority returns the resolved host[:port].
func (r *RequestHandle) Authority() string { return r.authority }

// MarkHeadersWritten freezes the request headers (spec §3 invariant).
func (r *RequestHandle) MarkHeadersWritten() {
	r.written.Store(true)
	r.Headers.MarkWritten()
}

// HeadersWritten reports whether the request headers have been frozen.
func (r *RequestHandle) HeadersWritten() bool { return r.written.Load() }

// RequestLine renders "METHOD path HTTP/version".
func (r *RequestHandle) RequestLine(httpVersion string) string {
	path := r.Path
	if r.PathBuilder != nil {
		path = r.PathBuilder.String()
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return fmt.Sprintf("%s %s HTTP/%s", r.Method, path, httpVersion)
}
