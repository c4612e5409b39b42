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

// Package tlsstate reads the TLS presence and peer certificate state of a
// transport connection. It never establishes or configures TLS; it only
// observes what has already been negotiated underneath.
package tlsstate

import "crypto/tls"

// State is a snapshot of the TLS status of a connection.
type State struct {
	Enabled bool
	Conn    *tls.ConnectionState
}

// Disabled is the State of a plaintext connection.
var Disabled = State{}

// FromConn inspects c and returns its TLS state, or Disabled if c is nil.
func FromConn(c interface{ ConnectionState() tls.ConnectionState }) State {
	if c == nil {
		return Disabled
	}

	cs := c.ConnectionState()
	return State{Enabled: true, Conn: &cs}
}

// HTTPScheme returns "https" when TLS is enabled, "http" otherwise.
func (s State) HTTPScheme() string {
	if s.Enabled {
		return "https"
	}
	return "http"
}

// WebSocketScheme returns "wss" when TLS is enabled, "ws" otherwise.
func (s State) WebSocketScheme() string {
	if s.Enabled {
		return "wss"
	}
	return "ws"
}

// PeerCertificates returns the certificate chain presented by the peer, or nil
// if the connection is not TLS or presented none.
func (s State) PeerCertificates() []*tls.Certificate {
	if !s.Enabled || s.Conn == nil {
		return nil
	}

	out := make([]*tls.Certificate, 0, len(s.Conn.PeerCertificates))
	for _, c := range s.Conn.PeerCertificates {
		out = append(out, &tls.Certificate{Certificate: [][]byte{c.Raw}, Leaf: c})
	}
	return out
}

// DefaultPort returns the scheme default port ("80"/"443" for HTTP, "80"/"443" for WS too,
// since WebSocket reuses the HTTP default ports) for the given scheme.
func DefaultPort(scheme string) string {
	switch scheme {
	case "https", "wss":
		return "443"
	default:
		return "80"
	}
}
