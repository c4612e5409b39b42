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

package websocket

import (
	"github.com/nabbar/httpcore/internal/duration"
)

// Config holds the per-socket tunables recognized by the engine (spec §4.3).
type Config struct {
	HandshakeTimeout duration.Duration
	ReadBufferSize   int
	WriteBufferSize  int

	// MaxFrameSize bounds the payload of frames built through the socket's
	// FrameFactory (PING/PONG are separately capped at 125 bytes by the wire
	// protocol itself); building a larger one returns an error. Inbound
	// frames are not checked against it.
	MaxFrameSize int64

	// Subprotocols is offered to the peer via Sec-WebSocket-Protocol on the
	// handshake request, in preference order.
	Subprotocols []string
	// RequireSubprotocol fails the handshake if none of Subprotocols was
	// accepted by the peer.
	RequireSubprotocol bool

	// CloseOnComplete controls whether the socket closes itself when the
	// outbound publisher completes successfully (spec §4.3). On outbound
	// error the socket is always closed regardless of this flag.
	CloseOnComplete bool
}

const (
	defaultReadBufferSize  = 4096
	defaultWriteBufferSize = 4096
	defaultMaxFrameSize    = 1 << 20 // 1 MiB
)

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		HandshakeTimeout: duration.Seconds(10),
		ReadBufferSize:   defaultReadBufferSize,
		WriteBufferSize:  defaultWriteBufferSize,
		MaxFrameSize:     defaultMaxFrameSize,
		CloseOnComplete:  true,
	}
}
