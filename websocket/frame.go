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
	"context"
	"sync"

	gws "github.com/gorilla/websocket"
)

// Kind identifies what an inbound or outbound frame/message carries.
type Kind int

const (
	KindText Kind = iota + 1
	KindBinary
	KindPing
	KindPong
)

func (k Kind) wire() int {
	switch k {
	case KindBinary:
		return gws.BinaryMessage
	case KindPing:
		return gws.PingMessage
	case KindPong:
		return gws.PongMessage
	default:
		return gws.TextMessage
	}
}

func (k Kind) isControl() bool {
	return k == KindPing || k == KindPong
}

// Frame is a single inbound or outbound websocket frame (spec §4.3). Outbound
// frames carry a release callback that runs at most once, and must be released
// after the transport has written them or dropped them.
//
// gorilla/websocket's public API reassembles fragmented reads into a single
// ReadMessage call and never surfaces individual CONTINUATION frames, so
// every inbound Frame this package produces already carries Final = true;
// see DESIGN.md.
type Frame struct {
	Kind  Kind
	Final bool
	Data  []byte

	once    sync.Once
	release func()
}

// NewFrame wraps data as an outbound Frame; onRelease (optional) runs the
// first time Release is called.
func NewFrame(kind Kind, final bool, data []byte, onRelease func()) *Frame {
	return &Frame{Kind: kind, Final: final, Data: data, release: onRelease}
}

// Release runs the frame's release callback exactly once.
func (f *Frame) Release() {
	if f == nil {
		return
	}
	f.once.Do(func() {
		if f.release != nil {
			f.release()
		}
	})
}

// FrameSource is a pull-based iterator over outbound frames, mirroring
// exchange.ChunkSource's backpressure model: the socket calling Next IS the
// demand signal.
type FrameSource interface {
	Next(ctx context.Context) (*Frame, error)
}

// frameSourceFunc adapts a plain function to a FrameSource.
type frameSourceFunc func(ctx context.Context) (*Frame, error)

func (f frameSourceFunc) Next(ctx context.Context) (*Frame, error) { return f(ctx) }

// FrameFactory builds frames bounded by the socket's configured limits (spec
// §4.3: "a factory that enforces configuration limits (max frame size,
// PING/PONG ≤ 125 bytes)").
type FrameFactory struct {
	maxFrameSize int64
}

const maxControlFramePayload = 125

// NewFrame builds a Frame, failing if data exceeds the relevant size limit:
// maxControlFramePayload for PING/PONG, the socket's configured MaxFrameSize
// otherwise.
func (f FrameFactory) NewFrame(kind Kind, final bool, data []byte, onRelease func()) (*Frame, error) {
	limit := f.maxFrameSize
	if kind.isControl() {
		limit = maxControlFramePayload
	}
	if int64(len(data)) > limit {
		return nil, ErrFrameTooLarge()
	}
	return NewFrame(kind, final, data, onRelease), nil
}
