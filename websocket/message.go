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
)

// Message is a complete TEXT or BINARY unit, assembled from one or more
// frames of that kind up to a final-flag frame (spec §4.3). Since
// gorilla/websocket already reassembles fragmented reads, a Message here
// corresponds 1:1 with a single inbound Frame; see DESIGN.md.
type Message struct {
	Kind Kind
	Data []byte

	once    sync.Once
	release func()
}

// NewMessage wraps data as an outbound Message; onRelease (optional) runs
// the first time Release is called.
func NewMessage(kind Kind, data []byte, onRelease func()) *Message {
	return &Message{Kind: kind, Data: data, release: onRelease}
}

// Release runs the message's release callback exactly once.
func (m *Message) Release() {
	if m == nil {
		return
	}
	m.once.Do(func() {
		if m.release != nil {
			m.release()
		}
	})
}

// MessageSource is a pull-based iterator over outbound messages, mirroring
// FrameSource's backpressure model.
type MessageSource interface {
	Next(ctx context.Context) (*Message, error)
}

// messageSourceFunc adapts a plain function to a MessageSource.
type messageSourceFunc func(ctx context.Context) (*Message, error)

func (f messageSourceFunc) Next(ctx context.Context) (*Message, error) { return f(ctx) }

// NewMessage builds a Message, bounded by the socket's configured
// MaxFrameSize (a message is always TEXT or BINARY, never a control kind).
func (f FrameFactory) NewMessage(kind Kind, data []byte, onRelease func()) (*Message, error) {
	if int64(len(data)) > f.maxFrameSize {
		return nil, ErrFrameTooLarge()
	}
	return NewMessage(kind, data, onRelease), nil
}
