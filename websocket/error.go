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
	liberr "github.com/nabbar/httpcore/internal/errors"
)

const (
	ErrorHandshakeFailed liberr.CodeError = iota + liberr.MinPkgWebsocket
	ErrorSubprotocolRequired
	ErrorAlreadySubscribed
	ErrorFrameTooLarge
	ErrorSocketClosed
	ErrorConnectionClosed
)

func init() {
	liberr.RegisterIdFctMessage(liberr.MinPkgWebsocket, getMessage)
}

func getMessage(code liberr.CodeError) string {
	switch code {
	case ErrorHandshakeFailed:
		return "websocket handshake failed: %s"
	case ErrorSubprotocolRequired:
		return "no subprotocol was negotiated, but one was required"
	case ErrorAlreadySubscribed:
		return "an inbound publisher is already subscribed on this socket"
	case ErrorFrameTooLarge:
		return "inbound frame exceeds the configured maximum size"
	case ErrorSocketClosed:
		return "websocket is closed"
	case ErrorConnectionClosed:
		return "websocket connection closed abnormally: %s"
	}
	return liberr.UnknownMessage
}

// ErrHandshakeFailed reports that the opening handshake could not complete.
func ErrHandshakeFailed(detail string) liberr.Error { return ErrorHandshakeFailed.Errorf(detail) }

// ErrSubprotocolRequired reports that RequireSubprotocol was set but the peer
// accepted none of the offered Subprotocols.
func ErrSubprotocolRequired() liberr.Error { return ErrorSubprotocolRequired.Error() }

// ErrAlreadySubscribed reports a second attempt to subscribe an inbound
// publisher on a socket that already has one (spec §4.3: "exactly one of
// these four publishers may be subscribed per exchange").
func ErrAlreadySubscribed() liberr.Error { return ErrorAlreadySubscribed.Error() }

// ErrFrameTooLarge reports an inbound frame exceeding Config.MaxFrameSize.
func ErrFrameTooLarge() liberr.Error { return ErrorFrameTooLarge.Error() }

// ErrSocketClosed reports an operation attempted on an already-closed socket.
func ErrSocketClosed() liberr.Error { return ErrorSocketClosed.Error() }

// ErrConnectionClosed reports an inbound read failing for a reason other than
// a clean close handshake.
func ErrConnectionClosed(detail string) liberr.Error { return ErrorConnectionClosed.Errorf(detail) }
