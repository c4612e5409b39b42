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
	liberr "github.com/nabbar/httpcore/internal/errors"
)

// Error kinds (spec §7), each a registered CodeError rather than an ad-hoc
// errors.New value so callers can errors.Is/HasCode against them.
const (
	KindConnectionClosed liberr.CodeError = iota + liberr.MinPkgExchange
	KindConnectionResetByPeer
	KindRequestTimeout
	KindHttpClientUpgrade
	KindExchangeReset
	KindProtocolError
	KindMessageBufferOverflow
	KindTooLongFrame
	KindResourceNotReadable
	KindUpgradeRejected
)

func init() {
	liberr.RegisterIdFctMessage(liberr.MinPkgExchange, getMessage)
}

func getMessage(code liberr.CodeError) string {
	switch code {
	case KindConnectionClosed:
		return "connection is closing or closed"
	case KindConnectionResetByPeer:
		return "connection reset by peer: %s"
	case KindRequestTimeout:
		return "request timed out"
	case KindHttpClientUpgrade:
		return "malformed or unexpected protocol upgrade response"
	case KindExchangeReset:
		return "exchange reset locally with code %d"
	case KindProtocolError:
		return "protocol decode error: %s"
	case KindMessageBufferOverflow:
		return "upgrade buffer exceeded 64 KiB"
	case KindTooLongFrame:
		return "inbound frame exceeds configured limit"
	case KindResourceNotReadable:
		return "body resource could not be opened: %s"
	case KindUpgradeRejected:
		return "server rejected protocol upgrade"
	}

	return liberr.UnknownMessage
}

// ErrConnectionClosed reports that the exchange never reached the wire
// because the connection was already closing/closed.
func ErrConnectionClosed() liberr.Error { return KindConnectionClosed.Error() }

// ErrConnectionResetByPeer reports the remote closed mid-exchange.
func ErrConnectionResetByPeer(reason string) liberr.Error {
	return KindConnectionResetByPeer.Errorf(reason)
}

// ErrRequestTimeout reports a per-exchange deadline exceeded.
func ErrRequestTimeout() liberr.Error { return KindRequestTimeout.Error() }

// ErrHttpClientUpgrade reports a malformed upgrade response or double-upgrade attempt.
func ErrHttpClientUpgrade() liberr.Error { return KindHttpClientUpgrade.Error() }

// ErrExchangeReset reports an explicit local reset with the given code.
func ErrExchangeReset(code int) liberr.Error { return KindExchangeReset.Errorf(code) }

// ErrProtocolError reports a decoder failure or unsupported version.
func ErrProtocolError(detail string) liberr.Error { return KindProtocolError.Errorf(detail) }

// ErrMessageBufferOverflow reports the H2C upgrade buffer exceeding 64 KiB.
func ErrMessageBufferOverflow() liberr.Error { return KindMessageBufferOverflow.Error() }

// ErrTooLongFrame reports an inbound protocol frame exceeding a configured limit.
func ErrTooLongFrame() liberr.Error { return KindTooLongFrame.Error() }

// ErrResourceNotReadable reports a body resource that could not be opened.
func ErrResourceNotReadable(detail string) liberr.Error {
	return KindResourceNotReadable.Errorf(detail)
}

// ErrUpgradeRejected reports a non-101 response to an upgrade request. The
// exchange is still delivered to the caller as a normal response; this value
// is informational, not fatal to the exchange.
func ErrUpgradeRejected() liberr.Error { return KindUpgradeRejected.Error() }
