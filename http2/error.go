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

package http2

import (
	liberr "github.com/nabbar/httpcore/internal/errors"
)

const (
	ErrorClientConnSetup liberr.CodeError = iota + liberr.MinPkgHttp2
	ErrorTooManyConcurrentStreams
	ErrorStreamRoundTrip
)

func init() {
	liberr.RegisterIdFctMessage(liberr.MinPkgHttp2, getMessage)
}

func getMessage(code liberr.CodeError) string {
	switch code {
	case ErrorClientConnSetup:
		return "http2 client connection setup failed: %s"
	case ErrorTooManyConcurrentStreams:
		return "concurrent stream limit reached for this connection"
	case ErrorStreamRoundTrip:
		return "http2 stream round trip failed: %s"
	}
	return liberr.UnknownMessage
}

// ErrClientConnSetup reports that the http2.ClientConn handshake/setup failed.
func ErrClientConnSetup(detail string) liberr.Error { return ErrorClientConnSetup.Errorf(detail) }

// ErrTooManyConcurrentStreams reports the per-connection stream cap was reached.
func ErrTooManyConcurrentStreams() liberr.Error { return ErrorTooManyConcurrentStreams.Error() }

// ErrStreamRoundTrip reports a failed http2.ClientConn.RoundTrip call.
func ErrStreamRoundTrip(detail string) liberr.Error { return ErrorStreamRoundTrip.Errorf(detail) }
