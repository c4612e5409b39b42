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
	liberr "github.com/nabbar/httpcore/internal/errors"
)

const (
	ErrorEndpointNotFound liberr.CodeError = iota + liberr.MinPkgPool
	ErrorDialFailed
	ErrorPoolExhausted
	ErrorEndpointClosed
)

func init() {
	liberr.RegisterIdFctMessage(liberr.MinPkgPool, getMessage)
}

func getMessage(code liberr.CodeError) string {
	switch code {
	case ErrorEndpointNotFound:
		return "no endpoint registered for this authority"
	case ErrorDialFailed:
		return "dialing a new connection for the endpoint failed: %s"
	case ErrorPoolExhausted:
		return "endpoint connection pool is at capacity"
	case ErrorEndpointClosed:
		return "endpoint has been shut down"
	}

	return liberr.UnknownMessage
}

func ErrEndpointNotFound() liberr.Error { return ErrorEndpointNotFound.Error() }
func ErrDialFailed(cause error) liberr.Error {
	return ErrorDialFailed.Errorf(cause)
}
func ErrPoolExhausted() liberr.Error { return ErrorPoolExhausted.Error() }
func ErrEndpointClosed() liberr.Error { return ErrorEndpointClosed.Error() }
