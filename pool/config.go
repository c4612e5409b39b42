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
	"github.com/nabbar/httpcore/internal/duration"
)

// Config holds the per-endpoint tunables recognized by the pool façade
// (spec §4.5, §6). MaxConcurrentPerConn is the dispatch cap of whichever
// engine backs a given connection (http1_max_concurrent_requests or
// http2_max_concurrent_streams); the pool itself is protocol-agnostic and
// only needs the number, not which config it came from.
type Config struct {
	MaxSize              int64
	MaxConcurrentPerConn int64
	DialTimeout          duration.Duration
}

// DefaultConfig returns the documented defaults: 2 connections per endpoint,
// 10 concurrent dispatches per connection (the http1 pipeline depth), and a
// 30s dial timeout.
func DefaultConfig() Config {
	return Config{
		MaxSize:              2,
		MaxConcurrentPerConn: 10,
		DialTimeout:          duration.Seconds(30),
	}
}
