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
	"github.com/nabbar/httpcore/internal/duration"
)

// Config holds the per-connection tunables recognized by the engine (spec §6).
type Config struct {
	MaxConcurrentStreams    int
	RequestTimeout          duration.Duration
	GracefulShutdownTimeout duration.Duration
}

// DefaultConfig returns the documented defaults: stream cap 100, a 60s
// per-exchange timeout, and a 30s graceful shutdown window.
func DefaultConfig() Config {
	return Config{
		MaxConcurrentStreams:    100,
		RequestTimeout:          duration.Seconds(60),
		GracefulShutdownTimeout: duration.Seconds(30),
	}
}
