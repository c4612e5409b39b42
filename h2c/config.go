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

package h2c

import (
	"github.com/nabbar/httpcore/http1"
	"github.com/nabbar/httpcore/http2"
	"github.com/nabbar/httpcore/internal/duration"
)

// Config controls the upgrade dance itself. HTTP1 and HTTP2 are handed
// unchanged to whichever engine ends up owning the connection once the
// coordinator settles (spec §4.2: rejection keeps HTTP/1.x, acceptance
// promotes to HTTP/2).
type Config struct {
	RequestTimeout   duration.Duration
	MaxBufferedBytes int

	HTTP1 http1.Config
	HTTP2 http2.Config
}

// defaultMaxBufferedBytes is the 64 KiB cap spec §4.2/§7 puts on bytes
// buffered while waiting out the upgrade response.
const defaultMaxBufferedBytes = 64 * 1024

func DefaultConfig() Config {
	return Config{
		RequestTimeout:   duration.Seconds(60),
		MaxBufferedBytes: defaultMaxBufferedBytes,
		HTTP1:            http1.DefaultConfig(),
		HTTP2:            http2.DefaultConfig(),
	}
}
