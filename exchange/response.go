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
	"sync"

	"github.com/nabbar/httpcore/headers"
)

// ResponseHandle is the inbound side of an exchange: status, immutable
// headers, optional once-settable trailers, and a bounded body stream.
type ResponseHandle struct {
	StatusCode int
	Headers    *headers.Headers
	Body       ChunkSource

	mu       sync.Mutex
	trailers *headers.Headers
}

// NewResponseHandle builds a ResponseHandle from an already-decoded status
// line and header set. hdr is expected frozen (MarkWritten already called by
// the caller) since response headers are immutable per spec §3.
func NewResponseHandle(status int, hdr *headers.Headers, body ChunkSource) *ResponseHandle {
	return &ResponseHandle{StatusCode: status, Headers: hdr, Body: body}
}

// StatusCategory returns the first digit class of the status code (1-5).
func (r *ResponseHandle) StatusCategory() int { return r.StatusCode / 100 }

// SetTrailers sets the response trailers. Settable once; subsequent calls
// are no-ops, matching "optional trailers (settable once)" in spec §3.
func (r *ResponseHandle) SetTrailers(t *headers.Headers) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.trailers == nil {
		r.trailers = t
	}
}

// Trailers returns the trailers set via SetTrailers, or nil if none.
func (r *ResponseHandle) Trailers() *headers.Headers {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.trailers
}
