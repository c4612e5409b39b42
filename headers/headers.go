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

// Package headers is the header service facade: decode/encode of named
// headers and parsed views (content-type, content-length, transfer-encoding,
// cookie, set-cookie, upgrade, host, expect). It does not implement a general
// codec registry; only the named headers the engines actually touch.
package headers

import (
	"net/textproto"
	"sort"
	"strings"
	"sync"
)

// Headers is a mutable, ordered-insensitive header bag. It canonicalizes
// names the way net/textproto does (the same canonical form RFC 7230 wire
// framing expects), since that canonicalization is part of the wire format
// itself and not a detail any third-party header library in the retrieved
// pack reimplements differently.
type Headers struct {
	mu      sync.RWMutex
	values  map[string][]string
	written bool
}

// New returns an empty, mutable Headers set.
func New() *Headers {
	return &Headers{values: make(map[string][]string)}
}

func canon(name string) string {
	return textproto.CanonicalMIMEHeaderKey(name)
}

// Get returns the first value for name, or "" if absent.
func (h *Headers) Get(name string) string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if v := h.values[canon(name)]; len(v) > 0 {
		return v[0]
	}
	return ""
}

// Values returns all values for name, in insertion order.
func (h *Headers) Values(name string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]string(nil), h.values[canon(name)]...)
}

// Set replaces all existing values for name with value.
// Returns ErrorHeadersWritten if the headers have already been written.
func (h *Headers) Set(name, value string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.written {
		return ErrorHeadersWritten.Error()
	}

	h.values[canon(name)] = []string{value}
	return nil
}

// Add appends value to the list of values for name.
// Returns ErrorHeadersWritten if the headers have already been written.
func (h *Headers) Add(name, value string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.written {
		return ErrorHeadersWritten.Error()
	}

	h.values[canon(name)] = append(h.values[canon(name)], value)
	return nil
}

// Del removes all values for name.
func (h *Headers) Del(name string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.written {
		return ErrorHeadersWritten.Error()
	}

	delete(h.values, canon(name))
	return nil
}

// MarkWritten freezes the header set: spec §3 invariant "a request's headers
// are mutable only until headers-written becomes true".
func (h *Headers) MarkWritten() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.written = true
}

// Written reports whether MarkWritten has been called.
func (h *Headers) Written() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.written
}

// Clone returns an independent copy, including the written flag.
func (h *Headers) Clone() *Headers {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := &Headers{values: make(map[string][]string, len(h.values)), written: h.written}
	for k, v := range h.values {
		n.values[k] = append([]string(nil), v...)
	}
	return n
}

// Range calls fn for every header name in sorted order, for deterministic
// wire output.
func (h *Headers) Range(fn func(name string, values []string) bool) {
	h.mu.RLock()
	names := make([]string, 0, len(h.values))
	for k := range h.values {
		names = append(names, k)
	}
	sort.Strings(names)
	vals := make(map[string][]string, len(h.values))
	for _, n := range names {
		vals[n] = append([]string(nil), h.values[n]...)
	}
	h.mu.RUnlock()

	for _, n := range names {
		if !fn(n, vals[n]) {
			return
		}
	}
}

// WriteTo appends the RFC 7230 header-block encoding of h (each header line
// terminated by CRLF, no trailing blank line) to dst and returns the result.
func (h *Headers) WriteTo(dst []byte) []byte {
	h.Range(func(name string, values []string) bool {
		for _, v := range values {
			dst = append(dst, name...)
			dst = append(dst, ':', ' ')
			dst = append(dst, v...)
			dst = append(dst, '\r', '\n')
		}
		return true
	})
	return dst
}

// Decode parses a single raw "Name: value" header line into its canonical
// name and trimmed value.
func Decode(line string) (name, value string, err error) {
	idx := strings.IndexByte(line, ':')
	if idx < 0 {
		return "", "", ErrorDecode.Error()
	}

	name = canon(strings.TrimSpace(line[:idx]))
	value = strings.TrimSpace(line[idx+1:])
	return name, value, nil
}
