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
	"net/url"
	"strings"
)

// PathBuilder is a cloneable, incrementally built request path with lazily
// parsed query parameters.
type PathBuilder struct {
	segments []string
	rawQuery string
	query    url.Values
}

// NewPathBuilder returns an empty PathBuilder.
func NewPathBuilder() *PathBuilder {
	return &PathBuilder{}
}

// Segment appends a path segment.
func (p *PathBuilder) Segment(seg string) *PathBuilder {
	p.segments = append(p.segments, strings.Trim(seg, "/"))
	return p
}

// RawQuery sets the raw query string (without leading '?').
func (p *PathBuilder) RawQuery(q string) *PathBuilder {
	p.rawQuery = q
	p.query = nil
	return p
}

// Query lazily parses and returns the query parameters; safe to mutate, and
// String renders the mutated values. A later RawQuery call replaces them.
func (p *PathBuilder) Query() url.Values {
	if p.query == nil {
		p.query, _ = url.ParseQuery(p.rawQuery)
		if p.query == nil {
			p.query = url.Values{}
		}
	}
	return p.query
}

// Clone returns an independent copy of the builder.
func (p *PathBuilder) Clone() *PathBuilder {
	n := &PathBuilder{
		segments: append([]string(nil), p.segments...),
		rawQuery: p.rawQuery,
	}
	if p.query != nil {
		n.query = make(url.Values, len(p.query))
		for k, v := range p.query {
			n.query[k] = append([]string(nil), v...)
		}
	}
	return n
}

// String renders the built path plus query string.
func (p *PathBuilder) String() string {
	path := "/" + strings.Join(p.segments, "/")

	query := p.rawQuery
	if p.query != nil {
		query = p.query.Encode()
	}
	if query == "" {
		return path
	}
	return path + "?" + query
}
