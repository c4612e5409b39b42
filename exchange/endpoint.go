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
	libctx "github.com/nabbar/httpcore/internal/context"
	"github.com/nabbar/httpcore/headers"
)

// EndpointExchange is the input to a connection (spec §3): not yet bound to
// any connection, carrying only what the caller supplied.
type EndpointExchange struct {
	Method      string
	Path        string
	PathBuilder *PathBuilder
	Authority   string
	Headers     *headers.Headers
	Body        *RequestBody

	// Context is the opaque user value carried alongside the exchange,
	// modeled with the ambient context.Config wrapper rather than a bare
	// context.WithValue chain (see SPEC_FULL.md AMBIENT STACK).
	Context libctx.Config[string]
}

// NewEndpointExchange builds an EndpointExchange with fresh, empty headers
// and a background exchange context.
func NewEndpointExchange(method, path string) *EndpointExchange {
	return &EndpointExchange{
		Method:  method,
		Path:    path,
		Headers: headers.New(),
		Context: libctx.New[string](nil),
	}
}
