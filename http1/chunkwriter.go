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

package http1

import (
	"bufio"
	"fmt"

	"github.com/nabbar/httpcore/headers"
)

var crlf = []byte("\r\n")

// chunkWriter writes a request body using Transfer-Encoding: chunked,
// one chunk-head/body/CRLF triplet per write, terminated by writeLast.
type chunkWriter struct {
	w *bufio.Writer
}

func newChunkWriter(w *bufio.Writer) *chunkWriter {
	return &chunkWriter{w: w}
}

func (c *chunkWriter) writeChunk(p []byte) error {
	if _, err := fmt.Fprintf(c.w, "%x\r\n", len(p)); err != nil {
		return err
	}
	if _, err := c.w.Write(p); err != nil {
		return err
	}
	_, err := c.w.Write(crlf)
	return err
}

// writeLast writes the terminating zero-size chunk, any trailers, and the
// final blank line (RFC 7230 §4.1).
func (c *chunkWriter) writeLast(trailers *headers.Headers) error {
	if _, err := c.w.WriteString("0\r\n"); err != nil {
		return err
	}
	if trailers != nil {
		c.w.Write(trailers.WriteTo(nil))
	}
	_, err := c.w.Write(crlf)
	return err
}
