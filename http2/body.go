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
	"context"
	"io"

	"github.com/nabbar/httpcore/exchange"
)

// fileRegionReader adapts an exchange.FileRegionSource to an io.ReadCloser.
// golang.org/x/net/http2's client API has no zero-copy file-region primitive
// (that fast path is http1-only, see spec §4.1), so file-backed bodies are
// streamed region-by-region through a plain io.SectionReader here instead.
type fileRegionReader struct {
	ctx context.Context
	src exchange.FileRegionSource
	cur io.Reader
	err error
}

func newFileRegionReader(ctx context.Context, src exchange.FileRegionSource) io.ReadCloser {
	return &fileRegionReader{ctx: ctx, src: src}
}

func (r *fileRegionReader) Read(p []byte) (int, error) {
	if r.err != nil {
		return 0, r.err
	}

	for r.cur == nil {
		region, err := r.src.Next(r.ctx)
		if err != nil {
			r.err = err
			return 0, err
		}
		r.cur = io.NewSectionReader(region.File(), region.Offset(), region.Length())
	}

	n, err := r.cur.Read(p)
	if err == io.EOF {
		r.cur = nil
		if n == 0 {
			return r.Read(p)
		}
		return n, nil
	}
	return n, err
}

func (r *fileRegionReader) Close() error {
	r.err = io.EOF
	return r.src.Close()
}

// chunkSourceReader adapts an exchange.ChunkSource to an io.ReadCloser so a
// request body can be handed to http.Request.Body, which is what
// golang.org/x/net/http2's ClientConn.RoundTrip consumes. Each chunk is
// released as soon as it has been fully copied out.
type chunkSourceReader struct {
	ctx context.Context
	src exchange.ChunkSource
	cur *exchange.Chunk
	off int
	err error
}

func newChunkSourceReader(ctx context.Context, src exchange.ChunkSource) io.ReadCloser {
	return &chunkSourceReader{ctx: ctx, src: src}
}

func (r *chunkSourceReader) Read(p []byte) (int, error) {
	if r.err != nil {
		return 0, r.err
	}

	for r.cur == nil || r.off >= len(r.cur.Data) {
		if r.cur != nil {
			r.cur.Release()
			r.cur = nil
		}
		c, err := r.src.Next(r.ctx)
		if err != nil {
			r.err = err
			return 0, err
		}
		r.cur = c
		r.off = 0
	}

	n := copy(p, r.cur.Data[r.off:])
	r.off += n
	return n, nil
}

func (r *chunkSourceReader) Close() error {
	if r.cur != nil {
		r.cur.Release()
		r.cur = nil
	}
	return nil
}

// bodyChunkSource adapts an io.ReadCloser (an http2 response body) into an
// exchange.ChunkSource, matching the pull-based backpressure contract the
// rest of this module's engines expose (spec §5, §9).
type bodyChunkSource struct {
	rc   io.ReadCloser
	done bool
}

func newBodyChunkSource(rc io.ReadCloser) exchange.ChunkSource {
	return &bodyChunkSource{rc: rc}
}

const responseBodyChunkSize = 32 * 1024

func (s *bodyChunkSource) Next(ctx context.Context) (*exchange.Chunk, error) {
	if s.done {
		return nil, io.EOF
	}

	buf := make([]byte, responseBodyChunkSize)
	n, err := s.rc.Read(buf)
	if n > 0 {
		if err == io.EOF {
			s.done = true
		}
		return exchange.NewChunk(buf[:n], s.done, nil), nil
	}
	if err != nil {
		s.done = true
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, err
	}
	return exchange.NewChunk(nil, false, nil), nil
}
