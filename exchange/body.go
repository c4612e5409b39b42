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
	"context"
	"io"
	"os"
	"sync"

	"github.com/nabbar/httpcore/transport"
)

// Chunk is a single released-exactly-once slice of request-body data (spec
// §3/§9: "every allocated chunk buffer is released exactly once").
type Chunk struct {
	Data    []byte
	Final   bool
	once    sync.Once
	release func()
}

// NewChunk wraps data as a Chunk; onRelease (optional) runs the first time
// Release is called, however many times Release itself is invoked.
func NewChunk(data []byte, final bool, onRelease func()) *Chunk {
	return &Chunk{Data: data, Final: final, release: onRelease}
}

// Release runs the chunk's release callback exactly once.
func (c *Chunk) Release() {
	if c == nil {
		return
	}
	c.once.Do(func() {
		if c.release != nil {
			c.release()
		}
	})
}

// ChunkSource is a pull-based async iterator: the consumer calling Next IS
// the demand signal (spec §9's "explicit backpressure" redesign), so there is
// no unbounded internal queue to overflow. Next returns io.EOF once exhausted.
type ChunkSource interface {
	Next(ctx context.Context) (*Chunk, error)
}

// chunkSourceFunc adapts a plain function to a ChunkSource.
type chunkSourceFunc func(ctx context.Context) (*Chunk, error)

func (f chunkSourceFunc) Next(ctx context.Context) (*Chunk, error) { return f(ctx) }

// EmptyChunkSource is "a signaling empty publisher" (spec §3): it yields
// nothing and immediately signals completion.
func EmptyChunkSource() ChunkSource {
	return chunkSourceFunc(func(ctx context.Context) (*Chunk, error) {
		return nil, io.EOF
	})
}

// SliceChunkSource returns a ChunkSource yielding each byte slice in order,
// with only the last chunk marked final, each released by the no-op default. Useful for tests and
// simple callers; production callers typically implement ChunkSource directly
// over their own body encoder's output.
func SliceChunkSource(chunks [][]byte) ChunkSource {
	i := 0
	return chunkSourceFunc(func(ctx context.Context) (*Chunk, error) {
		if i >= len(chunks) {
			return nil, io.EOF
		}
		c := NewChunk(chunks[i], i == len(chunks)-1, nil)
		i++
		return c, nil
	})
}

// FileRegionSource is a pull-based iterator over transport.FileRegion values,
// chunked to at most 1 MiB per region (spec §3). It is an RAII-style scoped
// acquisition: Close releases the underlying file descriptor on any terminal
// signal (exhaustion, cancel, or error) exactly once.
type FileRegionSource interface {
	Next(ctx context.Context) (transport.FileRegion, error)
	io.Closer
}

const MaxFileRegionSize = 1 << 20 // 1 MiB

type fileRegionSource struct {
	file   *os.File
	offset int64
	remain int64
	once   sync.Once
}

// NewFileRegionSource opens no new file handle: f is owned by the caller and
// closed by this source's Close, matching the "opened file handle" wording in
// spec §3 (the resource is already open when handed to the request body).
func NewFileRegionSource(f *os.File, offset, length int64) FileRegionSource {
	return &fileRegionSource{file: f, offset: offset, remain: length}
}

func (s *fileRegionSource) Next(ctx context.Context) (transport.FileRegion, error) {
	if s.remain <= 0 {
		return nil, io.EOF
	}

	n := s.remain
	if n > MaxFileRegionSize {
		n = MaxFileRegionSize
	}

	r := transport.NewFileRegion(s.file, s.offset, n)
	s.offset += n
	s.remain -= n
	return r, nil
}

func (s *fileRegionSource) Close() error {
	var err error
	s.once.Do(func() { err = s.file.Close() })
	return err
}

// RequestBody is a data source for an outbound request: either a chunk
// source (single- or multi-emission) or a file-region source. The two are
// mutually exclusive beyond a signaling empty publisher (spec §3).
type RequestBody struct {
	Chunks           ChunkSource
	FileRegions      FileRegionSource
	SingleEmission   bool
	ContentLength    int64
	HasContentLength bool
}

// NewChunkBody builds a RequestBody backed by a chunk source.
func NewChunkBody(src ChunkSource, singleEmission bool) *RequestBody {
	return &RequestBody{Chunks: src, SingleEmission: singleEmission, ContentLength: -1}
}

// NewFixedLengthChunkBody builds a single-emission RequestBody with a known
// Content-Length (spec §8: "Body consisting of a single chunk whose size is
// known at completion → emitted with Content-Length, no Transfer-Encoding").
func NewFixedLengthChunkBody(data []byte) *RequestBody {
	return &RequestBody{
		Chunks:           SliceChunkSource([][]byte{data}),
		SingleEmission:   true,
		ContentLength:    int64(len(data)),
		HasContentLength: true,
	}
}

// NewFileRegionBody builds a RequestBody backed by a file-region source.
func NewFileRegionBody(src FileRegionSource, length int64) *RequestBody {
	return &RequestBody{FileRegions: src, ContentLength: length, HasContentLength: true}
}

// EmptyBody is "a signaling empty publisher": spec §9's open question is
// resolved here as "emit Content-Length: 0 explicitly".
func EmptyBody() *RequestBody {
	return &RequestBody{Chunks: EmptyChunkSource(), SingleEmission: true, ContentLength: 0, HasContentLength: true}
}
