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
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/nabbar/httpcore/exchange"
	"github.com/nabbar/httpcore/headers"
)

// pushChunkSource is an exchange.ChunkSource fed by a producer goroutine (the
// connection's read loop) through an unbuffered channel:
// the send blocks until Next is called, so the channel itself is the
// backpressure mechanism (spec §5's "explicit per-chunk acknowledgement").
type pushChunkSource struct {
	ch  chan *exchange.Chunk
	err chan error
}

func newPushChunkSource() *pushChunkSource {
	return &pushChunkSource{
		ch:  make(chan *exchange.Chunk),
		err: make(chan error, 1),
	}
}

func (s *pushChunkSource) Next(ctx context.Context) (*exchange.Chunk, error) {
	select {
	case c, ok := <-s.ch:
		if !ok {
			select {
			case err := <-s.err:
				return nil, err
			default:
				return nil, io.EOF
			}
		}
		return c, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// push delivers a chunk to the consumer, blocking until Next is called or ctx
// is canceled (the producer side of the pull-based backpressure contract).
func (s *pushChunkSource) push(ctx context.Context, data []byte, final bool) error {
	select {
	case s.ch <- exchange.NewChunk(data, final, nil):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// closeOK signals clean exhaustion (io.EOF on the next Next call).
func (s *pushChunkSource) closeOK() { close(s.ch) }

// closeErr signals abnormal termination.
func (s *pushChunkSource) closeErr(err error) {
	s.err <- err
	close(s.ch)
}

// readBody reads a response (or request, symmetrically) body off br according
// to the framing already decided (contentLength >= 0, or chunked), delivering
// chunks to sink. Returns any trailers read after the final chunk.
func readBody(ctx context.Context, br *bufio.Reader, contentLength int64, hasLength bool, chunked bool, sink *pushChunkSource) (*headers.Headers, error) {
	defer func() {
		if r := recover(); r != nil {
			sink.closeErr(exchange.ErrProtocolError("panic decoding body"))
		}
	}()

	switch {
	case chunked:
		return readChunkedBody(ctx, br, sink)
	case hasLength:
		return nil, readLengthBody(ctx, br, contentLength, sink)
	default:
		// No framing at all (HTTP/1.0 close-delimited body): read until EOF.
		return nil, readUntilEOFBody(ctx, br, sink)
	}
}

const bodyReadChunkSize = 32 * 1024

func readLengthBody(ctx context.Context, br *bufio.Reader, length int64, sink *pushChunkSource) error {
	if length == 0 {
		sink.closeOK()
		return nil
	}

	remain := length
	for remain > 0 {
		n := int64(bodyReadChunkSize)
		if n > remain {
			n = remain
		}

		buf := make([]byte, n)
		read, err := io.ReadFull(br, buf)
		if err != nil && err != io.ErrUnexpectedEOF {
			sink.closeErr(err)
			return err
		}

		remain -= int64(read)
		if err := sink.push(ctx, buf[:read], remain == 0); err != nil {
			return err
		}
	}

	sink.closeOK()
	return nil
}

func readUntilEOFBody(ctx context.Context, br *bufio.Reader, sink *pushChunkSource) error {
	for {
		buf := make([]byte, bodyReadChunkSize)
		n, err := br.Read(buf)
		if n > 0 {
			if perr := sink.push(ctx, buf[:n], err == io.EOF); perr != nil {
				return perr
			}
		}
		if err == io.EOF {
			sink.closeOK()
			return nil
		}
		if err != nil {
			sink.closeErr(err)
			return err
		}
	}
}

func readChunkedBody(ctx context.Context, br *bufio.Reader, sink *pushChunkSource) (*headers.Headers, error) {
	for {
		sizeLine, err := br.ReadString('\n')
		if err != nil {
			sink.closeErr(err)
			return nil, err
		}

		sizeLine = strings.TrimSpace(strings.SplitN(sizeLine, ";", 2)[0])
		size, err := strconv.ParseUint(sizeLine, 16, 64)
		if err != nil {
			e := ErrorInvalidChunkSize.Error(err)
			sink.closeErr(e)
			return nil, e
		}

		if size == 0 {
			trailers := headers.New()
			for {
				line, err := br.ReadString('\n')
				if err != nil {
					sink.closeErr(err)
					return nil, err
				}
				line = strings.TrimRight(line, "\r\n")
				if line == "" {
					break
				}
				name, value, err := headers.Decode(line)
				if err == nil {
					_ = trailers.Add(name, value)
				}
			}
			trailers.MarkWritten()
			sink.closeOK()
			return trailers, nil
		}

		buf := make([]byte, size)
		if _, err := io.ReadFull(br, buf); err != nil {
			sink.closeErr(err)
			return nil, err
		}
		if _, err := br.Discard(2); err != nil { // trailing CRLF after chunk data
			sink.closeErr(err)
			return nil, err
		}

		if err := sink.push(ctx, buf, false); err != nil {
			return nil, err
		}
	}
}
