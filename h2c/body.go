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
	"bufio"
	"bytes"
	"io"
	"net"
	"strconv"
	"strings"

	"github.com/nabbar/httpcore/exchange"
	"github.com/nabbar/httpcore/headers"
)

// prefixConn replays a buffered prefix before delegating reads to the
// underlying net.Conn. Used both when the upgrade is accepted (the bytes
// already pulled into the response bufio.Reader past the 101 head must reach
// the promoted http2.Connection) and when it is rejected (same for any bytes
// pulled past the fallback response's body).
type prefixConn struct {
	net.Conn
	prefix []byte
}

func (p *prefixConn) Read(b []byte) (int, error) {
	if len(p.prefix) > 0 {
		n := copy(b, p.prefix)
		p.prefix = p.prefix[n:]
		return n, nil
	}
	return p.Conn.Read(b)
}

// bufferedPrefix returns whatever br has already pulled off the wire beyond
// what it has been asked to parse, bounded by maxBytes (spec §4.2's 64 KiB
// buffering cap).
func bufferedPrefix(br *bufio.Reader, maxBytes int) ([]byte, error) {
	n := br.Buffered()
	if n > maxBytes {
		return nil, exchange.ErrMessageBufferOverflow()
	}
	if n == 0 {
		return nil, nil
	}
	return br.Peek(n)
}

// readResponseBody decodes the body of the non-101 response the upgrade
// request drew, per RFC 7230 §3.3.3's framing precedence (Content-Length,
// then chunked, then read-until-close). The chunked and read-until-close
// paths are bounded by maxBytes; a Content-Length body is read as declared.
func readResponseBody(br *bufio.Reader, status int, hdr *headers.Headers, maxBytes int) ([]byte, error) {
	if status/100 == 1 || status == 204 || status == 304 {
		return nil, nil
	}

	if n, ok, err := headers.ContentLength(hdr); err == nil && ok {
		buf := make([]byte, n)
		if _, err := io.ReadFull(br, buf); err != nil {
			return nil, exchange.ErrProtocolError(err.Error())
		}
		return buf, nil
	}

	if headers.IsChunked(hdr) {
		return readChunkedBody(br, maxBytes)
	}

	limited := io.LimitReader(br, int64(maxBytes)+1)
	buf, err := io.ReadAll(limited)
	if err != nil {
		return nil, exchange.ErrProtocolError(err.Error())
	}
	if len(buf) > maxBytes {
		return nil, exchange.ErrMessageBufferOverflow()
	}
	return buf, nil
}

func readChunkedBody(br *bufio.Reader, maxBytes int) ([]byte, error) {
	var out bytes.Buffer

	for {
		line, err := br.ReadString('\n')
		if err != nil {
			return nil, exchange.ErrProtocolError(err.Error())
		}
		line = strings.TrimRight(line, "\r\n")
		if idx := strings.IndexByte(line, ';'); idx >= 0 {
			line = line[:idx]
		}

		size, err := strconv.ParseInt(line, 16, 64)
		if err != nil {
			return nil, exchange.ErrProtocolError(err.Error())
		}
		if size == 0 {
			break
		}
		if out.Len()+int(size) > maxBytes {
			return nil, exchange.ErrMessageBufferOverflow()
		}

		if _, err := io.CopyN(&out, br, size); err != nil {
			return nil, exchange.ErrProtocolError(err.Error())
		}
		if _, err := br.Discard(2); err != nil { // trailing CRLF
			return nil, exchange.ErrProtocolError(err.Error())
		}
	}

	// trailer block, discarded up to the terminating blank line.
	for {
		line, err := br.ReadString('\n')
		if err != nil {
			return nil, exchange.ErrProtocolError(err.Error())
		}
		if strings.TrimRight(line, "\r\n") == "" {
			break
		}
	}

	return out.Bytes(), nil
}
