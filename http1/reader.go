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
	"strconv"
	"strings"

	"github.com/nabbar/httpcore/exchange"
	"github.com/nabbar/httpcore/headers"
)

// ParseResponseHead reads and decodes a single "HTTP/x.y NNN reason" status
// line followed by a header block up to the terminating blank line. Exported
// for reuse by the h2c coordinator, which drives its own upgrade exchange
// over the wire before handing the connection off to the HTTP/2 engine.
func ParseResponseHead(br *bufio.Reader) (status int, hdr *headers.Headers, err error) {
	return parseResponseHead(br)
}

func parseResponseHead(br *bufio.Reader) (status int, hdr *headers.Headers, err error) {
	line, err := br.ReadString('\n')
	if err != nil {
		return 0, nil, err
	}
	line = strings.TrimRight(line, "\r\n")

	parts := strings.SplitN(line, " ", 3)
	if len(parts) < 2 {
		return 0, nil, ErrorMalformedStatusLine.Error()
	}

	version := strings.TrimPrefix(parts[0], "HTTP/")
	if version != "1.0" && version != "1.1" {
		return 0, nil, ErrorUnsupportedVersion.Errorf(parts[0])
	}

	status, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, nil, ErrorMalformedStatusLine.Error(err)
	}

	hdr = headers.New()
	for {
		l, err := br.ReadString('\n')
		if err != nil {
			return 0, nil, err
		}
		l = strings.TrimRight(l, "\r\n")
		if l == "" {
			break
		}
		name, value, err := headers.Decode(l)
		if err != nil {
			return 0, nil, exchange.ErrProtocolError(err.Error())
		}
		_ = hdr.Add(name, value)
	}
	hdr.MarkWritten()

	return status, hdr, nil
}
