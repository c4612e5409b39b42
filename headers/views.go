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

package headers

import (
	"mime"
	"net/http"
	"strconv"
	"strings"
)

// ContentType parses the Content-Type header into its media type and
// parameters (e.g. "text/plain", map[string]string{"charset": "utf-8"}).
func ContentType(h *Headers) (mediaType string, params map[string]string, err error) {
	v := h.Get("Content-Type")
	if v == "" {
		return "", nil, nil
	}

	mediaType, params, err = mime.ParseMediaType(v)
	if err != nil {
		return "", nil, ErrorContentType.Error(err)
	}
	return mediaType, params, nil
}

// ContentLength parses the Content-Length header. ok is false when absent.
func ContentLength(h *Headers) (length int64, ok bool, err error) {
	v := h.Get("Content-Length")
	if v == "" {
		return 0, false, nil
	}

	length, err = strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false, err
	}
	return length, true, nil
}

// IsChunked reports whether Transfer-Encoding names "chunked" as its final
// (outermost) coding, per RFC 7230 §3.3.1.
func IsChunked(h *Headers) bool {
	v := h.Get("Transfer-Encoding")
	if v == "" {
		return false
	}

	parts := strings.Split(v, ",")
	last := strings.TrimSpace(parts[len(parts)-1])
	return strings.EqualFold(last, "chunked")
}

// Upgrade returns the Upgrade header value, lower-cased for comparison.
func Upgrade(h *Headers) string {
	return strings.ToLower(strings.TrimSpace(h.Get("Upgrade")))
}

// ConnectionTokens returns the comma-separated tokens of the Connection
// header, lower-cased (e.g. []string{"upgrade"} or []string{"close"}).
func ConnectionTokens(h *Headers) []string {
	v := h.Get("Connection")
	if v == "" {
		return nil
	}

	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.ToLower(strings.TrimSpace(p)))
	}
	return out
}

// WantsClose reports whether the Connection header requests the connection
// be closed after this exchange (spec §4.1: "Connection: close" eviction).
func WantsClose(h *Headers) bool {
	for _, t := range ConnectionTokens(h) {
		if t == "close" {
			return true
		}
	}
	return false
}

// Host returns the Host header value.
func Host(h *Headers) string {
	return h.Get("Host")
}

// Expect returns the Expect header value, lower-cased.
func Expect(h *Headers) string {
	return strings.ToLower(strings.TrimSpace(h.Get("Expect")))
}

// Cookies parses the Cookie request header into individual cookies. The
// stdlib's net/http.Cookie is reused here rather than a bespoke type: no
// third-party cookie codec appears anywhere in the retrieved example pack,
// and RFC 6265 cookie-pair parsing is exactly what net/http already does.
func Cookies(h *Headers) []*http.Cookie {
	req := &http.Request{Header: http.Header{"Cookie": h.Values("Cookie")}}
	return req.Cookies()
}

// SetCookies parses the Set-Cookie response headers.
func SetCookies(h *Headers) []*http.Cookie {
	resp := &http.Response{Header: http.Header{"Set-Cookie": h.Values("Set-Cookie")}}
	return resp.Cookies()
}

// AddSetCookie appends an encoded Set-Cookie header for c.
func AddSetCookie(h *Headers, c *http.Cookie) error {
	return h.Add("Set-Cookie", c.String())
}
