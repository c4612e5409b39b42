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
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"net/url"
)

// EncodeURLEncoded builds an "application/x-www-form-urlencoded" body from
// form values. It is a convenience for callers assembling an exchange.RequestBody;
// the core engines never call it directly (§6: body encoders are external
// collaborators).
func EncodeURLEncoded(values url.Values) []byte {
	return []byte(values.Encode())
}

// MultipartField is a single part of a multipart/form-data body: either a
// plain field (Filename == "") or a file field, with Content-Type optional.
type MultipartField struct {
	Name        string
	Filename    string
	ContentType string
	Content     []byte
}

// EncodeMultipart builds a complete multipart/form-data body out of fields,
// returning the body bytes and the boundary-qualified Content-Type value to
// set on the request. Each part is created with mime/multipart.Writer.CreatePart
// from a Content-Disposition header built here; names and filenames go through
// escapeQuotes, which percent-encodes non-ASCII bytes (RFC 3986, per spec §6).
func EncodeMultipart(fields []MultipartField) (body []byte, contentType string, err error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	for _, f := range fields {
		h := make(textproto.MIMEHeader)

		if f.Filename != "" {
			h.Set("Content-Disposition", fmt.Sprintf(
				`form-data; name="%s"; filename="%s"`,
				escapeQuotes(f.Name), escapeQuotes(f.Filename)))
		} else {
			h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"`, escapeQuotes(f.Name)))
		}
		if f.ContentType != "" {
			h.Set("Content-Type", f.ContentType)
		}

		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}

		if _, err = part.Write(f.Content); err != nil {
			return nil, "", err
		}
	}

	if err = w.Close(); err != nil {
		return nil, "", err
	}

	return buf.Bytes(), w.FormDataContentType(), nil
}

// escapeQuotes escapes '"' and '\' for safe use inside a quoted-string
// disposition parameter, then percent-encodes control bytes, DEL and any
// non-ASCII bytes (RFC 3986), since form-data field/file names are not
// guaranteed ASCII.
func escapeQuotes(s string) string {
	var b bytes.Buffer
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"' || c == '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case c < 0x20 || c >= 0x7f:
			fmt.Fprintf(&b, "%%%02X", c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
