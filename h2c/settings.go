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
	"encoding/base64"
	"encoding/binary"
)

// settingHeaderTableSize and settingMaxConcurrentStreams are HTTP/2 SETTINGS
// identifiers (RFC 7540 §6.5.2), used here only to build the HTTP2-Settings
// upgrade header, not to actually configure the promoted connection (that
// happens through Config.HTTP2 once the real SETTINGS frame is exchanged).
const (
	settingHeaderTableSize     uint16 = 0x1
	settingMaxConcurrentStreams uint16 = 0x3
)

// encodeSettings renders the HTTP2-Settings header value: base64url, no
// padding, of one or more 6-byte (2-byte id, 4-byte value) entries (RFC 7540
// §3.2.1).
func encodeSettings(maxConcurrentStreams int) string {
	buf := make([]byte, 12)
	binary.BigEndian.PutUint16(buf[0:2], settingHeaderTableSize)
	binary.BigEndian.PutUint32(buf[2:6], 4096)
	binary.BigEndian.PutUint16(buf[6:8], settingMaxConcurrentStreams)
	binary.BigEndian.PutUint32(buf[8:12], uint32(maxConcurrentStreams))
	return base64.RawURLEncoding.EncodeToString(buf)
}
