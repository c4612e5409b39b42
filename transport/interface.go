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

// Package transport owns the byte duplex and its single connection executor.
// It exposes write-frame and write-file-region operations with per-write
// completion callbacks, and surfaces TLS state, addresses and
// channel-inactive/exception events. TLS establishment itself, and socket
// dialing, happen outside this package: it only drives an already-connected
// net.Conn.
package transport

import (
	"net"
	"os"

	"github.com/nabbar/httpcore/internal/tlsstate"
)

// WriteCallback reports the outcome of a WriteFrame/WriteFileRegion call.
type WriteCallback func(n int, err error)

// FileRegion is an opaque (file, offset, length) triple allowing zero-copy
// transfer where the underlying transport supports it.
type FileRegion interface {
	File() *os.File
	Offset() int64
	Length() int64
}

type fileRegion struct {
	file   *os.File
	offset int64
	length int64
}

// NewFileRegion builds a FileRegion over f, covering [offset, offset+length).
func NewFileRegion(f *os.File, offset, length int64) FileRegion {
	return &fileRegion{file: f, offset: offset, length: length}
}

func (r *fileRegion) File() *os.File { return r.file }
func (r *fileRegion) Offset() int64  { return r.offset }
func (r *fileRegion) Length() int64  { return r.length }

// Transport is the byte-duplex collaborator consumed by the protocol engines.
type Transport interface {
	// Read pulls raw bytes off the wire; callers provide their own protocol
	// decoder loop (the engines run their read loop on a dedicated goroutine).
	Read(p []byte) (int, error)

	// WriteFrame writes p in full and invokes cb with the outcome. Must only
	// be called from within the connection executor (see Execute).
	WriteFrame(p []byte, cb WriteCallback)

	// WriteFileRegion transfers a FileRegion, using the platform's zero-copy
	// path when the underlying connection supports it. Must only be called
	// from within the connection executor.
	WriteFileRegion(r FileRegion, cb WriteCallback)

	LocalAddr() net.Addr
	RemoteAddr() net.Addr

	// TLSState reports whether this transport is TLS-backed and, if so, the
	// negotiated connection state (never establishes or configures TLS).
	TLSState() tlsstate.State

	// SupportsFileRegion reports whether the fast zero-copy write path is
	// available on this transport (false for TLS connections).
	SupportsFileRegion() bool

	// Execute schedules fn on the connection executor, the single goroutine
	// that owns this transport's mutable state, in FIFO order. Safe to call
	// reentrantly from within a task already running on that goroutine: fn
	// is simply queued behind it.
	Execute(fn func())

	// OnInactive registers the callback invoked on every failed Read of the
	// underlying channel (EOF, or a read after the transport was closed).
	OnInactive(fn func())

	// OnException registers the callback invoked with the error of every
	// failed Read other than io.EOF, before OnInactive's callback.
	OnException(fn func(error))

	Close() error
}
