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

package transport

import (
	"crypto/tls"
	"io"
	"net"

	libatm "github.com/nabbar/httpcore/internal/atomic"
	"github.com/nabbar/httpcore/internal/tlsstate"
)

type netTransport struct {
	conn   net.Conn
	tls    tlsstate.State
	exec   *executor
	closed libatm.Value[bool]

	onInactive  libatm.Value[func()]
	onException libatm.Value[func(error)]
}

// NewNetConn wraps a plaintext net.Conn (already dialed) as a Transport.
func NewNetConn(conn net.Conn) Transport {
	return newTransport(conn, tlsstate.Disabled)
}

// NewTLSConn wraps a *tls.Conn (handshake already completed by the caller,
// per §1: TLS establishment is out of scope for this package) as a Transport.
func NewTLSConn(conn *tls.Conn) Transport {
	return newTransport(conn, tlsstate.FromConn(conn))
}

func newTransport(conn net.Conn, st tlsstate.State) Transport {
	t := &netTransport{
		conn: conn,
		tls:  st,
		exec: newExecutor(),

		closed:      libatm.NewValue[bool](),
		onInactive:  libatm.NewValue[func()](),
		onException: libatm.NewValue[func(error)](),
	}
	t.closed.SetDefaultLoad(false)
	return t
}

func (t *netTransport) Read(p []byte) (int, error) {
	n, err := t.conn.Read(p)
	if err != nil {
		t.notifyTerminal(err)
	}
	return n, err
}

func (t *netTransport) notifyTerminal(err error) {
	if err != nil && err != io.EOF {
		if fn := t.onException.Load(); fn != nil {
			fn(err)
		}
	}
	if fn := t.onInactive.Load(); fn != nil {
		fn()
	}
}

func (t *netTransport) WriteFrame(p []byte, cb WriteCallback) {
	if t.closed.Load() {
		if cb != nil {
			cb(0, ErrorWriteAfterClose.Error())
		}
		return
	}

	n, err := t.conn.Write(p)
	if cb != nil {
		cb(n, err)
	}
}

func (t *netTransport) WriteFileRegion(r FileRegion, cb WriteCallback) {
	if t.closed.Load() {
		if cb != nil {
			cb(0, ErrorWriteAfterClose.Error())
		}
		return
	}

	if _, err := r.File().Seek(r.Offset(), io.SeekStart); err != nil {
		if cb != nil {
			cb(0, ErrorFileRegionSeek.Error(err))
		}
		return
	}

	// io.LimitReader over an *os.File lets net.TCPConn.ReadFrom take the
	// kernel sendfile(2) fast path transparently; this is the zero-copy
	// behavior spec §9 asks for without any platform-specific code here.
	n, err := io.Copy(t.conn, io.LimitReader(r.File(), r.Length()))
	if cb != nil {
		cb(int(n), err)
	}
}

func (t *netTransport) LocalAddr() net.Addr  { return t.conn.LocalAddr() }
func (t *netTransport) RemoteAddr() net.Addr { return t.conn.RemoteAddr() }

func (t *netTransport) TLSState() tlsstate.State { return t.tls }

func (t *netTransport) SupportsFileRegion() bool {
	return !t.tls.Enabled
}

func (t *netTransport) Execute(fn func()) { t.exec.Execute(fn) }

func (t *netTransport) OnInactive(fn func())       { t.onInactive.Store(fn) }
func (t *netTransport) OnException(fn func(error)) { t.onException.Store(fn) }

func (t *netTransport) Close() error {
	if t.closed.Swap(true) {
		return nil
	}

	err := t.conn.Close()
	t.exec.stop()
	return err
}
