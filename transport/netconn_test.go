package transport

import (
	"net"
	"os"
	"testing"
	"time"
)

func pipePair(t *testing.T) (net.Conn, net.Conn) {
	t.Helper()
	a, b := net.Pipe()
	t.Cleanup(func() { _ = a.Close(); _ = b.Close() })
	return a, b
}

func TestNewNetConnReadWrite(t *testing.T) {
	a, b := pipePair(t)
	tr := NewNetConn(a)
	defer tr.Close()

	done := make(chan struct{})
	tr.Execute(func() {
		tr.WriteFrame([]byte("hello"), func(n int, err error) {
			if err != nil || n != 5 {
				t.Errorf("unexpected write outcome: n=%d err=%v", n, err)
			}
			close(done)
		})
	})

	buf := make([]byte, 5)
	if _, err := b.Read(buf); err != nil {
		t.Fatalf("unexpected read error: %v", err)
	}
	if string(buf) != "hello" {
		t.Fatalf("unexpected payload: %q", buf)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("write callback never fired")
	}
}

func TestNetConnSupportsFileRegionWhenPlaintext(t *testing.T) {
	a, _ := pipePair(t)
	tr := NewNetConn(a)
	defer tr.Close()

	if !tr.SupportsFileRegion() {
		t.Fatalf("expected plaintext transport to support file regions")
	}
	if tr.TLSState().Enabled {
		t.Fatalf("expected TLS disabled for plaintext transport")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	a, _ := pipePair(t)
	tr := NewNetConn(a)

	if err := tr.Close(); err != nil {
		t.Fatalf("unexpected error on first close: %v", err)
	}
	if err := tr.Close(); err != nil {
		t.Fatalf("second close must be a no-op, got: %v", err)
	}
}

func TestWriteAfterCloseReturnsError(t *testing.T) {
	a, _ := pipePair(t)
	tr := NewNetConn(a)
	_ = tr.Close()

	done := make(chan error, 1)
	tr.WriteFrame([]byte("x"), func(n int, err error) { done <- err })

	select {
	case err := <-done:
		if err == nil {
			t.Fatalf("expected error writing after close")
		}
	case <-time.After(time.Second):
		t.Fatalf("callback never fired")
	}
}

func TestOnInactiveFiresOnPeerClose(t *testing.T) {
	a, b := pipePair(t)
	tr := NewNetConn(a)
	defer tr.Close()

	fired := make(chan struct{})
	tr.OnInactive(func() { close(fired) })

	go func() {
		buf := make([]byte, 1)
		_, _ = tr.Read(buf)
	}()

	_ = b.Close()

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatalf("expected OnInactive to fire after peer close")
	}
}

func TestWriteFileRegionTransfersContent(t *testing.T) {
	a, b := pipePair(t)
	tr := NewNetConn(a)
	defer tr.Close()

	f, err := os.CreateTemp(t.TempDir(), "region")
	if err != nil {
		t.Fatalf("tempfile: %v", err)
	}
	defer f.Close()

	if _, err := f.WriteString("0123456789"); err != nil {
		t.Fatalf("unexpected error writing fixture: %v", err)
	}

	region := NewFileRegion(f, 2, 5)

	done := make(chan struct{})
	tr.Execute(func() {
		tr.WriteFileRegion(region, func(n int, err error) {
			if err != nil || n != 5 {
				t.Errorf("unexpected write outcome: n=%d err=%v", n, err)
			}
			close(done)
		})
	})

	buf := make([]byte, 5)
	if _, err := b.Read(buf); err != nil {
		t.Fatalf("unexpected read error: %v", err)
	}
	if string(buf) != "23456" {
		t.Fatalf("unexpected payload: %q", buf)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("write callback never fired")
	}
}

func TestFileRegionConstructorAccessors(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "region")
	if err != nil {
		t.Fatalf("tempfile: %v", err)
	}
	defer f.Close()

	r := NewFileRegion(f, 10, 20)
	if r.File() != f || r.Offset() != 10 || r.Length() != 20 {
		t.Fatalf("unexpected file region: offset=%d length=%d", r.Offset(), r.Length())
	}
}
