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

package websocket

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	gws "github.com/gorilla/websocket"

	libatm "github.com/nabbar/httpcore/internal/atomic"
	"github.com/nabbar/httpcore/internal/logger"
)

const writeControlDeadline = 5 * time.Second

// Socket is a client-side websocket connection (spec §4.3). It is constructed
// on top of an already-dialed HTTP/1.1 net.Conn: Dial itself performs the
// opening handshake (the GET request with Upgrade: websocket, and reading
// back the 101 response), delegated whole to gorilla/websocket's NewClient
// rather than hand-rolled the way h2c's cleartext upgrade is, since gorilla
// exposes no lower-level "wrap an already-negotiated conn" entry point (see
// DESIGN.md).
type Socket struct {
	conn *gws.Conn
	cfg  Config
	log  logger.FuncLog

	subscribed libatm.Value[bool]
	closed     libatm.Value[bool]

	writeMu   sync.Mutex
	closeOnce sync.Once

	subProtocol string
}

// Dial performs the websocket opening handshake over conn and returns a ready
// Socket plus the raw HTTP response the peer sent back. When the handshake
// itself fails, conn is left for the caller to close; when the handshake
// succeeds but a required subprotocol was not agreed, Dial closes conn.
func Dial(ctx context.Context, conn net.Conn, u *url.URL, header http.Header, cfg Config, log logger.FuncLog) (*Socket, *http.Response, error) {
	if cfg.ReadBufferSize <= 0 {
		cfg.ReadBufferSize = defaultReadBufferSize
	}
	if cfg.WriteBufferSize <= 0 {
		cfg.WriteBufferSize = defaultWriteBufferSize
	}
	if cfg.MaxFrameSize <= 0 {
		cfg.MaxFrameSize = defaultMaxFrameSize
	}
	if log == nil {
		discard := logger.Discard()
		log = func() logger.Logger { return discard }
	}

	if header == nil {
		header = http.Header{}
	}
	if len(cfg.Subprotocols) > 0 {
		// gorilla's own Dialer sends one comma-joined header value, not one
		// header line per protocol.
		header.Set("Sec-WebSocket-Protocol", strings.Join(cfg.Subprotocols, ", "))
	}

	if deadline := cfg.HandshakeTimeout.Time(); deadline > 0 {
		_ = conn.SetDeadline(time.Now().Add(deadline))
		defer func() { _ = conn.SetDeadline(time.Time{}) }()
	}

	gc, resp, err := gws.NewClient(conn, u, header, cfg.ReadBufferSize, cfg.WriteBufferSize)
	if err != nil {
		log().Entry(logger.WarnLevel, "websocket handshake failed").FieldAdd("url", u.String()).ErrorAdd(true, err).Log()
		return nil, resp, ErrHandshakeFailed(err.Error())
	}

	sub := gc.Subprotocol()
	if cfg.RequireSubprotocol && len(cfg.Subprotocols) > 0 && sub == "" {
		_ = gc.Close()
		return nil, resp, ErrSubprotocolRequired()
	}

	s := &Socket{conn: gc, cfg: cfg, log: log, subProtocol: sub, subscribed: libatm.NewValue[bool](), closed: libatm.NewValue[bool]()}
	s.subscribed.SetDefaultLoad(false)
	s.subscribed.Store(false)
	s.closed.SetDefaultLoad(false)
	return s, resp, nil
}

// SubProtocol returns the negotiated subprotocol, or "" if none.
func (s *Socket) SubProtocol() string { return s.subProtocol }

// Factory returns the FrameFactory bound to this socket's configured limits.
func (s *Socket) Factory() FrameFactory { return FrameFactory{maxFrameSize: s.cfg.MaxFrameSize} }

// IsClosed reports whether the socket has already run its close sequence.
func (s *Socket) IsClosed() bool { return s.closed.Load() }

func (s *Socket) subscribe() error {
	if !s.subscribed.CompareAndSwap(false, true) {
		return ErrAlreadySubscribed()
	}
	return nil
}

// Frames subscribes the raw inbound frame stream (spec §4.3: "frames()
// yields every frame as-is"). Only one of Frames/Messages/TextMessages/
// BinaryMessages may be called, on the whole lifetime of the socket.
func (s *Socket) Frames() (FrameSource, error) {
	if err := s.subscribe(); err != nil {
		return nil, err
	}
	return frameSourceFunc(func(ctx context.Context) (*Frame, error) {
		kind, data, err := s.nextInbound(ctx)
		if err != nil {
			return nil, err
		}
		return NewFrame(kind, true, data, nil), nil
	}), nil
}

// Messages subscribes the inbound stream grouped into complete TEXT/BINARY
// messages (spec §4.3).
func (s *Socket) Messages() (MessageSource, error) {
	if err := s.subscribe(); err != nil {
		return nil, err
	}
	return messageSourceFunc(func(ctx context.Context) (*Message, error) {
		kind, data, err := s.nextInbound(ctx)
		if err != nil {
			return nil, err
		}
		return NewMessage(kind, data, nil), nil
	}), nil
}

// TextMessages subscribes Messages, filtered to TEXT.
func (s *Socket) TextMessages() (MessageSource, error) {
	src, err := s.Messages()
	if err != nil {
		return nil, err
	}
	return filterMessages(src, KindText), nil
}

// BinaryMessages subscribes Messages, filtered to BINARY.
func (s *Socket) BinaryMessages() (MessageSource, error) {
	src, err := s.Messages()
	if err != nil {
		return nil, err
	}
	return filterMessages(src, KindBinary), nil
}

func filterMessages(src MessageSource, want Kind) MessageSource {
	return messageSourceFunc(func(ctx context.Context) (*Message, error) {
		for {
			m, err := src.Next(ctx)
			if err != nil {
				return nil, err
			}
			if m.Kind == want {
				return m, nil
			}
			m.Release()
		}
	})
}

// nextInbound performs one blocking ReadMessage, unblocked early by ctx
// cancellation via a forced read deadline. gorilla/websocket's default PING
// handler already replies with a PONG echoing the payload and its default
// CLOSE handler already answers the close handshake, so control frames never
// reach this method; only TEXT/BINARY reads, or a terminal error, do.
func (s *Socket) nextInbound(ctx context.Context) (Kind, []byte, error) {
	if s.closed.Load() {
		return 0, nil, io.EOF
	}

	done := make(chan struct{})
	if ctx != nil {
		go func() {
			select {
			case <-ctx.Done():
				_ = s.conn.SetReadDeadline(time.Now())
			case <-done:
			}
		}()
	}

	mt, data, err := s.conn.ReadMessage()
	close(done)

	if err != nil {
		// A ctx cancellation only aborts this one pull: the forced deadline
		// above is local to this call, not a reason to tear down the socket.
		if ctx != nil && ctx.Err() != nil {
			_ = s.conn.SetReadDeadline(time.Time{})
			return 0, nil, ctx.Err()
		}

		s.markClosed()
		if gws.IsCloseError(err, gws.CloseNormalClosure, gws.CloseGoingAway) {
			return 0, nil, io.EOF
		}
		return 0, nil, ErrConnectionClosed(err.Error())
	}

	switch mt {
	case gws.BinaryMessage:
		return KindBinary, data, nil
	default:
		return KindText, data, nil
	}
}

// SendFrames pulls frames from src and writes each to the wire until src is
// exhausted or errors (spec §4.3 outbound). Every pulled frame is released
// exactly once, whether or not the write succeeds.
func (s *Socket) SendFrames(ctx context.Context, src FrameSource) error {
	for {
		f, err := src.Next(ctx)
		if err == io.EOF {
			if s.cfg.CloseOnComplete {
				_ = s.Close()
			}
			return nil
		}
		if err != nil {
			_ = s.Close()
			return err
		}

		werr := s.writeFrame(f.Kind, f.Data)
		f.Release()
		if werr != nil {
			_ = s.Close()
			return werr
		}
	}
}

// SendMessages pulls messages from src and writes each as a single frame
// (spec §4.3 outbound).
func (s *Socket) SendMessages(ctx context.Context, src MessageSource) error {
	for {
		m, err := src.Next(ctx)
		if err == io.EOF {
			if s.cfg.CloseOnComplete {
				_ = s.Close()
			}
			return nil
		}
		if err != nil {
			_ = s.Close()
			return err
		}

		werr := s.writeFrame(m.Kind, m.Data)
		m.Release()
		if werr != nil {
			_ = s.Close()
			return werr
		}
	}
}

func (s *Socket) writeFrame(kind Kind, data []byte) error {
	if s.closed.Load() {
		return ErrSocketClosed()
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if kind.isControl() {
		return s.conn.WriteControl(kind.wire(), data, time.Now().Add(writeControlDeadline))
	}
	return s.conn.WriteMessage(kind.wire(), data)
}

// Close closes the socket with NORMAL_CLOSURE (spec §4.3: "close() =
// close(NORMAL_CLOSURE, "Normal Closure")").
func (s *Socket) Close() error {
	return s.CloseWithReason(gws.CloseNormalClosure, "Normal Closure")
}

// CloseWithReason builds a CLOSE frame whose payload is the 2-byte
// big-endian code followed by the UTF-8 reason, truncating the reason so the
// total payload fits in 125 bytes (spec §4.3). Idempotent: closing an
// already-closed socket is a no-op.
func (s *Socket) CloseWithReason(code int, reason string) error {
	if s.closed.Load() {
		return nil
	}

	reason = truncateCloseReason(reason)
	payload := gws.FormatCloseMessage(code, reason)

	var err error
	s.closeOnce.Do(func() {
		s.markClosed()
		s.writeMu.Lock()
		err = s.conn.WriteControl(gws.CloseMessage, payload, time.Now().Add(writeControlDeadline))
		s.writeMu.Unlock()
		_ = s.conn.Close()
	})
	return err
}

func (s *Socket) markClosed() { s.closed.Store(true) }

// truncateCloseReason shortens reason so that, combined with the 2-byte
// status code, the CLOSE frame payload fits the 125-byte control frame cap,
// without splitting a UTF-8 rune.
func truncateCloseReason(reason string) string {
	const budget = maxControlFramePayload - 2
	if len(reason) <= budget {
		return reason
	}

	b := reason[:budget]
	for len(b) > 0 {
		r, size := utf8.DecodeLastRuneInString(b)
		if r != utf8.RuneError || size != 1 {
			break
		}
		b = b[:len(b)-1]
	}
	return b
}
