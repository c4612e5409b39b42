package headers

import (
	"net/http"
	"testing"
)

var httpCookieFixture = http.Cookie{Name: "session", Value: "abc123"}

func TestContentTypeParsesParams(t *testing.T) {
	h := New()
	_ = h.Set("Content-Type", "text/plain; charset=utf-8")

	media, params, err := ContentType(h)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if media != "text/plain" {
		t.Fatalf("unexpected media type: %q", media)
	}
	if params["charset"] != "utf-8" {
		t.Fatalf("unexpected charset param: %v", params)
	}
}

func TestContentTypeAbsent(t *testing.T) {
	h := New()

	media, params, err := ContentType(h)
	if err != nil || media != "" || params != nil {
		t.Fatalf("expected empty result for absent header, got %q %v %v", media, params, err)
	}
}

func TestContentLengthPresent(t *testing.T) {
	h := New()
	_ = h.Set("Content-Length", "42")

	length, ok, err := ContentLength(h)
	if err != nil || !ok || length != 42 {
		t.Fatalf("unexpected result: length=%d ok=%v err=%v", length, ok, err)
	}
}

func TestContentLengthAbsent(t *testing.T) {
	h := New()

	_, ok, err := ContentLength(h)
	if err != nil || ok {
		t.Fatalf("expected ok=false for absent header, got ok=%v err=%v", ok, err)
	}
}

func TestIsChunkedLastCodingOnly(t *testing.T) {
	h := New()
	_ = h.Set("Transfer-Encoding", "gzip, chunked")

	if !IsChunked(h) {
		t.Fatalf("expected chunked as the final coding")
	}
}

func TestIsChunkedFalseWhenNotLast(t *testing.T) {
	h := New()
	_ = h.Set("Transfer-Encoding", "chunked, gzip")

	if IsChunked(h) {
		t.Fatalf("expected chunked not recognized unless it is the final coding")
	}
}

func TestWantsCloseDetectsToken(t *testing.T) {
	h := New()
	_ = h.Set("Connection", "keep-alive, Close")

	if !WantsClose(h) {
		t.Fatalf("expected Connection: close to be detected case-insensitively")
	}
}

func TestWantsCloseFalseByDefault(t *testing.T) {
	h := New()
	_ = h.Set("Connection", "keep-alive")

	if WantsClose(h) {
		t.Fatalf("expected no close requested")
	}
}

func TestUpgradeLowercased(t *testing.T) {
	h := New()
	_ = h.Set("Upgrade", "  WebSocket ")

	if Upgrade(h) != "websocket" {
		t.Fatalf("unexpected upgrade value: %q", Upgrade(h))
	}
}

func TestCookiesRoundTrip(t *testing.T) {
	h := New()
	_ = h.Set("Cookie", "session=abc123; theme=dark")

	cookies := Cookies(h)
	if len(cookies) != 2 {
		t.Fatalf("expected 2 cookies, got %d", len(cookies))
	}
}

func TestAddSetCookieThenParseSetCookies(t *testing.T) {
	h := New()
	if err := AddSetCookie(h, &httpCookieFixture); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := SetCookies(h)
	if len(out) != 1 || out[0].Name != "session" {
		t.Fatalf("unexpected round-tripped cookie: %+v", out)
	}
}
