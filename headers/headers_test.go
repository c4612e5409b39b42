package headers

import (
	"strings"
	"testing"
)

func TestSetGetCanonicalizesName(t *testing.T) {
	h := New()
	if err := h.Set("content-type", "text/plain"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := h.Get("Content-Type"); got != "text/plain" {
		t.Fatalf("expected canonical lookup to find value, got %q", got)
	}
}

func TestAddAccumulatesValues(t *testing.T) {
	h := New()
	_ = h.Add("X-Token", "a")
	_ = h.Add("X-Token", "b")

	got := h.Values("x-token")
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("unexpected accumulated values: %v", got)
	}
}

func TestSetReplacesExistingValues(t *testing.T) {
	h := New()
	_ = h.Add("X-Token", "a")
	_ = h.Set("X-Token", "b")

	got := h.Values("X-Token")
	if len(got) != 1 || got[0] != "b" {
		t.Fatalf("expected Set to replace, got %v", got)
	}
}

func TestMarkWrittenFreezesMutation(t *testing.T) {
	h := New()
	h.MarkWritten()

	if err := h.Set("X", "1"); err == nil {
		t.Fatalf("expected error setting header after MarkWritten")
	}
	if err := h.Add("X", "1"); err == nil {
		t.Fatalf("expected error adding header after MarkWritten")
	}
	if err := h.Del("X"); err == nil {
		t.Fatalf("expected error deleting header after MarkWritten")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	h := New()
	_ = h.Set("X", "1")

	c := h.Clone()
	_ = c.Set("X", "2")

	if h.Get("X") != "1" {
		t.Fatalf("expected original untouched by clone mutation, got %q", h.Get("X"))
	}
	if c.Get("X") != "2" {
		t.Fatalf("expected clone to reflect its own mutation, got %q", c.Get("X"))
	}
}

func TestRangeIsSortedForDeterministicOutput(t *testing.T) {
	h := New()
	_ = h.Set("Zeta", "1")
	_ = h.Set("Alpha", "2")

	var names []string
	h.Range(func(name string, values []string) bool {
		names = append(names, name)
		return true
	})

	if len(names) != 2 || names[0] != "Alpha" || names[1] != "Zeta" {
		t.Fatalf("expected sorted names, got %v", names)
	}
}

func TestWriteToEncodesHeaderBlock(t *testing.T) {
	h := New()
	_ = h.Set("Host", "example.com")

	out := string(h.WriteTo(nil))
	if out != "Host: example.com\r\n" {
		t.Fatalf("unexpected encoding: %q", out)
	}
}

func TestDecodeParsesNameAndValue(t *testing.T) {
	name, value, err := Decode("content-type:  text/plain  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name != "Content-Type" || value != "text/plain" {
		t.Fatalf("unexpected decode result: name=%q value=%q", name, value)
	}
}

func TestDecodeRejectsMissingColon(t *testing.T) {
	if _, _, err := Decode("not-a-header-line"); err == nil {
		t.Fatalf("expected error for line without colon")
	}
}

func TestDecodeTrimsWhitespace(t *testing.T) {
	_, value, err := Decode("X: \t value with spaces \t")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(value) != value {
		t.Fatalf("expected trimmed value, got %q", value)
	}
}
