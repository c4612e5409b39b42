package headers

import (
	"mime"
	"mime/multipart"
	"net/url"
	"strings"
	"testing"
)

func TestEncodeURLEncoded(t *testing.T) {
	v := url.Values{}
	v.Set("a", "1")
	v.Set("b", "two words")

	out := string(EncodeURLEncoded(v))
	if out != "a=1&b=two+words" {
		t.Fatalf("unexpected encoding: %q", out)
	}
}

func TestEncodeMultipartFieldAndFile(t *testing.T) {
	fields := []MultipartField{
		{Name: "title", Content: []byte("hello")},
		{Name: "upload", Filename: "a.txt", ContentType: "text/plain", Content: []byte("data")},
	}

	body, contentType, err := EncodeMultipart(fields)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		t.Fatalf("unexpected content-type: %v", err)
	}

	r := multipart.NewReader(strings.NewReader(string(body)), params["boundary"])

	part, err := r.NextPart()
	if err != nil {
		t.Fatalf("unexpected error reading first part: %v", err)
	}
	if part.FormName() != "title" {
		t.Fatalf("unexpected first part name: %q", part.FormName())
	}

	part, err = r.NextPart()
	if err != nil {
		t.Fatalf("unexpected error reading second part: %v", err)
	}
	if part.FormName() != "upload" || part.FileName() != "a.txt" {
		t.Fatalf("unexpected second part: name=%q filename=%q", part.FormName(), part.FileName())
	}
	if ct := part.Header.Get("Content-Type"); ct != "text/plain" {
		t.Fatalf("unexpected part content-type: %q", ct)
	}
}

func TestEscapeQuotesEscapesSpecialChars(t *testing.T) {
	got := escapeQuotes(`a"b\c`)
	want := `a\"b\\c`
	if got != want {
		t.Fatalf("unexpected escape: got %q want %q", got, want)
	}
}

func TestEscapeQuotesPercentEncodesNonASCII(t *testing.T) {
	got := escapeQuotes("caf\xc3\xa9")
	if !strings.Contains(got, "%") {
		t.Fatalf("expected percent-encoding for non-ASCII bytes, got %q", got)
	}
}
