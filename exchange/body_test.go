package exchange

import (
	"context"
	"io"
	"os"
	"testing"
)

func TestChunkReleaseExactlyOnce(t *testing.T) {
	n := 0
	c := NewChunk([]byte("a"), true, func() { n++ })

	c.Release()
	c.Release()
	c.Release()

	if n != 1 {
		t.Fatalf("expected release to run once, ran %d times", n)
	}
}

func TestChunkReleaseNilSafe(t *testing.T) {
	var c *Chunk
	c.Release() // must not panic
}

func TestEmptyChunkSourceYieldsEOF(t *testing.T) {
	src := EmptyChunkSource()

	chunk, err := src.Next(context.Background())
	if err != io.EOF {
		t.Fatalf("expected io.EOF, got %v", err)
	}
	if chunk != nil {
		t.Fatalf("expected nil chunk, got %+v", chunk)
	}
}

func TestSliceChunkSourceOrderAndFinal(t *testing.T) {
	src := SliceChunkSource([][]byte{[]byte("a"), []byte("b"), []byte("c")})
	ctx := context.Background()

	var got []string
	for {
		c, err := src.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got = append(got, string(c.Data))
		if string(c.Data) == "c" && !c.Final {
			t.Fatalf("expected last chunk to be marked final")
		}
		if string(c.Data) != "c" && c.Final {
			t.Fatalf("expected only the last chunk to be marked final")
		}
	}

	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("unexpected sequence: %v", got)
	}
}

func TestFileRegionSourceChunksAtMaxSize(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "region")
	if err != nil {
		t.Fatalf("tempfile: %v", err)
	}
	defer f.Close()

	length := int64(MaxFileRegionSize) + 10
	src := NewFileRegionSource(f, 0, length)
	ctx := context.Background()

	r1, err := src.Next(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r1.Length() != MaxFileRegionSize {
		t.Fatalf("expected first region capped at %d, got %d", MaxFileRegionSize, r1.Length())
	}

	r2, err := src.Next(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r2.Length() != 10 {
		t.Fatalf("expected remainder region of 10, got %d", r2.Length())
	}
	if r2.Offset() != MaxFileRegionSize {
		t.Fatalf("expected second region offset %d, got %d", MaxFileRegionSize, r2.Offset())
	}

	if _, err := src.Next(ctx); err != io.EOF {
		t.Fatalf("expected io.EOF after exhaustion, got %v", err)
	}
}

func TestFileRegionSourceCloseOnce(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "region")
	if err != nil {
		t.Fatalf("tempfile: %v", err)
	}

	src := NewFileRegionSource(f, 0, 0)
	if err := src.Close(); err != nil {
		t.Fatalf("unexpected error on first close: %v", err)
	}
	if err := src.Close(); err != nil {
		t.Fatalf("second close must be a no-op, got: %v", err)
	}
}

func TestNewFixedLengthChunkBodyHasContentLength(t *testing.T) {
	b := NewFixedLengthChunkBody([]byte("hello"))

	if !b.HasContentLength {
		t.Fatalf("expected HasContentLength true")
	}
	if b.ContentLength != 5 {
		t.Fatalf("expected content length 5, got %d", b.ContentLength)
	}
	if !b.SingleEmission {
		t.Fatalf("expected single emission body")
	}
}

func TestEmptyBodyExplicitContentLengthZero(t *testing.T) {
	b := EmptyBody()

	if !b.HasContentLength || b.ContentLength != 0 {
		t.Fatalf("expected explicit Content-Length: 0, got has=%v len=%d", b.HasContentLength, b.ContentLength)
	}

	_, err := b.Chunks.Next(context.Background())
	if err != io.EOF {
		t.Fatalf("expected empty body source to be immediately exhausted, got %v", err)
	}
}

func TestNewChunkBodyUnknownLength(t *testing.T) {
	b := NewChunkBody(EmptyChunkSource(), false)

	if b.HasContentLength {
		t.Fatalf("expected unknown content length for streamed body")
	}
	if b.ContentLength != -1 {
		t.Fatalf("expected sentinel -1 content length, got %d", b.ContentLength)
	}
}
