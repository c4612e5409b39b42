package exchange

import "testing"

func TestPathBuilderString(t *testing.T) {
	p := NewPathBuilder().Segment("api").Segment("/v1/").Segment("items")

	if got := p.String(); got != "/api/v1/items" {
		t.Fatalf("unexpected path: %q", got)
	}
}

func TestPathBuilderRawQuery(t *testing.T) {
	p := NewPathBuilder().Segment("items").RawQuery("limit=10&sort=asc")

	if got := p.String(); got != "/items?limit=10&sort=asc" {
		t.Fatalf("unexpected path: %q", got)
	}
}

func TestPathBuilderQueryMutation(t *testing.T) {
	p := NewPathBuilder().Segment("items").RawQuery("limit=10")

	p.Query().Set("sort", "asc")

	if got := p.String(); got != "/items?limit=10&sort=asc" {
		t.Fatalf("unexpected path after query mutation: %q", got)
	}
}

func TestPathBuilderCloneIsIndependent(t *testing.T) {
	p := NewPathBuilder().Segment("items").RawQuery("limit=10")
	p.Query() // force parse

	clone := p.Clone()
	clone.Query().Set("sort", "desc")
	clone.Segment("extra")

	if p.Query().Get("sort") != "" {
		t.Fatalf("mutating clone's query must not affect original")
	}
	if p.String() != "/items?limit=10" {
		t.Fatalf("unexpected original path after clone mutation: %q", p.String())
	}
	if clone.String() != "/items/extra?limit=10&sort=desc" {
		t.Fatalf("unexpected clone path: %q", clone.String())
	}
}

func TestPathBuilderNoQuery(t *testing.T) {
	p := NewPathBuilder().Segment("health")

	if got := p.String(); got != "/health" {
		t.Fatalf("unexpected path: %q", got)
	}
}
