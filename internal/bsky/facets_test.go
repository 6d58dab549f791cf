package bsky

import (
	"strings"
	"testing"
)

func TestParseFacets_FindsURL(t *testing.T) {
	text := "A Study of X https://arxiv.org/abs/2408.01234 more words"
	facets := ParseFacets(text)
	if len(facets) != 1 {
		t.Fatalf("expected 1 facet, got %d", len(facets))
	}
	f := facets[0]
	if f.Features[0].URI != "https://arxiv.org/abs/2408.01234" {
		t.Fatalf("unexpected uri %q", f.Features[0].URI)
	}
	if got := text[f.Index.ByteStart:f.Index.ByteEnd]; got != f.Features[0].URI {
		t.Fatalf("index range %q does not match uri", got)
	}
	if f.Features[0].Type != "app.bsky.richtext.facet#link" {
		t.Fatalf("unexpected feature type %q", f.Features[0].Type)
	}
}

func TestParseFacets_ByteOffsetsWithMultibyteText(t *testing.T) {
	text := "📈🤖 https://example.com end"
	facets := ParseFacets(text)
	if len(facets) != 1 {
		t.Fatalf("expected 1 facet, got %d", len(facets))
	}
	f := facets[0]
	// The emoji prefix is 8 bytes + space; offsets must be bytes, not runes.
	if f.Index.ByteStart != len("📈🤖 ") {
		t.Fatalf("expected byte offset %d, got %d", len("📈🤖 "), f.Index.ByteStart)
	}
	if got := text[f.Index.ByteStart:f.Index.ByteEnd]; got != "https://example.com" {
		t.Fatalf("sliced %q", got)
	}
}

func TestParseFacets_MultipleAndNone(t *testing.T) {
	text := "first https://a.example.com then https://b.example.org/x?q=1"
	facets := ParseFacets(text)
	if len(facets) != 2 {
		t.Fatalf("expected 2 facets, got %d", len(facets))
	}
	if !strings.HasPrefix(facets[1].Features[0].URI, "https://b.example.org/x") {
		t.Fatalf("unexpected second uri %q", facets[1].Features[0].URI)
	}

	if got := ParseFacets("no links here"); got != nil {
		t.Fatalf("expected no facets, got %v", got)
	}
}

func TestParseFacets_URLAtStart(t *testing.T) {
	facets := ParseFacets("https://example.com at the very start")
	if len(facets) != 1 || facets[0].Index.ByteStart != 0 {
		t.Fatalf("expected facet at byte 0, got %+v", facets)
	}
}
