package render

import (
	"strings"
	"testing"

	"github.com/tdewolff/canvas"
)

func testFace(t *testing.T) *canvas.FontFace {
	t.Helper()
	var fonts fontSet
	family, err := fonts.load()
	if err != nil {
		t.Fatalf("load fonts: %v", err)
	}
	return family.Face(bodySize, canvas.Black, canvas.FontRegular, canvas.FontNormal)
}

func TestWrapWords_LinesFitLimit(t *testing.T) {
	face := testFace(t)
	limit := 300.0
	lines := wrapWords(strings.Repeat("greedy wrap keeps accumulating words ", 8), face, limit)
	if len(lines) < 2 {
		t.Fatalf("expected multiple lines, got %d", len(lines))
	}
	for i, line := range lines {
		if len(line.words) == 0 {
			t.Fatalf("line %d is empty", i)
		}
		if line.width > limit && len(line.words) > 1 {
			t.Fatalf("line %d overflows limit: %.1f > %.1f", i, line.width, limit)
		}
	}
	if !lines[len(lines)-1].last {
		t.Fatalf("final line must be marked last")
	}
}

func TestWrapWords_OverlongWordGetsOwnLine(t *testing.T) {
	face := testFace(t)
	lines := wrapWords("short supercalifragilisticexpialidocious-hyperparameterization tail", face, 120)
	for _, line := range lines {
		if len(line.words) > 1 && line.width > 120 {
			t.Fatalf("overlong word was packed with others: %v", line.words)
		}
	}
}

func TestWrapWords_EmptyText(t *testing.T) {
	face := testFace(t)
	if lines := wrapWords("", face, 300); len(lines) != 0 {
		t.Fatalf("expected no lines for empty text, got %d", len(lines))
	}
	if lines := wrapWords("   \n  ", face, 300); len(lines) != 0 {
		t.Fatalf("expected no lines for whitespace, got %d", len(lines))
	}
}

func TestWrapWords_ParagraphBreaksEndLines(t *testing.T) {
	face := testFace(t)
	lines := wrapWords("first paragraph\nsecond paragraph", face, 10000)
	if len(lines) != 2 {
		t.Fatalf("expected one line per paragraph, got %d", len(lines))
	}
	if !lines[0].last || !lines[1].last {
		t.Fatalf("single-line paragraphs must both be last lines")
	}
}

func TestRenderBitmap_HeightGrowsWithContent(t *testing.T) {
	r := withoutEngine(Options{})

	short := decodePNG(t, mustRender(t, r, Request{Title: "T", Authors: "A", Abstract: "tiny"}))
	long := decodePNG(t, mustRender(t, r, Request{
		Title:    "T",
		Authors:  "A",
		Abstract: strings.Repeat("a considerably longer abstract body ", 40),
	}))

	if long.Bounds().Dy() <= short.Bounds().Dy() {
		t.Fatalf("expected longer abstract to yield taller image: %d vs %d",
			long.Bounds().Dy(), short.Bounds().Dy())
	}
	if long.Bounds().Dx() != short.Bounds().Dx() {
		t.Fatalf("width must stay fixed: %d vs %d", long.Bounds().Dx(), short.Bounds().Dx())
	}
}
