package markdown

import (
	"strings"
	"testing"
)

// TestSplit_SiblingSections verifies each section gets exactly its own body
// text and header path.
func TestSplit_SiblingSections(t *testing.T) {
	input := "# A\ntext1\n## B\ntext2\n## C\ntext3\n"

	splitter := NewSplitter(0, 0)
	chunks := splitter.Split("doc.md", []byte(input))

	if len(chunks) != 3 {
		t.Fatalf("Expected 3 chunks, got %d", len(chunks))
	}

	expected := []struct {
		path string
		body string
	}{
		{"A", "text1"},
		{"A > B", "text2"},
		{"A > C", "text3"},
	}

	for i, want := range expected {
		if got := chunks[i].Headers.String(); got != want.path {
			t.Errorf("Chunk %d header path: expected %q, got %q", i, want.path, got)
		}
		if chunks[i].Body != want.body {
			t.Errorf("Chunk %d body: expected %q, got %q", i, want.body, chunks[i].Body)
		}
	}
}

// TestSplit_HeaderPathStack verifies that pushing a header pops deeper and
// equal levels.
func TestSplit_HeaderPathStack(t *testing.T) {
	input := `# Setup

intro

## Install

install steps

### Linux

linux steps

## Upgrade

upgrade steps
`

	splitter := NewSplitter(0, 0)
	chunks := splitter.Split("doc.md", []byte(input))

	expectedPaths := []string{
		"Setup",
		"Setup > Install",
		"Setup > Install > Linux",
		"Setup > Upgrade",
	}

	if len(chunks) != len(expectedPaths) {
		t.Fatalf("Expected %d chunks, got %d", len(expectedPaths), len(chunks))
	}

	for i, want := range expectedPaths {
		if got := chunks[i].Headers.String(); got != want {
			t.Errorf("Chunk %d header path: expected %q, got %q", i, want, got)
		}
	}

	// Levels along each path must be strictly increasing.
	for i, chunk := range chunks {
		for j := 1; j < len(chunk.Headers); j++ {
			if chunk.Headers[j].Level <= chunk.Headers[j-1].Level {
				t.Errorf("Chunk %d has non-increasing levels: %v", i, chunk.Headers)
			}
		}
	}
}

// TestSplit_NoHeaders verifies a header-free document yields one chunk with
// an empty path.
func TestSplit_NoHeaders(t *testing.T) {
	input := "Just plain text.\n\nAnother paragraph.\n"

	splitter := NewSplitter(0, 0)
	chunks := splitter.Split("doc.md", []byte(input))

	if len(chunks) != 1 {
		t.Fatalf("Expected 1 chunk, got %d", len(chunks))
	}
	if len(chunks[0].Headers) != 0 {
		t.Errorf("Expected empty header path, got %v", chunks[0].Headers)
	}
	if chunks[0].Text != chunks[0].Body {
		t.Errorf("Empty path should not prepend a header prefix")
	}
}

// TestSplit_PreambleBeforeFirstHeader verifies content preceding any header
// gets an empty path.
func TestSplit_PreambleBeforeFirstHeader(t *testing.T) {
	input := "Preamble text.\n\n# Title\n\nBody text.\n"

	splitter := NewSplitter(0, 0)
	chunks := splitter.Split("doc.md", []byte(input))

	if len(chunks) != 2 {
		t.Fatalf("Expected 2 chunks, got %d", len(chunks))
	}
	if len(chunks[0].Headers) != 0 {
		t.Errorf("Preamble chunk should have empty path, got %v", chunks[0].Headers)
	}
	if chunks[1].Headers.String() != "Title" {
		t.Errorf("Second chunk path: expected %q, got %q", "Title", chunks[1].Headers.String())
	}
}

// TestSplit_EmptySectionEmitsNoChunk verifies a header with no body produces
// no chunk but still participates in the path of its descendants.
func TestSplit_EmptySectionEmitsNoChunk(t *testing.T) {
	input := `# Guide

## Structural

### Leaf

leaf content
`

	splitter := NewSplitter(0, 0)
	chunks := splitter.Split("doc.md", []byte(input))

	if len(chunks) != 1 {
		t.Fatalf("Expected 1 chunk, got %d", len(chunks))
	}
	want := "Guide > Structural > Leaf"
	if got := chunks[0].Headers.String(); got != want {
		t.Errorf("Header path: expected %q, got %q", want, got)
	}
	for _, chunk := range chunks {
		if chunk.Body == "" {
			t.Error("Emitted chunk has empty body")
		}
	}
}

// TestSplit_HashInCodeFence verifies hash lines inside fenced code blocks are
// body text, not headers.
func TestSplit_HashInCodeFence(t *testing.T) {
	input := "# Shell\n\n```sh\n# this is a comment\necho hi\n```\n\nafter the fence\n"

	splitter := NewSplitter(0, 0)
	chunks := splitter.Split("doc.md", []byte(input))

	if len(chunks) != 1 {
		t.Fatalf("Expected 1 chunk, got %d", len(chunks))
	}
	if !strings.Contains(chunks[0].Body, "# this is a comment") {
		t.Error("Chunk lost the fenced comment line")
	}
	if !strings.Contains(chunks[0].Body, "after the fence") {
		t.Error("Chunk lost content after the fence")
	}
	if got := chunks[0].Headers.String(); got != "Shell" {
		t.Errorf("Header path: expected %q, got %q", "Shell", got)
	}
}

// TestSplit_DeepHeadersAreBody verifies H5/H6 lines do not join the path
// stack.
func TestSplit_DeepHeadersAreBody(t *testing.T) {
	input := "# Top\n\n##### Too deep\n\nsome text\n"

	splitter := NewSplitter(0, 0)
	chunks := splitter.Split("doc.md", []byte(input))

	if len(chunks) != 1 {
		t.Fatalf("Expected 1 chunk, got %d", len(chunks))
	}
	if got := chunks[0].Headers.String(); got != "Top" {
		t.Errorf("Header path: expected %q, got %q", "Top", got)
	}
	if !strings.Contains(chunks[0].Body, "Too deep") {
		t.Error("H5 line should remain in the body text")
	}
}

// TestSplit_PrependedHeaderText verifies the rendered header path is
// prepended to the embeddable text but not the body.
func TestSplit_PrependedHeaderText(t *testing.T) {
	input := "# Setup\n\ncontent here\n\n## Install\n\ninstall here\n"

	splitter := NewSplitter(0, 0)
	chunks := splitter.Split("doc.md", []byte(input))

	if len(chunks) != 2 {
		t.Fatalf("Expected 2 chunks, got %d", len(chunks))
	}

	if !strings.HasPrefix(chunks[0].Text, "# Setup\n\n") {
		t.Errorf("Chunk 0 text missing header prefix: %q", chunks[0].Text)
	}
	if !strings.HasPrefix(chunks[1].Text, "# Setup > ## Install\n\n") {
		t.Errorf("Chunk 1 text missing header prefix: %q", chunks[1].Text)
	}
	if strings.HasPrefix(chunks[1].Body, "#") {
		t.Errorf("Body should not carry the header prefix: %q", chunks[1].Body)
	}
}

// TestSplit_OversizedSection verifies paragraph-boundary splitting with
// overlap and shared header paths.
func TestSplit_OversizedSection(t *testing.T) {
	paragraphs := []string{
		strings.Repeat("alpha ", 20),
		strings.Repeat("bravo ", 20),
		strings.Repeat("charlie ", 20),
		strings.Repeat("delta ", 20),
	}
	input := "# Big\n\n" + strings.Join(paragraphs, "\n\n") + "\n"

	maxChars := 150
	overlap := 30
	splitter := NewSplitter(maxChars, overlap)
	chunks := splitter.Split("doc.md", []byte(input))

	if len(chunks) < 2 {
		t.Fatalf("Expected multiple chunks, got %d", len(chunks))
	}

	for i, chunk := range chunks {
		if got := chunk.Headers.String(); got != "Big" {
			t.Errorf("Chunk %d header path: expected %q, got %q", i, "Big", got)
		}
		// The limit covers the carried overlap too; every paragraph here is
		// divisible, so no chunk may exceed it.
		if chunk.Length > maxChars {
			t.Errorf("Chunk %d length %d exceeds the %d limit", i, chunk.Length, maxChars)
		}
	}

	// Every chunk after the first opens with a suffix of its predecessor.
	for i := 1; i < len(chunks); i++ {
		carried, _, found := strings.Cut(chunks[i].Body, "\n")
		if !found || carried == "" {
			t.Fatalf("Chunk %d carries no overlap prefix: %q", i, chunks[i].Body)
		}
		if !strings.HasSuffix(chunks[i-1].Body, carried) {
			t.Errorf("Chunk %d overlap %q is not a suffix of its predecessor", i, carried)
		}
	}
}

// TestSplit_OverlapStaysWithinLimit verifies the carried overlap shrinks
// rather than pushing a sub-chunk of divisible paragraphs past the limit.
func TestSplit_OverlapStaysWithinLimit(t *testing.T) {
	paragraphs := []string{
		strings.Repeat("a", 90),
		strings.Repeat("b", 90),
		strings.Repeat("c", 90),
	}
	input := "# Big\n\n" + strings.Join(paragraphs, "\n\n") + "\n"

	maxChars := 100
	splitter := NewSplitter(maxChars, 20)
	chunks := splitter.Split("doc.md", []byte(input))

	if len(chunks) != 3 {
		t.Fatalf("Expected 3 chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if chunk.Length > maxChars {
			t.Errorf("Chunk %d length %d exceeds the %d limit", i, chunk.Length, maxChars)
		}
	}
	// 90-rune paragraphs leave 9 runes of room, so the carry is clamped.
	if !strings.HasPrefix(chunks[1].Body, strings.Repeat("a", 9)+"\n") {
		t.Errorf("Chunk 1 should open with the clamped tail of its predecessor: %q", chunks[1].Body)
	}
	if !strings.HasPrefix(chunks[2].Body, strings.Repeat("b", 9)+"\n") {
		t.Errorf("Chunk 2 should open with the clamped tail of its predecessor: %q", chunks[2].Body)
	}
}

// TestSplit_IndivisibleParagraph verifies a single paragraph larger than the
// limit stays whole.
func TestSplit_IndivisibleParagraph(t *testing.T) {
	big := strings.Repeat("word ", 100)
	input := "# Huge\n\n" + big + "\n"

	splitter := NewSplitter(50, 10)
	chunks := splitter.Split("doc.md", []byte(input))

	if len(chunks) != 1 {
		t.Fatalf("Expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Length <= 50 {
		t.Errorf("Indivisible paragraph should exceed the limit, length %d", chunks[0].Length)
	}
}

// TestSplit_StableIDs verifies chunk IDs are deterministic across re-splits
// and distinct across paths.
func TestSplit_StableIDs(t *testing.T) {
	input := "# A\ntext1\n## B\ntext2\n"

	splitter := NewSplitter(0, 0)
	first := splitter.Split("docs/a.md", []byte(input))
	second := splitter.Split("docs/a.md", []byte(input))

	if len(first) != len(second) {
		t.Fatalf("Re-split produced different chunk counts: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("Chunk %d ID not stable: %s vs %s", i, first[i].ID, second[i].ID)
		}
	}

	other := splitter.Split("docs/b.md", []byte(input))
	if other[0].ID == first[0].ID {
		t.Error("Chunks from different source paths share an ID")
	}
}

// TestSplit_NonEmptyBodies verifies the non-empty body invariant across a
// messy document.
func TestSplit_NonEmptyBodies(t *testing.T) {
	input := "# A\n\n\n\n## B\n\n   \n\n## C\n\nreal content\n\n#### D\n"

	splitter := NewSplitter(0, 0)
	chunks := splitter.Split("doc.md", []byte(input))

	for i, chunk := range chunks {
		if strings.TrimSpace(chunk.Body) == "" {
			t.Errorf("Chunk %d has blank body", i)
		}
	}
	if len(chunks) != 1 {
		t.Errorf("Expected only the one section with content, got %d chunks", len(chunks))
	}
}

// TestSplit_IndentedHeading verifies an ATX heading indented by up to three
// spaces still drives the path stack.
func TestSplit_IndentedHeading(t *testing.T) {
	input := "# Top\n\nintro\n\n   ## Indented\n\nnested text\n"

	splitter := NewSplitter(0, 0)
	chunks := splitter.Split("doc.md", []byte(input))

	if len(chunks) != 2 {
		t.Fatalf("Expected 2 chunks, got %d", len(chunks))
	}
	if got := chunks[1].Headers.String(); got != "Top > Indented" {
		t.Errorf("Header path: expected %q, got %q", "Top > Indented", got)
	}
	if chunks[1].Body != "nested text" {
		t.Errorf("Indented heading line leaked into body: %q", chunks[1].Body)
	}
}

// TestSplit_SetextHeadingIgnored verifies underline-style headings do not
// enter the path stack.
func TestSplit_SetextHeadingIgnored(t *testing.T) {
	input := "# Real\n\nintro\n\nNot A Header\n---\n\ntrailing text\n"

	splitter := NewSplitter(0, 0)
	chunks := splitter.Split("doc.md", []byte(input))

	for _, chunk := range chunks {
		if strings.Contains(chunk.Headers.String(), "Not A Header") {
			t.Errorf("Setext heading leaked into path: %v", chunk.Headers)
		}
	}
}
