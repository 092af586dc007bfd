package markdown

import (
	"bytes"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

const (
	// DefaultMaxChars is the default maximum chunk body size in characters.
	DefaultMaxChars = 2000

	// DefaultOverlapChars is the default overlap carried between consecutive
	// sub-chunks of an oversized section.
	DefaultOverlapChars = 200
)

// Splitter splits markdown documents into chunks at header boundaries while
// preserving the header hierarchy. Sections that exceed the size limit are
// split at paragraph boundaries with a character overlap between sub-chunks.
type Splitter struct {
	parser   goldmark.Markdown
	maxChars int
	overlap  int
}

// NewSplitter creates a splitter with the given size limit and overlap, both
// in characters. Non-positive values fall back to the defaults; an overlap
// that is not smaller than the limit is clamped to a tenth of it.
func NewSplitter(maxChars, overlapChars int) *Splitter {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	if overlapChars < 0 {
		overlapChars = DefaultOverlapChars
	}
	if overlapChars >= maxChars {
		overlapChars = maxChars / 10
	}
	return &Splitter{
		parser:   goldmark.New(),
		maxChars: maxChars,
		overlap:  overlapChars,
	}
}

// headingBlock is a parsed ATX heading with its byte extent in the source.
type headingBlock struct {
	level     int
	title     string
	lineStart int // offset of the first byte of the heading line
	lineEnd   int // offset just past the heading line's newline
}

// section is a run of body text sharing one active header path.
type section struct {
	headers HeaderPath
	body    string
}

// Split parses the document and emits its chunks in source order.
//
// Headings of level 1-4 drive a header-path stack: pushing level L pops all
// entries of level >= L. The body text between two headings forms one section
// carrying the path active at that point. Setext headings and headings inside
// fenced code blocks never reach the stack; they stay body text.
func (s *Splitter) Split(sourcePath string, source []byte) []Chunk {
	headings := s.parseHeadings(source)
	sections := buildSections(source, headings)

	var chunks []Chunk
	seq := 0
	for _, sec := range sections {
		chunks = append(chunks, s.emitChunks(sourcePath, sec, &seq)...)
	}
	return chunks
}

// parseHeadings extracts document-level ATX headings of level 1-4 with their
// line extents, in source order. Goldmark's block parser already excludes
// hash lines inside fenced code blocks, and the hash-marker check excludes
// setext headings. Up to three spaces of indentation before the hash run are
// allowed, matching CommonMark.
func (s *Splitter) parseHeadings(source []byte) []headingBlock {
	doc := s.parser.Parser().Parse(text.NewReader(source))

	var headings []headingBlock
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		h, ok := n.(*ast.Heading)
		if !ok || h.Level > maxHeaderLevel {
			continue
		}
		if h.Lines().Len() == 0 {
			continue
		}
		start := lineStartOffset(source, h.Lines().At(0).Start)
		marker := start
		for marker < len(source) && marker-start < 3 && source[marker] == ' ' {
			marker++
		}
		if marker >= len(source) || source[marker] != '#' {
			continue
		}
		title := headingTitle(h, source)
		if title == "" {
			continue
		}
		headings = append(headings, headingBlock{
			level:     h.Level,
			title:     title,
			lineStart: start,
			lineEnd:   lineEndOffset(source, h.Lines().At(h.Lines().Len()-1).Stop),
		})
	}
	return headings
}

// buildSections walks the headings in order, maintaining the header-path
// stack, and collects the non-empty body text between consecutive headings.
// A heading with no body emits no section but stays on the stack for its
// descendants.
func buildSections(source []byte, headings []headingBlock) []section {
	var sections []section
	var stack HeaderPath

	appendSection := func(start, stop int) {
		body := strings.TrimSpace(string(source[start:stop]))
		if body == "" {
			return
		}
		headers := make(HeaderPath, len(stack))
		copy(headers, stack)
		sections = append(sections, section{headers: headers, body: body})
	}

	cursor := 0
	for _, h := range headings {
		appendSection(cursor, h.lineStart)
		for len(stack) > 0 && stack[len(stack)-1].Level >= h.level {
			stack = stack[:len(stack)-1]
		}
		stack = append(stack, Heading{Level: h.level, Title: h.title})
		cursor = h.lineEnd
	}
	appendSection(cursor, len(source))

	return sections
}

// blankLine separates paragraphs within a section body.
var blankLine = regexp.MustCompile(`\n[ \t]*\n+`)

// emitChunks converts one section into one or more chunks. A section within
// the size limit becomes a single chunk; an oversized one is split at
// paragraph boundaries, every sub-chunk keeping the section's header path and
// carrying an overlap from its predecessor so sentences spanning a split
// point are not orphaned. The carried tail shrinks when the sub-chunk leaves
// no room for it, so the size limit holds even with the overlap prepended.
// Only a single paragraph larger than the limit itself may exceed it.
func (s *Splitter) emitChunks(sourcePath string, sec section, seq *int) []Chunk {
	var bodies []string
	if utf8.RuneCountInString(sec.body) <= s.maxChars {
		bodies = []string{sec.body}
	} else {
		parts := s.packParagraphs(blankLine.Split(sec.body, -1))
		for i, part := range parts {
			if i > 0 && s.overlap > 0 {
				carry := s.overlap
				if room := s.maxChars - utf8.RuneCountInString(part) - 1; room < carry {
					carry = room
				}
				if carry > 0 {
					part = tailRunes(parts[i-1], carry) + "\n" + part
				}
			}
			bodies = append(bodies, part)
		}
	}

	chunks := make([]Chunk, 0, len(bodies))
	for _, body := range bodies {
		chunks = append(chunks, Chunk{
			ID:         chunkID(sourcePath, *seq),
			SourcePath: sourcePath,
			Headers:    sec.headers,
			Body:       body,
			Text:       prefixHeaders(sec.headers, body),
			Length:     utf8.RuneCountInString(body),
		})
		*seq++
	}
	return chunks
}

// packParagraphs greedily groups paragraphs. Each group reserves room for
// the overlap (plus its joining newline) carried onto it, so group plus
// overlap stays within the size limit. An oversized single paragraph forms
// its own group.
func (s *Splitter) packParagraphs(paragraphs []string) []string {
	limit := s.maxChars
	if s.overlap > 0 && s.maxChars-s.overlap-1 > 0 {
		limit = s.maxChars - s.overlap - 1
	}

	var groups []string
	var cur strings.Builder
	curLen := 0

	for _, p := range paragraphs {
		if p == "" {
			continue
		}
		pl := utf8.RuneCountInString(p)
		if curLen > 0 && curLen+pl+2 > limit {
			groups = append(groups, cur.String())
			cur.Reset()
			curLen = 0
		}
		if curLen > 0 {
			cur.WriteString("\n\n")
			curLen += 2
		}
		cur.WriteString(p)
		curLen += pl
	}
	if curLen > 0 {
		groups = append(groups, cur.String())
	}
	return groups
}

// prefixHeaders prepends the rendered header path to a chunk body.
func prefixHeaders(headers HeaderPath, body string) string {
	if len(headers) == 0 {
		return body
	}
	return headers.Markdown() + "\n\n" + body
}

// headingTitle collects the text content of a heading node, including text
// nested in inline nodes such as emphasis or code spans.
func headingTitle(h *ast.Heading, source []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(h, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if t, ok := n.(*ast.Text); ok {
				buf.Write(t.Segment.Value(source))
			}
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(buf.String())
}

// lineStartOffset walks back from off to the start of its line.
func lineStartOffset(source []byte, off int) int {
	for off > 0 && source[off-1] != '\n' {
		off--
	}
	return off
}

// lineEndOffset walks forward from off past the end of its line.
func lineEndOffset(source []byte, off int) int {
	for off < len(source) && source[off] != '\n' {
		off++
	}
	if off < len(source) {
		off++
	}
	return off
}

// tailRunes returns the last n runes of s.
func tailRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}
