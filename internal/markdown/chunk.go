package markdown

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// maxHeaderLevel is the deepest heading level that participates in the
// header-path stack. H5/H6 lines are treated as body text.
const maxHeaderLevel = 4

// Heading is one level of a chunk's header lineage.
type Heading struct {
	Level int    // 1-4
	Title string // heading text without # markers
}

// HeaderPath is the ordered header lineage of a chunk, outermost first.
// Levels are strictly increasing along the path. An empty path means the
// content appeared before any heading in the document.
type HeaderPath []Heading

// String renders the path as "Setup > Install" for display and context
// assembly.
func (p HeaderPath) String() string {
	titles := make([]string, len(p))
	for i, h := range p {
		titles[i] = h.Title
	}
	return strings.Join(titles, " > ")
}

// Markdown renders the path with heading markers, e.g. "# Setup > ## Install".
// This is the form prepended to chunk text so retrieved passages remain
// self-describing.
func (p HeaderPath) Markdown() string {
	parts := make([]string, len(p))
	for i, h := range p {
		parts[i] = fmt.Sprintf("%s %s", strings.Repeat("#", h.Level), h.Title)
	}
	return strings.Join(parts, " > ")
}

// Chunk is a retrievable unit of document text tagged with its header lineage.
type Chunk struct {
	ID         string     // deterministic, derived from source path + sequence
	SourcePath string     // path of the originating markdown file
	Headers    HeaderPath // header lineage at the point the chunk was emitted
	Body       string     // section text without the header prefix, never empty
	Text       string     // Body with the rendered header path prepended; this is what gets embedded
	Length     int        // rune count of Body
}

// chunkID derives a stable UUID from the source path and the chunk's sequence
// index within the document. Re-splitting an unchanged file yields the same IDs.
func chunkID(sourcePath string, seq int) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, fmt.Appendf(nil, "mdrag://%s#%d", sourcePath, seq)).String()
}
