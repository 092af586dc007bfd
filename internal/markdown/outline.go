package markdown

import (
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"go.abhg.dev/goldmark/toc"
)

// OutlineItem is one heading in a document's table of contents.
type OutlineItem struct {
	Title string
	Items []OutlineItem
}

var outlineParser = goldmark.New(
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
)

// Outline extracts the heading hierarchy of a document, down to the same
// depth the splitter honors.
func Outline(source []byte) ([]OutlineItem, error) {
	doc := outlineParser.Parser().Parse(text.NewReader(source))
	tree, err := toc.Inspect(doc, source,
		toc.MinDepth(1),
		toc.MaxDepth(maxHeaderLevel),
		toc.Compact(true),
	)
	if err != nil {
		return nil, fmt.Errorf("inspect TOC: %w", err)
	}
	return convertItems(tree.Items), nil
}

// DocumentTitle returns the first top-level heading of a document, or ""
// when the document has none.
func DocumentTitle(source []byte) string {
	items, err := Outline(source)
	if err != nil || len(items) == 0 {
		return ""
	}
	return items[0].Title
}

func convertItems(items toc.Items) []OutlineItem {
	out := make([]OutlineItem, 0, len(items))
	for _, item := range items {
		out = append(out, OutlineItem{
			Title: string(item.Title),
			Items: convertItems(item.Items),
		})
	}
	return out
}
