// Package retriever runs similarity retrieval against the vector index and
// assembles grounded context for generation.
package retriever

import (
	"context"
	"fmt"
	"strings"

	"github.com/bull/mdrag/internal/index"
)

// ContextDelimiter separates passages in assembled context so the generator
// can distinguish provenance per passage.
const ContextDelimiter = "\n---\n"

// Embedder vectorizes query text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Engine retrieves the most relevant chunks for a query.
type Engine struct {
	index     *index.Index
	embedder  Embedder
	topK      int
	threshold float32
}

// NewEngine creates a retrieval engine over a built or loaded index.
func NewEngine(ix *index.Index, embedder Embedder, topK int, threshold float32) *Engine {
	if topK <= 0 {
		topK = 4
	}
	return &Engine{
		index:     ix,
		embedder:  embedder,
		topK:      topK,
		threshold: threshold,
	}
}

// Retrieve embeds the query and returns the top-k chunks by similarity.
// An empty result means nothing cleared the similarity floor; the caller
// renders that, it is not an error.
func (e *Engine) Retrieve(ctx context.Context, query string, k int) ([]index.ScoredChunk, error) {
	if k <= 0 {
		k = e.topK
	}
	vector, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	results, err := e.index.Search(vector, k, e.threshold)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	return results, nil
}

// AssembleContext renders retrieved chunks, in ranked order, into a single
// grounding context. Each passage is prefixed with its source path and
// rendered header path; consecutive passages from the same section do not
// repeat the prefix.
func (e *Engine) AssembleContext(results []index.ScoredChunk) string {
	var b strings.Builder
	var prevPrefix string

	for i, result := range results {
		if i > 0 {
			b.WriteString(ContextDelimiter)
		}
		prefix := passagePrefix(result)
		if prefix != prevPrefix {
			b.WriteString(prefix)
			b.WriteString("\n")
			prevPrefix = prefix
		}
		b.WriteString(result.Chunk.Body)
	}
	return b.String()
}

// passagePrefix renders "install.md | Setup > Install:" for a chunk, or just
// the source path when the chunk precedes any header.
func passagePrefix(result index.ScoredChunk) string {
	headers := result.Chunk.Headers.String()
	if headers == "" {
		return fmt.Sprintf("[%s]", result.Chunk.SourcePath)
	}
	return fmt.Sprintf("[%s] %s:", result.Chunk.SourcePath, headers)
}
