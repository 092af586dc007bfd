// Package indexer orchestrates the build phase: discover markdown files,
// split them into chunks, embed, and assemble the persisted vector index.
package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bull/mdrag/internal/docs"
	"github.com/bull/mdrag/internal/index"
	"github.com/bull/mdrag/internal/markdown"
)

// Result contains statistics about an indexing run.
type Result struct {
	TotalFiles   int
	IndexedFiles int
	TotalChunks  int
	Skipped      []docs.SkippedFile
	Duration     time.Duration
}

// Pipeline builds a vector index from a documentation directory.
type Pipeline struct {
	splitter *markdown.Splitter
	embedder index.Embedder
	model    string
	logger   *slog.Logger
}

// NewPipeline creates an indexing pipeline with the given components.
func NewPipeline(splitter *markdown.Splitter, embedder index.Embedder, model string, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		splitter: splitter,
		embedder: embedder,
		model:    model,
		logger:   logger,
	}
}

// BuildIndex walks docsDir, splits every markdown file, and builds the index.
// Unreadable files are collected in the result and logged, never fatal to the
// batch. Embedding failures fail the build: an index with silently missing
// vectors is worse than no index.
func (p *Pipeline) BuildIndex(ctx context.Context, docsDir string) (*index.Index, *Result, error) {
	start := time.Now()
	result := &Result{}

	documents, skipped, err := docs.Discover(docsDir)
	if err != nil {
		return nil, nil, fmt.Errorf("discover documents: %w", err)
	}
	result.TotalFiles = len(documents) + len(skipped)
	result.Skipped = skipped
	for _, skip := range skipped {
		p.logger.Warn("Skipping file", "path", skip.Path, "reason", skip.Reason)
	}
	p.logger.Info("Found documents", "count", len(documents), "dir", docsDir)

	var chunks []markdown.Chunk
	for _, doc := range documents {
		docChunks := p.splitter.Split(doc.Path, doc.Raw)
		if len(docChunks) == 0 {
			p.logger.Warn("Document produced no chunks", "path", doc.Path)
			continue
		}
		result.IndexedFiles++
		result.TotalChunks += len(docChunks)
		chunks = append(chunks, docChunks...)

		p.logger.Debug("Split document",
			"path", doc.Path,
			"title", markdown.DocumentTitle(doc.Raw),
			"chunks", len(docChunks),
		)
	}

	ix, err := index.Build(ctx, p.model, chunks, p.embedder)
	if err != nil {
		return nil, nil, fmt.Errorf("build index: %w", err)
	}

	result.Duration = time.Since(start)
	p.logger.Info("Indexing complete",
		"files", result.IndexedFiles,
		"skipped", len(result.Skipped),
		"chunks", result.TotalChunks,
		"duration", result.Duration,
	)

	return ix, result, nil
}
