// Package index stores chunk vectors and answers similarity searches over
// them. The index is append-structured during build, safe for concurrent
// readers afterwards, and persists atomically to a single file.
package index

import (
	"context"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/bull/mdrag/internal/markdown"
)

// Embedder vectorizes chunk text at build time.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Entry pairs a chunk with its embedding vector. The index is the sole
// writer of entries.
type Entry struct {
	Chunk  markdown.Chunk
	Vector []float32
}

// ScoredChunk is one retrieval result. Sequences of scored chunks are always
// ordered by non-increasing score.
type ScoredChunk struct {
	Chunk markdown.Chunk
	Score float32
}

// Index is an in-memory vector index with linear-scan cosine search.
// Vectors are stored L2-normalized, so similarity is a dot product.
type Index struct {
	mu        sync.RWMutex
	model     string
	dimension int
	entries   []Entry
}

// Build embeds every chunk through the gateway and assembles the index.
// The build fails outright on inconsistent embedding dimensions; a partially
// vectorized index would silently corrupt every later search.
func Build(ctx context.Context, model string, chunks []markdown.Chunk, embedder Embedder) (*Index, error) {
	if len(chunks) == 0 {
		return nil, ErrEmptyIndex
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	vectors, err := embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	dimension := len(vectors[0])
	entries := make([]Entry, len(chunks))
	for i, chunk := range chunks {
		if len(vectors[i]) != dimension {
			return nil, fmt.Errorf("%w: chunk %d has %d dimensions, expected %d",
				ErrDimensionMismatch, i, len(vectors[i]), dimension)
		}
		entries[i] = Entry{Chunk: chunk, Vector: vectors[i]}
	}

	return &Index{model: model, dimension: dimension, entries: entries}, nil
}

// Search returns the top k entries by cosine similarity to the query vector,
// highest first. Equal scores keep insertion order. Entries scoring below
// threshold are dropped, so a threshold of 0 keeps non-negative similarities
// only; pass a negative threshold (cosine floor is -1) to keep everything.
// An empty result is a valid outcome, not an error.
func (ix *Index) Search(query []float32, k int, threshold float32) ([]ScoredChunk, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if len(query) != ix.dimension {
		return nil, fmt.Errorf("%w: query has %d dimensions, expected %d",
			ErrDimensionMismatch, len(query), ix.dimension)
	}

	results := make([]ScoredChunk, 0, len(ix.entries))
	for _, entry := range ix.entries {
		score := dot(query, entry.Vector)
		if score < threshold {
			continue
		}
		results = append(results, ScoredChunk{Chunk: entry.Chunk, Score: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if k > 0 && k < len(results) {
		results = results[:k]
	}
	return results, nil
}

// Len returns the number of indexed chunks.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.entries)
}

// Dimension returns the embedding dimension of the index.
func (ix *Index) Dimension() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.dimension
}

// Model returns the embedding model the index was built with.
func (ix *Index) Model() string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.model
}

// snapshot is the gob frame written to disk. Every entry must round-trip
// with identical chunk text, header path, source path, and vector.
type snapshot struct {
	Model     string
	Dimension int
	Entries   []Entry
}

// Persist writes the index to path atomically: encode into a temporary file
// in the same directory, sync, then rename into place. A crash mid-write
// never leaves a file Load would accept.
func (ix *Index) Persist(path string) error {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create index directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp index file: %w", err)
	}
	defer os.Remove(tmp.Name())

	snap := snapshot{Model: ix.model, Dimension: ix.dimension, Entries: ix.entries}
	if err := gob.NewEncoder(tmp).Encode(&snap); err != nil {
		tmp.Close()
		return fmt.Errorf("encode index: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync index: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp index file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace index file: %w", err)
	}
	return nil
}

// Load restores a persisted index without re-embedding. A missing file maps
// to ErrIndexNotFound and a malformed one to ErrIndexCorrupt; the caller
// decides whether to rebuild.
func Load(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrIndexNotFound, path)
		}
		return nil, fmt.Errorf("open index: %w", err)
	}
	defer f.Close()

	var snap snapshot
	if err := gob.NewDecoder(f).Decode(&snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIndexCorrupt, err)
	}
	for i, entry := range snap.Entries {
		if len(entry.Vector) != snap.Dimension {
			return nil, fmt.Errorf("%w: entry %d has %d dimensions, expected %d",
				ErrIndexCorrupt, i, len(entry.Vector), snap.Dimension)
		}
	}

	return &Index{model: snap.Model, dimension: snap.Dimension, entries: snap.Entries}, nil
}

// dot computes the dot product of two equal-length vectors. With normalized
// inputs this is the cosine similarity.
func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
