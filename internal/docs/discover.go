// Package docs discovers markdown documents under a directory tree.
package docs

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Document is a markdown file that was read successfully. Immutable once
// loaded; re-indexing replaces documents wholesale.
type Document struct {
	Path string // path relative to the scanned root, forward slashes
	Raw  []byte
}

// SkippedFile records a file that was discovered but could not be used.
// Skips are reported, never fatal to the batch.
type SkippedFile struct {
	Path   string
	Reason string
}

// Discover walks root recursively and loads every markdown file. Files that
// cannot be read or do not decode as UTF-8 are collected as skips. Symlinked
// directories are not followed, so link loops cannot hang the walk.
func Discover(root string) ([]Document, []SkippedFile, error) {
	var documents []Document
	var skipped []SkippedFile

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return fmt.Errorf("scan %s: %w", root, err)
			}
			skipped = append(skipped, SkippedFile{Path: relPath(root, path), Reason: err.Error()})
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !isMarkdown(path) {
			return nil
		}

		raw, err := os.ReadFile(path)
		if err != nil {
			skipped = append(skipped, SkippedFile{Path: relPath(root, path), Reason: err.Error()})
			return nil
		}
		if !utf8.Valid(raw) {
			skipped = append(skipped, SkippedFile{Path: relPath(root, path), Reason: "not valid UTF-8 text"})
			return nil
		}

		documents = append(documents, Document{Path: relPath(root, path), Raw: raw})
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return documents, skipped, nil
}

// isMarkdown reports whether a path carries a markdown extension.
func isMarkdown(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

func relPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	return filepath.ToSlash(rel)
}
