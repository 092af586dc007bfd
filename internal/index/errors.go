package index

import "errors"

var (
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	ErrIndexNotFound     = errors.New("persisted index not found")
	ErrIndexCorrupt      = errors.New("persisted index corrupt")
	ErrEmptyIndex        = errors.New("index contains no chunks")
)
