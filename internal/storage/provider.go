// Package storage defines where the combined snow-course table is persisted.
// Backends live in subpackages: local (filesystem), gcs (Google Cloud Storage)
// and memory (tests and dry runs).
package storage

import (
	"context"
	"io"
)

// BlobStore writes an artifact under path and returns a URI describing where it landed.
type BlobStore interface {
	PutObject(ctx context.Context, path string, contentType string, data io.Reader) (string, error)
}
