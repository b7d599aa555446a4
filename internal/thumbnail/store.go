// Package thumbnail manages uploaded image metadata and the upload,
// list, and delete flows built on top of it.
package thumbnail

import (
	"context"
	"errors"
)

// Thumbnail is the persisted metadata record for one stored blob.
type Thumbnail struct {
	ID       int64  `json:"id"`
	Filename string `json:"filename"`
	// ImageData is a reserved column for inline storage. The service never
	// populates it; blob bytes live in the blob store.
	ImageData []byte `json:"-"`
}

// ErrNotFound is returned when a thumbnail record does not exist.
var ErrNotFound = errors.New("thumbnail not found")

// ErrDuplicateFilename is returned when a filename is already recorded.
// The blob store's name generation makes this unreachable in practice.
var ErrDuplicateFilename = errors.New("filename already exists")

// Store is the metadata persistence interface. Each call is its own
// transaction; no operation spans requests.
type Store interface {
	// Insert creates a record with a fresh id for the stored filename.
	Insert(ctx context.Context, filename string) (*Thumbnail, error)
	// List returns every record. An empty store yields an empty slice.
	List(ctx context.Context) ([]Thumbnail, error)
	// Get fetches one record by id, or ErrNotFound.
	Get(ctx context.Context, id int64) (*Thumbnail, error)
	// Delete removes the record by id and reports whether it existed.
	Delete(ctx context.Context, id int64) (bool, error)
}
