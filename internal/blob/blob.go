// Package blob defines the interface for uploaded-file byte storage.
// Implementations own the stored-name generation so the metadata layer only
// ever sees collision-free names.
package blob

import (
	"context"
	"io"
	"path"
)

// Store is the interface for persisting and removing uploaded blobs.
type Store interface {
	// Save writes the full byte stream to durable storage under a freshly
	// generated name (unique token + the original file's extension) and
	// returns that stored name.
	Save(ctx context.Context, r io.Reader, originalName string) (string, error)
	// Remove deletes the blob with the given stored name. Removing a name
	// that does not exist is not an error.
	Remove(ctx context.Context, storedName string) error
	// URL builds the publicly servable URL for a stored name.
	URL(storedName string) string
}

// ext returns the extension of name including the dot ("photo.jpg" -> ".jpg"),
// or "" when the name has none.
func ext(name string) string {
	return path.Ext(path.Base(name))
}
