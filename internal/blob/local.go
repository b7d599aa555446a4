package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalStore keeps blobs as flat files under a media directory and serves
// them through the router's static /media/ mount.
type LocalStore struct {
	root    string
	baseURL string // e.g. "http://localhost:8000"
}

// NewLocalStore creates the media directory if needed and returns a store
// rooted there.
func NewLocalStore(root, baseURL string) (*LocalStore, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("media dir is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	return &LocalStore{
		root:    abs,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// Root returns the absolute media directory, for the static file mount.
func (s *LocalStore) Root() string {
	return s.root
}

// Save streams r into a new file named by a random UUID plus the original
// extension. O_EXCL guarantees an existing file is never overwritten.
func (s *LocalStore) Save(ctx context.Context, r io.Reader, originalName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	storedName := uuid.New().String() + ext(originalName)
	dst := filepath.Join(s.root, storedName)

	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create blob %q: %w", storedName, err)
	}

	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(dst)
		return "", fmt.Errorf("write blob %q: %w", storedName, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(dst)
		return "", fmt.Errorf("close blob %q: %w", storedName, err)
	}

	return storedName, nil
}

// Remove deletes the blob file. Missing files are ignored.
func (s *LocalStore) Remove(ctx context.Context, storedName string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.pathFor(storedName)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove blob %q: %w", storedName, err)
	}
	return nil
}

// URL returns the browser-accessible URL for the stored name,
// e.g. "http://localhost:8000/media/<uuid>.jpg".
func (s *LocalStore) URL(storedName string) string {
	return s.baseURL + "/media/" + storedName
}

// pathFor resolves a stored name inside the media root, rejecting names
// that would escape it.
func (s *LocalStore) pathFor(storedName string) (string, error) {
	storedName = strings.TrimSpace(storedName)
	if storedName == "" {
		return "", fmt.Errorf("stored name is required")
	}
	clean := filepath.Clean(storedName)
	if clean != filepath.Base(clean) || clean == "." || clean == ".." {
		return "", fmt.Errorf("invalid stored name %q", storedName)
	}
	return filepath.Join(s.root, clean), nil
}
