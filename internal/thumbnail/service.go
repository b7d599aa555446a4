package thumbnail

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/drivenest/service/internal/blob"
)

// Notifier pushes upload events to connected realtime clients. Delivery is
// best-effort; implementations must never fail the caller.
type Notifier interface {
	ThumbnailUploaded(id int64, filename, url string)
}

// View is the client-facing representation of one stored image.
type View struct {
	ID       int64  `json:"id"`
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

// Service composes the blob store, the metadata store, and the realtime
// notifier into the upload, list, and delete flows.
type Service struct {
	store  Store
	blobs  blob.Store
	notify Notifier
}

// NewService creates a new thumbnail Service.
func NewService(store Store, blobs blob.Store, notify Notifier) *Service {
	return &Service{store: store, blobs: blobs, notify: notify}
}

// Upload writes the byte stream to the blob store, records the stored name,
// and notifies realtime subscribers. The returned view carries the client's
// original filename; the record keeps the generated stored name.
func (s *Service) Upload(ctx context.Context, r io.Reader, originalName string) (*View, error) {
	stored, err := s.blobs.Save(ctx, r, originalName)
	if err != nil {
		return nil, fmt.Errorf("save blob: %w", err)
	}

	rec, err := s.store.Insert(ctx, stored)
	if err != nil {
		// The blob written above is left orphaned on purpose; reconciling
		// here would hide the failure from operators.
		log.Printf("thumbnail: metadata insert failed, blob %q orphaned: %v", stored, err)
		return nil, fmt.Errorf("insert metadata: %w", err)
	}

	url := s.blobs.URL(stored)
	s.notify.ThumbnailUploaded(rec.ID, originalName, url)

	return &View{ID: rec.ID, Filename: originalName, URL: url}, nil
}

// List returns a view of every stored image. An empty store is reported as
// ErrNotFound.
func (s *Service) List(ctx context.Context) ([]View, error) {
	recs, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list thumbnails: %w", err)
	}
	if len(recs) == 0 {
		return nil, ErrNotFound
	}

	views := make([]View, 0, len(recs))
	for _, rec := range recs {
		views = append(views, View{
			ID:       rec.ID,
			Filename: rec.Filename,
			URL:      s.blobs.URL(rec.Filename),
		})
	}
	return views, nil
}

// Delete removes the blob and then the metadata record for id.
// A blob that is already gone does not block the delete.
func (s *Service) Delete(ctx context.Context, id int64) error {
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.blobs.Remove(ctx, rec.Filename); err != nil {
		return fmt.Errorf("remove blob: %w", err)
	}

	existed, err := s.store.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete metadata: %w", err)
	}
	if !existed {
		return ErrNotFound
	}
	return nil
}

// IsNotFound returns true when the error indicates a missing record.
func (s *Service) IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
