package thumbnail

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory Store with injectable failures.
type fakeStore struct {
	recs      []Thumbnail
	nextID    int64
	insertErr error
}

func (f *fakeStore) Insert(_ context.Context, filename string) (*Thumbnail, error) {
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	f.nextID++
	t := Thumbnail{ID: f.nextID, Filename: filename}
	f.recs = append(f.recs, t)
	return &t, nil
}

func (f *fakeStore) List(context.Context) ([]Thumbnail, error) {
	return f.recs, nil
}

func (f *fakeStore) Get(_ context.Context, id int64) (*Thumbnail, error) {
	for _, t := range f.recs {
		if t.ID == id {
			return &t, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeStore) Delete(_ context.Context, id int64) (bool, error) {
	for i, t := range f.recs {
		if t.ID == id {
			f.recs = append(f.recs[:i], f.recs[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// fakeBlobs is an in-memory blob.Store with injectable failures.
type fakeBlobs struct {
	saved    map[string]string // stored name -> content
	saveErr  error
	seq      int
	removeds []string
}

func (f *fakeBlobs) Save(_ context.Context, r io.Reader, originalName string) (string, error) {
	if f.saveErr != nil {
		return "", f.saveErr
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.seq++
	name := fmt.Sprintf("token-%d%s", f.seq, extOf(originalName))
	if f.saved == nil {
		f.saved = make(map[string]string)
	}
	f.saved[name] = string(b)
	return name, nil
}

func (f *fakeBlobs) Remove(_ context.Context, storedName string) error {
	delete(f.saved, storedName)
	f.removeds = append(f.removeds, storedName)
	return nil
}

func (f *fakeBlobs) URL(storedName string) string {
	return "http://localhost:8000/media/" + storedName
}

func extOf(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i:]
	}
	return ""
}

// fakeNotifier records pushed events.
type fakeNotifier struct {
	events []struct {
		id            int64
		filename, url string
	}
}

func (f *fakeNotifier) ThumbnailUploaded(id int64, filename, url string) {
	f.events = append(f.events, struct {
		id            int64
		filename, url string
	}{id, filename, url})
}

func newTestService() (*Service, *fakeStore, *fakeBlobs, *fakeNotifier) {
	store := &fakeStore{}
	blobs := &fakeBlobs{}
	notify := &fakeNotifier{}
	return NewService(store, blobs, notify), store, blobs, notify
}

func TestUploadHappyPath(t *testing.T) {
	svc, store, blobs, notify := newTestService()

	view, err := svc.Upload(context.Background(), strings.NewReader("0123456789"), "photo.jpg")
	require.NoError(t, err)

	assert.Equal(t, int64(1), view.ID)
	assert.Equal(t, "photo.jpg", view.Filename, "response carries the original filename")
	assert.True(t, strings.HasSuffix(view.URL, ".jpg"))

	require.Len(t, store.recs, 1)
	assert.NotEqual(t, "photo.jpg", store.recs[0].Filename, "record keeps the generated stored name")
	assert.Equal(t, "0123456789", blobs.saved[store.recs[0].Filename])

	require.Len(t, notify.events, 1)
	assert.Equal(t, int64(1), notify.events[0].id)
	assert.Equal(t, "photo.jpg", notify.events[0].filename)
	assert.Equal(t, view.URL, notify.events[0].url)
}

func TestUploadBlobFailureCreatesNothing(t *testing.T) {
	svc, store, blobs, notify := newTestService()
	blobs.saveErr = errors.New("disk full")

	_, err := svc.Upload(context.Background(), strings.NewReader("x"), "a.png")
	require.Error(t, err)
	assert.Empty(t, store.recs, "no metadata record on blob write failure")
	assert.Empty(t, notify.events, "no broadcast on blob write failure")
}

func TestUploadInsertFailureLeavesBlobOrphaned(t *testing.T) {
	svc, store, blobs, notify := newTestService()
	store.insertErr = errors.New("db down")

	_, err := svc.Upload(context.Background(), strings.NewReader("x"), "a.png")
	require.Error(t, err)

	assert.Len(t, blobs.saved, 1, "blob stays on disk when the insert fails")
	assert.Empty(t, notify.events)
}

func TestUploadSameNameTwiceYieldsDistinctRecords(t *testing.T) {
	svc, store, _, _ := newTestService()
	ctx := context.Background()

	first, err := svc.Upload(ctx, strings.NewReader("a"), "photo.jpg")
	require.NoError(t, err)
	second, err := svc.Upload(ctx, strings.NewReader("b"), "photo.jpg")
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	require.Len(t, store.recs, 2)
	assert.NotEqual(t, store.recs[0].Filename, store.recs[1].Filename)
}

func TestListEmptyIsNotFound(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.List(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListMapsRecordsToViews(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Upload(ctx, strings.NewReader("a"), "one.jpg")
	require.NoError(t, err)

	views, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.True(t, strings.HasSuffix(views[0].Filename, ".jpg"))
	assert.NotEqual(t, "one.jpg", views[0].Filename, "list exposes the stored name")
	assert.Equal(t, "http://localhost:8000/media/"+views[0].Filename, views[0].URL)
}

func TestDeleteRemovesBlobAndRecord(t *testing.T) {
	svc, store, blobs, _ := newTestService()
	ctx := context.Background()

	view, err := svc.Upload(ctx, strings.NewReader("a"), "x.png")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, view.ID))
	assert.Empty(t, store.recs)
	assert.Empty(t, blobs.saved)
	require.Len(t, blobs.removeds, 1)

	// Second delete reports not-found.
	err = svc.Delete(ctx, view.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteUnknownIDIsNotFound(t *testing.T) {
	svc, _, _, _ := newTestService()
	assert.ErrorIs(t, svc.Delete(context.Background(), 42), ErrNotFound)
}
