package blob

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *LocalStore {
	t.Helper()
	s, err := NewLocalStore(t.TempDir(), "http://localhost:8000")
	require.NoError(t, err)
	return s
}

func TestLocalStoreSave(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	name, err := s.Save(ctx, bytes.NewBufferString("0123456789"), "photo.jpg")
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(name, ".jpg"), "stored name %q should keep the extension", name)
	assert.NotEqual(t, "photo.jpg", name)

	data, err := os.ReadFile(filepath.Join(s.Root(), name))
	require.NoError(t, err)
	assert.Equal(t, "0123456789", string(data))
}

func TestLocalStoreSaveDistinctNames(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.Save(ctx, bytes.NewBufferString("a"), "photo.jpg")
	require.NoError(t, err)
	second, err := s.Save(ctx, bytes.NewBufferString("b"), "photo.jpg")
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "same original name must yield distinct stored names")
}

func TestLocalStoreSaveNoExtension(t *testing.T) {
	s := newTestStore(t)

	name, err := s.Save(context.Background(), bytes.NewBufferString("x"), "README")
	require.NoError(t, err)
	assert.NotContains(t, name, ".")
}

func TestLocalStoreRemove(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	name, err := s.Save(ctx, bytes.NewBufferString("bytes"), "a.png")
	require.NoError(t, err)

	require.NoError(t, s.Remove(ctx, name))
	_, err = os.Stat(filepath.Join(s.Root(), name))
	assert.True(t, os.IsNotExist(err))

	// Removing again is a no-op, not an error.
	assert.NoError(t, s.Remove(ctx, name))
}

func TestLocalStoreRemoveRejectsTraversal(t *testing.T) {
	s := newTestStore(t)

	for _, name := range []string{"", "../escape", "a/b.png", ".."} {
		assert.Error(t, s.Remove(context.Background(), name), "name %q", name)
	}
}

func TestLocalStoreURL(t *testing.T) {
	s := newTestStore(t)
	assert.Equal(t, "http://localhost:8000/media/abc.jpg", s.URL("abc.jpg"))
}
