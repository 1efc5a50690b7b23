package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/photo-diary/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestRecordStore(t *testing.T) *JSONRecordStore {
	t.Helper()
	store, err := NewJSONRecordStore(filepath.Join(t.TempDir(), "data", "photos.json"), nil)
	require.NoError(t, err)
	return store
}

func TestJSONRecordStore_LoadMissingFile(t *testing.T) {
	store := createTestRecordStore(t)

	photos := store.Load(context.Background())
	assert.NotNil(t, photos)
	assert.Empty(t, photos)
}

func TestJSONRecordStore_LoadCorruptFile(t *testing.T) {
	tests := map[string]string{
		"malformed json": `[{"filename": "a.jpg",`,
		"wrong shape":    `{"filename": "a.jpg"}`,
		"empty file":     ``,
		"null":           `null`,
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			store := createTestRecordStore(t)
			require.NoError(t, os.WriteFile(store.Path(), []byte(content), 0o644))

			photos := store.Load(context.Background())
			assert.NotNil(t, photos)
			assert.Empty(t, photos)
		})
	}
}

func TestJSONRecordStore_LoadUnreadable(t *testing.T) {
	store := createTestRecordStore(t)
	// a directory where the file should be cannot be read as a file
	require.NoError(t, os.Mkdir(store.Path(), 0o755))

	assert.Empty(t, store.Load(context.Background()))
}

func TestJSONRecordStore_SaveAndLoad(t *testing.T) {
	ctx := context.Background()
	store := createTestRecordStore(t)

	want := []models.Photo{
		{Filename: "a.jpg", URL: "/uploads/a.jpg", UploadedAt: "2024-03-05T00:00:00Z"},
		{Filename: "b.png", UploadedAt: "2024-04-01T10:00:00.000Z", DateUploaded: "2024-04-01T10:00:00.000Z"},
		{Filename: "legacy.gif"},
	}
	require.NoError(t, store.Save(ctx, want))

	assert.Equal(t, want, store.Load(ctx))
	assert.NoFileExists(t, store.Path()+".tmp")
}

func TestJSONRecordStore_LoadIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := createTestRecordStore(t)
	require.NoError(t, store.Save(ctx, []models.Photo{{Filename: "a.jpg"}, {Filename: "b.jpg"}}))

	assert.Equal(t, store.Load(ctx), store.Load(ctx))
}

func TestJSONRecordStore_SaveLoadRoundTripPreservesContent(t *testing.T) {
	ctx := context.Background()
	store := createTestRecordStore(t)

	original := `[
  {
    "filename": "a.jpg",
    "url": "/uploads/a.jpg",
    "uploadedAt": "2024-03-05T00:00:00Z"
  },
  {
    "filename": "b.jpg",
    "dateUploaded": "not a date"
  }
]`
	require.NoError(t, os.WriteFile(store.Path(), []byte(original), 0o644))

	require.NoError(t, store.Save(ctx, store.Load(ctx)))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.JSONEq(t, original, string(data))
}

func TestJSONRecordStore_SaveEmptyWritesArray(t *testing.T) {
	store := createTestRecordStore(t)
	require.NoError(t, store.Save(context.Background(), nil))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestJSONRecordStore_SaveFailure(t *testing.T) {
	store := createTestRecordStore(t)
	// a directory in place of the temp file makes the write fail
	require.NoError(t, os.Mkdir(store.Path()+".tmp", 0o755))

	err := store.Save(context.Background(), []models.Photo{{Filename: "a.jpg"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStoreUnwritable))
}

func TestJSONRecordStore_AppendPreservesOrder(t *testing.T) {
	ctx := context.Background()
	store := createTestRecordStore(t)

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Append(ctx, models.Photo{Filename: fmt.Sprintf("%d.jpg", i)}))
	}

	photos := store.Load(ctx)
	require.Len(t, photos, 3)
	for i, p := range photos {
		assert.Equal(t, fmt.Sprintf("%d.jpg", i), p.Filename)
	}
}

func TestJSONRecordStore_ConcurrentAppendsAreNotLost(t *testing.T) {
	ctx := context.Background()
	store := createTestRecordStore(t)

	// a second store on the same file stands in for another process
	other, err := NewJSONRecordStore(store.Path(), nil)
	require.NoError(t, err)

	const perStore = 25
	var wg sync.WaitGroup
	for _, s := range []*JSONRecordStore{store, other} {
		for i := 0; i < perStore; i++ {
			wg.Add(1)
			go func(s *JSONRecordStore, i int) {
				defer wg.Done()
				assert.NoError(t, s.Append(ctx, models.Photo{Filename: fmt.Sprintf("%p-%d.jpg", s, i)}))
			}(s, i)
		}
	}
	wg.Wait()

	assert.Len(t, store.Load(ctx), 2*perStore)
}

func TestNewJSONRecordStore_RequiresPath(t *testing.T) {
	_, err := NewJSONRecordStore("", nil)
	assert.Error(t, err)
}
