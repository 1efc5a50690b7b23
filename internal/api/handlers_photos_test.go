package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/photo-diary/backend/internal/models"
	"github.com/photo-diary/backend/internal/selection"
	"github.com/photo-diary/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func seed(t *testing.T, s *testServer, photos ...models.Photo) {
	t.Helper()
	require.NoError(t, s.records.Save(context.Background(), photos))
}

func TestPhotoHandler_HandleListPhotos(t *testing.T) {
	t.Run("empty store", func(t *testing.T) {
		s := newTestServer(t, nil)

		rec := s.get("/api/photos")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})

	t.Run("returns records in order", func(t *testing.T) {
		s := newTestServer(t, nil)
		seed(t, s,
			models.Photo{Filename: "a.jpg", URL: "/uploads/a.jpg", UploadedAt: "2024-03-05T00:00:00Z"},
			models.Photo{Filename: "b.jpg", DateUploaded: "2023-01-01T00:00:00.000Z"},
		)

		rec := s.get("/api/photos")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[
			{"filename":"a.jpg","url":"/uploads/a.jpg","uploadedAt":"2024-03-05T00:00:00Z"},
			{"filename":"b.jpg","dateUploaded":"2023-01-01T00:00:00.000Z"}
		]`, rec.Body.String())
	})

	t.Run("corrupt store reads as empty", func(t *testing.T) {
		s := newTestServer(t, nil)
		require.NoError(t, os.WriteFile(s.records.Path(), []byte("{broken"), 0o644))

		rec := s.get("/api/photos")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})
}

func TestPhotoHandler_HandleListPhotosMsgpack(t *testing.T) {
	s := newTestServer(t, nil)
	want := []models.Photo{
		{Filename: "a.jpg", URL: "/uploads/a.jpg", UploadedAt: "2024-03-05T00:00:00Z"},
		{Filename: "b.png"},
	}
	seed(t, s, want...)

	rec := s.get("/api/photos/msgpack")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/msgpack", rec.Header().Get(echo.HeaderContentType))

	var got []models.Photo
	require.NoError(t, msgpack.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, want, got)
}

func TestPhotoHandler_HandleRandomPhoto(t *testing.T) {
	t.Run("empty store", func(t *testing.T) {
		s := newTestServer(t, nil)

		rec := s.get("/api/photos/random")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "No photos", errorMessage(t, rec))
	})

	t.Run("returns a stored record", func(t *testing.T) {
		photos := []models.Photo{
			{Filename: "a.jpg", UploadedAt: "2024-03-05T00:00:00Z"},
			{Filename: "b.jpg", UploadedAt: "2024-04-05T00:00:00Z"},
		}

		for i, want := range photos {
			s := newTestServer(t, func(d *Dependencies) { d.Rand = testutil.FixedRand{Index: i} })
			seed(t, s, photos...)

			rec := s.get("/api/photos/random")
			require.Equal(t, http.StatusOK, rec.Code)

			var got models.Photo
			decodeJSON(t, rec.Body, &got)
			assert.Equal(t, want, got)
		}
	})
}

func TestPhotoHandler_HandleRandomPhotoFiltered(t *testing.T) {
	single := models.Photo{Filename: "a.jpg", UploadedAt: "2024-03-05T00:00:00Z"}

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantFile   string
		wantError  string
	}{
		{name: "no filter", query: "", wantStatus: http.StatusOK, wantFile: "a.jpg"},
		{name: "year and zero-indexed month", query: "?year=2024&month=2", wantStatus: http.StatusOK, wantFile: "a.jpg"},
		{name: "one-indexed month is not normalised below 12", query: "?month=3", wantStatus: http.StatusNotFound, wantError: "No photos found for this filter"},
		{name: "other year", query: "?year=2023", wantStatus: http.StatusNotFound, wantError: "No photos found for this filter"},
		{name: "blank params ignored", query: "?year=&month=", wantStatus: http.StatusOK, wantFile: "a.jpg"},
		{name: "invalid month", query: "?month=march", wantStatus: http.StatusBadRequest, wantError: "Invalid filter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, nil)
			seed(t, s, single)

			rec := s.get("/random-photo" + tt.query)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())

			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, errorMessage(t, rec))
				return
			}

			var got selection.Result
			decodeJSON(t, rec.Body, &got)
			assert.Equal(t, tt.wantFile, got.Filename)
			assert.Equal(t, "/photos/a.jpg", got.URL)
			assert.Equal(t, "2024-03-05T00:00:00.000Z", got.UploadedAt)
		})
	}
}

func TestPhotoHandler_RandomPhotoDirectoryFallback(t *testing.T) {
	t.Run("empty store and empty directory", func(t *testing.T) {
		s := newTestServer(t, nil)

		rec := s.get("/random-photo")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "No photos yet", errorMessage(t, rec))
	})

	t.Run("picks a file and ignores filters", func(t *testing.T) {
		s := newTestServer(t, func(d *Dependencies) { d.Rand = testutil.FixedRand{Index: 1} })
		for _, name := range []string{"a.jpg", "b.PNG", "notes.txt"} {
			require.NoError(t, os.WriteFile(filepath.Join(s.images.Dir(), name), []byte("x"), 0o644))
		}

		rec := s.get("/random-photo?year=1999&month=5")
		require.Equal(t, http.StatusOK, rec.Code)

		var got map[string]any
		decodeJSON(t, rec.Body, &got)
		assert.Equal(t, map[string]any{"filename": "b.PNG", "url": "/photos/b.PNG"}, got)
	})

	t.Run("directory read failure", func(t *testing.T) {
		s := newTestServer(t, nil)
		require.NoError(t, os.RemoveAll(s.images.Dir()))

		rec := s.get("/random-photo")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Failed to read photos directory", errorMessage(t, rec))
	})

	t.Run("filtered-empty does not fall back", func(t *testing.T) {
		s := newTestServer(t, nil)
		seed(t, s, models.Photo{Filename: "a.jpg", UploadedAt: "2024-03-05T00:00:00Z"})
		require.NoError(t, os.WriteFile(filepath.Join(s.images.Dir(), "other.jpg"), []byte("x"), 0o644))

		rec := s.get("/random-photo?year=2020")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "No photos found for this filter", errorMessage(t, rec))
	})
}

func TestPhotoHandler_DirectContext(t *testing.T) {
	store := testutil.NewMockRecordStore(models.Photo{Filename: "x.gif", URL: "https://cdn.example.com/x.gif"})
	handler := NewPhotoHandler(store, nil, testutil.FixedRand{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/random-photo", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if assert.NoError(t, handler.HandleRandomPhotoFiltered(c)) {
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"url":"https://cdn.example.com/x.gif"`)
		assert.Contains(t, rec.Body.String(), `"uploadedAt":"1970-01-01T00:00:00.000Z"`)
	}

	// without an image store an empty record list has nothing to fall back to
	empty := NewPhotoHandler(testutil.NewMockRecordStore(), nil, nil)
	rec = httptest.NewRecorder()
	err := empty.HandleRandomPhotoFiltered(e.NewContext(req, rec))
	apiErr, ok := err.(*APIError)
	require.True(t, ok, "expected APIError, got %T", err)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "No photos yet", apiErr.Message)
}
