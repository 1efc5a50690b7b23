package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/photo-diary/backend/internal/auth"
	"github.com/photo-diary/backend/internal/config"
	"github.com/photo-diary/backend/internal/storage"
	"github.com/photo-diary/backend/internal/testutil"
	"github.com/stretchr/testify/require"
)

const testSecret = "s3cret"

type testServer struct {
	e       *echo.Echo
	records *storage.JSONRecordStore
	images  *storage.ImageStore
}

func newTestServer(t *testing.T, mutate func(*Dependencies)) *testServer {
	t.Helper()

	dir := t.TempDir()
	records, err := storage.NewJSONRecordStore(filepath.Join(dir, "photos.json"), nil)
	require.NoError(t, err)
	images, err := storage.NewImageStore(filepath.Join(dir, "uploads"))
	require.NoError(t, err)

	deps := &Dependencies{
		Records:                  records,
		Images:                   images,
		Guard:                    auth.NewGuard(testSecret),
		Rand:                     testutil.FixedRand{},
		Version:                  "test",
		UploadEnabled:            true,
		MaxUploadSize:            config.DefaultMaxUploadSize,
		PublicUploadRequiresAuth: true,
	}
	if mutate != nil {
		mutate(deps)
	}

	e := echo.New()
	SetupMiddleware(e, MiddlewareOptions{})
	RegisterRoutes(e, NewHandlers(deps), deps)

	return &testServer{e: e, records: records, images: images}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) get(target string) *httptest.ResponseRecorder {
	return s.do(httptest.NewRequest(http.MethodGet, target, nil))
}

func uploadRequest(t *testing.T, target, authHeader, filename, contentType string, data []byte) *http.Request {
	t.Helper()
	body, ct := testutil.MultipartBody(t, UploadFormField, filename, contentType, data)
	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set(echo.HeaderContentType, ct)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	return req
}

func decodeJSON(t *testing.T, r io.Reader, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(r).Decode(v))
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	decodeJSON(t, bytes.NewReader(rec.Body.Bytes()), &body)
	msg, _ := body["error"].(string)
	return msg
}
