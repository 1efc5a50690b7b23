// Package web serves uploaded photos and the optional front-end directory.
package web

import (
	"errors"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/photo-diary/backend/internal/storage"
)

// UploadsCacheControl is sent with every file served under /uploads.
const UploadsCacheControl = "public, max-age=31536000, immutable"

// RegisterPhotoRoutes serves uploadDir under both /uploads and /photos.
// Only files with an image extension are exposed; directory listings are not.
func RegisterPhotoRoutes(e *echo.Echo, uploadDir string) {
	files := imageFS{root: http.Dir(uploadDir)}

	e.GET("/uploads/*", serveFiles("/uploads/", files), longLivedCache)
	e.GET("/photos/*", serveFiles("/photos/", files))
}

func serveFiles(prefix string, files http.FileSystem) echo.HandlerFunc {
	return echo.WrapHandler(http.StripPrefix(prefix, http.FileServer(files)))
}

func longLivedCache(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set(echo.HeaderCacheControl, UploadsCacheControl)
		return next(c)
	}
}

// imageFS hides everything except regular image files.
type imageFS struct {
	root http.FileSystem
}

func (f imageFS) Open(name string) (http.File, error) {
	if !storage.IsImageFile(name) {
		return nil, fs.ErrNotExist
	}

	file, err := f.root.Open(name)
	if err != nil {
		return nil, err
	}

	stat, err := file.Stat()
	if err != nil || stat.IsDir() {
		file.Close()
		return nil, fs.ErrNotExist
	}
	return file, nil
}

// RegisterStaticRoutes serves the front-end from dir for all remaining GET
// routes, falling back to index.html for unknown paths. API routes should be
// registered first.
func RegisterStaticRoutes(e *echo.Echo, dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return errors.New("static directory is not a directory: " + dir)
	}

	staticFS := os.DirFS(dir)
	fileServer := http.FileServer(http.FS(staticFS))

	e.GET("/*", func(c echo.Context) error {
		requestPath := path.Clean(c.Request().URL.Path)
		if requestPath == "." {
			requestPath = "/"
		}

		name := strings.TrimPrefix(requestPath, "/")
		if name == "" {
			name = "."
		}

		file, err := staticFS.Open(name)
		if err != nil {
			return serveIndexHTML(c, staticFS)
		}
		defer file.Close()

		stat, err := file.Stat()
		if err != nil {
			return serveIndexHTML(c, staticFS)
		}

		if stat.IsDir() {
			indexFile, err := staticFS.Open(path.Join(name, "index.html"))
			if err != nil {
				return serveIndexHTML(c, staticFS)
			}
			indexFile.Close()
		}

		fileServer.ServeHTTP(c.Response(), c.Request())
		return nil
	})

	return nil
}

// serveIndexHTML serves the main index.html for client-side routing
func serveIndexHTML(c echo.Context, staticFS fs.FS) error {
	indexFile, err := staticFS.Open("index.html")
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Not found")
	}
	defer indexFile.Close()

	content, err := io.ReadAll(indexFile)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to read index.html")
	}

	return c.HTMLBlob(http.StatusOK, content)
}
