// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"io"

	"github.com/labstack/echo/v4"
)

// PhotoHandler serves the record list and random selections
type PhotoHandler interface {
	HandleListPhotos(c echo.Context) error
	HandleListPhotosMsgpack(c echo.Context) error
	HandleRandomPhoto(c echo.Context) error
	HandleRandomPhotoFiltered(c echo.Context) error
}

// UploadHandler handles photo uploads
type UploadHandler interface {
	HandleAdminUpload(c echo.Context) error
	HandlePublicUpload(c echo.Context) error
}

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// ImageStore is the file storage the handlers need.
type ImageStore interface {
	Save(originalName string, r io.Reader) (string, error)
	Remove(name string) error
	ListImages() ([]string, error)
}
