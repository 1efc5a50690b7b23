// handlers_upload.go - Photo upload handlers
package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/photo-diary/backend/internal/logging"
	"github.com/photo-diary/backend/internal/models"
	"github.com/photo-diary/backend/internal/upload"
)

// UploadFormField is the multipart field carrying the photo.
const UploadFormField = "photo"

// UploadHandlerImpl implements the UploadHandler interface
type UploadHandlerImpl struct {
	images        ImageStore
	reconciler    *upload.Reconciler
	maxUploadSize int64
	logger        *slog.Logger
}

// NewUploadHandler creates a new upload handler instance
func NewUploadHandler(images ImageStore, reconciler *upload.Reconciler, maxUploadSize int64, logger *slog.Logger) UploadHandler {
	return &UploadHandlerImpl{
		images:        images,
		reconciler:    reconciler,
		maxUploadSize: maxUploadSize,
		logger:        logging.WithComponent(logger, "api"),
	}
}

// HandleAdminUpload stores a photo sent by an authorized client and returns the new record
func (h *UploadHandlerImpl) HandleAdminUpload(c echo.Context) error {
	photo, err := h.receive(c, upload.RouteAdmin)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, photo)
}

// HandlePublicUpload stores a photo sent from the upload form
func (h *UploadHandlerImpl) HandlePublicUpload(c echo.Context) error {
	photo, err := h.receive(c, upload.RoutePublic)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, publicUploadResponse{
		Message: "Photo uploaded successfully",
		Photo: publicUploadPhoto{
			Filename:     photo.Filename,
			DateUploaded: photo.DateUploaded,
		},
	})
}

// receive validates and saves the uploaded file, then records it.
func (h *UploadHandlerImpl) receive(c echo.Context, route upload.Route) (models.Photo, error) {
	fh, err := c.FormFile(UploadFormField)
	if err != nil {
		return models.Photo{}, formFileError(err)
	}

	if err := upload.Validate(fh, h.maxUploadSize); err != nil {
		return models.Photo{}, FromError(err)
	}

	src, err := fh.Open()
	if err != nil {
		return models.Photo{}, NewInternalError("failed to open uploaded file", err)
	}
	defer src.Close()

	name, err := h.images.Save(fh.Filename, src)
	if err != nil {
		return models.Photo{}, NewInternalError("failed to save file", err)
	}

	ctx := c.Request().Context()
	photo, err := h.reconciler.Reconcile(ctx, name, route)
	if err != nil {
		if rmErr := h.images.Remove(name); rmErr != nil {
			h.logger.WarnContext(ctx, "failed to remove orphaned upload",
				slog.String("filename", name),
				slog.String("error", rmErr.Error()))
		}
		return models.Photo{}, FromError(err)
	}

	return photo, nil
}

// formFileError distinguishes a missing file from an oversized or malformed body.
func formFileError(err error) error {
	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &httpErr) && httpErr.Code == http.StatusRequestEntityTooLarge:
		return NewPayloadTooLargeError("File too large", nil)
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return FromError(upload.ErrUploadMissing)
	default:
		return NewBadRequestError("No file uploaded", err)
	}
}

// Request/Response types

type publicUploadPhoto struct {
	Filename     string `json:"filename"`
	DateUploaded string `json:"dateUploaded"`
}

type publicUploadResponse struct {
	Message string            `json:"message"`
	Photo   publicUploadPhoto `json:"photo"`
}
