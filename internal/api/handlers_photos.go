// handlers_photos.go - Photo listing and random selection handlers
package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/photo-diary/backend/internal/selection"
	"github.com/photo-diary/backend/internal/storage"
	"github.com/vmihailenco/msgpack/v5"
)

// PhotoHandlerImpl implements the PhotoHandler interface
type PhotoHandlerImpl struct {
	store  storage.RecordStore
	images ImageStore
	rng    selection.Rand
}

// NewPhotoHandler creates a new photo handler. A nil rng uses the default source.
func NewPhotoHandler(store storage.RecordStore, images ImageStore, rng selection.Rand) PhotoHandler {
	if rng == nil {
		rng = selection.DefaultRand
	}
	return &PhotoHandlerImpl{
		store:  store,
		images: images,
		rng:    rng,
	}
}

// HandleListPhotos returns every stored record in insertion order
func (h *PhotoHandlerImpl) HandleListPhotos(c echo.Context) error {
	return c.JSON(http.StatusOK, h.store.Load(c.Request().Context()))
}

// HandleListPhotosMsgpack returns the record list encoded as MessagePack
func (h *PhotoHandlerImpl) HandleListPhotosMsgpack(c echo.Context) error {
	data, err := msgpack.Marshal(h.store.Load(c.Request().Context()))
	if err != nil {
		return NewInternalError("failed to encode photos", err)
	}
	return c.Blob(http.StatusOK, "application/msgpack", data)
}

// HandleRandomPhoto returns one stored record picked uniformly at random
func (h *PhotoHandlerImpl) HandleRandomPhoto(c echo.Context) error {
	photo, err := selection.Select(h.store.Load(c.Request().Context()), selection.Filter{}, h.rng)
	if err != nil {
		return FromError(err)
	}
	return c.JSON(http.StatusOK, photo)
}

// HandleRandomPhotoFiltered returns a random photo for the optional month and
// year query parameters. With no records at all it falls back to the files in
// the upload directory and ignores the filter.
func (h *PhotoHandlerImpl) HandleRandomPhotoFiltered(c echo.Context) error {
	filter, err := selection.ParseFilter(c.QueryParam("month"), c.QueryParam("year"))
	if err != nil {
		return FromError(err)
	}

	photo, err := selection.Select(h.store.Load(c.Request().Context()), filter, h.rng)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, selection.NewResult(photo))
	case errors.Is(err, selection.ErrStoreEmpty):
		return h.randomFromDirectory(c)
	default:
		return FromError(err)
	}
}

func (h *PhotoHandlerImpl) randomFromDirectory(c echo.Context) error {
	if h.images == nil {
		return NewNotFoundError("No photos yet")
	}

	names, err := h.images.ListImages()
	if err != nil {
		return NewInternalError("Failed to read photos directory", err)
	}

	result, err := selection.PickFile(names, h.rng)
	if err != nil {
		return NewNotFoundError("No photos yet")
	}
	return c.JSON(http.StatusOK, result)
}
