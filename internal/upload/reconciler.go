// Package upload turns saved upload files into persisted photo records.
package upload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/photo-diary/backend/internal/logging"
	"github.com/photo-diary/backend/internal/models"
	"github.com/photo-diary/backend/internal/storage"
)

var (
	// ErrUploadMissing means the request carried no file.
	ErrUploadMissing = errors.New("no file uploaded")
	// ErrUploadRejectedType means the file is not an image.
	ErrUploadRejectedType = errors.New("only image files are allowed")
	// ErrUploadTooLarge means the file exceeds the configured size limit.
	ErrUploadTooLarge = errors.New("file too large")
)

// Route identifies which upload endpoint produced a record.
type Route int

const (
	// RouteAdmin is the token-guarded API upload.
	RouteAdmin Route = iota
	// RoutePublic is the legacy /upload form endpoint.
	RoutePublic
)

// URLPrefix returns the path prefix recorded for files uploaded via r.
// Both prefixes serve the same upload directory.
func (r Route) URLPrefix() string {
	if r == RoutePublic {
		return models.PhotoURLPrefix
	}
	return "/uploads/"
}

func (r Route) String() string {
	if r == RoutePublic {
		return "public"
	}
	return "admin"
}

// Reconciler appends a record for every file the upload layer has saved.
type Reconciler struct {
	store  storage.RecordStore
	logger *slog.Logger
	now    func() time.Time
}

// NewReconciler creates a Reconciler writing through store.
func NewReconciler(store storage.RecordStore, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		store:  store,
		logger: logging.WithComponent(logger, "upload"),
		now:    time.Now,
	}
}

// WithClock replaces the time source. It is meant for tests.
func (r *Reconciler) WithClock(now func() time.Time) *Reconciler {
	r.now = now
	return r
}

// Reconcile records savedFilename as a new photo and returns the record.
// Public-route records also carry the legacy dateUploaded field.
func (r *Reconciler) Reconcile(ctx context.Context, savedFilename string, route Route) (models.Photo, error) {
	if savedFilename == "" {
		return models.Photo{}, ErrUploadMissing
	}

	stamp := models.FormatTimestamp(r.now())
	photo := models.Photo{
		Filename:   savedFilename,
		URL:        route.URLPrefix() + savedFilename,
		UploadedAt: stamp,
	}
	if route == RoutePublic {
		photo.DateUploaded = stamp
	}

	if err := r.store.Append(ctx, photo); err != nil {
		return models.Photo{}, fmt.Errorf("record upload %s: %w", savedFilename, err)
	}

	r.logger.InfoContext(ctx, "photo uploaded",
		slog.String("filename", savedFilename),
		slog.String("route", route.String()))

	return photo, nil
}
