// routes.go - Route registration helpers
// This file provides a clean way to register all API routes
package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/photo-diary/backend/internal/auth"
	"github.com/photo-diary/backend/internal/selection"
	"github.com/photo-diary/backend/internal/storage"
	"github.com/photo-diary/backend/internal/upload"
)

// uploadBodyOverhead leaves room for multipart framing on top of the file limit.
const uploadBodyOverhead = 1 << 20

// uploadBodyLimit is the largest request body accepted on the upload routes.
func uploadBodyLimit(maxUploadSize int64) int64 {
	return maxUploadSize + uploadBodyOverhead
}

// Dependencies holds all handler dependencies
type Dependencies struct {
	Records storage.RecordStore
	Images  ImageStore
	Guard   *auth.Guard
	Rand    selection.Rand
	Logger  *slog.Logger
	Version string

	// UploadEnabled registers the upload routes.
	UploadEnabled bool
	MaxUploadSize int64
	// PublicUploadRequiresAuth guards POST /upload like the admin route.
	PublicUploadRequiresAuth bool
}

// Handlers holds all handler instances
type Handlers struct {
	Health HealthHandler
	Photos PhotoHandler
	Upload UploadHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	reconciler := upload.NewReconciler(deps.Records, deps.Logger)

	return &Handlers{
		Health: NewHealthHandler(deps.Version),
		Photos: NewPhotoHandler(deps.Records, deps.Images, deps.Rand),
		Upload: NewUploadHandler(deps.Images, reconciler, deps.MaxUploadSize, deps.Logger),
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers, deps *Dependencies) {
	apiGroup := e.Group("/api")

	// Health check
	apiGroup.GET("/health", handlers.Health.HandleHealth)

	// Photo records
	apiGroup.GET("/photos", handlers.Photos.HandleListPhotos)
	apiGroup.GET("/photos/msgpack", handlers.Photos.HandleListPhotosMsgpack)
	apiGroup.GET("/photos/random", handlers.Photos.HandleRandomPhoto)
	e.GET("/random-photo", handlers.Photos.HandleRandomPhotoFiltered)

	if !deps.UploadEnabled {
		return
	}

	// plain byte count; gommon's K/KB units are decimal or binary depending on version
	bodyLimit := middleware.BodyLimit(fmt.Sprintf("%dB", uploadBodyLimit(deps.MaxUploadSize)))
	admin := RequireAdmin(deps.Guard)

	apiGroup.POST("/photos/upload", handlers.Upload.HandleAdminUpload, admin, bodyLimit)

	if deps.PublicUploadRequiresAuth {
		e.POST("/upload", handlers.Upload.HandlePublicUpload, admin, bodyLimit)
	} else {
		e.POST("/upload", handlers.Upload.HandlePublicUpload, bodyLimit)
	}
}

// MiddlewareOptions configures SetupMiddleware.
type MiddlewareOptions struct {
	Logger         *slog.Logger
	RequestLogging bool
	EnableCORS     bool
	AllowOrigins   []string
}

// SetupMiddleware configures the error handler and common middleware
func SetupMiddleware(e *echo.Echo, opts MiddlewareOptions) {
	e.HTTPErrorHandler = ErrorHandler(opts.Logger)

	if opts.RequestLogging && opts.Logger != nil {
		e.Use(RequestLogger(opts.Logger))
	}

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10,
	}))

	if opts.EnableCORS {
		origins := opts.AllowOrigins
		if len(origins) == 0 {
			origins = []string{"*"}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: origins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		}))
	}
}
