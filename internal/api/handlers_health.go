// handlers_health.go - Liveness endpoint
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HealthHandlerImpl implements the HealthHandler interface
type HealthHandlerImpl struct {
	version string
}

// NewHealthHandler creates a health handler reporting version
func NewHealthHandler(version string) HealthHandler {
	return &HealthHandlerImpl{version: version}
}

// HandleHealth reports that the process is serving requests. It does not
// touch the record store or the upload directory.
func (h *HealthHandlerImpl) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{OK: true, Version: h.version})
}

type healthResponse struct {
	OK      bool   `json:"ok"`
	Version string `json:"version,omitempty"`
}
