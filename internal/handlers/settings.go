package handlers

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/plumecms/plume/internal/settings"
)

// SettingsHandler serves the site-wide upload settings.
type SettingsHandler struct {
	service *settings.Service
	logger  *slog.Logger
}

// NewSettingsHandler creates a settings handler.
func NewSettingsHandler(log *slog.Logger, service *settings.Service) *SettingsHandler {
	return &SettingsHandler{
		service: service,
		logger:  log.With(slog.String("handler", "settings")),
	}
}

// Register mounts the settings routes on the Echo instance.
func (h *SettingsHandler) Register(e *echo.Echo) {
	group := e.Group("/settings/upload")
	group.GET("", h.Get)
	group.PUT("", h.Upsert)
}

// Get returns the effective upload settings.
func (h *SettingsHandler) Get(c echo.Context) error {
	resp, err := h.service.Get(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, resp)
}

// Upsert applies a partial settings update; the merged result must be a
// valid pipeline configuration.
func (h *SettingsHandler) Upsert(c echo.Context) error {
	var req settings.UpsertRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	resp, err := h.service.Upsert(c.Request().Context(), req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, resp)
}
