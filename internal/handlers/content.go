package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/plumecms/plume/internal/auth"
	"github.com/plumecms/plume/internal/content"
)

// ContentHandler serves entry CRUD and publication routes.
type ContentHandler struct {
	service *content.Service
	logger  *slog.Logger
}

// NewContentHandler creates a content handler.
func NewContentHandler(log *slog.Logger, service *content.Service) *ContentHandler {
	return &ContentHandler{
		service: service,
		logger:  log.With(slog.String("handler", "content")),
	}
}

// Register mounts the content routes on the Echo instance.
func (h *ContentHandler) Register(e *echo.Echo) {
	group := e.Group("/content")
	group.POST("", h.Create)
	group.GET("", h.List)
	group.GET("/:id", h.Get)
	group.PATCH("/:id", h.Update)
	group.DELETE("/:id", h.Delete)
	group.POST("/:id/publish", h.Publish)
	group.POST("/:id/unpublish", h.Unpublish)
}

// Create adds a new draft entry authored by the current account.
func (h *ContentHandler) Create(c echo.Context) error {
	var req content.CreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if accountID, err := auth.AccountIDFromContext(c); err == nil {
		req.AuthorID = accountID
	}
	entry, err := h.service.Create(c.Request().Context(), req)
	if err != nil {
		return contentError(err)
	}
	return c.JSON(http.StatusCreated, entry)
}

// List returns entries, optionally filtered by status and a search term.
func (h *ContentHandler) List(c echo.Context) error {
	filter := content.ListFilter{
		Status: content.Status(strings.TrimSpace(c.QueryParam("status"))),
		Query:  strings.TrimSpace(c.QueryParam("q")),
	}
	entries, err := h.service.List(c.Request().Context(), filter)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, entries)
}

// Get returns a single entry by ID.
func (h *ContentHandler) Get(c echo.Context) error {
	entry, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return contentError(err)
	}
	return c.JSON(http.StatusOK, entry)
}

// Update applies a partial update to an entry.
func (h *ContentHandler) Update(c echo.Context) error {
	var req content.UpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	entry, err := h.service.Update(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return contentError(err)
	}
	return c.JSON(http.StatusOK, entry)
}

// Delete removes an entry.
func (h *ContentHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return contentError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Publish marks an entry published.
func (h *ContentHandler) Publish(c echo.Context) error {
	entry, err := h.service.Publish(c.Request().Context(), c.Param("id"))
	if err != nil {
		return contentError(err)
	}
	return c.JSON(http.StatusOK, entry)
}

// Unpublish returns an entry to draft.
func (h *ContentHandler) Unpublish(c echo.Context) error {
	entry, err := h.service.Unpublish(c.Request().Context(), c.Param("id"))
	if err != nil {
		return contentError(err)
	}
	return c.JSON(http.StatusOK, entry)
}

func contentError(err error) error {
	switch {
	case errors.Is(err, content.ErrEntryNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, content.ErrSlugTaken):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			return err
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
}
