package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/plumecms/plume/internal/ingest"
	"github.com/plumecms/plume/internal/media"
	"github.com/plumecms/plume/internal/settings"
)

// MediaHandler serves media ingestion and retrieval. Uploads accept
// either a multipart file or a JSON body carrying a data URL.
type MediaHandler struct {
	service  *media.Service
	settings *settings.Service
	logger   *slog.Logger
}

// NewMediaHandler creates a media handler.
func NewMediaHandler(log *slog.Logger, service *media.Service, settingsService *settings.Service) *MediaHandler {
	return &MediaHandler{
		service:  service,
		settings: settingsService,
		logger:   log.With(slog.String("handler", "media")),
	}
}

// Register mounts the media routes on the Echo instance.
func (h *MediaHandler) Register(e *echo.Echo) {
	group := e.Group("/media")
	group.POST("", h.Upload)
	group.GET("", h.List)
	group.GET("/:id", h.Get)
	group.GET("/:id/file", h.File)
	group.DELETE("/:id", h.Delete)
}

// uploadJSON is the JSON upload body; Data is a data URL or bare base64.
type uploadJSON struct {
	FileName string `json:"file_name"`
	Mime     string `json:"mime"`
	Data     string `json:"data"`
}

// Upload runs the ingestion pipeline on the uploaded file using the
// current site settings and stores the result.
func (h *MediaHandler) Upload(c echo.Context) error {
	cfg, err := h.settings.PipelineConfig(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	input, err := h.readUpload(c, cfg.MaxSize)
	if err != nil {
		return err
	}

	out, err := h.service.Ingest(c.Request().Context(), cfg, input)
	if err != nil {
		return httpErrorFromIngest(err)
	}
	return c.JSON(http.StatusCreated, out)
}

// readUpload extracts the file from either a multipart form or a JSON
// body.
func (h *MediaHandler) readUpload(c echo.Context, maxSize int64) (media.IngestInput, error) {
	if file, err := c.FormFile("file"); err == nil {
		src, err := file.Open()
		if err != nil {
			return media.IngestInput{}, echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		defer src.Close()
		data, err := io.ReadAll(io.LimitReader(src, maxSize+1))
		if err != nil {
			return media.IngestInput{}, echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return media.IngestInput{
			FileName: file.Filename,
			Mime:     file.Header.Get(echo.HeaderContentType),
			Data:     data,
		}, nil
	}

	var req uploadJSON
	if err := c.Bind(&req); err != nil {
		return media.IngestInput{}, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Data == "" {
		return media.IngestInput{}, echo.NewHTTPError(http.StatusBadRequest, "file or data is required")
	}

	mime := req.Mime
	var data []byte
	if m, b, err := ingest.DecodeDataURL(req.Data); err == nil {
		if mime == "" {
			mime = m
		}
		data = b
	} else {
		reader, err := ingest.DecodeBase64(req.Data, maxSize)
		if err != nil {
			return media.IngestInput{}, echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		data, err = io.ReadAll(reader)
		if err != nil {
			return media.IngestInput{}, echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return media.IngestInput{FileName: req.FileName, Mime: mime, Data: data}, nil
}

// List returns all stored assets.
func (h *MediaHandler) List(c echo.Context) error {
	assets, err := h.service.List(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, assets)
}

// Get returns asset metadata by ID.
func (h *MediaHandler) Get(c echo.Context) error {
	asset, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return mediaError(err)
	}
	return c.JSON(http.StatusOK, asset)
}

// File streams the stored bytes with the asset's MIME type.
func (h *MediaHandler) File(c echo.Context) error {
	reader, asset, err := h.service.Open(c.Request().Context(), c.Param("id"))
	if err != nil {
		return mediaError(err)
	}
	defer reader.Close()
	return c.Stream(http.StatusOK, asset.Mime, reader)
}

// Delete removes an asset and its stored bytes.
func (h *MediaHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return mediaError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func mediaError(err error) error {
	if errors.Is(err, media.ErrAssetNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
