package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/plumecms/plume/internal/ingest"
)

// ErrorResponse is the standard API error body (message only).
type ErrorResponse struct {
	Message string `json:"message"`
}

// httpErrorFromIngest maps pipeline failures to API status codes:
// unsupported input type 415, oversize original 413, undecodable or
// over-target output 422.
func httpErrorFromIngest(err error) error {
	switch {
	case errors.Is(err, ingest.ErrUnsupportedType):
		return echo.NewHTTPError(http.StatusUnsupportedMediaType, err.Error())
	case errors.Is(err, ingest.ErrOriginalTooLarge):
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, ingest.ErrDecodeFailed),
		errors.Is(err, ingest.ErrEncodeFailed),
		errors.Is(err, ingest.ErrSizeTargetUnmet):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
