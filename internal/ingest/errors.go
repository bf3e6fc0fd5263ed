package ingest

import (
	"errors"
	"math"
	"strconv"
)

// Errors returned by pipeline stages. Each failed Run wraps exactly one of
// these; callers branch with errors.Is and surface the full message to the
// user.
var (
	ErrUnsupportedType       = errors.New("unsupported file type")
	ErrOriginalTooLarge      = errors.New("file exceeds the size limit")
	ErrDecodeFailed          = errors.New("image could not be decoded")
	ErrEncodeFailed          = errors.New("image could not be encoded")
	ErrSizeTargetUnmet       = errors.New("image could not be reduced to the target size")
	ErrTransportEncodeFailed = errors.New("transport encoding failed")
)

// FormatMB renders a byte count as megabytes with one decimal place,
// e.g. 1572864 -> "1.5".
func FormatMB(bytes int64) string {
	mb := math.Round(float64(bytes)/(1<<20)*10) / 10
	return strconv.FormatFloat(mb, 'f', 1, 64)
}
