package ingest

import (
	"net/http"
	"strings"
)

// NormalizeMime normalizes MIME to lowercase token form, dropping any
// parameters ("IMAGE/JPEG; charset=utf-8" -> "image/jpeg").
func NormalizeMime(raw string) string {
	mime := strings.ToLower(strings.TrimSpace(raw))
	if mime == "" {
		return ""
	}
	if idx := strings.Index(mime, ";"); idx >= 0 {
		mime = strings.TrimSpace(mime[:idx])
	}
	return mime
}

// MimeFromDataURL extracts the MIME tag from a data URL, or "" when the
// value is not a data URL.
func MimeFromDataURL(raw string) string {
	value := strings.TrimSpace(raw)
	lower := strings.ToLower(value)
	if !strings.HasPrefix(lower, "data:") {
		return ""
	}
	rest := value[len("data:"):]
	if idx := strings.Index(rest, ";"); idx >= 0 {
		return NormalizeMime(rest[:idx])
	}
	if idx := strings.Index(rest, ","); idx >= 0 {
		return NormalizeMime(rest[:idx])
	}
	return ""
}

// SniffMime detects the MIME type from the first bytes of data.
func SniffMime(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	header := data
	if len(header) > 512 {
		header = header[:512]
	}
	return NormalizeMime(http.DetectContentType(header))
}
