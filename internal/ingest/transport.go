package ingest

import (
	"encoding/base64"
	"fmt"
	"io"
	"strings"
)

// EncodeDataURL reads the blob bytes to completion and returns the
// self-describing transportable form: data:<mime>;base64,<payload>.
// A read error surfaces as ErrTransportEncodeFailed.
func EncodeDataURL(mime string, reader io.Reader) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTransportEncodeFailed, err)
	}
	mime = NormalizeMime(mime)
	if mime == "" {
		mime = "application/octet-stream"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// DecodeBase64 decodes both raw base64 and data URL base64 content.
// The returned reader is bounded to maxBytes+1 for caller-side size validation.
func DecodeBase64(input string, maxBytes int64) (io.Reader, error) {
	value := strings.TrimSpace(input)
	if value == "" {
		return nil, fmt.Errorf("base64 payload is empty")
	}
	if strings.HasPrefix(strings.ToLower(value), "data:") {
		if idx := strings.Index(value, ","); idx >= 0 {
			value = value[idx+1:]
		}
	}
	decoder := base64.NewDecoder(base64.StdEncoding, strings.NewReader(value))
	return io.LimitReader(decoder, maxBytes+1), nil
}

// DecodeDataURL reverses EncodeDataURL, returning the MIME tag and the
// binary payload.
func DecodeDataURL(raw string) (string, []byte, error) {
	mime := MimeFromDataURL(raw)
	if mime == "" {
		return "", nil, fmt.Errorf("not a data url")
	}
	idx := strings.Index(raw, ",")
	if idx < 0 {
		return "", nil, fmt.Errorf("data url has no payload")
	}
	data, err := base64.StdEncoding.DecodeString(raw[idx+1:])
	if err != nil {
		return "", nil, fmt.Errorf("decode data url payload: %w", err)
	}
	return mime, data, nil
}
