package ingest

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"math"

	"github.com/chai2010/webp"
)

// Output MIME types the encoder supports.
const (
	MimeJPEG = "image/jpeg"
	MimePNG  = "image/png"
	MimeWebP = "image/webp"
)

// Encoder renders a decoded surface into an encoded blob at the given
// quality. Implementations must treat quality as a no-op for lossless
// formats.
type Encoder interface {
	Encode(img image.Image, mime string, quality float64) ([]byte, error)
}

// isLossy reports whether quality affects the encoded output for mime.
func isLossy(mime string) bool {
	return mime != MimePNG
}

// codecEncoder encodes via the stdlib JPEG/PNG codecs and chai2010/webp.
type codecEncoder struct{}

func (codecEncoder) Encode(img image.Image, mime string, quality float64) ([]byte, error) {
	bounds := img.Bounds()
	if bounds.Dx() < 1 || bounds.Dy() < 1 {
		return nil, fmt.Errorf("%w: zero-area target %dx%d", ErrEncodeFailed, bounds.Dx(), bounds.Dy())
	}

	var buf bytes.Buffer
	switch NormalizeMime(mime) {
	case MimeJPEG:
		opts := &jpeg.Options{Quality: qualityScale(quality)}
		if err := jpeg.Encode(&buf, img, opts); err != nil {
			return nil, fmt.Errorf("%w: jpeg: %v", ErrEncodeFailed, err)
		}
	case MimePNG:
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("%w: png: %v", ErrEncodeFailed, err)
		}
	case MimeWebP:
		opts := &webp.Options{Quality: float32(qualityScale(quality))}
		if err := webp.Encode(&buf, img, opts); err != nil {
			return nil, fmt.Errorf("%w: webp: %v", ErrEncodeFailed, err)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported output type %q", ErrEncodeFailed, mime)
	}
	return buf.Bytes(), nil
}

// qualityScale maps quality in (0,1] to the 1-100 codec scale.
func qualityScale(quality float64) int {
	q := int(math.Round(quality * 100))
	if q < 1 {
		q = 1
	}
	if q > 100 {
		q = 100
	}
	return q
}
