package ingest

import (
	"bytes"
	"fmt"
	"image"
	"strings"

	// Register the standard decoders with image.Decode.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	chaiwebp "github.com/chai2010/webp"
	_ "golang.org/x/image/webp"
)

// DecodeStrategy is one decode path. Strategies are tried in order; the
// pipeline fails with ErrDecodeFailed only after all are exhausted.
type DecodeStrategy interface {
	Name() string
	Decode(data []byte) (image.Image, error)
}

// registryDecode decodes through the image.Decode format registry
// (JPEG, PNG, GIF, and WebP via x/image).
type registryDecode struct{}

func (registryDecode) Name() string { return "registry" }

func (registryDecode) Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	return img, err
}

// webpDecode is the secondary path for WebP payloads the registry decoder
// rejects (e.g. lossless bitstream variants).
type webpDecode struct{}

func (webpDecode) Name() string { return "webp" }

func (webpDecode) Decode(data []byte) (image.Image, error) {
	return chaiwebp.Decode(bytes.NewReader(data))
}

func defaultDecoders() []DecodeStrategy {
	return []DecodeStrategy{registryDecode{}, webpDecode{}}
}

// decodeSurface runs the decode strategies in order and returns the first
// decoded surface. Surfaces with a zero dimension are rejected.
func decodeSurface(decoders []DecodeStrategy, data []byte) (image.Image, error) {
	var tried []string
	for _, d := range decoders {
		img, err := d.Decode(data)
		if err != nil {
			tried = append(tried, fmt.Sprintf("%s: %v", d.Name(), err))
			continue
		}
		bounds := img.Bounds()
		if bounds.Dx() < 1 || bounds.Dy() < 1 {
			tried = append(tried, fmt.Sprintf("%s: empty surface", d.Name()))
			continue
		}
		return img, nil
	}
	if len(tried) == 0 {
		return nil, fmt.Errorf("%w: no decoders configured", ErrDecodeFailed)
	}
	return nil, fmt.Errorf("%w (%s)", ErrDecodeFailed, strings.Join(tried, "; "))
}
