package ingest

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// fitWidth computes the render dimensions for a surface constrained to
// maxWidth: scale = min(1, maxWidth/width), both axes rounded and floored
// to 1px. Never upscales.
func fitWidth(width, height, maxWidth int) (int, int) {
	scale := 1.0
	if width > maxWidth {
		scale = float64(maxWidth) / float64(width)
	}
	targetW := int(math.Round(float64(width) * scale))
	targetH := int(math.Round(float64(height) * scale))
	if targetW < 1 {
		targetW = 1
	}
	if targetH < 1 {
		targetH = 1
	}
	return targetW, targetH
}

// render resamples the decoded surface to (width, height). The source is
// returned unchanged when it already has the target dimensions.
func render(src image.Image, width, height int) image.Image {
	bounds := src.Bounds()
	if bounds.Dx() == width && bounds.Dy() == height {
		return src
	}
	return imaging.Resize(src, width, height, imaging.Lanczos)
}
