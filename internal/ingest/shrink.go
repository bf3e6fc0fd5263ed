package ingest

import (
	"context"
	"image"
	"log/slog"
	"math"
)

// shrink drives repeated render+encode passes until the blob fits
// cfg.MaxOutputSize or both floors are exhausted. Every pass re-renders
// from the same decoded surface; the source is never re-decoded.
//
// Reduction order: quality steps down to the floor first (lossy output
// only), then width multiplies by the shrink factor down to its floor.
// Each branch strictly decreases one parameter, so the loop terminates.
//
// Returns the accepted blob, the number of shrink iterations, and whether
// the floors ran out before the target was met (the caller applies the
// configured policy in that case).
func (p *Pipeline) shrink(ctx context.Context, surface image.Image) (EncodedBlob, int, bool, error) {
	bounds := surface.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()

	width, height := fitWidth(srcW, srcH, p.cfg.MaxWidth)
	quality := p.cfg.Quality
	lossy := isLossy(p.cfg.OutputType)

	encodeAt := func(w, h int, q float64) (EncodedBlob, error) {
		data, err := p.encoder.Encode(render(surface, w, h), p.cfg.OutputType, q)
		if err != nil {
			return EncodedBlob{}, err
		}
		return EncodedBlob{Data: data, Mime: NormalizeMime(p.cfg.OutputType), Width: w, Height: h, Quality: q}, nil
	}

	blob, err := encodeAt(width, height, quality)
	if err != nil {
		return EncodedBlob{}, 0, false, err
	}

	best := blob
	iterations := 0
	exhausted := false

	for blob.Size() > p.cfg.MaxOutputSize {
		if err := ctx.Err(); err != nil {
			return EncodedBlob{}, iterations, false, err
		}

		switch {
		case lossy && quality > p.cfg.QualityFloor:
			quality = math.Max(quality-p.cfg.QualityStep, p.cfg.QualityFloor)
		case width > p.cfg.WidthFloor:
			next := int(math.Round(float64(width) * p.cfg.WidthShrinkFactor))
			// Rounding can return the same width at small sizes (3*0.85
			// rounds back to 3); force strict progress toward the floor.
			if next >= width {
				next = width - 1
			}
			if next < p.cfg.WidthFloor {
				next = p.cfg.WidthFloor
			}
			width = next
			height = scaleHeight(srcW, srcH, width)
		default:
			exhausted = true
		}
		if exhausted {
			break
		}

		blob, err = encodeAt(width, height, quality)
		if err != nil {
			return EncodedBlob{}, iterations, false, err
		}
		iterations++
		if blob.Size() < best.Size() {
			best = blob
		}

		p.logger.Debug("shrink iteration",
			slog.Int("width", width),
			slog.Float64("quality", quality),
			slog.Int64("bytes", blob.Size()),
		)
	}

	if exhausted {
		return best, iterations, true, nil
	}
	return blob, iterations, false, nil
}

// scaleHeight derives the height for a target width from the source aspect
// ratio, floored to 1px.
func scaleHeight(srcW, srcH, width int) int {
	h := int(math.Round(float64(srcH) * float64(width) / float64(srcW)))
	if h < 1 {
		h = 1
	}
	return h
}
