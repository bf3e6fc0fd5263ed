package ingest

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math/rand"
	"testing"
)

// noiseImage builds a deterministic pseudo-random surface; noise keeps the
// encoded size honest (it resists compression).
func noiseImage(w, h int) *image.RGBA {
	rng := rand.New(rand.NewSource(42))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8(rng.Intn(256)),
				G: uint8(rng.Intn(256)),
				B: uint8(rng.Intn(256)),
				A: 255,
			})
		}
	}
	return img
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, noiseImage(w, h)); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, noiseImage(w, h), &jpeg.Options{Quality: 90}); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

type encodeCall struct {
	width   int
	height  int
	quality float64
}

// stubEncoder fabricates output of a size computed from the encode
// parameters, and records every call.
type stubEncoder struct {
	calls []encodeCall
	size  func(width int, quality float64) int
}

func (s *stubEncoder) Encode(img image.Image, mime string, quality float64) ([]byte, error) {
	b := img.Bounds()
	s.calls = append(s.calls, encodeCall{width: b.Dx(), height: b.Dy(), quality: quality})
	return make([]byte, s.size(b.Dx(), quality)), nil
}

// countingDecoder wraps a strategy and counts Decode invocations.
type countingDecoder struct {
	inner DecodeStrategy
	calls *int
}

func (c countingDecoder) Name() string { return c.inner.Name() }

func (c countingDecoder) Decode(data []byte) (image.Image, error) {
	*c.calls++
	return c.inner.Decode(data)
}
