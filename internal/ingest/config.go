package ingest

import (
	"fmt"
	"strings"
)

// UnmetPolicy decides what happens when the shrink loop exhausts its floors
// without meeting the output size target.
type UnmetPolicy string

const (
	// PolicyAcceptBestEffort returns the smallest blob produced, flagged
	// as best-effort.
	PolicyAcceptBestEffort UnmetPolicy = "accept_best_effort"
	// PolicyFail fails the whole operation with ErrSizeTargetUnmet.
	PolicyFail UnmetPolicy = "fail"
)

// Built-in defaults applied by DefaultConfig.
const (
	DefaultAccept            = "image/*"
	DefaultMaxSize           = 30 << 20
	DefaultMaxOutputSize     = 1536 << 10
	DefaultMaxWidth          = 1400
	DefaultOutputType        = "image/jpeg"
	DefaultQuality           = 0.82
	DefaultQualityFloor      = 0.5
	DefaultQualityStep       = 0.1
	DefaultWidthFloor        = 320
	DefaultWidthShrinkFactor = 0.85
)

// Config is the per-invocation pipeline configuration. It is resolved once
// before Run and never mutated by the pipeline.
type Config struct {
	// Accept is the allow-list: comma-separated wildcard categories
	// ("image/*"), exact MIME strings, or dot-prefixed extensions (".jpg").
	Accept string
	// MaxSize is the byte ceiling for the original file, checked before
	// any decode work.
	MaxSize int64
	// MaxOutputSize is the byte target driving the adaptive shrink loop.
	MaxOutputSize int64
	// MaxWidth is the initial width ceiling; sources above it are scaled
	// down, sources below it are never upscaled.
	MaxWidth int
	// OutputType is the encode target MIME (image/jpeg, image/png, image/webp).
	OutputType string
	// Quality is the initial encode quality in (0,1]. Ignored for PNG.
	Quality float64
	// QualityFloor is the lowest quality the shrink loop may reach.
	QualityFloor float64
	// QualityStep is subtracted from quality on each lossy shrink iteration.
	QualityStep float64
	// WidthFloor is the lowest width the shrink loop may reach.
	WidthFloor int
	// WidthShrinkFactor multiplies the width once quality is exhausted.
	WidthShrinkFactor float64
	// OnSizeTargetUnmet selects the floor-exhaustion policy.
	OnSizeTargetUnmet UnmetPolicy
	// SniffContent additionally verifies the declared MIME against the
	// first bytes of the file. Off by default: the type filter trusts the
	// declared MIME, as the accept attribute of a file input does.
	SniffContent bool
}

// DefaultConfig returns the built-in pipeline defaults.
func DefaultConfig() Config {
	return Config{
		Accept:            DefaultAccept,
		MaxSize:           DefaultMaxSize,
		MaxOutputSize:     DefaultMaxOutputSize,
		MaxWidth:          DefaultMaxWidth,
		OutputType:        DefaultOutputType,
		Quality:           DefaultQuality,
		QualityFloor:      DefaultQualityFloor,
		QualityStep:       DefaultQualityStep,
		WidthFloor:        DefaultWidthFloor,
		WidthShrinkFactor: DefaultWidthShrinkFactor,
		OnSizeTargetUnmet: PolicyAcceptBestEffort,
	}
}

// Validate checks the configuration invariants.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Accept) == "" {
		return fmt.Errorf("accept list is empty")
	}
	if c.MaxSize <= 0 {
		return fmt.Errorf("max size must be positive")
	}
	if c.MaxOutputSize <= 0 {
		return fmt.Errorf("max output size must be positive")
	}
	if c.MaxWidth < 1 {
		return fmt.Errorf("max width must be at least 1")
	}
	if c.Quality <= 0 || c.Quality > 1 {
		return fmt.Errorf("quality %v out of range (0,1]", c.Quality)
	}
	if c.QualityFloor <= 0 || c.QualityFloor > c.Quality {
		return fmt.Errorf("quality floor %v must be in (0, quality]", c.QualityFloor)
	}
	if c.QualityStep <= 0 {
		return fmt.Errorf("quality step must be positive")
	}
	if c.WidthFloor < 1 || c.WidthFloor > c.MaxWidth {
		return fmt.Errorf("width floor %d must be in [1, max width]", c.WidthFloor)
	}
	if c.WidthShrinkFactor <= 0 || c.WidthShrinkFactor >= 1 {
		return fmt.Errorf("width shrink factor %v must be in (0,1)", c.WidthShrinkFactor)
	}
	switch c.OnSizeTargetUnmet {
	case PolicyAcceptBestEffort, PolicyFail:
	default:
		return fmt.Errorf("unknown size target policy %q", c.OnSizeTargetUnmet)
	}
	return nil
}
