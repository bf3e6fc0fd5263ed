// Package settings manages the site-wide upload settings that feed the
// image ingestion pipeline.
package settings

import (
	"errors"
	"time"

	"github.com/plumecms/plume/internal/ingest"
)

// Settings are the tunable upload options exposed to administrators.
type Settings struct {
	Accept            string    `json:"accept"`
	MaxSize           int64     `json:"max_size"`
	MaxOutputSize     int64     `json:"max_output_size"`
	MaxWidth          int       `json:"max_width"`
	OutputType        string    `json:"output_type"`
	Quality           float64   `json:"quality"`
	OnSizeTargetUnmet string    `json:"on_size_target_unmet"`
	UpdatedAt         time.Time `json:"updated_at,omitzero"`
}

// UpsertRequest is a partial update; nil fields keep their current value.
type UpsertRequest struct {
	Accept            *string  `json:"accept"`
	MaxSize           *int64   `json:"max_size"`
	MaxOutputSize     *int64   `json:"max_output_size"`
	MaxWidth          *int     `json:"max_width"`
	OutputType        *string  `json:"output_type"`
	Quality           *float64 `json:"quality"`
	OnSizeTargetUnmet *string  `json:"on_size_target_unmet"`
}

// ErrNotFound is returned by repositories when no settings row exists yet.
var ErrNotFound = errors.New("settings not found")

// Defaults returns settings mirroring the pipeline's built-in defaults.
func Defaults() Settings {
	cfg := ingest.DefaultConfig()
	return Settings{
		Accept:            cfg.Accept,
		MaxSize:           cfg.MaxSize,
		MaxOutputSize:     cfg.MaxOutputSize,
		MaxWidth:          cfg.MaxWidth,
		OutputType:        cfg.OutputType,
		Quality:           cfg.Quality,
		OnSizeTargetUnmet: string(cfg.OnSizeTargetUnmet),
	}
}

// IngestConfig resolves the settings into a pipeline configuration, with
// the loop floors coming from the pipeline defaults.
func (s Settings) IngestConfig() ingest.Config {
	cfg := ingest.DefaultConfig()
	if s.Accept != "" {
		cfg.Accept = s.Accept
	}
	if s.MaxSize > 0 {
		cfg.MaxSize = s.MaxSize
	}
	if s.MaxOutputSize > 0 {
		cfg.MaxOutputSize = s.MaxOutputSize
	}
	if s.MaxWidth > 0 {
		cfg.MaxWidth = s.MaxWidth
	}
	if s.OutputType != "" {
		cfg.OutputType = s.OutputType
	}
	if s.Quality > 0 {
		cfg.Quality = s.Quality
	}
	if s.OnSizeTargetUnmet != "" {
		cfg.OnSizeTargetUnmet = ingest.UnmetPolicy(s.OnSizeTargetUnmet)
	}
	if cfg.QualityFloor > cfg.Quality {
		cfg.QualityFloor = cfg.Quality
	}
	if cfg.WidthFloor > cfg.MaxWidth {
		cfg.WidthFloor = cfg.MaxWidth
	}
	return cfg
}
