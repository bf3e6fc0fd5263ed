package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/plumecms/plume/internal/config"
	"github.com/plumecms/plume/internal/ingest"
)

// Service resolves upload settings with three layers of precedence:
// stored row, then config file overrides, then pipeline defaults.
type Service struct {
	repo     Repository
	fromFile config.UploadConfig
	logger   *slog.Logger
}

// NewService creates a settings service.
func NewService(log *slog.Logger, repo Repository, fromFile config.UploadConfig) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		repo:     repo,
		fromFile: fromFile,
		logger:   log.With(slog.String("service", "settings")),
	}
}

// Get returns the effective settings.
func (s *Service) Get(ctx context.Context) (Settings, error) {
	if s.repo == nil {
		return Settings{}, fmt.Errorf("settings repository not configured")
	}
	stored, err := s.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return s.base(), nil
		}
		return Settings{}, err
	}
	return stored, nil
}

// Upsert applies a partial update on top of the effective settings. The
// merged result must resolve to a valid pipeline configuration.
func (s *Service) Upsert(ctx context.Context, req UpsertRequest) (Settings, error) {
	current, err := s.Get(ctx)
	if err != nil {
		return Settings{}, err
	}

	if req.Accept != nil {
		current.Accept = *req.Accept
	}
	if req.MaxSize != nil {
		current.MaxSize = *req.MaxSize
	}
	if req.MaxOutputSize != nil {
		current.MaxOutputSize = *req.MaxOutputSize
	}
	if req.MaxWidth != nil {
		current.MaxWidth = *req.MaxWidth
	}
	if req.OutputType != nil {
		current.OutputType = *req.OutputType
	}
	if req.Quality != nil {
		current.Quality = *req.Quality
	}
	if req.OnSizeTargetUnmet != nil {
		current.OnSizeTargetUnmet = *req.OnSizeTargetUnmet
	}

	if err := current.IngestConfig().Validate(); err != nil {
		return Settings{}, fmt.Errorf("invalid upload settings: %w", err)
	}

	saved, err := s.repo.Upsert(ctx, current)
	if err != nil {
		return Settings{}, err
	}
	s.logger.Info("upload settings updated",
		slog.String("output_type", saved.OutputType),
		slog.Int64("max_output_size", saved.MaxOutputSize),
	)
	return saved, nil
}

// PipelineConfig resolves the effective settings into a pipeline
// configuration. Content sniffing is a config-file-only toggle, not a
// site setting.
func (s *Service) PipelineConfig(ctx context.Context) (ingest.Config, error) {
	current, err := s.Get(ctx)
	if err != nil {
		return ingest.Config{}, err
	}
	cfg := current.IngestConfig()
	cfg.SniffContent = s.fromFile.SniffContent
	return cfg, nil
}

// base merges config-file overrides over the pipeline defaults.
func (s *Service) base() Settings {
	out := Defaults()
	if s.fromFile.Accept != "" {
		out.Accept = s.fromFile.Accept
	}
	if s.fromFile.MaxSize > 0 {
		out.MaxSize = s.fromFile.MaxSize
	}
	if s.fromFile.MaxProcessedSize > 0 {
		out.MaxOutputSize = s.fromFile.MaxProcessedSize
	}
	if s.fromFile.MaxOutputSize > 0 {
		out.MaxOutputSize = s.fromFile.MaxOutputSize
	}
	if s.fromFile.MaxWidth > 0 {
		out.MaxWidth = s.fromFile.MaxWidth
	}
	if s.fromFile.OutputType != "" {
		out.OutputType = s.fromFile.OutputType
	}
	if s.fromFile.Quality > 0 {
		out.Quality = s.fromFile.Quality
	}
	if s.fromFile.OnSizeTargetUnmet != "" {
		out.OnSizeTargetUnmet = s.fromFile.OnSizeTargetUnmet
	}
	return out
}
