package media

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/plumecms/plume/internal/ingest"
	"github.com/plumecms/plume/internal/storage"
)

// Service runs the ingestion pipeline and persists the accepted output:
// bytes go to the storage provider under a content-addressed key, metadata
// goes to the repository.
type Service struct {
	provider storage.Provider
	repo     Repository
	logger   *slog.Logger
}

// NewService creates a media service with the given storage provider and
// metadata repository.
func NewService(log *slog.Logger, provider storage.Provider, repo Repository) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		provider: provider,
		repo:     repo,
		logger:   log.With(slog.String("service", "media")),
	}
}

// Ingest pushes input through the pipeline configured by cfg and persists
// the result. Identical encoded output deduplicates by content hash: the
// existing asset is returned and nothing is re-stored.
func (s *Service) Ingest(ctx context.Context, cfg ingest.Config, input IngestInput) (IngestOutput, error) {
	if s.provider == nil || s.repo == nil {
		return IngestOutput{}, fmt.Errorf("media service not configured")
	}
	if len(input.Data) == 0 {
		return IngestOutput{}, fmt.Errorf("input data is empty")
	}

	pipeline, err := ingest.New(s.logger, cfg)
	if err != nil {
		return IngestOutput{}, err
	}
	result, err := pipeline.Run(ctx, ingest.SourceFile{
		Name: input.FileName,
		Mime: input.Mime,
		Data: input.Data,
	})
	if err != nil {
		return IngestOutput{}, err
	}

	sum := sha256.Sum256(result.Blob.Data)
	contentHash := hex.EncodeToString(sum[:])

	existing, err := s.repo.GetByHash(ctx, contentHash)
	if err == nil {
		s.logger.Debug("asset deduplicated", slog.String("hash", contentHash))
		return IngestOutput{Asset: existing, DataURL: result.DataURL}, nil
	}
	if !errors.Is(err, ErrAssetNotFound) {
		return IngestOutput{}, fmt.Errorf("dedupe lookup: %w", err)
	}

	key := storageKey(contentHash, result.Blob.Mime)
	if err := s.provider.Put(ctx, key, bytes.NewReader(result.Blob.Data)); err != nil {
		return IngestOutput{}, fmt.Errorf("store asset: %w", err)
	}

	asset, err := s.repo.Save(ctx, Asset{
		ContentHash: contentHash,
		FileName:    input.FileName,
		Mime:        result.Blob.Mime,
		Width:       result.Blob.Width,
		Height:      result.Blob.Height,
		SizeBytes:   result.Blob.Size(),
		Quality:     result.Blob.Quality,
		Iterations:  result.Iterations,
		BestEffort:  result.BestEffort,
		StorageKey:  key,
	})
	if err != nil {
		// Roll back the stored object so a failed save leaves nothing behind.
		if delErr := s.provider.Delete(ctx, key); delErr != nil {
			s.logger.Warn("orphaned object after failed save",
				slog.String("key", key), slog.Any("error", delErr))
		}
		return IngestOutput{}, fmt.Errorf("save asset: %w", err)
	}

	s.logger.Info("asset ingested",
		slog.String("id", asset.ID),
		slog.String("mime", asset.Mime),
		slog.Int64("bytes", asset.SizeBytes),
		slog.Bool("best_effort", asset.BestEffort),
	)
	return IngestOutput{Asset: asset, DataURL: result.DataURL}, nil
}

// Get returns asset metadata by id.
func (s *Service) Get(ctx context.Context, id string) (Asset, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns all assets, newest first.
func (s *Service) List(ctx context.Context) ([]Asset, error) {
	return s.repo.List(ctx)
}

// Open returns a reader over the stored asset bytes.
func (s *Service) Open(ctx context.Context, id string) (io.ReadCloser, Asset, error) {
	asset, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, Asset{}, err
	}
	reader, err := s.provider.Open(ctx, asset.StorageKey)
	if err != nil {
		return nil, Asset{}, fmt.Errorf("open asset: %w", err)
	}
	return reader, asset, nil
}

// Delete removes the asset metadata and its stored bytes.
func (s *Service) Delete(ctx context.Context, id string) error {
	asset, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.provider.Delete(ctx, asset.StorageKey); err != nil {
		s.logger.Warn("delete stored object", slog.String("key", asset.StorageKey), slog.Any("error", err))
	}
	return nil
}

// storageKey lays assets out as media/<hash prefix>/<hash>.<ext>.
func storageKey(hash, mime string) string {
	return "media/" + hash[:2] + "/" + hash + extensionFor(mime)
}

func extensionFor(mime string) string {
	switch strings.ToLower(mime) {
	case ingest.MimeJPEG:
		return ".jpg"
	case ingest.MimePNG:
		return ".png"
	case ingest.MimeWebP:
		return ".webp"
	default:
		return ".bin"
	}
}
