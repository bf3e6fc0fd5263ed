package settings

import (
	"context"
	"log/slog"
	"testing"

	"github.com/plumecms/plume/internal/config"
	"github.com/plumecms/plume/internal/ingest"
)

func TestGetFallsBackToDefaults(t *testing.T) {
	svc := NewService(slog.Default(), NewMemoryRepository(), config.UploadConfig{})
	got, err := svc.Get(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got.Accept != ingest.DefaultAccept {
		t.Fatalf("accept %q, want default %q", got.Accept, ingest.DefaultAccept)
	}
	if got.MaxWidth != ingest.DefaultMaxWidth {
		t.Fatalf("max width %d, want default %d", got.MaxWidth, ingest.DefaultMaxWidth)
	}
}

func TestConfigFileOverridesDefaults(t *testing.T) {
	svc := NewService(slog.Default(), NewMemoryRepository(), config.UploadConfig{
		MaxWidth:   800,
		OutputType: "image/webp",
	})
	got, err := svc.Get(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got.MaxWidth != 800 || got.OutputType != "image/webp" {
		t.Fatalf("file overrides not applied: %+v", got)
	}
	// Untouched fields keep their defaults.
	if got.Quality != ingest.DefaultQuality {
		t.Fatalf("quality %v, want default", got.Quality)
	}
}

func TestMaxProcessedSizeSynonym(t *testing.T) {
	svc := NewService(slog.Default(), NewMemoryRepository(), config.UploadConfig{
		MaxProcessedSize: 500 << 10,
	})
	got, err := svc.Get(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got.MaxOutputSize != 500<<10 {
		t.Fatalf("max output size %d, want synonym value %d", got.MaxOutputSize, 500<<10)
	}

	// The canonical name wins when both are set.
	svc = NewService(slog.Default(), NewMemoryRepository(), config.UploadConfig{
		MaxProcessedSize: 500 << 10,
		MaxOutputSize:    900 << 10,
	})
	got, err = svc.Get(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got.MaxOutputSize != 900<<10 {
		t.Fatalf("max output size %d, want canonical value %d", got.MaxOutputSize, 900<<10)
	}
}

func TestUpsertMergesAndValidates(t *testing.T) {
	svc := NewService(slog.Default(), NewMemoryRepository(), config.UploadConfig{})
	ctx := context.Background()

	quality := 0.7
	saved, err := svc.Upsert(ctx, UpsertRequest{Quality: &quality})
	if err != nil {
		t.Fatal(err)
	}
	if saved.Quality != 0.7 {
		t.Fatalf("quality %v, want 0.7", saved.Quality)
	}

	// The stored row now wins over defaults.
	got, err := svc.Get(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got.Quality != 0.7 {
		t.Fatalf("stored quality lost: %v", got.Quality)
	}

	bad := 3.0
	if _, err := svc.Upsert(ctx, UpsertRequest{Quality: &bad}); err == nil {
		t.Fatal("expected validation failure for quality 3.0")
	}
}

func TestIngestConfigClampsFloors(t *testing.T) {
	s := Defaults()
	s.Quality = 0.4 // below the default quality floor
	s.MaxWidth = 100

	cfg := s.IngestConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("resolved config must validate, got %v", err)
	}
	if cfg.QualityFloor > cfg.Quality {
		t.Fatal("quality floor not clamped")
	}
	if cfg.WidthFloor > cfg.MaxWidth {
		t.Fatal("width floor not clamped")
	}
}
