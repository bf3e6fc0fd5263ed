// Package media provides content-addressed persistence for ingested images.
package media

import (
	"errors"
	"time"
)

// Asset is the domain representation of a persisted media object.
// ContentHash is the content-addressed identifier (SHA-256 hex) of the
// encoded output, so re-uploading the same image deduplicates.
type Asset struct {
	ID          string    `json:"id"`
	ContentHash string    `json:"content_hash"`
	FileName    string    `json:"file_name"`
	Mime        string    `json:"mime"`
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	SizeBytes   int64     `json:"size_bytes"`
	Quality     float64   `json:"quality"`
	Iterations  int       `json:"iterations"`
	BestEffort  bool      `json:"best_effort"`
	StorageKey  string    `json:"storage_key"`
	CreatedAt   time.Time `json:"created_at"`
}

// IngestInput carries the data needed to ingest a new media asset.
type IngestInput struct {
	FileName string
	// Mime is the declared MIME type; the pipeline's type filter decides
	// whether to trust it.
	Mime string
	Data []byte
}

// IngestOutput pairs the stored asset with its transportable form.
type IngestOutput struct {
	Asset   Asset  `json:"asset"`
	DataURL string `json:"data_url"`
}

// Errors returned by the media service.
var (
	ErrAssetNotFound = errors.New("asset not found")
)
