// Package content manages the entries the dashboard edits and publishes.
package content

import (
	"errors"
	"time"
)

// Status is the publication state of an entry.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// Entry is one piece of managed content.
type Entry struct {
	ID           string     `json:"id"`
	Slug         string     `json:"slug"`
	Title        string     `json:"title"`
	Body         string     `json:"body"`
	Status       Status     `json:"status"`
	CoverAssetID string     `json:"cover_asset_id,omitempty"`
	AuthorID     string     `json:"author_id,omitempty"`
	PublishedAt  *time.Time `json:"published_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// CreateRequest is the input for creating an entry.
type CreateRequest struct {
	Slug         string `json:"slug"`
	Title        string `json:"title"`
	Body         string `json:"body"`
	CoverAssetID string `json:"cover_asset_id"`
	AuthorID     string `json:"-"`
}

// UpdateRequest is the input for a partial update; nil fields are left
// unchanged.
type UpdateRequest struct {
	Slug         *string `json:"slug"`
	Title        *string `json:"title"`
	Body         *string `json:"body"`
	CoverAssetID *string `json:"cover_asset_id"`
}

// ListFilter narrows List results.
type ListFilter struct {
	Status Status
	Query  string
}

// Errors returned by content operations.
var (
	ErrEntryNotFound = errors.New("entry not found")
	ErrSlugTaken     = errors.New("slug already in use")
)
