package content

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"
)

// Service provides entry management over an injected repository.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a content service.
func NewService(log *slog.Logger, repo Repository) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		repo:   repo,
		logger: log.With(slog.String("service", "content")),
	}
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Create inserts a new draft entry.
func (s *Service) Create(ctx context.Context, req CreateRequest) (Entry, error) {
	if s.repo == nil {
		return Entry{}, fmt.Errorf("content repository not configured")
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return Entry{}, fmt.Errorf("title is required")
	}
	slug := strings.TrimSpace(req.Slug)
	if slug == "" {
		slug = Slugify(req.Title)
	}
	if !slugPattern.MatchString(slug) {
		return Entry{}, fmt.Errorf("invalid slug %q", slug)
	}

	entry, err := s.repo.Insert(ctx, Entry{
		Slug:         slug,
		Title:        req.Title,
		Body:         req.Body,
		Status:       StatusDraft,
		CoverAssetID: req.CoverAssetID,
		AuthorID:     req.AuthorID,
	})
	if err != nil {
		return Entry{}, err
	}
	s.logger.Info("entry created", slog.String("id", entry.ID), slog.String("slug", entry.Slug))
	return entry, nil
}

// Get returns an entry by id.
func (s *Service) Get(ctx context.Context, id string) (Entry, error) {
	return s.repo.GetByID(ctx, id)
}

// GetBySlug returns an entry by slug.
func (s *Service) GetBySlug(ctx context.Context, slug string) (Entry, error) {
	return s.repo.GetBySlug(ctx, strings.TrimSpace(slug))
}

// List returns entries matching the filter, most recently updated first.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Entry, error) {
	return s.repo.List(ctx, filter)
}

// Update applies a partial update to an entry.
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (Entry, error) {
	entry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Entry{}, err
	}
	if req.Slug != nil {
		slug := strings.TrimSpace(*req.Slug)
		if !slugPattern.MatchString(slug) {
			return Entry{}, fmt.Errorf("invalid slug %q", slug)
		}
		entry.Slug = slug
	}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return Entry{}, fmt.Errorf("title is required")
		}
		entry.Title = title
	}
	if req.Body != nil {
		entry.Body = *req.Body
	}
	if req.CoverAssetID != nil {
		entry.CoverAssetID = *req.CoverAssetID
	}
	return s.repo.Update(ctx, entry)
}

// Publish marks the entry published and stamps the publication time.
func (s *Service) Publish(ctx context.Context, id string) (Entry, error) {
	entry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Entry{}, err
	}
	if entry.Status == StatusPublished {
		return entry, nil
	}
	now := time.Now().UTC()
	entry.Status = StatusPublished
	entry.PublishedAt = &now
	saved, err := s.repo.Update(ctx, entry)
	if err != nil {
		return Entry{}, err
	}
	s.logger.Info("entry published", slog.String("id", saved.ID), slog.String("slug", saved.Slug))
	return saved, nil
}

// Unpublish returns the entry to draft.
func (s *Service) Unpublish(ctx context.Context, id string) (Entry, error) {
	entry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Entry{}, err
	}
	entry.Status = StatusDraft
	entry.PublishedAt = nil
	return s.repo.Update(ctx, entry)
}

// Delete removes an entry.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("entry deleted", slog.String("id", id))
	return nil
}

// Slugify lowercases the title and maps every non-alphanumeric run to a
// single hyphen.
func Slugify(title string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
