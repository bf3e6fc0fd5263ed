package content

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository persists entries. Implementations must be safe for concurrent
// use; the service never touches package-level state.
type Repository interface {
	Insert(ctx context.Context, entry Entry) (Entry, error)
	Update(ctx context.Context, entry Entry) (Entry, error)
	GetByID(ctx context.Context, id string) (Entry, error)
	GetBySlug(ctx context.Context, slug string) (Entry, error)
	List(ctx context.Context, filter ListFilter) ([]Entry, error)
	Delete(ctx context.Context, id string) error
}

// MemoryRepository keeps entries in memory; used by tests and the
// "memory" repository driver.
type MemoryRepository struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{entries: make(map[string]Entry)}
}

func (r *MemoryRepository) Insert(ctx context.Context, entry Entry) (Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.entries {
		if existing.Slug == entry.Slug {
			return Entry{}, ErrSlugTaken
		}
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	entry.CreatedAt = now
	entry.UpdatedAt = now
	r.entries[entry.ID] = entry
	return entry, nil
}

func (r *MemoryRepository) Update(ctx context.Context, entry Entry) (Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.entries[entry.ID]
	if !ok {
		return Entry{}, ErrEntryNotFound
	}
	for id, existing := range r.entries {
		if id != entry.ID && existing.Slug == entry.Slug {
			return Entry{}, ErrSlugTaken
		}
	}
	entry.CreatedAt = current.CreatedAt
	entry.UpdatedAt = time.Now().UTC()
	r.entries[entry.ID] = entry
	return entry, nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id string) (Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[id]
	if !ok {
		return Entry{}, ErrEntryNotFound
	}
	return entry, nil
}

func (r *MemoryRepository) GetBySlug(ctx context.Context, slug string) (Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, entry := range r.entries {
		if entry.Slug == slug {
			return entry, nil
		}
	}
	return Entry{}, ErrEntryNotFound
}

func (r *MemoryRepository) List(ctx context.Context, filter ListFilter) ([]Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	items := make([]Entry, 0, len(r.entries))
	query := strings.ToLower(strings.TrimSpace(filter.Query))
	for _, entry := range r.entries {
		if filter.Status != "" && entry.Status != filter.Status {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(entry.Title), query) &&
			!strings.Contains(strings.ToLower(entry.Slug), query) {
			continue
		}
		items = append(items, entry)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].UpdatedAt.After(items[j].UpdatedAt)
	})
	return items, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[id]; !ok {
		return ErrEntryNotFound
	}
	delete(r.entries, id)
	return nil
}
