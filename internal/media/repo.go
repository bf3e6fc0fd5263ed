package media

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository persists asset metadata. Implementations must be safe for
// concurrent use.
type Repository interface {
	Save(ctx context.Context, asset Asset) (Asset, error)
	GetByID(ctx context.Context, id string) (Asset, error)
	GetByHash(ctx context.Context, hash string) (Asset, error)
	List(ctx context.Context) ([]Asset, error)
	Delete(ctx context.Context, id string) error
}

// MemoryRepository keeps assets in memory; used by tests and the "memory"
// repository driver.
type MemoryRepository struct {
	mu     sync.RWMutex
	byID   map[string]Asset
	byHash map[string]string
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:   make(map[string]Asset),
		byHash: make(map[string]string),
	}
}

func (r *MemoryRepository) Save(ctx context.Context, asset Asset) (Asset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if asset.ID == "" {
		asset.ID = uuid.NewString()
	}
	if asset.CreatedAt.IsZero() {
		asset.CreatedAt = time.Now().UTC()
	}
	r.byID[asset.ID] = asset
	r.byHash[asset.ContentHash] = asset.ID
	return asset, nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id string) (Asset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	asset, ok := r.byID[id]
	if !ok {
		return Asset{}, ErrAssetNotFound
	}
	return asset, nil
}

func (r *MemoryRepository) GetByHash(ctx context.Context, hash string) (Asset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byHash[hash]
	if !ok {
		return Asset{}, ErrAssetNotFound
	}
	return r.byID[id], nil
}

func (r *MemoryRepository) List(ctx context.Context) ([]Asset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	items := make([]Asset, 0, len(r.byID))
	for _, asset := range r.byID {
		items = append(items, asset)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	asset, ok := r.byID[id]
	if !ok {
		return ErrAssetNotFound
	}
	delete(r.byID, id)
	delete(r.byHash, asset.ContentHash)
	return nil
}
