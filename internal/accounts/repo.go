package accounts

import (
	"context"
	"strings"
	"sync"
)

// Repository persists accounts. Lookups by identity accept either the
// username or the email address.
type Repository interface {
	Insert(ctx context.Context, rec Record) (Record, error)
	GetByID(ctx context.Context, id string) (Record, error)
	GetByIdentity(ctx context.Context, identity string) (Record, error)
	List(ctx context.Context) ([]Record, error)
	TouchLastLogin(ctx context.Context, id string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

// MemoryRepository is an in-process Repository used by the memory
// driver and by tests.
type MemoryRepository struct {
	mu   sync.RWMutex
	byID map[string]Record
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: make(map[string]Record)}
}

func (m *MemoryRepository) Insert(ctx context.Context, rec Record) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if strings.EqualFold(existing.Username, rec.Username) {
			return Record{}, ErrUsernameTaken
		}
	}
	m.byID[rec.ID] = rec
	return rec, nil
}

func (m *MemoryRepository) GetByID(ctx context.Context, id string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.byID[id]
	if !ok {
		return Record{}, ErrAccountNotFound
	}
	return rec, nil
}

func (m *MemoryRepository) GetByIdentity(ctx context.Context, identity string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, rec := range m.byID {
		if strings.EqualFold(rec.Username, identity) || (rec.Email != "" && strings.EqualFold(rec.Email, identity)) {
			return rec, nil
		}
	}
	return Record{}, ErrAccountNotFound
}

func (m *MemoryRepository) List(ctx context.Context) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Record, 0, len(m.byID))
	for _, rec := range m.byID {
		out = append(out, rec)
	}
	return out, nil
}

func (m *MemoryRepository) TouchLastLogin(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.byID[id]
	if !ok {
		return ErrAccountNotFound
	}
	rec.LastLoginAt = nowFunc()
	m.byID[id] = rec
	return nil
}

func (m *MemoryRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.byID[id]
	if !ok {
		return ErrAccountNotFound
	}
	rec.PasswordHash = passwordHash
	m.byID[id] = rec
	return nil
}
