package settings

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/plumecms/plume/internal/db"
)

// Repository persists the single settings row.
type Repository interface {
	Get(ctx context.Context) (Settings, error)
	Upsert(ctx context.Context, s Settings) (Settings, error)
}

// MemoryRepository keeps settings in memory.
type MemoryRepository struct {
	mu    sync.RWMutex
	value *Settings
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Get(ctx context.Context) (Settings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.value == nil {
		return Settings{}, ErrNotFound
	}
	return *r.value, nil
}

func (r *MemoryRepository) Upsert(ctx context.Context, s Settings) (Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.UpdatedAt = time.Now().UTC()
	r.value = &s
	return s, nil
}

// PostgresRepository persists settings in the site_settings table
// (a single row with id 1).
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a repository over the given pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const settingsColumns = `accept, max_size, max_output_size, max_width, output_type, quality, on_size_target_unmet, updated_at`

func (r *PostgresRepository) Get(ctx context.Context) (Settings, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+settingsColumns+` FROM site_settings WHERE id = 1`)
	s, err := scanSettings(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Settings{}, ErrNotFound
	}
	return s, err
}

func (r *PostgresRepository) Upsert(ctx context.Context, s Settings) (Settings, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO site_settings (id, accept, max_size, max_output_size, max_width, output_type, quality, on_size_target_unmet, updated_at)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7, now())
		ON CONFLICT (id) DO UPDATE SET
			accept = EXCLUDED.accept,
			max_size = EXCLUDED.max_size,
			max_output_size = EXCLUDED.max_output_size,
			max_width = EXCLUDED.max_width,
			output_type = EXCLUDED.output_type,
			quality = EXCLUDED.quality,
			on_size_target_unmet = EXCLUDED.on_size_target_unmet,
			updated_at = now()
		RETURNING `+settingsColumns,
		s.Accept, s.MaxSize, s.MaxOutputSize, s.MaxWidth, s.OutputType, s.Quality, s.OnSizeTargetUnmet,
	)
	return scanSettings(row)
}

func scanSettings(row pgx.Row) (Settings, error) {
	var (
		s         Settings
		updatedAt pgtype.Timestamptz
	)
	err := row.Scan(&s.Accept, &s.MaxSize, &s.MaxOutputSize, &s.MaxWidth,
		&s.OutputType, &s.Quality, &s.OnSizeTargetUnmet, &updatedAt)
	if err != nil {
		return Settings{}, err
	}
	s.UpdatedAt = db.TimeFromPg(updatedAt)
	return s, nil
}
