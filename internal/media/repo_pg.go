package media

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/plumecms/plume/internal/db"
)

// PostgresRepository persists asset metadata in the media_assets table.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a repository over the given pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const assetColumns = `id, content_hash, file_name, mime, width, height, size_bytes, quality, iterations, best_effort, storage_key, created_at`

func (r *PostgresRepository) Save(ctx context.Context, asset Asset) (Asset, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO media_assets (content_hash, file_name, mime, width, height, size_bytes, quality, iterations, best_effort, storage_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (content_hash) DO UPDATE SET file_name = EXCLUDED.file_name
		RETURNING `+assetColumns,
		asset.ContentHash, asset.FileName, asset.Mime, asset.Width, asset.Height,
		asset.SizeBytes, asset.Quality, asset.Iterations, asset.BestEffort, asset.StorageKey,
	)
	return scanAsset(row)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (Asset, error) {
	pgID, err := db.ParseUUID(id)
	if err != nil {
		return Asset{}, err
	}
	row := r.pool.QueryRow(ctx, `SELECT `+assetColumns+` FROM media_assets WHERE id = $1`, pgID)
	asset, err := scanAsset(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Asset{}, ErrAssetNotFound
	}
	return asset, err
}

func (r *PostgresRepository) GetByHash(ctx context.Context, hash string) (Asset, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+assetColumns+` FROM media_assets WHERE content_hash = $1`, hash)
	asset, err := scanAsset(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Asset{}, ErrAssetNotFound
	}
	return asset, err
}

func (r *PostgresRepository) List(ctx context.Context) ([]Asset, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+assetColumns+` FROM media_assets ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Asset, 0)
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, asset)
	}
	return items, rows.Err()
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	pgID, err := db.ParseUUID(id)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM media_assets WHERE id = $1`, pgID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAssetNotFound
	}
	return nil
}

func scanAsset(row pgx.Row) (Asset, error) {
	var (
		asset     Asset
		pgID      pgtype.UUID
		createdAt pgtype.Timestamptz
	)
	err := row.Scan(&pgID, &asset.ContentHash, &asset.FileName, &asset.Mime,
		&asset.Width, &asset.Height, &asset.SizeBytes, &asset.Quality,
		&asset.Iterations, &asset.BestEffort, &asset.StorageKey, &createdAt)
	if err != nil {
		return Asset{}, err
	}
	asset.ID = db.UUIDToString(pgID)
	asset.CreatedAt = db.TimeFromPg(createdAt)
	return asset, nil
}
