package content

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/plumecms/plume/internal/db"
)

// PostgresRepository persists entries in the content_entries table.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a repository over the given pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const entryColumns = `id, slug, title, body, status, cover_asset_id, author_id, published_at, created_at, updated_at`

func (r *PostgresRepository) Insert(ctx context.Context, entry Entry) (Entry, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO content_entries (slug, title, body, status, cover_asset_id, author_id, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+entryColumns,
		entry.Slug, entry.Title, entry.Body, string(entry.Status),
		nullableUUID(entry.CoverAssetID), nullableUUID(entry.AuthorID), nullableTime(entry.PublishedAt),
	)
	saved, err := scanEntry(row)
	if db.IsUniqueViolation(err) {
		return Entry{}, ErrSlugTaken
	}
	return saved, err
}

func (r *PostgresRepository) Update(ctx context.Context, entry Entry) (Entry, error) {
	pgID, err := db.ParseUUID(entry.ID)
	if err != nil {
		return Entry{}, err
	}
	row := r.pool.QueryRow(ctx, `
		UPDATE content_entries
		SET slug = $2, title = $3, body = $4, status = $5, cover_asset_id = $6, published_at = $7, updated_at = now()
		WHERE id = $1
		RETURNING `+entryColumns,
		pgID, entry.Slug, entry.Title, entry.Body, string(entry.Status),
		nullableUUID(entry.CoverAssetID), nullableTime(entry.PublishedAt),
	)
	saved, err := scanEntry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Entry{}, ErrEntryNotFound
	}
	if db.IsUniqueViolation(err) {
		return Entry{}, ErrSlugTaken
	}
	return saved, err
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (Entry, error) {
	pgID, err := db.ParseUUID(id)
	if err != nil {
		return Entry{}, err
	}
	row := r.pool.QueryRow(ctx, `SELECT `+entryColumns+` FROM content_entries WHERE id = $1`, pgID)
	entry, err := scanEntry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Entry{}, ErrEntryNotFound
	}
	return entry, err
}

func (r *PostgresRepository) GetBySlug(ctx context.Context, slug string) (Entry, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+entryColumns+` FROM content_entries WHERE slug = $1`, slug)
	entry, err := scanEntry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Entry{}, ErrEntryNotFound
	}
	return entry, err
}

func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) ([]Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+entryColumns+` FROM content_entries
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = '' OR title ILIKE '%' || $2 || '%' OR slug ILIKE '%' || $2 || '%')
		ORDER BY updated_at DESC`,
		string(filter.Status), filter.Query,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Entry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, entry)
	}
	return items, rows.Err()
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	pgID, err := db.ParseUUID(id)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM content_entries WHERE id = $1`, pgID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEntryNotFound
	}
	return nil
}

func scanEntry(row pgx.Row) (Entry, error) {
	var (
		entry       Entry
		pgID        pgtype.UUID
		status      string
		cover       pgtype.UUID
		author      pgtype.UUID
		publishedAt pgtype.Timestamptz
		createdAt   pgtype.Timestamptz
		updatedAt   pgtype.Timestamptz
	)
	err := row.Scan(&pgID, &entry.Slug, &entry.Title, &entry.Body, &status,
		&cover, &author, &publishedAt, &createdAt, &updatedAt)
	if err != nil {
		return Entry{}, err
	}
	entry.ID = db.UUIDToString(pgID)
	entry.Status = Status(status)
	entry.CoverAssetID = db.UUIDToString(cover)
	entry.AuthorID = db.UUIDToString(author)
	if publishedAt.Valid {
		t := publishedAt.Time
		entry.PublishedAt = &t
	}
	entry.CreatedAt = db.TimeFromPg(createdAt)
	entry.UpdatedAt = db.TimeFromPg(updatedAt)
	return entry, nil
}

func nullableUUID(id string) pgtype.UUID {
	if id == "" {
		return pgtype.UUID{}
	}
	pgID, err := db.ParseUUID(id)
	if err != nil {
		return pgtype.UUID{}
	}
	return pgID
}

func nullableTime(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: *t, Valid: true}
}
