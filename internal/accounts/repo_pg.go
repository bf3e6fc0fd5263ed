package accounts

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/plumecms/plume/internal/db"
)

// PostgresRepository persists accounts in the accounts table.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a repository over the given pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const accountColumns = `id, username, email, display_name, role, password_hash, is_active, last_login_at, created_at`

func (r *PostgresRepository) Insert(ctx context.Context, rec Record) (Record, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO accounts (username, email, display_name, role, password_hash, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+accountColumns,
		rec.Username, db.TextFromString(rec.Email), db.TextFromString(rec.DisplayName),
		rec.Role, db.TextFromString(rec.PasswordHash), rec.IsActive,
	)
	saved, err := scanAccount(row)
	if db.IsUniqueViolation(err) {
		return Record{}, ErrUsernameTaken
	}
	return saved, err
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (Record, error) {
	pgID, err := db.ParseUUID(id)
	if err != nil {
		return Record{}, err
	}
	row := r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, pgID)
	rec, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrAccountNotFound
	}
	return rec, err
}

func (r *PostgresRepository) GetByIdentity(ctx context.Context, identity string) (Record, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+accountColumns+` FROM accounts
		WHERE lower(username) = lower($1) OR lower(email) = lower($1)`,
		identity,
	)
	rec, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrAccountNotFound
	}
	return rec, err
}

func (r *PostgresRepository) List(ctx context.Context) ([]Record, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Record, 0)
	for rows.Next() {
		rec, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, rec)
	}
	return items, rows.Err()
}

func (r *PostgresRepository) TouchLastLogin(ctx context.Context, id string) error {
	pgID, err := db.ParseUUID(id)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, `UPDATE accounts SET last_login_at = now(), updated_at = now() WHERE id = $1`, pgID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	pgID, err := db.ParseUUID(id)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, `UPDATE accounts SET password_hash = $2, updated_at = now() WHERE id = $1`, pgID, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func scanAccount(row pgx.Row) (Record, error) {
	var (
		rec         Record
		pgID        pgtype.UUID
		email       pgtype.Text
		displayName pgtype.Text
		hash        pgtype.Text
		lastLogin   pgtype.Timestamptz
		createdAt   pgtype.Timestamptz
	)
	err := row.Scan(&pgID, &rec.Username, &email, &displayName, &rec.Role,
		&hash, &rec.IsActive, &lastLogin, &createdAt)
	if err != nil {
		return Record{}, err
	}
	rec.ID = db.UUIDToString(pgID)
	rec.Email = db.TextToString(email)
	rec.DisplayName = db.TextToString(displayName)
	rec.PasswordHash = db.TextToString(hash)
	if lastLogin.Valid {
		rec.LastLoginAt = lastLogin.Time
	}
	rec.CreatedAt = db.TimeFromPg(createdAt)
	return rec, nil
}
