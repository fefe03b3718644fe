package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/communityhub/server/internal/domain/asset"
)

type postgresAssetRepo struct {
	db *sql.DB
}

// NewPostgresAssetRepo builds a file asset repository backed by PostgreSQL.
func NewPostgresAssetRepo(db *sql.DB) (AssetRepository, error) {
	repo := &postgresAssetRepo{db: db}
	if err := repo.ensureSchema(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *postgresAssetRepo) ensureSchema() error {
	const createTable = `
        CREATE TABLE IF NOT EXISTS file_assets (
            id TEXT PRIMARY KEY,
            filename TEXT NOT NULL,
            mime_type TEXT NOT NULL,
            storage_key TEXT NOT NULL UNIQUE,
            user_id TEXT NOT NULL,
            is_public BOOLEAN NOT NULL DEFAULT FALSE,
            is_uploaded BOOLEAN NOT NULL DEFAULT FALSE,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`
	if _, err := r.db.Exec(createTable); err != nil {
		return err
	}
	_, err := r.db.Exec(`CREATE INDEX IF NOT EXISTS idx_file_assets_user ON file_assets (user_id, is_uploaded)`)
	return err
}

func (r *postgresAssetRepo) Create(ctx context.Context, a *asset.Asset) error {
	const query = `
        INSERT INTO file_assets (id, filename, mime_type, storage_key, user_id, is_public, is_uploaded, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.Filename, a.MimeType, a.StorageKey, a.UserID, a.IsPublic, a.IsUploaded, a.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *postgresAssetRepo) GetByID(ctx context.Context, id string) (*asset.Asset, error) {
	const query = `
        SELECT id, filename, mime_type, storage_key, user_id, is_public, is_uploaded, created_at
        FROM file_assets WHERE id = $1`
	var a asset.Asset
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&a.ID, &a.Filename, &a.MimeType, &a.StorageKey, &a.UserID, &a.IsPublic, &a.IsUploaded, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *postgresAssetRepo) Update(ctx context.Context, a *asset.Asset) error {
	const query = `
        UPDATE file_assets
        SET filename = $2, mime_type = $3, is_public = $4, is_uploaded = $5
        WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, a.ID, a.Filename, a.MimeType, a.IsPublic, a.IsUploaded)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postgresAssetRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM file_assets WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postgresAssetRepo) ListUploadedByUser(ctx context.Context, userID string) ([]asset.Asset, error) {
	const query = `
        SELECT id, filename, mime_type, storage_key, user_id, is_public, is_uploaded, created_at
        FROM file_assets WHERE user_id = $1 AND is_uploaded = TRUE
        ORDER BY created_at ASC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]asset.Asset, 0)
	for rows.Next() {
		var a asset.Asset
		if err := rows.Scan(&a.ID, &a.Filename, &a.MimeType, &a.StorageKey, &a.UserID, &a.IsPublic, &a.IsUploaded, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
