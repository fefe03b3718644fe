package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/communityhub/server/internal/domain/community"
)

type postgresCommunityRepo struct {
	db *sql.DB
}

// NewPostgresCommunityRepo builds a community repository backed by PostgreSQL.
func NewPostgresCommunityRepo(db *sql.DB) (CommunityRepository, error) {
	repo := &postgresCommunityRepo{db: db}
	if err := repo.ensureSchema(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *postgresCommunityRepo) ensureSchema() error {
	const createTable = `
        CREATE TABLE IF NOT EXISTS communities (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            slug TEXT NOT NULL UNIQUE,
            description TEXT NOT NULL DEFAULT '',
            owner_id TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            archived_at TIMESTAMPTZ NULL
        )`
	if _, err := r.db.Exec(createTable); err != nil {
		return err
	}
	_, err := r.db.Exec(`CREATE INDEX IF NOT EXISTS idx_communities_owner ON communities (owner_id)`)
	return err
}

func (r *postgresCommunityRepo) Create(ctx context.Context, c *community.Community) error {
	const query = `
        INSERT INTO communities (id, name, slug, description, owner_id, created_at, updated_at, archived_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.Name, c.Slug, c.Description, c.OwnerID, c.CreatedAt, c.UpdatedAt, nullTime(c.ArchivedAt))
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *postgresCommunityRepo) GetByID(ctx context.Context, id string) (*community.Community, error) {
	const query = `
        SELECT id, name, slug, description, owner_id, created_at, updated_at, archived_at
        FROM communities WHERE id = $1`
	return scanCommunity(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresCommunityRepo) GetBySlug(ctx context.Context, slug string) (*community.Community, error) {
	const query = `
        SELECT id, name, slug, description, owner_id, created_at, updated_at, archived_at
        FROM communities WHERE slug = $1`
	return scanCommunity(r.db.QueryRowContext(ctx, query, slug))
}

func (r *postgresCommunityRepo) Update(ctx context.Context, c *community.Community) error {
	const query = `
        UPDATE communities
        SET name = $2, description = $3, updated_at = $4, archived_at = $5
        WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, c.ID, c.Name, c.Description, c.UpdatedAt, nullTime(c.ArchivedAt))
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

func (r *postgresCommunityRepo) ListActive(ctx context.Context) ([]community.Community, error) {
	const query = `
        SELECT id, name, slug, description, owner_id, created_at, updated_at, archived_at
        FROM communities WHERE archived_at IS NULL
        ORDER BY created_at ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]community.Community, 0)
	for rows.Next() {
		c, err := scanCommunityRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func scanCommunity(row *sql.Row) (*community.Community, error) {
	var (
		c        community.Community
		archived sql.NullTime
	)
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.OwnerID, &c.CreatedAt, &c.UpdatedAt, &archived)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if archived.Valid {
		t := archived.Time
		c.ArchivedAt = &t
	}
	return &c, nil
}

func scanCommunityRow(rows *sql.Rows) (*community.Community, error) {
	var (
		c        community.Community
		archived sql.NullTime
	)
	if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.OwnerID, &c.CreatedAt, &c.UpdatedAt, &archived); err != nil {
		return nil, err
	}
	if archived.Valid {
		t := archived.Time
		c.ArchivedAt = &t
	}
	return &c, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
