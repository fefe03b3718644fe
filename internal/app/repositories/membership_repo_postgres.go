package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/communityhub/server/internal/domain/community"
)

type postgresMembershipRepo struct {
	db *sql.DB
}

// NewPostgresMembershipRepo builds a membership repository backed by
// PostgreSQL. The compound primary key enforces pair uniqueness.
func NewPostgresMembershipRepo(db *sql.DB) (MembershipRepository, error) {
	repo := &postgresMembershipRepo{db: db}
	if err := repo.ensureSchema(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *postgresMembershipRepo) ensureSchema() error {
	const createTable = `
        CREATE TABLE IF NOT EXISTS memberships (
            user_id TEXT NOT NULL,
            community_id TEXT NOT NULL,
            joined_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            PRIMARY KEY (user_id, community_id)
        )`
	if _, err := r.db.Exec(createTable); err != nil {
		return err
	}
	_, err := r.db.Exec(`CREATE INDEX IF NOT EXISTS idx_memberships_community ON memberships (community_id)`)
	return err
}

func (r *postgresMembershipRepo) Create(ctx context.Context, m *community.Membership) error {
	const query = `
        INSERT INTO memberships (user_id, community_id, joined_at)
        VALUES ($1, $2, $3)`
	_, err := r.db.ExecContext(ctx, query, m.UserID, m.CommunityID, m.JoinedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *postgresMembershipRepo) Get(ctx context.Context, userID, communityID string) (*community.Membership, error) {
	const query = `
        SELECT user_id, community_id, joined_at
        FROM memberships WHERE user_id = $1 AND community_id = $2`
	var m community.Membership
	err := r.db.QueryRowContext(ctx, query, userID, communityID).Scan(&m.UserID, &m.CommunityID, &m.JoinedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *postgresMembershipRepo) Delete(ctx context.Context, userID, communityID string) error {
	const query = `DELETE FROM memberships WHERE user_id = $1 AND community_id = $2`
	res, err := r.db.ExecContext(ctx, query, userID, communityID)
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

func (r *postgresMembershipRepo) ListByCommunity(ctx context.Context, communityID string) ([]community.Membership, error) {
	const query = `
        SELECT user_id, community_id, joined_at
        FROM memberships WHERE community_id = $1
        ORDER BY joined_at ASC`
	rows, err := r.db.QueryContext(ctx, query, communityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]community.Membership, 0)
	for rows.Next() {
		var m community.Membership
		if err := rows.Scan(&m.UserID, &m.CommunityID, &m.JoinedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *postgresMembershipRepo) CountByCommunity(ctx context.Context, communityID string) (int, error) {
	const query = `SELECT COUNT(*) FROM memberships WHERE community_id = $1`
	var count int
	if err := r.db.QueryRowContext(ctx, query, communityID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
