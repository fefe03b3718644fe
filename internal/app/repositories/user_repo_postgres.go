package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/communityhub/server/internal/domain/user"
)

type postgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo builds a user repository backed by PostgreSQL.
func NewPostgresUserRepo(db *sql.DB) (UserRepository, error) {
	repo := &postgresUserRepo{db: db}
	if err := repo.ensureSchema(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *postgresUserRepo) ensureSchema() error {
	const createTable = `
        CREATE TABLE IF NOT EXISTS users (
            id TEXT PRIMARY KEY,
            subject TEXT NOT NULL UNIQUE,
            email TEXT NOT NULL DEFAULT '',
            name TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`
	_, err := r.db.Exec(createTable)
	return err
}

func (r *postgresUserRepo) Create(ctx context.Context, u *user.User) error {
	const query = `
        INSERT INTO users (id, subject, email, name, created_at)
        VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.ExecContext(ctx, query, u.ID, u.Subject, u.Email, u.Name, u.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *postgresUserRepo) GetByID(ctx context.Context, id string) (*user.User, error) {
	const query = `SELECT id, subject, email, name, created_at FROM users WHERE id = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresUserRepo) GetBySubject(ctx context.Context, subject string) (*user.User, error) {
	const query = `SELECT id, subject, email, name, created_at FROM users WHERE subject = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, subject))
}

func (r *postgresUserRepo) ListByIDs(ctx context.Context, ids []string) ([]user.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	const query = `SELECT id, subject, email, name, created_at FROM users WHERE id = ANY($1)`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]user.User, 0, len(ids))
	for rows.Next() {
		var u user.User
		if err := rows.Scan(&u.ID, &u.Subject, &u.Email, &u.Name, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *postgresUserRepo) scanUser(row *sql.Row) (*user.User, error) {
	var u user.User
	err := row.Scan(&u.ID, &u.Subject, &u.Email, &u.Name, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
