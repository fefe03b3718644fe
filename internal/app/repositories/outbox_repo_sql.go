package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/communityhub/server/internal/domain/outbox"
)

type sqlOutboxRepo struct {
	db *sql.DB
}

// NewSQLOutboxRepo builds an outbox repository over database/sql. The SQL is
// portable: it runs against both the PostgreSQL and the embedded sqlite
// driver, so the dev default still has a durable outbox.
func NewSQLOutboxRepo(db *sql.DB) (OutboxRepository, error) {
	repo := &sqlOutboxRepo{db: db}
	if err := repo.ensureSchema(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *sqlOutboxRepo) ensureSchema() error {
	const createTable = `
        CREATE TABLE IF NOT EXISTS email_outbox (
            id TEXT PRIMARY KEY,
            recipient TEXT NOT NULL,
            subject TEXT NOT NULL,
            body TEXT NOT NULL,
            created_at TIMESTAMP NOT NULL,
            sent_at TIMESTAMP NULL,
            error TEXT NOT NULL DEFAULT ''
        )`
	if _, err := r.db.Exec(createTable); err != nil {
		return err
	}
	_, err := r.db.Exec(`CREATE INDEX IF NOT EXISTS idx_email_outbox_unsent ON email_outbox (created_at) WHERE sent_at IS NULL`)
	return err
}

func (r *sqlOutboxRepo) Enqueue(ctx context.Context, m *outbox.Message) error {
	const query = `
        INSERT INTO email_outbox (id, recipient, subject, body, created_at, sent_at, error)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.ExecContext(ctx, query,
		m.ID, m.To, m.Subject, m.Body, m.CreatedAt.UTC(), nullTime(m.SentAt), m.Error)
	return err
}

func (r *sqlOutboxRepo) ListUnsent(ctx context.Context, limit int) ([]outbox.Message, error) {
	const query = `
        SELECT id, recipient, subject, body, created_at, sent_at, error
        FROM email_outbox WHERE sent_at IS NULL
        ORDER BY created_at ASC
        LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]outbox.Message, 0, limit)
	for rows.Next() {
		var (
			m    outbox.Message
			sent sql.NullTime
		)
		if err := rows.Scan(&m.ID, &m.To, &m.Subject, &m.Body, &m.CreatedAt, &sent, &m.Error); err != nil {
			return nil, err
		}
		if sent.Valid {
			t := sent.Time
			m.SentAt = &t
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *sqlOutboxRepo) MarkSent(ctx context.Context, id string, at time.Time) error {
	const query = `UPDATE email_outbox SET sent_at = $2, error = '' WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, at.UTC())
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

func (r *sqlOutboxRepo) MarkFailed(ctx context.Context, id, errMsg string) error {
	const query = `UPDATE email_outbox SET error = $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, errMsg)
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
