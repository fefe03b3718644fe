package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/communityhub/server/internal/domain/event"
)

type postgresEventRepo struct {
	db *sql.DB
}

// NewPostgresEventRepo builds a calendar event repository backed by
// PostgreSQL.
func NewPostgresEventRepo(db *sql.DB) (EventRepository, error) {
	repo := &postgresEventRepo{db: db}
	if err := repo.ensureSchema(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *postgresEventRepo) ensureSchema() error {
	const createTable = `
        CREATE TABLE IF NOT EXISTS calendar_events (
            id TEXT PRIMARY KEY,
            community_id TEXT NOT NULL,
            title TEXT NOT NULL,
            description TEXT NOT NULL DEFAULT '',
            location TEXT NOT NULL DEFAULT '',
            start_at TIMESTAMPTZ NOT NULL,
            end_at TIMESTAMPTZ NOT NULL,
            timezone TEXT NOT NULL DEFAULT 'UTC',
            status TEXT NOT NULL DEFAULT 'draft',
            published_at TIMESTAMPTZ NULL,
            cancelled_at TIMESTAMPTZ NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`
	if _, err := r.db.Exec(createTable); err != nil {
		return err
	}
	if _, err := r.db.Exec(`CREATE INDEX IF NOT EXISTS idx_calendar_events_community ON calendar_events (community_id, status)`); err != nil {
		return err
	}
	_, err := r.db.Exec(`CREATE INDEX IF NOT EXISTS idx_calendar_events_start ON calendar_events (start_at)`)
	return err
}

const eventColumns = `id, community_id, title, description, location, start_at, end_at, timezone, status, published_at, cancelled_at, created_at, updated_at`

func (r *postgresEventRepo) Create(ctx context.Context, e *event.Event) error {
	query := fmt.Sprintf(`
        INSERT INTO calendar_events (%s)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`, eventColumns)
	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.CommunityID, e.Title, e.Description, e.Location,
		e.StartAt, e.EndAt, e.Timezone, string(e.Status),
		nullTime(e.PublishedAt), nullTime(e.CancelledAt), e.CreatedAt, e.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *postgresEventRepo) GetByID(ctx context.Context, id string) (*event.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM calendar_events WHERE id = $1`, eventColumns)
	row := r.db.QueryRowContext(ctx, query, id)
	e, err := scanEvent(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return e, err
}

func (r *postgresEventRepo) Update(ctx context.Context, e *event.Event) error {
	const query = `
        UPDATE calendar_events
        SET title = $2, description = $3, location = $4, start_at = $5, end_at = $6,
            timezone = $7, status = $8, published_at = $9, cancelled_at = $10, updated_at = $11
        WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query,
		e.ID, e.Title, e.Description, e.Location, e.StartAt, e.EndAt,
		e.Timezone, string(e.Status), nullTime(e.PublishedAt), nullTime(e.CancelledAt), e.UpdatedAt)
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

func (r *postgresEventRepo) List(ctx context.Context, filter EventFilter) ([]event.Event, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.CommunityID != "" {
		where = append(where, "community_id = "+arg(filter.CommunityID))
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			statuses = append(statuses, string(s))
		}
		where = append(where, "status = ANY("+arg(pq.Array(statuses))+")")
	}
	if w := filter.StartsWithin; w != nil {
		where = append(where, "start_at >= "+arg(w.From))
		where = append(where, "start_at <= "+arg(w.To))
	}
	if w := filter.PublishedWithin; w != nil {
		where = append(where, "published_at >= "+arg(w.From))
		where = append(where, "published_at <= "+arg(w.To))
	}
	if after := filter.StartsAfter; after != nil {
		where = append(where, "start_at > "+arg(*after))
	}

	query := fmt.Sprintf(`SELECT %s FROM calendar_events`, eventColumns)
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	switch filter.Order {
	case OrderByPublishedDesc:
		query += " ORDER BY published_at DESC NULLS LAST"
	default:
		query += " ORDER BY start_at ASC"
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]event.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

func scanEvent(scan func(dest ...any) error) (*event.Event, error) {
	var (
		e         event.Event
		status    string
		published sql.NullTime
		cancelled sql.NullTime
	)
	err := scan(&e.ID, &e.CommunityID, &e.Title, &e.Description, &e.Location,
		&e.StartAt, &e.EndAt, &e.Timezone, &status, &published, &cancelled,
		&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	e.Status = event.Status(status)
	if published.Valid {
		t := published.Time
		e.PublishedAt = &t
	}
	if cancelled.Valid {
		t := cancelled.Time
		e.CancelledAt = &t
	}
	return &e, nil
}
