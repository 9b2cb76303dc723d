package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of pgxpool.Pool the recorder needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type PgRecorder struct {
	db DB
}

func NewPgRecorder(db DB) *PgRecorder {
	return &PgRecorder{db: db}
}

const createEventsTable = `
	CREATE TABLE IF NOT EXISTS portal_events (
		id          BIGSERIAL PRIMARY KEY,
		event_type  TEXT        NOT NULL,
		actor_role  TEXT        NOT NULL DEFAULT '',
		subject     TEXT        NOT NULL DEFAULT '',
		payload     JSONB,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`

// EnsureSchema creates the events table when it does not exist yet.
func (r *PgRecorder) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, createEventsTable); err != nil {
		return fmt.Errorf("create portal_events: %w", err)
	}
	return nil
}

func (r *PgRecorder) Record(ctx context.Context, ev Event) error {
	var payload []byte
	if len(ev.Payload) > 0 {
		data, err := json.Marshal(ev.Payload)
		if err != nil {
			return fmt.Errorf("marshal %s payload: %w", ev.Type, err)
		}
		payload = data
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO portal_events (event_type, actor_role, subject, payload, created_at)
		VALUES ($1, $2, $3, $4, COALESCE($5, now()))
	`, ev.Type, ev.ActorRole, ev.Subject, payload, nullableTime(ev.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert portal event: %w", err)
	}
	return nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
