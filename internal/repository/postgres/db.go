package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/mero-vet/vet-clinic-app-sub000/config"
)

const schema = `
CREATE TABLE IF NOT EXISTS outbox_events (
	id            UUID PRIMARY KEY,
	event_type    TEXT        NOT NULL,
	payload       JSONB       NOT NULL,
	status        TEXT        NOT NULL DEFAULT 'pending',
	error_message TEXT,
	retry_count   INTEGER     NOT NULL DEFAULT 0,
	retry_at      TIMESTAMPTZ,
	created_at    TIMESTAMPTZ NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL,
	processed_at  TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS outbox_events_pending_idx
	ON outbox_events (created_at) WHERE status = 'pending';
`

func NewDB(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return db, nil
}

// Migrate creates the outbox table when missing.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
