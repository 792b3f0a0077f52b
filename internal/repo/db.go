// Package repo хранит историю импортов в PostgreSQL.
//
// История необязательна: при пустом DATABASE_URL воркер работает без неё.
package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPool создаёт пул соединений и проверяет доступность БД.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	cfg.MaxConns = 4
	cfg.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("new pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return pool, nil
}

// schema — таблица истории импортов.
const schema = `
CREATE TABLE IF NOT EXISTS imports (
	id          UUID PRIMARY KEY,
	message_id  TEXT,
	filename    TEXT        NOT NULL,
	status      TEXT        NOT NULL,
	stage       TEXT,
	categories  INTEGER     NOT NULL DEFAULT 0,
	error       TEXT,
	started_at  TIMESTAMPTZ,
	finished_at TIMESTAMPTZ,
	created_at  TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS imports_created_at_idx ON imports (created_at DESC);
`

// Migrate создаёт таблицы, если их ещё нет.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// nullString превращает пустую строку в NULL.
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
