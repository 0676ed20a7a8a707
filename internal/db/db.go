// Package db provides optional PostgreSQL persistence for stage-run history.
// The pipeline works fully without it; a configured database adds an audit
// trail of every stage attempt across deployments.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{pool: pool}
	if err := db.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// ensureSchema creates the history table when absent. History is an audit
// log, so there is no migration story beyond additive columns.
func (db *DB) ensureSchema(ctx context.Context) error {
	_, err := db.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS stage_runs (
			id           BIGSERIAL PRIMARY KEY,
			post_name    TEXT        NOT NULL,
			deployment_id TEXT       NOT NULL,
			stage_id     TEXT        NOT NULL,
			stage_type   TEXT        NOT NULL,
			status       TEXT        NOT NULL,
			message      TEXT        NOT NULL DEFAULT '',
			published_url TEXT       NOT NULL DEFAULT '',
			duration_ms  BIGINT      NOT NULL DEFAULT 0,
			created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return fmt.Errorf("failed to ensure stage_runs table: %w", err)
	}
	return nil
}
