package db

import (
	"context"
	"fmt"
	"time"
)

// StageRun is one recorded stage attempt.
type StageRun struct {
	ID           int64
	PostName     string
	DeploymentID string
	StageID      string
	StageType    string
	Status       string
	Message      string
	PublishedURL string
	DurationMs   int64
	CreatedAt    time.Time
}

// RecordStageRun appends one stage attempt to the history.
func (db *DB) RecordStageRun(ctx context.Context, run StageRun) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO stage_runs (post_name, deployment_id, stage_id, stage_type, status, message, published_url, duration_ms)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		run.PostName, run.DeploymentID, run.StageID, run.StageType,
		run.Status, run.Message, run.PublishedURL, run.DurationMs,
	)
	if err != nil {
		return fmt.Errorf("failed to record stage run: %w", err)
	}
	return nil
}

// ListStageRuns returns the recorded attempts for a post, newest first.
func (db *DB) ListStageRuns(ctx context.Context, postName string, limit int) ([]StageRun, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.pool.Query(ctx,
		`SELECT id, post_name, deployment_id, stage_id, stage_type, status, message, published_url, duration_ms, created_at
		 FROM stage_runs WHERE post_name = $1 ORDER BY created_at DESC LIMIT $2`,
		postName, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list stage runs: %w", err)
	}
	defer rows.Close()

	var runs []StageRun
	for rows.Next() {
		var r StageRun
		if err := rows.Scan(&r.ID, &r.PostName, &r.DeploymentID, &r.StageID, &r.StageType,
			&r.Status, &r.Message, &r.PublishedURL, &r.DurationMs, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan stage run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read stage runs: %w", err)
	}
	return runs, nil
}
