// Package store provides the optional PostgreSQL sink completed reports
// are written to. The sink is fire-and-forget: failures are logged by
// the caller and never abort a run.
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BAWSA3/brandos/internal/types"
)

// DB wraps a PostgreSQL connection pool.
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database.
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool.
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// SaveReport stores a completed unified report and returns its row ID.
// The report body is stored as JSONB alongside denormalized columns for
// dashboard queries.
func (db *DB) SaveReport(ctx context.Context, report *types.UnifiedReport) (uuid.UUID, error) {
	body, err := json.Marshal(report)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to encode report: %w", err)
	}

	var id uuid.UUID
	err = db.pool.QueryRow(ctx,
		`INSERT INTO brand_reports (handle, overall_score, degraded, body, generated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		string(report.Handle), report.OverallScore, report.Degraded, body, report.GeneratedAt,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save report: %w", err)
	}
	return id, nil
}

// LatestReport returns the most recently stored report for a handle,
// or nil when none exists.
func (db *DB) LatestReport(ctx context.Context, handle types.Handle) (*types.UnifiedReport, error) {
	var body []byte
	err := db.pool.QueryRow(ctx,
		`SELECT body FROM brand_reports
		 WHERE handle = $1
		 ORDER BY generated_at DESC
		 LIMIT 1`,
		string(handle),
	).Scan(&body)
	if err != nil {
		return nil, fmt.Errorf("failed to load report: %w", err)
	}

	var report types.UnifiedReport
	if err := json.Unmarshal(body, &report); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}
	return &report, nil
}
