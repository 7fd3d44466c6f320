package postgres

import (
	"context"
	"fmt"

	"github.com/samirrijal/reproj/internal/core/domain"
)

// TransformEventRepo implements ports.TransformEventRepository.
type TransformEventRepo struct {
	db *DB
}

func NewTransformEventRepo(db *DB) *TransformEventRepo {
	return &TransformEventRepo{db: db}
}

// Insert stores an event. Redelivered events are ignored.
func (r *TransformEventRepo) Insert(ctx context.Context, e *domain.TransformEvent) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO transform_events
			(id, request_id, zone, dest, origin, strategy, pairs, success, error, duration_ms, time)
		VALUES ($1::text::uuid, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO NOTHING
	`, e.ID, nilIfEmpty(e.RequestID), e.Zone, e.Dest, string(e.Origin), e.Strategy,
		e.Pairs, e.Success, nilIfEmpty(e.Error), e.DurationMs, e.Time)
	return err
}

func (r *TransformEventRepo) Stats(ctx context.Context) (*domain.AuditStats, error) {
	stats := &domain.AuditStats{ByZone: map[string]int64{}}

	err := r.db.Pool.QueryRow(ctx, `
		SELECT count(*),
		       COALESCE(sum(pairs), 0),
		       count(*) FILTER (WHERE NOT success),
		       max(time)
		FROM transform_events
	`).Scan(&stats.Requests, &stats.Pairs, &stats.Failures, &stats.Last)
	if err != nil {
		return nil, fmt.Errorf("event totals: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT zone, count(*) FROM transform_events GROUP BY zone ORDER BY zone
	`)
	if err != nil {
		return nil, fmt.Errorf("events by zone: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var zone string
		var n int64
		if err := rows.Scan(&zone, &n); err != nil {
			return nil, err
		}
		stats.ByZone[zone] = n
	}
	return stats, rows.Err()
}
