package repository

import (
	"context"
	"database/sql"

	"gui-replay/backend/internal/stats/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a stats repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// CreatePerformanceStats inserts the stats in one transaction.
func (r *PostgresRepository) CreatePerformanceStats(ctx context.Context, stats []*domain.PerformanceStat) error {
	if len(stats) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO performance_stats
		(id, recording_id, event_type, start_time, end_time) VALUES ($1, $2, $3, $4, $5)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range stats {
		if _, err := stmt.ExecContext(ctx, s.ID, s.RecordingID, s.EventType, s.StartTime, s.EndTime); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListPerformanceStats returns the recording's performance stats ordered by start time.
func (r *PostgresRepository) ListPerformanceStats(ctx context.Context, recordingID string) ([]*domain.PerformanceStat, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, recording_id, event_type, start_time, end_time
		FROM performance_stats WHERE recording_id = $1 ORDER BY start_time`, recordingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.PerformanceStat
	for rows.Next() {
		var s domain.PerformanceStat
		if err := rows.Scan(&s.ID, &s.RecordingID, &s.EventType, &s.StartTime, &s.EndTime); err != nil {
			return nil, err
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}

// CreateMemoryStats inserts the stats in one transaction.
func (r *PostgresRepository) CreateMemoryStats(ctx context.Context, stats []*domain.MemoryStat) error {
	if len(stats) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO memory_stats
		(id, recording_id, ts, usage_bytes) VALUES ($1, $2, $3, $4)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range stats {
		if _, err := stmt.ExecContext(ctx, s.ID, s.RecordingID, s.Timestamp, s.UsageBytes); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListMemoryStats returns the recording's memory samples ordered by time.
func (r *PostgresRepository) ListMemoryStats(ctx context.Context, recordingID string) ([]*domain.MemoryStat, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, recording_id, ts, usage_bytes
		FROM memory_stats WHERE recording_id = $1 ORDER BY ts`, recordingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.MemoryStat
	for rows.Next() {
		var s domain.MemoryStat
		if err := rows.Scan(&s.ID, &s.RecordingID, &s.Timestamp, &s.UsageBytes); err != nil {
			return nil, err
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}
