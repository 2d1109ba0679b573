package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gui-replay/backend/internal/recording/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a recording repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const recordingColumns = `id, ts, monitor_width, monitor_height, double_click_interval_seconds,
	double_click_distance_pixels, platform_name, task_description, video_start_time,
	original_recording_id, scrubbed_by, finished_at, created_at`

// GetByID returns the recording for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Recording, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+recordingColumns+` FROM recordings WHERE id = $1`, id)
	return scanRecording(row)
}

// GetByTimestamp returns the recording whose capture timestamp matches, or nil if not found.
func (r *PostgresRepository) GetByTimestamp(ctx context.Context, timestamp float64) (*domain.Recording, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+recordingColumns+` FROM recordings WHERE ts = $1`, timestamp)
	return scanRecording(row)
}

// GetLatest returns the most recently captured recording, or nil when none exist.
func (r *PostgresRepository) GetLatest(ctx context.Context) (*domain.Recording, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+recordingColumns+` FROM recordings ORDER BY ts DESC LIMIT 1`)
	return scanRecording(row)
}

// List returns original recordings newest first with limit and offset.
// Scrubbed derivatives are excluded; use ListScrubbed for those.
func (r *PostgresRepository) List(ctx context.Context, limit, offset int32) ([]*domain.Recording, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+recordingColumns+` FROM recordings
		WHERE original_recording_id IS NULL ORDER BY ts DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecordings(rows)
}

// ListScrubbed returns all scrubbed derivative recordings.
func (r *PostgresRepository) ListScrubbed(ctx context.Context) ([]*domain.Recording, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+recordingColumns+` FROM recordings WHERE scrubbed_by <> '' ORDER BY ts DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecordings(rows)
}

// Create persists the recording. The recording must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, rec *domain.Recording) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO recordings (`+recordingColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		rec.ID, rec.Timestamp, rec.MonitorWidth, rec.MonitorHeight,
		rec.DoubleClickIntervalSeconds, rec.DoubleClickDistancePixels,
		rec.PlatformName, rec.TaskDescription, floatToNull(rec.VideoStartTime),
		nullIfEmpty(rec.OriginalRecordingID), rec.ScrubbedBy,
		timeToNullTime(rec.FinishedAt), rec.CreatedAt)
	return err
}

// UpdateVideoStartTime sets the video start time once the recorder reports it.
func (r *PostgresRepository) UpdateVideoStartTime(ctx context.Context, id string, videoStartTime float64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE recordings SET video_start_time = $2 WHERE id = $1`, id, videoStartTime)
	return err
}

// UpdateTaskDescription replaces the recording's task description.
func (r *PostgresRepository) UpdateTaskDescription(ctx context.Context, id string, taskDescription string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE recordings SET task_description = $2 WHERE id = $1`, id, taskDescription)
	return err
}

// MarkScrubbed records which provider scrubbed the recording.
func (r *PostgresRepository) MarkScrubbed(ctx context.Context, id string, provider string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE recordings SET scrubbed_by = $2 WHERE id = $1`, id, provider)
	return err
}

// Finish marks the recording as complete.
func (r *PostgresRepository) Finish(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE recordings SET finished_at = $2 WHERE id = $1`, id, time.Now())
	return err
}

// Delete removes the recording; dependent rows cascade.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM recordings WHERE id = $1`, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecording(row rowScanner) (*domain.Recording, error) {
	var rec domain.Recording
	var videoStart sql.NullFloat64
	var original sql.NullString
	var finished sql.NullTime
	err := row.Scan(&rec.ID, &rec.Timestamp, &rec.MonitorWidth, &rec.MonitorHeight,
		&rec.DoubleClickIntervalSeconds, &rec.DoubleClickDistancePixels,
		&rec.PlatformName, &rec.TaskDescription, &videoStart,
		&original, &rec.ScrubbedBy, &finished, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if videoStart.Valid {
		rec.VideoStartTime = &videoStart.Float64
	}
	if original.Valid {
		rec.OriginalRecordingID = original.String
	}
	if finished.Valid {
		rec.FinishedAt = &finished.Time
	}
	return &rec, nil
}

func scanRecordings(rows *sql.Rows) ([]*domain.Recording, error) {
	var out []*domain.Recording
	for rows.Next() {
		rec, err := scanRecording(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func timeToNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func floatToNull(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
