package repository

import (
	"context"
	"database/sql"
	"errors"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a scrub ledger repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create persists the scrub record.
func (r *PostgresRepository) Create(ctx context.Context, s *ScrubbedRecording) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO scrubbed_recordings
		(id, recording_id, original_recording_id, provider, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		s.ID, s.RecordingID, s.OriginalRecordingID, s.Provider, s.CreatedAt)
	return err
}

// GetByRecordingID returns the scrub record for the produced recording, or
// nil if the recording is not a scrub product.
func (r *PostgresRepository) GetByRecordingID(ctx context.Context, recordingID string) (*ScrubbedRecording, error) {
	var s ScrubbedRecording
	err := r.db.QueryRowContext(ctx, `SELECT id, recording_id, original_recording_id, provider, created_at
		FROM scrubbed_recordings WHERE recording_id = $1`, recordingID).
		Scan(&s.ID, &s.RecordingID, &s.OriginalRecordingID, &s.Provider, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// List returns all scrub records, newest first.
func (r *PostgresRepository) List(ctx context.Context) ([]*ScrubbedRecording, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, recording_id, original_recording_id, provider, created_at
		FROM scrubbed_recordings ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*ScrubbedRecording
	for rows.Next() {
		var s ScrubbedRecording
		if err := rows.Scan(&s.ID, &s.RecordingID, &s.OriginalRecordingID, &s.Provider, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}
