package repository

import (
	"context"
	"database/sql"
	"errors"

	"gui-replay/backend/internal/screenshot/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a screenshot repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the screenshot for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Screenshot, error) {
	var s domain.Screenshot
	err := r.db.QueryRowContext(ctx, `SELECT id, recording_id, ts, png, diff, diff_mask
		FROM screenshots WHERE id = $1`, id).
		Scan(&s.ID, &s.RecordingID, &s.Timestamp, &s.PNG, &s.Diff, &s.DiffMask)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// ListByRecording returns the recording's screenshots ordered by capture time.
func (r *PostgresRepository) ListByRecording(ctx context.Context, recordingID string) ([]*domain.Screenshot, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, recording_id, ts, png, diff, diff_mask
		FROM screenshots WHERE recording_id = $1 ORDER BY ts`, recordingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Screenshot
	for rows.Next() {
		var s domain.Screenshot
		if err := rows.Scan(&s.ID, &s.RecordingID, &s.Timestamp, &s.PNG, &s.Diff, &s.DiffMask); err != nil {
			return nil, err
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}

// ListTimestamps maps capture timestamps to screenshot IDs without loading
// image payloads.
func (r *PostgresRepository) ListTimestamps(ctx context.Context, recordingID string) (map[float64]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, ts FROM screenshots WHERE recording_id = $1`, recordingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[float64]string{}
	for rows.Next() {
		var id string
		var ts float64
		if err := rows.Scan(&id, &ts); err != nil {
			return nil, err
		}
		out[ts] = id
	}
	return out, rows.Err()
}

// Create inserts the screenshots in one transaction.
func (r *PostgresRepository) Create(ctx context.Context, screenshots []*domain.Screenshot) error {
	if len(screenshots) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO screenshots (id, recording_id, ts, png, diff, diff_mask)
		VALUES ($1, $2, $3, $4, $5, $6)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range screenshots {
		if _, err := stmt.ExecContext(ctx, s.ID, s.RecordingID, s.Timestamp, s.PNG, s.Diff, s.DiffMask); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// UpdateDiff stores the derived diff images for a screenshot.
func (r *PostgresRepository) UpdateDiff(ctx context.Context, id string, diff, diffMask []byte) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE screenshots SET diff = $2, diff_mask = $3 WHERE id = $1`, id, diff, diffMask)
	return err
}
