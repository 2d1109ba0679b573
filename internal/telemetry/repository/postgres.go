package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"gui-replay/backend/internal/telemetry/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a capture-event repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Save persists the capture event to the database. It sets e.ID on success.
func (r *PostgresRepository) Save(ctx context.Context, e *domain.CaptureEvent) error {
	row := r.db.QueryRowContext(ctx, `INSERT INTO capture_events
		(recording_id, client_id, event_type, source, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		strToNull(e.RecordingID), strToNull(e.ClientID), e.EventType, e.Source,
		metadataOrEmpty(e.Metadata), e.CreatedAt)
	return row.Scan(&e.ID)
}

// ListByRecording returns capture events for the given recording, paginated by limit and offset.
// Returns (nil, error) only on database errors.
func (r *PostgresRepository) ListByRecording(ctx context.Context, recordingID string, limit, offset int32) ([]*domain.CaptureEvent, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, recording_id, client_id, event_type, source, metadata, created_at
		FROM capture_events WHERE recording_id = $1 ORDER BY created_at, id LIMIT $2 OFFSET $3`,
		recordingID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.CaptureEvent
	for rows.Next() {
		e, err := scanCaptureEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCaptureEvent(row rowScanner) (*domain.CaptureEvent, error) {
	var e domain.CaptureEvent
	var recordingID, clientID sql.NullString
	var metadata []byte
	err := row.Scan(&e.ID, &recordingID, &clientID, &e.EventType, &e.Source, &metadata, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	if recordingID.Valid {
		e.RecordingID = recordingID.String
	}
	if clientID.Valid {
		e.ClientID = clientID.String
	}
	if metadata == nil {
		metadata = []byte("{}")
	}
	e.Metadata = json.RawMessage(metadata)
	return &e, nil
}

func strToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func metadataOrEmpty(b json.RawMessage) json.RawMessage {
	if len(b) == 0 {
		return json.RawMessage("{}")
	}
	return b
}
