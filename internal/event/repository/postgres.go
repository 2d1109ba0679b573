package repository

import (
	"context"
	"database/sql"

	"gui-replay/backend/internal/event/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an event repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const actionEventColumns = `id, recording_id, name, ts, mouse_x, mouse_y, mouse_dx, mouse_dy,
	mouse_button_name, mouse_pressed, key_name, key_char, key_vk,
	canonical_key_name, canonical_key_char, canonical_key_vk,
	element_state, parent_id, screenshot_ts, window_event_ts, screenshot_id, window_event_id`

// CreateActionEvents inserts the events in one transaction so a failed batch
// leaves no partial recording behind.
func (r *PostgresRepository) CreateActionEvents(ctx context.Context, events []*domain.ActionEvent) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO action_events (`+actionEventColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range events {
		var state any
		if len(e.ElementState) > 0 {
			state = e.ElementState
		}
		_, err := stmt.ExecContext(ctx,
			e.ID, e.RecordingID, e.Name, e.Timestamp,
			floatToNull(e.MouseX), floatToNull(e.MouseY), floatToNull(e.MouseDX), floatToNull(e.MouseDY),
			e.MouseButtonName, boolToNull(e.MousePressed),
			e.KeyName, e.KeyChar, e.KeyVK,
			e.CanonicalKeyName, e.CanonicalKeyChar, e.CanonicalKeyVK,
			state, strToNull(e.ParentID),
			floatToNull(e.ScreenshotTimestamp), floatToNull(e.WindowEventTimestamp),
			strToNull(e.ScreenshotID), strToNull(e.WindowEventID))
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListActionEvents returns the recording's top-level action events ordered by
// capture time. Children of merged events are excluded; fetch them with
// ListActionEventChildren.
func (r *PostgresRepository) ListActionEvents(ctx context.Context, recordingID string) ([]*domain.ActionEvent, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+actionEventColumns+` FROM action_events
		WHERE recording_id = $1 AND parent_id IS NULL ORDER BY ts`, recordingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanActionEvents(rows)
}

// ListActionEventChildren returns the events folded into the given parent.
func (r *PostgresRepository) ListActionEventChildren(ctx context.Context, parentID string) ([]*domain.ActionEvent, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+actionEventColumns+` FROM action_events
		WHERE parent_id = $1 ORDER BY ts`, parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanActionEvents(rows)
}

// CountActionEvents returns the number of action events in the recording.
func (r *PostgresRepository) CountActionEvents(ctx context.Context, recordingID string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM action_events WHERE recording_id = $1`, recordingID).Scan(&n)
	return n, err
}

// DeleteActionEvents removes the given events and their children.
func (r *PostgresRepository) DeleteActionEvents(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, id := range ids {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM action_events WHERE id = $1 OR parent_id = $1`, id); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// LinkActionEvent resolves an event's screenshot and window event references.
func (r *PostgresRepository) LinkActionEvent(ctx context.Context, id string, screenshotID, windowEventID *string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE action_events
		SET screenshot_id = $2, window_event_id = $3 WHERE id = $1`,
		id, strToNull(screenshotID), strToNull(windowEventID))
	return err
}

// ClearElementState drops the accessibility snapshots of every action event
// in the recording. Scrubbing uses this: snapshots embed arbitrary on-screen
// text that cannot be redacted field by field.
func (r *PostgresRepository) ClearElementState(ctx context.Context, recordingID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE action_events SET element_state = NULL WHERE recording_id = $1`, recordingID)
	return err
}

// CreateWindowEvents inserts the window events in one transaction.
func (r *PostgresRepository) CreateWindowEvents(ctx context.Context, events []*domain.WindowEvent) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO window_events
		(id, recording_id, ts, title, "left", top, width, height, state)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range events {
		var state any
		if len(e.State) > 0 {
			state = e.State
		}
		if _, err := stmt.ExecContext(ctx,
			e.ID, e.RecordingID, e.Timestamp, e.Title, e.Left, e.Top, e.Width, e.Height, state); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListWindowEvents returns the recording's window events ordered by capture time.
func (r *PostgresRepository) ListWindowEvents(ctx context.Context, recordingID string) ([]*domain.WindowEvent, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, recording_id, ts, title, "left", top, width, height, state
		FROM window_events WHERE recording_id = $1 ORDER BY ts`, recordingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.WindowEvent
	for rows.Next() {
		var e domain.WindowEvent
		var state []byte
		if err := rows.Scan(&e.ID, &e.RecordingID, &e.Timestamp, &e.Title,
			&e.Left, &e.Top, &e.Width, &e.Height, &state); err != nil {
			return nil, err
		}
		e.State = state
		out = append(out, &e)
	}
	return out, rows.Err()
}

// UpdateWindowEventTitle replaces a window event's title, used when scrubbing.
func (r *PostgresRepository) UpdateWindowEventTitle(ctx context.Context, id string, title string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE window_events SET title = $2 WHERE id = $1`, id, title)
	return err
}

func scanActionEvents(rows *sql.Rows) ([]*domain.ActionEvent, error) {
	var out []*domain.ActionEvent
	for rows.Next() {
		var e domain.ActionEvent
		var mouseX, mouseY, mouseDX, mouseDY, screenshotTS, windowTS sql.NullFloat64
		var pressed sql.NullBool
		var parentID, screenshotID, windowEventID sql.NullString
		var state []byte
		err := rows.Scan(&e.ID, &e.RecordingID, &e.Name, &e.Timestamp,
			&mouseX, &mouseY, &mouseDX, &mouseDY,
			&e.MouseButtonName, &pressed,
			&e.KeyName, &e.KeyChar, &e.KeyVK,
			&e.CanonicalKeyName, &e.CanonicalKeyChar, &e.CanonicalKeyVK,
			&state, &parentID, &screenshotTS, &windowTS, &screenshotID, &windowEventID)
		if err != nil {
			return nil, err
		}
		e.MouseX = nullToFloat(mouseX)
		e.MouseY = nullToFloat(mouseY)
		e.MouseDX = nullToFloat(mouseDX)
		e.MouseDY = nullToFloat(mouseDY)
		e.MousePressed = nullToBool(pressed)
		e.ElementState = state
		e.ParentID = nullToStr(parentID)
		e.ScreenshotTimestamp = nullToFloat(screenshotTS)
		e.WindowEventTimestamp = nullToFloat(windowTS)
		e.ScreenshotID = nullToStr(screenshotID)
		e.WindowEventID = nullToStr(windowEventID)
		out = append(out, &e)
	}
	return out, rows.Err()
}

func floatToNull(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func nullToFloat(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	return &n.Float64
}

func boolToNull(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}

func nullToBool(n sql.NullBool) *bool {
	if !n.Valid {
		return nil
	}
	return &n.Bool
}

func strToNull(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullToStr(n sql.NullString) *string {
	if !n.Valid {
		return nil
	}
	return &n.String
}
