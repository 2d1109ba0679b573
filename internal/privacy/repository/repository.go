package repository

import (
	"context"
	"time"
)

// ScrubbedRecording records one completed scrub: which recording was
// produced, from what source, and by which provider.
type ScrubbedRecording struct {
	ID                  string
	RecordingID         string
	OriginalRecordingID string
	Provider            string
	CreatedAt           time.Time
}

// Repository defines persistence for the scrub ledger.
type Repository interface {
	Create(ctx context.Context, s *ScrubbedRecording) error
	GetByRecordingID(ctx context.Context, recordingID string) (*ScrubbedRecording, error)
	List(ctx context.Context) ([]*ScrubbedRecording, error)
}
