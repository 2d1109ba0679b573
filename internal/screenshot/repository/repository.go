package repository

import (
	"context"

	"gui-replay/backend/internal/screenshot/domain"
)

// Repository defines persistence for screenshots.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Screenshot, error)
	// ListByRecording returns screenshots ordered by capture time. PNG
	// payloads are included; callers listing metadata only should use
	// ListTimestamps.
	ListByRecording(ctx context.Context, recordingID string) ([]*domain.Screenshot, error)
	ListTimestamps(ctx context.Context, recordingID string) (map[float64]string, error)
	Create(ctx context.Context, screenshots []*domain.Screenshot) error
	UpdateDiff(ctx context.Context, id string, diff, diffMask []byte) error
}
