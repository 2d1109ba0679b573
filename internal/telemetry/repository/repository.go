package repository

import (
	"context"

	"gui-replay/backend/internal/telemetry/domain"
)

// Repository defines persistence for capture events.
type Repository interface {
	Save(ctx context.Context, e *domain.CaptureEvent) error
	ListByRecording(ctx context.Context, recordingID string, limit, offset int32) ([]*domain.CaptureEvent, error)
}
