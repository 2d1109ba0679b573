package telemetry

import (
	"context"

	"gui-replay/backend/internal/telemetry/domain"
)

// EventEmitter emits capture events (e.g. to OTel Logs). Best-effort; callers log and ignore errors.
type EventEmitter interface {
	Emit(ctx context.Context, event *domain.CaptureEvent) error
}
