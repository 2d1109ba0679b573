package engine

import (
	"context"

	recordingdomain "gui-replay/backend/internal/recording/domain"
)

// Result holds the outcome of privacy policy evaluation for a recording.
type Result struct {
	// ScrubRequired means the recording must be scrubbed before export.
	ScrubRequired bool
	// ExportAllowed means the recording may leave the store at all.
	ExportAllowed bool
	// RetentionDays is how long the recording may be kept.
	RetentionDays int
}

// Evaluator evaluates privacy policy using OPA or other engines.
type Evaluator interface {
	// Evaluate decides scrub and export handling for the given recording.
	Evaluate(ctx context.Context, recording *recordingdomain.Recording) (Result, error)
}
