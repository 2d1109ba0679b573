// Package privacy removes PII and PHI from recordings before they leave the
// store. A Scrubber redacts free text through a deidentification provider; a
// policy engine decides when a recording must be scrubbed before export.
package privacy

import "context"

// Scrubber redacts sensitive entities from text.
type Scrubber interface {
	// Name identifies the provider; it is stored on scrubbed recordings.
	Name() string
	// ScrubText returns text with every detected entity replaced by a
	// numbered marker.
	ScrubText(ctx context.Context, text string) (string, error)
}
