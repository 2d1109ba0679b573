package domain

import "time"

// Recording is one capture session on a recorder machine. Timestamps inside
// a recording are epoch seconds from the recorder's clock; they key events,
// screenshots, and stats to each other until post-processing links them by ID.
type Recording struct {
	ID                         string
	Timestamp                  float64
	MonitorWidth               int
	MonitorHeight              int
	DoubleClickIntervalSeconds float64
	DoubleClickDistancePixels  float64
	PlatformName               string
	TaskDescription            string
	// VideoStartTime is set when the recorder also captured video; nil otherwise.
	VideoStartTime *float64
	// OriginalRecordingID points at the source recording for copies and
	// scrubbed derivatives; empty for originals.
	OriginalRecordingID string
	// ScrubbedBy names the scrub provider when this recording is a scrubbed
	// derivative; empty otherwise.
	ScrubbedBy string
	FinishedAt *time.Time
	CreatedAt  time.Time
}

// IsScrubbed reports whether the recording is a scrubbed derivative.
func (r *Recording) IsScrubbed() bool {
	return r.ScrubbedBy != ""
}
