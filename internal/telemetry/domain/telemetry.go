package domain

import (
	"encoding/json"
	"time"
)

// CaptureEvent is a telemetry event describing capture-pipeline activity
// (recording started, screenshots ingested, scrub completed, locate round).
// The JSON form is the Kafka message payload.
type CaptureEvent struct {
	ID          int64           `json:"id,omitempty"`
	RecordingID string          `json:"recordingId,omitempty"`
	ClientID    string          `json:"clientId,omitempty"`
	EventType   string          `json:"eventType"`
	Source      string          `json:"source,omitempty"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}
