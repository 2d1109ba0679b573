package domain

// PerformanceStat measures one timed operation during capture or
// localization, keyed by event type.
type PerformanceStat struct {
	ID          string
	RecordingID string
	EventType   string
	StartTime   float64
	EndTime     float64
}

// Duration returns the measured interval in seconds.
func (p *PerformanceStat) Duration() float64 {
	return p.EndTime - p.StartTime
}

// MemoryStat samples the recorder process memory during capture.
type MemoryStat struct {
	ID          string
	RecordingID string
	Timestamp   float64
	UsageBytes  int64
}
