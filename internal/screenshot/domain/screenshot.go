package domain

// Screenshot is one captured frame of a recording, stored as PNG. Diff and
// DiffMask are derived against the previous frame by post-processing and are
// empty until then.
type Screenshot struct {
	ID          string
	RecordingID string
	Timestamp   float64
	PNG         []byte
	Diff        []byte
	DiffMask    []byte
}
