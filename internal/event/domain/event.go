package domain

// Action event names used by recorders.
const (
	ActionPress       = "press"
	ActionRelease     = "release"
	ActionMove        = "move"
	ActionClick       = "click"
	ActionScroll      = "scroll"
	ActionDoubleclick = "doubleclick"
	ActionSingleclick = "singleclick"
	ActionType        = "type"
)

// ActionEvent is one input event inside a recording. Mouse fields are set
// for pointer events, key fields for keyboard events. Screenshot and window
// event references start as recorder timestamps and are resolved to IDs by
// post-processing.
type ActionEvent struct {
	ID          string
	RecordingID string
	Name        string
	Timestamp   float64

	MouseX          *float64
	MouseY          *float64
	MouseDX         *float64
	MouseDY         *float64
	MouseButtonName string
	MousePressed    *bool

	KeyName string
	KeyChar string
	KeyVK   string
	// Canonical key fields are layout-independent; stop-sequence filtering
	// and replay compare these.
	CanonicalKeyName string
	CanonicalKeyChar string
	CanonicalKeyVK   string

	// ElementState carries the recorder's accessibility snapshot as JSON.
	ElementState []byte

	// ParentID groups merged events (e.g. presses folded into a type event).
	ParentID *string

	ScreenshotTimestamp  *float64
	WindowEventTimestamp *float64
	ScreenshotID         *string
	WindowEventID        *string
}

// WindowEvent is a foreground window change inside a recording.
type WindowEvent struct {
	ID          string
	RecordingID string
	Timestamp   float64
	Title       string
	Left        int
	Top         int
	Width       int
	Height      int
	// State carries the recorder's full window snapshot as JSON.
	State []byte
}
