package privacy

import (
	"context"
	"strings"
	"testing"

	"gui-replay/backend/internal/event"
	eventdomain "gui-replay/backend/internal/event/domain"
	"gui-replay/backend/internal/privacy/engine"
	"gui-replay/backend/internal/privacy/repository"
	"gui-replay/backend/internal/recording"
	recordingdomain "gui-replay/backend/internal/recording/domain"
	"gui-replay/backend/internal/screenshot"
	screenshotdomain "gui-replay/backend/internal/screenshot/domain"
)

type memRecordings struct {
	byID map[string]*recordingdomain.Recording
}

func (m *memRecordings) GetByID(_ context.Context, id string) (*recordingdomain.Recording, error) {
	return m.byID[id], nil
}
func (m *memRecordings) GetByTimestamp(_ context.Context, _ float64) (*recordingdomain.Recording, error) {
	return nil, nil
}
func (m *memRecordings) GetLatest(_ context.Context) (*recordingdomain.Recording, error) {
	return nil, nil
}
func (m *memRecordings) List(_ context.Context, _, _ int32) ([]*recordingdomain.Recording, error) {
	return nil, nil
}
func (m *memRecordings) ListScrubbed(_ context.Context) ([]*recordingdomain.Recording, error) {
	return nil, nil
}
func (m *memRecordings) Create(_ context.Context, r *recordingdomain.Recording) error {
	m.byID[r.ID] = r
	return nil
}
func (m *memRecordings) UpdateVideoStartTime(_ context.Context, _ string, _ float64) error {
	return nil
}
func (m *memRecordings) UpdateTaskDescription(_ context.Context, id, desc string) error {
	m.byID[id].TaskDescription = desc
	return nil
}
func (m *memRecordings) MarkScrubbed(_ context.Context, id, provider string) error {
	m.byID[id].ScrubbedBy = provider
	return nil
}
func (m *memRecordings) Finish(_ context.Context, _ string) error { return nil }
func (m *memRecordings) Delete(_ context.Context, id string) error {
	delete(m.byID, id)
	return nil
}

type memEvents struct {
	actions []*eventdomain.ActionEvent
	windows []*eventdomain.WindowEvent
}

func (m *memEvents) CreateActionEvents(_ context.Context, events []*eventdomain.ActionEvent) error {
	m.actions = append(m.actions, events...)
	return nil
}
func (m *memEvents) ListActionEvents(_ context.Context, recordingID string) ([]*eventdomain.ActionEvent, error) {
	var out []*eventdomain.ActionEvent
	for _, e := range m.actions {
		if e.RecordingID == recordingID && e.ParentID == nil {
			out = append(out, e)
		}
	}
	return out, nil
}
func (m *memEvents) ListActionEventChildren(_ context.Context, parentID string) ([]*eventdomain.ActionEvent, error) {
	var out []*eventdomain.ActionEvent
	for _, e := range m.actions {
		if e.ParentID != nil && *e.ParentID == parentID {
			out = append(out, e)
		}
	}
	return out, nil
}
func (m *memEvents) CountActionEvents(_ context.Context, _ string) (int64, error) { return 0, nil }
func (m *memEvents) DeleteActionEvents(_ context.Context, _ []string) error       { return nil }
func (m *memEvents) LinkActionEvent(_ context.Context, _ string, _, _ *string) error {
	return nil
}
func (m *memEvents) ClearElementState(_ context.Context, recordingID string) error {
	for _, e := range m.actions {
		if e.RecordingID == recordingID {
			e.ElementState = nil
		}
	}
	return nil
}
func (m *memEvents) CreateWindowEvents(_ context.Context, events []*eventdomain.WindowEvent) error {
	m.windows = append(m.windows, events...)
	return nil
}
func (m *memEvents) ListWindowEvents(_ context.Context, recordingID string) ([]*eventdomain.WindowEvent, error) {
	var out []*eventdomain.WindowEvent
	for _, e := range m.windows {
		if e.RecordingID == recordingID {
			out = append(out, e)
		}
	}
	return out, nil
}
func (m *memEvents) UpdateWindowEventTitle(_ context.Context, id, title string) error {
	for _, e := range m.windows {
		if e.ID == id {
			e.Title = title
		}
	}
	return nil
}

type memScreenshots struct {
	shots []*screenshotdomain.Screenshot
}

func (m *memScreenshots) GetByID(_ context.Context, _ string) (*screenshotdomain.Screenshot, error) {
	return nil, nil
}
func (m *memScreenshots) ListByRecording(_ context.Context, recordingID string) ([]*screenshotdomain.Screenshot, error) {
	var out []*screenshotdomain.Screenshot
	for _, s := range m.shots {
		if s.RecordingID == recordingID {
			out = append(out, s)
		}
	}
	return out, nil
}
func (m *memScreenshots) ListTimestamps(_ context.Context, recordingID string) (map[float64]string, error) {
	out := map[float64]string{}
	for _, s := range m.shots {
		if s.RecordingID == recordingID {
			out[s.Timestamp] = s.ID
		}
	}
	return out, nil
}
func (m *memScreenshots) Create(_ context.Context, shots []*screenshotdomain.Screenshot) error {
	m.shots = append(m.shots, shots...)
	return nil
}
func (m *memScreenshots) UpdateDiff(_ context.Context, _ string, _, _ []byte) error { return nil }

type memLedger struct {
	entries []*repository.ScrubbedRecording
}

func (m *memLedger) Create(_ context.Context, s *repository.ScrubbedRecording) error {
	m.entries = append(m.entries, s)
	return nil
}
func (m *memLedger) GetByRecordingID(_ context.Context, recordingID string) (*repository.ScrubbedRecording, error) {
	for _, e := range m.entries {
		if e.RecordingID == recordingID {
			return e, nil
		}
	}
	return nil, nil
}
func (m *memLedger) List(_ context.Context) ([]*repository.ScrubbedRecording, error) {
	return m.entries, nil
}

// fakeScrubber redacts one known name with a marker.
type fakeScrubber struct{}

func (fakeScrubber) Name() string { return "FAKE" }
func (fakeScrubber) ScrubText(_ context.Context, text string) (string, error) {
	return strings.ReplaceAll(text, "John", "[NAME_1]"), nil
}

func TestScrubRecording(t *testing.T) {
	recordings := &memRecordings{byID: map[string]*recordingdomain.Recording{
		"rec-1": {
			ID: "rec-1", MonitorWidth: 800, MonitorHeight: 600,
			TaskDescription: "email John about the report",
		},
	}}
	events := &memEvents{
		actions: []*eventdomain.ActionEvent{
			{ID: "e1", RecordingID: "rec-1", Name: eventdomain.ActionClick, ElementState: []byte(`{"text":"John"}`)},
		},
		windows: []*eventdomain.WindowEvent{
			{ID: "w1", RecordingID: "rec-1", Title: "Inbox - John"},
			{ID: "w2", RecordingID: "rec-1", Title: "Terminal"},
		},
	}
	shots := &memScreenshots{}
	ledger := &memLedger{}

	recSvc := recording.NewService(recordings, events, shots,
		event.NewService(events, nil), screenshot.NewService(shots))
	svc := NewService(recordings, recSvc, events, ledger, fakeScrubber{}, engine.NewOPAEvaluator(nil, 0))

	cp, err := svc.ScrubRecording(context.Background(), "rec-1")
	if err != nil {
		t.Fatalf("ScrubRecording: %v", err)
	}

	if cp.ID == "rec-1" {
		t.Fatal("scrub should operate on a copy")
	}
	if cp.ScrubbedBy != "FAKE" {
		t.Errorf("scrubbed by = %q, want FAKE", cp.ScrubbedBy)
	}
	if cp.TaskDescription != "email [NAME_1] about the report" {
		t.Errorf("task description = %q", cp.TaskDescription)
	}

	// Source untouched.
	src := recordings.byID["rec-1"]
	if src.TaskDescription != "email John about the report" || src.ScrubbedBy != "" {
		t.Error("source recording was modified")
	}

	copiedWindows, _ := events.ListWindowEvents(context.Background(), cp.ID)
	titles := map[string]bool{}
	for _, w := range copiedWindows {
		titles[w.Title] = true
	}
	if !titles["Inbox - [NAME_1]"] || !titles["Terminal"] {
		t.Errorf("window titles = %v", titles)
	}

	copiedActions, _ := events.ListActionEvents(context.Background(), cp.ID)
	if len(copiedActions) != 1 {
		t.Fatalf("copied actions = %d, want 1", len(copiedActions))
	}
	if copiedActions[0].ElementState != nil {
		t.Error("element state not cleared on the copy")
	}

	if len(ledger.entries) != 1 {
		t.Fatalf("ledger entries = %d, want 1", len(ledger.entries))
	}
	if ledger.entries[0].OriginalRecordingID != "rec-1" || ledger.entries[0].RecordingID != cp.ID {
		t.Errorf("ledger entry = %+v", ledger.entries[0])
	}
}

func TestScrubRecording_RejectsAlreadyScrubbed(t *testing.T) {
	recordings := &memRecordings{byID: map[string]*recordingdomain.Recording{
		"rec-2": {ID: "rec-2", ScrubbedBy: "FAKE"},
	}}
	events := &memEvents{}
	shots := &memScreenshots{}
	recSvc := recording.NewService(recordings, events, shots,
		event.NewService(events, nil), screenshot.NewService(shots))
	svc := NewService(recordings, recSvc, events, &memLedger{}, fakeScrubber{}, engine.NewOPAEvaluator(nil, 0))

	if _, err := svc.ScrubRecording(context.Background(), "rec-2"); err == nil {
		t.Fatal("expected error for already-scrubbed recording")
	}
}

func TestScrubRecording_UnknownRecording(t *testing.T) {
	recordings := &memRecordings{byID: map[string]*recordingdomain.Recording{}}
	events := &memEvents{}
	shots := &memScreenshots{}
	recSvc := recording.NewService(recordings, events, shots,
		event.NewService(events, nil), screenshot.NewService(shots))
	svc := NewService(recordings, recSvc, events, &memLedger{}, fakeScrubber{}, engine.NewOPAEvaluator(nil, 0))

	if _, err := svc.ScrubRecording(context.Background(), "missing"); err == nil {
		t.Fatal("expected error for unknown recording")
	}
}

func TestCheckExport(t *testing.T) {
	recordings := &memRecordings{byID: map[string]*recordingdomain.Recording{
		"rec-1": {ID: "rec-1"},
		"rec-2": {ID: "rec-2", ScrubbedBy: "FAKE", OriginalRecordingID: "rec-1"},
	}}
	events := &memEvents{}
	shots := &memScreenshots{}
	recSvc := recording.NewService(recordings, events, shots,
		event.NewService(events, nil), screenshot.NewService(shots))
	svc := NewService(recordings, recSvc, events, &memLedger{}, fakeScrubber{}, engine.NewOPAEvaluator(nil, 0))

	res, err := svc.CheckExport(context.Background(), "rec-1")
	if err != nil {
		t.Fatalf("CheckExport: %v", err)
	}
	if res.ExportAllowed {
		t.Error("export of unscrubbed recording should be denied")
	}
	res, err = svc.CheckExport(context.Background(), "rec-2")
	if err != nil {
		t.Fatalf("CheckExport: %v", err)
	}
	if !res.ExportAllowed {
		t.Error("export of scrubbed recording should be allowed")
	}
}
