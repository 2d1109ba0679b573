package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gui-replay/backend/internal/event"
	eventdomain "gui-replay/backend/internal/event/domain"
	"gui-replay/backend/internal/privacy"
	"gui-replay/backend/internal/privacy/engine"
	privacyrepo "gui-replay/backend/internal/privacy/repository"
	"gui-replay/backend/internal/recording"
	"gui-replay/backend/internal/recording/domain"
	"gui-replay/backend/internal/screenshot"
	screenshotdomain "gui-replay/backend/internal/screenshot/domain"
	statsdomain "gui-replay/backend/internal/stats/domain"
	telemetrydomain "gui-replay/backend/internal/telemetry/domain"
)

type mockRecordingRepo struct {
	recordings map[string]*domain.Recording
}

func newMockRecordingRepo() *mockRecordingRepo {
	return &mockRecordingRepo{recordings: map[string]*domain.Recording{}}
}

func (m *mockRecordingRepo) GetByID(_ context.Context, id string) (*domain.Recording, error) {
	return m.recordings[id], nil
}

func (m *mockRecordingRepo) GetByTimestamp(_ context.Context, ts float64) (*domain.Recording, error) {
	for _, r := range m.recordings {
		if r.Timestamp == ts {
			return r, nil
		}
	}
	return nil, nil
}

func (m *mockRecordingRepo) GetLatest(_ context.Context) (*domain.Recording, error) {
	var latest *domain.Recording
	for _, r := range m.recordings {
		if latest == nil || r.Timestamp > latest.Timestamp {
			latest = r
		}
	}
	return latest, nil
}

func (m *mockRecordingRepo) List(_ context.Context, _, _ int32) ([]*domain.Recording, error) {
	var out []*domain.Recording
	for _, r := range m.recordings {
		out = append(out, r)
	}
	return out, nil
}

func (m *mockRecordingRepo) ListScrubbed(_ context.Context) ([]*domain.Recording, error) {
	var out []*domain.Recording
	for _, r := range m.recordings {
		if r.ScrubbedBy != "" {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockRecordingRepo) Create(_ context.Context, r *domain.Recording) error {
	m.recordings[r.ID] = r
	return nil
}

func (m *mockRecordingRepo) UpdateVideoStartTime(_ context.Context, id string, t float64) error {
	m.recordings[id].VideoStartTime = &t
	return nil
}

func (m *mockRecordingRepo) UpdateTaskDescription(_ context.Context, id, desc string) error {
	m.recordings[id].TaskDescription = desc
	return nil
}

func (m *mockRecordingRepo) MarkScrubbed(_ context.Context, id, provider string) error {
	m.recordings[id].ScrubbedBy = provider
	return nil
}

func (m *mockRecordingRepo) Finish(_ context.Context, id string) error { return nil }

func (m *mockRecordingRepo) Delete(_ context.Context, id string) error {
	delete(m.recordings, id)
	return nil
}

type mockEventRepo struct {
	actions []*eventdomain.ActionEvent
	windows []*eventdomain.WindowEvent
}

func (m *mockEventRepo) CreateActionEvents(_ context.Context, events []*eventdomain.ActionEvent) error {
	m.actions = append(m.actions, events...)
	return nil
}

func (m *mockEventRepo) ListActionEvents(_ context.Context, recordingID string) ([]*eventdomain.ActionEvent, error) {
	var out []*eventdomain.ActionEvent
	for _, e := range m.actions {
		if e.RecordingID == recordingID && e.ParentID == nil {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockEventRepo) ListActionEventChildren(_ context.Context, parentID string) ([]*eventdomain.ActionEvent, error) {
	var out []*eventdomain.ActionEvent
	for _, e := range m.actions {
		if e.ParentID != nil && *e.ParentID == parentID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockEventRepo) CountActionEvents(_ context.Context, recordingID string) (int64, error) {
	var n int64
	for _, e := range m.actions {
		if e.RecordingID == recordingID {
			n++
		}
	}
	return n, nil
}

func (m *mockEventRepo) DeleteActionEvents(_ context.Context, ids []string) error { return nil }

func (m *mockEventRepo) LinkActionEvent(_ context.Context, id string, screenshotID, windowEventID *string) error {
	return nil
}

func (m *mockEventRepo) ClearElementState(_ context.Context, recordingID string) error {
	for _, e := range m.actions {
		if e.RecordingID == recordingID {
			e.ElementState = nil
		}
	}
	return nil
}

func (m *mockEventRepo) CreateWindowEvents(_ context.Context, events []*eventdomain.WindowEvent) error {
	m.windows = append(m.windows, events...)
	return nil
}

func (m *mockEventRepo) ListWindowEvents(_ context.Context, recordingID string) ([]*eventdomain.WindowEvent, error) {
	var out []*eventdomain.WindowEvent
	for _, e := range m.windows {
		if e.RecordingID == recordingID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockEventRepo) UpdateWindowEventTitle(_ context.Context, id, title string) error {
	for _, e := range m.windows {
		if e.ID == id {
			e.Title = title
		}
	}
	return nil
}

type mockScreenshotRepo struct {
	shots []*screenshotdomain.Screenshot
}

func (m *mockScreenshotRepo) GetByID(_ context.Context, id string) (*screenshotdomain.Screenshot, error) {
	for _, s := range m.shots {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, nil
}

func (m *mockScreenshotRepo) ListByRecording(_ context.Context, recordingID string) ([]*screenshotdomain.Screenshot, error) {
	var out []*screenshotdomain.Screenshot
	for _, s := range m.shots {
		if s.RecordingID == recordingID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockScreenshotRepo) ListTimestamps(_ context.Context, recordingID string) (map[float64]string, error) {
	out := map[float64]string{}
	for _, s := range m.shots {
		if s.RecordingID == recordingID {
			out[s.Timestamp] = s.ID
		}
	}
	return out, nil
}

func (m *mockScreenshotRepo) Create(_ context.Context, shots []*screenshotdomain.Screenshot) error {
	m.shots = append(m.shots, shots...)
	return nil
}

func (m *mockScreenshotRepo) UpdateDiff(_ context.Context, id string, diff, diffMask []byte) error {
	return nil
}

type mockCaptureEventRepo struct {
	events []*telemetrydomain.CaptureEvent
}

func (m *mockCaptureEventRepo) Save(_ context.Context, e *telemetrydomain.CaptureEvent) error {
	m.events = append(m.events, e)
	return nil
}

func (m *mockCaptureEventRepo) ListByRecording(_ context.Context, recordingID string, _, _ int32) ([]*telemetrydomain.CaptureEvent, error) {
	var out []*telemetrydomain.CaptureEvent
	for _, e := range m.events {
		if e.RecordingID == recordingID {
			out = append(out, e)
		}
	}
	return out, nil
}

type mockStatsRepo struct {
	perf []*statsdomain.PerformanceStat
	mem  []*statsdomain.MemoryStat
}

func (m *mockStatsRepo) CreatePerformanceStats(_ context.Context, stats []*statsdomain.PerformanceStat) error {
	m.perf = append(m.perf, stats...)
	return nil
}

func (m *mockStatsRepo) ListPerformanceStats(_ context.Context, recordingID string) ([]*statsdomain.PerformanceStat, error) {
	return m.perf, nil
}

func (m *mockStatsRepo) CreateMemoryStats(_ context.Context, stats []*statsdomain.MemoryStat) error {
	m.mem = append(m.mem, stats...)
	return nil
}

func (m *mockStatsRepo) ListMemoryStats(_ context.Context, recordingID string) ([]*statsdomain.MemoryStat, error) {
	return m.mem, nil
}

type mockLedger struct {
	entries []*privacyrepo.ScrubbedRecording
}

func (m *mockLedger) Create(_ context.Context, e *privacyrepo.ScrubbedRecording) error {
	m.entries = append(m.entries, e)
	return nil
}

func (m *mockLedger) GetByRecordingID(_ context.Context, recordingID string) (*privacyrepo.ScrubbedRecording, error) {
	for _, e := range m.entries {
		if e.RecordingID == recordingID {
			return e, nil
		}
	}
	return nil, nil
}

func (m *mockLedger) List(_ context.Context) ([]*privacyrepo.ScrubbedRecording, error) {
	return m.entries, nil
}

type mockScrubber struct{}

func (mockScrubber) Name() string { return "test-scrubber" }

func (mockScrubber) ScrubText(_ context.Context, text string) (string, error) {
	return "[REDACTED]", nil
}

type fixedPolicy struct {
	result engine.Result
}

func (f fixedPolicy) Evaluate(_ context.Context, _ *domain.Recording) (engine.Result, error) {
	return f.result, nil
}

type handlerFixture struct {
	recordings *mockRecordingRepo
	events     *mockEventRepo
	shots      *mockScreenshotRepo
	stats      *mockStatsRepo
	capture    *mockCaptureEventRepo
	router     *gin.Engine
}

func newFixture(t *testing.T, policy engine.Result) *handlerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	recordings := newMockRecordingRepo()
	events := &mockEventRepo{}
	shots := &mockScreenshotRepo{}
	stats := &mockStatsRepo{}
	capture := &mockCaptureEventRepo{}

	recSvc := recording.NewService(recordings, events, shots,
		event.NewService(events, nil), screenshot.NewService(shots))
	privacySvc := privacy.NewService(recordings, recSvc, events, &mockLedger{},
		mockScrubber{}, fixedPolicy{result: policy})

	h := NewHandler(recordings, events, shots, stats, capture, recSvc, privacySvc)

	r := gin.New()
	r.POST("/v1/recordings", h.Start)
	r.GET("/v1/recordings", h.List)
	r.GET("/v1/recordings/latest", h.Latest)
	r.GET("/v1/recordings/:id", h.Get)
	r.DELETE("/v1/recordings/:id", h.Delete)
	r.POST("/v1/recordings/:id/finish", h.Finish)
	r.POST("/v1/recordings/:id/copy", h.Copy)
	r.POST("/v1/recordings/:id/scrub", h.Scrub)
	r.POST("/v1/recordings/:id/events", h.IngestEvents)
	r.GET("/v1/recordings/:id/events", h.ListEvents)
	r.POST("/v1/recordings/:id/window-events", h.IngestWindowEvents)
	r.GET("/v1/recordings/:id/window-events", h.ListWindowEvents)
	r.POST("/v1/recordings/:id/screenshots", h.IngestScreenshots)
	r.GET("/v1/recordings/:id/screenshots", h.ListScreenshots)
	r.POST("/v1/recordings/:id/stats", h.IngestStats)
	r.GET("/v1/recordings/:id/stats", h.ListStats)
	r.GET("/v1/recordings/:id/export", h.Export)
	r.GET("/v1/recordings/:id/capture-events", h.ListCaptureEvents)
	r.GET("/v1/screenshots/:id", h.GetScreenshot)
	r.GET("/v1/scrubs", h.ScrubHistory)

	return &handlerFixture{recordings: recordings, events: events, shots: shots,
		stats: stats, capture: capture, router: r}
}

func (f *handlerFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *handlerFixture) seedRecording() *domain.Recording {
	rec := &domain.Recording{
		ID:            uuid.NewString(),
		Timestamp:     100.5,
		MonitorWidth:  1920,
		MonitorHeight: 1080,
	}
	f.recordings.recordings[rec.ID] = rec
	return rec
}

func TestStart(t *testing.T) {
	f := newFixture(t, engine.Result{})
	w := f.do(t, http.MethodPost, "/v1/recordings", map[string]any{
		"timestamp":      42.0,
		"monitor_width":  1920,
		"monitor_height": 1080,
		"platform_name":  "linux",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp recordingResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.ID == "" || resp.MonitorWidth != 1920 {
		t.Errorf("unexpected response: %+v", resp)
	}
	if f.recordings.recordings[resp.ID] == nil {
		t.Error("recording not persisted")
	}
}

func TestStart_MissingDimensions(t *testing.T) {
	f := newFixture(t, engine.Result{})
	w := f.do(t, http.MethodPost, "/v1/recordings", map[string]any{"timestamp": 1.0})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestLatest(t *testing.T) {
	f := newFixture(t, engine.Result{})
	older := f.seedRecording()
	newer := &domain.Recording{ID: uuid.NewString(), Timestamp: older.Timestamp + 10,
		MonitorWidth: 1280, MonitorHeight: 720}
	f.recordings.recordings[newer.ID] = newer

	w := f.do(t, http.MethodGet, "/v1/recordings/latest", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp recordingResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.ID != newer.ID {
		t.Errorf("latest = %q, want %q", resp.ID, newer.ID)
	}
}

func TestLatest_Empty(t *testing.T) {
	f := newFixture(t, engine.Result{})
	w := f.do(t, http.MethodGet, "/v1/recordings/latest", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestListStats(t *testing.T) {
	f := newFixture(t, engine.Result{})
	rec := f.seedRecording()
	f.stats.perf = append(f.stats.perf, &statsdomain.PerformanceStat{
		ID: uuid.NewString(), RecordingID: rec.ID, EventType: "screenshot",
		StartTime: 1.0, EndTime: 1.5,
	})
	f.stats.mem = append(f.stats.mem, &statsdomain.MemoryStat{
		ID: uuid.NewString(), RecordingID: rec.ID, Timestamp: 1.0, UsageBytes: 2048,
	})

	w := f.do(t, http.MethodGet, "/v1/recordings/"+rec.ID+"/stats", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var body struct {
		Performance []struct {
			EventType string  `json:"event_type"`
			Duration  float64 `json:"duration"`
		} `json:"performance"`
		Memory []struct {
			UsageBytes int64 `json:"usage_bytes"`
		} `json:"memory"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(body.Performance) != 1 || body.Performance[0].Duration != 0.5 {
		t.Errorf("performance = %+v", body.Performance)
	}
	if len(body.Memory) != 1 || body.Memory[0].UsageBytes != 2048 {
		t.Errorf("memory = %+v", body.Memory)
	}
}

func TestGet_NotFound(t *testing.T) {
	f := newFixture(t, engine.Result{})
	w := f.do(t, http.MethodGet, "/v1/recordings/nope", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestList_ByTimestamp(t *testing.T) {
	f := newFixture(t, engine.Result{})
	rec := f.seedRecording()

	w := f.do(t, http.MethodGet, "/v1/recordings?timestamp=100.5", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var body struct {
		Recordings []recordingResponse `json:"recordings"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(body.Recordings) != 1 || body.Recordings[0].ID != rec.ID {
		t.Errorf("recordings = %+v, want just %s", body.Recordings, rec.ID)
	}

	w = f.do(t, http.MethodGet, "/v1/recordings?timestamp=999", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d for unknown timestamp", w.Code)
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(body.Recordings) != 0 {
		t.Errorf("recordings = %+v, want none", body.Recordings)
	}

	w = f.do(t, http.MethodGet, "/v1/recordings?timestamp=abc", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d for bad timestamp, want 400", w.Code)
	}
}

func TestList_ScrubbedOnly(t *testing.T) {
	f := newFixture(t, engine.Result{})
	f.seedRecording()
	scrubbed := &domain.Recording{ID: uuid.NewString(), Timestamp: 200,
		MonitorWidth: 1920, MonitorHeight: 1080, ScrubbedBy: "REGEX"}
	f.recordings.recordings[scrubbed.ID] = scrubbed

	w := f.do(t, http.MethodGet, "/v1/recordings?scrubbed=true", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var body struct {
		Recordings []recordingResponse `json:"recordings"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(body.Recordings) != 1 || body.Recordings[0].ID != scrubbed.ID {
		t.Errorf("recordings = %+v, want just the scrubbed one", body.Recordings)
	}
}

func TestFinish(t *testing.T) {
	f := newFixture(t, engine.Result{})
	rec := f.seedRecording()
	f.events.actions = append(f.events.actions, &eventdomain.ActionEvent{
		ID: uuid.NewString(), RecordingID: rec.ID, Name: "click", Timestamp: 101,
	})

	w := f.do(t, http.MethodPost, "/v1/recordings/"+rec.ID+"/finish", map[string]any{
		"video_start_time": 100.25,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var body struct {
		ActionEvents int64 `json:"action_events"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.ActionEvents != 1 {
		t.Errorf("action_events = %d, want 1", body.ActionEvents)
	}
	got := f.recordings.recordings[rec.ID].VideoStartTime
	if got == nil || *got != 100.25 {
		t.Errorf("video start time = %v, want 100.25", got)
	}
}

func TestDelete(t *testing.T) {
	f := newFixture(t, engine.Result{})
	rec := f.seedRecording()
	w := f.do(t, http.MethodDelete, "/v1/recordings/"+rec.ID, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}
	if f.recordings.recordings[rec.ID] != nil {
		t.Error("recording still present after delete")
	}
}

func TestIngestEvents_WithChildren(t *testing.T) {
	f := newFixture(t, engine.Result{})
	rec := f.seedRecording()
	w := f.do(t, http.MethodPost, "/v1/recordings/"+rec.ID+"/events", []map[string]any{
		{
			"name":      "click",
			"timestamp": 1.5,
			"mouse_x":   10.0,
			"mouse_y":   20.0,
			"children": []map[string]any{
				{"name": "press", "timestamp": 1.4},
				{"name": "release", "timestamp": 1.6},
			},
		},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if len(f.events.actions) != 3 {
		t.Fatalf("stored %d events, want 3", len(f.events.actions))
	}
	parent := f.events.actions[0]
	for _, child := range f.events.actions[1:] {
		if child.ParentID == nil || *child.ParentID != parent.ID {
			t.Errorf("child %s not linked to parent", child.Name)
		}
	}
}

func TestIngestWindowEvents(t *testing.T) {
	f := newFixture(t, engine.Result{})
	rec := f.seedRecording()
	w := f.do(t, http.MethodPost, "/v1/recordings/"+rec.ID+"/window-events", []map[string]any{
		{"timestamp": 2.0, "title": "Editor", "left": 0, "top": 0, "width": 800, "height": 600},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if len(f.events.windows) != 1 || f.events.windows[0].Title != "Editor" {
		t.Fatalf("windows = %+v", f.events.windows)
	}
}

func TestIngestScreenshots(t *testing.T) {
	f := newFixture(t, engine.Result{})
	rec := f.seedRecording()
	w := f.do(t, http.MethodPost, "/v1/recordings/"+rec.ID+"/screenshots", []map[string]any{
		{"timestamp": 3.0, "png": []byte{0x89, 0x50, 0x4e, 0x47}},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if len(f.shots.shots) != 1 {
		t.Fatalf("stored %d screenshots, want 1", len(f.shots.shots))
	}
	if f.shots.shots[0].Timestamp != 3.0 {
		t.Errorf("timestamp = %v", f.shots.shots[0].Timestamp)
	}
}

func TestIngestStats(t *testing.T) {
	f := newFixture(t, engine.Result{})
	rec := f.seedRecording()
	w := f.do(t, http.MethodPost, "/v1/recordings/"+rec.ID+"/stats", map[string]any{
		"performance": []map[string]any{
			{"event_type": "screenshot", "start_time": 1.0, "end_time": 1.2},
		},
		"memory": []map[string]any{
			{"timestamp": 1.0, "usage_bytes": 1048576},
		},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if len(f.stats.perf) != 1 || len(f.stats.mem) != 1 {
		t.Fatalf("perf = %d, mem = %d", len(f.stats.perf), len(f.stats.mem))
	}
}

func TestScrub_PolicyRequiresIt(t *testing.T) {
	f := newFixture(t, engine.Result{ScrubRequired: true, RetentionDays: 30})
	rec := f.seedRecording()
	rec.TaskDescription = "email john@example.com"

	w := f.do(t, http.MethodPost, "/v1/recordings/"+rec.ID+"/scrub", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp recordingResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.ID == rec.ID {
		t.Error("scrub returned the source recording instead of a copy")
	}
	if resp.TaskDescription != "[REDACTED]" {
		t.Errorf("task description = %q, want redacted", resp.TaskDescription)
	}
	if resp.ScrubbedBy != "test-scrubber" {
		t.Errorf("scrubbed_by = %q", resp.ScrubbedBy)
	}
}

func TestGetScreenshot(t *testing.T) {
	f := newFixture(t, engine.Result{})
	rec := f.seedRecording()
	shot := &screenshotdomain.Screenshot{
		ID: uuid.NewString(), RecordingID: rec.ID, Timestamp: 1.0,
		PNG: []byte("png-bytes"),
	}
	f.shots.shots = append(f.shots.shots, shot)

	w := f.do(t, http.MethodGet, "/v1/screenshots/"+shot.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type = %q", ct)
	}
	if w.Body.String() != "png-bytes" {
		t.Errorf("body = %q", w.Body.String())
	}

	w = f.do(t, http.MethodGet, "/v1/screenshots/"+shot.ID+"?variant=diff", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d for missing diff, want 404", w.Code)
	}

	w = f.do(t, http.MethodGet, "/v1/screenshots/"+shot.ID+"?variant=thumbnail", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d for unknown variant, want 400", w.Code)
	}
}

func TestListCaptureEvents(t *testing.T) {
	f := newFixture(t, engine.Result{})
	rec := f.seedRecording()
	f.capture.events = append(f.capture.events,
		&telemetrydomain.CaptureEvent{ID: 1, RecordingID: rec.ID, EventType: "http_request"},
		&telemetrydomain.CaptureEvent{ID: 2, RecordingID: "other", EventType: "http_request"},
	)

	w := f.do(t, http.MethodGet, "/v1/recordings/"+rec.ID+"/capture-events", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var body struct {
		CaptureEvents []telemetrydomain.CaptureEvent `json:"capture_events"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(body.CaptureEvents) != 1 || body.CaptureEvents[0].ID != 1 {
		t.Errorf("capture_events = %+v", body.CaptureEvents)
	}
}

func TestScrubHistory(t *testing.T) {
	f := newFixture(t, engine.Result{ScrubRequired: true})
	rec := f.seedRecording()
	rec.TaskDescription = "call 555-0100"

	w := f.do(t, http.MethodPost, "/v1/recordings/"+rec.ID+"/scrub", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("scrub status = %d, body = %s", w.Code, w.Body.String())
	}

	w = f.do(t, http.MethodGet, "/v1/scrubs", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var body struct {
		Scrubs []struct {
			RecordingID         string `json:"recording_id"`
			OriginalRecordingID string `json:"original_recording_id"`
			Provider            string `json:"provider"`
		} `json:"scrubs"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(body.Scrubs) != 1 {
		t.Fatalf("scrubs = %d, want 1", len(body.Scrubs))
	}
	entry := body.Scrubs[0]
	if entry.OriginalRecordingID != rec.ID || entry.Provider != "test-scrubber" {
		t.Errorf("entry = %+v", entry)
	}
	if entry.RecordingID == rec.ID {
		t.Error("ledger points at the source instead of the copy")
	}
}

func TestScrub_NotRequired(t *testing.T) {
	f := newFixture(t, engine.Result{ScrubRequired: false})
	rec := f.seedRecording()
	w := f.do(t, http.MethodPost, "/v1/recordings/"+rec.ID+"/scrub", nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", w.Code)
	}
}

func TestExport_Allowed(t *testing.T) {
	f := newFixture(t, engine.Result{ExportAllowed: true, RetentionDays: 90})
	rec := f.seedRecording()
	f.events.actions = append(f.events.actions, &eventdomain.ActionEvent{
		ID: uuid.NewString(), RecordingID: rec.ID, Name: "click", Timestamp: 1.0,
	})
	f.events.windows = append(f.events.windows, &eventdomain.WindowEvent{
		ID: uuid.NewString(), RecordingID: rec.ID, Timestamp: 1.0, Title: "Editor",
	})

	w := f.do(t, http.MethodGet, "/v1/recordings/"+rec.ID+"/export", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var body struct {
		Recording     recordingResponse     `json:"recording"`
		Events        []actionEventResponse `json:"events"`
		WindowEvents  []json.RawMessage     `json:"window_events"`
		RetentionDays int                   `json:"retention_days"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Recording.ID != rec.ID {
		t.Errorf("recording id = %q", body.Recording.ID)
	}
	if len(body.Events) != 1 || len(body.WindowEvents) != 1 {
		t.Errorf("events = %d, windows = %d", len(body.Events), len(body.WindowEvents))
	}
	if body.RetentionDays != 90 {
		t.Errorf("retention_days = %d", body.RetentionDays)
	}
}

func TestExport_Denied(t *testing.T) {
	f := newFixture(t, engine.Result{ExportAllowed: false})
	rec := f.seedRecording()
	w := f.do(t, http.MethodGet, "/v1/recordings/"+rec.ID+"/export", nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
}

func TestCopy(t *testing.T) {
	f := newFixture(t, engine.Result{})
	rec := f.seedRecording()
	f.events.actions = append(f.events.actions, &eventdomain.ActionEvent{
		ID: uuid.NewString(), RecordingID: rec.ID, Name: "click", Timestamp: 1.0,
	})

	w := f.do(t, http.MethodPost, "/v1/recordings/"+rec.ID+"/copy", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp recordingResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.ID == rec.ID {
		t.Error("copy returned the source recording")
	}
	copied, _ := f.events.ListActionEvents(context.Background(), resp.ID)
	if len(copied) != 1 {
		t.Errorf("copied recording has %d events, want 1", len(copied))
	}
}
