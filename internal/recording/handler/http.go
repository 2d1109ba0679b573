// Package handler serves the recording endpoints of the capture API:
// lifecycle (start, finish, copy, delete), event/screenshot/stat ingest,
// privacy scrubbing, and the export gate.
package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	eventdomain "gui-replay/backend/internal/event/domain"
	eventrepo "gui-replay/backend/internal/event/repository"
	"gui-replay/backend/internal/privacy"
	"gui-replay/backend/internal/recording"
	"gui-replay/backend/internal/recording/domain"
	recordingrepo "gui-replay/backend/internal/recording/repository"
	screenshotdomain "gui-replay/backend/internal/screenshot/domain"
	screenshotrepo "gui-replay/backend/internal/screenshot/repository"
	statsdomain "gui-replay/backend/internal/stats/domain"
	statsrepo "gui-replay/backend/internal/stats/repository"
	telemetryrepo "gui-replay/backend/internal/telemetry/repository"
)

// Handler serves /v1/recordings. captureEvents may be nil; the
// capture-event read endpoint is then not registered.
type Handler struct {
	recordings    recordingrepo.Repository
	events        eventrepo.Repository
	screenshots   screenshotrepo.Repository
	stats         statsrepo.Repository
	captureEvents telemetryrepo.Repository
	svc           *recording.Service
	privacy       *privacy.Service
}

func NewHandler(
	recordings recordingrepo.Repository,
	events eventrepo.Repository,
	screenshots screenshotrepo.Repository,
	stats statsrepo.Repository,
	captureEvents telemetryrepo.Repository,
	svc *recording.Service,
	privacySvc *privacy.Service,
) *Handler {
	return &Handler{
		recordings:    recordings,
		events:        events,
		screenshots:   screenshots,
		stats:         stats,
		captureEvents: captureEvents,
		svc:           svc,
		privacy:       privacySvc,
	}
}

type startRequest struct {
	Timestamp                  float64 `json:"timestamp"`
	MonitorWidth               int     `json:"monitor_width" binding:"required"`
	MonitorHeight              int     `json:"monitor_height" binding:"required"`
	DoubleClickIntervalSeconds float64 `json:"double_click_interval_seconds"`
	DoubleClickDistancePixels  float64 `json:"double_click_distance_pixels"`
	PlatformName               string  `json:"platform_name"`
	TaskDescription            string  `json:"task_description"`
}

type recordingResponse struct {
	ID                         string     `json:"id"`
	Timestamp                  float64    `json:"timestamp"`
	MonitorWidth               int        `json:"monitor_width"`
	MonitorHeight              int        `json:"monitor_height"`
	DoubleClickIntervalSeconds float64    `json:"double_click_interval_seconds"`
	DoubleClickDistancePixels  float64    `json:"double_click_distance_pixels"`
	PlatformName               string     `json:"platform_name"`
	TaskDescription            string     `json:"task_description"`
	VideoStartTime             *float64   `json:"video_start_time,omitempty"`
	OriginalRecordingID        string     `json:"original_recording_id,omitempty"`
	ScrubbedBy                 string     `json:"scrubbed_by,omitempty"`
	FinishedAt                 *time.Time `json:"finished_at,omitempty"`
	CreatedAt                  time.Time  `json:"created_at"`
}

// Start registers a new capture session. POST /v1/recordings.
func (h *Handler) Start(c *gin.Context) {
	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "monitor dimensions are required"})
		return
	}
	rec, err := h.svc.Start(c.Request.Context(), recording.StartParams{
		Timestamp:                  req.Timestamp,
		MonitorWidth:               req.MonitorWidth,
		MonitorHeight:              req.MonitorHeight,
		DoubleClickIntervalSeconds: req.DoubleClickIntervalSeconds,
		DoubleClickDistancePixels:  req.DoubleClickDistancePixels,
		PlatformName:               req.PlatformName,
		TaskDescription:            req.TaskDescription,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, toRecordingResponse(rec))
}

// List returns original recordings newest first.
// GET /v1/recordings?limit=&offset=. A timestamp query looks up the single
// recording with that capture timestamp; scrubbed=true lists the scrubbed
// derivatives instead.
func (h *Handler) List(c *gin.Context) {
	ctx := c.Request.Context()
	if ts := c.Query("timestamp"); ts != "" {
		v, err := strconv.ParseFloat(ts, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "timestamp must be a number"})
			return
		}
		rec, err := h.recordings.GetByTimestamp(ctx, v)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list recordings"})
			return
		}
		out := []recordingResponse{}
		if rec != nil {
			out = append(out, toRecordingResponse(rec))
		}
		c.JSON(http.StatusOK, gin.H{"recordings": out})
		return
	}

	var recs []*domain.Recording
	var err error
	if c.Query("scrubbed") == "true" {
		recs, err = h.recordings.ListScrubbed(ctx)
	} else {
		recs, err = h.recordings.List(ctx, queryInt32(c, "limit", 50), queryInt32(c, "offset", 0))
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list recordings"})
		return
	}
	out := make([]recordingResponse, len(recs))
	for i, rec := range recs {
		out[i] = toRecordingResponse(rec)
	}
	c.JSON(http.StatusOK, gin.H{"recordings": out})
}

// Latest returns the most recently started recording. GET /v1/recordings/latest.
func (h *Handler) Latest(c *gin.Context) {
	rec, err := h.recordings.GetLatest(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get recording"})
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no recordings"})
		return
	}
	c.JSON(http.StatusOK, toRecordingResponse(rec))
}

// Get returns one recording. GET /v1/recordings/:id.
func (h *Handler) Get(c *gin.Context) {
	rec, ok := h.getRecording(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toRecordingResponse(rec))
}

// Delete removes a recording and all of its captured data. DELETE /v1/recordings/:id.
func (h *Handler) Delete(c *gin.Context) {
	rec, ok := h.getRecording(c)
	if !ok {
		return
	}
	if err := h.recordings.Delete(c.Request.Context(), rec.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete recording"})
		return
	}
	c.Status(http.StatusNoContent)
}

type finishRequest struct {
	// VideoStartTime is reported by recorders that also captured video.
	VideoStartTime *float64 `json:"video_start_time"`
}

// Finish runs the post-capture pass and returns the surviving event count.
// POST /v1/recordings/:id/finish.
func (h *Handler) Finish(c *gin.Context) {
	rec, ok := h.getRecording(c)
	if !ok {
		return
	}
	var req finishRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid finish payload"})
			return
		}
	}
	ctx := c.Request.Context()
	if req.VideoStartTime != nil {
		if err := h.recordings.UpdateVideoStartTime(ctx, rec.ID, *req.VideoStartTime); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update recording"})
			return
		}
	}
	if err := h.svc.Finish(ctx, rec.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	count, err := h.events.CountActionEvents(ctx, rec.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to count events"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"action_events": count})
}

// Copy duplicates a recording with all captured data. POST /v1/recordings/:id/copy.
func (h *Handler) Copy(c *gin.Context) {
	rec, ok := h.getRecording(c)
	if !ok {
		return
	}
	cp, err := h.svc.Copy(c.Request.Context(), rec.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, toRecordingResponse(cp))
}

// Scrub produces a deidentified copy of the recording. POST /v1/recordings/:id/scrub.
func (h *Handler) Scrub(c *gin.Context) {
	rec, ok := h.getRecording(c)
	if !ok {
		return
	}
	cp, err := h.privacy.ScrubRecording(c.Request.Context(), rec.ID)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, toRecordingResponse(cp))
}

type actionEventRequest struct {
	Name                 string          `json:"name" binding:"required"`
	Timestamp            float64         `json:"timestamp"`
	MouseX               *float64        `json:"mouse_x,omitempty"`
	MouseY               *float64        `json:"mouse_y,omitempty"`
	MouseDX              *float64        `json:"mouse_dx,omitempty"`
	MouseDY              *float64        `json:"mouse_dy,omitempty"`
	MouseButtonName      string          `json:"mouse_button_name,omitempty"`
	MousePressed         *bool           `json:"mouse_pressed,omitempty"`
	KeyName              string          `json:"key_name,omitempty"`
	KeyChar              string          `json:"key_char,omitempty"`
	KeyVK                string          `json:"key_vk,omitempty"`
	CanonicalKeyName     string          `json:"canonical_key_name,omitempty"`
	CanonicalKeyChar     string          `json:"canonical_key_char,omitempty"`
	CanonicalKeyVK       string          `json:"canonical_key_vk,omitempty"`
	ElementState         json.RawMessage `json:"element_state,omitempty"`
	ScreenshotTimestamp  *float64        `json:"screenshot_timestamp,omitempty"`
	WindowEventTimestamp *float64        `json:"window_event_timestamp,omitempty"`
	Children             []actionEventRequest `json:"children,omitempty"`
}

// IngestEvents stores a batch of action events. POST /v1/recordings/:id/events.
func (h *Handler) IngestEvents(c *gin.Context) {
	rec, ok := h.getRecording(c)
	if !ok {
		return
	}
	var reqs []actionEventRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event batch"})
		return
	}
	var events []*eventdomain.ActionEvent
	for _, r := range reqs {
		parent := toActionEvent(r, rec.ID, nil)
		events = append(events, parent)
		for _, child := range r.Children {
			events = append(events, toActionEvent(child, rec.ID, &parent.ID))
		}
	}
	if err := h.events.CreateActionEvents(c.Request.Context(), events); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store events"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"stored": len(events)})
}

type windowEventRequest struct {
	Timestamp float64         `json:"timestamp"`
	Title     string          `json:"title"`
	Left      int             `json:"left"`
	Top       int             `json:"top"`
	Width     int             `json:"width"`
	Height    int             `json:"height"`
	State     json.RawMessage `json:"state,omitempty"`
}

// IngestWindowEvents stores a batch of window events. POST /v1/recordings/:id/window-events.
func (h *Handler) IngestWindowEvents(c *gin.Context) {
	rec, ok := h.getRecording(c)
	if !ok {
		return
	}
	var reqs []windowEventRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid window event batch"})
		return
	}
	events := make([]*eventdomain.WindowEvent, len(reqs))
	for i, r := range reqs {
		events[i] = &eventdomain.WindowEvent{
			ID:          uuid.NewString(),
			RecordingID: rec.ID,
			Timestamp:   r.Timestamp,
			Title:       r.Title,
			Left:        r.Left,
			Top:         r.Top,
			Width:       r.Width,
			Height:      r.Height,
			State:       r.State,
		}
	}
	if err := h.events.CreateWindowEvents(c.Request.Context(), events); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store window events"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"stored": len(events)})
}

type windowEventResponse struct {
	ID        string          `json:"id"`
	Timestamp float64         `json:"timestamp"`
	Title     string          `json:"title"`
	Left      int             `json:"left"`
	Top       int             `json:"top"`
	Width     int             `json:"width"`
	Height    int             `json:"height"`
	State     json.RawMessage `json:"state,omitempty"`
}

func toWindowEventResponse(w *eventdomain.WindowEvent) windowEventResponse {
	return windowEventResponse{
		ID:        w.ID,
		Timestamp: w.Timestamp,
		Title:     w.Title,
		Left:      w.Left,
		Top:       w.Top,
		Width:     w.Width,
		Height:    w.Height,
		State:     w.State,
	}
}

type screenshotRequest struct {
	Timestamp float64 `json:"timestamp"`
	// PNG is the base64-encoded frame. encoding/json decodes []byte from base64.
	PNG []byte `json:"png" binding:"required"`
}

// IngestScreenshots stores a batch of frames. POST /v1/recordings/:id/screenshots.
func (h *Handler) IngestScreenshots(c *gin.Context) {
	rec, ok := h.getRecording(c)
	if !ok {
		return
	}
	var reqs []screenshotRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid screenshot batch"})
		return
	}
	shots := make([]*screenshotdomain.Screenshot, len(reqs))
	for i, r := range reqs {
		shots[i] = &screenshotdomain.Screenshot{
			ID:          uuid.NewString(),
			RecordingID: rec.ID,
			Timestamp:   r.Timestamp,
			PNG:         r.PNG,
		}
	}
	if err := h.screenshots.Create(c.Request.Context(), shots); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store screenshots"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"stored": len(shots)})
}

type statsRequest struct {
	Performance []struct {
		EventType string  `json:"event_type"`
		StartTime float64 `json:"start_time"`
		EndTime   float64 `json:"end_time"`
	} `json:"performance"`
	Memory []struct {
		Timestamp  float64 `json:"timestamp"`
		UsageBytes int64   `json:"usage_bytes"`
	} `json:"memory"`
}

// IngestStats stores performance and memory samples. POST /v1/recordings/:id/stats.
func (h *Handler) IngestStats(c *gin.Context) {
	rec, ok := h.getRecording(c)
	if !ok {
		return
	}
	var req statsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid stats payload"})
		return
	}
	perf := make([]*statsdomain.PerformanceStat, len(req.Performance))
	for i, p := range req.Performance {
		perf[i] = &statsdomain.PerformanceStat{
			ID:          uuid.NewString(),
			RecordingID: rec.ID,
			EventType:   p.EventType,
			StartTime:   p.StartTime,
			EndTime:     p.EndTime,
		}
	}
	mem := make([]*statsdomain.MemoryStat, len(req.Memory))
	for i, m := range req.Memory {
		mem[i] = &statsdomain.MemoryStat{
			ID:          uuid.NewString(),
			RecordingID: rec.ID,
			Timestamp:   m.Timestamp,
			UsageBytes:  m.UsageBytes,
		}
	}
	ctx := c.Request.Context()
	if err := h.stats.CreatePerformanceStats(ctx, perf); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store stats"})
		return
	}
	if err := h.stats.CreateMemoryStats(ctx, mem); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store stats"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"stored": len(perf) + len(mem)})
}

// ListEvents returns the recording's top-level action events. GET /v1/recordings/:id/events.
func (h *Handler) ListEvents(c *gin.Context) {
	rec, ok := h.getRecording(c)
	if !ok {
		return
	}
	events, err := h.events.ListActionEvents(c.Request.Context(), rec.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list events"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": toActionEventResponses(events)})
}

// ListWindowEvents returns the recording's window events. GET /v1/recordings/:id/window-events.
func (h *Handler) ListWindowEvents(c *gin.Context) {
	rec, ok := h.getRecording(c)
	if !ok {
		return
	}
	windows, err := h.events.ListWindowEvents(c.Request.Context(), rec.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list window events"})
		return
	}
	out := make([]windowEventResponse, len(windows))
	for i, w := range windows {
		out[i] = toWindowEventResponse(w)
	}
	c.JSON(http.StatusOK, gin.H{"window_events": out})
}

// ListScreenshots returns frame metadata without PNG payloads.
// GET /v1/recordings/:id/screenshots.
func (h *Handler) ListScreenshots(c *gin.Context) {
	rec, ok := h.getRecording(c)
	if !ok {
		return
	}
	byTS, err := h.screenshots.ListTimestamps(c.Request.Context(), rec.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list screenshots"})
		return
	}
	out := make([]gin.H, 0, len(byTS))
	for ts, id := range byTS {
		out = append(out, gin.H{"id": id, "timestamp": ts})
	}
	c.JSON(http.StatusOK, gin.H{"screenshots": out})
}

// ListStats returns the recording's performance and memory samples.
// GET /v1/recordings/:id/stats.
func (h *Handler) ListStats(c *gin.Context) {
	rec, ok := h.getRecording(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	perf, err := h.stats.ListPerformanceStats(ctx, rec.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list stats"})
		return
	}
	mem, err := h.stats.ListMemoryStats(ctx, rec.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list stats"})
		return
	}
	perfOut := make([]gin.H, len(perf))
	for i, p := range perf {
		perfOut[i] = gin.H{
			"event_type": p.EventType, "start_time": p.StartTime,
			"end_time": p.EndTime, "duration": p.Duration(),
		}
	}
	memOut := make([]gin.H, len(mem))
	for i, m := range mem {
		memOut[i] = gin.H{"timestamp": m.Timestamp, "usage_bytes": m.UsageBytes}
	}
	c.JSON(http.StatusOK, gin.H{"performance": perfOut, "memory": memOut})
}

// Export returns the recording bundle if the privacy policy allows it.
// GET /v1/recordings/:id/export.
func (h *Handler) Export(c *gin.Context) {
	rec, ok := h.getRecording(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	decision, err := h.privacy.CheckExport(ctx, rec.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export policy check failed"})
		return
	}
	if !decision.ExportAllowed {
		c.JSON(http.StatusForbidden, gin.H{"error": "export denied by privacy policy"})
		return
	}
	events, err := h.events.ListActionEvents(ctx, rec.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list events"})
		return
	}
	windows, err := h.events.ListWindowEvents(ctx, rec.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list window events"})
		return
	}
	shotIDs, err := h.screenshots.ListTimestamps(ctx, rec.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list screenshots"})
		return
	}
	windowOut := make([]windowEventResponse, len(windows))
	for i, w := range windows {
		windowOut[i] = toWindowEventResponse(w)
	}
	bundle := gin.H{
		"recording":      toRecordingResponse(rec),
		"events":         toActionEventResponses(events),
		"window_events":  windowOut,
		"screenshots":    shotIDs,
		"retention_days": decision.RetentionDays,
	}
	if rec.ScrubbedBy != "" {
		if prov, err := h.privacy.ScrubProvenance(ctx, rec.ID); err == nil && prov != nil {
			bundle["scrubbed_from"] = prov.OriginalRecordingID
		}
	}
	c.JSON(http.StatusOK, bundle)
}

// GetScreenshot serves a stored frame as PNG. The diff and mask variants
// are derived at finish and 404 until then.
// GET /v1/screenshots/:id?variant=raw|diff|mask.
func (h *Handler) GetScreenshot(c *gin.Context) {
	shot, err := h.screenshots.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get screenshot"})
		return
	}
	if shot == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "screenshot not found"})
		return
	}
	var data []byte
	switch c.Query("variant") {
	case "", "raw":
		data = shot.PNG
	case "diff":
		data = shot.Diff
	case "mask":
		data = shot.DiffMask
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "variant must be raw, diff, or mask"})
		return
	}
	if len(data) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "variant not available"})
		return
	}
	c.Data(http.StatusOK, "image/png", data)
}

// ListCaptureEvents returns the telemetry trail the worker stored for a
// recording. GET /v1/recordings/:id/capture-events?limit=&offset=.
func (h *Handler) ListCaptureEvents(c *gin.Context) {
	rec, ok := h.getRecording(c)
	if !ok {
		return
	}
	events, err := h.captureEvents.ListByRecording(c.Request.Context(), rec.ID,
		queryInt32(c, "limit", 100), queryInt32(c, "offset", 0))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list capture events"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"capture_events": events})
}

// ScrubHistory lists every completed scrub. GET /v1/scrubs.
func (h *Handler) ScrubHistory(c *gin.Context) {
	entries, err := h.privacy.ScrubHistory(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list scrubs"})
		return
	}
	out := make([]gin.H, len(entries))
	for i, e := range entries {
		out[i] = gin.H{
			"recording_id":          e.RecordingID,
			"original_recording_id": e.OriginalRecordingID,
			"provider":              e.Provider,
			"created_at":            e.CreatedAt,
		}
	}
	c.JSON(http.StatusOK, gin.H{"scrubs": out})
}

func (h *Handler) getRecording(c *gin.Context) (*domain.Recording, bool) {
	rec, err := h.recordings.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get recording"})
		return nil, false
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "recording not found"})
		return nil, false
	}
	return rec, true
}

func toActionEvent(r actionEventRequest, recordingID string, parentID *string) *eventdomain.ActionEvent {
	return &eventdomain.ActionEvent{
		ID:                   uuid.NewString(),
		RecordingID:          recordingID,
		Name:                 r.Name,
		Timestamp:            r.Timestamp,
		MouseX:               r.MouseX,
		MouseY:               r.MouseY,
		MouseDX:              r.MouseDX,
		MouseDY:              r.MouseDY,
		MouseButtonName:      r.MouseButtonName,
		MousePressed:         r.MousePressed,
		KeyName:              r.KeyName,
		KeyChar:              r.KeyChar,
		KeyVK:                r.KeyVK,
		CanonicalKeyName:     r.CanonicalKeyName,
		CanonicalKeyChar:     r.CanonicalKeyChar,
		CanonicalKeyVK:       r.CanonicalKeyVK,
		ElementState:         r.ElementState,
		ParentID:             parentID,
		ScreenshotTimestamp:  r.ScreenshotTimestamp,
		WindowEventTimestamp: r.WindowEventTimestamp,
	}
}

type actionEventResponse struct {
	ID                   string   `json:"id"`
	Name                 string   `json:"name"`
	Timestamp            float64  `json:"timestamp"`
	MouseX               *float64 `json:"mouse_x,omitempty"`
	MouseY               *float64 `json:"mouse_y,omitempty"`
	MouseButtonName      string   `json:"mouse_button_name,omitempty"`
	MousePressed         *bool    `json:"mouse_pressed,omitempty"`
	KeyName              string   `json:"key_name,omitempty"`
	KeyChar              string   `json:"key_char,omitempty"`
	CanonicalKeyName     string   `json:"canonical_key_name,omitempty"`
	CanonicalKeyChar     string   `json:"canonical_key_char,omitempty"`
	ScreenshotID         *string  `json:"screenshot_id,omitempty"`
	WindowEventID        *string  `json:"window_event_id,omitempty"`
	ScreenshotTimestamp  *float64 `json:"screenshot_timestamp,omitempty"`
	WindowEventTimestamp *float64 `json:"window_event_timestamp,omitempty"`
}

func toActionEventResponses(events []*eventdomain.ActionEvent) []actionEventResponse {
	out := make([]actionEventResponse, len(events))
	for i, e := range events {
		out[i] = actionEventResponse{
			ID:                   e.ID,
			Name:                 e.Name,
			Timestamp:            e.Timestamp,
			MouseX:               e.MouseX,
			MouseY:               e.MouseY,
			MouseButtonName:      e.MouseButtonName,
			MousePressed:         e.MousePressed,
			KeyName:              e.KeyName,
			KeyChar:              e.KeyChar,
			CanonicalKeyName:     e.CanonicalKeyName,
			CanonicalKeyChar:     e.CanonicalKeyChar,
			ScreenshotID:         e.ScreenshotID,
			WindowEventID:        e.WindowEventID,
			ScreenshotTimestamp:  e.ScreenshotTimestamp,
			WindowEventTimestamp: e.WindowEventTimestamp,
		}
	}
	return out
}

func toRecordingResponse(rec *domain.Recording) recordingResponse {
	return recordingResponse{
		ID:                         rec.ID,
		Timestamp:                  rec.Timestamp,
		MonitorWidth:               rec.MonitorWidth,
		MonitorHeight:              rec.MonitorHeight,
		DoubleClickIntervalSeconds: rec.DoubleClickIntervalSeconds,
		DoubleClickDistancePixels:  rec.DoubleClickDistancePixels,
		PlatformName:               rec.PlatformName,
		TaskDescription:            rec.TaskDescription,
		VideoStartTime:             rec.VideoStartTime,
		OriginalRecordingID:        rec.OriginalRecordingID,
		ScrubbedBy:                 rec.ScrubbedBy,
		FinishedAt:                 rec.FinishedAt,
		CreatedAt:                  rec.CreatedAt,
	}
}

func queryInt32(c *gin.Context, name string, def int32) int32 {
	v := c.Query(name)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 32)
	if err != nil || n < 0 {
		return def
	}
	return int32(n)
}
