// Package handler serves the target localization endpoints. Both variants
// accept a PNG screenshot and a natural-language target description and
// return the located pixel position.
package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gui-replay/backend/internal/imaging"
	"gui-replay/backend/internal/locate"
	statsdomain "gui-replay/backend/internal/stats/domain"
	statsrepo "gui-replay/backend/internal/stats/repository"
	"gui-replay/backend/internal/vision"
)

// Handler serves /v1/locate. The stats repository may be nil; timing samples
// are then not recorded.
type Handler struct {
	prompter vision.Prompter
	stats    statsrepo.Repository
	cursor   locate.CursorParams
	grid     locate.GridParams
}

// NewHandler builds the locate handler. cursor and grid seed the search
// parameters; request fields override them individually, and fields left
// zero fall back to the calibrated defaults.
func NewHandler(prompter vision.Prompter, stats statsrepo.Repository,
	cursor locate.CursorParams, grid locate.GridParams) *Handler {
	return &Handler{prompter: prompter, stats: stats, cursor: cursor, grid: grid}
}

type cursorParamsRequest struct {
	NumCursors          int     `json:"num_cursors"`
	SpreadReduction     float64 `json:"spread_reduction"`
	MaxIterations       int     `json:"max_iterations"`
	MaxOverlapRatio     float64 `json:"max_overlap_ratio"`
	ConsensusThreshold  int     `json:"consensus_threshold"`
	RetriesPerIteration int     `json:"retries_per_iteration"`
	Jitter              float64 `json:"jitter"`
	LabelSizeRatio      float64 `json:"label_size_ratio"`
	DownsampleFactor    int     `json:"downsample_factor"`
	ContrastFactor      float64 `json:"contrast_factor"`
}

type cursorRequest struct {
	// PNG is the base64-encoded screenshot.
	PNG         []byte              `json:"png" binding:"required"`
	Target      string              `json:"target" binding:"required"`
	RecordingID string              `json:"recording_id"`
	Params      cursorParamsRequest `json:"params"`
}

type cursorResponse struct {
	Point      locate.Point       `json:"point"`
	Iterations []locate.Iteration `json:"iterations"`
	// AnnotatedPNG shows the per-round winners labelled on the working image.
	AnnotatedPNG []byte `json:"annotated_png,omitempty"`
}

// Cursor runs the marker-voting search. POST /v1/locate/cursor.
func (h *Handler) Cursor(c *gin.Context) {
	var req cursorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "png and target are required"})
		return
	}
	img, err := imaging.DecodePNG(req.PNG)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "png is not a decodable image"})
		return
	}
	search, err := locate.NewCursorSearch(h.prompter, mergeCursorParams(h.cursor, req.Params))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	started := time.Now()
	result, err := search.Locate(c.Request.Context(), img, req.Target)
	h.recordTiming(c, req.RecordingID, "locate.cursor", started)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	resp := cursorResponse{Point: result.Point, Iterations: result.Iterations}
	if result.Annotated != nil {
		if png, err := imaging.EncodePNG(result.Annotated); err == nil {
			resp.AnnotatedPNG = png
		}
	}
	c.JSON(http.StatusOK, resp)
}

type gridParamsRequest struct {
	GridSize           int  `json:"grid_size"`
	DownsampleFactor   int  `json:"downsample_factor"`
	DisableCorrections bool `json:"disable_corrections"`
	MaxRounds          int  `json:"max_rounds"`
}

type gridRequest struct {
	PNG         []byte            `json:"png" binding:"required"`
	Target      string            `json:"target" binding:"required"`
	RecordingID string            `json:"recording_id"`
	Params      gridParamsRequest `json:"params"`
}

// Grid runs the grid-overlay search. POST /v1/locate/grid.
func (h *Handler) Grid(c *gin.Context) {
	var req gridRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "png and target are required"})
		return
	}
	img, err := imaging.DecodePNG(req.PNG)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "png is not a decodable image"})
		return
	}
	search, err := locate.NewGridSearch(h.prompter, mergeGridParams(h.grid, req.Params))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	started := time.Now()
	result, err := search.Locate(c.Request.Context(), img, req.Target)
	h.recordTiming(c, req.RecordingID, "locate.grid", started)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// mergeCursorParams overlays nonzero request fields on the configured
// defaults. Fields zero in both fall back inside NewCursorSearch.
func mergeCursorParams(def locate.CursorParams, req cursorParamsRequest) locate.CursorParams {
	p := def
	if req.NumCursors != 0 {
		p.NumCursors = req.NumCursors
	}
	if req.SpreadReduction != 0 {
		p.SpreadReduction = req.SpreadReduction
	}
	if req.MaxIterations != 0 {
		p.MaxIterations = req.MaxIterations
	}
	if req.MaxOverlapRatio != 0 {
		p.MaxOverlapRatio = req.MaxOverlapRatio
	}
	if req.ConsensusThreshold != 0 {
		p.ConsensusThreshold = req.ConsensusThreshold
	}
	if req.RetriesPerIteration != 0 {
		p.RetriesPerIteration = req.RetriesPerIteration
	}
	if req.Jitter != 0 {
		p.Jitter = req.Jitter
	}
	if req.LabelSizeRatio != 0 {
		p.LabelSizeRatio = req.LabelSizeRatio
	}
	if req.DownsampleFactor != 0 {
		p.DownsampleFactor = req.DownsampleFactor
	}
	if req.ContrastFactor != 0 {
		p.ContrastFactor = req.ContrastFactor
	}
	return p
}

func mergeGridParams(def locate.GridParams, req gridParamsRequest) locate.GridParams {
	p := def
	if req.GridSize != 0 {
		p.GridSize = req.GridSize
	}
	if req.DownsampleFactor != 0 {
		p.DownsampleFactor = req.DownsampleFactor
	}
	if req.MaxRounds != 0 {
		p.MaxRounds = req.MaxRounds
	}
	if req.DisableCorrections {
		p.DisableCorrections = true
	}
	return p
}

// recordTiming stores a performance sample when the caller associated the
// search with a recording. Failures are ignored; timing is advisory.
func (h *Handler) recordTiming(c *gin.Context, recordingID, eventType string, started time.Time) {
	if h.stats == nil || recordingID == "" {
		return
	}
	end := time.Now()
	_ = h.stats.CreatePerformanceStats(c.Request.Context(), []*statsdomain.PerformanceStat{{
		ID:          uuid.NewString(),
		RecordingID: recordingID,
		EventType:   eventType,
		StartTime:   float64(started.UnixNano()) / 1e9,
		EndTime:     float64(end.UnixNano()) / 1e9,
	}})
}
