// Package handler serves the replay transposition endpoint.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	eventrepo "gui-replay/backend/internal/event/repository"
	"gui-replay/backend/internal/replay"
)

// Handler serves /v1/replay.
type Handler struct {
	transposer *replay.LLMTransposer
	events     eventrepo.Repository
}

func NewHandler(transposer *replay.LLMTransposer, events eventrepo.Repository) *Handler {
	return &Handler{transposer: transposer, events: events}
}

type transposeRequest struct {
	// Actions may be given inline, or loaded from a stored recording via
	// RecordingID. Exactly one of the two is expected.
	Actions         []replay.Action `json:"actions"`
	RecordingID     string          `json:"recording_id"`
	ReferenceWindow replay.Window   `json:"reference_window" binding:"required"`
	ActiveWindow    replay.Window   `json:"active_window" binding:"required"`
}

// Transpose maps recorded actions onto the active window geometry.
// POST /v1/replay/transpose.
func (h *Handler) Transpose(c *gin.Context) {
	var req transposeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reference_window and active_window are required"})
		return
	}

	actions := req.Actions
	if len(actions) == 0 && req.RecordingID != "" {
		events, err := h.events.ListActionEvents(c.Request.Context(), req.RecordingID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load recording actions"})
			return
		}
		actions = replay.FromDomain(events)
	}
	if len(actions) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no actions to transpose"})
		return
	}

	out, err := h.transposer.Transpose(c.Request.Context(), actions, req.ReferenceWindow, req.ActiveWindow)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"actions": out})
}
