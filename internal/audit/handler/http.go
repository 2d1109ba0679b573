// Package handler exposes the audit trail over HTTP.
package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"gui-replay/backend/internal/audit/repository"
)

// Handler serves audit log reads.
type Handler struct {
	repo repository.Repository
}

func NewHandler(repo repository.Repository) *Handler {
	return &Handler{repo: repo}
}

type auditLogResponse struct {
	ID         string    `json:"id"`
	Action     string    `json:"action"`
	Resource   string    `json:"resource"`
	ResourceID string    `json:"resource_id,omitempty"`
	IP         string    `json:"ip,omitempty"`
	Metadata   string    `json:"metadata,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ListByClient returns a client's audit trail, newest first.
// GET /v1/clients/:id/audit-logs?limit=&offset=.
func (h *Handler) ListByClient(c *gin.Context) {
	limit := queryInt32(c, "limit", 100)
	offset := queryInt32(c, "offset", 0)
	logs, err := h.repo.ListByClient(c.Request.Context(), c.Param("id"), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list audit logs"})
		return
	}
	out := make([]auditLogResponse, len(logs))
	for i, a := range logs {
		out[i] = auditLogResponse{
			ID:         a.ID,
			Action:     a.Action,
			Resource:   a.Resource,
			ResourceID: a.ResourceID,
			IP:         a.IP,
			Metadata:   a.Metadata,
			CreatedAt:  a.CreatedAt,
		}
	}
	c.JSON(http.StatusOK, gin.H{"audit_logs": out})
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
