package middleware

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"gui-replay/backend/internal/telemetry/domain"
	"gui-replay/backend/internal/telemetry/producer"
)

// httpRequestMetadata is the JSON shape stored in CaptureEvent.Metadata for http_request events.
type httpRequestMetadata struct {
	Method     string `json:"method"`
	Route      string `json:"route"`
	StatusCode int    `json:"status_code"`
	DurationMs int64  `json:"duration_ms"`
	ClientIP   string `json:"client_ip"`
}

// Telemetry returns middleware that emits a capture event after each request.
// Best-effort: failures are logged and do not fail the request. If p is nil,
// the middleware no-ops. skipRoutes is the set of route templates to not emit.
func Telemetry(p producer.Producer, skipRoutes map[string]bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if p == nil || route == "" || skipRoutes[route] {
			return
		}
		meta := httpRequestMetadata{
			Method:     c.Request.Method,
			Route:      route,
			StatusCode: c.Writer.Status(),
			DurationMs: time.Since(start).Milliseconds(),
			ClientIP:   c.ClientIP(),
		}
		metaJSON, _ := json.Marshal(meta)
		clientID, _ := ClientID(c)
		recordingID := ""
		if strings.HasPrefix(route, "/v1/recordings/") {
			recordingID = c.Param("id")
		}
		event := &domain.CaptureEvent{
			RecordingID: recordingID,
			ClientID:    clientID,
			EventType:   "http_request",
			Source:      "http_middleware",
			Metadata:    metaJSON,
			CreatedAt:   time.Now().UTC(),
		}
		go func() {
			emitCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if emitErr := p.Emit(emitCtx, event); emitErr != nil {
				log.Printf("telemetry: middleware emit failed: %v", emitErr)
			}
		}()
	}
}
