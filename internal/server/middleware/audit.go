package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gui-replay/backend/internal/audit"
	"gui-replay/backend/internal/audit/domain"
	auditrepo "gui-replay/backend/internal/audit/repository"
)

// Audit returns middleware that records an audit log entry after each request.
// skipRoutes is the set of route templates to not audit (e.g. /healthz).
// Create is best-effort: failures are logged and do not fail the request.
// Only writes when client_id is set (authenticated context).
func Audit(repo auditrepo.Repository, skipRoutes map[string]bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		route := c.FullPath()
		if route == "" || skipRoutes[route] {
			return
		}
		clientID, _ := ClientID(c)
		if clientID == "" {
			return
		}
		ar := audit.ParseRoute(c.Request.Method, route)
		entry := &domain.AuditLog{
			ID:         uuid.New().String(),
			ClientID:   clientID,
			Action:     ar.Action,
			Resource:   ar.Resource,
			ResourceID: c.Param("id"),
			IP:         c.ClientIP(),
			CreatedAt:  time.Now().UTC(),
		}
		if err := repo.Create(c.Request.Context(), entry); err != nil {
			log.Printf("audit: failed to create audit log: %v", err)
		}
	}
}
