// Package server assembles the HTTP API: routes, middleware order, and the
// handler wiring.
package server

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	audithandler "gui-replay/backend/internal/audit/handler"
	auditrepo "gui-replay/backend/internal/audit/repository"
	"gui-replay/backend/internal/client"
	clienthandler "gui-replay/backend/internal/client/handler"
	eventrepo "gui-replay/backend/internal/event/repository"
	healthhandler "gui-replay/backend/internal/health/handler"
	"gui-replay/backend/internal/locate"
	locatehandler "gui-replay/backend/internal/locate/handler"
	"gui-replay/backend/internal/privacy"
	"gui-replay/backend/internal/recording"
	recordinghandler "gui-replay/backend/internal/recording/handler"
	recordingrepo "gui-replay/backend/internal/recording/repository"
	"gui-replay/backend/internal/replay"
	replayhandler "gui-replay/backend/internal/replay/handler"
	screenshotrepo "gui-replay/backend/internal/screenshot/repository"
	"gui-replay/backend/internal/security"
	"gui-replay/backend/internal/server/middleware"
	statsrepo "gui-replay/backend/internal/stats/repository"
	"gui-replay/backend/internal/telemetry/producer"
	telemetryrepo "gui-replay/backend/internal/telemetry/repository"
	"gui-replay/backend/internal/vision"
)

// Deps holds the handler dependencies. Tokens, ClientSvc, and the recording
// repositories are required; Prompter, Producer, and the health checkers may
// be nil, which disables the endpoints or middleware built on them.
type Deps struct {
	Tokens    *security.TokenProvider
	ClientSvc *client.Service

	RecordingRepo  recordingrepo.Repository
	EventRepo      eventrepo.Repository
	ScreenshotRepo screenshotrepo.Repository
	StatsRepo      statsrepo.Repository
	RecordingSvc   *recording.Service
	PrivacySvc     *privacy.Service

	// Prompter backs the locate and replay endpoints. If nil they are not
	// registered.
	Prompter vision.Prompter

	// CursorDefaults and GridDefaults seed the locate searches from config.
	// Request params override them per field; zero values use the calibrated
	// defaults.
	CursorDefaults locate.CursorParams
	GridDefaults   locate.GridParams

	// AuditRepo enables per-request audit logging. If nil no requests are
	// audited.
	AuditRepo auditrepo.Repository

	// Producer enables capture-event telemetry. If nil no events are emitted.
	Producer producer.Producer

	// CaptureEventRepo backs the capture-event read endpoint. If nil it is
	// not registered.
	CaptureEventRepo telemetryrepo.Repository

	HealthPinger        healthhandler.Pinger
	HealthPolicyChecker healthhandler.PolicyChecker

	// ServiceName labels traces from the otelgin middleware.
	ServiceName string
}

// untrackedRoutes are served without audit or telemetry.
var untrackedRoutes = map[string]bool{
	"/healthz": true,
}

// NewRouter builds the gin engine with all routes registered.
//
// Route → handler mapping:
//   - /healthz                → internal/health/handler
//   - /auth/*, /v1/clients/*  → internal/client/handler
//   - /v1/recordings/*        → internal/recording/handler
//   - /v1/locate/*            → internal/locate/handler
//   - /v1/replay/*            → internal/replay/handler
func NewRouter(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	name := deps.ServiceName
	if name == "" {
		name = "guireplay"
	}
	r.Use(otelgin.Middleware(name))

	health := healthhandler.NewHandler(deps.HealthPinger, deps.HealthPolicyChecker)
	r.GET("/healthz", health.Check)

	clients := clienthandler.NewHandler(deps.ClientSvc)
	auth := r.Group("/auth")
	{
		auth.POST("/token", clients.Token)
		auth.POST("/refresh", clients.Refresh)
	}

	v1 := r.Group("/v1")
	v1.Use(middleware.RequireAuth(deps.Tokens))
	if deps.AuditRepo != nil {
		v1.Use(middleware.Audit(deps.AuditRepo, untrackedRoutes))
	}
	v1.Use(middleware.Telemetry(deps.Producer, untrackedRoutes))

	v1.GET("/clients", clients.List)
	v1.POST("/clients", clients.Register)
	v1.GET("/clients/:id", clients.Get)
	v1.POST("/clients/:id/revoke", clients.Revoke)
	if deps.AuditRepo != nil {
		v1.GET("/clients/:id/audit-logs", audithandler.NewHandler(deps.AuditRepo).ListByClient)
	}

	recordings := recordinghandler.NewHandler(
		deps.RecordingRepo, deps.EventRepo, deps.ScreenshotRepo, deps.StatsRepo,
		deps.CaptureEventRepo, deps.RecordingSvc, deps.PrivacySvc)
	v1.POST("/recordings", recordings.Start)
	v1.GET("/recordings", recordings.List)
	v1.GET("/recordings/latest", recordings.Latest)
	v1.GET("/recordings/:id", recordings.Get)
	v1.DELETE("/recordings/:id", recordings.Delete)
	v1.POST("/recordings/:id/finish", recordings.Finish)
	v1.POST("/recordings/:id/copy", recordings.Copy)
	v1.POST("/recordings/:id/scrub", recordings.Scrub)
	v1.POST("/recordings/:id/events", recordings.IngestEvents)
	v1.GET("/recordings/:id/events", recordings.ListEvents)
	v1.POST("/recordings/:id/window-events", recordings.IngestWindowEvents)
	v1.GET("/recordings/:id/window-events", recordings.ListWindowEvents)
	v1.POST("/recordings/:id/screenshots", recordings.IngestScreenshots)
	v1.GET("/recordings/:id/screenshots", recordings.ListScreenshots)
	v1.POST("/recordings/:id/stats", recordings.IngestStats)
	v1.GET("/recordings/:id/stats", recordings.ListStats)
	v1.GET("/recordings/:id/export", recordings.Export)
	v1.GET("/screenshots/:id", recordings.GetScreenshot)
	v1.GET("/scrubs", recordings.ScrubHistory)
	if deps.CaptureEventRepo != nil {
		v1.GET("/recordings/:id/capture-events", recordings.ListCaptureEvents)
	}

	if deps.Prompter != nil {
		locator := locatehandler.NewHandler(deps.Prompter, deps.StatsRepo,
			deps.CursorDefaults, deps.GridDefaults)
		v1.POST("/locate/cursor", locator.Cursor)
		v1.POST("/locate/grid", locator.Grid)

		transposer := replayhandler.NewHandler(replay.NewLLMTransposer(deps.Prompter), deps.EventRepo)
		v1.POST("/replay/transpose", transposer.Transpose)
	}

	return r
}
