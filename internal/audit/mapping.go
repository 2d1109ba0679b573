package audit

import (
	"net/http"
	"strings"
)

// ActionResource holds action and resource derived from an HTTP route.
type ActionResource struct {
	Action   string
	Resource string
}

// routeOverrides maps routes whose action cannot be derived from the HTTP method
// alone. Keys are "METHOD route-template" as reported by the router.
var routeOverrides = map[string]ActionResource{
	"POST /auth/token":                      {Action: "authenticate", Resource: "client"},
	"POST /auth/refresh":                    {Action: "refresh", Resource: "client"},
	"GET /v1/recordings/latest":             {Action: "get", Resource: "recording"},
	"GET /v1/recordings/:id/capture-events": {Action: "list", Resource: "capture_event"},
	"POST /v1/recordings/:id/finish":        {Action: "finish", Resource: "recording"},
	"POST /v1/recordings/:id/copy":          {Action: "copy", Resource: "recording"},
	"POST /v1/recordings/:id/scrub":         {Action: "scrub", Resource: "recording"},
	"GET /v1/recordings/:id/export":         {Action: "export", Resource: "recording"},
	"POST /v1/recordings/:id/events":        {Action: "ingest_events", Resource: "recording"},
	"POST /v1/recordings/:id/window-events": {Action: "ingest_window_events", Resource: "recording"},
	"POST /v1/recordings/:id/screenshots":   {Action: "ingest_screenshots", Resource: "recording"},
	"POST /v1/recordings/:id/stats":         {Action: "ingest_stats", Resource: "recording"},
	"POST /v1/locate/cursor":                {Action: "locate_cursor", Resource: "screenshot"},
	"POST /v1/locate/grid":                  {Action: "locate_grid", Resource: "screenshot"},
	"POST /v1/replay/transpose":             {Action: "transpose", Resource: "replay"},
	"POST /v1/clients/:id/revoke":           {Action: "revoke", Resource: "client"},
	"GET /v1/clients/:id/audit-logs":        {Action: "list", Resource: "audit_log"},
}

// ParseRoute returns action and resource for an HTTP method and route template
// (e.g. GET /v1/recordings/:id). Action is a verb: get, list, create, update,
// delete, or a route-specific override. Resource is the singular form of the
// first path segment after the version prefix.
func ParseRoute(method, route string) ActionResource {
	if ar, ok := routeOverrides[method+" "+route]; ok {
		return ar
	}
	resource := routeResource(route)
	action := methodToAction(method, route)
	return ActionResource{Action: action, Resource: resource}
}

func routeResource(route string) string {
	trimmed := strings.TrimPrefix(route, "/v1/")
	trimmed = strings.TrimPrefix(trimmed, "/")
	if trimmed == "" {
		return "unknown"
	}
	if i := strings.Index(trimmed, "/"); i >= 0 {
		trimmed = trimmed[:i]
	}
	// recordings -> recording, clients -> client
	return strings.TrimSuffix(trimmed, "s")
}

func methodToAction(method, route string) string {
	switch method {
	case http.MethodGet:
		if strings.Contains(route, ":") {
			return "get"
		}
		return "list"
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	default:
		return strings.ToLower(method)
	}
}
