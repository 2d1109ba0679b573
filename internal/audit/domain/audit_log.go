package domain

import "time"

// AuditLog represents an audit event on the capture API.
type AuditLog struct {
	ID         string
	ClientID   string
	Action     string
	Resource   string
	ResourceID string
	IP         string
	Metadata   string
	CreatedAt  time.Time
}
