package repository

import (
	"context"

	"gui-replay/backend/internal/audit/domain"
)

// Repository defines persistence for audit logs.
type Repository interface {
	ListByClient(ctx context.Context, clientID string, limit, offset int32) ([]*domain.AuditLog, error)
	Create(ctx context.Context, a *domain.AuditLog) error
}
