package repository

import (
	"context"

	"gui-replay/backend/internal/client/domain"
)

// Repository defines persistence for recorder clients.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Client, error)
	List(ctx context.Context) ([]*domain.Client, error)
	Create(ctx context.Context, c *domain.Client) error
	UpdateRefreshJTI(ctx context.Context, id, jti string) error
	Revoke(ctx context.Context, id string) error
}
