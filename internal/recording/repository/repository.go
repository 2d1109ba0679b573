package repository

import (
	"context"

	"gui-replay/backend/internal/recording/domain"
)

// Repository defines persistence for recordings.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Recording, error)
	GetByTimestamp(ctx context.Context, timestamp float64) (*domain.Recording, error)
	GetLatest(ctx context.Context) (*domain.Recording, error)
	List(ctx context.Context, limit, offset int32) ([]*domain.Recording, error)
	ListScrubbed(ctx context.Context) ([]*domain.Recording, error)
	Create(ctx context.Context, r *domain.Recording) error
	UpdateVideoStartTime(ctx context.Context, id string, videoStartTime float64) error
	UpdateTaskDescription(ctx context.Context, id string, taskDescription string) error
	MarkScrubbed(ctx context.Context, id string, provider string) error
	Finish(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}
