package repository

import (
	"context"

	"gui-replay/backend/internal/event/domain"
)

// Repository defines persistence for action and window events.
type Repository interface {
	CreateActionEvents(ctx context.Context, events []*domain.ActionEvent) error
	ListActionEvents(ctx context.Context, recordingID string) ([]*domain.ActionEvent, error)
	ListActionEventChildren(ctx context.Context, parentID string) ([]*domain.ActionEvent, error)
	CountActionEvents(ctx context.Context, recordingID string) (int64, error)
	DeleteActionEvents(ctx context.Context, ids []string) error
	LinkActionEvent(ctx context.Context, id string, screenshotID, windowEventID *string) error

	ClearElementState(ctx context.Context, recordingID string) error

	CreateWindowEvents(ctx context.Context, events []*domain.WindowEvent) error
	ListWindowEvents(ctx context.Context, recordingID string) ([]*domain.WindowEvent, error)
	UpdateWindowEventTitle(ctx context.Context, id string, title string) error
}
