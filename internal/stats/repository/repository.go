package repository

import (
	"context"

	"gui-replay/backend/internal/stats/domain"
)

// Repository defines persistence for capture statistics.
type Repository interface {
	CreatePerformanceStats(ctx context.Context, stats []*domain.PerformanceStat) error
	ListPerformanceStats(ctx context.Context, recordingID string) ([]*domain.PerformanceStat, error)
	CreateMemoryStats(ctx context.Context, stats []*domain.MemoryStat) error
	ListMemoryStats(ctx context.Context, recordingID string) ([]*domain.MemoryStat, error)
}
