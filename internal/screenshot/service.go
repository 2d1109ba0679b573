// Package screenshot derives per-frame artifacts after a recording is
// captured, currently the frame-to-frame diff images replay strategies use
// to spot UI changes.
package screenshot

import (
	"context"
	"fmt"

	"gui-replay/backend/internal/imaging"
	"gui-replay/backend/internal/screenshot/repository"
)

// Service computes derived screenshot data.
type Service struct {
	repo repository.Repository
}

// NewService returns a service using repo.
func NewService(repo repository.Repository) *Service {
	return &Service{repo: repo}
}

// ComputeDiffs derives diff and diff-mask images for every frame of the
// recording against its predecessor and stores them. The first frame has no
// predecessor and is skipped. Frames that already carry a diff are skipped,
// so the pass is safe to rerun.
func (s *Service) ComputeDiffs(ctx context.Context, recordingID string) error {
	shots, err := s.repo.ListByRecording(ctx, recordingID)
	if err != nil {
		return fmt.Errorf("list screenshots: %w", err)
	}

	for i := 1; i < len(shots); i++ {
		if len(shots[i].Diff) > 0 {
			continue
		}
		prev, err := imaging.DecodePNG(shots[i-1].PNG)
		if err != nil {
			return fmt.Errorf("decode screenshot %s: %w", shots[i-1].ID, err)
		}
		curr, err := imaging.DecodePNG(shots[i].PNG)
		if err != nil {
			return fmt.Errorf("decode screenshot %s: %w", shots[i].ID, err)
		}

		diff, err := imaging.EncodePNG(imaging.Diff(prev, curr))
		if err != nil {
			return fmt.Errorf("encode diff for %s: %w", shots[i].ID, err)
		}
		mask, err := imaging.EncodePNG(imaging.DiffMask(prev, curr))
		if err != nil {
			return fmt.Errorf("encode diff mask for %s: %w", shots[i].ID, err)
		}
		if err := s.repo.UpdateDiff(ctx, shots[i].ID, diff, mask); err != nil {
			return fmt.Errorf("store diff for %s: %w", shots[i].ID, err)
		}
	}
	return nil
}
