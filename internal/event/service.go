// Package event holds the processing that turns raw captured input events
// into a clean, linked recording: stop-sequence trimming and the timestamp
// to ID resolution recorders cannot do themselves.
package event

import (
	"context"
	"fmt"

	"gui-replay/backend/internal/event/domain"
	"gui-replay/backend/internal/event/repository"
)

// DefaultStopSequences are the key sequences recorders treat as "stop
// recording". They are typed by the operator and must not survive into the
// stored recording.
var DefaultStopSequences = [][]string{
	{"o", "a", ".", "s", "t", "o", "p"},
}

// Service processes events after a recording is captured.
type Service struct {
	repo          repository.Repository
	stopSequences [][]string
}

// NewService returns a service using repo. stopSequences may be nil to use
// the defaults.
func NewService(repo repository.Repository, stopSequences [][]string) *Service {
	if stopSequences == nil {
		stopSequences = DefaultStopSequences
	}
	return &Service{repo: repo, stopSequences: stopSequences}
}

// FilterStopSequences returns events with any trailing stop sequence
// removed. Ctrl+C is handled separately: both keys are held at once, so the
// recorder emits two presses and no releases.
func FilterStopSequences(events []*domain.ActionEvent, stopSequences [][]string) []*domain.ActionEvent {
	if len(events) >= 2 {
		last, prev := events[len(events)-1], events[len(events)-2]
		if last.CanonicalKeyChar == "c" && prev.CanonicalKeyName == "ctrl" {
			return events[:len(events)-2]
		}
	}

	for _, sequence := range stopSequences {
		// Walk backwards matching the sequence from its end. Release events
		// for any sequence key are skipped but still count for removal.
		seqIdx := len(sequence) - 1
		numToRemove := 0
		for j := len(events) - 1; j >= 0; j-- {
			e := events[j]
			if e.Name == domain.ActionPress && seqIdx >= 0 &&
				(e.CanonicalKeyChar == sequence[seqIdx] || e.CanonicalKeyName == sequence[seqIdx]) {
				seqIdx--
				numToRemove++
			} else if e.Name == domain.ActionRelease && sequenceContains(sequence, e) {
				numToRemove++
			} else {
				break
			}
		}
		if seqIdx == -1 {
			return events[:len(events)-numToRemove]
		}
	}
	return events
}

func sequenceContains(sequence []string, e *domain.ActionEvent) bool {
	for _, key := range sequence {
		if e.CanonicalKeyChar == key || e.CanonicalKeyName == key {
			return true
		}
	}
	return false
}

// TrimStopSequences removes any trailing stop sequence of the recording from
// storage.
func (s *Service) TrimStopSequences(ctx context.Context, recordingID string) error {
	events, err := s.repo.ListActionEvents(ctx, recordingID)
	if err != nil {
		return fmt.Errorf("list action events: %w", err)
	}
	kept := FilterStopSequences(events, s.stopSequences)
	if len(kept) == len(events) {
		return nil
	}
	removed := make([]string, 0, len(events)-len(kept))
	for _, e := range events[len(kept):] {
		removed = append(removed, e.ID)
	}
	if err := s.repo.DeleteActionEvents(ctx, removed); err != nil {
		return fmt.Errorf("delete stop sequence events: %w", err)
	}
	return nil
}

// PostProcess resolves each action event's screenshot and window event
// timestamps to row IDs. Events whose timestamps match nothing keep nil
// references; recorders flush streams independently, so gaps are normal.
func (s *Service) PostProcess(ctx context.Context, recordingID string, screenshotIDByTS map[float64]string) error {
	events, err := s.repo.ListActionEvents(ctx, recordingID)
	if err != nil {
		return fmt.Errorf("list action events: %w", err)
	}
	windows, err := s.repo.ListWindowEvents(ctx, recordingID)
	if err != nil {
		return fmt.Errorf("list window events: %w", err)
	}
	windowIDByTS := make(map[float64]string, len(windows))
	for _, w := range windows {
		windowIDByTS[w.Timestamp] = w.ID
	}

	for _, e := range events {
		var screenshotID, windowEventID *string
		if e.ScreenshotTimestamp != nil {
			if id, ok := screenshotIDByTS[*e.ScreenshotTimestamp]; ok {
				screenshotID = &id
			}
		}
		if e.WindowEventTimestamp != nil {
			if id, ok := windowIDByTS[*e.WindowEventTimestamp]; ok {
				windowEventID = &id
			}
		}
		if screenshotID == nil && windowEventID == nil {
			continue
		}
		if err := s.repo.LinkActionEvent(ctx, e.ID, screenshotID, windowEventID); err != nil {
			return fmt.Errorf("link action event %s: %w", e.ID, err)
		}
	}
	return nil
}
