// Package recording manages capture sessions end to end: creation, the
// post-capture finishing pass, and whole-recording copies for scrub and
// experimentation workflows.
package recording

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"gui-replay/backend/internal/event"
	eventdomain "gui-replay/backend/internal/event/domain"
	eventrepo "gui-replay/backend/internal/event/repository"
	"gui-replay/backend/internal/recording/domain"
	"gui-replay/backend/internal/recording/repository"
	"gui-replay/backend/internal/screenshot"
	screenshotdomain "gui-replay/backend/internal/screenshot/domain"
	screenshotrepo "gui-replay/backend/internal/screenshot/repository"
)

// Service manages recordings across the entity repositories.
type Service struct {
	recordings  repository.Repository
	events      eventrepo.Repository
	screenshots screenshotrepo.Repository
	eventSvc    *event.Service
	shotSvc     *screenshot.Service
}

// NewService wires the recording workflows over the given repositories.
func NewService(
	recordings repository.Repository,
	events eventrepo.Repository,
	screenshots screenshotrepo.Repository,
	eventSvc *event.Service,
	shotSvc *screenshot.Service,
) *Service {
	return &Service{
		recordings:  recordings,
		events:      events,
		screenshots: screenshots,
		eventSvc:    eventSvc,
		shotSvc:     shotSvc,
	}
}

// StartParams describes a new capture session.
type StartParams struct {
	Timestamp                  float64
	MonitorWidth               int
	MonitorHeight              int
	DoubleClickIntervalSeconds float64
	DoubleClickDistancePixels  float64
	PlatformName               string
	TaskDescription            string
}

// Start registers a new recording and returns it.
func (s *Service) Start(ctx context.Context, p StartParams) (*domain.Recording, error) {
	if p.MonitorWidth <= 0 || p.MonitorHeight <= 0 {
		return nil, fmt.Errorf("recording: monitor dimensions are required")
	}
	rec := &domain.Recording{
		ID:                         uuid.NewString(),
		Timestamp:                  p.Timestamp,
		MonitorWidth:               p.MonitorWidth,
		MonitorHeight:              p.MonitorHeight,
		DoubleClickIntervalSeconds: p.DoubleClickIntervalSeconds,
		DoubleClickDistancePixels:  p.DoubleClickDistancePixels,
		PlatformName:               p.PlatformName,
		TaskDescription:            p.TaskDescription,
		CreatedAt:                  time.Now(),
	}
	if err := s.recordings.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("create recording: %w", err)
	}
	return rec, nil
}

// Finish runs the post-capture pass on a recording: trailing stop sequences
// are trimmed, timestamp references are resolved to IDs, frame diffs are
// derived, and the recording is marked complete. Safe to rerun.
func (s *Service) Finish(ctx context.Context, id string) error {
	rec, err := s.recordings.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get recording: %w", err)
	}
	if rec == nil {
		return fmt.Errorf("recording %s not found", id)
	}

	if err := s.eventSvc.TrimStopSequences(ctx, id); err != nil {
		return err
	}
	shotIDs, err := s.screenshots.ListTimestamps(ctx, id)
	if err != nil {
		return fmt.Errorf("list screenshot timestamps: %w", err)
	}
	if err := s.eventSvc.PostProcess(ctx, id, shotIDs); err != nil {
		return err
	}
	if err := s.shotSvc.ComputeDiffs(ctx, id); err != nil {
		return err
	}
	if err := s.recordings.Finish(ctx, id); err != nil {
		return fmt.Errorf("mark recording finished: %w", err)
	}
	return nil
}

// Copy duplicates a recording with all of its events and screenshots under a
// new ID, pointing the copy at its source. ID references inside the copy are
// re-resolved from timestamps, so the copy stands alone.
func (s *Service) Copy(ctx context.Context, id string) (*domain.Recording, error) {
	src, err := s.recordings.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get recording: %w", err)
	}
	if src == nil {
		return nil, fmt.Errorf("recording %s not found", id)
	}

	dst := *src
	dst.ID = uuid.NewString()
	dst.OriginalRecordingID = src.ID
	dst.CreatedAt = time.Now()
	if err := s.recordings.Create(ctx, &dst); err != nil {
		return nil, fmt.Errorf("create recording copy: %w", err)
	}

	if err := s.copyScreenshots(ctx, src.ID, dst.ID); err != nil {
		return nil, err
	}
	if err := s.copyWindowEvents(ctx, src.ID, dst.ID); err != nil {
		return nil, err
	}
	if err := s.copyActionEvents(ctx, src.ID, dst.ID); err != nil {
		return nil, err
	}

	shotIDs, err := s.screenshots.ListTimestamps(ctx, dst.ID)
	if err != nil {
		return nil, fmt.Errorf("list screenshot timestamps: %w", err)
	}
	if err := s.eventSvc.PostProcess(ctx, dst.ID, shotIDs); err != nil {
		return nil, err
	}
	return &dst, nil
}

func (s *Service) copyScreenshots(ctx context.Context, srcID, dstID string) error {
	shots, err := s.screenshots.ListByRecording(ctx, srcID)
	if err != nil {
		return fmt.Errorf("list screenshots: %w", err)
	}
	copies := make([]*screenshotdomain.Screenshot, len(shots))
	for i, sh := range shots {
		c := *sh
		c.ID = uuid.NewString()
		c.RecordingID = dstID
		copies[i] = &c
	}
	if err := s.screenshots.Create(ctx, copies); err != nil {
		return fmt.Errorf("copy screenshots: %w", err)
	}
	return nil
}

func (s *Service) copyWindowEvents(ctx context.Context, srcID, dstID string) error {
	events, err := s.events.ListWindowEvents(ctx, srcID)
	if err != nil {
		return fmt.Errorf("list window events: %w", err)
	}
	copies := make([]*eventdomain.WindowEvent, len(events))
	for i, e := range events {
		c := *e
		c.ID = uuid.NewString()
		c.RecordingID = dstID
		copies[i] = &c
	}
	if err := s.events.CreateWindowEvents(ctx, copies); err != nil {
		return fmt.Errorf("copy window events: %w", err)
	}
	return nil
}

func (s *Service) copyActionEvents(ctx context.Context, srcID, dstID string) error {
	events, err := s.events.ListActionEvents(ctx, srcID)
	if err != nil {
		return fmt.Errorf("list action events: %w", err)
	}
	var copies []*eventdomain.ActionEvent
	for _, e := range events {
		children, err := s.events.ListActionEventChildren(ctx, e.ID)
		if err != nil {
			return fmt.Errorf("list children of %s: %w", e.ID, err)
		}
		parent := copyActionEvent(e, dstID, nil)
		copies = append(copies, parent)
		for _, child := range children {
			copies = append(copies, copyActionEvent(child, dstID, &parent.ID))
		}
	}
	if err := s.events.CreateActionEvents(ctx, copies); err != nil {
		return fmt.Errorf("copy action events: %w", err)
	}
	return nil
}

// copyActionEvent clones e under a new ID with stale row references cleared;
// timestamps stay so post-processing can relink.
func copyActionEvent(e *eventdomain.ActionEvent, recordingID string, parentID *string) *eventdomain.ActionEvent {
	c := *e
	c.ID = uuid.NewString()
	c.RecordingID = recordingID
	c.ParentID = parentID
	c.ScreenshotID = nil
	c.WindowEventID = nil
	return &c
}
