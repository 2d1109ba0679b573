package privacy

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	eventrepo "gui-replay/backend/internal/event/repository"
	"gui-replay/backend/internal/privacy/engine"
	"gui-replay/backend/internal/privacy/repository"
	"gui-replay/backend/internal/recording"
	recordingdomain "gui-replay/backend/internal/recording/domain"
	recordingrepo "gui-replay/backend/internal/recording/repository"
)

// Service runs the scrub workflow: policy gate, copy, redact, ledger.
type Service struct {
	recordings   recordingrepo.Repository
	recordingSvc *recording.Service
	events       eventrepo.Repository
	ledger       repository.Repository
	scrubber     Scrubber
	policy       engine.Evaluator
}

// NewService wires the scrub workflow.
func NewService(
	recordings recordingrepo.Repository,
	recordingSvc *recording.Service,
	events eventrepo.Repository,
	ledger repository.Repository,
	scrubber Scrubber,
	policy engine.Evaluator,
) *Service {
	return &Service{
		recordings:   recordings,
		recordingSvc: recordingSvc,
		events:       events,
		ledger:       ledger,
		scrubber:     scrubber,
		policy:       policy,
	}
}

// CheckExport evaluates privacy policy for the recording without changing
// anything. Handlers gate downloads on the result.
func (s *Service) CheckExport(ctx context.Context, recordingID string) (engine.Result, error) {
	rec, err := s.recordings.GetByID(ctx, recordingID)
	if err != nil {
		return engine.Result{}, fmt.Errorf("get recording: %w", err)
	}
	if rec == nil {
		return engine.Result{}, fmt.Errorf("recording %s not found", recordingID)
	}
	return s.policy.Evaluate(ctx, rec)
}

// ScrubProvenance returns the ledger entry for a scrubbed recording, or nil
// when the recording is not a scrub product.
func (s *Service) ScrubProvenance(ctx context.Context, recordingID string) (*repository.ScrubbedRecording, error) {
	return s.ledger.GetByRecordingID(ctx, recordingID)
}

// ScrubHistory lists every completed scrub, newest first.
func (s *Service) ScrubHistory(ctx context.Context) ([]*repository.ScrubbedRecording, error) {
	return s.ledger.List(ctx)
}

// ScrubRecording produces a scrubbed copy of the recording: the source is
// copied whole, then free text is redacted through the provider,
// accessibility snapshots are dropped, and the copy is entered into the
// scrub ledger. The source recording is never modified.
func (s *Service) ScrubRecording(ctx context.Context, recordingID string) (*recordingdomain.Recording, error) {
	src, err := s.recordings.GetByID(ctx, recordingID)
	if err != nil {
		return nil, fmt.Errorf("get recording: %w", err)
	}
	if src == nil {
		return nil, fmt.Errorf("recording %s not found", recordingID)
	}
	if src.IsScrubbed() {
		return nil, fmt.Errorf("recording %s is already a scrubbed derivative", recordingID)
	}

	result, err := s.policy.Evaluate(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("evaluate privacy policy: %w", err)
	}
	if !result.ScrubRequired {
		return nil, fmt.Errorf("privacy policy does not require scrubbing recording %s", recordingID)
	}

	cp, err := s.recordingSvc.Copy(ctx, recordingID)
	if err != nil {
		return nil, fmt.Errorf("copy recording: %w", err)
	}

	if cp.TaskDescription != "" {
		scrubbed, err := s.scrubber.ScrubText(ctx, cp.TaskDescription)
		if err != nil {
			return nil, fmt.Errorf("scrub task description: %w", err)
		}
		if err := s.recordings.UpdateTaskDescription(ctx, cp.ID, scrubbed); err != nil {
			return nil, fmt.Errorf("store scrubbed task description: %w", err)
		}
		cp.TaskDescription = scrubbed
	}

	windows, err := s.events.ListWindowEvents(ctx, cp.ID)
	if err != nil {
		return nil, fmt.Errorf("list window events: %w", err)
	}
	for _, w := range windows {
		if w.Title == "" {
			continue
		}
		scrubbed, err := s.scrubber.ScrubText(ctx, w.Title)
		if err != nil {
			return nil, fmt.Errorf("scrub window title: %w", err)
		}
		if scrubbed == w.Title {
			continue
		}
		if err := s.events.UpdateWindowEventTitle(ctx, w.ID, scrubbed); err != nil {
			return nil, fmt.Errorf("store scrubbed window title: %w", err)
		}
	}

	if err := s.events.ClearElementState(ctx, cp.ID); err != nil {
		return nil, fmt.Errorf("clear element state: %w", err)
	}

	if err := s.recordings.MarkScrubbed(ctx, cp.ID, s.scrubber.Name()); err != nil {
		return nil, fmt.Errorf("mark recording scrubbed: %w", err)
	}
	cp.ScrubbedBy = s.scrubber.Name()

	entry := &repository.ScrubbedRecording{
		ID:                  uuid.NewString(),
		RecordingID:         cp.ID,
		OriginalRecordingID: src.ID,
		Provider:            s.scrubber.Name(),
		CreatedAt:           time.Now(),
	}
	if err := s.ledger.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("record scrub: %w", err)
	}
	return cp, nil
}
