package engine

import (
	"context"
	"testing"
	"time"

	recordingdomain "gui-replay/backend/internal/recording/domain"
)

func TestOPAEvaluator_HealthCheck(t *testing.T) {
	e := NewOPAEvaluator(nil, 0)
	if err := e.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
}

func TestEvaluate_UnscrubbedRecording(t *testing.T) {
	e := NewOPAEvaluator(nil, 0)
	res, err := e.Evaluate(context.Background(), &recordingdomain.Recording{ID: "rec-1"})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !res.ScrubRequired {
		t.Error("scrub should be required for an unscrubbed recording")
	}
	if res.ExportAllowed {
		t.Error("export should be denied for an unscrubbed recording")
	}
	if res.RetentionDays != 90 {
		t.Errorf("retention = %d, want default 90", res.RetentionDays)
	}
}

func TestEvaluate_ScrubbedRecording(t *testing.T) {
	e := NewOPAEvaluator(nil, 30)
	res, err := e.Evaluate(context.Background(), &recordingdomain.Recording{
		ID:                  "rec-2",
		ScrubbedBy:          "PRIVATE_AI",
		OriginalRecordingID: "rec-1",
	})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if res.ScrubRequired {
		t.Error("scrub should not be required for a scrubbed derivative")
	}
	if !res.ExportAllowed {
		t.Error("export should be allowed for a scrubbed derivative")
	}
	if res.RetentionDays != 30 {
		t.Errorf("retention = %d, want configured 30", res.RetentionDays)
	}
}

func TestEvaluate_CustomPolicy(t *testing.T) {
	custom := `package guireplay.privacy

default scrub_required = false
default export_allowed = true
default retention_days = 7

scrub_required if {
	input.recording.platform_name == "windows"
}
`
	e := NewOPAEvaluator([]string{custom}, 0)
	res, err := e.Evaluate(context.Background(), &recordingdomain.Recording{
		ID: "rec-3", PlatformName: "windows",
	})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !res.ScrubRequired {
		t.Error("custom policy should require scrub for windows recordings")
	}
	if res.RetentionDays != 7 {
		t.Errorf("retention = %d, want 7", res.RetentionDays)
	}
}

func TestEvaluate_BrokenPolicyFallsBackToDefaults(t *testing.T) {
	e := NewOPAEvaluator([]string{"package broken\nthis is not rego"}, 0)
	res, err := e.Evaluate(context.Background(), &recordingdomain.Recording{ID: "rec-4"})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !res.ScrubRequired || res.ExportAllowed {
		t.Errorf("broken policy should yield conservative defaults, got %+v", res)
	}
}

func TestEvaluate_FinishedFlag(t *testing.T) {
	now := time.Now()
	e := NewOPAEvaluator(nil, 0)
	input := e.buildInput(&recordingdomain.Recording{ID: "rec-5", FinishedAt: &now})
	rec := input["recording"].(map[string]interface{})
	if rec["finished"] != true {
		t.Error("finished flag not set in policy input")
	}
}
