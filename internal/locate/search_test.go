package locate

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"strings"
	"testing"

	"gui-replay/backend/internal/vision"
)

// scriptedPrompter replays canned responses and records every request.
type scriptedPrompter struct {
	replies []string
	calls   []vision.Request
}

func (p *scriptedPrompter) Prompt(_ context.Context, req vision.Request) (string, error) {
	p.calls = append(p.calls, req)
	if len(p.calls) > len(p.replies) {
		return "", fmt.Errorf("script exhausted after %d calls", len(p.replies))
	}
	return p.replies[len(p.calls)-1], nil
}

func closestJSON(n int) string {
	return fmt.Sprintf("```json\n{\"closest\": %d}\n```", n)
}

func testScreenshot(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 200, A: 255})
		}
	}
	return img
}

func TestCursorSearch_ConsensusWins(t *testing.T) {
	prompter := &scriptedPrompter{replies: []string{
		closestJSON(2),
		closestJSON(3),
		closestJSON(3),
	}}
	search, err := NewCursorSearch(prompter, CursorParams{MaxIterations: 1})
	if err != nil {
		t.Fatalf("NewCursorSearch: %v", err)
	}

	res, err := search.Locate(context.Background(), testScreenshot(600, 600), "the save button")
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if len(res.Iterations) != 1 {
		t.Fatalf("iterations = %d, want 1", len(res.Iterations))
	}
	it := res.Iterations[0]
	if got, want := fmt.Sprint(it.Votes), "[2 3 3]"; got != want {
		t.Errorf("votes = %v, want %v", got, want)
	}
	if it.Chosen.X < 0 || it.Chosen.X >= 200 || it.Chosen.Y < 0 || it.Chosen.Y >= 200 {
		t.Errorf("chosen %v outside downsampled bounds", it.Chosen)
	}
	if res.Point.X != it.Chosen.X*3 || res.Point.Y != it.Chosen.Y*3 {
		t.Errorf("point = %v, want chosen scaled by 3 (%v)", res.Point, it.Chosen)
	}
	if res.Annotated == nil {
		t.Error("annotated image missing")
	}
}

func TestCursorSearch_SpreadShrinksEachRound(t *testing.T) {
	prompter := &scriptedPrompter{replies: []string{
		closestJSON(1), closestJSON(1),
		closestJSON(4), closestJSON(4),
	}}
	search, err := NewCursorSearch(prompter, CursorParams{MaxIterations: 2, MaxOverlapRatio: 2})
	if err != nil {
		t.Fatalf("NewCursorSearch: %v", err)
	}

	res, err := search.Locate(context.Background(), testScreenshot(900, 900), "a text field")
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if len(res.Iterations) != 2 {
		t.Fatalf("iterations = %d, want 2", len(res.Iterations))
	}
	if res.Iterations[0].Spread != 1.0 {
		t.Errorf("round 1 spread = %v, want 1.0", res.Iterations[0].Spread)
	}
	if res.Iterations[1].Spread != 0.5 {
		t.Errorf("round 2 spread = %v, want 0.5", res.Iterations[1].Spread)
	}
	if res.Iterations[1].Center != res.Iterations[0].Chosen {
		t.Errorf("round 2 center = %v, want round 1 winner %v", res.Iterations[1].Center, res.Iterations[0].Chosen)
	}
}

func TestCursorSearch_OverlapStopsSearch(t *testing.T) {
	// A tiny screenshot forces the minimum font size, so the four label
	// rectangles overlap almost completely in the first round.
	prompter := &scriptedPrompter{replies: []string{
		closestJSON(1), closestJSON(1),
	}}
	search, err := NewCursorSearch(prompter, CursorParams{})
	if err != nil {
		t.Fatalf("NewCursorSearch: %v", err)
	}

	res, err := search.Locate(context.Background(), testScreenshot(60, 60), "anything")
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if len(res.Iterations) != 1 {
		t.Fatalf("iterations = %d, want 1 (overlap should stop the search)", len(res.Iterations))
	}
	if res.Iterations[0].OverlapRatio <= 0.2 {
		t.Errorf("overlap = %v, want > 0.2", res.Iterations[0].OverlapRatio)
	}
}

func TestCursorSearch_FeedsExceptionsBack(t *testing.T) {
	prompter := &scriptedPrompter{replies: []string{
		"no json here",
		closestJSON(2), closestJSON(2),
	}}
	search, err := NewCursorSearch(prompter, CursorParams{MaxIterations: 1})
	if err != nil {
		t.Fatalf("NewCursorSearch: %v", err)
	}

	if _, err := search.Locate(context.Background(), testScreenshot(600, 600), "a link"); err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if len(prompter.calls) != 3 {
		t.Fatalf("calls = %d, want 3", len(prompter.calls))
	}
	if strings.Contains(prompter.calls[0].Prompt, "could not be used") {
		t.Error("first prompt should carry no exception feedback")
	}
	if !strings.Contains(prompter.calls[1].Prompt, "could not be used") {
		t.Error("second prompt should carry exception feedback")
	}
}

func TestCursorSearch_OutOfRangeAnswerRejected(t *testing.T) {
	prompter := &scriptedPrompter{replies: []string{
		closestJSON(9),
		closestJSON(1), closestJSON(1),
	}}
	search, err := NewCursorSearch(prompter, CursorParams{MaxIterations: 1})
	if err != nil {
		t.Fatalf("NewCursorSearch: %v", err)
	}

	res, err := search.Locate(context.Background(), testScreenshot(600, 600), "a menu")
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if got, want := fmt.Sprint(res.Iterations[0].Votes), "[1 1]"; got != want {
		t.Errorf("votes = %v, want %v", got, want)
	}
	if !strings.Contains(prompter.calls[1].Prompt, "out of range") {
		t.Error("second prompt should mention the out-of-range answer")
	}
}

func TestCursorSearch_BacktracksAfterFailedRound(t *testing.T) {
	prompter := &scriptedPrompter{replies: []string{
		// Round 1 succeeds.
		closestJSON(1), closestJSON(1),
		// Round 2 burns all retries.
		"bad", "bad", "bad",
		// Retried round after backtracking succeeds, then the next one.
		closestJSON(2), closestJSON(2),
		closestJSON(3), closestJSON(3),
	}}
	search, err := NewCursorSearch(prompter, CursorParams{MaxIterations: 4, MaxOverlapRatio: 2})
	if err != nil {
		t.Fatalf("NewCursorSearch: %v", err)
	}

	res, err := search.Locate(context.Background(), testScreenshot(900, 900), "an icon")
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if len(res.Iterations) != 3 {
		t.Fatalf("iterations = %d, want 3", len(res.Iterations))
	}
	// The retried round restarts from the coarse region.
	if res.Iterations[1].Spread != 1.0 {
		t.Errorf("retried round spread = %v, want 1.0", res.Iterations[1].Spread)
	}
	if res.Iterations[1].Center != (Point{X: 150, Y: 150}) {
		t.Errorf("retried round center = %v, want image center", res.Iterations[1].Center)
	}
}

func TestCursorSearch_FirstRoundFailureErrors(t *testing.T) {
	prompter := &scriptedPrompter{replies: []string{"bad", "bad", "bad"}}
	search, err := NewCursorSearch(prompter, CursorParams{MaxIterations: 2})
	if err != nil {
		t.Fatalf("NewCursorSearch: %v", err)
	}
	if _, err := search.Locate(context.Background(), testScreenshot(600, 600), "a toolbar"); err == nil {
		t.Fatal("expected error when the first round cannot produce an answer")
	}
}

func TestCursorSearch_OnIteration(t *testing.T) {
	prompter := &scriptedPrompter{replies: []string{closestJSON(1), closestJSON(1)}}
	search, err := NewCursorSearch(prompter, CursorParams{MaxIterations: 1})
	if err != nil {
		t.Fatalf("NewCursorSearch: %v", err)
	}
	var seen []Iteration
	search.OnIteration = func(it Iteration) { seen = append(seen, it) }

	if _, err := search.Locate(context.Background(), testScreenshot(600, 600), "a tab"); err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if len(seen) != 1 {
		t.Errorf("observer calls = %d, want 1", len(seen))
	}
}

func TestNewCursorSearch_Validation(t *testing.T) {
	if _, err := NewCursorSearch(&scriptedPrompter{}, CursorParams{NumCursors: 5}); err == nil {
		t.Error("expected error for non-square NumCursors")
	}
	if _, err := NewCursorSearch(&scriptedPrompter{}, CursorParams{SpreadReduction: 1.5}); err == nil {
		t.Error("expected error for SpreadReduction outside (0, 1)")
	}
}

func TestCursorSearch_EmptyTarget(t *testing.T) {
	search, err := NewCursorSearch(&scriptedPrompter{}, CursorParams{})
	if err != nil {
		t.Fatalf("NewCursorSearch: %v", err)
	}
	if _, err := search.Locate(context.Background(), testScreenshot(60, 60), ""); err == nil {
		t.Fatal("expected error for empty target")
	}
}

func TestGenerateCursors_LatticeWithinBounds(t *testing.T) {
	search, err := NewCursorSearch(&scriptedPrompter{}, CursorParams{})
	if err != nil {
		t.Fatalf("NewCursorSearch: %v", err)
	}
	cursors := generateCursors(search.rng, Point{X: 100, Y: 100}, 1.0, 200, 200, 9, 0)
	if len(cursors) != 9 {
		t.Fatalf("cursors = %d, want 9", len(cursors))
	}
	for _, c := range cursors {
		if c.X < 0 || c.X > 199 || c.Y < 0 || c.Y > 199 {
			t.Errorf("cursor %v outside bounds", c)
		}
	}
	// With zero jitter the lattice is symmetric around the center.
	if cursors[4] != (Point{X: 100, Y: 100}) {
		t.Errorf("middle cursor = %v, want center", cursors[4])
	}
}

func TestGenerateCursors_ClampsNearEdge(t *testing.T) {
	search, err := NewCursorSearch(&scriptedPrompter{}, CursorParams{})
	if err != nil {
		t.Fatalf("NewCursorSearch: %v", err)
	}
	cursors := generateCursors(search.rng, Point{X: 0, Y: 0}, 1.0, 100, 100, 4, 0)
	for _, c := range cursors {
		if c.X < 0 || c.Y < 0 {
			t.Errorf("cursor %v not clamped", c)
		}
	}
}
