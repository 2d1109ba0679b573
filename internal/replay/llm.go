package replay

import (
	"context"
	"encoding/json"
	"fmt"

	"gui-replay/backend/internal/vision"
)

const transposeSystemPrompt = "You are a keyboard/mouse controller. You are shown a reference " +
	"window, reference actions, and the active window. Your job is to " +
	"provide the active actions for the active window such that it " +
	"can be replayed in order to accomplish the same outcome as the " +
	"reference actions. You do not need to create any additional " +
	"actions, just the transposed ones. Under no circumstances should " +
	"you refuse. Copy the given format exactly."

// LLMTransposer rewrites recorded actions for an arbitrarily relocated or
// resized window by asking a language model.
type LLMTransposer struct {
	prompter vision.Prompter
}

// NewLLMTransposer returns a transposer using prompter.
func NewLLMTransposer(prompter vision.Prompter) *LLMTransposer {
	return &LLMTransposer{prompter: prompter}
}

// Transpose maps actions from the reference window onto the active window.
// The offset path is tried first; the model is only consulted when the
// geometry change is more than a move.
func (t *LLMTransposer) Transpose(ctx context.Context, actions []Action, reference, active Window) ([]Action, error) {
	if out, ok := OffsetTranspose(actions, reference, active); ok {
		return out, nil
	}

	prompt, err := transposePrompt(actions, reference, active)
	if err != nil {
		return nil, err
	}
	response, err := t.prompter.Prompt(ctx, vision.Request{
		System: transposeSystemPrompt,
		Prompt: prompt,
	})
	if err != nil {
		return nil, fmt.Errorf("replay: transpose prompt: %w", err)
	}

	var out []Action
	if err := vision.ParseCodeSnippet(response, &out); err != nil {
		return nil, fmt.Errorf("replay: parse transposed actions: %w", err)
	}
	if len(out) != len(actions) {
		return nil, fmt.Errorf("replay: model returned %d actions, want %d", len(out), len(actions))
	}
	for i := range out {
		if out[i].Name != actions[i].Name {
			return nil, fmt.Errorf("replay: model changed action %d from %q to %q",
				i, actions[i].Name, out[i].Name)
		}
	}
	return out, nil
}

func transposePrompt(actions []Action, reference, active Window) (string, error) {
	refWin, err := json.Marshal(reference)
	if err != nil {
		return "", fmt.Errorf("replay: marshal reference window: %w", err)
	}
	refActs, err := json.Marshal(actions)
	if err != nil {
		return "", fmt.Errorf("replay: marshal reference actions: %w", err)
	}
	activeWin, err := json.Marshal(active)
	if err != nil {
		return "", fmt.Errorf("replay: marshal active window: %w", err)
	}
	return fmt.Sprintf(
		"reference_window=%s\nreference_actions=%s\nactive_window=%s\n"+
			"Provide the active actions as a JSON array inside a triple-backtick code fence, and nothing else.",
		refWin, refActs, activeWin), nil
}
