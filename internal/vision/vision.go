// Package vision abstracts the multimodal model used by the target locator
// and the replay transposer. Callers build a Request with a system prompt,
// a user prompt, and zero or more images; implementations return the raw
// model text.
package vision

import (
	"context"
	"image"
)

// Request is a single prompt against a vision-capable chat model.
type Request struct {
	// System sets the model persona (e.g. "You are an expert GUI interpreter.").
	System string
	// Prompt is the user message text.
	Prompt string
	// Images are attached to the user message as inline PNG data.
	Images []image.Image
}

// Prompter sends a request to a model and returns the text of the first
// choice. Implementations must be safe for sequential reuse; the locator
// issues many calls per search.
type Prompter interface {
	Prompt(ctx context.Context, req Request) (string, error)
}
