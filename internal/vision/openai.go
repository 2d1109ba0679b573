package vision

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/sashabaranov/go-openai"

	"gui-replay/backend/internal/imaging"
)

const (
	maxAttempts  = 3
	initialDelay = 1 * time.Second
)

// OpenAIConfig configures the OpenAI-backed Prompter.
type OpenAIConfig struct {
	APIKey string
	// Model must be vision-capable (e.g. gpt-4o).
	Model string
	// BaseURL overrides the API endpoint for OpenAI-compatible gateways.
	// Empty uses the default.
	BaseURL string
	// Temperature applies to every request; locator prompts want it low.
	Temperature float32
	// MaxTokens bounds the completion length. Zero leaves the model default.
	MaxTokens int
}

// OpenAIClient implements Prompter against the OpenAI chat completions API.
type OpenAIClient struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

// NewOpenAIClient validates cfg and returns a ready client.
func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("vision: API key is required")
	}
	if cfg.Model == "" {
		return nil, errors.New("vision: model is required")
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &OpenAIClient{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}, nil
}

// Prompt sends the request with images inlined as PNG data URLs. Transient
// failures are retried with linear backoff; the last error is returned after
// the final attempt.
func (c *OpenAIClient) Prompt(ctx context.Context, req Request) (string, error) {
	parts := make([]openai.ChatMessagePart, 0, len(req.Images)+1)
	parts = append(parts, openai.ChatMessagePart{
		Type: openai.ChatMessagePartTypeText,
		Text: req.Prompt,
	})
	for _, img := range req.Images {
		data, err := imaging.EncodePNG(img)
		if err != nil {
			return "", err
		}
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL:    "data:image/png;base64," + base64.StdEncoding.EncodeToString(data),
				Detail: openai.ImageURLDetailHigh,
			},
		})
	}

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:         openai.ChatMessageRoleUser,
		MultiContent: parts,
	})

	chatReq := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
	}
	if c.maxTokens > 0 {
		chatReq.MaxTokens = c.maxTokens
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(attempt) * initialDelay):
			}
		}
		resp, err := c.client.CreateChatCompletion(ctx, chatReq)
		if err != nil {
			lastErr = err
			log.Printf("vision: attempt %d failed: %v", attempt+1, err)
			continue
		}
		if len(resp.Choices) == 0 {
			lastErr = errors.New("vision: no choices in response")
			continue
		}
		return resp.Choices[0].Message.Content, nil
	}
	return "", fmt.Errorf("vision: failed after %d attempts: %w", maxAttempts, lastErr)
}
