package llm

import (
	"context"
	"encoding/json"
	"errors"
)

// Generator abstracts LLM providers for text and JSON generation.
type Generator interface {
	// Complete returns the model's free-text reply to the given prompts.
	Complete(ctx context.Context, system, user string) (string, error)
	// CompleteJSON returns the model's reply constrained to a JSON object.
	CompleteJSON(ctx context.Context, system, user string) (json.RawMessage, error)
}

// Extractor turns an uploaded document into plain text.
type Extractor interface {
	Extract(ctx context.Context, data []byte) (string, error)
}

// ErrNotConfigured is returned by the placeholder generator.
var ErrNotConfigured = errors.New("LLM provider not configured")

// PlaceholderGenerator is a stub implementation used when no provider is wired.
type PlaceholderGenerator struct{}

func (PlaceholderGenerator) Complete(ctx context.Context, system, user string) (string, error) {
	_ = ctx
	_ = system
	_ = user
	return "", ErrNotConfigured
}

func (PlaceholderGenerator) CompleteJSON(ctx context.Context, system, user string) (json.RawMessage, error) {
	_ = ctx
	_ = system
	_ = user
	return nil, ErrNotConfigured
}

var _ Generator = PlaceholderGenerator{}
