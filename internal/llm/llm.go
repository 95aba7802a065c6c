// Package llm defines the generative-text collaborator used to draft
// qualitative resume feedback.
package llm

import (
	"context"
	"errors"
)

// Prompt is a system instruction plus the user turn.
type Prompt struct {
	System string
	User   string
}

// Client generates a raw text reply for a prompt. Replies are expected to
// contain a JSON object but are not guaranteed to.
type Client interface {
	Generate(ctx context.Context, prompt Prompt) (string, error)
}

// ErrNotConfigured is returned by the placeholder client.
var ErrNotConfigured = errors.New("LLM provider not configured")

// PlaceholderClient is used when no provider is configured.
type PlaceholderClient struct{}

// Generate returns ErrNotConfigured.
func (PlaceholderClient) Generate(ctx context.Context, prompt Prompt) (string, error) {
	_ = ctx
	_ = prompt
	return "", ErrNotConfigured
}

// ClientFunc adapts a function to Client.
type ClientFunc func(ctx context.Context, prompt Prompt) (string, error)

// Generate calls f.
func (f ClientFunc) Generate(ctx context.Context, prompt Prompt) (string, error) {
	return f(ctx, prompt)
}
