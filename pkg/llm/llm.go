// Package llm provides the optional model-backed text path. It is strictly
// best-effort: callers must always carry a deterministic fallback, and no
// call may block past its bounded timeout.
package llm

import "context"

// ChatRequest is a single system+user exchange.
type ChatRequest struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature *float64
}

// Client performs a chat completion and returns the assistant text.
type Client interface {
	Chat(ctx context.Context, req ChatRequest) (string, error)
}
