package ai

import "context"

// AI is the language model. It knows nothing about children, users or the backend.
type AI interface {
	// Complete sends one system instruction and one user message and returns
	// the raw text of the first choice.
	Complete(ctx context.Context, systemPrompt, userText string) (string, error)
}
