package ports

import "context"

// LLMClient is the minimal chat-completion surface the generators need
type LLMClient interface {
	ChatCompletion(ctx context.Context, model string, prompt string, maxTokens int) (string, error)
}
