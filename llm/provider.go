package llm

import (
	"context"
	"fmt"

	"github.com/tripseek/tripseek/config"
)

// Provider abstracts the chat-completion model used for grading, query
// refinement, fallback generation and plan generation.
type Provider interface {
	// GenerateCompletion returns the model's text for a system+user prompt pair.
	GenerateCompletion(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// NewProvider constructs a Provider from config.
func NewProvider(cfg *config.LLMConfig) (Provider, error) {
	switch cfg.Provider {
	case "openai", "":
		return NewOpenAIProvider(cfg)
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}
}
