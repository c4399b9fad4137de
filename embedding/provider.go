package embedding

import (
	"context"
	"fmt"

	"github.com/tripseek/tripseek/config"
)

// Provider turns text into a dense vector for the semantic modality.
type Provider interface {
	GetEmbedding(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}

// NewProvider constructs a Provider from config.
func NewProvider(cfg *config.EmbeddingConfig) (Provider, error) {
	switch cfg.Provider {
	case "openai", "":
		return NewOpenAIProvider(cfg)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}
