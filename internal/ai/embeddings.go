package ai

import (
	"context"
	"fmt"

	"github.com/Ramprakash852/AI-storyteller/internal/config"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Embedder turns text into an embedding vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// EmbedderFunc adapts a function to the Embedder interface.
type EmbedderFunc func(ctx context.Context, text string) ([]float32, error)

func (f EmbedderFunc) Embed(ctx context.Context, text string) ([]float32, error) {
	return f(ctx, text)
}

// GenerateEmbedding returns an embedding vector for the given text.
// Default provider is Google Generative AI (text-embedding-004).
func GenerateEmbedding(ctx context.Context, cfg *config.Config, text string) ([]float32, error) {
	switch cfg.EmbeddingsProvider {
	case "google", "":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("missing GEMINI_API_KEY for embeddings")
		}
		client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
		if err != nil {
			return nil, err
		}
		defer client.Close()

		model := client.EmbeddingModel(cfg.GoogleEmbeddingsModel)
		resp, err := model.EmbedContent(ctx, genai.Text(text))
		if err != nil {
			return nil, err
		}
		if resp.Embedding == nil {
			return nil, fmt.Errorf("no embedding returned")
		}

		return resp.Embedding.Values, nil

	default:
		return nil, fmt.Errorf("unknown embeddings provider: %s", cfg.EmbeddingsProvider)
	}
}

// ConfigEmbedder returns an Embedder bound to the configured provider.
func ConfigEmbedder(cfg *config.Config) Embedder {
	return EmbedderFunc(func(ctx context.Context, text string) ([]float32, error) {
		return GenerateEmbedding(ctx, cfg, text)
	})
}
