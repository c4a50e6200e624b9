package llm

import (
	"context"
)

type LLMClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// EmbedderClient turns text into vectors. Identity is "provider:model" and is stored
// next to every vector so later queries can detect a changed embedder.
type EmbedderClient interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Identity() string
}

type RerankerClient interface {
	Rank(ctx context.Context, query string, documents []string) ([]int, error)
}
