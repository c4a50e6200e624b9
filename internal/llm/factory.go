package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/agenthands/persona/internal/config"
	"github.com/agenthands/persona/internal/platform/logger"
)

// NewClient builds the generation client for cfg.Provider.
func NewClient(ctx context.Context, cfg config.LLMConfig, log *logger.Logger) (LLMClient, error) {
	if log == nil {
		log = logger.Nop()
	}
	provider := strings.ToLower(cfg.Provider)

	switch provider {
	case "openai":
		return NewOpenAIClient(provider, cfg.APIKey, cfg.Model, "", cfg.BaseURL), nil

	case "gemini":
		return NewGeminiClient(ctx, cfg.APIKey, cfg.Model, "")

	case "claude", "anthropic":
		return NewClaudeClient(cfg.APIKey, cfg.Model, cfg.BaseURL), nil

	case "ollama":
		baseURL := ollamaBaseURL(cfg.BaseURL)
		log.Info("initializing ollama via openai-compatible api", "base_url", baseURL, "model", cfg.Model)
		return NewOpenAIClient(provider, ollamaKey(cfg.APIKey), cfg.Model, "", baseURL), nil

	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", provider)
	}
}

// NewEmbedder builds the embedding client for cfg.Provider. cfg.Model names the embedding model.
func NewEmbedder(ctx context.Context, cfg config.LLMConfig, log *logger.Logger) (EmbedderClient, error) {
	if log == nil {
		log = logger.Nop()
	}
	provider := strings.ToLower(cfg.Provider)

	switch provider {
	case "openai":
		return NewOpenAIClient(provider, cfg.APIKey, "", cfg.Model, cfg.BaseURL), nil

	case "gemini":
		return NewGeminiClient(ctx, cfg.APIKey, "", cfg.Model)

	case "ollama":
		baseURL := ollamaBaseURL(cfg.BaseURL)
		log.Info("initializing ollama embedder", "base_url", baseURL, "model", cfg.Model)
		return NewOpenAIClient(provider, ollamaKey(cfg.APIKey), "", cfg.Model, baseURL), nil

	case "claude", "anthropic":
		return nil, fmt.Errorf("provider %s does not support embeddings", provider)

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", provider)
	}
}

func ollamaBaseURL(baseURL string) string {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if !strings.HasSuffix(baseURL, "/v1") {
		baseURL = fmt.Sprintf("%s/v1", strings.TrimRight(baseURL, "/"))
	}
	return baseURL
}

// Ollama ignores the key but the client requires one.
func ollamaKey(apiKey string) string {
	if apiKey == "" {
		return "ollama"
	}
	return apiKey
}
