package emotion

import (
	"context"
	"fmt"

	"github.com/agenthands/persona/internal/config"
	"github.com/agenthands/persona/internal/core/common"
	"github.com/agenthands/persona/internal/core/model"
	"github.com/agenthands/persona/internal/llm"
)

// labelScores is the JSON shape requested from language models.
type labelScores struct {
	Sadness  float64 `json:"sadness" jsonschema:"required,description=score for sadness"`
	Joy      float64 `json:"joy" jsonschema:"required,description=score for joy"`
	Love     float64 `json:"love" jsonschema:"required,description=score for love"`
	Anger    float64 `json:"anger" jsonschema:"required,description=score for anger"`
	Fear     float64 `json:"fear" jsonschema:"required,description=score for fear"`
	Surprise float64 `json:"surprise" jsonschema:"required,description=score for surprise"`
}

func (s labelScores) raw() [model.NumEmotions]float64 {
	return [model.NumEmotions]float64{
		model.Sadness:  s.Sadness,
		model.Joy:      s.Joy,
		model.Love:     s.Love,
		model.Anger:    s.Anger,
		model.Fear:     s.Fear,
		model.Surprise: s.Surprise,
	}
}

// LLMClassifier asks a generation model for per-label scores.
type LLMClassifier struct {
	llm    llm.LLMClient
	prompt string
	opts   options
}

func NewLLMClassifier(client llm.LLMClient, prompt string, opts ...Option) *LLMClassifier {
	if prompt == "" {
		prompt = config.DefaultEmotionPrompt
	}
	return &LLMClassifier{llm: client, prompt: prompt, opts: buildOptions(opts)}
}

func (c *LLMClassifier) Classify(ctx context.Context, text string) (model.EmotionDistribution, error) {
	prompt := common.Fill(c.prompt, map[string]string{"text": c.opts.truncate(text)})
	resp, err := c.llm.Generate(ctx, prompt)
	if err != nil {
		return model.EmotionDistribution{}, fmt.Errorf("failed to classify emotions: %w", err)
	}
	scores, err := common.ParseJSON[labelScores](resp)
	if err != nil {
		return model.EmotionDistribution{}, fmt.Errorf("failed to parse emotion scores: %w", err)
	}
	return Normalize(scores.raw())
}
