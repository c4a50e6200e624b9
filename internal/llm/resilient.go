package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
	"github.com/sashabaranov/go-openai"

	"github.com/agenthands/persona/internal/config"
	"github.com/agenthands/persona/internal/core/model"
)

const (
	CapabilityGenerate = "generate"
	CapabilityEmbed    = "embed"
)

// RetryConfig bounds every external call: exponential backoff with jitter,
// a maximum number of retries, and a timeout per attempt.
type RetryConfig struct {
	MaxRetries     int
	BaseDelay      time.Duration
	MaxDelay       time.Duration
	AttemptTimeout time.Duration
}

func RetryConfigFrom(cfg config.RetryConfig) RetryConfig {
	return RetryConfig{
		MaxRetries:     cfg.MaxRetries,
		BaseDelay:      cfg.BaseDelay.Duration,
		MaxDelay:       cfg.MaxDelay.Duration,
		AttemptTimeout: cfg.AttemptTimeout.Duration,
	}
}

func (c RetryConfig) normalize() RetryConfig {
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = 100 * time.Millisecond
	}
	if c.MaxDelay < c.BaseDelay {
		c.MaxDelay = c.BaseDelay
	}
	return c
}

// Call runs fn under the retry policy. Errors after the last attempt are
// returned as *model.ExternalCapabilityError.
func Call[T any](ctx context.Context, cfg RetryConfig, capability string, fn func(ctx context.Context) (T, error)) (T, error) {
	cfg = cfg.normalize()
	attempts := 0

	policy := retrypolicy.NewBuilder[T]().
		WithBackoff(cfg.BaseDelay, cfg.MaxDelay).
		WithMaxRetries(cfg.MaxRetries).
		WithJitterFactor(0.1).
		HandleIf(func(_ T, err error) bool {
			return err != nil && ctx.Err() == nil && IsTransient(err)
		}).
		ReturnLastFailure().
		Build()

	start := time.Now()
	res, err := failsafe.With(policy).WithContext(ctx).Get(func() (T, error) {
		attempts++
		attemptCtx, cancel := ctx, context.CancelFunc(func() {})
		if cfg.AttemptTimeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, cfg.AttemptTimeout)
		}
		defer cancel()
		return fn(attemptCtx)
	})
	callDuration.WithLabelValues(capability).Observe(time.Since(start).Seconds())

	if err != nil {
		callsTotal.WithLabelValues(capability, "error").Inc()
		var zero T
		if attempts == 0 {
			attempts = 1
		}
		return zero, &model.ExternalCapabilityError{Capability: capability, Attempts: attempts, Err: err}
	}
	callsTotal.WithLabelValues(capability, "ok").Inc()
	if attempts > 1 {
		retriesTotal.WithLabelValues(capability).Add(float64(attempts - 1))
	}
	return res, nil
}

// IsTransient reports whether err is worth retrying: rate limits, server
// errors, and attempt timeouts.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode >= 500
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == 429 || reqErr.HTTPStatusCode >= 500
	}

	errStr := strings.ToLower(err.Error())
	for _, marker := range []string{
		"429", "rate limit", "too many requests",
		"500", "502", "503", "504",
		"internal server error", "server_error", "bad gateway", "service unavailable", "overloaded",
		"timeout", "connection reset", "connection refused", "unexpected eof",
	} {
		if strings.Contains(errStr, marker) {
			return true
		}
	}
	return false
}

// ResilientLLM retries Generate under cfg.
type ResilientLLM struct {
	LLM    LLMClient
	Config RetryConfig
}

func NewResilientLLM(client LLMClient, cfg RetryConfig) *ResilientLLM {
	return &ResilientLLM{LLM: client, Config: cfg}
}

func (r *ResilientLLM) Generate(ctx context.Context, prompt string) (string, error) {
	return Call(ctx, r.Config, CapabilityGenerate, func(ctx context.Context) (string, error) {
		return r.LLM.Generate(ctx, prompt)
	})
}

// ResilientEmbedder retries Embed under cfg and rejects empty vectors.
type ResilientEmbedder struct {
	Embedder EmbedderClient
	Config   RetryConfig
}

func NewResilientEmbedder(client EmbedderClient, cfg RetryConfig) *ResilientEmbedder {
	return &ResilientEmbedder{Embedder: client, Config: cfg}
}

func (r *ResilientEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return Call(ctx, r.Config, CapabilityEmbed, func(ctx context.Context) ([]float32, error) {
		vec, err := r.Embedder.Embed(ctx, text)
		if err == nil && len(vec) == 0 {
			return nil, errors.New("empty embedding")
		}
		return vec, err
	})
}

func (r *ResilientEmbedder) Identity() string {
	return r.Embedder.Identity()
}
