package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/agenthands/persona/internal/config"
	"github.com/agenthands/persona/internal/core/common"
	"github.com/agenthands/persona/internal/core/model"
	"github.com/agenthands/persona/internal/llm"
	"github.com/agenthands/persona/internal/platform/logger"
	"github.com/agenthands/persona/internal/store"
)

const (
	DefaultTopK    = 3
	DefaultTimeout = 60 * time.Second
	// rerankFactor widens the candidate set handed to the reranker.
	rerankFactor = 2
)

type Query struct {
	UserID   string               `json:"user_id"`
	Question string               `json:"question"`
	TopK     int                  `json:"top_k,omitempty"`
	Filter   model.FragmentFilter `json:"filter"`
}

type Answer struct {
	Text      string                 `json:"answer"`
	Fragments []model.ScoredFragment `json:"fragments"`
}

type Options struct {
	TopK    int
	Timeout time.Duration
	Prompt  string
}

func OptionsFrom(q config.QueryConfig, p config.PromptsConfig) Options {
	return Options{TopK: q.TopK, Timeout: q.Timeout.Duration, Prompt: p.Query}
}

// Engine answers questions about one user's persona from that user's fragments only.
type Engine struct {
	embedder  llm.EmbedderClient
	generator llm.LLMClient
	reranker  llm.RerankerClient
	index     store.VectorIndex
	opts      Options
	log       *logger.Logger
}

func NewEngine(embedder llm.EmbedderClient, generator llm.LLMClient, idx store.VectorIndex, opts Options, log *logger.Logger) *Engine {
	if opts.TopK <= 0 {
		opts.TopK = DefaultTopK
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if strings.TrimSpace(opts.Prompt) == "" {
		opts.Prompt = config.DefaultQueryPrompt
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Engine{embedder: embedder, generator: generator, index: idx, opts: opts, log: log}
}

// WithReranker reorders retrieved fragments before prompting.
func (e *Engine) WithReranker(r llm.RerankerClient) *Engine {
	e.reranker = r
	return e
}

// Ask retrieves the user's most relevant fragments and generates a grounded answer.
// A panic inside one query is returned as an error.
func (e *Engine) Ask(ctx context.Context, q Query) (ans Answer, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("query for %s panicked: %v", q.UserID, r)
		}
		queriesTotal.WithLabelValues(outcome(err)).Inc()
		queryDuration.Observe(time.Since(start).Seconds())
	}()

	if strings.TrimSpace(q.UserID) == "" {
		return Answer{}, &model.MalformedInputError{Field: "user_id", Source: "query"}
	}
	if strings.TrimSpace(q.Question) == "" {
		return Answer{}, &model.MalformedInputError{Field: "question", Source: "query"}
	}

	ctx, cancel := context.WithTimeout(ctx, e.opts.Timeout)
	defer cancel()

	n, err := e.index.Count(ctx, q.UserID)
	if err != nil {
		return Answer{}, fmt.Errorf("count fragments: %w", err)
	}
	if n == 0 {
		return Answer{}, &model.EmptyPersonaIndexError{UserID: q.UserID}
	}

	indexed, err := e.index.EmbeddingIdentity(ctx, q.UserID)
	if err != nil {
		return Answer{}, fmt.Errorf("read embedder identity: %w", err)
	}
	if current := e.embedder.Identity(); indexed != current {
		return Answer{}, &model.EmbeddingMismatchError{UserID: q.UserID, Indexed: indexed, Query: current}
	}

	vec, err := e.embedder.Embed(ctx, q.Question)
	if err != nil {
		return Answer{}, fmt.Errorf("embed question: %w", err)
	}

	k := q.TopK
	if k <= 0 {
		k = e.opts.TopK
	}
	limit := k
	if e.reranker != nil {
		limit = k * rerankFactor
	}
	hits, err := e.index.Search(ctx, q.UserID, vec, limit, q.Filter)
	if err != nil {
		return Answer{}, fmt.Errorf("search fragments: %w", err)
	}

	if e.reranker != nil && len(hits) > 1 {
		hits, err = e.rerank(ctx, q.Question, hits)
		if err != nil {
			return Answer{}, err
		}
	}
	if len(hits) > k {
		hits = hits[:k]
	}
	if len(hits) == 0 {
		return Answer{}, &model.EmptyPersonaIndexError{UserID: q.UserID, Filtered: true}
	}

	prompt := common.Fill(e.opts.Prompt, map[string]string{
		"context":  buildContext(hits),
		"question": q.Question,
	})
	text, err := e.generator.Generate(ctx, prompt)
	if err != nil {
		return Answer{}, fmt.Errorf("generate answer: %w", err)
	}

	e.log.Debug("answered query", "user_id", q.UserID, "fragments", len(hits), "elapsed", time.Since(start))
	return Answer{Text: strings.TrimSpace(text), Fragments: hits}, nil
}

func (e *Engine) rerank(ctx context.Context, question string, hits []model.ScoredFragment) ([]model.ScoredFragment, error) {
	docs := make([]string, len(hits))
	for i, h := range hits {
		docs[i] = h.Text
	}
	order, err := e.reranker.Rank(ctx, question, docs)
	if err != nil {
		return nil, fmt.Errorf("rerank fragments: %w", err)
	}
	out := make([]model.ScoredFragment, 0, len(hits))
	for _, i := range order {
		if i >= 0 && i < len(hits) {
			out = append(out, hits[i])
		}
	}
	return out, nil
}

// buildContext joins fragment texts the way a "stuff" retrieval chain does.
func buildContext(hits []model.ScoredFragment) string {
	parts := make([]string, len(hits))
	for i, h := range hits {
		parts[i] = h.Text
	}
	return strings.Join(parts, "\n\n")
}

func outcome(err error) string {
	var empty *model.EmptyPersonaIndexError
	var mismatch *model.EmbeddingMismatchError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &empty):
		return "empty_index"
	case errors.As(err, &mismatch):
		return "embedder_mismatch"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case model.IsUserError(err):
		return "bad_request"
	default:
		return "error"
	}
}
