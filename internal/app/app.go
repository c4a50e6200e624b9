package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/agenthands/persona/internal/config"
	"github.com/agenthands/persona/internal/core"
	"github.com/agenthands/persona/internal/core/emotion"
	"github.com/agenthands/persona/internal/core/graph"
	"github.com/agenthands/persona/internal/core/index"
	"github.com/agenthands/persona/internal/core/normalize"
	"github.com/agenthands/persona/internal/core/rag"
	"github.com/agenthands/persona/internal/core/summary"
	"github.com/agenthands/persona/internal/core/traits"
	"github.com/agenthands/persona/internal/driver"
	"github.com/agenthands/persona/internal/llm"
	"github.com/agenthands/persona/internal/platform/logger"
	"github.com/agenthands/persona/internal/store"
)

// Needs selects which optional parts of the pipeline Build connects.
type Needs struct {
	Index bool
	Query bool
}

// App owns the engine and every connection it was built with.
type App struct {
	Config *config.Config
	Engine *core.Engine
	Store  store.VectorIndex

	graph   driver.GraphDriver
	closers []io.Closer
	llm     llm.LLMClient
	log     *logger.Logger
}

// Build constructs clients, stores and the engine from cfg. Analysis is always available;
// indexing and querying are connected on request.
func Build(ctx context.Context, cfg *config.Config, log *logger.Logger, needs Needs) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}
	a := &App{Config: cfg, log: log}
	retry := llm.RetryConfigFrom(cfg.Retry)

	classifier, err := a.classifier(ctx, retry)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}
	a.Engine = core.NewEngine(
		normalize.NewNormalizer(log),
		traits.NewScorer(traits.NewLexiconExtractor(), log),
		emotion.NewBatch(classifier, cfg.Concurrency.Classify, log),
		log,
	)
	a.Engine.Report = cfg.Pipeline.Report

	if !needs.Index && !needs.Query {
		return a, nil
	}

	rawEmbedder, err := llm.NewEmbedder(ctx, cfg.EmbeddingLLM(), log)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}
	a.track(rawEmbedder)
	embedder := llm.NewResilientEmbedder(rawEmbedder, retry)

	a.Store, err = store.Open(ctx, cfg.Store)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}

	if needs.Index {
		ix := index.NewIndexer(embedder, a.Store, index.OptionsFrom(cfg.Pipeline, cfg.Concurrency), log)
		if cfg.Pipeline.Narrative {
			gen, err := a.generator(ctx, retry)
			if err != nil {
				a.Close(ctx)
				return nil, err
			}
			ix.WithNarrator(summary.NewSummarizer(gen, cfg.Prompts.Narrative, log))
		}
		a.Engine.Indexer = ix
	}

	if cfg.Graph.Enabled {
		d, err := driver.NewMemgraphDriver(ctx, cfg.Graph, log)
		if err != nil {
			a.Close(ctx)
			return nil, err
		}
		a.graph = d
		exporter := graph.NewExporter(d, log)
		if err := exporter.BuildIndices(ctx); err != nil {
			a.Close(ctx)
			return nil, err
		}
		a.Engine.Graph = exporter
	}

	if needs.Query {
		gen, err := a.generator(ctx, retry)
		if err != nil {
			a.Close(ctx)
			return nil, err
		}
		q := rag.NewEngine(embedder, gen, a.Store, rag.OptionsFrom(cfg.Query, cfg.Prompts), log)
		if cfg.Query.Rerank {
			q.WithReranker(llm.NewSimpleLLMReranker(gen, cfg.Prompts.Rerank))
		}
		a.Engine.Query = q
	}
	return a, nil
}

func (a *App) classifier(ctx context.Context, retry llm.RetryConfig) (emotion.Classifier, error) {
	opt := emotion.WithMaxInputRunes(a.Config.Pipeline.MaxInputRunes)
	switch strings.ToLower(a.Config.Emotion.Backend) {
	case "", "lexicon":
		return emotion.NewLexiconClassifier(opt), nil
	case "llm":
		gen, err := a.generator(ctx, retry)
		if err != nil {
			return nil, err
		}
		return emotion.NewLLMClassifier(gen, a.Config.Prompts.Emotion, opt), nil
	case "responses":
		if a.Config.Emotion.APIKey == "" {
			return nil, errors.New("emotion.api_key (or OPENAI_API_KEY) is required for the responses backend")
		}
		return emotion.NewResponsesClassifier(emotion.NewOpenAIResponder(a.Config.Emotion.APIKey), a.Config.Emotion.Model, retry, opt), nil
	default:
		return nil, fmt.Errorf("unsupported emotion backend: %s", a.Config.Emotion.Backend)
	}
}

// generator builds the shared generation client once.
func (a *App) generator(ctx context.Context, retry llm.RetryConfig) (llm.LLMClient, error) {
	if a.llm != nil {
		return a.llm, nil
	}
	client, err := llm.NewClient(ctx, a.Config.LLM, a.log)
	if err != nil {
		return nil, err
	}
	a.track(client)
	a.llm = llm.NewResilientLLM(client, retry)
	return a.llm, nil
}

func (a *App) track(v any) {
	if c, ok := v.(io.Closer); ok {
		a.closers = append(a.closers, c)
	}
}

// Close releases every connection; the first error is returned.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.Store != nil {
		errs = append(errs, a.Store.Close())
	}
	if a.graph != nil {
		errs = append(errs, a.graph.Close(ctx))
	}
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
