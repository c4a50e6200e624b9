package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/agenthands/persona/internal/core/aggregate"
	"github.com/agenthands/persona/internal/core/emotion"
	"github.com/agenthands/persona/internal/core/graph"
	"github.com/agenthands/persona/internal/core/index"
	"github.com/agenthands/persona/internal/core/model"
	"github.com/agenthands/persona/internal/core/normalize"
	"github.com/agenthands/persona/internal/core/rag"
	"github.com/agenthands/persona/internal/core/traits"
	"github.com/agenthands/persona/internal/platform/logger"
)

// Engine runs the persona pipeline for one user at a time.
type Engine struct {
	Normalizer *normalize.Normalizer
	Scorer     *traits.Scorer
	Emotions   *emotion.Batch
	Indexer    *index.Indexer
	Graph      *graph.Exporter
	Query      *rag.Engine
	// Report writes a text report next to each persona file.
	Report bool

	log *logger.Logger
}

func NewEngine(normalizer *normalize.Normalizer, scorer *traits.Scorer, emotions *emotion.Batch, log *logger.Logger) *Engine {
	if log == nil {
		log = logger.Nop()
	}
	return &Engine{Normalizer: normalizer, Scorer: scorer, Emotions: emotions, log: log}
}

// RunResult locates the files RunUser wrote.
type RunResult struct {
	Persona    model.PersonaRecord
	Path       string
	ReportPath string
}

// Analyze normalizes the export, scores traits and classifies emotions concurrently,
// then aggregates the persona. Nothing is written.
func (e *Engine) Analyze(ctx context.Context, export model.RawExport) (model.PersonaRecord, error) {
	log := e.log.With("run_id", uuid.NewString())

	norm, err := e.Normalizer.Normalize(export)
	if err != nil {
		return model.PersonaRecord{}, err
	}
	log.Info("normalized export", "user_id", norm.UserID, "records", len(norm.Records),
		"dropped", norm.Dropped, "duplicates", norm.Duplicates)

	var (
		scores    model.TraitScoreVector
		summaries []model.CommunityEmotionSummary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := e.Scorer.Score(norm.Records)
		if err != nil {
			return err
		}
		scores = v
		return nil
	})
	g.Go(func() error {
		dists, err := e.Emotions.ClassifyAll(gctx, norm.Records)
		if err != nil {
			return fmt.Errorf("classify emotions: %w", err)
		}
		s, err := emotion.Summarize(norm.Records, dists)
		if err != nil {
			return err
		}
		summaries = s
		return nil
	})
	if err := g.Wait(); err != nil {
		return model.PersonaRecord{}, err
	}

	persona, err := aggregate.Aggregate(norm.UserID, aggregate.Stages{
		Traits:        &scores,
		Emotions:      summaries,
		Account:       &norm.Account,
		CommunityInfo: norm.Communities,
	}, norm.Records)
	if err != nil {
		return model.PersonaRecord{}, err
	}
	log.Info("analyzed persona", "user_id", persona.UserID, "mbti", persona.MBTIType, "communities", len(persona.Communities))
	return persona, nil
}

// RunUser analyzes one export and writes <user>_persona.json (and the report) into outDir.
// Files are only written once every stage succeeded.
func (e *Engine) RunUser(ctx context.Context, export model.RawExport, outDir string) (RunResult, error) {
	persona, err := e.Analyze(ctx, export)
	if err != nil {
		return RunResult{}, err
	}

	res := RunResult{Persona: persona, Path: aggregate.PersonaPath(outDir, persona.UserID)}
	if err := aggregate.Save(res.Path, persona); err != nil {
		return RunResult{}, err
	}
	if e.Report {
		var buf bytes.Buffer
		if err := aggregate.RenderReport(&buf, persona); err != nil {
			return RunResult{}, fmt.Errorf("render report: %w", err)
		}
		res.ReportPath = aggregate.ReportPath(outDir, persona.UserID)
		if err := os.WriteFile(res.ReportPath, buf.Bytes(), 0o644); err != nil {
			return RunResult{}, fmt.Errorf("write report: %w", err)
		}
	}
	e.log.Info("saved persona", "user_id", persona.UserID, "path", res.Path)
	return res, nil
}

// Index embeds the persona into the vector index and, when configured, mirrors it into the graph.
// A graph failure is reported after the index has been written.
func (e *Engine) Index(ctx context.Context, persona model.PersonaRecord) (index.IndexStats, error) {
	if e.Indexer == nil {
		return index.IndexStats{}, errors.New("indexer is not configured")
	}
	stats, err := e.Indexer.Index(ctx, persona)
	if err != nil {
		return index.IndexStats{}, err
	}
	if e.Graph != nil {
		if _, err := e.Graph.Export(ctx, persona); err != nil {
			return stats, fmt.Errorf("export persona graph: %w", err)
		}
	}
	return stats, nil
}

func (e *Engine) Ask(ctx context.Context, q rag.Query) (rag.Answer, error) {
	if e.Query == nil {
		return rag.Answer{}, errors.New("query engine is not configured")
	}
	return e.Query.Ask(ctx, q)
}
