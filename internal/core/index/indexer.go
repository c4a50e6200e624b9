package index

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/agenthands/persona/internal/config"
	"github.com/agenthands/persona/internal/core/model"
	"github.com/agenthands/persona/internal/llm"
	"github.com/agenthands/persona/internal/platform/logger"
	"github.com/agenthands/persona/internal/store"
)

// fragmentNamespace seeds the deterministic fragment IDs.
var fragmentNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/agenthands/persona/fragment"))

// Narrator writes a free-text persona summary that is indexed next to the structured fragments.
type Narrator interface {
	Narrate(ctx context.Context, persona model.PersonaRecord) (string, error)
}

type Options struct {
	MaxFragmentChars int
	TopCommunities   int
	IndexRecords     bool
	// Concurrency bounds parallel embedding calls.
	Concurrency int
}

func OptionsFrom(p config.PipelineConfig, c config.ConcurrencyConfig) Options {
	return Options{
		MaxFragmentChars: p.MaxFragmentChars,
		TopCommunities:   p.TopCommunities,
		IndexRecords:     p.IndexRecords,
		Concurrency:      c.Classify,
	}
}

// IndexStats reports what one Index call wrote.
type IndexStats struct {
	UserID    string                     `json:"user_id"`
	Fragments int                        `json:"fragments"`
	ByKind    map[model.FragmentKind]int `json:"by_kind"`
	Embedder  string                     `json:"embedder"`
	Duration  time.Duration              `json:"duration"`
}

type Indexer struct {
	embedder llm.EmbedderClient
	store    store.VectorIndex
	narrator Narrator
	opts     Options
	log      *logger.Logger
}

func NewIndexer(embedder llm.EmbedderClient, idx store.VectorIndex, opts Options, log *logger.Logger) *Indexer {
	if opts.MaxFragmentChars <= 0 {
		opts.MaxFragmentChars = DefaultMaxFragmentChars
	}
	if opts.TopCommunities <= 0 {
		opts.TopCommunities = DefaultTopCommunities
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Indexer{embedder: embedder, store: idx, opts: opts, log: log}
}

// WithNarrator enables the narrative fragment.
func (ix *Indexer) WithNarrator(n Narrator) *Indexer {
	ix.narrator = n
	return ix
}

// Fragments builds the persona's unembedded fragments in a stable order.
func (ix *Indexer) Fragments(ctx context.Context, persona model.PersonaRecord) ([]model.IndexedFragment, error) {
	sources := traitSources(persona)
	sources = append(sources, mbtiSource(persona))
	sources = append(sources, communitySources(persona, ix.opts.TopCommunities)...)
	if ix.opts.IndexRecords {
		sources = append(sources, recordSources(persona)...)
	}
	if ix.narrator != nil {
		text, err := ix.narrator.Narrate(ctx, persona)
		if err != nil {
			return nil, fmt.Errorf("narrate persona: %w", err)
		}
		if text = strings.TrimSpace(text); text != "" {
			sources = append(sources, source{kind: model.FragmentNarrative, id: "narrative", text: text})
		}
	}

	identity := ix.embedder.Identity()
	var out []model.IndexedFragment
	for _, src := range sources {
		for i, text := range Chunk(src.text, ix.opts.MaxFragmentChars) {
			out = append(out, model.IndexedFragment{
				ID:     FragmentID(persona.UserID, src.kind, src.id, i),
				UserID: persona.UserID,
				Text:   text,
				Metadata: model.FragmentMetadata{
					SourceID:  src.id,
					Community: src.community,
					Kind:      src.kind,
				},
				Embedder: identity,
			})
		}
	}
	return out, nil
}

// Index embeds the persona's fragments and replaces the user's previous index rows.
// Re-indexing the same persona with the same embedder yields the same rows.
func (ix *Indexer) Index(ctx context.Context, persona model.PersonaRecord) (IndexStats, error) {
	start := time.Now()
	if persona.UserID == "" {
		return IndexStats{}, &model.MalformedInputError{Field: "user_id", Source: "persona"}
	}

	fragments, err := ix.Fragments(ctx, persona)
	if err != nil {
		return IndexStats{}, err
	}
	if err := ix.embed(ctx, fragments); err != nil {
		return IndexStats{}, err
	}
	if err := ix.store.Replace(ctx, persona.UserID, fragments); err != nil {
		return IndexStats{}, fmt.Errorf("replace index for %s: %w", persona.UserID, err)
	}

	stats := IndexStats{
		UserID:    persona.UserID,
		Fragments: len(fragments),
		ByKind:    make(map[model.FragmentKind]int),
		Embedder:  ix.embedder.Identity(),
		Duration:  time.Since(start),
	}
	for _, f := range fragments {
		stats.ByKind[f.Metadata.Kind]++
		fragmentsIndexed.WithLabelValues(string(f.Metadata.Kind)).Inc()
	}
	indexDuration.Observe(stats.Duration.Seconds())
	ix.log.Info("indexed persona", "user_id", persona.UserID, "fragments", stats.Fragments, "embedder", stats.Embedder)
	return stats, nil
}

func (ix *Indexer) embed(ctx context.Context, fragments []model.IndexedFragment) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ix.opts.Concurrency)
	for i := range fragments {
		i := i
		g.Go(func() error {
			vec, err := ix.embedder.Embed(gctx, fragments[i].Text)
			if err != nil {
				return fmt.Errorf("embed fragment %s: %w", fragments[i].Metadata.SourceID, err)
			}
			fragments[i].Embedding = vec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if len(fragments) == 0 {
		return nil
	}
	dims := len(fragments[0].Embedding)
	for _, f := range fragments[1:] {
		if len(f.Embedding) != dims {
			return fmt.Errorf("embedder returned vectors of %d and %d dimensions", dims, len(f.Embedding))
		}
	}
	return nil
}

// FragmentID is stable for a given user, kind, source and chunk ordinal.
func FragmentID(userID string, kind model.FragmentKind, sourceID string, ordinal int) string {
	name := strings.Join([]string{userID, string(kind), sourceID, strconv.Itoa(ordinal)}, "\x00")
	return uuid.NewSHA1(fragmentNamespace, []byte(name)).String()
}
