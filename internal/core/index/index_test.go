package index

import (
	"context"
	"errors"
	"hash/fnv"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/persona/internal/core/model"
	"github.com/agenthands/persona/internal/store"
)

type hashEmbedder struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (h *hashEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	h.mu.Lock()
	h.calls++
	h.mu.Unlock()
	if h.err != nil {
		return nil, h.err
	}
	vec := make([]float32, 8)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		f := fnv.New32a()
		f.Write([]byte(w))
		vec[f.Sum32()%8]++
	}
	return vec, nil
}

func (h *hashEmbedder) Identity() string { return "test:hash" }

type staticNarrator string

func (n staticNarrator) Narrate(ctx context.Context, p model.PersonaRecord) (string, error) {
	return string(n), nil
}

func samplePersona() model.PersonaRecord {
	var traits model.TraitScoreVector
	for _, a := range model.TraitAxes() {
		traits[a] = model.TraitScore{Value: 0.3, Evidence: 0.31, Determined: true}
	}
	traits[model.AxisTF] = model.TraitScore{}
	even := model.EmotionDistribution{0.1, 0.5, 0.1, 0.1, 0.1, 0.1}
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return model.PersonaRecord{
		UserID:   "alice",
		Traits:   traits,
		MBTIType: traits.MBTIType(),
		Communities: []model.CommunityEmotionSummary{
			{Community: "golang", InteractionCount: 2, Average: even, Dominant: model.Joy, MostCommonTop: model.Joy},
			{Community: "cooking", InteractionCount: 1, Average: even, Dominant: model.Joy, MostCommonTop: model.Joy},
		},
		CommunityInfo: map[string]model.CommunityInfo{
			"golang": {Key: "golang", Title: "The Go Programming Language", Description: "Ask questions and post articles about Go."},
		},
		Records: []model.ActivityRecord{
			{ID: "p1", Kind: model.KindPost, Title: "Generics", Body: "I love generics in Go.", Community: "golang", Timestamp: ts},
			{ID: "c1", Kind: model.KindComment, Body: "Channels are great.", Community: "golang", Timestamp: ts.Add(time.Hour)},
			{ID: "c2", Kind: model.KindComment, Body: "Salt the pasta water.", Community: "cooking", Timestamp: ts.Add(2 * time.Hour)},
		},
	}
}

func TestIndexer_IdempotentReindex(t *testing.T) {
	ctx := context.Background()
	idx, err := store.OpenSQLite(ctx, ":memory:", "")
	require.NoError(t, err)
	defer idx.Close()

	emb := &hashEmbedder{}
	ix := NewIndexer(emb, idx, Options{IndexRecords: true, Concurrency: 3}, nil)

	first, err := ix.Index(ctx, samplePersona())
	require.NoError(t, err)
	// 5 Big-Five axes, one MBTI, two communities plus one description, three records
	assert.Equal(t, 12, first.Fragments)
	assert.Equal(t, 5, first.ByKind[model.FragmentTrait])
	assert.Equal(t, 1, first.ByKind[model.FragmentMBTI])
	assert.Equal(t, 3, first.ByKind[model.FragmentCommunity])
	assert.Equal(t, 3, first.ByKind[model.FragmentRecord])
	assert.Equal(t, "test:hash", first.Embedder)

	q, _ := emb.Embed(ctx, "golang generics")
	before, err := idx.Search(ctx, "alice", q, 5, model.FragmentFilter{})
	require.NoError(t, err)

	second, err := ix.Index(ctx, samplePersona())
	require.NoError(t, err)
	assert.Equal(t, first.Fragments, second.Fragments)

	n, err := idx.Count(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	after, err := idx.Search(ctx, "alice", q, 5, model.FragmentFilter{})
	require.NoError(t, err)
	assert.Equal(t, before, after)

	identity, err := idx.EmbeddingIdentity(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "test:hash", identity)
}

func TestIndexer_FragmentsContent(t *testing.T) {
	ix := NewIndexer(&hashEmbedder{}, nil, Options{TopCommunities: 1}, nil).
		WithNarrator(staticNarrator("Alice is a curious Go programmer."))

	frags, err := ix.Fragments(context.Background(), samplePersona())
	require.NoError(t, err)

	var kinds []model.FragmentKind
	byID := map[string]model.IndexedFragment{}
	for _, f := range frags {
		kinds = append(kinds, f.Metadata.Kind)
		byID[f.Metadata.SourceID] = f
		assert.Equal(t, "alice", f.UserID)
		assert.Equal(t, "test:hash", f.Embedder)
	}
	assert.NotContains(t, kinds, model.FragmentRecord)
	assert.Contains(t, kinds, model.FragmentNarrative)

	assert.Contains(t, byID["mbti"].Text, "predicted MBTI type is ESXJ")
	assert.Contains(t, byID["mbti"].Text, "thinking versus feeling preference is undetermined")
	assert.Equal(t, "u/alice scores high on openness (+0.300 on a scale from -1 to 1).", byID["trait:openness"].Text)
	assert.NotContains(t, byID["trait:neuroticism"].Text, "evidence")
	assert.Contains(t, byID["community:golang"].Text, "r/golang with 2 interactions")
	assert.Equal(t, "golang", byID["community-info:golang"].Metadata.Community)
	_, ok := byID["community:cooking"]
	assert.False(t, ok, "only the top community is indexed")
}

func TestIndexer_EmbedFailureLeavesIndex(t *testing.T) {
	ctx := context.Background()
	idx, err := store.OpenSQLite(ctx, ":memory:", "")
	require.NoError(t, err)
	defer idx.Close()

	ok := NewIndexer(&hashEmbedder{}, idx, Options{}, nil)
	_, err = ok.Index(ctx, samplePersona())
	require.NoError(t, err)
	n, err := idx.Count(ctx, "alice")
	require.NoError(t, err)

	capErr := &model.ExternalCapabilityError{Capability: "embed", Attempts: 4, Err: errors.New("503")}
	failing := NewIndexer(&hashEmbedder{err: capErr}, idx, Options{}, nil)
	_, err = failing.Index(ctx, samplePersona())
	require.Error(t, err)
	var target *model.ExternalCapabilityError
	assert.True(t, errors.As(err, &target))

	after, err := idx.Count(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, n, after)
}

func TestFragmentID(t *testing.T) {
	a := FragmentID("alice", model.FragmentTrait, "trait:openness", 0)
	assert.Equal(t, a, FragmentID("alice", model.FragmentTrait, "trait:openness", 0))
	assert.NotEqual(t, a, FragmentID("alice", model.FragmentTrait, "trait:openness", 1))
	assert.NotEqual(t, a, FragmentID("bob", model.FragmentTrait, "trait:openness", 0))
}

func TestChunk(t *testing.T) {
	text := "First sentence here. Second one!  Third?\nFourth line"
	assert.Equal(t, []string{"First sentence here. Second one! Third? Fourth line"}, Chunk(text, 100))
	assert.Equal(t, []string{"First sentence here.", "Second one! Third?", "Fourth line"}, Chunk(text, 20))

	long := strings.Repeat("word ", 50)
	chunks := Chunk(long, 24)
	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 24)
		assert.False(t, strings.HasPrefix(c, " "))
	}
	assert.Equal(t, strings.TrimSpace(long), strings.Join(chunks, " "))

	assert.Equal(t, []string{"abcd", "efgh", "ij"}, Chunk("abcdefghij", 4))
	assert.Empty(t, Chunk("   ", 10))
}

func TestSentences(t *testing.T) {
	assert.Equal(t, []string{"Version 1.2 is out.", "Nice!"}, Sentences("Version 1.2 is out. Nice!"))
}
