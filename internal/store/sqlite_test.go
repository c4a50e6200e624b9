package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/persona/internal/config"
	"github.com/agenthands/persona/internal/core/model"
)

func setupSQLite(t *testing.T) *SQLiteIndex {
	t.Helper()
	idx, err := OpenSQLite(context.Background(), ":memory:", "")
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	return idx
}

func frag(user, id string, kind model.FragmentKind, community string, vec ...float32) model.IndexedFragment {
	return model.IndexedFragment{
		ID:        id,
		UserID:    user,
		Text:      "text " + id,
		Embedding: vec,
		Metadata:  model.FragmentMetadata{SourceID: "src-" + id, Community: community, Kind: kind},
		Embedder:  "test:model",
	}
}

func TestSQLite_ReplaceIdempotent(t *testing.T) {
	ctx := context.Background()
	idx := setupSQLite(t)

	frags := []model.IndexedFragment{
		frag("alice", "1", model.FragmentTrait, "", 1, 0),
		frag("alice", "2", model.FragmentCommunity, "golang", 0, 1),
		frag("alice", "3", model.FragmentRecord, "golang", 1, 1),
	}
	require.NoError(t, idx.Replace(ctx, "alice", frags))
	first, err := idx.Search(ctx, "alice", []float32{1, 0}, 10, model.FragmentFilter{})
	require.NoError(t, err)

	require.NoError(t, idx.Replace(ctx, "alice", frags))
	n, err := idx.Count(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	second, err := idx.Search(ctx, "alice", []float32{1, 0}, 10, model.FragmentFilter{})
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// a smaller replacement removes stale fragments
	require.NoError(t, idx.Replace(ctx, "alice", frags[:1]))
	n, err = idx.Count(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSQLite_SearchRankingAndFilters(t *testing.T) {
	ctx := context.Background()
	idx := setupSQLite(t)

	require.NoError(t, idx.Replace(ctx, "alice", []model.IndexedFragment{
		frag("alice", "a", model.FragmentTrait, "", 1, 0),
		frag("alice", "b", model.FragmentRecord, "golang", 0.9, 0.1),
		frag("alice", "c", model.FragmentRecord, "cooking", 0, 1),
	}))
	require.NoError(t, idx.Replace(ctx, "bob", []model.IndexedFragment{
		frag("bob", "z", model.FragmentTrait, "", 1, 0),
	}))

	hits, err := idx.Search(ctx, "alice", []float32{1, 0}, 2, model.FragmentFilter{})
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "a", hits[0].ID)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-6)
	assert.Equal(t, "b", hits[1].ID)
	assert.Equal(t, "golang", hits[1].Metadata.Community)
	assert.Equal(t, model.FragmentRecord, hits[1].Metadata.Kind)

	hits, err = idx.Search(ctx, "alice", []float32{1, 0}, 5, model.FragmentFilter{Community: "cooking"})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "c", hits[0].ID)

	hits, err = idx.Search(ctx, "alice", []float32{1, 0}, 5, model.FragmentFilter{Kind: model.FragmentTrait})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "a", hits[0].ID)

	// other users' fragments are never returned
	hits, err = idx.Search(ctx, "bob", []float32{1, 0}, 5, model.FragmentFilter{})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "z", hits[0].ID)

	// vectors of another dimensionality are skipped
	hits, err = idx.Search(ctx, "alice", []float32{1, 0, 0}, 5, model.FragmentFilter{})
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSQLite_ReplaceRejectsForeignFragments(t *testing.T) {
	ctx := context.Background()
	idx := setupSQLite(t)
	require.NoError(t, idx.Replace(ctx, "alice", []model.IndexedFragment{frag("alice", "1", model.FragmentTrait, "", 1)}))

	err := idx.Replace(ctx, "alice", []model.IndexedFragment{frag("bob", "2", model.FragmentTrait, "", 1)})
	require.Error(t, err)

	n, err := idx.Count(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, n, "failed replace leaves previous state")
}

func TestSQLite_DeleteUpsertIdentity(t *testing.T) {
	ctx := context.Background()
	idx := setupSQLite(t)

	id, err := idx.EmbeddingIdentity(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "", id)

	var frags []model.IndexedFragment
	for i := 0; i < 4; i++ {
		community := "a"
		if i%2 == 1 {
			community = "b"
		}
		frags = append(frags, frag("alice", fmt.Sprint(i), model.FragmentRecord, community, 1, float32(i)))
	}
	require.NoError(t, idx.Upsert(ctx, frags))
	require.NoError(t, idx.Upsert(ctx, frags[:1]))

	id, err = idx.EmbeddingIdentity(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "test:model", id)

	removed, err := idx.Delete(ctx, "alice", model.FragmentFilter{Community: "b"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	n, err := idx.Count(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.Error(t, idx.Upsert(ctx, []model.IndexedFragment{{ID: "x", UserID: "alice"}}))
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	idx, err := Open(ctx, config.StoreConfig{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, idx.Close())

	_, err = Open(ctx, config.StoreConfig{Driver: "pgvector"})
	assert.Error(t, err)

	_, err = Open(ctx, config.StoreConfig{Driver: "qdrant"})
	assert.Error(t, err)

	_, err = Open(ctx, config.StoreConfig{Driver: "sqlite", Path: ":memory:", Table: "bad; drop"})
	assert.Error(t, err)
}

func TestVectorCodec(t *testing.T) {
	v := []float32{0.5, -1.25, 3}
	back, err := decodeVector(encodeVector(v))
	require.NoError(t, err)
	assert.Equal(t, v, back)

	_, err = decodeVector([]byte{1, 2, 3})
	assert.Error(t, err)

	assert.InDelta(t, 0.0, Cosine([]float32{1, 0}, []float32{0, 1}), 1e-12)
	assert.InDelta(t, -1.0, Cosine([]float32{1, 0}, []float32{-2, 0}), 1e-12)
	assert.Equal(t, 0.0, Cosine([]float32{0, 0}, []float32{1, 1}))
}
