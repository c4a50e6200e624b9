package store

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/persona/internal/core/model"
)

func setupPG(t *testing.T) (*PGVectorIndex, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	idx, err := NewPGVectorIndex(db, "persona.fragments", 3)
	require.NoError(t, err)
	return idx, mock
}

func TestPGVector_Search(t *testing.T) {
	idx, mock := setupPG(t)

	rows := sqlmock.NewRows([]string{
		"id", "user_id", "text", "source_id", "community", "kind", "embedder", "similarity",
	}).AddRow("f1", "alice", "likes go", "rec-1", "golang", "record", "ollama:nomic-embed-text", 0.93)

	mock.ExpectQuery("SELECT id").
		WithArgs("alice", sqlmock.AnyArg(), "golang", "", 2).
		WillReturnRows(rows)

	hits, err := idx.Search(context.Background(), "alice", []float32{0.1, 0.2, 0.3}, 2, model.FragmentFilter{Community: "golang"})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "f1", hits[0].ID)
	assert.Equal(t, model.FragmentRecord, hits[0].Metadata.Kind)
	assert.InDelta(t, 0.93, hits[0].Score, 1e-9)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGVector_Replace(t *testing.T) {
	idx, mock := setupPG(t)

	frags := []model.IndexedFragment{
		frag("alice", "f1", model.FragmentTrait, "", 0.1, 0.2, 0.3),
		frag("alice", "f2", model.FragmentCommunity, "golang", 0.3, 0.2, 0.1),
	}

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM persona\\.fragments").WithArgs("alice").WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectPrepare("INSERT INTO persona\\.fragments")
	for _, f := range frags {
		mock.ExpectExec("INSERT INTO persona\\.fragments").WithArgs(
			f.ID,
			"alice",
			f.Text,
			sqlmock.AnyArg(),
			f.Metadata.SourceID,
			f.Metadata.Community,
			string(f.Metadata.Kind),
			"test:model",
		).WillReturnResult(sqlmock.NewResult(1, 1))
	}
	mock.ExpectCommit()

	require.NoError(t, idx.Replace(context.Background(), "alice", frags))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGVector_ReplaceRollsBack(t *testing.T) {
	idx, mock := setupPG(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM persona\\.fragments").WithArgs("alice").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectPrepare("INSERT INTO persona\\.fragments").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := idx.Replace(context.Background(), "alice", []model.IndexedFragment{frag("alice", "f1", model.FragmentTrait, "", 1, 2, 3)})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGVector_CountAndIdentity(t *testing.T) {
	idx, mock := setupPG(t)

	mock.ExpectQuery("SELECT COUNT").WithArgs("alice").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))
	mock.ExpectQuery("SELECT embedder").WithArgs("alice").WillReturnRows(sqlmock.NewRows([]string{"embedder"}).AddRow("openai:text-embedding-3-small"))
	mock.ExpectQuery("SELECT embedder").WithArgs("nobody").WillReturnRows(sqlmock.NewRows([]string{"embedder"}))

	n, err := idx.Count(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	id, err := idx.EmbeddingIdentity(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "openai:text-embedding-3-small", id)

	id, err = idx.EmbeddingIdentity(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, id)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGVector_Migrate(t *testing.T) {
	idx, mock := setupPG(t)

	mock.ExpectExec("CREATE EXTENSION IF NOT EXISTS vector").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS persona\\.fragments .*vector\\(3\\)").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS persona_fragments_user_idx").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, idx.Migrate(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}
