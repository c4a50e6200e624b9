package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"github.com/agenthands/persona/internal/core/model"
)

// PGVectorIndex ranks with the pgvector cosine distance operator.
type PGVectorIndex struct {
	db         *sql.DB
	table      string
	dimensions int
}

func NewPGVectorIndex(db *sql.DB, table string, dimensions int) (*PGVectorIndex, error) {
	t, err := tableName(table)
	if err != nil {
		return nil, err
	}
	return &PGVectorIndex{db: db, table: t, dimensions: dimensions}, nil
}

func (s *PGVectorIndex) Migrate(ctx context.Context) error {
	vectorType := "vector"
	if s.dimensions > 0 {
		vectorType = fmt.Sprintf("vector(%d)", s.dimensions)
	}
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			text TEXT NOT NULL,
			embedding %s NOT NULL,
			source_id TEXT NOT NULL DEFAULT '',
			community TEXT NOT NULL DEFAULT '',
			kind TEXT NOT NULL,
			embedder TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, s.table, vectorType),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_user_idx ON %s (user_id, kind, community)`, indexPrefix(s.table), s.table),
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate pgvector: %w", err)
		}
	}
	return nil
}

func (s *PGVectorIndex) Upsert(ctx context.Context, fragments []model.IndexedFragment) error {
	if len(fragments) == 0 {
		return nil
	}
	if err := validateFragments(fragments); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := s.insert(ctx, tx, fragments); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *PGVectorIndex) Replace(ctx context.Context, userID string, fragments []model.IndexedFragment) error {
	if userID == "" {
		return errors.New("user id is required")
	}
	if err := validateFragments(fragments); err != nil {
		return err
	}
	for _, f := range fragments {
		if f.UserID != userID {
			return fmt.Errorf("fragment %s belongs to user %q, not %q", f.ID, f.UserID, userID)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`
		DELETE FROM %s
		WHERE user_id = $1
	`, s.table), userID); err != nil {
		return fmt.Errorf("delete existing fragments: %w", err)
	}
	if err := s.insert(ctx, tx, fragments); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *PGVectorIndex) insert(ctx context.Context, tx *sql.Tx, fragments []model.IndexedFragment) error {
	if len(fragments) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (
			id,
			user_id,
			text,
			embedding,
			source_id,
			community,
			kind,
			embedder
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			text = EXCLUDED.text,
			embedding = EXCLUDED.embedding,
			source_id = EXCLUDED.source_id,
			community = EXCLUDED.community,
			kind = EXCLUDED.kind,
			embedder = EXCLUDED.embedder
	`, s.table))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, f := range fragments {
		if _, err := stmt.ExecContext(
			ctx,
			f.ID,
			f.UserID,
			f.Text,
			pgvector.NewVector(f.Embedding),
			f.Metadata.SourceID,
			f.Metadata.Community,
			string(f.Metadata.Kind),
			f.Embedder,
		); err != nil {
			return fmt.Errorf("insert fragment: %w", err)
		}
	}
	return nil
}

func (s *PGVectorIndex) Delete(ctx context.Context, userID string, filter model.FragmentFilter) (int64, error) {
	if userID == "" {
		return 0, errors.New("user id is required")
	}
	res, err := s.db.ExecContext(ctx, fmt.Sprintf(`
		DELETE FROM %s
		WHERE user_id = $1 AND ($2 = '' OR community = $2) AND ($3 = '' OR kind = $3)
	`, s.table), userID, filter.Community, string(filter.Kind))
	if err != nil {
		return 0, fmt.Errorf("delete fragments: %w", err)
	}
	return res.RowsAffected()
}

func (s *PGVectorIndex) Search(ctx context.Context, userID string, embedding []float32, k int, filter model.FragmentFilter) ([]model.ScoredFragment, error) {
	if userID == "" {
		return nil, errors.New("user id is required")
	}
	if len(embedding) == 0 {
		return nil, errors.New("embedding is required")
	}
	if k <= 0 {
		k = 3
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id,
			user_id,
			text,
			source_id,
			community,
			kind,
			embedder,
			1 - (embedding <=> $2) AS similarity
		FROM %s
		WHERE user_id = $1 AND ($3 = '' OR community = $3) AND ($4 = '' OR kind = $4)
		ORDER BY embedding <=> $2, id
		LIMIT $5
	`, s.table), userID, pgvector.NewVector(embedding), filter.Community, string(filter.Kind), k)
	if err != nil {
		return nil, fmt.Errorf("search fragments: %w", err)
	}
	defer rows.Close()

	var hits []model.ScoredFragment
	for rows.Next() {
		var f model.ScoredFragment
		var kind string
		if err := rows.Scan(
			&f.ID,
			&f.UserID,
			&f.Text,
			&f.Metadata.SourceID,
			&f.Metadata.Community,
			&kind,
			&f.Embedder,
			&f.Score,
		); err != nil {
			return nil, fmt.Errorf("scan fragment: %w", err)
		}
		f.Metadata.Kind = model.FragmentKind(kind)
		hits = append(hits, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fragments: %w", err)
	}
	return hits, nil
}

func (s *PGVectorIndex) Count(ctx context.Context, userID string) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE user_id = $1`, s.table), userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count fragments: %w", err)
	}
	return n, nil
}

func (s *PGVectorIndex) EmbeddingIdentity(ctx context.Context, userID string) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT embedder FROM %s WHERE user_id = $1 ORDER BY id LIMIT 1`, s.table), userID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read embedder identity: %w", err)
	}
	return id, nil
}

func (s *PGVectorIndex) Close() error {
	return s.db.Close()
}

func indexPrefix(table string) string {
	out := []byte(table)
	for i, c := range out {
		if c == '.' {
			out[i] = '_'
		}
	}
	return string(out)
}
