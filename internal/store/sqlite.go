package store

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sort"

	_ "github.com/mattn/go-sqlite3"

	"github.com/agenthands/persona/internal/core/model"
)

// SQLiteIndex stores embeddings as little-endian float32 blobs and ranks by
// cosine similarity in process. It suits single-user persona sizes.
type SQLiteIndex struct {
	db    *sql.DB
	table string
}

// OpenSQLite opens (or creates) the database at path. ":memory:" is allowed.
func OpenSQLite(ctx context.Context, path, table string) (*SQLiteIndex, error) {
	if path == "" {
		path = "persona.db"
	}
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// a single connection keeps :memory: databases shared and serializes writers
	db.SetMaxOpenConns(1)

	idx, err := NewSQLiteIndex(db, table)
	if err != nil {
		db.Close()
		return nil, err
	}
	if err := idx.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return idx, nil
}

func NewSQLiteIndex(db *sql.DB, table string) (*SQLiteIndex, error) {
	t, err := tableName(table)
	if err != nil {
		return nil, err
	}
	return &SQLiteIndex{db: db, table: t}, nil
}

func (s *SQLiteIndex) Migrate(ctx context.Context) error {
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			text TEXT NOT NULL,
			embedding BLOB NOT NULL,
			dims INTEGER NOT NULL,
			source_id TEXT NOT NULL DEFAULT '',
			community TEXT NOT NULL DEFAULT '',
			kind TEXT NOT NULL,
			embedder TEXT NOT NULL
		)`, s.table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_user ON %s(user_id, kind, community)`, s.table, s.table),
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
	}
	return nil
}

func (s *SQLiteIndex) Upsert(ctx context.Context, fragments []model.IndexedFragment) error {
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

func (s *SQLiteIndex) Replace(ctx context.Context, userID string, fragments []model.IndexedFragment) error {
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

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE user_id = ?`, s.table), userID); err != nil {
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

func (s *SQLiteIndex) insert(ctx context.Context, tx *sql.Tx, fragments []model.IndexedFragment) error {
	if len(fragments) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (id, user_id, text, embedding, dims, source_id, community, kind, embedder)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			text = excluded.text,
			embedding = excluded.embedding,
			dims = excluded.dims,
			source_id = excluded.source_id,
			community = excluded.community,
			kind = excluded.kind,
			embedder = excluded.embedder
	`, s.table))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, f := range fragments {
		if _, err := stmt.ExecContext(ctx,
			f.ID,
			f.UserID,
			f.Text,
			encodeVector(f.Embedding),
			len(f.Embedding),
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

func (s *SQLiteIndex) Delete(ctx context.Context, userID string, filter model.FragmentFilter) (int64, error) {
	if userID == "" {
		return 0, errors.New("user id is required")
	}
	res, err := s.db.ExecContext(ctx, fmt.Sprintf(`
		DELETE FROM %s
		WHERE user_id = ? AND (? = '' OR community = ?) AND (? = '' OR kind = ?)
	`, s.table), userID, filter.Community, filter.Community, string(filter.Kind), string(filter.Kind))
	if err != nil {
		return 0, fmt.Errorf("delete fragments: %w", err)
	}
	return res.RowsAffected()
}

func (s *SQLiteIndex) Search(ctx context.Context, userID string, embedding []float32, k int, filter model.FragmentFilter) ([]model.ScoredFragment, error) {
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
		SELECT id, user_id, text, embedding, source_id, community, kind, embedder
		FROM %s
		WHERE user_id = ? AND dims = ? AND (? = '' OR community = ?) AND (? = '' OR kind = ?)
	`, s.table), userID, len(embedding), filter.Community, filter.Community, string(filter.Kind), string(filter.Kind))
	if err != nil {
		return nil, fmt.Errorf("search fragments: %w", err)
	}
	defer rows.Close()

	var hits []model.ScoredFragment
	for rows.Next() {
		var f model.ScoredFragment
		var blob []byte
		var kind string
		if err := rows.Scan(&f.ID, &f.UserID, &f.Text, &blob, &f.Metadata.SourceID, &f.Metadata.Community, &kind, &f.Embedder); err != nil {
			return nil, fmt.Errorf("scan fragment: %w", err)
		}
		f.Metadata.Kind = model.FragmentKind(kind)
		vec, err := decodeVector(blob)
		if err != nil {
			return nil, fmt.Errorf("decode fragment %s: %w", f.ID, err)
		}
		f.Embedding = vec
		f.Score = Cosine(embedding, vec)
		hits = append(hits, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fragments: %w", err)
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func (s *SQLiteIndex) Count(ctx context.Context, userID string) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE user_id = ?`, s.table), userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count fragments: %w", err)
	}
	return n, nil
}

func (s *SQLiteIndex) EmbeddingIdentity(ctx context.Context, userID string) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT embedder FROM %s WHERE user_id = ? ORDER BY id LIMIT 1`, s.table), userID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read embedder identity: %w", err)
	}
	return id, nil
}

func (s *SQLiteIndex) Close() error {
	return s.db.Close()
}

func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("embedding blob length %d is not a multiple of 4", len(b))
	}
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return out, nil
}

// Cosine returns the cosine similarity of a and b, or 0 when either is a zero vector.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
