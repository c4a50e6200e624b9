package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/agenthands/persona/internal/config"
	"github.com/agenthands/persona/internal/core/model"
)

// VectorIndex is the narrow view of the embedding store the pipeline needs.
// Every read and write is scoped to one user.
type VectorIndex interface {
	Upsert(ctx context.Context, fragments []model.IndexedFragment) error
	Delete(ctx context.Context, userID string, filter model.FragmentFilter) (int64, error)
	// Replace swaps the user's whole fragment set in one transaction.
	Replace(ctx context.Context, userID string, fragments []model.IndexedFragment) error
	Search(ctx context.Context, userID string, embedding []float32, k int, filter model.FragmentFilter) ([]model.ScoredFragment, error)
	Count(ctx context.Context, userID string) (int, error)
	// EmbeddingIdentity returns the embedder recorded for the user's fragments, or "" when none exist.
	EmbeddingIdentity(ctx context.Context, userID string) (string, error)
	Close() error
}

// Open connects the configured backend and applies its schema.
func Open(ctx context.Context, cfg config.StoreConfig) (VectorIndex, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", "sqlite":
		return OpenSQLite(ctx, cfg.Path, cfg.Table)
	case "pgvector", "postgres":
		if cfg.DSN == "" {
			return nil, errors.New("store.dsn is required for pgvector")
		}
		db, err := sql.Open("postgres", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		idx, err := NewPGVectorIndex(db, cfg.Table, cfg.Dimensions)
		if err != nil {
			db.Close()
			return nil, err
		}
		if err := idx.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
		return idx, nil
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", cfg.Driver)
	}
}

const defaultTable = "persona_fragments"

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

func tableName(name string) (string, error) {
	if name == "" {
		return defaultTable, nil
	}
	if !identPattern.MatchString(name) {
		return "", fmt.Errorf("invalid table name %q", name)
	}
	return name, nil
}

func validateFragments(fragments []model.IndexedFragment) error {
	for i, f := range fragments {
		switch {
		case f.ID == "":
			return fmt.Errorf("fragment %d: id is required", i)
		case f.UserID == "":
			return fmt.Errorf("fragment %d: user id is required", i)
		case len(f.Embedding) == 0:
			return fmt.Errorf("fragment %s: embedding is required", f.ID)
		case f.Embedder == "":
			return fmt.Errorf("fragment %s: embedder identity is required", f.ID)
		}
	}
	return nil
}
