// Package postgres provides a PostgreSQL-backed lexical store for the
// humanizer: a WordNet-style synonym lexicon and a per-model word vector
// cache.
//
// Both share a single [pgxpool.Pool]. The pgvector extension must be
// available in the target database; [Migrate] installs it automatically via
// CREATE EXTENSION IF NOT EXISTS.
//
// Usage:
//
//	store, err := postgres.NewStore(ctx, dsn, 300)
//	if err != nil { … }
//
//	// Lexicon
//	n, _ := store.ImportSynsets(ctx, "wordnet", synsets)
//	syns, _ := store.Synonyms(ctx, "large", nlp.POSAdjective)
//
//	// Vectors
//	_, _ = store.ImportVectors(ctx, "glove-300", gloveFile)
//	cached := postgres.NewCachedProvider(store, "glove-300", nil)
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ─────────────────────────────────────────────────────────────────────────────
// Lexicon DDL: synsets and their lemmas
// ─────────────────────────────────────────────────────────────────────────────

const ddlLexicon = `
CREATE TABLE IF NOT EXISTS synsets (
    id          BIGSERIAL    PRIMARY KEY,
    pos         TEXT         NOT NULL,
    source      TEXT         NOT NULL DEFAULT '',
    created_at  TIMESTAMPTZ  NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_synsets_source ON synsets (source);

CREATE TABLE IF NOT EXISTS lemmas (
    synset_id   BIGINT       NOT NULL REFERENCES synsets (id) ON DELETE CASCADE,
    lemma       TEXT         NOT NULL,
    PRIMARY KEY (synset_id, lemma)
);

CREATE INDEX IF NOT EXISTS idx_lemmas_lemma ON lemmas (lemma);
`

// ddlVectors returns the vector cache DDL with the embedding dimension
// substituted. The dimension is baked into the column type at creation time.
func ddlVectors(dimensions int) string {
	return fmt.Sprintf(`
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS word_vectors (
    model       TEXT         NOT NULL,
    word        TEXT         NOT NULL,
    embedding   vector(%d)   NOT NULL,
    created_at  TIMESTAMPTZ  NOT NULL DEFAULT now(),
    PRIMARY KEY (model, word)
);
`, dimensions)
}

// Migrate creates or ensures all required tables and extensions exist. It is
// idempotent and safe to call on every application start.
//
// dimensions must match the vectors stored in the cache (e.g. 300 for GloVe
// 840B, 768 for nomic-embed-text). Changing it after the first migration
// requires a manual schema update.
func Migrate(ctx context.Context, pool *pgxpool.Pool, dimensions int) error {
	if dimensions <= 0 {
		return fmt.Errorf("postgres migrate: dimensions must be positive, got %d", dimensions)
	}
	for _, stmt := range []string{ddlLexicon, ddlVectors(dimensions)} {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("postgres migrate: %w", err)
		}
	}
	return nil
}
