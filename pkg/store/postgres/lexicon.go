package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/MrWong99/humanizer/pkg/lexicon"
	"github.com/MrWong99/humanizer/pkg/nlp"
)

// Synonyms implements [lexicon.Lexicon]. It returns every lemma sharing a
// synset of the given part of speech with word, sorted alphabetically. An
// unknown word yields an empty slice.
func (s *Store) Synonyms(ctx context.Context, word string, pos nlp.POS) ([]string, error) {
	const q = `
		SELECT DISTINCT other.lemma
		FROM   lemmas self
		JOIN   synsets s    ON s.id = self.synset_id
		JOIN   lemmas other ON other.synset_id = self.synset_id
		WHERE  self.lemma = $1
		  AND  s.pos = $2
		  AND  other.lemma <> self.lemma
		ORDER  BY other.lemma`

	key := lexicon.Normalize(word)
	rows, err := s.pool.Query(ctx, q, key, string(pos))
	if err != nil {
		return nil, fmt.Errorf("postgres lexicon: synonyms: %w", err)
	}
	lemmas, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("postgres lexicon: scan rows: %w", err)
	}
	return lexicon.Dedupe(key, lemmas), nil
}

// ImportSynsets loads synsets under the given source name inside a single
// transaction. Synsets previously imported under the same source are
// replaced, which makes re-imports idempotent. Synsets with an unknown part
// of speech or fewer than two distinct lemmas are skipped. The number of
// imported synsets is returned.
func (s *Store) ImportSynsets(ctx context.Context, source string, synsets []lexicon.Synset) (int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("postgres lexicon: import: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM synsets WHERE source = $1`, source); err != nil {
		return 0, fmt.Errorf("postgres lexicon: import: clear source: %w", err)
	}

	const q = `
		WITH s AS (
		    INSERT INTO synsets (pos, source) VALUES ($1, $2) RETURNING id
		)
		INSERT INTO lemmas (synset_id, lemma)
		SELECT s.id, l FROM s, unnest($3::text[]) AS l
		ON CONFLICT DO NOTHING`

	batch := &pgx.Batch{}
	for _, syn := range synsets {
		if syn.POS == nlp.POSOther {
			continue
		}
		lemmas := lexicon.Dedupe("", syn.Lemmas)
		if len(lemmas) < 2 {
			continue
		}
		batch.Queue(q, string(syn.POS), source, lemmas)
	}
	n := batch.Len()
	if n > 0 {
		br := tx.SendBatch(ctx, batch)
		for i := range n {
			if _, err := br.Exec(); err != nil {
				_ = br.Close()
				return 0, fmt.Errorf("postgres lexicon: import: synset %d: %w", i, err)
			}
		}
		if err := br.Close(); err != nil {
			return 0, fmt.Errorf("postgres lexicon: import: close batch: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("postgres lexicon: import: commit: %w", err)
	}
	return n, nil
}

// CountSynsets returns the number of stored synsets across all sources.
func (s *Store) CountSynsets(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM synsets`).Scan(&n); err != nil {
		return 0, fmt.Errorf("postgres lexicon: count: %w", err)
	}
	return n, nil
}
