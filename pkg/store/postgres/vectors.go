package postgres

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	pgvector "github.com/pgvector/pgvector-go"
)

// importBatchSize is the number of rows sent per round trip by ImportVectors.
const importBatchSize = 1000

const upsertVectorQuery = `
	INSERT INTO word_vectors (model, word, embedding)
	VALUES ($1, $2, $3)
	ON CONFLICT (model, word) DO UPDATE SET
	    embedding  = EXCLUDED.embedding,
	    created_at = now()`

// LookupVectors returns the cached vectors of words for model. Words without
// a cached vector are absent from the result map.
func (s *Store) LookupVectors(ctx context.Context, model string, words []string) (map[string][]float32, error) {
	out := make(map[string][]float32, len(words))
	if len(words) == 0 {
		return out, nil
	}

	rows, err := s.pool.Query(ctx,
		`SELECT word, embedding FROM word_vectors WHERE model = $1 AND word = ANY($2)`,
		model, words)
	if err != nil {
		return nil, fmt.Errorf("postgres vectors: lookup: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			word string
			vec  pgvector.Vector
		)
		if err := rows.Scan(&word, &vec); err != nil {
			return nil, fmt.Errorf("postgres vectors: scan: %w", err)
		}
		out[word] = vec.Slice()
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres vectors: lookup: %w", err)
	}
	return out, nil
}

// UpsertVectors stores vectors for model, replacing existing entries.
func (s *Store) UpsertVectors(ctx context.Context, model string, vectors map[string][]float32) error {
	if len(vectors) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for word, vec := range vectors {
		if len(vec) != s.dimensions {
			return fmt.Errorf("postgres vectors: upsert %q: got %d dimensions, want %d", word, len(vec), s.dimensions)
		}
		batch.Queue(upsertVectorQuery, model, word, pgvector.NewVector(vec))
	}
	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("postgres vectors: upsert: %w", err)
	}
	return nil
}

// ImportVectors reads whitespace-separated word vectors in GloVe text format
// ("word v1 v2 … vN", one per line) and stores them under model. A leading
// word2vec header line ("count dims") is skipped, as are lines whose vector
// length does not match the store's dimensions. Words are lowercased; the
// first vector seen for a word wins within one import. The number of stored
// vectors is returned.
func (s *Store) ImportVectors(ctx context.Context, model string, r io.Reader) (int, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var (
		batch = &pgx.Batch{}
		seen  = make(map[string]bool)
		total int
		line  int
	)
	flush := func() error {
		if batch.Len() == 0 {
			return nil
		}
		if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
			return err
		}
		total += batch.Len()
		batch = &pgx.Batch{}
		return nil
	}

	for sc.Scan() {
		line++
		word, vec, ok := parseVectorLine(sc.Text())
		if !ok || len(vec) != s.dimensions {
			continue
		}
		if seen[word] {
			continue
		}
		seen[word] = true
		batch.Queue(upsertVectorQuery, model, word, pgvector.NewVector(vec))
		if batch.Len() >= importBatchSize {
			if err := flush(); err != nil {
				return total, fmt.Errorf("postgres vectors: import: line %d: %w", line, err)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return total, fmt.Errorf("postgres vectors: import: read: %w", err)
	}
	if err := flush(); err != nil {
		return total, fmt.Errorf("postgres vectors: import: %w", err)
	}
	return total, nil
}

// parseVectorLine splits a GloVe line into its lowercased word and vector.
// It reports false for blank lines, word2vec headers and malformed numbers.
func parseVectorLine(text string) (string, []float32, bool) {
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return "", nil, false
	}
	if len(fields) == 2 {
		if _, err := strconv.Atoi(fields[0]); err == nil {
			return "", nil, false
		}
	}
	vec := make([]float32, len(fields)-1)
	for i, f := range fields[1:] {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return "", nil, false
		}
		vec[i] = float32(v)
	}
	return strings.ToLower(fields[0]), vec, true
}
