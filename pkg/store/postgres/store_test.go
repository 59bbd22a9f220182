package postgres_test

import (
	"context"
	"os"
	"slices"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MrWong99/humanizer/pkg/lexicon"
	"github.com/MrWong99/humanizer/pkg/nlp"
	"github.com/MrWong99/humanizer/pkg/store/postgres"
)

const testDimensions = 3

// testDSN returns the test database DSN from the environment, or skips the
// test if HUMANIZER_TEST_POSTGRES_DSN is not set.
func testDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("HUMANIZER_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("HUMANIZER_TEST_POSTGRES_DSN not set, skipping PostgreSQL integration tests")
	}
	return dsn
}

// newTestStore creates a fresh Store with a clean schema.
func newTestStore(t *testing.T) *postgres.Store {
	t.Helper()
	dsn := testDSN(t)
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	for _, stmt := range []string{
		"DROP TABLE IF EXISTS lemmas CASCADE",
		"DROP TABLE IF EXISTS synsets CASCADE",
		"DROP TABLE IF EXISTS word_vectors CASCADE",
	} {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			t.Fatalf("drop %q: %v", stmt, err)
		}
	}
	pool.Close()

	store, err := postgres.NewStore(ctx, dsn, testDimensions)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(store.Close)
	return store
}

func TestLexicon_ImportAndSynonyms(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	n, err := store.ImportSynsets(ctx, "test", []lexicon.Synset{
		{POS: nlp.POSAdjective, Lemmas: []string{"big", "large", "Large"}},
		{POS: nlp.POSAdjective, Lemmas: []string{"big", "important"}},
		{POS: nlp.POSNoun, Lemmas: []string{"big", "bigwig"}},
		{POS: nlp.POSAdjective, Lemmas: []string{"lonely"}},
	})
	if err != nil {
		t.Fatalf("ImportSynsets: %v", err)
	}
	if n != 3 {
		t.Errorf("imported %d synsets, want 3", n)
	}

	got, err := store.Synonyms(ctx, "Big", nlp.POSAdjective)
	if err != nil {
		t.Fatalf("Synonyms: %v", err)
	}
	if want := []string{"important", "large"}; !slices.Equal(got, want) {
		t.Errorf("Synonyms(big, adjective) = %v, want %v", got, want)
	}

	got, err = store.Synonyms(ctx, "unknown", nlp.POSAdjective)
	if err != nil {
		t.Fatalf("Synonyms(unknown): %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Synonyms(unknown) = %v, want empty", got)
	}
}

func TestLexicon_ReimportReplacesSource(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	syn := []lexicon.Synset{{POS: nlp.POSAdverb, Lemmas: []string{"quickly", "rapidly"}}}
	for range 2 {
		if _, err := store.ImportSynsets(ctx, "wordnet", syn); err != nil {
			t.Fatalf("ImportSynsets: %v", err)
		}
	}
	count, err := store.CountSynsets(ctx)
	if err != nil {
		t.Fatalf("CountSynsets: %v", err)
	}
	if count != 1 {
		t.Errorf("CountSynsets = %d after re-import, want 1", count)
	}
}

func TestVectors_UpsertAndLookup(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.UpsertVectors(ctx, "m", map[string][]float32{
		"big":   {1, 0, 0},
		"large": {0.9, 0.1, 0},
	}); err != nil {
		t.Fatalf("UpsertVectors: %v", err)
	}
	if err := store.UpsertVectors(ctx, "m", map[string][]float32{"big": {0, 1, 0}}); err != nil {
		t.Fatalf("UpsertVectors overwrite: %v", err)
	}

	got, err := store.LookupVectors(ctx, "m", []string{"big", "large", "absent"})
	if err != nil {
		t.Fatalf("LookupVectors: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("LookupVectors returned %d entries, want 2", len(got))
	}
	if got["big"][1] != 1 {
		t.Errorf("big = %v, want overwritten [0 1 0]", got["big"])
	}

	other, err := store.LookupVectors(ctx, "other-model", []string{"big"})
	if err != nil {
		t.Fatalf("LookupVectors(other-model): %v", err)
	}
	if len(other) != 0 {
		t.Errorf("vectors must not leak across models, got %v", other)
	}

	if err := store.UpsertVectors(ctx, "m", map[string][]float32{"bad": {1}}); err == nil {
		t.Error("expected dimension mismatch error")
	}
}

func TestVectors_ImportGloVe(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	data := strings.Join([]string{
		"3 3",
		"Big 1 0 0",
		"large 0.9 0.1 0",
		"short 1 2",
		"big 0 0 1",
	}, "\n")
	n, err := store.ImportVectors(ctx, "glove", strings.NewReader(data))
	if err != nil {
		t.Fatalf("ImportVectors: %v", err)
	}
	if n != 2 {
		t.Errorf("imported %d vectors, want 2", n)
	}

	p := postgres.NewCachedProvider(store, "glove", nil)
	vecs, err := p.EmbedBatch(ctx, []string{"big", "missing"})
	if err != nil {
		t.Fatalf("EmbedBatch: %v", err)
	}
	if vecs[0][0] != 1 {
		t.Errorf("big = %v, want first occurrence [1 0 0]", vecs[0])
	}
	if len(vecs[1]) != testDimensions {
		t.Errorf("missing word vector length = %d, want %d", len(vecs[1]), testDimensions)
	}
}

func TestStore_Ping(t *testing.T) {
	store := newTestStore(t)
	if err := store.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if store.Dimensions() != testDimensions {
		t.Errorf("Dimensions = %d, want %d", store.Dimensions(), testDimensions)
	}
}
