package resilience

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/MrWong99/humanizer/pkg/lexicon/thesaurus"
	"github.com/MrWong99/humanizer/pkg/nlp"
	"github.com/MrWong99/humanizer/pkg/provider/embeddings/mock"
	"github.com/MrWong99/humanizer/pkg/provider/llm"
	llmmock "github.com/MrWong99/humanizer/pkg/provider/llm/mock"
)

var testCfg = FallbackConfig{CircuitBreaker: CircuitBreakerConfig{MaxFailures: 3}}

func TestEmbeddingsFallback_Failover(t *testing.T) {
	t.Parallel()

	primary := &mock.Provider{Err: errors.New("primary down"), DimensionsValue: 768, ModelIDValue: "nomic"}
	secondary := &mock.Provider{DefaultVector: []float32{1, 0}, DimensionsValue: 2}

	fb := NewEmbeddingsFallback(primary, "ollama", testCfg)
	fb.AddFallback("lexical", secondary)

	vecs, err := fb.EmbedBatch(context.Background(), []string{"big", "large"})
	if err != nil {
		t.Fatalf("EmbedBatch: %v", err)
	}
	if len(vecs) != 2 {
		t.Fatalf("got %d vectors, want 2", len(vecs))
	}
	if len(secondary.EmbedBatchCalls) != 1 {
		t.Errorf("secondary saw %d batch calls, want 1", len(secondary.EmbedBatchCalls))
	}
	if _, err := fb.Embed(context.Background(), "big"); err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if fb.Dimensions() != 768 || fb.ModelID() != "nomic" {
		t.Errorf("metadata should come from the primary: %d %q", fb.Dimensions(), fb.ModelID())
	}
	if err := fb.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v (a backend without Pinger counts as reachable)", err)
	}
	if len(fb.States()) != 2 {
		t.Errorf("States() = %v", fb.States())
	}
}

func TestEmbeddingsFallback_AllFail(t *testing.T) {
	t.Parallel()

	fb := NewEmbeddingsFallback(&mock.Provider{Err: errors.New("down")}, "a", testCfg)
	fb.AddFallback("b", &mock.Provider{Err: errors.New("down")})
	if _, err := fb.Embed(context.Background(), "x"); !errors.Is(err, ErrAllFailed) {
		t.Fatalf("err = %v, want ErrAllFailed", err)
	}
}

type failingLexicon struct{ calls int }

func (f *failingLexicon) Synonyms(context.Context, string, nlp.POS) ([]string, error) {
	f.calls++
	return nil, errors.New("connection refused")
}

func TestLexiconFallback(t *testing.T) {
	t.Parallel()

	pg := &failingLexicon{}
	fb := NewLexiconFallback(pg, "postgres", testCfg)
	fb.AddFallback("builtin", thesaurus.Builtin())

	got, err := fb.Synonyms(context.Background(), "big", nlp.POSAdjective)
	if err != nil {
		t.Fatalf("Synonyms: %v", err)
	}
	if !slices.Contains(got, "large") {
		t.Errorf("Synonyms(big) = %v, want the builtin answer", got)
	}
	if pg.calls != 1 {
		t.Errorf("primary called %d times, want 1", pg.calls)
	}
	if fb.States()["postgres"] != StateClosed {
		t.Errorf("one failure must not open the breaker: %v", fb.States())
	}
}

func TestLexiconFallback_EmptyAnswerIsAuthoritative(t *testing.T) {
	t.Parallel()

	fallback := &failingLexicon{}
	fb := NewLexiconFallback(thesaurus.Builtin(), "builtin", testCfg)
	fb.AddFallback("other", fallback)

	got, err := fb.Synonyms(context.Background(), "xylophone", nlp.POSNoun)
	if err != nil || len(got) != 0 {
		t.Errorf("Synonyms = (%v, %v), want empty", got, err)
	}
	if fallback.calls != 0 {
		t.Error("an empty answer must not trigger failover")
	}
}

func TestLLMFallback(t *testing.T) {
	t.Parallel()

	primary := &llmmock.Provider{CompleteErr: errors.New("primary down"), ModelName: "gpt-4o-mini"}
	secondary := &llmmock.Provider{CompleteResponse: &llm.CompletionResponse{Content: "ok"}}

	fb := NewLLMFallback(primary, "openai", testCfg)
	fb.AddFallback("ollama", secondary)

	resp, err := fb.Complete(context.Background(), llm.CompletionRequest{})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Content != "ok" {
		t.Errorf("Content = %q, want ok", resp.Content)
	}
	if fb.Model() != "gpt-4o-mini" {
		t.Errorf("Model() = %q", fb.Model())
	}
}
