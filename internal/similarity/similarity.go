// Package similarity scores how interchangeable two words are.
//
// The humanizer only accepts a synonym whose score against the original word
// reaches a configured threshold. Scores are in [0, 1]; 0 means "no evidence
// of similarity", which includes words the underlying model does not know.
package similarity

import (
	"context"
	"fmt"
	"math"

	"github.com/MrWong99/humanizer/pkg/provider/embeddings"
)

// Scorer rates the similarity of two words.
type Scorer interface {
	Similarity(ctx context.Context, a, b string) (float64, error)
}

// BatchScorer is an optional fast path for scoring many candidates against
// one word with a single backend round trip. Callers detect it with a type
// assertion.
type BatchScorer interface {
	Scorer
	SimilarityBatch(ctx context.Context, word string, candidates []string) ([]float64, error)
}

var _ BatchScorer = (*Embedding)(nil)

// Embedding scores words by the cosine similarity of their embeddings.
type Embedding struct {
	provider embeddings.Provider
}

// NewEmbedding returns a Scorer backed by provider.
func NewEmbedding(provider embeddings.Provider) *Embedding {
	return &Embedding{provider: provider}
}

// Provider returns the underlying embeddings provider.
func (e *Embedding) Provider() embeddings.Provider { return e.provider }

// Similarity implements Scorer.
func (e *Embedding) Similarity(ctx context.Context, a, b string) (float64, error) {
	scores, err := e.SimilarityBatch(ctx, a, []string{b})
	if err != nil {
		return 0, err
	}
	return scores[0], nil
}

// SimilarityBatch implements BatchScorer. All words are embedded in one
// EmbedBatch call.
func (e *Embedding) SimilarityBatch(ctx context.Context, word string, candidates []string) ([]float64, error) {
	if len(candidates) == 0 {
		return nil, nil
	}
	texts := make([]string, 0, len(candidates)+1)
	texts = append(texts, word)
	texts = append(texts, candidates...)

	vecs, err := e.provider.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("similarity: embed: %w", err)
	}
	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("similarity: embed: expected %d vectors, got %d", len(texts), len(vecs))
	}

	out := make([]float64, len(candidates))
	for i := range candidates {
		out[i] = Cosine(vecs[0], vecs[i+1])
	}
	return out, nil
}

// Cosine returns the cosine similarity of a and b clamped to [0, 1]. Zero
// vectors, empty vectors and vectors of different lengths score 0.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
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
	c := dot / (math.Sqrt(na) * math.Sqrt(nb))
	switch {
	case math.IsNaN(c), c < 0:
		return 0
	case c > 1:
		return 1
	}
	return c
}

// ScoreAll scores candidates against word using the batch fast path when s
// supports it, falling back to one Similarity call per candidate.
func ScoreAll(ctx context.Context, s Scorer, word string, candidates []string) ([]float64, error) {
	if bs, ok := s.(BatchScorer); ok {
		return bs.SimilarityBatch(ctx, word, candidates)
	}
	out := make([]float64, len(candidates))
	for i, c := range candidates {
		v, err := s.Similarity(ctx, word, c)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
