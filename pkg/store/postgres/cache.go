package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/MrWong99/humanizer/pkg/provider/embeddings"
)

// VectorCache is the subset of [Store] used by [CachedProvider].
type VectorCache interface {
	LookupVectors(ctx context.Context, model string, words []string) (map[string][]float32, error)
	UpsertVectors(ctx context.Context, model string, vectors map[string][]float32) error
	Dimensions() int
}

var (
	_ VectorCache         = (*Store)(nil)
	_ embeddings.Provider = (*CachedProvider)(nil)
)

// CachedProvider is an [embeddings.Provider] that serves word vectors from the
// Postgres cache.
//
// Cache misses are forwarded to inner and written back. With a nil inner the
// cache acts as a static vector table (e.g. imported GloVe vectors) and
// misses produce a zero vector, which scores zero similarity against
// everything.
type CachedProvider struct {
	cache VectorCache
	model string
	inner embeddings.Provider
}

// NewCachedProvider returns a provider over cache for model. inner may be nil.
// When inner is set its ModelID should equal model so that vectors of
// different models never mix.
func NewCachedProvider(cache VectorCache, model string, inner embeddings.Provider) *CachedProvider {
	return &CachedProvider{cache: cache, model: model, inner: inner}
}

// Embed implements embeddings.Provider.
func (p *CachedProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch implements embeddings.Provider. Texts are looked up lowercased.
func (p *CachedProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	keys := make([]string, len(texts))
	for i, t := range texts {
		keys[i] = strings.ToLower(strings.TrimSpace(t))
	}

	words := unique(keys)
	found, err := p.cache.LookupVectors(ctx, p.model, words)
	if err != nil {
		return nil, fmt.Errorf("cached embeddings: %w", err)
	}

	var missing []string
	for _, k := range words {
		if _, ok := found[k]; !ok {
			missing = append(missing, k)
		}
	}

	if len(missing) > 0 && p.inner != nil {
		vecs, err := p.inner.EmbedBatch(ctx, missing)
		if err != nil {
			return nil, fmt.Errorf("cached embeddings: inner: %w", err)
		}
		if len(vecs) != len(missing) {
			return nil, fmt.Errorf("cached embeddings: inner returned %d vectors for %d words", len(vecs), len(missing))
		}
		fresh := make(map[string][]float32, len(missing))
		for i, k := range missing {
			found[k] = vecs[i]
			fresh[k] = vecs[i]
		}
		if err := p.cache.UpsertVectors(ctx, p.model, fresh); err != nil {
			return nil, fmt.Errorf("cached embeddings: write back: %w", err)
		}
	}

	out := make([][]float32, len(keys))
	for i, k := range keys {
		if v, ok := found[k]; ok {
			out[i] = v
		} else {
			out[i] = make([]float32, p.cache.Dimensions())
		}
	}
	return out, nil
}

// Dimensions implements embeddings.Provider.
func (p *CachedProvider) Dimensions() int { return p.cache.Dimensions() }

// ModelID implements embeddings.Provider.
func (p *CachedProvider) ModelID() string { return p.model }

func unique(words []string) []string {
	seen := make(map[string]bool, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		if !seen[w] {
			seen[w] = true
			out = append(out, w)
		}
	}
	return out
}
