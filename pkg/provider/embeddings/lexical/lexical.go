// Package lexical provides an embeddings provider that derives word vectors
// from a thesaurus instead of a neural model.
//
// Each word is represented by the senses (synset IDs) it belongs to plus a
// small identity component, feature-hashed into a fixed number of dimensions
// and L2-normalised. Two words that share exactly one sense and nothing else
// score 1/(1+w²) where w is the identity weight (0.8 with the default 0.5),
// while words with several unshared senses score lower. Unknown words carry
// only their identity component and are dissimilar to everything.
//
// The scores are coarse. Every candidate that shares a single sense with the
// word and has no other senses scores exactly 0.8, so within a synset the
// scorer cannot separate candidates. Those ties fall back to lexicon order,
// which for a thesaurus is the order lemmas are listed in. Candidates sharing
// several senses score higher and polysemous candidates score lower; finer
// ranking needs a neural provider (openai, ollama).
//
// The provider needs no network access, which makes it the default for the
// offline CLI and for tests.
package lexical

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strconv"
	"strings"

	"github.com/MrWong99/humanizer/pkg/provider/embeddings"
)

// DefaultDimensions is the default hashed vector length.
const DefaultDimensions = 1024

// DefaultIdentityWeight is the default weight of a word's own component.
const DefaultIdentityWeight = 0.5

// SenseIndex reports the sense IDs a word belongs to.
// *thesaurus.Thesaurus implements it.
type SenseIndex interface {
	Senses(word string) []int
}

var _ embeddings.Provider = (*Provider)(nil)

// Provider implements embeddings.Provider over a SenseIndex. It is immutable
// and safe for concurrent use.
type Provider struct {
	index    SenseIndex
	dims     int
	identity float64
	model    string
}

// Option configures a Provider.
type Option func(*Provider)

// WithDimensions sets the hashed vector length.
func WithDimensions(n int) Option {
	return func(p *Provider) { p.dims = n }
}

// WithIdentityWeight sets the weight of the word's own component.
func WithIdentityWeight(w float64) Option {
	return func(p *Provider) { p.identity = w }
}

// WithModelID overrides the model identifier. Use distinct IDs for distinct
// thesauri so cached vectors never mix.
func WithModelID(id string) Option {
	return func(p *Provider) { p.model = id }
}

// New returns a Provider over index.
func New(index SenseIndex, opts ...Option) (*Provider, error) {
	if index == nil {
		return nil, fmt.Errorf("lexical embeddings: index must not be nil")
	}
	p := &Provider{
		index:    index,
		dims:     DefaultDimensions,
		identity: DefaultIdentityWeight,
	}
	for _, o := range opts {
		o(p)
	}
	if p.dims <= 0 {
		return nil, fmt.Errorf("lexical embeddings: dimensions must be positive, got %d", p.dims)
	}
	if p.identity < 0 {
		return nil, fmt.Errorf("lexical embeddings: identity weight must not be negative")
	}
	if p.model == "" {
		p.model = "lexical-" + strconv.Itoa(p.dims)
	}
	return p, nil
}

// Embed implements embeddings.Provider.
func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("lexical embeddings: embed: %w", err)
	}
	return p.vector(text), nil
}

// EmbedBatch implements embeddings.Provider.
func (p *Provider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("lexical embeddings: embed batch: %w", err)
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = p.vector(t)
	}
	return out, nil
}

// Dimensions implements embeddings.Provider.
func (p *Provider) Dimensions() int { return p.dims }

// ModelID implements embeddings.Provider.
func (p *Provider) ModelID() string { return p.model }

func (p *Provider) vector(text string) []float32 {
	word := strings.ToLower(strings.TrimSpace(text))
	acc := make([]float64, p.dims)
	for _, id := range p.index.Senses(word) {
		p.add(acc, "s:"+strconv.Itoa(id), 1)
	}
	if word != "" {
		p.add(acc, "w:"+word, p.identity)
	}

	var norm float64
	for _, v := range acc {
		norm += v * v
	}
	out := make([]float32, p.dims)
	if norm == 0 {
		return out
	}
	norm = math.Sqrt(norm)
	for i, v := range acc {
		out[i] = float32(v / norm)
	}
	return out
}

// add feature-hashes feature into acc. The sign comes from a second hash bit
// so that collisions cancel out on average.
func (p *Provider) add(acc []float64, feature string, weight float64) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(feature))
	sum := h.Sum64()

	idx := int(sum % uint64(p.dims))
	if (sum>>63)&1 == 1 {
		weight = -weight
	}
	acc[idx] += weight
}
