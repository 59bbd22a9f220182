// Package mock provides a test double for the embeddings.Provider interface.
//
// Vectors maps each text to the vector the mock returns for it, which makes
// similarity scores fully predictable in tests:
//
//	p := &mock.Provider{
//	    Vectors: map[string][]float32{
//	        "big":   {1, 0},
//	        "large": {0.9, 0.1},
//	    },
//	    DimensionsValue: 2,
//	}
//
// Texts missing from Vectors get DefaultVector (nil unless set).
package mock

import (
	"context"
	"sync"

	"github.com/MrWong99/humanizer/pkg/provider/embeddings"
)

var _ embeddings.Provider = (*Provider)(nil)

// Provider is a mock implementation of embeddings.Provider. The zero value is
// usable. All methods are safe for concurrent use.
type Provider struct {
	mu sync.Mutex

	// Vectors holds the canned vector for each text.
	Vectors map[string][]float32

	// DefaultVector is returned for texts missing from Vectors.
	DefaultVector []float32

	// Err, if non-nil, is returned by Embed and EmbedBatch.
	Err error

	// DimensionsValue is returned by Dimensions.
	DimensionsValue int

	// ModelIDValue is returned by ModelID.
	ModelIDValue string

	// EmbedCalls records the text of every Embed call in order.
	EmbedCalls []string

	// EmbedBatchCalls records a copy of the texts of every EmbedBatch call.
	EmbedBatchCalls [][]string
}

func (p *Provider) vector(text string) []float32 {
	if v, ok := p.Vectors[text]; ok {
		return v
	}
	return p.DefaultVector
}

// Embed records the call and returns the canned vector for text.
func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.EmbedCalls = append(p.EmbedCalls, text)
	if p.Err != nil {
		return nil, p.Err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.vector(text), nil
}

// EmbedBatch records the call and returns one canned vector per text.
func (p *Provider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.EmbedBatchCalls = append(p.EmbedBatchCalls, append([]string(nil), texts...))
	if p.Err != nil {
		return nil, p.Err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = p.vector(t)
	}
	return out, nil
}

// Dimensions returns DimensionsValue.
func (p *Provider) Dimensions() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.DimensionsValue
}

// ModelID returns ModelIDValue.
func (p *Provider) ModelID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ModelIDValue
}

// Calls returns the total number of Embed and EmbedBatch calls.
func (p *Provider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.EmbedCalls) + len(p.EmbedBatchCalls)
}

// Reset clears all recorded calls.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.EmbedCalls = nil
	p.EmbedBatchCalls = nil
}
