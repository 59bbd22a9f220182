package resilience

import (
	"context"

	"github.com/MrWong99/humanizer/pkg/provider/embeddings"
)

// EmbeddingsFallback implements [embeddings.Provider] with failover across
// several embedding backends.
//
// Vectors from different models are not comparable. A single similarity
// query embeds both words in one EmbedBatch call, so every vector it
// compares always comes from the same backend.
type EmbeddingsFallback struct {
	group *FallbackGroup[embeddings.Provider]
}

var (
	_ embeddings.Provider = (*EmbeddingsFallback)(nil)
	_ embeddings.Pinger   = (*EmbeddingsFallback)(nil)
)

// NewEmbeddingsFallback creates an [EmbeddingsFallback] with primary as the
// preferred backend.
func NewEmbeddingsFallback(primary embeddings.Provider, primaryName string, cfg FallbackConfig) *EmbeddingsFallback {
	return &EmbeddingsFallback{group: NewFallbackGroup(primary, primaryName, cfg)}
}

// AddFallback registers an additional embeddings provider.
func (f *EmbeddingsFallback) AddFallback(name string, provider embeddings.Provider) {
	f.group.AddFallback(name, provider)
}

// Embed embeds text with the first healthy provider.
func (f *EmbeddingsFallback) Embed(ctx context.Context, text string) ([]float32, error) {
	return ExecuteWithResult(f.group, func(p embeddings.Provider) ([]float32, error) {
		return p.Embed(ctx, text)
	})
}

// EmbedBatch embeds all texts with the first healthy provider.
func (f *EmbeddingsFallback) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return ExecuteWithResult(f.group, func(p embeddings.Provider) ([][]float32, error) {
		return p.EmbedBatch(ctx, texts)
	})
}

// Dimensions returns the primary's dimensions.
func (f *EmbeddingsFallback) Dimensions() int { return f.group.Primary().Dimensions() }

// ModelID returns the primary's model ID.
func (f *EmbeddingsFallback) ModelID() string { return f.group.Primary().ModelID() }

// Ping succeeds when any backend answers its ping. Backends that do not
// implement [embeddings.Pinger] count as reachable.
func (f *EmbeddingsFallback) Ping(ctx context.Context) error {
	return f.group.Execute(func(p embeddings.Provider) error {
		if pinger, ok := p.(embeddings.Pinger); ok {
			return pinger.Ping(ctx)
		}
		return nil
	})
}

// States returns the breaker state of every backend keyed by name.
func (f *EmbeddingsFallback) States() map[string]State { return f.group.States() }
