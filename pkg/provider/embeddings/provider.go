// Package embeddings defines the Provider interface for vector embedding backends.
//
// An embeddings provider maps words or short phrases to dense float32 vectors
// (e.g. OpenAI text-embedding-3, a local sentence-transformer served by Ollama,
// or vectors derived from a thesaurus). The humanizer compares the vector of an
// original word with the vectors of its candidate synonyms and only accepts a
// replacement whose cosine similarity clears a threshold.
//
// Implementations must be safe for concurrent use.
package embeddings

import "context"

// Provider is the abstraction over any text-embedding backend.
//
// All vectors returned by a single Provider share the same dimensionality
// (see Dimensions). Vectors from different providers must never be compared
// with each other.
type Provider interface {
	// Embed computes the vector for a single text. The text is passed through
	// verbatim; callers apply any model-specific prefixing.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch computes vectors for several texts, usually in one backend
	// call. The i-th result corresponds to texts[i]. On error the whole result
	// is nil; partial results are never returned.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the fixed vector length of this provider.
	Dimensions() int

	// ModelID returns the backend model identifier, e.g.
	// "text-embedding-3-small". Cached vectors are keyed by it.
	ModelID() string
}

// Pinger is implemented by providers that can cheaply check that their backend
// is reachable. Readiness probes use it when available.
type Pinger interface {
	Ping(ctx context.Context) error
}
