package config

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/MrWong99/humanizer/pkg/lexicon"
	"github.com/MrWong99/humanizer/pkg/provider/embeddings"
	"github.com/MrWong99/humanizer/pkg/provider/llm"
)

// ErrProviderNotRegistered is returned by Create* methods when no factory has
// been registered under the requested provider name.
var ErrProviderNotRegistered = errors.New("config: provider not registered")

// Registry maps provider names to their constructor functions for each
// provider type. It is safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	embeddings map[string]func(ProviderEntry) (embeddings.Provider, error)
	lexicon    map[string]func(ProviderEntry) (lexicon.Lexicon, error)
	llm        map[string]func(ProviderEntry) (llm.Provider, error)
}

// NewRegistry returns an empty, ready-to-use [Registry].
func NewRegistry() *Registry {
	return &Registry{
		embeddings: make(map[string]func(ProviderEntry) (embeddings.Provider, error)),
		lexicon:    make(map[string]func(ProviderEntry) (lexicon.Lexicon, error)),
		llm:        make(map[string]func(ProviderEntry) (llm.Provider, error)),
	}
}

// RegisterEmbeddings registers an embeddings provider factory under name.
// Subsequent calls with the same name overwrite the previous registration.
func (r *Registry) RegisterEmbeddings(name string, factory func(ProviderEntry) (embeddings.Provider, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.embeddings[name] = factory
}

// RegisterLexicon registers a synonym source factory under name.
func (r *Registry) RegisterLexicon(name string, factory func(ProviderEntry) (lexicon.Lexicon, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lexicon[name] = factory
}

// RegisterLLM registers an LLM provider factory under name.
func (r *Registry) RegisterLLM(name string, factory func(ProviderEntry) (llm.Provider, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.llm[name] = factory
}

// CreateEmbeddings instantiates an embeddings provider using the factory
// registered under entry.Name.
// Returns [ErrProviderNotRegistered] if no factory has been registered for that name.
func (r *Registry) CreateEmbeddings(entry ProviderEntry) (embeddings.Provider, error) {
	return create(r, r.embeddings, KindEmbeddings, entry)
}

// CreateLexicon instantiates a synonym source using the factory registered
// under entry.Name.
func (r *Registry) CreateLexicon(entry ProviderEntry) (lexicon.Lexicon, error) {
	return create(r, r.lexicon, KindLexicon, entry)
}

// CreateLLM instantiates an LLM provider using the factory registered under entry.Name.
func (r *Registry) CreateLLM(entry ProviderEntry) (llm.Provider, error) {
	return create(r, r.llm, KindLLM, entry)
}

// Names returns the sorted names registered for kind.
func (r *Registry) Names(kind string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var names []string
	switch kind {
	case KindEmbeddings:
		names = keys(r.embeddings)
	case KindLexicon:
		names = keys(r.lexicon)
	case KindLLM:
		names = keys(r.llm)
	}
	slices.Sort(names)
	return names
}

func create[T any](r *Registry, factories map[string]func(ProviderEntry) (T, error), kind string, entry ProviderEntry) (T, error) {
	r.mu.RLock()
	factory, ok := factories[entry.Name]
	r.mu.RUnlock()
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %s/%q", ErrProviderNotRegistered, kind, entry.Name)
	}
	return factory(entry)
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

// OptionString returns the string option key, or def when it is unset or not
// a string.
func (e ProviderEntry) OptionString(key, def string) string {
	if v, ok := e.Options[key].(string); ok && v != "" {
		return v
	}
	return def
}

// OptionInt returns the integer option key, or def when it is unset. YAML
// decodes whole numbers as int; floats are truncated.
func (e ProviderEntry) OptionInt(key string, def int) int {
	switch v := e.Options[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return def
}

// OptionFloat returns the numeric option key, or def when it is unset.
func (e ProviderEntry) OptionFloat(key string, def float64) float64 {
	switch v := e.Options[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return def
}

// OptionDuration returns the duration option key ("30s", "1m"), or def when
// it is unset or unparsable.
func (e ProviderEntry) OptionDuration(key string, def time.Duration) time.Duration {
	s, ok := e.Options[key].(string)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}

// OptionBool returns the boolean option key, or def when it is unset.
func (e ProviderEntry) OptionBool(key string, def bool) bool {
	if v, ok := e.Options[key].(bool); ok {
		return v
	}
	return def
}
