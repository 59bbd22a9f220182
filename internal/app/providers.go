package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	anyllmlib "github.com/mozilla-ai/any-llm-go"

	"github.com/MrWong99/humanizer/internal/config"
	"github.com/MrWong99/humanizer/internal/health"
	"github.com/MrWong99/humanizer/internal/observe"
	"github.com/MrWong99/humanizer/internal/resilience"
	"github.com/MrWong99/humanizer/pkg/lexicon"
	"github.com/MrWong99/humanizer/pkg/lexicon/llmlex"
	"github.com/MrWong99/humanizer/pkg/lexicon/thesaurus"
	"github.com/MrWong99/humanizer/pkg/provider/embeddings"
	"github.com/MrWong99/humanizer/pkg/provider/embeddings/lexical"
	ollamaembed "github.com/MrWong99/humanizer/pkg/provider/embeddings/ollama"
	oaembed "github.com/MrWong99/humanizer/pkg/provider/embeddings/openai"
	"github.com/MrWong99/humanizer/pkg/provider/llm"
	"github.com/MrWong99/humanizer/pkg/provider/llm/anyllm"
	oallm "github.com/MrWong99/humanizer/pkg/provider/llm/openai"
	"github.com/MrWong99/humanizer/pkg/store/postgres"
)

// Providers holds the collaborators the full variant is assembled from. Nil
// means the slot is not configured.
type Providers struct {
	Embeddings embeddings.Provider
	Lexicon    lexicon.Lexicon
	LLM        llm.Provider

	// Store is the Postgres lexical store, open when storage.postgres_dsn is set.
	Store *postgres.Store

	// Checkers probe the backends above for /readyz.
	Checkers []health.Checker
}

// Close releases the store connection pool.
func (p *Providers) Close() error {
	if p.Store != nil {
		p.Store.Close()
	}
	return nil
}

// ── Provider wiring ───────────────────────────────────────────────────────────

// RegisterBuiltinProviders wires the provider factories that need nothing but
// their own [config.ProviderEntry] into reg. The "postgres" and "llm" lexicons
// depend on other providers and are registered by [BuildProviders].
func RegisterBuiltinProviders(reg *config.Registry) {
	// ── LLM ───────────────────────────────────────────────────────────────────
	// Every any-llm-go backend shares the same pattern: optional APIKey +
	// optional BaseURL. "openai" is overridden below by the native client,
	// which supports JSON mode.
	for _, backend := range anyllm.Backends {
		reg.RegisterLLM(backend, func(entry config.ProviderEntry) (llm.Provider, error) {
			var opts []anyllmlib.Option
			if entry.APIKey != "" {
				opts = append(opts, anyllmlib.WithAPIKey(entry.APIKey))
			}
			if entry.BaseURL != "" {
				opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
			}
			return anyllm.New(backend, entry.Model, opts...)
		})
	}

	reg.RegisterLLM("openai", func(entry config.ProviderEntry) (llm.Provider, error) {
		var opts []oallm.Option
		if entry.BaseURL != "" {
			opts = append(opts, oallm.WithBaseURL(entry.BaseURL))
		}
		if org := entry.OptionString("organization", ""); org != "" {
			opts = append(opts, oallm.WithOrganization(org))
		}
		if d := entry.OptionDuration("timeout", 0); d > 0 {
			opts = append(opts, oallm.WithTimeout(d))
		}
		return oallm.New(entry.APIKey, entry.Model, opts...)
	})

	// ── Embeddings ────────────────────────────────────────────────────────────

	reg.RegisterEmbeddings("lexical", func(entry config.ProviderEntry) (embeddings.Provider, error) {
		index := thesaurus.Builtin()
		if path := entry.OptionString("path", ""); path != "" {
			t, err := thesaurus.LoadFile(path)
			if err != nil {
				return nil, err
			}
			index = t
		}
		opts := []lexical.Option{}
		if n := entry.OptionInt("dimensions", 0); n > 0 {
			opts = append(opts, lexical.WithDimensions(n))
		}
		if w := entry.OptionFloat("identity_weight", 0); w > 0 {
			opts = append(opts, lexical.WithIdentityWeight(w))
		}
		if entry.Model != "" {
			opts = append(opts, lexical.WithModelID(entry.Model))
		}
		return lexical.New(index, opts...)
	})

	reg.RegisterEmbeddings("openai", func(entry config.ProviderEntry) (embeddings.Provider, error) {
		var opts []oaembed.Option
		if entry.BaseURL != "" {
			opts = append(opts, oaembed.WithBaseURL(entry.BaseURL))
		}
		if org := entry.OptionString("organization", ""); org != "" {
			opts = append(opts, oaembed.WithOrganization(org))
		}
		if d := entry.OptionDuration("timeout", 0); d > 0 {
			opts = append(opts, oaembed.WithTimeout(d))
		}
		if n := entry.OptionInt("dimensions", 0); n > 0 {
			opts = append(opts, oaembed.WithDimensions(n))
		}
		return oaembed.New(entry.APIKey, entry.Model, opts...)
	})

	// ollama is a local server; it uses BaseURL for the address, not an API key.
	reg.RegisterEmbeddings("ollama", func(entry config.ProviderEntry) (embeddings.Provider, error) {
		var opts []ollamaembed.Option
		if d := entry.OptionDuration("timeout", 0); d > 0 {
			opts = append(opts, ollamaembed.WithTimeout(d))
		}
		if d := entry.OptionDuration("keep_alive", 0); d > 0 {
			opts = append(opts, ollamaembed.WithKeepAlive(d))
		}
		if n := entry.OptionInt("dimensions", 0); n > 0 {
			opts = append(opts, ollamaembed.WithDimensions(n))
		}
		return ollamaembed.New(entry.BaseURL, entry.Model, opts...)
	})

	// ── Lexicon ───────────────────────────────────────────────────────────────

	reg.RegisterLexicon("builtin", func(config.ProviderEntry) (lexicon.Lexicon, error) {
		return thesaurus.Builtin(), nil
	})

	reg.RegisterLexicon("yaml", func(entry config.ProviderEntry) (lexicon.Lexicon, error) {
		return thesaurus.LoadFile(entry.OptionString("path", ""))
	})

	for kind, names := range map[string][]string{
		config.KindLLM:        reg.Names(config.KindLLM),
		config.KindEmbeddings: reg.Names(config.KindEmbeddings),
		config.KindLexicon:    reg.Names(config.KindLexicon),
	} {
		for _, name := range names {
			slog.Debug("registered provider", "kind", kind, "name", name)
		}
	}
}

// registerDependentLexicons binds the lexicons that sit on top of another
// provider to the instances in ps.
func registerDependentLexicons(reg *config.Registry, ps *Providers) {
	reg.RegisterLexicon("postgres", func(config.ProviderEntry) (lexicon.Lexicon, error) {
		if ps.Store == nil {
			return nil, errors.New("storage.postgres_dsn is not configured")
		}
		return ps.Store, nil
	})

	reg.RegisterLexicon("llm", func(entry config.ProviderEntry) (lexicon.Lexicon, error) {
		if ps.LLM == nil {
			return nil, errors.New("providers.llm is not configured")
		}
		var opts []llmlex.Option
		if t := entry.OptionFloat("temperature", -1); t >= 0 {
			opts = append(opts, llmlex.WithTemperature(t))
		}
		if n := entry.OptionInt("max_synonyms", 0); n > 0 {
			opts = append(opts, llmlex.WithMaxSynonyms(n))
		}
		if n := entry.OptionInt("cache_size", 0); n > 0 {
			opts = append(opts, llmlex.WithCacheSize(n))
		}
		return llmlex.New(ps.LLM, opts...), nil
	})
}

// BuildProviders instantiates every provider named in cfg using reg.
//
// Embeddings and lexicon entries form fallback chains: the first entry is the
// primary and later entries are tried when it fails or its circuit breaker is
// open. Breaker transitions are recorded on metrics. When storage.cache_vectors
// is set, every remote embeddings provider is fronted by the Postgres vector
// cache.
//
// On error, anything already opened is closed.
func BuildProviders(ctx context.Context, cfg *config.Config, reg *config.Registry, metrics *observe.Metrics) (_ *Providers, err error) {
	ps := &Providers{}
	defer func() {
		if err != nil {
			_ = ps.Close()
		}
	}()

	fbCfg := fallbackConfig(cfg.Resilience, metrics)

	if dsn := cfg.Storage.PostgresDSN; dsn != "" {
		store, err := postgres.NewStore(ctx, dsn, cfg.Storage.EmbeddingDimensions)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		ps.Store = store
		primary := len(cfg.Providers.Lexicon) > 0 && cfg.Providers.Lexicon[0].Name == "postgres"
		ps.Checkers = append(ps.Checkers, health.PingChecker("postgres", store, !primary))
		slog.Info("postgres store connected", "dimensions", store.Dimensions())
	}

	if name := cfg.Providers.LLM.Name; name != "" {
		p, err := reg.CreateLLM(cfg.Providers.LLM)
		if err != nil {
			return nil, fmt.Errorf("create llm provider %q: %w", name, err)
		}
		ps.LLM = resilience.NewLLMFallback(p, "llm/"+name, fbCfg)
		slog.Info("provider created", "kind", config.KindLLM, "name", name, "model", p.Model())
	}

	registerDependentLexicons(reg, ps)

	if entries := cfg.Providers.Embeddings; len(entries) > 0 {
		var chain *resilience.EmbeddingsFallback
		for i, entry := range entries {
			p, err := reg.CreateEmbeddings(entry)
			if err != nil {
				return nil, fmt.Errorf("create embeddings provider %q: %w", entry.Name, err)
			}
			p = cacheVectors(cfg.Storage, ps.Store, entry.Name, p)
			name := fmt.Sprintf("embeddings/%s", entry.Name)
			if i == 0 {
				chain = resilience.NewEmbeddingsFallback(p, name, fbCfg)
			} else {
				chain.AddFallback(name, p)
			}
			slog.Info("provider created", "kind", config.KindEmbeddings, "name", entry.Name, "model", p.ModelID(), "fallback", i > 0)
		}
		ps.Embeddings = chain
		ps.Checkers = append(ps.Checkers, health.PingChecker("embeddings", chain, true))
	}

	if entries := cfg.Providers.Lexicon; len(entries) > 0 {
		var chain *resilience.LexiconFallback
		for i, entry := range entries {
			l, err := reg.CreateLexicon(entry)
			if err != nil {
				return nil, fmt.Errorf("create lexicon %q: %w", entry.Name, err)
			}
			name := fmt.Sprintf("lexicon/%s", entry.Name)
			if i == 0 {
				chain = resilience.NewLexiconFallback(l, name, fbCfg)
			} else {
				chain.AddFallback(name, l)
			}
			slog.Info("provider created", "kind", config.KindLexicon, "name", entry.Name, "fallback", i > 0)
		}
		ps.Lexicon = chain
	}

	return ps, nil
}

func fallbackConfig(rc config.ResilienceConfig, metrics *observe.Metrics) resilience.FallbackConfig {
	return resilience.FallbackConfig{
		CircuitBreaker: resilience.CircuitBreakerConfig{
			MaxFailures:  rc.MaxFailures,
			ResetTimeout: rc.ResetTimeout,
			HalfOpenMax:  rc.HalfOpenMax,
			OnStateChange: func(name string, from, to resilience.State) {
				slog.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
				if metrics != nil {
					metrics.RecordBreakerTransition(context.Background(), name, to.String())
				}
			},
		},
	}
}

// cacheVectors fronts p with the Postgres vector cache when caching is on.
// The lexical provider is computed locally and never cached.
func cacheVectors(sc config.StorageConfig, store *postgres.Store, name string, p embeddings.Provider) embeddings.Provider {
	if !sc.CacheVectors || store == nil || name == "lexical" {
		return p
	}
	if p.Dimensions() != store.Dimensions() {
		slog.Warn("embeddings dimensions do not match the vector cache, not caching",
			"provider", name, "dimensions", p.Dimensions(), "cache_dimensions", store.Dimensions())
		return p
	}
	return postgres.NewCachedProvider(store, p.ModelID(), p)
}
