// Package config provides the configuration schema, loader, hot-reload
// watcher and provider registry for the humanizer service.
package config

import (
	"time"

	"github.com/MrWong99/humanizer/internal/humanize"
)

// LogLevel controls log verbosity for the humanizer server.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Variant selects the pipeline the server runs.
type Variant string

const (
	// VariantFull runs POS-tagged synonym substitution in addition to the
	// lite steps.
	VariantFull Variant = "full"

	// VariantLite runs contraction expansion and transitions only and needs
	// no providers.
	VariantLite Variant = "lite"
)

// IsValid reports whether v is a recognised variant.
func (v Variant) IsValid() bool {
	return v == VariantFull || v == VariantLite
}

// Defaults applied by [Config.ApplyDefaults].
const (
	DefaultListenAddr          = ":8000"
	DefaultRequestTimeout      = 30 * time.Second
	DefaultMaxBodyBytes        = 1 << 20
	DefaultEmbeddingDimensions = 1024
)

// Config is the root configuration structure.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Humanizer  HumanizerConfig  `yaml:"humanizer"`
	Providers  ProvidersConfig  `yaml:"providers"`
	Storage    StorageConfig    `yaml:"storage"`
	Resilience ResilienceConfig `yaml:"resilience"`
}

// ServerConfig holds network and logging settings.
type ServerConfig struct {
	// ListenAddr is the TCP address the server listens on. Default: ":8000".
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity. Hot-reloadable.
	LogLevel LogLevel `yaml:"log_level"`

	// Variant selects the full or lite pipeline. Default: full.
	Variant Variant `yaml:"variant"`

	// RequestTimeout bounds one humanize request. Default: 30s.
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// MaxBodyBytes caps the request body size. Default: 1 MiB.
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	// CORSOrigins lists allowed origins. Empty allows every origin.
	CORSOrigins []string `yaml:"cors_origins"`

	// TLS configures TLS for the server. When nil, the server runs plain HTTP.
	TLS *TLSConfig `yaml:"tls"`
}

// TLSConfig holds TLS certificate paths for enabling HTTPS.
type TLSConfig struct {
	// CertFile is the path to the PEM-encoded TLS certificate.
	CertFile string `yaml:"cert_file"`

	// KeyFile is the path to the PEM-encoded TLS private key.
	KeyFile string `yaml:"key_file"`
}

// HumanizerConfig holds the transformation parameters. Unset fields keep the
// documented defaults; pointers distinguish an explicit zero from unset.
// Hot-reloadable: a change builds a new Humanizer.
type HumanizerConfig struct {
	SentenceProbability   *float64 `yaml:"sentence_probability"`
	WordProbability       *float64 `yaml:"word_probability"`
	TransitionProbability *float64 `yaml:"transition_probability"`
	SimilarityThreshold   *float64 `yaml:"similarity_threshold"`
	MinWordLength         *int     `yaml:"min_word_length"`
	LengthTolerance       *int     `yaml:"length_tolerance"`
	MinTransitionWords    *int     `yaml:"min_transition_words"`

	// Seed makes the instance RNG reproducible across restarts.
	Seed *uint64 `yaml:"seed"`

	// StepOrder lists "synonyms" and "transitions" in application order.
	StepOrder []string `yaml:"step_order"`

	// Denylist replaces the built-in denylist when non-empty.
	Denylist []string `yaml:"denylist"`

	// EligibleTags replaces the eligible Penn tags when non-empty.
	EligibleTags []string `yaml:"eligible_tags"`

	// Transitions replaces the marker vocabulary when non-empty.
	Transitions []string `yaml:"transitions"`

	CollaboratorTimeout  time.Duration `yaml:"collaborator_timeout"`
	MaxConcurrentLookups int           `yaml:"max_concurrent_lookups"`
}

// ProvidersConfig declares the collaborator implementations. Each list is
// ordered: the first entry is the primary and the rest are fallbacks tried
// when it fails or its circuit is open.
type ProvidersConfig struct {
	// Embeddings rank synonym candidates. Default: the built-in "lexical"
	// provider.
	Embeddings []ProviderEntry `yaml:"embeddings"`

	// Lexicon supplies synonym candidates. Default: the built-in thesaurus.
	Lexicon []ProviderEntry `yaml:"lexicon"`

	// LLM backs the "llm" lexicon.
	LLM ProviderEntry `yaml:"llm"`
}

// ProviderEntry is the common configuration block shared by all provider types.
// The Name field is used to look up the constructor in the [Registry].
type ProviderEntry struct {
	// Name selects the registered provider implementation (e.g., "openai", "postgres").
	Name string `yaml:"name"`

	// APIKey is the authentication key for the provider's API if any.
	// ${VAR} references are expanded from the environment.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the provider's default API endpoint.
	// Leave empty to use the provider's built-in default.
	BaseURL string `yaml:"base_url"`

	// Model selects a specific model within the provider.
	Model string `yaml:"model"`

	// Options holds provider-specific configuration values not covered by the
	// standard fields above. Values may be strings, numbers, booleans, or nested maps.
	Options map[string]any `yaml:"options"`
}

// StorageConfig configures the Postgres store that backs the "postgres"
// lexicon and the persistent word-vector cache.
type StorageConfig struct {
	// PostgresDSN is the connection string. ${VAR} references are expanded.
	PostgresDSN string `yaml:"postgres_dsn"`

	// EmbeddingDimensions is the vector width of the word_vectors table.
	// It must match the primary embeddings provider. Default: 1024.
	EmbeddingDimensions int `yaml:"embedding_dimensions"`

	// CacheVectors writes remote embeddings through to Postgres.
	CacheVectors bool `yaml:"cache_vectors"`
}

// ResilienceConfig tunes the circuit breakers guarding providers. Zero
// values use the breaker defaults.
type ResilienceConfig struct {
	MaxFailures  int           `yaml:"max_failures"`
	ResetTimeout time.Duration `yaml:"reset_timeout"`
	HalfOpenMax  int           `yaml:"half_open_max"`
}

// ApplyDefaults fills unset server and storage fields. Humanizer parameters
// are defaulted by [HumanizerConfig.Params].
func (c *Config) ApplyDefaults() {
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = DefaultListenAddr
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = LogInfo
	}
	if c.Server.Variant == "" {
		c.Server.Variant = VariantFull
	}
	if c.Server.RequestTimeout <= 0 {
		c.Server.RequestTimeout = DefaultRequestTimeout
	}
	if c.Server.MaxBodyBytes <= 0 {
		c.Server.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.Storage.EmbeddingDimensions <= 0 {
		c.Storage.EmbeddingDimensions = DefaultEmbeddingDimensions
	}
	if c.Server.Variant == VariantFull {
		if len(c.Providers.Embeddings) == 0 {
			c.Providers.Embeddings = []ProviderEntry{{Name: "lexical"}}
		}
		if len(c.Providers.Lexicon) == 0 {
			c.Providers.Lexicon = []ProviderEntry{{Name: "builtin"}}
		}
	}
}

// Params converts the configured values into pipeline parameters, starting
// from [humanize.DefaultParams].
func (h HumanizerConfig) Params() humanize.Params {
	p := humanize.DefaultParams()
	setFloat(&p.SentenceProbability, h.SentenceProbability)
	setFloat(&p.TransitionProbability, h.TransitionProbability)
	setFloat(&p.Synonym.WordProbability, h.WordProbability)
	setFloat(&p.Synonym.Threshold, h.SimilarityThreshold)
	setInt(&p.Synonym.MinWordLength, h.MinWordLength)
	setInt(&p.Synonym.LengthTolerance, h.LengthTolerance)
	setInt(&p.MinTransitionWords, h.MinTransitionWords)
	if h.Seed != nil {
		seed := *h.Seed
		p.Seed = &seed
	}
	if len(h.StepOrder) > 0 {
		p.StepOrder = p.StepOrder[:0]
		for _, s := range h.StepOrder {
			p.StepOrder = append(p.StepOrder, humanize.Step(s))
		}
	}
	if len(h.Denylist) > 0 {
		p.Synonym.Denylist = append([]string(nil), h.Denylist...)
	}
	if len(h.EligibleTags) > 0 {
		p.Synonym.EligibleTags = append([]string(nil), h.EligibleTags...)
	}
	if len(h.Transitions) > 0 {
		p.Transitions = append([]string(nil), h.Transitions...)
	}
	if h.CollaboratorTimeout > 0 {
		p.CollaboratorTimeout = h.CollaboratorTimeout
	}
	if h.MaxConcurrentLookups > 0 {
		p.MaxConcurrentLookups = h.MaxConcurrentLookups
	}
	return p
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
