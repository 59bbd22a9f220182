package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/MrWong99/humanizer/pkg/provider/llm/anyllm"
)

// Provider kinds used as keys of [ValidProviderNames] and in error messages.
const (
	KindEmbeddings = "embeddings"
	KindLexicon    = "lexicon"
	KindLLM        = "llm"
)

// ValidProviderNames lists known provider names per provider kind.
// Used by [Validate] to warn about unrecognised provider names.
var ValidProviderNames = map[string][]string{
	KindEmbeddings: {"lexical", "openai", "ollama"},
	KindLexicon:    {"builtin", "yaml", "postgres", "llm"},
	KindLLM:        llmNames(),
}

func llmNames() []string {
	names := slices.Clone(anyllm.Backends)
	if !slices.Contains(names, "openai") {
		names = append(names, "openai")
	}
	return names
}

// Load reads the YAML configuration file at path and returns a validated
// [Config] with defaults applied.
// It is a convenience wrapper around [LoadFromReader].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r, expands ${VAR} references in
// secrets, applies defaults and validates the result. An empty document
// yields the default configuration.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	expandEnv(cfg)
	cfg.ApplyDefaults()
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

func expandEnv(cfg *Config) {
	cfg.Storage.PostgresDSN = os.ExpandEnv(cfg.Storage.PostgresDSN)
	cfg.Providers.LLM.APIKey = os.ExpandEnv(cfg.Providers.LLM.APIKey)
	for i := range cfg.Providers.Embeddings {
		cfg.Providers.Embeddings[i].APIKey = os.ExpandEnv(cfg.Providers.Embeddings[i].APIKey)
	}
	for i := range cfg.Providers.Lexicon {
		cfg.Providers.Lexicon[i].APIKey = os.ExpandEnv(cfg.Providers.Lexicon[i].APIKey)
	}
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	// Server
	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}
	if cfg.Server.Variant != "" && !cfg.Server.Variant.IsValid() {
		errs = append(errs, fmt.Errorf("server.variant %q is invalid; valid values: full, lite", cfg.Server.Variant))
	}
	if cfg.Server.RequestTimeout < 0 {
		errs = append(errs, fmt.Errorf("server.request_timeout %v must not be negative", cfg.Server.RequestTimeout))
	}
	if tls := cfg.Server.TLS; tls != nil && (tls.CertFile == "" || tls.KeyFile == "") {
		errs = append(errs, errors.New("server.tls requires both cert_file and key_file"))
	}

	// Humanizer
	if err := cfg.Humanizer.Params().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("humanizer: %w", err))
	}
	if cfg.Humanizer.CollaboratorTimeout < 0 {
		errs = append(errs, fmt.Errorf("humanizer.collaborator_timeout %v must not be negative", cfg.Humanizer.CollaboratorTimeout))
	}

	// Providers
	for i, e := range cfg.Providers.Embeddings {
		prefix := fmt.Sprintf("providers.embeddings[%d]", i)
		if e.Name == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
			continue
		}
		validateProviderName(KindEmbeddings, e.Name)
	}
	for i, e := range cfg.Providers.Lexicon {
		prefix := fmt.Sprintf("providers.lexicon[%d]", i)
		switch e.Name {
		case "":
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
		case "postgres":
			if cfg.Storage.PostgresDSN == "" {
				errs = append(errs, fmt.Errorf("%s: lexicon %q requires storage.postgres_dsn", prefix, e.Name))
			}
		case "yaml":
			if path, _ := e.Options["path"].(string); path == "" {
				errs = append(errs, fmt.Errorf("%s: lexicon %q requires options.path", prefix, e.Name))
			}
		case "llm":
			if cfg.Providers.LLM.Name == "" {
				errs = append(errs, fmt.Errorf("%s: lexicon %q requires providers.llm", prefix, e.Name))
			}
		default:
			validateProviderName(KindLexicon, e.Name)
		}
	}
	validateProviderName(KindLLM, cfg.Providers.LLM.Name)

	if cfg.Server.Variant == VariantLite && (len(cfg.Providers.Embeddings) > 0 || len(cfg.Providers.Lexicon) > 0) {
		slog.Warn("server.variant is lite; configured synonym providers will not be used")
	}

	// Storage
	if cfg.Storage.CacheVectors && cfg.Storage.PostgresDSN == "" {
		slog.Warn("storage.cache_vectors is set but storage.postgres_dsn is empty; vectors will not be cached")
	}

	// Resilience
	if cfg.Resilience.MaxFailures < 0 {
		errs = append(errs, fmt.Errorf("resilience.max_failures %d must not be negative", cfg.Resilience.MaxFailures))
	}
	if cfg.Resilience.ResetTimeout < 0 {
		errs = append(errs, fmt.Errorf("resilience.reset_timeout %v must not be negative", cfg.Resilience.ResetTimeout))
	}
	if cfg.Resilience.HalfOpenMax < 0 {
		errs = append(errs, fmt.Errorf("resilience.half_open_max %d must not be negative", cfg.Resilience.HalfOpenMax))
	}

	return errors.Join(errs...)
}

// validateProviderName logs a warning if name is non-empty and not found in
// the [ValidProviderNames] list for the given kind.
func validateProviderName(kind, name string) {
	if name == "" {
		return
	}
	known, ok := ValidProviderNames[kind]
	if !ok {
		return
	}
	if slices.Contains(known, name) {
		return
	}
	slog.Warn("unknown provider name; may be a typo or a custom registration",
		"kind", kind,
		"name", name,
		"known", known,
	)
}
