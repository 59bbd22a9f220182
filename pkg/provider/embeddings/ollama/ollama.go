// Package ollama provides an embeddings provider backed by a local Ollama server.
//
// It talks to Ollama's native /api/embed endpoint and works with models such
// as nomic-embed-text, mxbai-embed-large and all-minilm. Word-level similarity
// is latency sensitive, so the provider can ask Ollama to keep the model
// loaded between requests (WithKeepAlive).
//
//	p, err := ollama.New("", "nomic-embed-text") // http://localhost:11434
//	if err != nil {
//	    log.Fatal(err)
//	}
//	vecs, err := p.EmbedBatch(ctx, []string{"large", "big", "huge"})
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/MrWong99/humanizer/pkg/provider/embeddings"
)

// DefaultBaseURL is the default base URL for a locally running Ollama instance.
const DefaultBaseURL = "http://localhost:11434"

var (
	_ embeddings.Provider = (*Provider)(nil)
	_ embeddings.Pinger   = (*Provider)(nil)
)

// Provider implements embeddings.Provider using a local Ollama server.
//
// The vector length comes from WithDimensions, then a table of well-known
// models, and finally a one-off probe request on the first Dimensions call.
//
// Provider is safe for concurrent use.
type Provider struct {
	baseURL    string
	model      string
	keepAlive  string
	httpClient *http.Client

	mu         sync.Mutex
	dimensions int
}

type config struct {
	timeout    time.Duration
	dimensions int
	keepAlive  time.Duration
	client     *http.Client
}

// Option is a functional option for Provider.
type Option func(*config)

// WithTimeout sets a per-request HTTP timeout. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *config) { c.timeout = d }
}

// WithDimensions pre-sets the vector length and skips the probe request.
func WithDimensions(dims int) Option {
	return func(c *config) { c.dimensions = dims }
}

// WithKeepAlive asks Ollama to keep the model in memory for d after each
// request. Zero leaves the server default in place.
func WithKeepAlive(d time.Duration) Option {
	return func(c *config) { c.keepAlive = d }
}

// WithHTTPClient replaces the HTTP client. WithTimeout still applies to it.
func WithHTTPClient(client *http.Client) Option {
	return func(c *config) { c.client = client }
}

// New constructs an Ollama Provider. baseURL defaults to DefaultBaseURL; model
// must not be empty.
func New(baseURL string, model string, opts ...Option) (*Provider, error) {
	if model == "" {
		return nil, fmt.Errorf("ollama embeddings: model must not be empty")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	cfg := &config{}
	for _, o := range opts {
		o(cfg)
	}

	client := cfg.client
	if client == nil {
		client = &http.Client{}
	}
	if cfg.timeout > 0 {
		c := *client
		c.Timeout = cfg.timeout
		client = &c
	}

	p := &Provider{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: client,
		dimensions: cfg.dimensions,
	}
	if cfg.keepAlive > 0 {
		p.keepAlive = cfg.keepAlive.String()
	}
	if p.dimensions == 0 {
		p.dimensions = knownDimensions(model)
	}
	return p, nil
}

type embedRequest struct {
	Model     string   `json:"model"`
	Input     []string `json:"input"`
	Truncate  bool     `json:"truncate"`
	KeepAlive string   `json:"keep_alive,omitempty"`
}

type embedResponse struct {
	Model      string      `json:"model"`
	Embeddings [][]float32 `json:"embeddings"`
}

// Embed implements embeddings.Provider.
func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := p.embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("ollama embeddings: embed: %w", err)
	}
	return vecs[0], nil
}

// EmbedBatch implements embeddings.Provider. An empty texts slice returns
// (nil, nil) without a request.
func (p *Provider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	vecs, err := p.embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("ollama embeddings: embed batch: %w", err)
	}
	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("ollama embeddings: embed batch: expected %d embeddings, got %d", len(texts), len(vecs))
	}
	return vecs, nil
}

// Dimensions implements embeddings.Provider. For unknown models the first
// call probes the server; 0 is returned if the probe fails and the probe is
// retried on the next call.
func (p *Provider) Dimensions() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.dimensions != 0 {
		return p.dimensions
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if vecs, err := p.embed(ctx, []string{"probe"}); err == nil {
		p.dimensions = len(vecs[0])
	}
	return p.dimensions
}

// ModelID implements embeddings.Provider.
func (p *Provider) ModelID() string { return p.model }

// Ping implements embeddings.Pinger by querying the server version.
func (p *Provider) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/api/version", nil)
	if err != nil {
		return fmt.Errorf("ollama embeddings: ping: %w", err)
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ollama embeddings: ping: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama embeddings: ping: unexpected status %d", resp.StatusCode)
	}
	return nil
}

func (p *Provider) embed(ctx context.Context, texts []string) ([][]float32, error) {
	body, err := json.Marshal(embedRequest{
		Model:     p.model,
		Input:     texts,
		Truncate:  true,
		KeepAlive: p.keepAlive,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var result embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("empty embeddings in response")
	}
	return result.Embeddings, nil
}

// knownDimensions returns the output dimension of well-known embedding
// models, or 0 when the model must be probed.
func knownDimensions(model string) int {
	lower := strings.ToLower(model)
	switch {
	case strings.Contains(lower, "nomic-embed-text"):
		return 768
	case strings.Contains(lower, "mxbai-embed-large"):
		return 1024
	case strings.Contains(lower, "all-minilm"), strings.Contains(lower, "paraphrase-minilm"):
		return 384
	case strings.Contains(lower, "bge-m3"):
		return 1024
	default:
		return 0
	}
}
