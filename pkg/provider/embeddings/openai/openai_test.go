package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

// fakeEmbeddingsServer answers POST /embeddings with one vector per input.
// The vector for input i is [len(input), i]. Results are returned in reverse
// order to exercise index mapping.
func fakeEmbeddingsServer(t *testing.T, requests *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			http.NotFound(w, r)
			return
		}
		requests.Add(1)

		var req struct {
			Model      string          `json:"model"`
			Input      json.RawMessage `json:"input"`
			Dimensions int             `json:"dimensions"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		var inputs []string
		if err := json.Unmarshal(req.Input, &inputs); err != nil {
			var single string
			if err := json.Unmarshal(req.Input, &single); err != nil {
				http.Error(w, "bad input", http.StatusBadRequest)
				return
			}
			inputs = []string{single}
		}

		type datum struct {
			Object    string    `json:"object"`
			Index     int       `json:"index"`
			Embedding []float64 `json:"embedding"`
		}
		data := make([]datum, 0, len(inputs))
		for i := len(inputs) - 1; i >= 0; i-- {
			data = append(data, datum{
				Object:    "embedding",
				Index:     i,
				Embedding: []float64{float64(len(inputs[i])), float64(i)},
			})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   data,
			"model":  req.Model,
			"usage":  map[string]int{"prompt_tokens": 1, "total_tokens": 1},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestEmbed(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32
	srv := fakeEmbeddingsServer(t, &requests)
	p, err := New("sk-test", "", WithBaseURL(srv.URL+"/"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	vec, err := p.Embed(context.Background(), "large")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vec) != 2 || vec[0] != 5 {
		t.Errorf("Embed = %v, want [5 0]", vec)
	}
}

func TestEmbedBatchMapsIndicesAndChunks(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32
	srv := fakeEmbeddingsServer(t, &requests)
	p, err := New("sk-test", "text-embedding-3-small", WithBaseURL(srv.URL+"/"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	texts := make([]string, MaxBatch+3)
	for i := range texts {
		texts[i] = "w"
	}
	texts[0] = "first"
	texts[MaxBatch+1] = "second-chunk"

	vecs, err := p.EmbedBatch(context.Background(), texts)
	if err != nil {
		t.Fatalf("EmbedBatch: %v", err)
	}
	if len(vecs) != len(texts) {
		t.Fatalf("EmbedBatch returned %d vectors, want %d", len(vecs), len(texts))
	}
	if vecs[0][0] != 5 || vecs[0][1] != 0 {
		t.Errorf("vecs[0] = %v, want [5 0]", vecs[0])
	}
	// Index 1 within the second request.
	if vecs[MaxBatch+1][0] != 12 || vecs[MaxBatch+1][1] != 1 {
		t.Errorf("vecs[MaxBatch+1] = %v, want [12 1]", vecs[MaxBatch+1])
	}
	if got := requests.Load(); got != 2 {
		t.Errorf("server saw %d requests, want 2", got)
	}
}

func TestEmbedBatchEmpty(t *testing.T) {
	t.Parallel()

	p, err := New("sk-test", "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	vecs, err := p.EmbedBatch(context.Background(), nil)
	if err != nil || vecs != nil {
		t.Errorf("EmbedBatch(nil) = (%v, %v), want (nil, nil)", vecs, err)
	}
}

func TestEmbedServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"bad"}}`, http.StatusBadRequest)
	}))
	t.Cleanup(srv.Close)

	p, err := New("sk-test", "", WithBaseURL(srv.URL+"/"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := p.Embed(context.Background(), "word"); err == nil {
		t.Fatal("expected error from failing server")
	}
}

func TestDimensions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		model string
		opts  []Option
		want  int
	}{
		{"text-embedding-3-small", nil, 1536},
		{"text-embedding-3-large", nil, 3072},
		{"text-embedding-ada-002", nil, 1536},
		{"some-future-model", nil, 1536},
		{"text-embedding-3-large", []Option{WithDimensions(256)}, 256},
	}
	for _, tc := range tests {
		p, err := New("sk-test", tc.model, tc.opts...)
		if err != nil {
			t.Fatalf("New(%q): %v", tc.model, err)
		}
		if got := p.Dimensions(); got != tc.want {
			t.Errorf("%s: Dimensions() = %d, want %d", tc.model, got, tc.want)
		}
		if got := p.ModelID(); got != tc.model {
			t.Errorf("ModelID() = %q, want %q", got, tc.model)
		}
	}
}

func TestNewValidation(t *testing.T) {
	t.Parallel()

	if _, err := New("", "text-embedding-3-small"); err == nil {
		t.Error("expected error for empty API key")
	}
	if _, err := New("sk-test", "", WithDimensions(-1)); err == nil {
		t.Error("expected error for negative dimensions")
	}
	p, err := New("sk-test", "", WithOrganization("org-123"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p.ModelID() != DefaultModel {
		t.Errorf("ModelID() = %q, want %q", p.ModelID(), DefaultModel)
	}
}
