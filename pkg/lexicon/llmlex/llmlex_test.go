package llmlex_test

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/MrWong99/humanizer/pkg/lexicon/llmlex"
	"github.com/MrWong99/humanizer/pkg/nlp"
	"github.com/MrWong99/humanizer/pkg/provider/llm"
	"github.com/MrWong99/humanizer/pkg/provider/llm/mock"
)

func reply(content string) *mock.Provider {
	return &mock.Provider{CompleteResponse: &llm.CompletionResponse{Content: content}}
}

func TestSynonyms_ParsesReply(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{"plain json", `{"synonyms": ["big", "huge", "Large", "big"]}`, []string{"big", "huge"}},
		{"fenced json", "```json\n{\"synonyms\": [\"vast\"]}\n```", []string{"vast"}},
		{"phrases dropped", `{"synonyms": ["a lot of", "ample"]}`, []string{"ample"}},
		{"prose", "Sure! Here are some synonyms: big, huge.", []string{}},
		{"empty list", `{"synonyms": []}`, []string{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			lex := llmlex.New(reply(tc.content))
			got, err := lex.Synonyms(context.Background(), "large", nlp.POSAdjective)
			if err != nil {
				t.Fatalf("Synonyms: %v", err)
			}
			if !slices.Equal(got, tc.want) {
				t.Errorf("Synonyms = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSynonyms_RequestShape(t *testing.T) {
	t.Parallel()

	p := reply(`{"synonyms": []}`)
	lex := llmlex.New(p, llmlex.WithTemperature(0.5), llmlex.WithMaxSynonyms(3))
	if _, err := lex.Synonyms(context.Background(), "Quickly", nlp.POSAdverb); err != nil {
		t.Fatalf("Synonyms: %v", err)
	}
	if len(p.CompleteCalls) != 1 {
		t.Fatalf("got %d calls, want 1", len(p.CompleteCalls))
	}
	req := p.CompleteCalls[0].Req
	if !req.JSON || req.Temperature != 0.5 {
		t.Errorf("JSON=%v Temperature=%v", req.JSON, req.Temperature)
	}
	if !strings.Contains(req.SystemPrompt, "at most 3 synonyms") {
		t.Errorf("system prompt does not carry the limit: %q", req.SystemPrompt)
	}
	if msg := req.Messages[0].Content; !strings.Contains(msg, "quickly") || !strings.Contains(msg, "adverb") {
		t.Errorf("user message = %q", msg)
	}
}

func TestSynonyms_MaxSynonyms(t *testing.T) {
	t.Parallel()

	lex := llmlex.New(reply(`{"synonyms": ["a", "b", "c"]}`), llmlex.WithMaxSynonyms(2))
	got, _ := lex.Synonyms(context.Background(), "x", nlp.POSNoun)
	if len(got) != 2 {
		t.Errorf("got %d synonyms, want 2", len(got))
	}
}

func TestSynonyms_RecomputedPerCall(t *testing.T) {
	t.Parallel()

	p := reply(`{"synonyms": ["big"]}`)
	lex := llmlex.New(p)
	for range 2 {
		if _, err := lex.Synonyms(context.Background(), "large", nlp.POSAdjective); err != nil {
			t.Fatalf("Synonyms: %v", err)
		}
	}
	if p.Calls() != 2 {
		t.Errorf("LLM called %d times, want 2 without a cache", p.Calls())
	}
}

func TestSynonyms_Cache(t *testing.T) {
	t.Parallel()

	p := reply(`{"synonyms": ["big"]}`)
	lex := llmlex.New(p, llmlex.WithCacheSize(16))
	for range 3 {
		if _, err := lex.Synonyms(context.Background(), "large", nlp.POSAdjective); err != nil {
			t.Fatalf("Synonyms: %v", err)
		}
	}
	if _, err := lex.Synonyms(context.Background(), "large", nlp.POSNoun); err != nil {
		t.Fatalf("Synonyms: %v", err)
	}
	if p.Calls() != 2 {
		t.Errorf("LLM called %d times, want 2 (one per word and part of speech)", p.Calls())
	}
}

func TestSynonyms_Errors(t *testing.T) {
	t.Parallel()

	p := &mock.Provider{CompleteErr: errors.New("rate limited")}
	lex := llmlex.New(p)
	if _, err := lex.Synonyms(context.Background(), "large", nlp.POSAdjective); err == nil {
		t.Fatal("expected transport error to propagate")
	}

	got, err := lex.Synonyms(context.Background(), "Paris", nlp.POSOther)
	if err != nil || len(got) != 0 {
		t.Errorf("POSOther lookup = (%v, %v), want empty without a call", got, err)
	}
	if p.Calls() != 1 {
		t.Errorf("LLM called %d times, want 1", p.Calls())
	}
}
