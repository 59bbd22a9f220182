// Package llmlex implements a [lexicon.Lexicon] that asks a language model
// for synonyms.
//
// The model is sent one word and its part of speech and instructed to reply
// with a JSON object listing single-word substitutes. Every lookup asks the
// model again, so candidate sets are recomputed per word occurrence; a
// per-(word, part of speech) cache is available through [WithCacheSize]. An unparseable reply is treated as "no synonyms"
// rather than an error so that a chatty model degrades the humanizer instead
// of failing it; transport errors and context cancellation are returned.
package llmlex

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/MrWong99/humanizer/pkg/lexicon"
	"github.com/MrWong99/humanizer/pkg/nlp"
	"github.com/MrWong99/humanizer/pkg/provider/llm"
)

const (
	defaultTemperature = 0.2
	defaultMaxSynonyms = 8
)

const systemPrompt = `You are a thesaurus for plain English prose.

Given one word and its part of speech, list common single-word synonyms that could replace it in most sentences without changing the meaning.

Rules:
- Use the same part of speech and the same inflection (plural nouns stay plural, comparatives stay comparative).
- Single words only. No phrases, no hyphenated compounds, no proper nouns.
- Prefer everyday vocabulary over rare or archaic words.
- Return at most %d synonyms, best first. Return an empty list if there are none.

Respond with ONLY a JSON object in this exact format (no markdown, no prose):
{"synonyms": ["<word>", "<word>"]}`

type llmResponse struct {
	Synonyms []string `json:"synonyms"`
}

type cacheKey struct {
	word string
	pos  nlp.POS
}

// Option is a functional option for configuring a [Lexicon].
type Option func(*Lexicon)

// WithTemperature sets the LLM sampling temperature. Default: 0.2.
func WithTemperature(temp float64) Option {
	return func(l *Lexicon) { l.temperature = temp }
}

// WithMaxSynonyms caps the number of synonyms requested. Default: 8.
func WithMaxSynonyms(n int) Option {
	return func(l *Lexicon) { l.maxSynonyms = n }
}

// WithCacheSize turns on a cache of up to n lookups, cleared when it fills
// up. Cached answers are reused across calls. Default: 0 (no cache).
func WithCacheSize(n int) Option {
	return func(l *Lexicon) { l.cacheSize = n }
}

var _ lexicon.Lexicon = (*Lexicon)(nil)

// Lexicon is an LLM-backed lexicon.Lexicon. It is safe for concurrent use.
type Lexicon struct {
	llm         llm.Provider
	temperature float64
	maxSynonyms int
	cacheSize   int

	mu    sync.Mutex
	cache map[cacheKey][]string
}

// New returns a Lexicon backed by provider.
func New(provider llm.Provider, opts ...Option) *Lexicon {
	l := &Lexicon{
		llm:         provider,
		temperature: defaultTemperature,
		maxSynonyms: defaultMaxSynonyms,
	}
	for _, o := range opts {
		o(l)
	}
	l.cache = make(map[cacheKey][]string)
	return l
}

// Synonyms implements lexicon.Lexicon.
func (l *Lexicon) Synonyms(ctx context.Context, word string, pos nlp.POS) ([]string, error) {
	key := cacheKey{word: lexicon.Normalize(word), pos: pos}
	if key.word == "" || pos == nlp.POSOther {
		return []string{}, nil
	}
	if cached, ok := l.lookup(key); ok {
		return cached, nil
	}

	resp, err := l.llm.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: fmt.Sprintf(systemPrompt, l.maxSynonyms),
		Temperature:  l.temperature,
		JSON:         true,
		Messages: []llm.Message{
			{Role: "user", Content: fmt.Sprintf("Word: %s\nPart of speech: %s", key.word, pos)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("llm lexicon: complete: %w", err)
	}

	var synonyms []string
	if resp != nil {
		synonyms = parseResponse(resp.Content, key.word, l.maxSynonyms)
	}
	l.store(key, synonyms)
	return synonyms, nil
}

func (l *Lexicon) lookup(key cacheKey) ([]string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	v, ok := l.cache[key]
	return v, ok
}

func (l *Lexicon) store(key cacheKey, synonyms []string) {
	if l.cacheSize <= 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.cache) >= l.cacheSize {
		clear(l.cache)
	}
	l.cache[key] = synonyms
}

// parseResponse extracts single-word synonyms from the model output. It
// returns an empty slice for unparseable output.
func parseResponse(content, word string, limit int) []string {
	var r llmResponse
	if err := json.Unmarshal([]byte(stripMarkdown(content)), &r); err != nil {
		return []string{}
	}
	out := make([]string, 0, len(r.Synonyms))
	for _, s := range lexicon.Dedupe(word, r.Synonyms) {
		if strings.ContainsAny(s, " \t") {
			continue
		}
		out = append(out, s)
		if len(out) == limit {
			break
		}
	}
	return out
}

// stripMarkdown removes optional markdown code fences (```json ... ```) that
// some models wrap around JSON output.
func stripMarkdown(s string) string {
	s = strings.TrimSpace(s)
	for _, prefix := range []string{"```json", "```"} {
		if after, ok := strings.CutPrefix(s, prefix); ok {
			s = after
			break
		}
	}
	if before, ok := strings.CutSuffix(s, "```"); ok {
		s = before
	}
	return strings.TrimSpace(s)
}
