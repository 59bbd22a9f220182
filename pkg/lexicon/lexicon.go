// Package lexicon defines the Lexicon interface for lexical-relation backends.
//
// A lexicon answers "which words can stand in for this word when it is used
// as this part of speech". Sources range from an embedded thesaurus to a
// WordNet-style Postgres database or an LLM. The humanizer treats every
// lexicon as a black box: a lookup miss is an empty result, not an error.
//
// Implementations must be safe for concurrent use.
package lexicon

import (
	"context"
	"strings"

	"github.com/MrWong99/humanizer/pkg/nlp"
)

// Lexicon is the abstraction over any synonym source.
type Lexicon interface {
	// Synonyms returns lemma forms attached to senses of word restricted to
	// pos. The result may contain multi-word lemmas and the word itself;
	// callers filter. A word the lexicon does not know yields an empty slice
	// and a nil error. An error is returned only when the backend fails or ctx
	// is cancelled.
	Synonyms(ctx context.Context, word string, pos nlp.POS) ([]string, error)
}

// Synset is a set of lemmas sharing one sense and one part of speech.
type Synset struct {
	POS    nlp.POS
	Lemmas []string
}

// Normalize lowercases a lemma, trims it and replaces WordNet-style
// underscores with spaces.
func Normalize(lemma string) string {
	return strings.ToLower(strings.TrimSpace(strings.ReplaceAll(lemma, "_", " ")))
}

// Dedupe returns lemmas with duplicates and word itself removed, preserving
// first-seen order. Comparison is case-insensitive.
func Dedupe(word string, lemmas []string) []string {
	self := strings.ToLower(word)
	seen := make(map[string]bool, len(lemmas))
	out := make([]string, 0, len(lemmas))
	for _, l := range lemmas {
		n := Normalize(l)
		if n == "" || n == self || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
