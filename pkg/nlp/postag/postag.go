// Package postag implements a heuristic Penn Treebank part-of-speech tagger.
//
// Tagging runs in two passes. The baseline pass looks each word up in an
// embedded lexicon of closed-class and high-frequency words and falls back to
// suffix heuristics. The context pass then corrects common misreadings using
// the neighbouring tags ("the run" is a noun, "to run" a verb).
//
// The tagger is deterministic and needs no model files. It is accurate enough
// to keep verbs, proper nouns and plurals away from synonym substitution; a
// statistical tagger can replace it through the nlp.Tagger interface.
package postag

import (
	"context"
	_ "embed"
	"strings"
	"unicode"

	"github.com/MrWong99/humanizer/pkg/nlp"
)

//go:embed lexicon.txt
var lexiconData string

// Tagger is a lexicon and suffix-rule nlp.Tagger. Create one with New; a
// Tagger is immutable and safe for concurrent use.
type Tagger struct {
	lexicon map[string]string
}

var _ nlp.Tagger = (*Tagger)(nil)

// Option configures a Tagger.
type Option func(*Tagger)

// WithEntries adds or overrides lexicon entries (lowercase word → tag).
func WithEntries(entries map[string]string) Option {
	return func(t *Tagger) {
		for w, tag := range entries {
			t.lexicon[strings.ToLower(w)] = tag
		}
	}
}

// New returns a Tagger loaded with the embedded lexicon.
func New(opts ...Option) *Tagger {
	t := &Tagger{lexicon: parseLexicon(lexiconData)}
	for _, o := range opts {
		o(t)
	}
	return t
}

func parseLexicon(data string) map[string]string {
	lex := make(map[string]string)
	for line := range strings.Lines(data) {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		tag := fields[0]
		for _, w := range fields[1:] {
			// First assignment wins so earlier, closed-class lines take
			// precedence over later open-class ones.
			if _, ok := lex[w]; !ok {
				lex[w] = tag
			}
		}
	}
	return lex
}

// Tag implements nlp.Tagger. It never fails; the error is always nil unless
// ctx is already done.
func (t *Tagger) Tag(ctx context.Context, words []string) ([]nlp.Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tags := make([]string, len(words))
	for i := range words {
		tags[i] = t.baseline(words, i)
	}
	t.reinforce(words, tags)

	out := make([]nlp.Token, len(words))
	for i, w := range words {
		out[i] = nlp.Token{Text: w, Tag: tags[i]}
	}
	return out, nil
}

func (t *Tagger) baseline(words []string, i int) string {
	w := words[i]
	if tag, ok := punctTag(w); ok {
		return tag
	}
	if isNumber(w) {
		return "CD"
	}
	if tag, ok := cliticTag(words, i); ok {
		return tag
	}

	lower := strings.ToLower(w)
	if tag, ok := t.lexicon[lower]; ok {
		return tag
	}

	if startsUpper(w) && !sentenceInitial(words, i) {
		if isAllUpper(w) || !strings.HasSuffix(lower, "s") {
			return nlp.TagProperNoun
		}
		return nlp.TagProperNounPlural
	}
	return suffixTag(lower)
}

// reinforce applies contextual corrections in place.
func (t *Tagger) reinforce(words, tags []string) {
	for i := 1; i < len(tags); i++ {
		prev := tags[i-1]
		cur := tags[i]
		_, known := t.lexicon[strings.ToLower(words[i])]

		switch {
		// "to run", "can run": the infinitive after TO or a modal.
		case (prev == "TO" || prev == "MD") && (cur == "NN" || cur == "VBP" || cur == "JJ" && !known):
			tags[i] = "VB"
		// "the run", "a fast attack": determiners and modifiers take nouns.
		case (prev == "DT" || prev == "PRP$" || strings.HasPrefix(prev, "JJ")) && (cur == "VB" || cur == "VBP"):
			tags[i] = nlp.TagNoun
		// "she walks", "they walk": a verb follows a subject pronoun.
		case prev == "PRP" && cur == nlp.TagNounPlural && !known:
			tags[i] = "VBZ"
		case prev == "PRP" && cur == nlp.TagNoun && !known:
			tags[i] = "VBP"
		// "has finished", "was taken": participle after have or be.
		case cur == "VBD" && isAuxiliary(words[i-1]):
			tags[i] = "VBN"
		}
	}
}

func punctTag(w string) (string, bool) {
	switch w {
	case ".", "!", "?", "...":
		return ".", true
	case ",":
		return ",", true
	case ":", ";", "-", "--", "—":
		return ":", true
	case "(", "[", "{":
		return "-LRB-", true
	case ")", "]", "}":
		return "-RRB-", true
	case `"`, "“", "'", "‘":
		return "``", true
	case "”", "’":
		return "''", true
	case "$", "€", "£":
		return "$", true
	case "%", "&", "#", "@":
		return "SYM", true
	}
	for _, r := range w {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return "", false
		}
	}
	return "SYM", true
}

func cliticTag(words []string, i int) (string, bool) {
	switch strings.ToLower(strings.ReplaceAll(words[i], "’", "'")) {
	case "n't":
		return "RB", true
	case "'s":
		if i > 0 && isPronoun(words[i-1]) {
			return "VBZ", true
		}
		return "POS", true
	case "'re", "'ve", "'m":
		return "VBP", true
	case "'ll", "'d":
		return "MD", true
	}
	return "", false
}

func suffixTag(w string) string {
	switch {
	case strings.HasSuffix(w, "ly"):
		return nlp.TagAdverb
	case strings.HasSuffix(w, "ing"):
		return "VBG"
	case strings.HasSuffix(w, "ed"):
		return "VBD"
	case hasAnySuffix(w, "ness", "tion", "sion", "ment", "ity", "ance", "ence", "ism", "ship", "hood", "dom", "ist", "er", "or", "ure", "age"):
		return nlp.TagNoun
	case hasAnySuffix(w, "ful", "less", "ous", "ive", "able", "ible", "al", "ic", "ish", "ary", "ent", "ant", "ian"):
		return nlp.TagAdjective
	case strings.HasSuffix(w, "est") && len(w) > 5:
		return nlp.TagAdjectiveSuperlative
	case strings.HasSuffix(w, "s") && !hasAnySuffix(w, "ss", "us", "is", "ous"):
		return nlp.TagNounPlural
	case strings.HasSuffix(w, "ize") || strings.HasSuffix(w, "ise") || strings.HasSuffix(w, "ate") || strings.HasSuffix(w, "ify"):
		return "VB"
	default:
		return nlp.TagNoun
	}
}

func hasAnySuffix(w string, suffixes ...string) bool {
	for _, s := range suffixes {
		if strings.HasSuffix(w, s) {
			return true
		}
	}
	return false
}

func isNumber(w string) bool {
	digits := 0
	for _, r := range w {
		switch {
		case unicode.IsDigit(r):
			digits++
		case r == '.' || r == ',' || r == '-' || r == '/':
		default:
			return false
		}
	}
	return digits > 0
}

func startsUpper(w string) bool {
	for _, r := range w {
		return unicode.IsUpper(r)
	}
	return false
}

func isAllUpper(w string) bool {
	letters := 0
	for _, r := range w {
		if unicode.IsLetter(r) {
			if !unicode.IsUpper(r) {
				return false
			}
			letters++
		}
	}
	return letters > 1
}

// sentenceInitial reports whether words[i] is the first word of the sentence,
// ignoring leading quotes and brackets.
func sentenceInitial(words []string, i int) bool {
	for j := 0; j < i; j++ {
		if _, ok := punctTag(words[j]); !ok {
			return false
		}
	}
	return true
}

func isPronoun(w string) bool {
	switch strings.ToLower(w) {
	case "it", "he", "she", "that", "what", "there", "here", "who", "where", "let":
		return true
	}
	return false
}

func isAuxiliary(w string) bool {
	switch strings.ToLower(w) {
	case "has", "have", "had", "having", "is", "are", "was", "were", "be", "been", "being", "am", "get", "got":
		return true
	}
	return false
}
