// Package nlp defines the collaborator interfaces the humanizer pipeline uses
// for tokenization, part-of-speech tagging and sentence segmentation.
//
// The interfaces are intentionally narrow so that a heuristic in-process
// implementation (see the tokenize, postag and segment sub-packages) can be
// swapped for a remote tagging service without touching the pipeline.
package nlp

import (
	"context"
	"strings"
)

// Token is a single word or punctuation mark together with its Penn Treebank
// part-of-speech tag (e.g. "NN", "JJ", "RB", "VBD", ".").
type Token struct {
	Text string
	Tag  string
}

// Tokenizer splits a sentence into word and punctuation tokens.
//
// Implementations must be safe for concurrent use.
type Tokenizer interface {
	Tokenize(text string) []string
}

// Tagger assigns a part-of-speech tag to every word of a tokenized sentence.
//
// The returned slice has the same length as words and the i-th element
// corresponds to words[i]. Implementations backed by a remote service should
// honour ctx cancellation. Implementations must be safe for concurrent use.
type Tagger interface {
	Tag(ctx context.Context, words []string) ([]Token, error)
}

// Segmenter splits a document into sentences. The returned sentences are
// trimmed and never empty. Implementations must be safe for concurrent use.
type Segmenter interface {
	Split(text string) []string
}

// Penn Treebank tag families used by the synonym substituter.
const (
	TagAdjective            = "JJ"
	TagAdjectiveComparative = "JJR"
	TagAdjectiveSuperlative = "JJS"
	TagNoun                 = "NN"
	TagNounPlural           = "NNS"
	TagProperNoun           = "NNP"
	TagProperNounPlural     = "NNPS"
	TagAdverb               = "RB"
	TagAdverbComparative    = "RBR"
	TagAdverbSuperlative    = "RBS"
)

// POS is the coarse word class used for lexicon lookups.
type POS string

const (
	POSNoun      POS = "noun"
	POSAdjective POS = "adjective"
	POSAdverb    POS = "adverb"
	POSVerb      POS = "verb"
	POSOther     POS = ""
)

// Coarse maps a Penn Treebank tag to the lexicon word class. Proper nouns and
// all tags outside the noun, adjective, adverb and verb families map to
// POSOther.
func Coarse(tag string) POS {
	switch {
	case strings.HasPrefix(tag, "NNP"):
		return POSOther
	case strings.HasPrefix(tag, "NN"):
		return POSNoun
	case strings.HasPrefix(tag, "JJ"):
		return POSAdjective
	case strings.HasPrefix(tag, "RB"):
		return POSAdverb
	case strings.HasPrefix(tag, "VB"):
		return POSVerb
	default:
		return POSOther
	}
}

// ParsePOS converts a lexicon word-class name into a POS. Both the long form
// ("noun") and the WordNet single-letter form ("n", "a", "s", "r", "v") are
// accepted. Unknown names yield POSOther.
func ParsePOS(s string) POS {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "noun", "n":
		return POSNoun
	case "adjective", "adj", "a", "s":
		return POSAdjective
	case "adverb", "adv", "r":
		return POSAdverb
	case "verb", "v":
		return POSVerb
	default:
		return POSOther
	}
}

// abbreviations lists lowercase words (without the trailing period) that are
// conventionally followed by a period that does not end the sentence.
var abbreviations = map[string]bool{
	"mr": true, "mrs": true, "ms": true, "dr": true, "prof": true, "sr": true,
	"jr": true, "st": true, "mt": true, "vs": true, "etc": true, "eg": true,
	"ie": true, "inc": true, "ltd": true, "co": true, "corp": true, "dept": true,
	"fig": true, "figs": true, "vol": true, "vols": true, "pp": true,
	"approx": true, "est": true, "cf": true, "al": true, "gen": true, "col": true,
	"capt": true, "lt": true, "sgt": true, "rev": true, "hon": true, "jan": true,
	"feb": true, "mar": true, "apr": true, "jun": true, "jul": true, "aug": true,
	"sep": true, "sept": true, "oct": true, "nov": true, "dec": true, "ph": true,
	"e.g": true, "i.e": true, "u.s": true, "u.k": true, "a.m": true, "p.m": true,
}

// IsAbbreviation reports whether word (with or without its trailing period)
// is a known abbreviation or a single-letter initial such as "J.".
func IsAbbreviation(word string) bool {
	w := strings.ToLower(strings.TrimSuffix(word, "."))
	if w == "" {
		return false
	}
	if len([]rune(w)) == 1 {
		return true
	}
	return abbreviations[w]
}
