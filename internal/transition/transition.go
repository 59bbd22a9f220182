// Package transition prefixes sentences with academic discourse markers
// ("Moreover,", "Therefore,", ...).
//
// A marker is only ever inserted on a non-initial sentence that starts with
// an uppercase letter, does not start with a quotation mark, is longer than a
// minimum word count and does not open with a pronoun, determiner or existing
// connective. When a marker is inserted the sentence's first letter is
// lowercased, unless the first word is an acronym.
package transition

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultMarkers is the built-in marker vocabulary.
var DefaultMarkers = []string{
	"Moreover,", "Additionally,", "Furthermore,", "Hence,", "Therefore,",
	"Consequently,", "Nonetheless,", "Nevertheless,", "Subsequently,",
	"Indeed,", "In fact,", "Notably,", "Clearly,", "Evidently,",
	"Undoubtedly,", "However,", "Meanwhile,",
}

// DefaultMinWords is the default word-count floor. A sentence must have more
// words than this to receive a marker.
const DefaultMinWords = 3

// disqualifying lists lowercase leading words that never receive a marker.
var disqualifying = []string{
	// pronouns
	"i", "you", "he", "she", "it", "we", "they", "me", "him", "her", "us", "them",
	// demonstratives and possessive determiners
	"this", "that", "these", "those", "there", "here",
	"my", "your", "his", "its", "our", "their",
	// connectives that already link to the previous sentence
	"and", "but", "or", "so", "yet", "also", "then", "thus", "because", "still",
	"besides", "instead", "finally", "first", "second", "lastly", "similarly",
}

// Rand is the subset of *rand.Rand used for insertion decisions.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

// Inserter decides whether and which marker to prefix. It is immutable after
// construction and safe for concurrent use; randomness comes from the Rand
// passed to each call.
type Inserter struct {
	markers     []string
	probability float64
	minWords    int
	skip        map[string]bool

	// leads holds the lowercased markers without their trailing comma.
	leads []string
}

// Option configures an Inserter.
type Option func(*Inserter)

// WithMarkers replaces the marker vocabulary. An empty slice is ignored.
func WithMarkers(markers []string) Option {
	return func(in *Inserter) {
		if len(markers) > 0 {
			in.markers = append([]string(nil), markers...)
		}
	}
}

// WithMinWords sets the word-count floor.
func WithMinWords(n int) Option {
	return func(in *Inserter) { in.minWords = n }
}

// New returns an Inserter that inserts a marker with the given probability.
func New(probability float64, opts ...Option) *Inserter {
	in := &Inserter{
		markers:     DefaultMarkers,
		probability: probability,
		minWords:    DefaultMinWords,
	}
	for _, o := range opts {
		o(in)
	}

	in.skip = make(map[string]bool, len(disqualifying))
	for _, w := range disqualifying {
		in.skip[w] = true
	}
	for _, m := range in.markers {
		in.leads = append(in.leads, strings.ToLower(strings.TrimRight(m, ",;: ")))
	}
	return in
}

// Markers returns a copy of the marker vocabulary.
func (in *Inserter) Markers() []string {
	return append([]string(nil), in.markers...)
}

// Eligible reports whether sentence at the given ordinal may receive a marker,
// ignoring probability.
func (in *Inserter) Eligible(sentence string, ordinal int) bool {
	if ordinal <= 0 || len(in.markers) == 0 {
		return false
	}
	first, _ := utf8.DecodeRuneInString(sentence)
	if !unicode.IsUpper(first) {
		// Also rules out leading quotes and brackets.
		return false
	}
	if len(strings.Fields(sentence)) <= in.minWords {
		return false
	}
	if in.skip[firstWord(sentence)] {
		return false
	}
	lower := strings.ToLower(sentence)
	for _, lead := range in.leads {
		if rest, ok := strings.CutPrefix(lower, lead); ok && !startsWithLetter(rest) {
			return false
		}
	}
	return true
}

func startsWithLetter(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsLetter(r)
}

// Insert returns sentence, possibly prefixed with a marker, and whether a
// marker was inserted. The sentence at ordinal 0 is never changed, whatever
// the probability.
func (in *Inserter) Insert(sentence string, ordinal int, rng Rand) (string, bool) {
	if in.probability <= 0 || !in.Eligible(sentence, ordinal) {
		return sentence, false
	}
	if rng.Float64() >= in.probability {
		return sentence, false
	}
	marker := in.markers[rng.IntN(len(in.markers))]
	return marker + " " + lowerFirst(sentence), true
}

// firstWord returns the lowercased leading run of letters of s.
func firstWord(s string) string {
	end := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsLetter(r) })
	if end < 0 {
		end = len(s)
	}
	return strings.ToLower(s[:end])
}

func lowerFirst(s string) string {
	end := strings.IndexFunc(s, unicode.IsSpace)
	if end < 0 {
		end = len(s)
	}
	if isAcronym(s[:end]) {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToLower(r)) + s[size:]
}

func isAcronym(word string) bool {
	letters := 0
	for _, r := range word {
		if unicode.IsLetter(r) {
			if !unicode.IsUpper(r) {
				return false
			}
			letters++
		}
	}
	return letters > 1
}
