// Package segment provides an abbreviation-aware sentence segmenter.
//
// A sentence ends at a run of terminal punctuation (".", "!", "?"), optionally
// followed by closing quotes or brackets, when the next visible character
// starts a new sentence (an uppercase letter, digit, opening quote or
// bracket). A period after a known abbreviation or a single-letter initial
// does not end a sentence.
//
// Terminal punctuation glued directly to an uppercase letter ("done.Next",
// "Hi.There") is judged exactly like its spaced form. Only the last
// period-separated part of the preceding word is checked against the
// abbreviation list, so "U.S.Army" and "U. S. Army" look the same. Inserting
// the missing space therefore never changes the number of sentences.
package segment

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/MrWong99/humanizer/pkg/nlp"
)

// Segmenter is the default nlp.Segmenter. The zero value is ready to use.
type Segmenter struct{}

var _ nlp.Segmenter = Segmenter{}

// New returns a Segmenter.
func New() Segmenter { return Segmenter{} }

// Split implements nlp.Segmenter.
func (Segmenter) Split(text string) []string {
	var out []string
	start := 0
	for _, end := range boundaries(text) {
		if s := strings.TrimSpace(text[start:end]); s != "" {
			out = append(out, s)
		}
		start = end
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		out = append(out, s)
	}
	return out
}

func isTerminal(r rune) bool { return r == '.' || r == '!' || r == '?' }

func isCloser(r rune) bool { return strings.ContainsRune(`"')]}”’`, r) }

func isStarter(r rune) bool {
	return unicode.IsUpper(r) || unicode.IsDigit(r) || strings.ContainsRune(`"'([{“‘`, r)
}

// boundaries returns the byte offsets just past every sentence end.
func boundaries(text string) []int {
	var out []int
	i := 0
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		if !isTerminal(r) {
			i += size
			continue
		}

		runStart := i
		hasStrong := false
		for i < len(text) {
			r, size = utf8.DecodeRuneInString(text[i:])
			if !isTerminal(r) {
				break
			}
			if r != '.' {
				hasStrong = true
			}
			i += size
		}
		for i < len(text) {
			r, size = utf8.DecodeRuneInString(text[i:])
			if !isCloser(r) {
				break
			}
			i += size
		}
		end := i

		j := i
		spaced := false
		for j < len(text) {
			r, size = utf8.DecodeRuneInString(text[j:])
			if !unicode.IsSpace(r) {
				break
			}
			spaced = true
			j += size
		}
		if j >= len(text) {
			break
		}
		next, _ := utf8.DecodeRuneInString(text[j:])

		word := precedingWord(text[:runStart])
		switch {
		case spaced && !isStarter(next):
			continue
		case !spaced && !unicode.IsUpper(next):
			continue
		}
		if !hasStrong && nlp.IsAbbreviation(word) {
			continue
		}
		out = append(out, end)
	}
	return out
}

// precedingWord returns the letters immediately before pos, skipping any
// whitespace in between. For dotted words ("U.S", "e.g") only the part after
// the last internal period is returned.
func precedingWord(prefix string) string {
	prefix = strings.TrimRightFunc(prefix, unicode.IsSpace)
	i := len(prefix)
	for i > 0 {
		r, size := utf8.DecodeLastRuneInString(prefix[:i])
		if !unicode.IsLetter(r) {
			break
		}
		i -= size
	}
	return prefix[i:]
}
