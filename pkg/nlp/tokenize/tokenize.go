// Package tokenize provides a Treebank-style word tokenizer and the matching
// heuristic detokenizer.
//
// Tokenize splits leading and trailing punctuation off whitespace-delimited
// chunks, keeps known abbreviations ("Dr.", "e.g.") intact and separates
// English clitics ("'s", "n't", "'re", ...) the way the Penn Treebank does.
// Join is not an exact inverse of Tokenize: it reassembles tokens with simple
// spacing rules and is known to be imperfect for nested quotes.
package tokenize

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/MrWong99/humanizer/pkg/nlp"
)

// Tokenizer is the default nlp.Tokenizer. The zero value is ready to use.
type Tokenizer struct{}

var _ nlp.Tokenizer = Tokenizer{}

// New returns a Tokenizer.
func New() Tokenizer { return Tokenizer{} }

const (
	openers = "([{\"'“‘"
	closers = ")]}\"'”’,;:!?"
)

// clitics are split off the end of a word, longest first.
var clitics = []string{"n't", "'ll", "'re", "'ve", "'s", "'m", "'d"}

// Tokenize implements nlp.Tokenizer.
func (Tokenizer) Tokenize(text string) []string {
	var out []string
	for _, chunk := range strings.Fields(text) {
		out = appendChunk(out, chunk)
	}
	return out
}

func appendChunk(out []string, chunk string) []string {
	// Leading openers.
	for chunk != "" {
		r, size := utf8.DecodeRuneInString(chunk)
		if !strings.ContainsRune(openers, r) || size == len(chunk) {
			break
		}
		out = append(out, chunk[:size])
		chunk = chunk[size:]
	}

	// Trailing closers, collected in reverse.
	var tail []string
	for chunk != "" {
		r, size := utf8.DecodeLastRuneInString(chunk)
		if r == '.' {
			core := strings.TrimRight(chunk, ".")
			run := len(chunk) - len(core)
			if run == 1 && core != "" && hasLetter(core) && nlp.IsAbbreviation(core) {
				break
			}
			if core == "" {
				break
			}
			tail = append(tail, chunk[len(core):])
			chunk = core
			continue
		}
		if !strings.ContainsRune(closers, r) || size == len(chunk) {
			break
		}
		tail = append(tail, chunk[len(chunk)-size:])
		chunk = chunk[:len(chunk)-size]
	}

	if chunk != "" {
		out = append(out, splitClitic(chunk)...)
	}
	for i := len(tail) - 1; i >= 0; i-- {
		out = append(out, tail[i])
	}
	return out
}

func splitClitic(word string) []string {
	norm := strings.ReplaceAll(strings.ToLower(word), "’", "'")
	for _, c := range clitics {
		if len(norm) <= len(c) || !strings.HasSuffix(norm, c) {
			continue
		}
		// Byte offsets differ when the typographic apostrophe was folded.
		cut := len(word) - len(c)
		if strings.Contains(word, "’") {
			cut = len(word) - (len(c) - 1 + len("’"))
		}
		if cut <= 0 {
			continue
		}
		return []string{word[:cut], word[cut:]}
	}
	return []string{word}
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// noSpaceBefore holds tokens that attach to the preceding token.
var noSpaceBefore = map[string]bool{
	".": true, ",": true, "!": true, "?": true, ";": true, ":": true,
	")": true, "]": true, "}": true, "”": true, "’": true, "%": true,
	"...": true, "n't": true,
}

// noSpaceAfter holds tokens that attach to the following token.
var noSpaceAfter = map[string]bool{
	"(": true, "[": true, "{": true, "“": true, "‘": true,
}

// Join reassembles tokens into a sentence: no space before closing
// punctuation or clitics, no space after an opening bracket or quote, and a
// single space everywhere else. Straight quotes alternate between opening and
// closing, except that a lone apostrophe after a word ending in "s" is read
// as a plural possessive.
func Join(tokens []string) string {
	var b strings.Builder
	attachNext := false
	openQuote := map[string]bool{}
	for i, tok := range tokens {
		attach := attachNext
		attachNext = false

		switch {
		case tok == "'" && i > 0 && !openQuote[tok] && endsWithS(tokens[i-1]):
			attach = true
		case tok == `"` || tok == "'":
			if openQuote[tok] {
				attach = true
				openQuote[tok] = false
			} else {
				attachNext = true
				openQuote[tok] = true
			}
		case noSpaceBefore[tok] || isClitic(tok):
			attach = true
		case noSpaceAfter[tok]:
			attachNext = true
		}
		if strings.Trim(tok, ".!?") == "" {
			attach = true
		}

		if i > 0 && !attach {
			b.WriteByte(' ')
		}
		b.WriteString(tok)
	}
	return b.String()
}

func endsWithS(tok string) bool {
	return strings.HasSuffix(tok, "s") || strings.HasSuffix(tok, "S")
}

func isClitic(tok string) bool {
	norm := strings.ToLower(strings.ReplaceAll(tok, "’", "'"))
	for _, c := range clitics {
		if norm == c {
			return true
		}
	}
	return false
}
