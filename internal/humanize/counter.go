package humanize

import (
	"regexp"
	"strings"

	"github.com/MrWong99/humanizer/pkg/nlp"
)

// Counter measures words and sentences in a text.
type Counter interface {
	Words(text string) int
	Sentences(text string) int
}

// TokenCounter counts with the pipeline's own tokenizer and segmenter. It
// backs the full variant.
type TokenCounter struct {
	Tokenizer nlp.Tokenizer
	Segmenter nlp.Segmenter
}

// Words returns the number of word and punctuation tokens.
func (c TokenCounter) Words(text string) int { return len(c.Tokenizer.Tokenize(text)) }

// Sentences returns the number of segmented sentences.
func (c TokenCounter) Sentences(text string) int { return len(c.Segmenter.Split(text)) }

var (
	liteWord     = regexp.MustCompile(`[\w']+|[^\w\s]`)
	liteSentence = regexp.MustCompile(`[.!?]+`)
)

// RegexCounter is the dependency-free counter of the lite variant: a word is
// a run of word characters and apostrophes or a single punctuation mark, and
// sentences are the non-blank pieces between runs of terminal punctuation.
type RegexCounter struct{}

// Words implements [Counter].
func (RegexCounter) Words(text string) int { return len(liteWord.FindAllString(text, -1)) }

// Sentences implements [Counter].
func (RegexCounter) Sentences(text string) int {
	n := 0
	for _, part := range liteSentence.Split(text, -1) {
		if strings.TrimSpace(part) != "" {
			n++
		}
	}
	return n
}
