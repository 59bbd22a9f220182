package resilience

import (
	"context"

	"github.com/MrWong99/humanizer/pkg/lexicon"
	"github.com/MrWong99/humanizer/pkg/nlp"
)

// LexiconFallback implements [lexicon.Lexicon] with failover across several
// synonym sources. Only errors cause failover; a source that answers with an
// empty list is authoritative for that lookup.
type LexiconFallback struct {
	group *FallbackGroup[lexicon.Lexicon]
}

var _ lexicon.Lexicon = (*LexiconFallback)(nil)

// NewLexiconFallback creates a [LexiconFallback] with primary as the
// preferred source.
func NewLexiconFallback(primary lexicon.Lexicon, primaryName string, cfg FallbackConfig) *LexiconFallback {
	return &LexiconFallback{group: NewFallbackGroup(primary, primaryName, cfg)}
}

// AddFallback registers an additional lexicon.
func (f *LexiconFallback) AddFallback(name string, lex lexicon.Lexicon) {
	f.group.AddFallback(name, lex)
}

// Synonyms queries the first healthy lexicon.
func (f *LexiconFallback) Synonyms(ctx context.Context, word string, pos nlp.POS) ([]string, error) {
	return ExecuteWithResult(f.group, func(l lexicon.Lexicon) ([]string, error) {
		return l.Synonyms(ctx, word, pos)
	})
}

// States returns the breaker state of every source keyed by name.
func (f *LexiconFallback) States() map[string]State { return f.group.States() }
