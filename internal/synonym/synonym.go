// Package synonym implements the synonym substitution stage of the
// humanizer.
//
// For one sentence, the [Substituter] tags every token, picks the eligible
// adjectives, singular common nouns and adverbs, and for a random subset of
// them looks up candidate synonyms in a [lexicon.Lexicon]. Candidates are
// filtered to plausible single-word substitutes, scored against the original
// word with a [similarity.Scorer], and the best one is accepted only when
// its score reaches the threshold.
//
// Collaborator failures never abort the document. A failed tagger or
// similarity call leaves the sentence unchanged; a failed lexicon lookup
// leaves the token unchanged.
package synonym

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/antzucaro/matchr"
	"github.com/kljensen/snowball"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/MrWong99/humanizer/internal/similarity"
	"github.com/MrWong99/humanizer/pkg/lexicon"
	"github.com/MrWong99/humanizer/pkg/nlp"
	"github.com/MrWong99/humanizer/pkg/nlp/tokenize"
)

// Defaults for [Params].
const (
	DefaultWordProbability = 0.35
	DefaultThreshold       = 0.7
	DefaultMinWordLength   = 3
	DefaultLengthTolerance = 3
	DefaultTimeout         = 2 * time.Second
	DefaultMaxConcurrency  = 8
)

// DefaultEligibleTags are the Penn tags whose words may be replaced:
// adjectives, singular common nouns and adverbs. Verbs, proper nouns and
// plural nouns are left alone so that tense, agreement, plurality and entity
// names survive.
var DefaultEligibleTags = []string{
	nlp.TagAdjective, nlp.TagAdjectiveComparative, nlp.TagAdjectiveSuperlative,
	nlp.TagNoun,
	nlp.TagAdverb, nlp.TagAdverbComparative, nlp.TagAdverbSuperlative,
}

// DefaultDenylist holds frequent nouns whose synonyms read as mistakes in
// almost any context.
var DefaultDenylist = []string{
	"time", "year", "day", "week", "month", "hour", "minute", "today",
	"head", "hand", "face", "body", "heart", "mind", "eye",
	"people", "person", "thing", "way", "part", "place", "case", "point",
	"fact", "number", "world", "life", "home", "work", "water",
}

// Params are the tuning knobs of a [Substituter]. They are fixed for the
// Substituter's lifetime.
type Params struct {
	// WordProbability is the chance that an eligible token is attempted.
	WordProbability float64

	// Threshold is the minimum similarity score for a replacement.
	Threshold float64

	// MinWordLength: a token must be longer than this (in runes).
	MinWordLength int

	// LengthTolerance is the maximum rune-length difference between a word
	// and its replacement.
	LengthTolerance int

	// Denylist words are never replaced and never introduced.
	Denylist []string

	// EligibleTags are the Penn tags considered for replacement.
	EligibleTags []string
}

// DefaultParams returns the documented defaults.
func DefaultParams() Params {
	return Params{
		WordProbability: DefaultWordProbability,
		Threshold:       DefaultThreshold,
		MinWordLength:   DefaultMinWordLength,
		LengthTolerance: DefaultLengthTolerance,
		Denylist:        append([]string(nil), DefaultDenylist...),
		EligibleTags:    append([]string(nil), DefaultEligibleTags...),
	}
}

// Validate reports every invalid field.
func (p Params) Validate() error {
	var errs []error
	if p.WordProbability < 0 || p.WordProbability > 1 {
		errs = append(errs, fmt.Errorf("word probability %v not in [0, 1]", p.WordProbability))
	}
	if p.Threshold < 0 || p.Threshold > 1 {
		errs = append(errs, fmt.Errorf("similarity threshold %v not in [0, 1]", p.Threshold))
	}
	if p.MinWordLength < 0 {
		errs = append(errs, fmt.Errorf("min word length must not be negative"))
	}
	if p.LengthTolerance < 0 {
		errs = append(errs, fmt.Errorf("length tolerance must not be negative"))
	}
	for _, tag := range p.EligibleTags {
		if nlp.Coarse(tag) == nlp.POSOther || nlp.Coarse(tag) == nlp.POSVerb {
			errs = append(errs, fmt.Errorf("tag %q cannot be substituted", tag))
		}
	}
	return errors.Join(errs...)
}

// Substitution records one accepted replacement.
type Substitution struct {
	// Index is the token position within the sentence.
	Index int

	Original    string
	Replacement string
	Tag         string
	POS         nlp.POS
	Score       float64
}

// Rand is the random source the Substituter draws from. *rand.Rand from
// math/rand/v2 satisfies it. It is only used from the calling goroutine.
type Rand interface {
	Float64() float64
}

// Stage names passed to the error hook.
const (
	StageTag        = "tag"
	StageLexicon    = "lexicon"
	StageSimilarity = "similarity"
)

// Option configures a [Substituter].
type Option func(*Substituter)

// WithTimeout bounds every collaborator call. Default: 2s.
func WithTimeout(d time.Duration) Option {
	return func(s *Substituter) { s.timeout = d }
}

// WithMaxConcurrency bounds the number of concurrent lexicon and similarity
// lookups across all sentences handled by the Substituter. Default: 8.
func WithMaxConcurrency(n int) Option {
	return func(s *Substituter) { s.maxConcurrency = n }
}

// WithTokenizer replaces the default tokenizer.
func WithTokenizer(t nlp.Tokenizer) Option {
	return func(s *Substituter) { s.tokenizer = t }
}

// WithErrorHook registers fn to be called for every absorbed collaborator
// failure. stage is one of the Stage constants.
func WithErrorHook(fn func(ctx context.Context, stage string, err error)) Option {
	return func(s *Substituter) { s.onError = fn }
}

// Substituter replaces words with close synonyms. It is safe for concurrent
// use as long as each caller passes its own Rand.
type Substituter struct {
	tokenizer nlp.Tokenizer
	tagger    nlp.Tagger
	lexicon   lexicon.Lexicon
	scorer    similarity.Scorer

	params   Params
	deny     map[string]bool
	eligible map[string]bool

	timeout        time.Duration
	maxConcurrency int
	sem            *semaphore.Weighted
	onError        func(ctx context.Context, stage string, err error)
}

// New returns a Substituter. It fails only when params are invalid.
func New(tagger nlp.Tagger, lex lexicon.Lexicon, scorer similarity.Scorer, params Params, opts ...Option) (*Substituter, error) {
	if tagger == nil || lex == nil || scorer == nil {
		return nil, fmt.Errorf("synonym: tagger, lexicon and scorer are required")
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("synonym: %w", err)
	}
	s := &Substituter{
		tokenizer:      tokenize.New(),
		tagger:         tagger,
		lexicon:        lex,
		scorer:         scorer,
		params:         params,
		deny:           make(map[string]bool, len(params.Denylist)),
		eligible:       make(map[string]bool, len(params.EligibleTags)),
		timeout:        DefaultTimeout,
		maxConcurrency: DefaultMaxConcurrency,
	}
	for _, w := range params.Denylist {
		s.deny[strings.ToLower(strings.TrimSpace(w))] = true
	}
	for _, t := range params.EligibleTags {
		s.eligible[t] = true
	}
	for _, o := range opts {
		o(s)
	}
	if s.maxConcurrency <= 0 {
		s.maxConcurrency = 1
	}
	s.sem = semaphore.NewWeighted(int64(s.maxConcurrency))
	return s, nil
}

// Params returns the Substituter's parameters.
func (s *Substituter) Params() Params { return s.params }

type attempt struct {
	index int
	tag   string
	word  string
}

// Substitute rewrites sentence. It returns the sentence string unchanged
// (byte for byte) when nothing was replaced, and the detokenized token
// sequence otherwise.
//
// The only error returned is ctx's own; every collaborator failure is
// absorbed.
func (s *Substituter) Substitute(ctx context.Context, sentence string, rng Rand) (string, []Substitution, error) {
	words := s.tokenizer.Tokenize(sentence)
	if len(words) == 0 {
		return sentence, nil, nil
	}

	tagCtx, cancel := context.WithTimeout(ctx, s.timeout)
	tokens, err := s.tagger.Tag(tagCtx, words)
	cancel()
	if err != nil {
		if ctx.Err() != nil {
			return sentence, nil, ctx.Err()
		}
		s.absorb(ctx, StageTag, err)
		return sentence, nil, nil
	}
	if len(tokens) != len(words) {
		s.absorb(ctx, StageTag, fmt.Errorf("tagger returned %d tokens for %d words", len(tokens), len(words)))
		return sentence, nil, nil
	}

	// Draw sequentially so a seeded Rand yields the same attempts no matter
	// how the lookups below are scheduled.
	var attempts []attempt
	for i, tok := range tokens {
		if !s.Eligible(tok) {
			continue
		}
		if rng.Float64() >= s.params.WordProbability {
			continue
		}
		attempts = append(attempts, attempt{index: i, tag: tok.Tag, word: words[i]})
	}
	if len(attempts) == 0 {
		return sentence, nil, nil
	}

	results := make([]*Substitution, len(attempts))
	g, gctx := errgroup.WithContext(ctx)
	for i, a := range attempts {
		g.Go(func() error {
			sub, err := s.replace(gctx, a)
			if err != nil {
				return err
			}
			results[i] = sub
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return sentence, nil, ctx.Err()
		}
		s.absorb(ctx, StageSimilarity, err)
		return sentence, nil, nil
	}

	var subs []Substitution
	out := append([]string(nil), words...)
	for _, r := range results {
		if r == nil {
			continue
		}
		out[r.Index] = r.Replacement
		subs = append(subs, *r)
	}
	if len(subs) == 0 {
		return sentence, nil, nil
	}
	return tokenize.Join(out), subs, nil
}

// Eligible reports whether tok may be considered for replacement.
func (s *Substituter) Eligible(tok nlp.Token) bool {
	if !s.eligible[tok.Tag] {
		return false
	}
	if utf8.RuneCountInString(tok.Text) <= s.params.MinWordLength {
		return false
	}
	if !isLetters(tok.Text) {
		return false
	}
	return !s.deny[strings.ToLower(tok.Text)]
}

// replace looks up and scores candidates for one token. It returns (nil,
// nil) when the token stays as it is and an error only when similarity
// scoring failed, which aborts the sentence.
func (s *Substituter) replace(ctx context.Context, a attempt) (*Substitution, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer s.sem.Release(1)

	pos := nlp.Coarse(a.tag)
	lexCtx, cancel := context.WithTimeout(ctx, s.timeout)
	raw, err := s.lexicon.Synonyms(lexCtx, a.word, pos)
	cancel()
	if err != nil {
		if ctx.Err() == nil {
			s.absorb(ctx, StageLexicon, err)
		}
		return nil, nil
	}

	candidates := s.Candidates(a.word, raw)
	if len(candidates) == 0 {
		return nil, nil
	}

	simCtx, cancel := context.WithTimeout(ctx, s.timeout)
	scores, err := similarity.ScoreAll(simCtx, s.scorer, strings.ToLower(a.word), candidates)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("synonym: score %q: %w", a.word, err)
	}
	if len(scores) != len(candidates) {
		return nil, fmt.Errorf("synonym: score %q: got %d scores for %d candidates", a.word, len(scores), len(candidates))
	}

	// Ties keep the earliest candidate, i.e. lexicon order.
	best := -1
	for i, sc := range scores {
		if best < 0 || sc > scores[best] {
			best = i
		}
	}
	if scores[best] < s.params.Threshold {
		slog.Debug("synonym below threshold", "word", a.word, "candidate", candidates[best], "score", scores[best])
		return nil, nil
	}
	return &Substitution{
		Index:       a.index,
		Original:    a.word,
		Replacement: MatchCase(a.word, candidates[best]),
		Tag:         a.tag,
		POS:         pos,
		Score:       scores[best],
	}, nil
}

// Candidates filters raw lexicon output down to plausible single-word
// substitutes for word, preserving order. A candidate is dropped when it
// is not a plain (optionally hyphenated) word, equals word ignoring case,
// differs in length by more than the tolerance, is denylisted, looks like
// an abbreviation, shares word's stem, or is a one-edit spelling variant.
func (s *Substituter) Candidates(word string, raw []string) []string {
	lower := strings.ToLower(word)
	wordLen := utf8.RuneCountInString(word)
	wordStem := stem(lower)

	var out []string
	seen := make(map[string]bool)
	for _, c := range raw {
		c = lexicon.Normalize(c)
		if c == "" || seen[c] || !isWordForm(c) {
			continue
		}
		seen[c] = true
		if strings.EqualFold(c, lower) || s.deny[c] || nlp.IsAbbreviation(c) {
			continue
		}
		if d := utf8.RuneCountInString(c) - wordLen; d > s.params.LengthTolerance || -d > s.params.LengthTolerance {
			continue
		}
		if stem(c) == wordStem {
			continue
		}
		if matchr.DamerauLevenshtein(c, lower) <= 1 {
			continue
		}
		out = append(out, c)
	}
	return out
}

func (s *Substituter) absorb(ctx context.Context, stage string, err error) {
	slog.Warn("synonym collaborator failed, leaving text unchanged", "stage", stage, "error", err)
	if s.onError != nil {
		s.onError(ctx, stage, err)
	}
}

// MatchCase carries the capitalisation of original over to replacement:
// an all-caps word of two or more letters yields an all-caps replacement,
// and a leading capital yields a leading capital.
func MatchCase(original, replacement string) string {
	if replacement == "" {
		return replacement
	}
	if utf8.RuneCountInString(original) > 1 && strings.ToUpper(original) == original && strings.ToLower(original) != original {
		return strings.ToUpper(replacement)
	}
	first, _ := utf8.DecodeRuneInString(original)
	if !unicode.IsUpper(first) {
		return replacement
	}
	r, size := utf8.DecodeRuneInString(replacement)
	return string(unicode.ToUpper(r)) + replacement[size:]
}

func stem(word string) string {
	st, err := snowball.Stem(word, "english", true)
	if err != nil {
		return word
	}
	return st
}

func isLetters(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// isWordForm accepts letters with inner hyphens ("well-known") and rejects
// phrases, digits and punctuation.
func isWordForm(s string) bool {
	if strings.HasPrefix(s, "-") || strings.HasSuffix(s, "-") || strings.Contains(s, "--") {
		return false
	}
	return isLetters(strings.ReplaceAll(s, "-", ""))
}
