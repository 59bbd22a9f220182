// Package humanize implements the document pipeline: contraction expansion,
// sentence segmentation, per-sentence synonym substitution and transition
// insertion, and final whitespace and punctuation normalisation.
//
// A [Humanizer] is built once from immutable [Params] and is safe for
// concurrent use. Without synonym collaborators it runs the lite variant
// (contractions and transitions only); [WithSynonyms] enables the full
// variant.
//
// Collaborator failures never fail a document: they degrade to leaving a
// token or sentence unchanged. The only error [Humanizer.Humanize] returns
// is the caller's context error.
package humanize

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/MrWong99/humanizer/internal/contraction"
	"github.com/MrWong99/humanizer/internal/observe"
	"github.com/MrWong99/humanizer/internal/similarity"
	"github.com/MrWong99/humanizer/internal/synonym"
	"github.com/MrWong99/humanizer/internal/transition"
	"github.com/MrWong99/humanizer/pkg/lexicon"
	"github.com/MrWong99/humanizer/pkg/nlp"
	"github.com/MrWong99/humanizer/pkg/nlp/segment"
	"github.com/MrWong99/humanizer/pkg/nlp/tokenize"
	"go.opentelemetry.io/otel/attribute"
)

// ErrEmptyText is returned by callers that validate input before invoking
// the pipeline. Humanize itself accepts empty text.
var ErrEmptyText = errors.New("text cannot be empty")

// Step names one per-sentence transformation.
type Step string

const (
	StepSynonyms    Step = "synonyms"
	StepTransitions Step = "transitions"
)

// Variant identifies which pipeline a Humanizer runs.
type Variant string

const (
	// VariantFull adds POS-tagged synonym substitution.
	VariantFull Variant = "full"

	// VariantLite runs contraction expansion and transitions only.
	VariantLite Variant = "lite"
)

// Defaults for [Params].
const (
	DefaultSentenceProbability   = 0.5
	DefaultTransitionProbability = 0.1
)

// DefaultStepOrder applies synonyms before transitions so that inserted
// markers are never themselves substituted.
var DefaultStepOrder = []Step{StepSynonyms, StepTransitions}

// Params are the transformation parameters of a Humanizer. They never
// change for the lifetime of the instance; reconfiguration builds a new
// Humanizer.
type Params struct {
	// SentenceProbability gates the synonym step per sentence.
	SentenceProbability float64

	// TransitionProbability is the chance an eligible sentence receives a
	// marker.
	TransitionProbability float64

	// MinTransitionWords: a sentence needs more words than this for a marker.
	MinTransitionWords int

	// Transitions replaces the marker vocabulary when non-empty.
	Transitions []string

	// StepOrder is the order of per-sentence steps.
	StepOrder []Step

	// Synonym configures the substitution stage.
	Synonym synonym.Params

	// CollaboratorTimeout bounds every tagger, lexicon and similarity call.
	CollaboratorTimeout time.Duration

	// MaxConcurrentLookups bounds concurrent lexicon and similarity lookups.
	MaxConcurrentLookups int

	// Seed seeds the instance RNG. Nil seeds from the runtime's random
	// source.
	Seed *uint64
}

// DefaultParams returns the documented defaults.
func DefaultParams() Params {
	return Params{
		SentenceProbability:   DefaultSentenceProbability,
		TransitionProbability: DefaultTransitionProbability,
		MinTransitionWords:    transition.DefaultMinWords,
		StepOrder:             append([]Step(nil), DefaultStepOrder...),
		Synonym:               synonym.DefaultParams(),
		CollaboratorTimeout:   synonym.DefaultTimeout,
		MaxConcurrentLookups:  synonym.DefaultMaxConcurrency,
	}
}

// Validate reports every invalid field.
func (p Params) Validate() error {
	var errs []error
	if p.SentenceProbability < 0 || p.SentenceProbability > 1 {
		errs = append(errs, fmt.Errorf("sentence probability %v not in [0, 1]", p.SentenceProbability))
	}
	if p.TransitionProbability < 0 || p.TransitionProbability > 1 {
		errs = append(errs, fmt.Errorf("transition probability %v not in [0, 1]", p.TransitionProbability))
	}
	if p.MinTransitionWords < 0 {
		errs = append(errs, fmt.Errorf("min transition words must not be negative"))
	}
	seen := make(map[Step]bool, len(p.StepOrder))
	for _, s := range p.StepOrder {
		switch {
		case s != StepSynonyms && s != StepTransitions:
			errs = append(errs, fmt.Errorf("unknown step %q", s))
		case seen[s]:
			errs = append(errs, fmt.Errorf("step %q listed twice", s))
		}
		seen[s] = true
	}
	if p.CollaboratorTimeout < 0 {
		errs = append(errs, fmt.Errorf("collaborator timeout must not be negative"))
	}
	if err := p.Synonym.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Options are the per-call switches.
type Options struct {
	// UseSynonyms enables synonym substitution. It has no effect on a lite
	// Humanizer.
	UseSynonyms bool

	// UsePassive requests passive-voice conversion, which is not
	// implemented; the flag is accepted and ignored.
	UsePassive bool

	// Seed, when set, makes the call draw from its own deterministic stream
	// instead of the instance RNG.
	Seed *uint64
}

// SentenceSubstitution is a synonym replacement located within the output.
type SentenceSubstitution struct {
	Sentence int
	synonym.Substitution
}

// TransitionRecord is a marker inserted at the start of a sentence.
type TransitionRecord struct {
	Sentence int
	Marker   string
}

// Result is the outcome of one Humanize call.
type Result struct {
	Text          string
	Sentences     int
	Substitutions []SentenceSubstitution
	Transitions   []TransitionRecord
}

// Option configures a [Humanizer].
type Option func(*Humanizer)

// WithSynonyms enables the full variant with the given collaborators.
func WithSynonyms(tagger nlp.Tagger, lex lexicon.Lexicon, scorer similarity.Scorer) Option {
	return func(h *Humanizer) {
		h.tagger = tagger
		h.lexicon = lex
		h.scorer = scorer
	}
}

// WithSegmenter replaces the default sentence segmenter.
func WithSegmenter(s nlp.Segmenter) Option {
	return func(h *Humanizer) { h.segmenter = s }
}

// WithTokenizer replaces the default word tokenizer.
func WithTokenizer(t nlp.Tokenizer) Option {
	return func(h *Humanizer) { h.tokenizer = t }
}

// WithMetrics sets the metrics sink. Default: [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(h *Humanizer) { h.metrics = m }
}

// Humanizer runs the pipeline. It is safe for concurrent use.
type Humanizer struct {
	params    Params
	expander  *contraction.Expander
	segmenter nlp.Segmenter
	tokenizer nlp.Tokenizer
	inserter  *transition.Inserter
	metrics   *observe.Metrics

	tagger      nlp.Tagger
	lexicon     lexicon.Lexicon
	scorer      similarity.Scorer
	substituter *synonym.Substituter

	mu  sync.Mutex
	rng *rand.Rand
}

// New builds a Humanizer. It fails only when params are invalid.
func New(params Params, opts ...Option) (*Humanizer, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("humanize: %w", err)
	}
	if len(params.StepOrder) == 0 {
		params.StepOrder = append([]Step(nil), DefaultStepOrder...)
	}
	if params.CollaboratorTimeout == 0 {
		params.CollaboratorTimeout = synonym.DefaultTimeout
	}

	h := &Humanizer{
		params:    params,
		expander:  contraction.New(),
		segmenter: segment.New(),
		tokenizer: tokenize.New(),
	}
	for _, o := range opts {
		o(h)
	}
	if h.metrics == nil {
		h.metrics = observe.DefaultMetrics()
	}

	h.inserter = transition.New(params.TransitionProbability,
		transition.WithMarkers(params.Transitions),
		transition.WithMinWords(params.MinTransitionWords),
	)

	if h.tagger != nil && h.lexicon != nil && h.scorer != nil {
		sub, err := synonym.New(
			instrumentTagger(h.tagger, h.metrics),
			instrumentLexicon(h.lexicon, h.metrics),
			instrumentScorer(h.scorer, h.metrics),
			params.Synonym,
			synonym.WithTokenizer(h.tokenizer),
			synonym.WithTimeout(params.CollaboratorTimeout),
			synonym.WithMaxConcurrency(params.MaxConcurrentLookups),
			synonym.WithErrorHook(func(ctx context.Context, stage string, _ error) {
				h.metrics.RecordCollaboratorError(ctx, stage)
			}),
		)
		if err != nil {
			return nil, fmt.Errorf("humanize: %w", err)
		}
		h.substituter = sub
	}

	seed := rand.Uint64()
	if params.Seed != nil {
		seed = *params.Seed
	}
	h.rng = newRand(seed)
	return h, nil
}

// Variant reports which pipeline the Humanizer runs.
func (h *Humanizer) Variant() Variant {
	if h.substituter != nil {
		return VariantFull
	}
	return VariantLite
}

// Params returns the Humanizer's parameters.
func (h *Humanizer) Params() Params { return h.params }

// Counter returns the counting function matching the variant, so input and
// output are always measured the same way.
func (h *Humanizer) Counter() Counter {
	if h.Variant() == VariantFull {
		return TokenCounter{Tokenizer: h.tokenizer, Segmenter: h.segmenter}
	}
	return RegexCounter{}
}

// Humanize transforms text.
func (h *Humanizer) Humanize(ctx context.Context, text string, opts Options) (res Result, err error) {
	start := time.Now()
	ctx, span := observe.StartSpan(ctx, "humanize")
	span.SetAttributes(
		attribute.String("humanize.variant", string(h.Variant())),
		attribute.Bool("humanize.use_synonyms", opts.UseSynonyms),
		attribute.Int("humanize.input_bytes", len(text)),
	)
	h.metrics.ActiveRequests.Add(ctx, 1)
	defer func() {
		h.metrics.ActiveRequests.Add(ctx, -1)
		status := "ok"
		if err != nil {
			status = "error"
		}
		h.metrics.RecordHumanize(ctx, string(h.Variant()), status, time.Since(start))
		observe.EndSpan(span, err)
	}()

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	expanded := h.expander.Expand(text)
	if opts.UsePassive {
		expanded = convertPassive(expanded)
	}
	sentences := h.segmenter.Split(expanded)
	rng := h.stream(opts.Seed)
	substitute := opts.UseSynonyms && h.substituter != nil

	out := make([]string, len(sentences))
	for i, s := range sentences {
		for _, step := range h.params.StepOrder {
			switch step {
			case StepSynonyms:
				if !substitute || rng.Float64() >= h.params.SentenceProbability {
					continue
				}
				replaced, subs, err := h.substituter.Substitute(ctx, s, rng)
				if err != nil {
					return Result{}, err
				}
				s = replaced
				for _, sub := range subs {
					res.Substitutions = append(res.Substitutions, SentenceSubstitution{Sentence: i, Substitution: sub})
					h.metrics.RecordSubstitution(ctx, string(sub.POS))
				}
			case StepTransitions:
				inserted, ok := h.inserter.Insert(s, i, rng)
				if !ok {
					continue
				}
				s = inserted
				marker, _, _ := strings.Cut(inserted, ", ")
				res.Transitions = append(res.Transitions, TransitionRecord{Sentence: i, Marker: marker + ","})
				h.metrics.Transitions.Add(ctx, 1)
			}
		}
		out[i] = s
	}
	h.metrics.Sentences.Add(ctx, int64(len(sentences)))

	res.Text = Normalize(strings.Join(out, " "))
	res.Sentences = len(sentences)
	span.SetAttributes(
		attribute.Int("humanize.sentences", res.Sentences),
		attribute.Int("humanize.substitutions", len(res.Substitutions)),
		attribute.Int("humanize.transitions", len(res.Transitions)),
	)
	observe.Logger(ctx).Debug("humanized document",
		"variant", h.Variant(),
		"sentences", res.Sentences,
		"substitutions", len(res.Substitutions),
		"transitions", len(res.Transitions),
	)
	return res, nil
}

// seedStream is the PCG stream selector for all generators.
const seedStream = 0x9e3779b97f4a7c15

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seedStream))
}

// stream returns the generator for one call. A seeded call gets its own
// stream; otherwise a child generator is seeded from the shared one so the
// call can draw without holding the lock.
func (h *Humanizer) stream(seed *uint64) *rand.Rand {
	if seed != nil {
		return newRand(*seed)
	}
	h.mu.Lock()
	s := h.rng.Uint64()
	h.mu.Unlock()
	return newRand(s)
}

// convertPassive is the hook for passive-voice rewriting. It returns its
// input unchanged.
func convertPassive(text string) string { return text }

var (
	whitespaceRun     = regexp.MustCompile(`\s+`)
	spaceBeforePunct  = regexp.MustCompile(`\s+([.,!?;:])`)
	missingSpaceAfter = regexp.MustCompile(`([.,!?;:])(\pL)`)
)

// Normalize collapses whitespace runs to one space, removes whitespace
// before ".,!?;:" and inserts a space between one of those marks and a
// directly following letter.
func Normalize(text string) string {
	text = whitespaceRun.ReplaceAllString(text, " ")
	text = spaceBeforePunct.ReplaceAllString(text, "$1")
	text = missingSpaceAfter.ReplaceAllString(text, "$1 $2")
	return strings.TrimSpace(text)
}
