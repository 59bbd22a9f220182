package humanize

import (
	"context"

	"github.com/MrWong99/humanizer/internal/observe"
	"github.com/MrWong99/humanizer/internal/similarity"
	"github.com/MrWong99/humanizer/pkg/lexicon"
	"github.com/MrWong99/humanizer/pkg/nlp"
)

// Collaborator labels shared by spans and the latency histogram.
const (
	collaboratorTagger     = "tagger"
	collaboratorLexicon    = "lexicon"
	collaboratorSimilarity = "similarity"
)

type tracedTagger struct {
	nlp.Tagger
	m *observe.Metrics
}

func instrumentTagger(t nlp.Tagger, m *observe.Metrics) nlp.Tagger { return tracedTagger{t, m} }

func (t tracedTagger) Tag(ctx context.Context, words []string) (tokens []nlp.Token, err error) {
	ctx, done := observe.TrackCollaborator(ctx, t.m, collaboratorTagger)
	defer func() { done(err) }()
	return t.Tagger.Tag(ctx, words)
}

type tracedLexicon struct {
	lexicon.Lexicon
	m *observe.Metrics
}

func instrumentLexicon(l lexicon.Lexicon, m *observe.Metrics) lexicon.Lexicon {
	return tracedLexicon{l, m}
}

func (l tracedLexicon) Synonyms(ctx context.Context, word string, pos nlp.POS) (syns []string, err error) {
	ctx, done := observe.TrackCollaborator(ctx, l.m, collaboratorLexicon)
	defer func() { done(err) }()
	return l.Lexicon.Synonyms(ctx, word, pos)
}

// instrumentScorer keeps the batch fast path visible to similarity.ScoreAll.
func instrumentScorer(s similarity.Scorer, m *observe.Metrics) similarity.Scorer {
	if bs, ok := s.(similarity.BatchScorer); ok {
		return tracedBatchScorer{tracedScorer{bs, m}, bs}
	}
	return tracedScorer{s, m}
}

type tracedScorer struct {
	similarity.Scorer
	m *observe.Metrics
}

func (s tracedScorer) Similarity(ctx context.Context, a, b string) (score float64, err error) {
	ctx, done := observe.TrackCollaborator(ctx, s.m, collaboratorSimilarity)
	defer func() { done(err) }()
	return s.Scorer.Similarity(ctx, a, b)
}

type tracedBatchScorer struct {
	tracedScorer
	batch similarity.BatchScorer
}

func (s tracedBatchScorer) SimilarityBatch(ctx context.Context, word string, candidates []string) (scores []float64, err error) {
	ctx, done := observe.TrackCollaborator(ctx, s.m, collaboratorSimilarity)
	defer func() { done(err) }()
	return s.batch.SimilarityBatch(ctx, word, candidates)
}
