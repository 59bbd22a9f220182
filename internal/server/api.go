package server

import (
	"context"
	"strings"

	"github.com/MrWong99/humanizer/internal/humanize"
)

// Humanizer is the pipeline the server exposes. *humanize.Humanizer
// implements it.
type Humanizer interface {
	Humanize(ctx context.Context, text string, opts humanize.Options) (humanize.Result, error)
	Counter() humanize.Counter
	Variant() humanize.Variant
}

var _ Humanizer = (*humanize.Humanizer)(nil)

// HumanizeRequest is the body of POST /humanize, of every WebSocket message
// and of the MCP "humanize" tool call.
type HumanizeRequest struct {
	Text        string  `json:"text" jsonschema:"the text to rewrite"`
	UsePassive  bool    `json:"use_passive,omitempty" jsonschema:"request passive-voice conversion (accepted and ignored)"`
	UseSynonyms bool    `json:"use_synonyms,omitempty" jsonschema:"enable synonym substitution"`
	Seed        *uint64 `json:"seed,omitempty" jsonschema:"seed for reproducible output"`
}

// HumanizeResponse is the result of a humanize request. Input and output are
// always counted with the same counter.
type HumanizeResponse struct {
	OriginalText        string `json:"original_text"`
	HumanizedText       string `json:"humanized_text"`
	InputWordCount      int    `json:"input_word_count"`
	InputSentenceCount  int    `json:"input_sentence_count"`
	OutputWordCount     int    `json:"output_word_count"`
	OutputSentenceCount int    `json:"output_sentence_count"`

	// Audit is only set when the caller asks for it.
	Audit *Audit `json:"audit,omitempty"`
}

// Audit lists every change the pipeline made.
type Audit struct {
	Substitutions []AuditSubstitution `json:"substitutions"`
	Transitions   []AuditTransition   `json:"transitions"`
}

// AuditSubstitution is one accepted synonym replacement.
type AuditSubstitution struct {
	Sentence    int     `json:"sentence"`
	Token       int     `json:"token"`
	Original    string  `json:"original"`
	Replacement string  `json:"replacement"`
	Tag         string  `json:"tag"`
	POS         string  `json:"pos"`
	Score       float64 `json:"score"`
}

// AuditTransition is one inserted transition marker.
type AuditTransition struct {
	Sentence int    `json:"sentence"`
	Marker   string `json:"marker"`
}

// Process validates req, runs it through h and counts input and output.
// Whitespace-only text fails with [humanize.ErrEmptyText] before the
// pipeline runs.
func Process(ctx context.Context, h Humanizer, req HumanizeRequest, audit bool) (HumanizeResponse, error) {
	if strings.TrimSpace(req.Text) == "" {
		return HumanizeResponse{}, humanize.ErrEmptyText
	}

	res, err := h.Humanize(ctx, req.Text, humanize.Options{
		UseSynonyms: req.UseSynonyms,
		UsePassive:  req.UsePassive,
		Seed:        req.Seed,
	})
	if err != nil {
		return HumanizeResponse{}, err
	}

	c := h.Counter()
	resp := HumanizeResponse{
		OriginalText:        req.Text,
		HumanizedText:       res.Text,
		InputWordCount:      c.Words(req.Text),
		InputSentenceCount:  c.Sentences(req.Text),
		OutputWordCount:     c.Words(res.Text),
		OutputSentenceCount: c.Sentences(res.Text),
	}
	if audit {
		resp.Audit = newAudit(res)
	}
	return resp, nil
}

func newAudit(res humanize.Result) *Audit {
	a := &Audit{
		Substitutions: make([]AuditSubstitution, 0, len(res.Substitutions)),
		Transitions:   make([]AuditTransition, 0, len(res.Transitions)),
	}
	for _, s := range res.Substitutions {
		a.Substitutions = append(a.Substitutions, AuditSubstitution{
			Sentence:    s.Sentence,
			Token:       s.Index,
			Original:    s.Original,
			Replacement: s.Replacement,
			Tag:         s.Tag,
			POS:         string(s.POS),
			Score:       s.Score,
		})
	}
	for _, tr := range res.Transitions {
		a.Transitions = append(a.Transitions, AuditTransition{Sentence: tr.Sentence, Marker: tr.Marker})
	}
	return a
}
