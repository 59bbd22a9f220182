// Package thesaurus implements an in-memory lexicon.Lexicon over a list of
// synonym sets ("synsets") loaded from YAML.
//
// The expected YAML layout is:
//
//	synsets:
//	  - pos: adjective
//	    lemmas: [big, large, sizable]
//	  - pos: noun
//	    lemmas: [problem, issue, difficulty]
//
// Lemmas are returned in file order, synset by synset, and that order is the
// tie-break when a similarity scorer rates several candidates equally, so
// list the preferred substitute first.
//
// pos accepts the long names (noun, adjective, adverb, verb) as well as the
// WordNet letters (n, a, s, r, v). A word may appear in any number of synsets.
// Builtin returns a Thesaurus over a small embedded vocabulary so the
// humanizer works without any external lexicon.
package thesaurus

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/MrWong99/humanizer/pkg/lexicon"
	"github.com/MrWong99/humanizer/pkg/nlp"
)

//go:embed builtin.yaml
var builtinData []byte

type key struct {
	word string
	pos  nlp.POS
}

// Thesaurus is an immutable, concurrency-safe lexicon.Lexicon.
type Thesaurus struct {
	synsets []lexicon.Synset
	byKey   map[key][]int
	byWord  map[string][]int
}

var _ lexicon.Lexicon = (*Thesaurus)(nil)

// New indexes synsets. Lemmas are normalised with lexicon.Normalize; synsets
// with an unknown POS or fewer than two lemmas are dropped.
func New(synsets []lexicon.Synset) *Thesaurus {
	t := &Thesaurus{
		byKey:  make(map[key][]int),
		byWord: make(map[string][]int),
	}
	for _, s := range synsets {
		if s.POS == nlp.POSOther {
			continue
		}
		lemmas := lexicon.Dedupe("", s.Lemmas)
		if len(lemmas) < 2 {
			continue
		}
		id := len(t.synsets)
		t.synsets = append(t.synsets, lexicon.Synset{POS: s.POS, Lemmas: lemmas})
		for _, l := range lemmas {
			k := key{word: l, pos: s.POS}
			t.byKey[k] = append(t.byKey[k], id)
			t.byWord[l] = append(t.byWord[l], id)
		}
	}
	return t
}

type fileFormat struct {
	Synsets []struct {
		POS    string   `yaml:"pos"`
		Lemmas []string `yaml:"lemmas"`
	} `yaml:"synsets"`
}

// Load decodes a thesaurus from YAML. Unknown fields are rejected.
func Load(r io.Reader) (*Thesaurus, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f fileFormat
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return New(nil), nil
		}
		return nil, fmt.Errorf("thesaurus: decode: %w", err)
	}

	synsets := make([]lexicon.Synset, 0, len(f.Synsets))
	for i, s := range f.Synsets {
		pos := nlp.ParsePOS(s.POS)
		if pos == nlp.POSOther {
			return nil, fmt.Errorf("thesaurus: synset %d: unknown pos %q", i, s.POS)
		}
		synsets = append(synsets, lexicon.Synset{POS: pos, Lemmas: s.Lemmas})
	}
	return New(synsets), nil
}

// LoadFile reads a thesaurus from a YAML file.
func LoadFile(path string) (*Thesaurus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("thesaurus: open %q: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

var (
	builtinOnce sync.Once
	builtin     *Thesaurus
)

// Builtin returns the shared embedded thesaurus.
func Builtin() *Thesaurus {
	builtinOnce.Do(func() {
		t, err := Load(bytes.NewReader(builtinData))
		if err != nil {
			panic(fmt.Sprintf("thesaurus: embedded data is invalid: %v", err))
		}
		builtin = t
	})
	return builtin
}

// Synonyms implements lexicon.Lexicon.
func (t *Thesaurus) Synonyms(ctx context.Context, word string, pos nlp.POS) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ids := t.byKey[key{word: lexicon.Normalize(word), pos: pos}]
	var lemmas []string
	for _, id := range ids {
		lemmas = append(lemmas, t.synsets[id].Lemmas...)
	}
	return lexicon.Dedupe(word, lemmas), nil
}

// Senses returns the IDs of every synset containing word, across all parts
// of speech. IDs are stable for the lifetime of the Thesaurus.
func (t *Thesaurus) Senses(word string) []int {
	return t.byWord[lexicon.Normalize(word)]
}

// Synsets returns a copy of all indexed synsets.
func (t *Thesaurus) Synsets() []lexicon.Synset {
	out := make([]lexicon.Synset, len(t.synsets))
	for i, s := range t.synsets {
		out[i] = lexicon.Synset{POS: s.POS, Lemmas: append([]string(nil), s.Lemmas...)}
	}
	return out
}

// Len returns the number of synsets.
func (t *Thesaurus) Len() int { return len(t.synsets) }
