package postag

import (
	"context"
	"testing"
)

func TestTag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		words []string
		want  map[int]string
	}{
		{
			name:  "verb after subject pronoun",
			words: []string{"She", "walks", "quickly", "."},
			want:  map[int]string{0: "PRP", 1: "VBZ", 2: "RB", 3: "."},
		},
		{
			name:  "infinitive after to",
			words: []string{"We", "hope", "to", "garden", "."},
			want:  map[int]string{2: "TO", 3: "VB"},
		},
		{
			name:  "proper noun mid sentence",
			words: []string{"The", "happiness", "of", "London", "matters", "."},
			want:  map[int]string{0: "DT", 1: "NN", 3: "NNP", 4: "NNS"},
		},
		{
			name:  "acronym and plural",
			words: []string{"We", "met", "NASA", "engineers", "."},
			want:  map[int]string{1: "VBD", 2: "NNP", 3: "NNS"},
		},
		{
			name:  "participle after have",
			words: []string{"It", "has", "finished", "."},
			want:  map[int]string{1: "VBZ", 2: "VBN"},
		},
		{
			name:  "adjective suffix and default noun",
			words: []string{"They", "built", "a", "careful", "plan", "."},
			want:  map[int]string{3: "JJ", 4: "NN"},
		},
		{
			name:  "clitics",
			words: []string{"It", "'s", "John", "'s", "."},
			want:  map[int]string{1: "VBZ", 3: "POS"},
		},
		{
			name:  "numbers and punctuation",
			words: []string{"(", "3.5", ")", ","},
			want:  map[int]string{0: "-LRB-", 1: "CD", 2: "-RRB-", 3: ","},
		},
	}

	tagger := New()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := tagger.Tag(context.Background(), tc.words)
			if err != nil {
				t.Fatalf("Tag: unexpected error: %v", err)
			}
			if len(got) != len(tc.words) {
				t.Fatalf("Tag returned %d tokens, want %d", len(got), len(tc.words))
			}
			for i, want := range tc.want {
				if got[i].Text != tc.words[i] {
					t.Errorf("token %d text = %q, want %q", i, got[i].Text, tc.words[i])
				}
				if got[i].Tag != want {
					t.Errorf("token %d (%q) tag = %q, want %q", i, tc.words[i], got[i].Tag, want)
				}
			}
		})
	}
}

func TestTagWithEntries(t *testing.T) {
	t.Parallel()

	tagger := New(WithEntries(map[string]string{"Garden": "JJ"}))
	got, err := tagger.Tag(context.Background(), []string{"a", "garden", "party"})
	if err != nil {
		t.Fatalf("Tag: unexpected error: %v", err)
	}
	if got[1].Tag != "JJ" {
		t.Errorf("garden tag = %q, want JJ", got[1].Tag)
	}
}

func TestTagCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New().Tag(ctx, []string{"word"}); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
