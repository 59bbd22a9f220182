package tokenize

import (
	"slices"
	"testing"
)

func TestTokenize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"simple", "He can go.", []string{"He", "can", "go", "."}},
		{"negation clitic", "I don't know.", []string{"I", "do", "n't", "know", "."}},
		{"possessive", "John's book", []string{"John", "'s", "book"}},
		{"typographic possessive", "John’s book", []string{"John", "’s", "book"}},
		{"abbreviation kept", "Dr. Smith arrived.", []string{"Dr.", "Smith", "arrived", "."}},
		{"dotted abbreviation", "Fruit, e.g. apples.", []string{"Fruit", ",", "e.g.", "apples", "."}},
		{"quotes and parens", `She said "hi" (twice).`, []string{"She", "said", `"`, "hi", `"`, "(", "twice", ")", "."}},
		{"ellipsis", "Wait...", []string{"Wait", "..."}},
		{"question and exclamation", "Really?!", []string{"Really", "?", "!"}},
		{"hyphenated word", "A well-known fact.", []string{"A", "well-known", "fact", "."}},
		{"decimal number", "It costs 3.50 today.", []string{"It", "costs", "3.50", "today", "."}},
		{"empty", "   ", nil},
	}

	tok := New()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := tok.Tokenize(tc.in)
			if !slices.Equal(got, tc.want) {
				t.Errorf("Tokenize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestJoin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		tokens []string
		want   string
	}{
		{"closing punctuation", []string{"Hello", ",", "world", "!"}, "Hello, world!"},
		{"clitics", []string{"I", "do", "n't", "know", "John", "'s", "dog", "."}, "I don't know John's dog."},
		{"parens", []string{"a", "(", "b", ")", "c"}, "a (b) c"},
		{"straight quotes alternate", []string{"She", "said", `"`, "hi", `"`, "."}, `She said "hi".`},
		{"plural possessive", []string{"the", "students", "'", "books"}, "the students' books"},
		{"ellipsis", []string{"Wait", "..."}, "Wait..."},
		{"empty", nil, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Join(tc.tokens); got != tc.want {
				t.Errorf("Join(%q) = %q, want %q", tc.tokens, got, tc.want)
			}
		})
	}
}

func TestJoinRoundTripsSimpleSentences(t *testing.T) {
	t.Parallel()

	for _, s := range []string{
		"The quick brown fox jumps over the lazy dog.",
		"Is this, perhaps, a question?",
		"Dr. Smith visited the U.S. embassy.",
	} {
		if got := Join(New().Tokenize(s)); got != s {
			t.Errorf("Join(Tokenize(%q)) = %q", s, got)
		}
	}
}
