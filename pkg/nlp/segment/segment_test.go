package segment

import (
	"slices"
	"testing"
)

func TestSplit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"single", "He can go.", []string{"He can go."}},
		{"two sentences", "It rained. We stayed inside.", []string{"It rained.", "We stayed inside."}},
		{"question and exclamation", "Why? Because! Done.", []string{"Why?", "Because!", "Done."}},
		{"abbreviation", "Dr. Smith arrived. He sat.", []string{"Dr. Smith arrived.", "He sat."}},
		{"initial", "J. R. Tolkien wrote books.", []string{"J. R. Tolkien wrote books."}},
		{"lowercase continuation", "See fig. three for details.", []string{"See fig. three for details."}},
		{"closing quote", `She said "Stop." Then she left.`, []string{`She said "Stop."`, "Then she left."}},
		{"glued boundary", "It ended.Then it began.", []string{"It ended.", "Then it began."}},
		{"glued after short word", "Hi.There we go.", []string{"Hi.", "There we go."}},
		{"glued strong terminal", "Go!Now we run.", []string{"Go!", "Now we run."}},
		{"glued dotted abbreviation", "The U.S.Army marched.", []string{"The U.S.Army marched."}},
		{"decimal", "Pi is 3.14 roughly. Yes.", []string{"Pi is 3.14 roughly.", "Yes."}},
		{"no terminal punctuation", "just words here", []string{"just words here"}},
		{"whitespace only", "  \n ", nil},
		{"extra whitespace", "  One.   Two.  ", []string{"One.", "Two."}},
	}

	seg := New()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := seg.Split(tc.in)
			if !slices.Equal(got, tc.want) {
				t.Errorf("Split(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestSplitStableUnderSpaceInsertion(t *testing.T) {
	t.Parallel()

	// Inserting a space after glued terminal punctuation must not change the
	// sentence count.
	pairs := [][2]string{
		{"It ended.Then it began.", "It ended. Then it began."},
		{"Ask Mrs.Smith now.", "Ask Mrs. Smith now."},
		{"It ended.then it began.", "It ended. then it began."},
		{"The U.S.Army marched.", "The U. S. Army marched."},
		{"Hi.There we go.", "Hi. There we go."},
		{"Ok?No way.", "Ok? No way."},
		{"Go!Now we run.", "Go! Now we run."},
		{"I will not go.Later we talk.", "I will not go. Later we talk."},
		{"Use e.g.Python here.", "Use e. g. Python here."},
		{"See the U.S. Army now.", "See the U. S. Army now."},
	}
	seg := New()
	for _, p := range pairs {
		a, b := len(seg.Split(p[0])), len(seg.Split(p[1]))
		if a != b {
			t.Errorf("Split(%q) has %d sentences but Split(%q) has %d", p[0], a, p[1], b)
		}
	}
}
