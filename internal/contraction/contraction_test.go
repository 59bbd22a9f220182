package contraction

import (
	"testing"
)

func TestExpand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"basic", "I don't think it's fair.", "I do not think it is fair."},
		{"cannot", "He can't go.", "He cannot go."},
		{"won't", "They won't stop.", "They will not stop."},
		{"leading capital", "Don't panic. It's fine.", "Do not panic. It is fine."},
		{"all caps", "I'M SURE THEY'RE HERE", "I AM SURE THEY ARE HERE"},
		{"lowercase i", "i'm tired", "I am tired"},
		{"typographic apostrophe", "We’re late and you’ve noticed.", "We are late and you have noticed."},
		{"bare forms expanded", "I dont know why theyre here", "I do not know why they are here"},
		{"possessive its untouched", "The dog wagged its tail.", "The dog wagged its tail."},
		{"possessive noun untouched", "John's car isn't red.", "John's car is not red."},
		{"ordinary words untouched", "We were well and the cant was his wont.", "We were well and the cant was his wont."},
		{"embedded substring untouched", "Cartoons are fun.", "Cartoons are fun."},
		{"no generic n't rule", "The ain't form stays.", "The ain't form stays."},
		{"would", "She'd rather we'd left.", "She would rather we would left."},
		{"decomposed text preserved", "The cafe\u0301 isn't open.", "The cafe\u0301 is not open."},
		{"empty", "", ""},
	}

	e := New()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := e.Expand(tc.in); got != tc.want {
				t.Errorf("Expand(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestExpandIdempotent(t *testing.T) {
	t.Parallel()

	e := New()
	for _, s := range []string{
		"I don't think it's fair.",
		"THEY'LL say we've got it, won't they?",
		"Let's see what's there's and who's who.",
		"Plain text with no contractions at all.",
	} {
		once := e.Expand(s)
		if twice := e.Expand(once); twice != once {
			t.Errorf("Expand not idempotent for %q: once=%q twice=%q", s, once, twice)
		}
		if n := e.Count(once); n != 0 {
			t.Errorf("Count(%q) = %d after expansion, want 0", once, n)
		}
	}
}

func TestCount(t *testing.T) {
	t.Parallel()

	if got := New().Count("I'm sure you're right, aren't you?"); got != 3 {
		t.Errorf("Count = %d, want 3", got)
	}
}
