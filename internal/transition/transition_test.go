package transition

import (
	"math/rand/v2"
	"slices"
	"strings"
	"testing"
)

// fixedRand returns canned values.
type fixedRand struct {
	f float64
	n int
}

func (r fixedRand) Float64() float64 { return r.f }
func (r fixedRand) IntN(int) int     { return r.n }

func TestInsertNeverOnFirstSentence(t *testing.T) {
	t.Parallel()

	in := New(1.0)
	rng := rand.New(rand.NewPCG(1, 2))
	for range 100 {
		got, ok := in.Insert("The results were consistent across trials.", 0, rng)
		if ok || got != "The results were consistent across trials." {
			t.Fatalf("ordinal 0 received a marker: %q", got)
		}
	}
}

func TestInsert(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		prob     float64
		sentence string
		ordinal  int
		rng      fixedRand
		want     string
		inserted bool
	}{
		{
			name: "inserted and lowercased",
			prob: 1, sentence: "The results were consistent.", ordinal: 1,
			rng: fixedRand{f: 0.5, n: 0},
			want: "Moreover, the results were consistent.", inserted: true,
		},
		{
			name: "acronym keeps case",
			prob: 1, sentence: "NASA confirmed the launch window.", ordinal: 2,
			rng: fixedRand{f: 0, n: 4},
			want: "Therefore, NASA confirmed the launch window.", inserted: true,
		},
		{
			name: "probability not met",
			prob: 0.3, sentence: "The results were consistent.", ordinal: 1,
			rng: fixedRand{f: 0.3},
			want: "The results were consistent.",
		},
		{
			name: "zero probability",
			prob: 0, sentence: "The results were consistent.", ordinal: 1,
			rng: fixedRand{f: 0},
			want: "The results were consistent.",
		},
		{
			name: "leading quote",
			prob: 1, sentence: `"Stop the car now," she said.`, ordinal: 1,
			want: `"Stop the car now," she said.`,
		},
		{
			name: "lowercase start",
			prob: 1, sentence: "then the results were consistent.", ordinal: 1,
			want: "then the results were consistent.",
		},
		{
			name: "too short",
			prob: 1, sentence: "The end came.", ordinal: 1,
			want: "The end came.",
		},
		{
			name: "pronoun start",
			prob: 1, sentence: "She finished the experiment early.", ordinal: 1,
			want: "She finished the experiment early.",
		},
		{
			name: "first person",
			prob: 1, sentence: "I finished the experiment early.", ordinal: 1,
			want: "I finished the experiment early.",
		},
		{
			name: "existing connective",
			prob: 1, sentence: "However, the experiment ended early.", ordinal: 1,
			want: "However, the experiment ended early.",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, ok := New(tc.prob).Insert(tc.sentence, tc.ordinal, tc.rng)
			if got != tc.want || ok != tc.inserted {
				t.Errorf("Insert(%q, %d) = (%q, %v), want (%q, %v)", tc.sentence, tc.ordinal, got, ok, tc.want, tc.inserted)
			}
		})
	}
}

func TestInsertUsesOnlyConfiguredMarkers(t *testing.T) {
	t.Parallel()

	markers := []string{"Accordingly,", "In turn,"}
	in := New(1, WithMarkers(markers), WithMinWords(1))
	rng := rand.New(rand.NewPCG(7, 7))
	for range 50 {
		got, ok := in.Insert("The sample grew.", 3, rng)
		if !ok {
			t.Fatal("expected insertion at probability 1")
		}
		if !slices.ContainsFunc(markers, func(m string) bool { return strings.HasPrefix(got, m+" the sample") }) {
			t.Fatalf("unexpected output %q", got)
		}
	}
	if !slices.Equal(in.Markers(), markers) {
		t.Errorf("Markers() = %q, want %q", in.Markers(), markers)
	}
}

func TestDefaultMarkers(t *testing.T) {
	t.Parallel()

	if len(DefaultMarkers) != 17 {
		t.Errorf("len(DefaultMarkers) = %d, want 17", len(DefaultMarkers))
	}
	for _, m := range DefaultMarkers {
		if !strings.HasSuffix(m, ",") {
			t.Errorf("marker %q does not end with a comma", m)
		}
	}
}
