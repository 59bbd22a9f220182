// Package contraction expands informal English contractions ("won't",
// "I'm", "they've") into their full multi-word forms.
//
// Only a closed set of known contractions is recognised. There is no generic
// "n't" suffix rule, and the possessive "'s" is left alone except for a small
// set of pronouns where it can only mean "is". Typographic apostrophes are
// accepted wherever an ASCII apostrophe is. Apostrophe-less spellings ("dont",
// "theyre") are expanded only where the bare form is not itself an English
// word, so "its", "well", "were" and "cant" pass through untouched.
//
// Expansion is deterministic and idempotent: an expanded text contains no
// recognised contraction.
package contraction

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// entry is a single contraction.
type entry struct {
	// form is the lowercase contraction using an ASCII apostrophe.
	form string
	// expansion replaces the contraction.
	expansion string
	// bareOK allows the form with the apostrophe dropped.
	bareOK bool
}

var entries = []entry{
	{"won't", "will not", false},
	{"can't", "cannot", false},
	{"shan't", "shall not", true},
	{"don't", "do not", true},
	{"doesn't", "does not", true},
	{"didn't", "did not", true},
	{"shouldn't", "should not", true},
	{"wouldn't", "would not", true},
	{"couldn't", "could not", true},
	{"mustn't", "must not", true},
	{"needn't", "need not", true},
	{"isn't", "is not", true},
	{"aren't", "are not", true},
	{"wasn't", "was not", true},
	{"weren't", "were not", true},
	{"haven't", "have not", true},
	{"hasn't", "has not", true},
	{"hadn't", "had not", true},
	{"i'm", "I am", false},
	{"you're", "you are", true},
	{"we're", "we are", false},
	{"they're", "they are", true},
	{"he's", "he is", false},
	{"she's", "she is", false},
	{"it's", "it is", false},
	{"that's", "that is", true},
	{"there's", "there is", true},
	{"here's", "here is", false},
	{"what's", "what is", true},
	{"who's", "who is", false},
	{"where's", "where is", false},
	{"let's", "let us", false},
	{"i'll", "I will", false},
	{"you'll", "you will", true},
	{"he'll", "he will", false},
	{"she'll", "she will", false},
	{"it'll", "it will", false},
	{"we'll", "we will", false},
	{"they'll", "they will", true},
	{"i've", "I have", true},
	{"you've", "you have", true},
	{"we've", "we have", true},
	{"they've", "they have", true},
	{"i'd", "I would", false},
	{"you'd", "you would", true},
	{"he'd", "he would", false},
	{"she'd", "she would", false},
	{"we'd", "we would", false},
	{"they'd", "they would", true},
}

// apostrophes lists every rune accepted as an apostrophe.
const apostrophes = `'’‘ʼ`

// Expander expands contractions. It is immutable and safe for concurrent use.
type Expander struct {
	re    *regexp.Regexp
	byKey map[string]string
}

// New builds an Expander for the built-in contraction set.
func New() *Expander {
	forms := make([]string, 0, len(entries))
	byKey := make(map[string]string, len(entries))
	for _, e := range entries {
		stem, suffix, _ := strings.Cut(e.form, "'")
		apos := "[" + apostrophes + "]"
		if e.bareOK {
			apos += "?"
		}
		forms = append(forms, regexp.QuoteMeta(stem)+apos+regexp.QuoteMeta(suffix))
		byKey[stem+suffix] = e.expansion
	}
	// Longest first so alternation never stops at a shorter prefix.
	sort.Slice(forms, func(i, j int) bool { return len(forms[i]) > len(forms[j]) })

	return &Expander{
		re:    regexp.MustCompile(`(?i)\b(?:` + strings.Join(forms, "|") + `)\b`),
		byKey: byKey,
	}
}

// Expand returns s with every recognised contraction replaced by its
// expansion. Everything outside the matched contractions is preserved byte
// for byte, including decomposed characters.
func (e *Expander) Expand(s string) string {
	return e.re.ReplaceAllStringFunc(s, func(m string) string {
		exp, ok := e.byKey[key(m)]
		if !ok {
			return m
		}
		return matchCase(m, exp)
	})
}

// Count returns the number of contractions Expand would replace in s.
func (e *Expander) Count(s string) int {
	return len(e.re.FindAllStringIndex(s, -1))
}

func key(m string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(m) {
		if strings.ContainsRune(apostrophes, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// matchCase carries the casing of the matched contraction over to its
// expansion: all caps stays all caps, a leading capital stays a leading
// capital, and lowercase input keeps the expansion as written (so "i'm"
// becomes "I am").
func matchCase(match, expansion string) string {
	if isAllUpper(match) {
		// Casers are stateful; never share one between goroutines.
		return cases.Upper(language.English).String(expansion)
	}
	first, _ := utf8.DecodeRuneInString(match)
	if unicode.IsUpper(first) {
		r, size := utf8.DecodeRuneInString(expansion)
		return string(unicode.ToUpper(r)) + expansion[size:]
	}
	return expansion
}

func isAllUpper(s string) bool {
	letters := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			if !unicode.IsUpper(r) {
				return false
			}
			letters++
		}
	}
	return letters > 1
}
