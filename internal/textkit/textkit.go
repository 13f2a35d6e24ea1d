// Package textkit provides the text primitives shared by conflict
// detection and synthesis: tokenization, stopword filtering, sentence
// splitting, and set similarity.
//
// All helpers are pure functions over plain strings. Tokenization is
// deliberately simple (lowercase, punctuation stripped); deliberation
// positions are short prose, not documents.
package textkit

import (
	"strings"
	"unicode"
)

// stopwords are function words excluded from content-token sets so that
// overlap scores reflect subject matter rather than grammar.
var stopwords = map[string]bool{
	"a": true, "an": true, "the": true,
	"and": true, "or": true, "but": true, "if": true, "then": true, "so": true,
	"we": true, "our": true, "us": true, "i": true, "you": true, "they": true,
	"it": true, "its": true, "this": true, "that": true, "these": true, "those": true,
	"is": true, "are": true, "was": true, "were": true, "be": true, "been": true, "being": true,
	"to": true, "of": true, "in": true, "on": true, "for": true, "with": true,
	"as": true, "at": true, "by": true, "from": true, "into": true, "over": true,
	"will": true, "would": true, "should": true, "could": true, "can": true,
	"may": true, "might": true, "must": true,
	"do": true, "does": true, "did": true,
	"have": true, "has": true, "had": true,
	"not": true, "no": true, "cannot": true,
	"dont": true, "doesnt": true, "didnt": true, "wont": true, "cant": true,
	"shouldnt": true, "wouldnt": true, "couldnt": true, "isnt": true, "arent": true,
}

// sentenceDelimiters end a sentence. Newlines count as delimiters so
// bullet lists split into one sentence per line.
var sentenceDelimiters = map[rune]bool{
	'.': true, '。': true,
	'!': true, '！': true,
	'?': true, '？': true,
	'\n': true,
}

// IsStopword reports whether the already-lowercased word is a function
// word that carries no subject matter.
func IsStopword(w string) bool {
	return stopwords[w]
}

// Tokens lowercases s, replaces every non-letter non-digit rune with a
// space, and returns the resulting fields. Apostrophes are dropped
// rather than spaced so contractions stay one token ("don't" becomes
// "dont"). Stopwords are kept; callers that want content tokens only
// should use ContentSet.
func Tokens(s string) []string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case r == '\'' || r == '’':
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Fields(b.String())
}

// ContentSet returns the set of content tokens in s: Tokens minus
// stopwords.
func ContentSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range Tokens(s) {
		if !stopwords[tok] {
			set[tok] = true
		}
	}
	return set
}

// NormalizePhrase collapses s to its canonical token form: lowercase
// tokens joined by single spaces. "User-Experience" and "user
// experience" normalize to the same phrase.
func NormalizePhrase(s string) string {
	return strings.Join(Tokens(s), " ")
}

// Jaccard returns |a ∩ b| / |a ∪ b|, or 0 when both sets are empty.
func Jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	overlap := 0
	for tok := range a {
		if b[tok] {
			overlap++
		}
	}
	union := len(a) + len(b) - overlap
	if union == 0 {
		return 0
	}
	return float64(overlap) / float64(union)
}

// SplitSentences splits text on sentence-ending punctuation and
// newlines, trimming whitespace and dropping empty fragments.
func SplitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			sentences = append(sentences, s)
		}
		current.Reset()
	}

	for _, r := range text {
		current.WriteRune(r)
		if sentenceDelimiters[r] {
			flush()
		}
	}
	flush()

	return sentences
}
