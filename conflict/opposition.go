package conflict

import (
	"sort"
	"strings"

	"github.com/BaSui01/councilflow/internal/textkit"
)

// antonymPairs are decision verbs that pull in opposite directions. A
// pair fires only when each side of the antonym appears exclusively in
// one position; a text weighing both options ("adopt vs reject") does
// not count as taking either side.
var antonymPairs = [][2]string{
	{"adopt", "reject"},
	{"accept", "reject"},
	{"approve", "deny"},
	{"approve", "reject"},
	{"build", "buy"},
	{"increase", "decrease"},
	{"expand", "reduce"},
	{"expand", "cut"},
	{"now", "later"},
	{"proceed", "delay"},
	{"proceed", "pause"},
	{"ship", "delay"},
	{"start", "stop"},
	{"keep", "remove"},
	{"centralize", "decentralize"},
}

// disagreementMarkers are phrases that state disagreement explicitly.
// Matched as substrings of the normalized position text, so "disagree"
// also covers "disagreement". Bare "against" is excluded: "guard
// against outages" is not dissent.
var disagreementMarkers = []string{
	"disagree",
	"oppose",
	"push back",
	"object to",
	"cannot support",
	"cant support",
	"must not",
	"veto",
	"vote against",
	"advise against",
	"recommend against",
	"strongly against",
}

// negationTokens flip the polarity of a position. Contractions arrive
// apostrophe-folded from the tokenizer.
var negationTokens = map[string]bool{
	"not": true, "no": true, "never": true, "cannot": true,
	"dont": true, "doesnt": true, "didnt": true, "wont": true, "cant": true,
	"shouldnt": true, "wouldnt": true, "couldnt": true, "isnt": true, "arent": true,
}

// opposingPositions classifies two position texts as opposing. The
// second return value carries the antonym dimension name ("adopt-vs-
// reject") when that route matched, empty otherwise.
func opposingPositions(a, b string) (bool, string) {
	ta := tokenSet(a)
	tb := tokenSet(b)

	for _, pair := range antonymPairs {
		x, y := pair[0], pair[1]
		aTakesX := ta[x] && !ta[y]
		aTakesY := ta[y] && !ta[x]
		bTakesX := tb[x] && !tb[y]
		bTakesY := tb[y] && !tb[x]
		if (aTakesX && bTakesY) || (aTakesY && bTakesX) {
			return true, x + "-vs-" + y
		}
	}

	na := textkit.NormalizePhrase(a)
	nb := textkit.NormalizePhrase(b)
	for _, marker := range disagreementMarkers {
		if strings.Contains(na, marker) || strings.Contains(nb, marker) {
			return true, ""
		}
	}

	// One side negated, same subject: a restatement with opposite
	// polarity ("require MFA" / "do not require MFA").
	if hasNegation(ta) != hasNegation(tb) {
		if textkit.Jaccard(textkit.ContentSet(a), textkit.ContentSet(b)) >= subjectOverlapFloor {
			return true, ""
		}
	}

	return false, ""
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range textkit.Tokens(s) {
		set[tok] = true
	}
	return set
}

func hasNegation(tokens map[string]bool) bool {
	for tok := range tokens {
		if negationTokens[tok] {
			return true
		}
	}
	return false
}

// dimensionName names the axis a qualifying pair disagrees on: the
// antonym pair when one matched, else the dominant content token the
// two positions share, else a generic fallback.
func dimensionName(a, b, antonymName string) string {
	if antonymName != "" {
		return antonymName
	}
	shared := sharedContent(a, b)
	if len(shared) > 0 {
		return dominantToken(shared, a, b)
	}
	return "position"
}

func sharedContent(a, b string) map[string]bool {
	bs := textkit.ContentSet(b)
	shared := make(map[string]bool)
	for tok := range textkit.ContentSet(a) {
		if bs[tok] {
			shared[tok] = true
		}
	}
	return shared
}

// dominantToken picks the shared token occurring most often across
// both texts, ties broken alphabetically.
func dominantToken(shared map[string]bool, a, b string) string {
	counts := make(map[string]int, len(shared))
	for _, tok := range textkit.Tokens(a) {
		if shared[tok] {
			counts[tok]++
		}
	}
	for _, tok := range textkit.Tokens(b) {
		if shared[tok] {
			counts[tok]++
		}
	}

	ordered := make([]string, 0, len(counts))
	for tok := range counts {
		ordered = append(ordered, tok)
	}
	sort.Strings(ordered)

	best, bestCount := "", 0
	for _, tok := range ordered {
		if counts[tok] > bestCount {
			best, bestCount = tok, counts[tok]
		}
	}
	return best
}
