package textkit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokens(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"lowercases and splits", "Ship It Now", []string{"ship", "it", "now"}},
		{"strips punctuation", "user-experience, cost!", []string{"user", "experience", "cost"}},
		{"keeps digits", "migrate 2 regions", []string{"migrate", "2", "regions"}},
		{"joins contractions", "We shouldn't ship", []string{"we", "shouldnt", "ship"}},
		{"empty input", "", nil},
		{"only punctuation", "?!,.", nil},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Tokens(tt.input))
		})
	}
}

func TestContentSet_DropsStopwords(t *testing.T) {
	t.Parallel()

	set := ContentSet("We should not adopt the new vendor")
	assert.Equal(t, map[string]bool{"adopt": true, "new": true, "vendor": true}, set)
}

func TestNormalizePhrase(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "user experience", NormalizePhrase("User-Experience"))
	assert.Equal(t, "user experience", NormalizePhrase("  user   EXPERIENCE "))
	assert.Equal(t, "", NormalizePhrase("..."))
}

func TestJaccard(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "adopt vendor", "adopt vendor", 1.0},
		{"disjoint", "adopt vendor", "reduce spend", 0.0},
		{"partial", "adopt vendor quickly", "adopt vendor", 2.0 / 3.0},
		{"both empty", "", "", 0.0},
		{"one empty", "adopt", "", 0.0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Jaccard(ContentSet(tt.a), ContentSet(tt.b))
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestJaccard_Symmetric(t *testing.T) {
	t.Parallel()

	a := ContentSet("latency cost security")
	b := ContentSet("security roadmap")
	assert.Equal(t, Jaccard(a, b), Jaccard(b, a))
}

func TestSplitSentences(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "periods and questions",
			input: "Adopt the vendor. Can we afford it? Decide by Friday.",
			want:  []string{"Adopt the vendor.", "Can we afford it?", "Decide by Friday."},
		},
		{
			name:  "newlines split bullets",
			input: "- run a pilot\n- review the results",
			want:  []string{"- run a pilot", "- review the results"},
		},
		{
			name:  "trailing fragment without delimiter",
			input: "First point. second point",
			want:  []string{"First point.", "second point"},
		},
		{
			name:  "empty input",
			input: "   ",
			want:  nil,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, SplitSentences(tt.input))
		})
	}
}
