package terms

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "lowercase and trim", in: "  GREEN Status ", want: "green status"},
		{name: "punctuation becomes space", in: "release-gate? (yes!)", want: "release-gate yes"},
		{name: "keeps underscore and colon", in: "KPI:Q3_target", want: "kpi:q3_target"},
		{name: "collapses whitespace", in: "a\t\tb\n\nc", want: "a b c"},
		{name: "compatibility composition", in: "ﬁnance ２０２５", want: "finance 2025"},
		{name: "non latin letters kept", in: "Je to ZELENÝ stav", want: "je to zelený stav"},
		{name: "empty", in: "", want: ""},
		{name: "only punctuation", in: "?!.,", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"Je to GREEN status pro release gate?",
		"ﬁnance … Q3 ２０２５ a.k.a. \"the number\"",
		"  mixed\tWHITE   space ",
		"Ünïcödé ÅÄÖ ß",
		"",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestNGrams(t *testing.T) {
	got := NGrams([]string{"a", "b", "c"}, 2)
	assert.Equal(t, []string{"a", "a b", "b", "b c", "c"}, got)
	assert.Empty(t, NGrams(nil, 3))
}

func TestExtractCandidates_Coverage(t *testing.T) {
	got := ExtractCandidates("Je to GREEN status pro release gate?")

	assert.Contains(t, got, "green")
	assert.Contains(t, got, "green status")
	assert.Contains(t, got, "release gate")
	assert.Contains(t, got, "status pro release")
	assert.IsNonDecreasing(t, got)
}

func TestExtractCandidates_DropsSingleCharacters(t *testing.T) {
	got := ExtractCandidates("a b")
	assert.Equal(t, []string{"a b"}, got)
}

func TestExtractCandidates_CapsTokens(t *testing.T) {
	got := ExtractCandidates("check SLA_P1 now")
	assert.Contains(t, got, "sla_p1")
}

func TestExtractCandidates_Empty(t *testing.T) {
	assert.Empty(t, ExtractCandidates(""))
	assert.Empty(t, ExtractCandidates("   ?! "))
}

func TestMerge(t *testing.T) {
	merged, added := Merge([]string{"green"}, []string{"GREEN", "Release Gate", "x"})
	assert.Equal(t, []string{"green", "release gate"}, merged)
	assert.Equal(t, []string{"release gate"}, added)
}
