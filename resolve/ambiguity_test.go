package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePolicy(t *testing.T) {
	assert.Equal(t, PolicyStrict, ParsePolicy("strict"))
	assert.Equal(t, PolicyShowBoth, ParsePolicy(" SHOW_BOTH "))
	assert.Equal(t, PolicyAsk, ParsePolicy("ask"))
	assert.Equal(t, PolicyAsk, ParsePolicy(""))
	assert.Equal(t, PolicyAsk, ParsePolicy("whatever"))
}

func TestBuildAmbiguities(t *testing.T) {
	ambiguous := []ResolvedConcept{
		{AliasNormalized: "green", ConceptKey: "B"},
		{AliasNormalized: "green", ConceptKey: "A"},
		{AliasNormalized: "gate", ConceptKey: "RELEASE_GATE"},
	}

	t.Run("two concepts for one term", func(t *testing.T) {
		got := BuildAmbiguities(ambiguous, PolicyAsk)
		require.Len(t, got, 1)
		assert.Equal(t, "green", got[0].Term)
		assert.Equal(t, []string{"A", "B"}, got[0].ConceptKeys)
		assert.NotContains(t, got[0].Reason, "clarification")
	})

	t.Run("strict wording", func(t *testing.T) {
		got := BuildAmbiguities(ambiguous, PolicyStrict)
		require.Len(t, got, 1)
		assert.Contains(t, got[0].Reason, "clarification is required")
	})

	t.Run("single concept", func(t *testing.T) {
		got := BuildAmbiguities([]ResolvedConcept{{AliasNormalized: "green", ConceptKey: "A"}}, PolicyStrict)
		assert.Empty(t, got)
	})

	t.Run("same key twice is not ambiguous", func(t *testing.T) {
		got := BuildAmbiguities([]ResolvedConcept{
			{AliasNormalized: "green", ConceptKey: "A"},
			{AliasNormalized: "green", ConceptKey: "A"},
		}, PolicyAsk)
		assert.Empty(t, got)
	})

	t.Run("ordered by term", func(t *testing.T) {
		got := BuildAmbiguities([]ResolvedConcept{
			{AliasNormalized: "zeta", ConceptKey: "A"},
			{AliasNormalized: "zeta", ConceptKey: "B"},
			{AliasNormalized: "alpha", ConceptKey: "C"},
			{AliasNormalized: "alpha", ConceptKey: "D"},
		}, PolicyAsk)
		require.Len(t, got, 2)
		assert.Equal(t, "alpha", got[0].Term)
		assert.Equal(t, "zeta", got[1].Term)
	})
}
