package storage

import (
	"testing"
	"time"

	"github.com/poiesic/termgraph/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalID(t *testing.T) {
	tests := []struct {
		name string
		id   core.ID
	}{
		{"zero ID", core.ID(0)},
		{"small ID", core.ID(42)},
		{"large ID", core.ID(18446744073709551615)}, // max uint64
		{"content-based ID", core.ConceptIDForKey("GREEN_STATUS")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalID(tt.id)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalID(data)
			require.NoError(t, err)
			assert.Equal(t, tt.id, decoded)
		})
	}
}

func TestUnmarshalID_Empty(t *testing.T) {
	_, err := UnmarshalID(nil)
	require.ErrorIs(t, err, ErrSerializationFailed)
}

func TestMarshalUnmarshalAlias(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	alias := &core.ConceptAlias{
		Id:              core.AliasID(1, "green", core.Scope{Team: "compliance"}),
		ConceptId:       1,
		Alias:           "GREEN",
		AliasNormalized: "green",
		Scope:           core.Scope{Team: "compliance"},
		Status:          core.AliasStatusActive,
		Confidence:      0.9,
		Window:          core.Window{ValidFrom: from, ValidTo: from.AddDate(0, 1, 0)},
		InsertedAt:      from,
	}

	decoded, err := UnmarshalAlias(MarshalAlias(alias))
	require.NoError(t, err)
	assert.Equal(t, alias, decoded)
}

func TestMarshalUnmarshalReview(t *testing.T) {
	review := &core.DefinitionReview{
		Id:          "f47ac10b-58cc-4372-a567-0e02b2c3d479",
		CandidateId: 9,
		ReviewerId:  "alice",
		Decision:    core.ReviewDecisionRejected,
		Notes:       "not internal slang",
		CreatedAt:   time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC),
	}

	decoded, err := UnmarshalReview(MarshalReview(review))
	require.NoError(t, err)
	assert.Equal(t, review, decoded)
	assert.Zero(t, decoded.ConceptId)
}

func TestUnmarshalCandidate_Corrupt(t *testing.T) {
	_, err := UnmarshalCandidate([]byte{0xff})
	require.ErrorIs(t, err, ErrSerializationFailed)
}

func TestCandidateFilter_Matches(t *testing.T) {
	c := &core.TermCandidate{
		Status:    core.CandidateStatusPending,
		Frequency: 3,
		Scope:     core.Scope{Team: "sales"},
	}

	assert.True(t, CandidateFilter{}.Matches(c))
	assert.True(t, CandidateFilter{Status: core.CandidateStatusPending, MinFrequency: 3}.Matches(c))
	assert.False(t, CandidateFilter{Status: core.CandidateStatusApproved}.Matches(c))
	assert.False(t, CandidateFilter{MinFrequency: 4}.Matches(c))
	assert.True(t, CandidateFilter{Scope: core.Scope{Team: "sales"}}.Matches(c))
	assert.False(t, CandidateFilter{Scope: core.Scope{Team: "ops"}}.Matches(c))
}
