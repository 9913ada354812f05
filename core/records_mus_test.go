package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTermCandidateMUS_RoundTrip(t *testing.T) {
	now := time.Date(2025, 2, 3, 4, 5, 6, 7000, time.UTC)
	in := TermCandidate{
		Id:             42,
		TermOriginal:   "Green",
		TermNormalized: "green",
		Contexts:       []string{"internally we call this green", ""},
		Frequency:      3,
		SourceType:     "slack",
		DocumentId:     "doc-1",
		Scope:          Scope{Team: "sales", Role: "pm"},
		Confidence:     0.65,
		Status:         CandidateStatusPending,
		InsertedAt:     now,
	}

	bs := make([]byte, TermCandidateMUS.Size(in))
	n := TermCandidateMUS.Marshal(in, bs)
	require.Equal(t, len(bs), n)

	out, read, err := TermCandidateMUS.Unmarshal(bs)
	require.NoError(t, err)
	assert.Equal(t, n, read)
	assert.Equal(t, in, out)
	assert.True(t, out.ReviewedAt.IsZero())
}

func TestDefinitionVersionMUS_Window(t *testing.T) {
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	in := DefinitionVersion{
		Id:         DefinitionVersionID(1, 2),
		ConceptId:  1,
		Version:    2,
		Definition: "Release gate passed",
		Status:     DefinitionStatusApproved,
		Confidence: 1,
		Window:     Window{ValidFrom: from},
	}

	bs := make([]byte, DefinitionVersionMUS.Size(in))
	DefinitionVersionMUS.Marshal(in, bs)
	out, _, err := DefinitionVersionMUS.Unmarshal(bs)
	require.NoError(t, err)
	assert.Equal(t, in, out)
	assert.True(t, out.Window.ValidTo.IsZero())
}

func TestRecordMUS_Truncated(t *testing.T) {
	in := Concept{Id: 7, Key: "GREEN_STATUS", Label: "Green status", Status: ConceptStatusApproved}
	bs := make([]byte, ConceptMUS.Size(in))
	ConceptMUS.Marshal(in, bs)

	_, _, err := ConceptMUS.Unmarshal(bs[:len(bs)/2])
	require.ErrorIs(t, err, ErrCorruptRecord)
}
