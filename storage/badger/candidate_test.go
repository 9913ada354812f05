package badger

import (
	"context"
	"testing"

	"github.com/poiesic/termgraph/core"
	"github.com/poiesic/termgraph/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCandidateLifecycle(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	added, err := repos.Candidates.AddCandidate(ctx, &core.TermCandidate{
		TermOriginal:   "Green",
		TermNormalized: "green",
		DocumentId:     "doc-1",
		Confidence:     0.65,
	})
	require.NoError(t, err)
	assert.NotZero(t, added.Id)
	assert.Equal(t, core.CandidateStatusPending, added.Status)
	assert.Equal(t, 1, added.Frequency)

	found, err := repos.Candidates.FindCandidate(ctx, "green", "doc-1")
	require.NoError(t, err)
	assert.Equal(t, added.Id, found.Id)

	_, err = repos.Candidates.FindCandidate(ctx, "green", "")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	found.Frequency++
	_, err = repos.Candidates.UpdateCandidate(ctx, found)
	require.NoError(t, err)

	got, err := repos.Candidates.GetCandidate(ctx, added.Id)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Frequency)

	_, err = repos.Candidates.AddCandidate(ctx, &core.TermCandidate{TermNormalized: "green", DocumentId: "doc-1"})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	_, err = repos.Candidates.UpdateCandidate(ctx, &core.TermCandidate{Id: 9999, TermNormalized: "x"})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCandidateIDsAreUnique(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	seen := make(map[core.ID]bool)
	for _, term := range []string{"alpha", "beta", "gamma"} {
		c, err := repos.Candidates.AddCandidate(ctx, &core.TermCandidate{TermNormalized: term})
		require.NoError(t, err)
		assert.False(t, seen[c.Id])
		seen[c.Id] = true
	}
}

func TestListCandidates(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	_, err := repos.Candidates.AddCandidate(ctx, &core.TermCandidate{TermNormalized: "green", Scope: core.Scope{Team: "sales"}})
	require.NoError(t, err)
	_, err = repos.Candidates.AddCandidate(ctx, &core.TermCandidate{TermNormalized: "red", Status: core.CandidateStatusRejected})
	require.NoError(t, err)
	_, err = repos.Candidates.AddCandidate(ctx, &core.TermCandidate{TermNormalized: "blue", Frequency: 5})
	require.NoError(t, err)

	pending, err := repos.Candidates.ListCandidates(ctx, storage.CandidateFilter{Status: core.CandidateStatusPending})
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	sales, err := repos.Candidates.ListCandidates(ctx, storage.CandidateFilter{Scope: core.Scope{Team: "sales"}})
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, "green", sales[0].TermNormalized)

	frequent, err := repos.Candidates.ListCandidates(ctx, storage.CandidateFilter{MinFrequency: 2})
	require.NoError(t, err)
	require.Len(t, frequent, 1)
	assert.Equal(t, "blue", frequent[0].TermNormalized)
}

func TestReviews(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	r, err := repos.Reviews.AddReview(ctx, &core.DefinitionReview{
		CandidateId: 3,
		ReviewerId:  "alice",
		Decision:    core.ReviewDecisionRejected,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, r.Id)
	assert.False(t, r.CreatedAt.IsZero())

	reviews, err := repos.Reviews.ListReviews(ctx, 3)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, "alice", reviews[0].ReviewerId)

	none, err := repos.Reviews.ListReviews(ctx, 4)
	require.NoError(t, err)
	assert.Empty(t, none)
}
