package seed

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/poiesic/termgraph/core"
	"github.com/poiesic/termgraph/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
concepts:
  - key: green_status
    label: Green status
    criticality: critical
    aliases:
      - alias: Green
      - alias: green
        scope: {team: qa}
        confidence: 0.8
    definitions:
      - definition: "  All release gates passed.  "
        confidence: 0.9
        validFrom: 2026-01-01T00:00:00Z
      - definition: Gates passed and sign-off recorded.
        version: 5
        scope: {team: qa}
    relationships:
      - type: implies
        to: release_gate
  - key: RELEASE_GATE
    aliases:
      - alias: gate
    definitions:
      - definition: A checkpoint a release must clear.
`

func newRepos(t *testing.T) *badger.Repositories {
	t.Helper()
	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { repos.Close() })
	return repos
}

func TestParse(t *testing.T) {
	doc, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)
	require.Len(t, doc.Concepts, 2)

	green := doc.Concepts[0]
	assert.Equal(t, "green_status", green.Key)
	assert.Equal(t, core.CriticalityCritical, green.Criticality)
	require.Len(t, green.Aliases, 2)
	assert.Equal(t, "qa", green.Aliases[1].Scope.Team)
	require.NotNil(t, green.Aliases[1].Confidence)
	assert.InDelta(t, 0.8, *green.Aliases[1].Confidence, 1e-9)
	assert.Nil(t, green.Aliases[0].Confidence)
	assert.True(t, green.Definitions[0].ValidFrom.Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "release_gate", green.Relationships[0].To)
}

func TestParse_Errors(t *testing.T) {
	t.Run("unknown field", func(t *testing.T) {
		_, err := Parse(strings.NewReader("concepts:\n  - key: A\n    colour: red\n"))
		assert.ErrorIs(t, err, ErrInvalidDocument)
	})

	t.Run("missing key", func(t *testing.T) {
		_, err := Parse(strings.NewReader("concepts:\n  - label: nothing\n"))
		assert.ErrorIs(t, err, ErrInvalidDocument)
	})

	t.Run("empty input", func(t *testing.T) {
		doc, err := Parse(strings.NewReader(""))
		require.NoError(t, err)
		assert.Empty(t, doc.Concepts)
	})
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	doc, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, doc.Concepts, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestApply(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()

	doc, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)

	stats, err := Apply(ctx, repos.Concepts, doc)
	require.NoError(t, err)
	assert.Equal(t, Stats{Concepts: 2, Aliases: 3, Definitions: 3, Relationships: 1}, *stats)

	green, err := repos.Concepts.FindConceptByKey(ctx, "GREEN_STATUS")
	require.NoError(t, err)
	assert.Equal(t, core.ConceptStatusApproved, green.Status)
	assert.Equal(t, core.CriticalityCritical, green.Criticality)
	assert.Equal(t, DefaultSeedAuthor, green.DefinedBy)

	gate, err := repos.Concepts.FindConceptByKey(ctx, "RELEASE_GATE")
	require.NoError(t, err)
	assert.Equal(t, "RELEASE_GATE", gate.Label)
	assert.Equal(t, core.CriticalityNormal, gate.Criticality)

	aliases, err := repos.Concepts.ListActiveAliases(ctx, "green")
	require.NoError(t, err)
	assert.Len(t, aliases, 2)

	defs, err := repos.Concepts.ListDefinitionVersions(ctx, green.Id)
	require.NoError(t, err)
	require.Len(t, defs, 2)
	assert.Equal(t, 1, defs[0].Version)
	assert.Equal(t, "All release gates passed.", defs[0].Definition)
	assert.Equal(t, 5, defs[1].Version)
	assert.InDelta(t, 1.0, defs[1].Confidence, 1e-9)

	rels, err := repos.Concepts.ListRelationshipsFrom(ctx, green.Id)
	require.NoError(t, err)
	require.Len(t, rels, 1)
	assert.Equal(t, gate.Id, rels[0].ToConceptId)
	assert.Equal(t, "implies", rels[0].RelationType)
}

func TestApply_Idempotent(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()

	doc, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)

	_, err = Apply(ctx, repos.Concepts, doc)
	require.NoError(t, err)
	stats, err := Apply(ctx, repos.Concepts, doc)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Aliases)
	assert.Equal(t, 0, stats.Definitions)
	assert.Equal(t, 6, stats.Skipped)

	all, err := repos.Concepts.ListConcepts(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestApply_RelationshipToStoredConcept(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()

	_, err := repos.Concepts.UpsertConcept(ctx, &core.Concept{Key: "EXISTING", Status: core.ConceptStatusApproved})
	require.NoError(t, err)

	doc := &Document{Concepts: []Concept{{
		Key:           "NEW",
		Relationships: []Relationship{{Type: "partOf", To: "existing"}},
	}}}
	stats, err := Apply(ctx, repos.Concepts, doc)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Relationships)
}

func TestApply_UnknownTargetRollsBack(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()

	doc := &Document{Concepts: []Concept{{
		Key:           "ORPHAN",
		Aliases:       []Alias{{Alias: "orphan"}},
		Relationships: []Relationship{{Type: "implies", To: "NOWHERE"}},
	}}}
	_, err := Apply(ctx, repos.Concepts, doc)
	assert.ErrorIs(t, err, ErrUnknownConcept)

	all, err := repos.Concepts.ListConcepts(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
	aliases, err := repos.Concepts.ListActiveAliases(ctx, "orphan")
	require.NoError(t, err)
	assert.Empty(t, aliases)
}
