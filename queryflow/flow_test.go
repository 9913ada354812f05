package queryflow

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/poiesic/termgraph/ai/mock"
	"github.com/poiesic/termgraph/core"
	"github.com/poiesic/termgraph/resolve"
	"github.com/poiesic/termgraph/storage"
	"github.com/poiesic/termgraph/storage/badger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store    storage.ConceptRepository
	resolver *resolve.Resolver
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { repos.Close() })
	r, err := resolve.NewResolver(repos.Concepts)
	require.NoError(t, err)
	return &fixture{store: repos.Concepts, resolver: r}
}

func (fx *fixture) concept(t *testing.T, key string, crit core.Criticality, definition string, aliases ...string) *core.Concept {
	t.Helper()
	ctx := context.Background()
	c, err := fx.store.UpsertConcept(ctx, &core.Concept{
		Key:         key,
		Label:       key,
		Status:      core.ConceptStatusApproved,
		Criticality: crit,
	})
	require.NoError(t, err)
	for _, a := range aliases {
		_, err := fx.store.AddAlias(ctx, &core.ConceptAlias{
			ConceptId:       c.Id,
			Alias:           a,
			AliasNormalized: a,
			Confidence:      0.5,
		})
		require.NoError(t, err)
	}
	if definition != "" {
		_, err := fx.store.AddDefinitionVersion(ctx, &core.DefinitionVersion{
			ConceptId:  c.Id,
			Version:    1,
			Definition: definition,
			Confidence: 0.9,
		})
		require.NoError(t, err)
	}
	return c
}

func (fx *fixture) flow(t *testing.T, opts ...Option) *Flow {
	t.Helper()
	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	f, err := NewFlow(fx.resolver, opts...)
	require.NoError(t, err)
	return f
}

func TestNewFlow(t *testing.T) {
	_, err := NewFlow(nil)
	assert.Equal(t, ErrResolverRequired, err)

	fx := newFixture(t)
	f, err := NewFlow(fx.resolver, WithLogger(nil), WithClock(nil))
	require.NoError(t, err)
	assert.NotNil(t, f)
}

func TestRun_ResolvesWithoutRewrite(t *testing.T) {
	fx := newFixture(t)
	green := fx.concept(t, "GREEN_STATUS", core.CriticalityNormal, "All release gates passed", "green")
	f := fx.flow(t)

	query := "Je to GREEN status pro release gate?"
	res, err := f.Run(context.Background(), Request{Query: query})
	require.NoError(t, err)

	assert.Equal(t, query, res.ExpandedQuery)
	assert.Equal(t, query, res.Interpretation.RewrittenQuery)
	assert.Contains(t, res.Interpretation.DetectedTerms, "green")
	assert.Contains(t, res.Interpretation.DetectedTerms, "release gate")
	require.Len(t, res.Interpretation.Concepts, 1)
	assert.Equal(t, green.Id, res.Interpretation.Concepts[0].ConceptId)
	assert.Equal(t, []core.ID{core.DefinitionVersionID(green.Id, 1)}, res.Interpretation.DefinitionVersionIds)
	assert.Equal(t, testNow, res.Interpretation.EffectiveAt)
	assert.Equal(t, resolve.PolicyAsk, res.Interpretation.AmbiguityPolicy)
	assert.NotContains(t, res.UnresolvedTerms, "green")
	assert.Contains(t, res.UnresolvedTerms, "release gate")
	assert.Empty(t, res.Ambiguities)
	assert.Nil(t, res.StrictFailureMessage)
	assert.False(t, res.Bypassed)
	assert.GreaterOrEqual(t, res.Stats.InterpretationMs, 0.0)
}

func TestRun_AmbiguityPolicy(t *testing.T) {
	fx := newFixture(t)
	fx.concept(t, "A", core.CriticalityNormal, "first meaning", "green")
	fx.concept(t, "B", core.CriticalityNormal, "second meaning", "green")
	f := fx.flow(t)

	t.Run("strict blocks", func(t *testing.T) {
		res, err := f.Run(context.Background(), Request{Query: "is it green", AmbiguityPolicy: resolve.PolicyStrict})
		require.NoError(t, err)
		require.Len(t, res.Ambiguities, 1)
		assert.Equal(t, []string{"A", "B"}, res.Ambiguities[0].ConceptKeys)
		require.NotNil(t, res.StrictFailureMessage)
		assert.True(t, strings.HasPrefix(*res.StrictFailureMessage, StrictFailureLead))
		assert.Contains(t, *res.StrictFailureMessage, "clarification")
		assert.Contains(t, *res.StrictFailureMessage, "\n- ")
	})

	t.Run("show both does not block", func(t *testing.T) {
		res, err := f.Run(context.Background(), Request{Query: "is it green", AmbiguityPolicy: resolve.PolicyShowBoth})
		require.NoError(t, err)
		assert.Len(t, res.Ambiguities, 1)
		assert.Nil(t, res.StrictFailureMessage)
	})

	t.Run("unknown policy falls back to ask", func(t *testing.T) {
		res, err := f.Run(context.Background(), Request{Query: "is it green", AmbiguityPolicy: "loud"})
		require.NoError(t, err)
		assert.Equal(t, resolve.PolicyAsk, res.Interpretation.AmbiguityPolicy)
		assert.Nil(t, res.StrictFailureMessage)
	})
}

func TestRun_StrictGrounding(t *testing.T) {
	fx := newFixture(t)
	fx.concept(t, "PAYOUT_WINDOW", core.CriticalityCritical, "", "payout")
	fx.concept(t, "GREEN_STATUS", core.CriticalityCritical, "All gates passed", "green")
	f := fx.flow(t)

	res, err := f.Run(context.Background(), Request{Query: "green payout today", StrictGrounding: true})
	require.NoError(t, err)
	require.NotNil(t, res.StrictFailureMessage)
	assert.Contains(t, *res.StrictFailureMessage, "PAYOUT_WINDOW")
	assert.NotContains(t, *res.StrictFailureMessage, "GREEN_STATUS")

	res, err = f.Run(context.Background(), Request{Query: "green payout today"})
	require.NoError(t, err)
	assert.Nil(t, res.StrictFailureMessage)
}

func TestRun_StrictReasonsAccumulate(t *testing.T) {
	fx := newFixture(t)
	fx.concept(t, "A", core.CriticalityCritical, "", "green")
	fx.concept(t, "B", core.CriticalityNormal, "second", "green")
	f := fx.flow(t)

	res, err := f.Run(context.Background(), Request{
		Query:           "green",
		AmbiguityPolicy: resolve.PolicyStrict,
		StrictGrounding: true,
	})
	require.NoError(t, err)
	require.NotNil(t, res.StrictFailureMessage)
	assert.Equal(t, 2, strings.Count(*res.StrictFailureMessage, "\n- "))
}

func TestRun_GraphRewrite(t *testing.T) {
	fx := newFixture(t)
	green := fx.concept(t, "GREEN_STATUS", core.CriticalityNormal, "All release gates passed", "green")
	gate := fx.concept(t, "RELEASE_GATE", core.CriticalityNormal, "")
	fx.concept(t, "PAYOUT", core.CriticalityNormal, "", "payout")
	f := fx.flow(t)
	ctx := context.Background()

	t.Run("no relationships omits section", func(t *testing.T) {
		res, err := f.Run(ctx, Request{Query: "green payout", GraphEnabled: true, Scope: core.Scope{Team: "qa"}})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(res.ExpandedQuery, "green payout\n\n"+InternalMeaningMarker))
		assert.Contains(t, res.ExpandedQuery, "context_scope: team=qa")
		assert.Contains(t, res.ExpandedQuery, "effective_at: 2026-01-15T12:00:00Z")
		assert.Contains(t, res.ExpandedQuery, "- GREEN_STATUS: All release gates passed")
		assert.Contains(t, res.ExpandedQuery, "- PAYOUT: (definition missing)")
		assert.NotContains(t, res.ExpandedQuery, GraphRelationshipsMarker)
		assert.Equal(t, res.ExpandedQuery, res.Interpretation.RewrittenQuery)
	})

	_, err := fx.store.AddRelationship(ctx, &core.Relationship{
		FromConceptId: green.Id,
		ToConceptId:   gate.Id,
		RelationType:  "implies",
	})
	require.NoError(t, err)

	t.Run("relationships rendered", func(t *testing.T) {
		res, err := f.Run(ctx, Request{Query: "green", GraphEnabled: true})
		require.NoError(t, err)
		assert.Contains(t, res.ExpandedQuery, "\n\n"+GraphRelationshipsMarker+"\n- GREEN_STATUS implies RELEASE_GATE")
		assert.Contains(t, res.ExpandedQuery, "context_scope: (none)")
	})

	t.Run("graph disabled keeps raw query", func(t *testing.T) {
		res, err := f.Run(ctx, Request{Query: "green"})
		require.NoError(t, err)
		assert.Equal(t, "green", res.ExpandedQuery)
		assert.Zero(t, res.Stats.GraphExpansionMs)
	})
}

func TestRun_NothingResolvedWithGraph(t *testing.T) {
	fx := newFixture(t)
	f := fx.flow(t)

	res, err := f.Run(context.Background(), Request{Query: "plain question", GraphEnabled: true})
	require.NoError(t, err)
	assert.Contains(t, res.ExpandedQuery, InternalMeaningMarker)
	assert.Contains(t, res.ExpandedQuery, "(no internal terms resolved)")
	assert.NotContains(t, res.ExpandedQuery, GraphRelationshipsMarker)
}

func TestRun_EffectiveAt(t *testing.T) {
	fx := newFixture(t)
	c, err := fx.store.UpsertConcept(context.Background(), &core.Concept{Key: "FREEZE", Status: core.ConceptStatusApproved})
	require.NoError(t, err)
	_, err = fx.store.AddAlias(context.Background(), &core.ConceptAlias{
		ConceptId:       c.Id,
		Alias:           "freeze",
		AliasNormalized: "freeze",
		Window: core.Window{
			ValidFrom: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			ValidTo:   time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		},
	})
	require.NoError(t, err)
	f := fx.flow(t)

	res, err := f.Run(context.Background(), Request{Query: "freeze"})
	require.NoError(t, err)
	assert.Len(t, res.Interpretation.Concepts, 1)

	res, err = f.Run(context.Background(), Request{
		Query:       "freeze",
		EffectiveAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Empty(t, res.Interpretation.Concepts)
	assert.Equal(t, []string{"freeze"}, res.UnresolvedTerms)
}

func TestRun_Fallback(t *testing.T) {
	fx := newFixture(t)
	fx.concept(t, "ZX9_LAUNCH", core.CriticalityNormal, "The ZX-9 product launch", "zx-9")

	newClassifier := func(terms []string, err error) *mock.MockTermClassifier {
		c := mock.NewMockTermClassifier()
		c.ClassifyTermsFunc = func(context.Context, string) ([]string, error) { return terms, err }
		return c
	}

	t.Run("merges proposed terms and resolves again", func(t *testing.T) {
		classifier := newClassifier([]string{"ZX-9"}, nil)
		reg := prometheus.NewRegistry()
		metrics := NewMetrics(reg)
		f := fx.flow(t, WithClassifier(classifier), WithMetrics(metrics))

		res, err := f.Run(context.Background(), Request{Query: "is the launch done", RewriteEnabled: true})
		require.NoError(t, err)
		assert.Equal(t, 1, classifier.CallCount())
		assert.Equal(t, []string{"zx-9"}, res.Interpretation.FallbackTerms)
		assert.Contains(t, res.Interpretation.DetectedTerms, "zx-9")
		require.Len(t, res.Interpretation.Concepts, 1)
		assert.Equal(t, "ZX9_LAUNCH", res.Interpretation.Concepts[0].ConceptKey)
		assert.Equal(t, 1.0, testutil.ToFloat64(metrics.fallback.WithLabelValues(outcomeTerms)))
	})

	t.Run("not invoked when rewrite disabled", func(t *testing.T) {
		classifier := newClassifier([]string{"ZX-9"}, nil)
		f := fx.flow(t, WithClassifier(classifier))

		res, err := f.Run(context.Background(), Request{Query: "is the launch done"})
		require.NoError(t, err)
		assert.Zero(t, classifier.CallCount())
		assert.Empty(t, res.Interpretation.Concepts)
	})

	t.Run("not invoked when something resolved", func(t *testing.T) {
		classifier := newClassifier([]string{"ZX-9"}, nil)
		f := fx.flow(t, WithClassifier(classifier))

		_, err := f.Run(context.Background(), Request{Query: "zx-9 status", RewriteEnabled: true})
		require.NoError(t, err)
		assert.Zero(t, classifier.CallCount())
	})

	t.Run("not invoked without classifier", func(t *testing.T) {
		f := fx.flow(t)
		res, err := f.Run(context.Background(), Request{Query: "is the launch done", RewriteEnabled: true})
		require.NoError(t, err)
		assert.Empty(t, res.Interpretation.Concepts)
	})

	t.Run("classifier error is swallowed", func(t *testing.T) {
		classifier := newClassifier(nil, errors.New("upstream timeout"))
		metrics := NewMetrics(prometheus.NewRegistry())
		f := fx.flow(t, WithClassifier(classifier), WithMetrics(metrics))

		res, err := f.Run(context.Background(), Request{Query: "is the launch done", RewriteEnabled: true})
		require.NoError(t, err)
		assert.Equal(t, 1, classifier.CallCount())
		assert.Empty(t, res.Interpretation.Concepts)
		assert.Empty(t, res.Interpretation.FallbackTerms)
		assert.Equal(t, 1.0, testutil.ToFloat64(metrics.fallback.WithLabelValues(outcomeError)))
	})

	t.Run("empty proposal", func(t *testing.T) {
		classifier := newClassifier([]string{}, nil)
		metrics := NewMetrics(prometheus.NewRegistry())
		f := fx.flow(t, WithClassifier(classifier), WithMetrics(metrics))

		_, err := f.Run(context.Background(), Request{Query: "is the launch done", RewriteEnabled: true})
		require.NoError(t, err)
		assert.Equal(t, 1.0, testutil.ToFloat64(metrics.fallback.WithLabelValues(outcomeEmpty)))
	})
}

type brokenStore struct {
	resolve.ConceptReader
}

func (brokenStore) ListActiveAliases(context.Context, ...string) ([]*core.ConceptAlias, error) {
	return nil, errors.New("store unreachable")
}

func TestRun_PropagatesLookupFailure(t *testing.T) {
	r, err := resolve.NewResolver(brokenStore{})
	require.NoError(t, err)
	f, err := NewFlow(r)
	require.NoError(t, err)

	_, err = f.Run(context.Background(), Request{Query: "green"})
	assert.ErrorIs(t, err, resolve.ErrLookupFailed)
}

func TestRun_StrictFailureMetric(t *testing.T) {
	fx := newFixture(t)
	fx.concept(t, "A", core.CriticalityNormal, "", "green")
	fx.concept(t, "B", core.CriticalityNormal, "", "green")
	metrics := NewMetrics(prometheus.NewRegistry())
	f := fx.flow(t, WithMetrics(metrics))

	_, err := f.Run(context.Background(), Request{Query: "green", AmbiguityPolicy: resolve.PolicyStrict})
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.strictFailures))
}

type recordingMonitor struct {
	stages []string
}

func (m *recordingMonitor) Start(string)                                { m.stages = append(m.stages, "start") }
func (m *recordingMonitor) AfterExtraction([]string)                    { m.stages = append(m.stages, "extract") }
func (m *recordingMonitor) AfterResolution(*resolve.Resolution)         { m.stages = append(m.stages, "resolve") }
func (m *recordingMonitor) AfterFallback([]string, error)               { m.stages = append(m.stages, "fallback") }
func (m *recordingMonitor) AfterAmbiguityDetection([]resolve.Ambiguity) { m.stages = append(m.stages, "ambiguity") }
func (m *recordingMonitor) AfterGraphExpansion([]string)                { m.stages = append(m.stages, "graph") }
func (m *recordingMonitor) Finish(*Result)                              { m.stages = append(m.stages, "finish") }

func TestRunWithMonitor(t *testing.T) {
	fx := newFixture(t)
	fx.concept(t, "ZX9", core.CriticalityNormal, "", "zx-9")
	classifier := mock.NewMockTermClassifier()
	classifier.ClassifyTermsFunc = func(context.Context, string) ([]string, error) { return []string{"zx-9"}, nil }
	f := fx.flow(t, WithClassifier(classifier))

	m := &recordingMonitor{}
	_, err := f.RunWithMonitor(context.Background(), Request{Query: "launch", RewriteEnabled: true, GraphEnabled: true}, m)
	require.NoError(t, err)
	assert.Equal(t, []string{"start", "extract", "resolve", "fallback", "resolve", "ambiguity", "graph", "finish"}, m.stages)
}

func TestBypass(t *testing.T) {
	res := Bypass("raw question")
	assert.True(t, res.Bypassed)
	assert.Equal(t, "raw question", res.ExpandedQuery)
	assert.Equal(t, "raw question", res.Interpretation.RewrittenQuery)
	assert.Nil(t, res.StrictFailureMessage)
	assert.Empty(t, res.Ambiguities)
}

func TestParseEffectiveAt(t *testing.T) {
	assert.Equal(t, testNow, ParseEffectiveAt("", testNow))
	assert.Equal(t, testNow, ParseEffectiveAt("yesterday", testNow))
	assert.Equal(t, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), ParseEffectiveAt("2026-03-01T12:00:00+02:00", testNow))
}
