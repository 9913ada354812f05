// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package queryflow

import (
	"context"
	"log/slog"
	"time"

	"github.com/poiesic/termgraph/ai"
	"github.com/poiesic/termgraph/core"
	"github.com/poiesic/termgraph/resolve"
	"github.com/poiesic/termgraph/terms"
)

// Flow composes extraction, resolution, fallback classification, ambiguity
// detection and graph expansion into one request cycle.
type Flow struct {
	resolver   *resolve.Resolver
	classifier ai.TermClassifier
	metrics    *Metrics
	clock      func() time.Time
	logger     *slog.Logger
}

// Option configures a Flow.
type Option func(*Flow) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(f *Flow) error {
		if logger == nil {
			logger = slog.Default()
		}
		f.logger = logger
		return nil
	}
}

// WithClassifier enables the LLM fallback. Without a classifier the
// fallback never runs, even when a request asks for rewriting.
func WithClassifier(classifier ai.TermClassifier) Option {
	return func(f *Flow) error {
		f.classifier = classifier
		return nil
	}
}

// WithMetrics records stage timings and outcomes.
func WithMetrics(metrics *Metrics) Option {
	return func(f *Flow) error {
		f.metrics = metrics
		return nil
	}
}

// WithClock overrides the source of the default effective time.
func WithClock(clock func() time.Time) Option {
	return func(f *Flow) error {
		if clock != nil {
			f.clock = clock
		}
		return nil
	}
}

// NewFlow creates a query flow over resolver.
func NewFlow(resolver *resolve.Resolver, opts ...Option) (*Flow, error) {
	if resolver == nil {
		return nil, ErrResolverRequired
	}
	f := &Flow{
		resolver: resolver,
		clock:    time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(f); err != nil {
			return nil, err
		}
	}
	f.logger = f.logger.With("component", "queryflow")
	return f, nil
}

// Run executes the pipeline for req.
// Only alias and definition lookup failures are returned; fallback and
// graph expansion failures are logged and the run continues without them.
func (f *Flow) Run(ctx context.Context, req Request) (*Result, error) {
	return f.RunWithMonitor(ctx, req, nil)
}

// RunWithMonitor executes the pipeline for req, reporting each stage to monitor.
func (f *Flow) RunWithMonitor(ctx context.Context, req Request, monitor Monitor) (*Result, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	monitor.Start(req.Query)

	started := time.Now()
	at := req.EffectiveAt
	if at.IsZero() {
		at = f.clock().UTC()
	}
	policy := resolve.ParsePolicy(string(req.AmbiguityPolicy))

	// 1. Extract
	candidates := terms.ExtractCandidates(req.Query)
	monitor.AfterExtraction(candidates)

	// 2. Resolve
	resolution, err := f.resolver.ResolveAliases(ctx, candidates, req.Scope, at)
	if err != nil {
		f.logger.Error("error resolving candidate terms", "err", err)
		return nil, err
	}
	monitor.AfterResolution(resolution)

	// 3. Fallback, at most one round
	var fallbackTerms []string
	if len(resolution.Resolved) == 0 && req.RewriteEnabled && f.classifier != nil {
		var added []string
		candidates, added = f.fallback(ctx, req.Query, candidates, monitor)
		if len(added) > 0 {
			fallbackTerms = added
			resolution, err = f.resolver.ResolveAliases(ctx, candidates, req.Scope, at)
			if err != nil {
				f.logger.Error("error resolving fallback terms", "err", err)
				return nil, err
			}
			monitor.AfterResolution(resolution)
		}
	}

	// 4. Ambiguity
	ambiguities := resolve.BuildAmbiguities(resolution.Resolved, policy)
	monitor.AfterAmbiguityDetection(ambiguities)
	interpretationTime := time.Since(started)
	f.metrics.observeInterpretation(interpretationTime)

	result := &Result{
		ExpandedQuery: req.Query,
		Interpretation: Interpretation{
			DetectedTerms:        candidates,
			FallbackTerms:        fallbackTerms,
			Concepts:             resolution.Resolved,
			DefinitionVersionIds: definitionVersionIDs(resolution.Resolved),
			ContextScope:         req.Scope,
			EffectiveAt:          at,
			AmbiguityPolicy:      policy,
		},
		Ambiguities:     ambiguities,
		UnresolvedTerms: resolution.UnresolvedTerms,
		Stats:           Stats{InterpretationMs: durationMs(interpretationTime)},
	}

	// 5. Strict failure
	if reasons := strictFailureReasons(policy, ambiguities, req.StrictGrounding, resolution.Resolved); len(reasons) > 0 {
		msg := formatStrictFailure(reasons)
		result.StrictFailureMessage = &msg
		f.metrics.strictFailure()
		f.logger.Info("query blocked pending clarification", "reasons", len(reasons))
	}

	// 6. Rewrite
	if req.GraphEnabled {
		graphStarted := time.Now()
		var lines []string
		if ids := resolution.ConceptIDs(); len(ids) > 0 {
			lines, err = f.resolver.ExpandGraph(ctx, ids, req.Scope, at)
			if err != nil {
				f.logger.Warn("graph expansion failed", "stage", "graph_expansion", "err", err)
				lines = nil
			}
		}
		monitor.AfterGraphExpansion(lines)
		graphTime := time.Since(graphStarted)
		f.metrics.observeGraph(graphTime)
		result.Stats.GraphExpansionMs = durationMs(graphTime)
		result.ExpandedQuery = renderRewrite(req.Query, req.Scope, at, resolution.Resolved, lines)
	}
	result.Interpretation.RewrittenQuery = result.ExpandedQuery

	monitor.Finish(result)
	return result, nil
}

// fallback asks the classifier for extra terms and merges them into
// candidates. Failures are logged and yield no new terms.
func (f *Flow) fallback(ctx context.Context, query string, candidates []string, monitor Monitor) ([]string, []string) {
	proposed, err := f.classifier.ClassifyTerms(ctx, query)
	if err != nil {
		f.logger.Warn("fallback classifier failed", "stage", ai.StageLLMFallback, "err", err)
		f.metrics.fallbackOutcome(outcomeError)
		monitor.AfterFallback(nil, err)
		return candidates, nil
	}

	merged, added := terms.Merge(candidates, proposed)
	if len(added) == 0 {
		f.logger.Warn("no fallback terms found", "stage", ai.StageLLMFallback)
		f.metrics.fallbackOutcome(outcomeEmpty)
	} else {
		f.logger.Debug("fallback proposed terms", "stage", ai.StageLLMFallback, "terms", added)
		f.metrics.fallbackOutcome(outcomeTerms)
	}
	monitor.AfterFallback(added, nil)
	return merged, added
}

func definitionVersionIDs(resolved []resolve.ResolvedConcept) []core.ID {
	ids := []core.ID{}
	seen := make(map[core.ID]bool)
	for _, rc := range resolved {
		if rc.DefinitionVersionId == nil || seen[*rc.DefinitionVersionId] {
			continue
		}
		seen[*rc.DefinitionVersionId] = true
		ids = append(ids, *rc.DefinitionVersionId)
	}
	return ids
}
