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

package resolve

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/poiesic/termgraph/core"
)

// ConceptReader is the read side of the concept store used by resolution.
// storage.ConceptRepository satisfies it.
type ConceptReader interface {
	GetConcepts(ctx context.Context, ids ...core.ID) ([]*core.Concept, error)
	ListActiveAliases(ctx context.Context, terms ...string) ([]*core.ConceptAlias, error)
	ListDefinitionVersions(ctx context.Context, conceptIDs ...core.ID) ([]*core.DefinitionVersion, error)
	ListRelationshipsFrom(ctx context.Context, conceptIDs ...core.ID) ([]*core.Relationship, error)
}

// ResolvedConcept is one (normalized alias, concept) match.
// DefinitionVersionId and Definition are nil when no definition applies.
type ResolvedConcept struct {
	ConceptId           core.ID          `json:"conceptId"`
	ConceptKey          string           `json:"conceptKey"`
	ConceptLabel        string           `json:"conceptLabel"`
	Alias               string           `json:"alias"`
	AliasNormalized     string           `json:"aliasNormalized"`
	DefinitionVersionId *core.ID         `json:"definitionVersionId"`
	Definition          *string          `json:"definition"`
	Confidence          float64          `json:"confidence"`
	Criticality         core.Criticality `json:"criticality"`
}

// HasDefinition reports whether a definition version was found.
func (rc ResolvedConcept) HasDefinition() bool {
	return rc.DefinitionVersionId != nil
}

// Resolution is the outcome of resolving a candidate set.
type Resolution struct {
	Resolved        []ResolvedConcept
	UnresolvedTerms []string
}

// ConceptIDs returns the distinct resolved concept IDs in first-seen order.
func (r *Resolution) ConceptIDs() []core.ID {
	seen := make(map[core.ID]bool, len(r.Resolved))
	ids := make([]core.ID, 0, len(r.Resolved))
	for _, rc := range r.Resolved {
		if !seen[rc.ConceptId] {
			seen[rc.ConceptId] = true
			ids = append(ids, rc.ConceptId)
		}
	}
	return ids
}

// Resolver resolves candidate terms and expands resolved concepts.
type Resolver struct {
	store  ConceptReader
	logger *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewResolver creates a resolver reading from store.
func NewResolver(store ConceptReader, opts ...Option) (*Resolver, error) {
	if store == nil {
		return nil, ErrConceptStoreRequired
	}
	r := &Resolver{
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	r.logger = r.logger.With("component", "resolver")
	return r, nil
}

// ResolveAliases matches normalized candidates against active aliases of
// approved concepts under the context scope at the effective time.
// A candidate without a surviving alias is reported as unresolved; that is
// not an error. Store failures are returned wrapped in ErrLookupFailed.
func (r *Resolver) ResolveAliases(ctx context.Context, candidates []string, scope core.Scope, at time.Time) (*Resolution, error) {
	result := &Resolution{
		Resolved:        []ResolvedConcept{},
		UnresolvedTerms: []string{},
	}
	if len(candidates) == 0 {
		return result, nil
	}

	aliases, err := r.store.ListActiveAliases(ctx, candidates...)
	if err != nil {
		return nil, fmt.Errorf("%w: aliases: %w", ErrLookupFailed, err)
	}

	applicable := make([]*core.ConceptAlias, 0, len(aliases))
	conceptIDs := make([]core.ID, 0, len(aliases))
	for _, a := range aliases {
		if !core.Applies(a.Scope, a.Window, scope, at) {
			continue
		}
		applicable = append(applicable, a)
		if !slices.Contains(conceptIDs, a.ConceptId) {
			conceptIDs = append(conceptIDs, a.ConceptId)
		}
	}

	concepts := make(map[core.ID]*core.Concept, len(conceptIDs))
	if len(conceptIDs) > 0 {
		found, err := r.store.GetConcepts(ctx, conceptIDs...)
		if err != nil {
			return nil, fmt.Errorf("%w: concepts: %w", ErrLookupFailed, err)
		}
		for _, c := range found {
			if c.Status == core.ConceptStatusApproved {
				concepts[c.Id] = c
			}
		}
	}

	// Best alias per (normalized alias, concept).
	type pairKey struct {
		norm      string
		conceptID core.ID
	}
	best := make(map[pairKey]*core.ConceptAlias)
	var approvedIDs []core.ID
	for _, a := range applicable {
		if concepts[a.ConceptId] == nil {
			continue
		}
		k := pairKey{a.AliasNormalized, a.ConceptId}
		if cur, ok := best[k]; !ok || a.Confidence > cur.Confidence {
			best[k] = a
		}
		if !slices.Contains(approvedIDs, a.ConceptId) {
			approvedIDs = append(approvedIDs, a.ConceptId)
		}
	}

	definitions := make(map[core.ID]*core.DefinitionVersion, len(approvedIDs))
	if len(approvedIDs) > 0 {
		defs, err := r.store.ListDefinitionVersions(ctx, approvedIDs...)
		if err != nil {
			return nil, fmt.Errorf("%w: definitions: %w", ErrLookupFailed, err)
		}
		for _, d := range defs {
			if d.Status != core.DefinitionStatusApproved || !core.Applies(d.Scope, d.Window, scope, at) {
				continue
			}
			if better(d, definitions[d.ConceptId]) {
				definitions[d.ConceptId] = d
			}
		}
	}

	matched := make(map[string]bool, len(best))
	for k, a := range best {
		c := concepts[k.conceptID]
		rc := ResolvedConcept{
			ConceptId:       c.Id,
			ConceptKey:      c.Key,
			ConceptLabel:    c.Label,
			Alias:           a.Alias,
			AliasNormalized: a.AliasNormalized,
			Confidence:      a.Confidence,
			Criticality:     c.Criticality,
		}
		if d := definitions[c.Id]; d != nil {
			id, text := d.Id, d.Definition
			rc.DefinitionVersionId = &id
			rc.Definition = &text
			rc.Confidence = d.Confidence
		}
		result.Resolved = append(result.Resolved, rc)
		matched[a.AliasNormalized] = true
	}
	slices.SortFunc(result.Resolved, func(a, b ResolvedConcept) int {
		if c := strings.Compare(a.AliasNormalized, b.AliasNormalized); c != 0 {
			return c
		}
		return strings.Compare(a.ConceptKey, b.ConceptKey)
	})

	for _, term := range candidates {
		if !matched[term] && !slices.Contains(result.UnresolvedTerms, term) {
			result.UnresolvedTerms = append(result.UnresolvedTerms, term)
		}
	}

	r.logger.Debug("resolved candidates",
		"candidates", len(candidates),
		"resolved", len(result.Resolved),
		"unresolved", len(result.UnresolvedTerms))
	return result, nil
}

// better reports whether d should replace cur as the current definition:
// higher confidence wins, then the later ValidFrom, then the higher version.
func better(d, cur *core.DefinitionVersion) bool {
	if cur == nil {
		return true
	}
	if d.Confidence != cur.Confidence {
		return d.Confidence > cur.Confidence
	}
	if !d.Window.ValidFrom.Equal(cur.Window.ValidFrom) {
		return d.Window.ValidFrom.After(cur.Window.ValidFrom)
	}
	return d.Version > cur.Version
}
