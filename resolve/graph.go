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
	"slices"
	"time"

	"github.com/poiesic/termgraph/core"
)

// ExpandGraph renders approved relationships leaving the given concepts as
// "<fromKey> <relationType> <toKey>" lines, sorted and deduplicated.
// Relationships are filtered by scope and time like aliases. Edges whose
// endpoints cannot be looked up are skipped. No concepts yields no lines.
func (r *Resolver) ExpandGraph(ctx context.Context, conceptIDs []core.ID, scope core.Scope, at time.Time) ([]string, error) {
	if len(conceptIDs) == 0 {
		return nil, nil
	}

	rels, err := r.store.ListRelationshipsFrom(ctx, conceptIDs...)
	if err != nil {
		return nil, err
	}

	var edges []*core.Relationship
	ids := slices.Clone(conceptIDs)
	for _, rel := range rels {
		if rel.Status != core.RelationshipStatusApproved || !core.Applies(rel.Scope, rel.Window, scope, at) {
			continue
		}
		edges = append(edges, rel)
		if !slices.Contains(ids, rel.ToConceptId) {
			ids = append(ids, rel.ToConceptId)
		}
	}
	if len(edges) == 0 {
		return nil, nil
	}

	concepts, err := r.store.GetConcepts(ctx, ids...)
	if err != nil {
		return nil, err
	}
	keys := make(map[core.ID]string, len(concepts))
	for _, c := range concepts {
		keys[c.Id] = c.Key
	}

	lines := make([]string, 0, len(edges))
	for _, rel := range edges {
		from, to := keys[rel.FromConceptId], keys[rel.ToConceptId]
		if from == "" || to == "" {
			r.logger.Debug("skipping relationship with unknown endpoint", "relationship", rel.Id)
			continue
		}
		line := from + " " + rel.RelationType + " " + to
		if !slices.Contains(lines, line) {
			lines = append(lines, line)
		}
	}
	slices.Sort(lines)
	return lines, nil
}
