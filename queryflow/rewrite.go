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
	"slices"
	"strings"
	"time"

	"github.com/poiesic/termgraph/core"
	"github.com/poiesic/termgraph/resolve"
)

// Section markers of a rewritten query.
const (
	InternalMeaningMarker    = "[INTERNAL_MEANING]"
	GraphRelationshipsMarker = "[GRAPH_RELATIONSHIPS]"
)

// renderRewrite appends the internal meaning of resolved concepts and any
// relationship hints to the raw query. The relationship section is left out
// when there are no lines.
func renderRewrite(query string, scope core.Scope, at time.Time, resolved []resolve.ResolvedConcept, graphLines []string) string {
	var b strings.Builder
	b.WriteString(query)
	b.WriteString("\n\n")
	b.WriteString(InternalMeaningMarker)
	b.WriteString("\ncontext_scope: ")
	b.WriteString(scope.String())
	b.WriteString("\neffective_at: ")
	b.WriteString(at.UTC().Format(time.RFC3339))

	var meanings []string
	for _, rc := range resolved {
		def := "(definition missing)"
		if rc.Definition != nil {
			def = *rc.Definition
		}
		line := rc.ConceptKey + ": " + def
		if !slices.Contains(meanings, line) {
			meanings = append(meanings, line)
		}
	}
	if len(meanings) == 0 {
		b.WriteString("\n- (no internal terms resolved)")
	}
	for _, m := range meanings {
		b.WriteString("\n- ")
		b.WriteString(m)
	}

	if len(graphLines) > 0 {
		b.WriteString("\n\n")
		b.WriteString(GraphRelationshipsMarker)
		for _, l := range graphLines {
			b.WriteString("\n- ")
			b.WriteString(l)
		}
	}
	return b.String()
}
