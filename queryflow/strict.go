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

	"github.com/poiesic/termgraph/core"
	"github.com/poiesic/termgraph/resolve"
)

// StrictFailureLead opens every strict failure message.
const StrictFailureLead = "The request cannot be answered until internal terminology is clarified:"

// strictFailureReasons collects every reason the request must be blocked.
func strictFailureReasons(policy resolve.Policy, ambiguities []resolve.Ambiguity, strictGrounding bool, resolved []resolve.ResolvedConcept) []string {
	var reasons []string
	if policy == resolve.PolicyStrict {
		for _, a := range ambiguities {
			reasons = append(reasons, a.Reason)
		}
	}
	if strictGrounding {
		if missing := criticalWithoutDefinition(resolved); len(missing) > 0 {
			reasons = append(reasons, "Critical concepts have no approved definition for this scope and time: "+strings.Join(missing, ", ")+".")
		}
	}
	return reasons
}

func criticalWithoutDefinition(resolved []resolve.ResolvedConcept) []string {
	var keys []string
	for _, rc := range resolved {
		if rc.Criticality == core.CriticalityCritical && !rc.HasDefinition() && !slices.Contains(keys, rc.ConceptKey) {
			keys = append(keys, rc.ConceptKey)
		}
	}
	slices.Sort(keys)
	return keys
}

func formatStrictFailure(reasons []string) string {
	var b strings.Builder
	b.WriteString(StrictFailureLead)
	for _, r := range reasons {
		b.WriteString("\n- ")
		b.WriteString(r)
	}
	return b.String()
}
