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
	"fmt"
	"slices"
	"strings"
)

// Policy decides how ambiguous terms are treated by the caller.
type Policy string

const (
	// PolicyStrict blocks the request until ambiguous terms are clarified.
	PolicyStrict Policy = "strict"
	// PolicyShowBoth answers with every candidate meaning.
	PolicyShowBoth Policy = "show_both"
	// PolicyAsk asks the user to pick a meaning.
	PolicyAsk Policy = "ask"
)

// ParsePolicy maps a policy name to a Policy. Unknown or empty names
// yield PolicyAsk.
func ParsePolicy(s string) Policy {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case PolicyStrict, PolicyShowBoth:
		return p
	default:
		return PolicyAsk
	}
}

// Ambiguity is a term that resolved to more than one concept.
type Ambiguity struct {
	Term        string   `json:"term"`
	ConceptKeys []string `json:"conceptKeys"`
	Reason      string   `json:"reason"`
}

// BuildAmbiguities groups resolved entries by normalized alias and reports
// every term mapping to more than one distinct concept key, ordered by term.
// It only reports; resolved is not modified.
func BuildAmbiguities(resolved []ResolvedConcept, policy Policy) []Ambiguity {
	groups := make(map[string][]string)
	for _, rc := range resolved {
		keys := groups[rc.AliasNormalized]
		if !slices.Contains(keys, rc.ConceptKey) {
			groups[rc.AliasNormalized] = append(keys, rc.ConceptKey)
		}
	}

	out := []Ambiguity{}
	for term, keys := range groups {
		if len(keys) < 2 {
			continue
		}
		slices.Sort(keys)
		out = append(out, Ambiguity{
			Term:        term,
			ConceptKeys: keys,
			Reason:      ambiguityReason(term, keys, policy),
		})
	}
	slices.SortFunc(out, func(a, b Ambiguity) int { return strings.Compare(a.Term, b.Term) })
	return out
}

func ambiguityReason(term string, keys []string, policy Policy) string {
	joined := strings.Join(keys, ", ")
	if policy == PolicyStrict {
		return fmt.Sprintf("Term %q maps to several internal concepts (%s); clarification is required before answering.", term, joined)
	}
	return fmt.Sprintf("Term %q can refer to several internal concepts: %s.", term, joined)
}
