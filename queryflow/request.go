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
	"strings"
	"time"

	"github.com/poiesic/termgraph/core"
	"github.com/poiesic/termgraph/resolve"
)

// Request carries a raw query and the switches of one pipeline run.
type Request struct {
	Query string
	Scope core.Scope

	// EffectiveAt is the instant validity windows are evaluated at.
	// Zero means now.
	EffectiveAt time.Time

	AmbiguityPolicy resolve.Policy
	RewriteEnabled  bool
	GraphEnabled    bool
	StrictGrounding bool
}

// Interpretation describes how the query was understood.
type Interpretation struct {
	DetectedTerms        []string                  `json:"detectedTerms"`
	FallbackTerms        []string                  `json:"fallbackTerms,omitempty"`
	Concepts             []resolve.ResolvedConcept `json:"concepts"`
	DefinitionVersionIds []core.ID                 `json:"definitionVersionIds"`
	RewrittenQuery       string                    `json:"rewrittenQuery"`
	ContextScope         core.Scope                `json:"contextScope"`
	EffectiveAt          time.Time                 `json:"effectiveAt"`
	AmbiguityPolicy      resolve.Policy            `json:"ambiguityPolicy"`
}

// Stats holds stage timings in milliseconds.
type Stats struct {
	InterpretationMs float64 `json:"interpretationMs"`
	GraphExpansionMs float64 `json:"graphExpansionMs"`
}

// Result is the outcome of one pipeline run.
//
// ExpandedQuery replaces the raw query downstream. A non-nil
// StrictFailureMessage means the caller should show the message instead of
// answering.
type Result struct {
	ExpandedQuery        string              `json:"expandedQuery"`
	Interpretation       Interpretation      `json:"interpretation"`
	Ambiguities          []resolve.Ambiguity `json:"ambiguities"`
	UnresolvedTerms      []string            `json:"unresolvedTerms"`
	StrictFailureMessage *string             `json:"strictFailureMessage"`
	Stats                Stats               `json:"stats"`
	Bypassed             bool                `json:"bypassed,omitempty"`
}

// Bypass returns the result used when the kill switch is on: the raw query
// passes through untouched.
func Bypass(query string) *Result {
	return &Result{
		ExpandedQuery: query,
		Interpretation: Interpretation{
			DetectedTerms:        []string{},
			Concepts:             []resolve.ResolvedConcept{},
			DefinitionVersionIds: []core.ID{},
			RewrittenQuery:       query,
		},
		Ambiguities:     []resolve.Ambiguity{},
		UnresolvedTerms: []string{},
		Bypassed:        true,
	}
}

// ParseEffectiveAt parses an RFC3339 timestamp. Empty or invalid input
// yields now in UTC.
func ParseEffectiveAt(s string, now time.Time) time.Time {
	s = strings.TrimSpace(s)
	if s != "" {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t.UTC()
		}
	}
	return now.UTC()
}

func durationMs(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
