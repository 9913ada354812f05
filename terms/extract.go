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

package terms

import (
	"regexp"
	"sort"
)

// MaxWindow is the longest word window produced by ExtractCandidates.
const MaxWindow = 3

var capsToken = regexp.MustCompile(`\b[A-Z][A-Z0-9_:\-]{2,}\b`)

// ExtractCandidates returns the sorted, deduplicated normalized candidate
// terms of a query. Terms of a single character are dropped.
func ExtractCandidates(query string) []string {
	seen := make(map[string]struct{})
	add := func(term string) {
		if len([]rune(term)) > 1 {
			seen[term] = struct{}{}
		}
	}

	for _, gram := range NGrams(Words(query), MaxWindow) {
		add(gram)
	}
	for _, token := range capsToken.FindAllString(query, -1) {
		add(Normalize(token))
	}

	return sortedKeys(seen)
}

// Merge adds extra terms, normalized, to a candidate set and returns the new
// sorted set together with the terms that were not already present.
func Merge(candidates []string, extra []string) (merged []string, added []string) {
	seen := make(map[string]struct{}, len(candidates)+len(extra))
	for _, c := range candidates {
		seen[c] = struct{}{}
	}
	for _, e := range extra {
		n := Normalize(e)
		if len([]rune(n)) <= 1 {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		added = append(added, n)
	}
	return sortedKeys(seen), added
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
