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

package ingestion

import (
	"regexp"
	"strings"

	"github.com/poiesic/termgraph/terms"
)

const (
	// PatternConfidence is assigned to terms found by a naming phrase.
	PatternConfidence = 0.65

	// MaxContextLength caps a stored context line, in runes.
	MaxContextLength = 500

	// MinFrequency is the occurrence count a word window needs to be proposed.
	MinFrequency = 3

	// MaxFrequencyCandidates caps the frequency candidates of one text.
	MaxFrequencyCandidates = 100

	frequencyWindow  = 2
	frequencyBase    = 0.2
	frequencyStep    = 0.05
	frequencyCeiling = 0.6
)

// Candidate is a term proposed by mining, before storage.
type Candidate struct {
	Term       string
	Normalized string
	Confidence float64
	Context    string
}

const quotedOrToken = `(?:"([^"\n]{2,64})"|'([^'\n]{2,64})'|“([^”\n]{2,64})”|([\p{L}\p{N}][\p{L}\p{N}_:\-]{1,63}))`

var namingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:internally\s+)?we\s+(?:internally\s+)?call\s+(?:this|it)\s+` + quotedOrToken),
	regexp.MustCompile(`(?i)(?:\baka\b\.?|\ba\.k\.a\.|=)\s*` + quotedOrToken),
}

// ExtractPatternCandidates scans text line by line for naming phrases.
// Each hit carries the source line as context.
func ExtractPatternCandidates(text string) []Candidate {
	var out []Candidate
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		for _, re := range namingPatterns {
			for _, m := range re.FindAllStringSubmatch(line, -1) {
				term := firstGroup(m)
				normalized := terms.Normalize(term)
				if len([]rune(normalized)) < 2 {
					continue
				}
				out = append(out, Candidate{
					Term:       term,
					Normalized: normalized,
					Confidence: PatternConfidence,
					Context:    truncateRunes(line, MaxContextLength),
				})
			}
		}
	}
	return out
}

// ExtractFrequencyCandidates counts normalized one and two word windows over
// the whole text and proposes those seen at least MinFrequency times. The
// first MaxFrequencyCandidates qualifying windows in order of first
// appearance are kept; they are not ranked by count.
func ExtractFrequencyCandidates(text string) []Candidate {
	counts := make(map[string]int)
	var order []string
	for _, gram := range terms.NGrams(terms.Words(text), frequencyWindow) {
		if counts[gram] == 0 {
			order = append(order, gram)
		}
		counts[gram]++
	}

	var out []Candidate
	for _, gram := range order {
		count := counts[gram]
		if count < MinFrequency || len([]rune(gram)) < 2 {
			continue
		}
		out = append(out, Candidate{
			Term:       gram,
			Normalized: gram,
			Confidence: min(frequencyCeiling, frequencyBase+frequencyStep*float64(count)),
		})
		if len(out) == MaxFrequencyCandidates {
			break
		}
	}
	return out
}

// DedupCandidates merges candidates sharing a normalized term, keeping the
// highest confidence and the first non-empty context, in first-seen order.
func DedupCandidates(candidates []Candidate) []Candidate {
	index := make(map[string]int, len(candidates))
	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		i, ok := index[c.Normalized]
		if !ok {
			index[c.Normalized] = len(out)
			out = append(out, c)
			continue
		}
		if c.Confidence > out[i].Confidence {
			out[i].Confidence = c.Confidence
		}
		if out[i].Context == "" {
			out[i].Context = c.Context
		}
	}
	return out
}

// MineCandidates returns the deduplicated pattern and frequency candidates of text.
func MineCandidates(text string) []Candidate {
	return DedupCandidates(append(ExtractPatternCandidates(text), ExtractFrequencyCandidates(text)...))
}

func firstGroup(m []string) string {
	for _, g := range m[1:] {
		if g != "" {
			return strings.TrimSpace(g)
		}
	}
	return ""
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
