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

package mock

import (
	"context"
	"strings"
	"sync/atomic"
	"unicode"

	"github.com/poiesic/termgraph/ai"
)

// MockTermClassifier is a test double for ai.TermClassifier.
// It allows custom behavior injection via function fields.
type MockTermClassifier struct {
	// ClassifyTermsFunc is called by ClassifyTerms if set.
	// If nil, returns the ALL-CAPS words of the query.
	ClassifyTermsFunc func(ctx context.Context, query string) ([]string, error)

	callCount atomic.Int64
}

var _ ai.TermClassifier = (*MockTermClassifier)(nil)

// NewMockTermClassifier creates a mock classifier with default behavior.
func NewMockTermClassifier() *MockTermClassifier {
	return &MockTermClassifier{}
}

// ClassifyTerms returns injected or default terms.
func (m *MockTermClassifier) ClassifyTerms(ctx context.Context, query string) ([]string, error) {
	m.callCount.Add(1)

	if m.ClassifyTermsFunc != nil {
		return m.ClassifyTermsFunc(ctx, query)
	}

	terms := make([]string, 0, ai.MaxFallbackTerms)
	for _, word := range strings.Fields(query) {
		word = strings.TrimFunc(word, func(r rune) bool { return !unicode.IsLetter(r) && !unicode.IsDigit(r) })
		if len(word) < 2 || word != strings.ToUpper(word) || strings.ToLower(word) == word {
			continue
		}
		terms = append(terms, word)
		if len(terms) == ai.MaxFallbackTerms {
			break
		}
	}
	return terms, nil
}

// CallCount returns the number of times ClassifyTerms was called.
func (m *MockTermClassifier) CallCount() int {
	return int(m.callCount.Load())
}

// Reset clears the call count and custom functions.
func (m *MockTermClassifier) Reset() {
	m.callCount.Store(0)
	m.ClassifyTermsFunc = nil
}
