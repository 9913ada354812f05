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

package ai

import "context"

// TermClassifier proposes internal terminology found in a query when no
// known alias matched. Implementations must be thread-safe for concurrent use.
type TermClassifier interface {
	// ClassifyTerms returns up to MaxFallbackTerms short candidate terms
	// that look like organization specific slang or acronyms.
	// An unparseable model response yields an empty slice and a nil error.
	// Transport failures are returned as errors.
	ClassifyTerms(ctx context.Context, query string) ([]string, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
type AIProvider interface {
	// TermClassifier returns the fallback term classifier.
	// The returned TermClassifier is safe for concurrent use.
	TermClassifier() TermClassifier

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
