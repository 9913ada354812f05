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

import "github.com/poiesic/termgraph/ai"

// MockProvider is a test double for ai.AIProvider.
type MockProvider struct {
	classifier *MockTermClassifier
}

// NewMockProvider creates a new mock provider with a default mock classifier.
//
// Returns ai.AIProvider interface for consistency with production constructors.
// Use GetMockClassifier() to access the concrete type for test assertions.
func NewMockProvider() ai.AIProvider {
	return &MockProvider{classifier: NewMockTermClassifier()}
}

// NewMockProviderWithClassifier creates a mock provider around a custom classifier.
func NewMockProviderWithClassifier(classifier *MockTermClassifier) ai.AIProvider {
	return &MockProvider{classifier: classifier}
}

// TermClassifier returns the mock classifier.
func (p *MockProvider) TermClassifier() ai.TermClassifier {
	return p.classifier
}

// Close is a no-op for mock provider.
func (p *MockProvider) Close() error {
	return nil
}

// GetMockClassifier returns the underlying mock classifier for test assertions.
func (p *MockProvider) GetMockClassifier() *MockTermClassifier {
	return p.classifier
}
