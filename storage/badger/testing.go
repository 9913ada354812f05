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

package badger

import (
	"errors"

	"github.com/poiesic/termgraph/storage"
)

// Repositories bundles every BadgerDB repository over one backend.
type Repositories struct {
	Backend    *Backend
	Concepts   storage.ConceptRepository
	Candidates storage.CandidateRepository
	Reviews    storage.ReviewRepository
}

// NewRepositories creates all repositories over an open backend.
func NewRepositories(backend *Backend) (*Repositories, error) {
	concepts, err := NewConceptRepository(backend)
	if err != nil {
		return nil, err
	}
	candidates, err := NewCandidateRepository(backend)
	if err != nil {
		return nil, err
	}
	reviews, err := NewReviewRepository(backend)
	if err != nil {
		candidates.Close()
		return nil, err
	}
	return &Repositories{
		Backend:    backend,
		Concepts:   concepts,
		Candidates: candidates,
		Reviews:    reviews,
	}, nil
}

// Close closes the repositories and then the backend.
func (r *Repositories) Close() error {
	return errors.Join(
		r.Reviews.Close(),
		r.Candidates.Close(),
		r.Concepts.Close(),
		r.Backend.Close(),
	)
}

// NewMemoryRepositories creates in-memory repositories for testing.
// Caller must Close the result when done.
func NewMemoryRepositories() (*Repositories, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, err
	}

	repos, err := NewRepositories(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}
	return repos, nil
}
