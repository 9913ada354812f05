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

// Package storage provides the concept store abstraction for termgraph.
//
// This package defines repository interfaces that decouple storage implementation
// from resolution and review logic. The resolver only reads; the review
// workflow and the candidate miner write, always inside one transaction.
//
// # Architecture
//
// The storage layer follows the Repository pattern:
//
//   - Repository: transaction support shared by every repository
//   - ConceptRepository: concepts, aliases, definition versions, relationships, evidence
//   - CandidateRepository: mined term candidates awaiting review
//   - ReviewRepository: immutable review audit records
//
// # Usage
//
// Create repositories over a BadgerDB backend:
//
//	backend, err := badger.OpenBackend("/path/to/db", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//	concepts, _ := badger.NewConceptRepository(backend)
//
// Use in tests with in-memory storage:
//
//	repos, err := badger.NewMemoryRepositories()
//
// # Transactions
//
// WithTransaction puts the open transaction into the context it hands to
// its callback. Every repository method called with that context joins the
// transaction, so a multi-repository workflow commits or rolls back as one.
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage
