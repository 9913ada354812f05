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

package storage

import (
	"context"

	"github.com/poiesic/termgraph/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes fn within a read-write transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// Repository calls made with the context passed to fn join the
	// transaction. A context that already carries a transaction is reused
	// and committed by the outermost caller.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close releases repository resources.
	Close() error
}

// ConceptRepository reads and writes concepts and everything they own:
// aliases, definition versions, relationships and evidence.
type ConceptRepository interface {
	Repository

	// UpsertConcept stores a concept keyed by its uppercase Key.
	// The ID is derived from the key. InsertedAt is preserved across updates.
	UpsertConcept(ctx context.Context, concept *core.Concept) (*core.Concept, error)

	// GetConcept retrieves a single concept by ID.
	// Returns ErrNotFound if the concept doesn't exist.
	GetConcept(ctx context.Context, id core.ID) (*core.Concept, error)

	// GetConcepts retrieves multiple concepts by their IDs.
	// Returns only the concepts that exist (no error for missing concepts).
	GetConcepts(ctx context.Context, ids ...core.ID) ([]*core.Concept, error)

	// FindConceptByKey finds a concept by its canonical key.
	// Returns ErrNotFound if no matching concept exists.
	FindConceptByKey(ctx context.Context, key string) (*core.Concept, error)

	// ListConcepts returns every concept ordered by key.
	ListConcepts(ctx context.Context) ([]*core.Concept, error)

	// AddAlias stores an alias. The ID is derived from
	// (conceptId, aliasNormalized, scope); returns ErrDuplicateKey if it exists.
	AddAlias(ctx context.Context, alias *core.ConceptAlias) (*core.ConceptAlias, error)

	// FindAlias finds the alias of a concept for a normalized text and scope.
	// Returns ErrNotFound if no matching alias exists.
	FindAlias(ctx context.Context, conceptID core.ID, aliasNormalized string, scope core.Scope) (*core.ConceptAlias, error)

	// ListActiveAliases returns active aliases whose normalized text is one
	// of terms, in any scope and window.
	ListActiveAliases(ctx context.Context, terms ...string) ([]*core.ConceptAlias, error)

	// AddDefinitionVersion stores a definition version.
	// Returns ErrDuplicateKey if the concept already has that version.
	AddDefinitionVersion(ctx context.Context, def *core.DefinitionVersion) (*core.DefinitionVersion, error)

	// ListDefinitionVersions returns every definition version of the given
	// concepts, ordered by concept then version.
	ListDefinitionVersions(ctx context.Context, conceptIDs ...core.ID) ([]*core.DefinitionVersion, error)

	// NextDefinitionVersion returns the highest existing version plus one,
	// starting at 1.
	NextDefinitionVersion(ctx context.Context, conceptID core.ID) (int, error)

	// AddRelationship stores a directed relationship.
	AddRelationship(ctx context.Context, rel *core.Relationship) (*core.Relationship, error)

	// ListRelationshipsFrom returns relationships whose source is one of conceptIDs.
	ListRelationshipsFrom(ctx context.Context, conceptIDs ...core.ID) ([]*core.Relationship, error)

	// AddEvidence stores an evidence record, assigning an ID when empty.
	AddEvidence(ctx context.Context, evidence *core.ConceptEvidence) (*core.ConceptEvidence, error)

	// ListEvidence returns the evidence recorded for a concept.
	ListEvidence(ctx context.Context, conceptID core.ID) ([]*core.ConceptEvidence, error)
}

// CandidateFilter selects term candidates. Zero fields match everything.
type CandidateFilter struct {
	Status       core.CandidateStatus
	Scope        core.Scope // every set dimension must match exactly
	MinFrequency int
}

// Matches reports whether a candidate passes the filter.
func (f CandidateFilter) Matches(c *core.TermCandidate) bool {
	if f.Status != "" && c.Status != f.Status {
		return false
	}
	if c.Frequency < f.MinFrequency {
		return false
	}
	return c.Scope.Contains(f.Scope)
}

// CandidateRepository provides operations for mined term candidates.
type CandidateRepository interface {
	Repository

	// AddCandidate stores a new candidate with an ID from the sequence.
	// Sets InsertedAt and UpdatedAt.
	AddCandidate(ctx context.Context, candidate *core.TermCandidate) (*core.TermCandidate, error)

	// UpdateCandidate replaces an existing candidate.
	// Returns ErrNotFound if the candidate doesn't exist.
	UpdateCandidate(ctx context.Context, candidate *core.TermCandidate) (*core.TermCandidate, error)

	// GetCandidate retrieves a candidate by ID.
	// Returns ErrNotFound if the candidate doesn't exist.
	GetCandidate(ctx context.Context, id core.ID) (*core.TermCandidate, error)

	// FindCandidate finds the candidate mined for a normalized term from a
	// document. An empty documentID matches candidates without a document.
	// Returns ErrNotFound if none exists.
	FindCandidate(ctx context.Context, termNormalized, documentID string) (*core.TermCandidate, error)

	// ListCandidates returns candidates passing filter, ordered by ID.
	ListCandidates(ctx context.Context, filter CandidateFilter) ([]*core.TermCandidate, error)
}

// ReviewRepository stores the review audit trail.
type ReviewRepository interface {
	Repository

	// AddReview appends an immutable review record, assigning an ID when empty.
	AddReview(ctx context.Context, review *core.DefinitionReview) (*core.DefinitionReview, error)

	// ListReviews returns the reviews of a candidate, oldest first.
	ListReviews(ctx context.Context, candidateID core.ID) ([]*core.DefinitionReview, error)
}
