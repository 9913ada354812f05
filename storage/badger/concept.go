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
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/poiesic/termgraph/core"
	"github.com/poiesic/termgraph/storage"
)

// ConceptRepository implements storage.ConceptRepository for BadgerDB.
type ConceptRepository struct {
	backend *Backend
}

var _ storage.ConceptRepository = (*ConceptRepository)(nil)

// NewConceptRepository creates a new ConceptRepository.
func NewConceptRepository(backend *Backend) (*ConceptRepository, error) {
	return &ConceptRepository{
		backend: backend,
	}, nil
}

// Close releases resources. ConceptRepository has no resources to release.
func (r *ConceptRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *ConceptRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// UpsertConcept stores a concept under the ID derived from its key.
func (r *ConceptRepository) UpsertConcept(ctx context.Context, concept *core.Concept) (*core.Concept, error) {
	if err := core.ValidateConcept(concept); err != nil {
		return nil, err
	}
	err := r.backend.update(ctx, func(tx *badger.Txn) error {
		concept.Id = core.ConceptIDForKey(concept.Key)
		key := makeConceptKey(concept.Id)

		old, err := readRecord(tx, key, storage.UnmarshalConcept)
		if err != nil {
			return err
		}

		ts := now()
		if old != nil && !old.InsertedAt.IsZero() {
			concept.InsertedAt = old.InsertedAt
		} else if concept.InsertedAt.IsZero() {
			concept.InsertedAt = ts
		}
		concept.UpdatedAt = ts

		return tx.Set(key, storage.MarshalConcept(concept))
	})
	if err != nil {
		return nil, err
	}
	return concept, nil
}

// GetConcept retrieves a single concept by ID.
func (r *ConceptRepository) GetConcept(ctx context.Context, id core.ID) (*core.Concept, error) {
	var result *core.Concept
	err := r.backend.view(ctx, func(tx *badger.Txn) error {
		var err error
		result, err = readRecord(tx, makeConceptKey(id), storage.UnmarshalConcept)
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	})
	return result, err
}

// GetConcepts retrieves multiple concepts by their IDs.
func (r *ConceptRepository) GetConcepts(ctx context.Context, ids ...core.ID) ([]*core.Concept, error) {
	var result []*core.Concept
	err := r.backend.view(ctx, func(tx *badger.Txn) error {
		for _, id := range ids {
			concept, err := readRecord(tx, makeConceptKey(id), storage.UnmarshalConcept)
			if err != nil {
				return err
			}
			if concept != nil {
				result = append(result, concept)
			}
		}
		return nil
	})
	return result, err
}

// FindConceptByKey finds a concept by its canonical key.
func (r *ConceptRepository) FindConceptByKey(ctx context.Context, key string) (*core.Concept, error) {
	concept, err := r.GetConcept(ctx, core.ConceptIDForKey(strings.ToUpper(key)))
	if err != nil {
		return nil, err
	}
	return concept, nil
}

// ListConcepts returns every concept ordered by key.
func (r *ConceptRepository) ListConcepts(ctx context.Context) ([]*core.Concept, error) {
	var results []*core.Concept
	err := r.backend.view(ctx, func(tx *badger.Txn) error {
		var err error
		results, err = scanPrefix(tx, []byte(conceptPrefix), storage.UnmarshalConcept)
		return err
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(results, func(a, b *core.Concept) int {
		return strings.Compare(a.Key, b.Key)
	})
	return results, nil
}

// AddAlias stores an alias and its normalized-text index entry.
func (r *ConceptRepository) AddAlias(ctx context.Context, alias *core.ConceptAlias) (*core.ConceptAlias, error) {
	if err := core.ValidateAlias(alias); err != nil {
		return nil, err
	}
	err := r.backend.update(ctx, func(tx *badger.Txn) error {
		alias.Id = core.AliasID(alias.ConceptId, alias.AliasNormalized, alias.Scope)
		key := makeAliasKey(alias.Id)

		found, err := exists(tx, key)
		if err != nil {
			return err
		}
		if found {
			return fmt.Errorf("%w: alias %q for concept %d", storage.ErrDuplicateKey, alias.AliasNormalized, alias.ConceptId)
		}

		if alias.Status == "" {
			alias.Status = core.AliasStatusActive
		}
		if alias.InsertedAt.IsZero() {
			alias.InsertedAt = now()
		}

		if err := tx.Set(key, storage.MarshalAlias(alias)); err != nil {
			return err
		}
		return tx.Set(makeAliasNormKey(alias.AliasNormalized, alias.Id), nil)
	})
	if err != nil {
		return nil, err
	}
	return alias, nil
}

// FindAlias finds the alias of a concept for a normalized text and scope.
func (r *ConceptRepository) FindAlias(ctx context.Context, conceptID core.ID, aliasNormalized string, scope core.Scope) (*core.ConceptAlias, error) {
	var result *core.ConceptAlias
	err := r.backend.view(ctx, func(tx *badger.Txn) error {
		var err error
		key := makeAliasKey(core.AliasID(conceptID, aliasNormalized, scope))
		result, err = readRecord(tx, key, storage.UnmarshalAlias)
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	})
	return result, err
}

// ListActiveAliases returns active aliases whose normalized text is one of terms.
func (r *ConceptRepository) ListActiveAliases(ctx context.Context, terms ...string) ([]*core.ConceptAlias, error) {
	var results []*core.ConceptAlias
	err := r.backend.view(ctx, func(tx *badger.Txn) error {
		for _, term := range terms {
			prefix := makePartialAliasNormKey(term)
			for _, indexKey := range scanKeys(tx, prefix) {
				if len(indexKey) != len(prefix)+8 {
					continue
				}
				id := core.ID(beUint64(indexKey[len(prefix):]))
				alias, err := readRecord(tx, makeAliasKey(id), storage.UnmarshalAlias)
				if err != nil {
					return err
				}
				if alias != nil && alias.Status == core.AliasStatusActive {
					results = append(results, alias)
				}
			}
		}
		return nil
	})
	return results, err
}

// AddDefinitionVersion stores a definition version.
func (r *ConceptRepository) AddDefinitionVersion(ctx context.Context, def *core.DefinitionVersion) (*core.DefinitionVersion, error) {
	if err := core.ValidateDefinition(def); err != nil {
		return nil, err
	}
	err := r.backend.update(ctx, func(tx *badger.Txn) error {
		key := makeDefinitionKey(def.ConceptId, def.Version)
		found, err := exists(tx, key)
		if err != nil {
			return err
		}
		if found {
			return fmt.Errorf("%w: concept %d version %d", storage.ErrDuplicateKey, def.ConceptId, def.Version)
		}

		def.Id = core.DefinitionVersionID(def.ConceptId, def.Version)
		if def.Status == "" {
			def.Status = core.DefinitionStatusApproved
		}
		if def.InsertedAt.IsZero() {
			def.InsertedAt = now()
		}
		return tx.Set(key, storage.MarshalDefinition(def))
	})
	if err != nil {
		return nil, err
	}
	return def, nil
}

// ListDefinitionVersions returns every definition version of the given concepts.
func (r *ConceptRepository) ListDefinitionVersions(ctx context.Context, conceptIDs ...core.ID) ([]*core.DefinitionVersion, error) {
	var results []*core.DefinitionVersion
	err := r.backend.view(ctx, func(tx *badger.Txn) error {
		for _, id := range conceptIDs {
			defs, err := scanPrefix(tx, makePartialDefinitionKey(id), storage.UnmarshalDefinition)
			if err != nil {
				return err
			}
			results = append(results, defs...)
		}
		return nil
	})
	return results, err
}

// NextDefinitionVersion returns the highest existing version plus one.
func (r *ConceptRepository) NextDefinitionVersion(ctx context.Context, conceptID core.ID) (int, error) {
	next := 1
	err := r.backend.view(ctx, func(tx *badger.Txn) error {
		prefix := makePartialDefinitionKey(conceptID)
		for _, key := range scanKeys(tx, prefix) {
			if len(key) != len(prefix)+8 {
				continue
			}
			if v := int(beUint64(key[len(prefix):])); v >= next {
				next = v + 1
			}
		}
		return nil
	})
	return next, err
}

// AddRelationship stores a directed relationship. Re-adding the same edge
// overwrites it.
func (r *ConceptRepository) AddRelationship(ctx context.Context, rel *core.Relationship) (*core.Relationship, error) {
	if err := core.ValidateRelationship(rel); err != nil {
		return nil, err
	}
	err := r.backend.update(ctx, func(tx *badger.Txn) error {
		rel.Id = core.RelationshipID(rel.FromConceptId, rel.ToConceptId, rel.RelationType, rel.Scope)
		if rel.Status == "" {
			rel.Status = core.RelationshipStatusApproved
		}
		if rel.InsertedAt.IsZero() {
			rel.InsertedAt = now()
		}
		return tx.Set(makeRelationshipKey(rel.FromConceptId, rel.Id), storage.MarshalRelationship(rel))
	})
	if err != nil {
		return nil, err
	}
	return rel, nil
}

// ListRelationshipsFrom returns relationships whose source is one of conceptIDs.
func (r *ConceptRepository) ListRelationshipsFrom(ctx context.Context, conceptIDs ...core.ID) ([]*core.Relationship, error) {
	var results []*core.Relationship
	err := r.backend.view(ctx, func(tx *badger.Txn) error {
		for _, id := range conceptIDs {
			rels, err := scanPrefix(tx, makePartialRelationshipKey(id), storage.UnmarshalRelationship)
			if err != nil {
				return err
			}
			results = append(results, rels...)
		}
		return nil
	})
	return results, err
}

// AddEvidence stores an evidence record.
func (r *ConceptRepository) AddEvidence(ctx context.Context, evidence *core.ConceptEvidence) (*core.ConceptEvidence, error) {
	err := r.backend.update(ctx, func(tx *badger.Txn) error {
		if evidence.Id == "" {
			evidence.Id = uuid.NewString()
		}
		if evidence.CreatedAt.IsZero() {
			evidence.CreatedAt = now()
		}
		key := makeEvidenceKey(evidence.ConceptId, evidence.CreatedAt, evidence.Id)
		return tx.Set(key, storage.MarshalEvidence(evidence))
	})
	if err != nil {
		return nil, err
	}
	return evidence, nil
}

// ListEvidence returns the evidence recorded for a concept, oldest first.
func (r *ConceptRepository) ListEvidence(ctx context.Context, conceptID core.ID) ([]*core.ConceptEvidence, error) {
	var results []*core.ConceptEvidence
	err := r.backend.view(ctx, func(tx *badger.Txn) error {
		var err error
		results, err = scanPrefix(tx, makePartialEvidenceKey(conceptID), storage.UnmarshalEvidence)
		return err
	})
	return results, err
}
