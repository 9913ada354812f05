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

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/termgraph/core"
	"github.com/poiesic/termgraph/storage"
)

// CandidateRepository implements storage.CandidateRepository for BadgerDB.
type CandidateRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.CandidateRepository = (*CandidateRepository)(nil)

// NewCandidateRepository creates a new CandidateRepository.
func NewCandidateRepository(backend *Backend) (*CandidateRepository, error) {
	idSeq, err := backend.GetSequence(candidateIDSeq)
	if err != nil {
		return nil, err
	}

	return &CandidateRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *CandidateRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *CandidateRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

func (r *CandidateRepository) nextID() (core.ID, error) {
	nextID, err := r.idSeq.Next()
	if err != nil {
		return 0, err
	}
	// BadgerDB sequences can return 0 on first call, so we skip it
	if nextID == 0 {
		nextID, err = r.idSeq.Next()
		if err != nil {
			return 0, err
		}
	}
	return core.ID(nextID), nil
}

// AddCandidate stores a new candidate. Returns ErrDuplicateKey when a
// candidate for the same term and document already exists.
func (r *CandidateRepository) AddCandidate(ctx context.Context, candidate *core.TermCandidate) (*core.TermCandidate, error) {
	if err := core.ValidateCandidate(candidate); err != nil {
		return nil, err
	}
	err := r.backend.update(ctx, func(tx *badger.Txn) error {
		termKey := makeCandidateTermKey(candidate.TermNormalized, candidate.DocumentId)
		found, err := exists(tx, termKey)
		if err != nil {
			return err
		}
		if found {
			return fmt.Errorf("%w: candidate %q", storage.ErrDuplicateKey, candidate.TermNormalized)
		}

		id, err := r.nextID()
		if err != nil {
			return err
		}
		candidate.Id = id
		if candidate.Status == "" {
			candidate.Status = core.CandidateStatusPending
		}
		if candidate.Frequency < 1 {
			candidate.Frequency = 1
		}
		candidate.InsertedAt = now()
		candidate.UpdatedAt = candidate.InsertedAt

		if err := tx.Set(makeCandidateKey(candidate.Id), storage.MarshalCandidate(candidate)); err != nil {
			return err
		}
		return tx.Set(termKey, storage.MarshalID(candidate.Id))
	})
	if err != nil {
		return nil, err
	}
	return candidate, nil
}

// UpdateCandidate replaces an existing candidate.
func (r *CandidateRepository) UpdateCandidate(ctx context.Context, candidate *core.TermCandidate) (*core.TermCandidate, error) {
	err := r.backend.update(ctx, func(tx *badger.Txn) error {
		key := makeCandidateKey(candidate.Id)
		old, err := readRecord(tx, key, storage.UnmarshalCandidate)
		if err != nil {
			return err
		}
		if old == nil {
			return storage.ErrNotFound
		}

		// Term and document identify the lookup index entry
		candidate.TermNormalized = old.TermNormalized
		candidate.DocumentId = old.DocumentId
		candidate.InsertedAt = old.InsertedAt
		candidate.UpdatedAt = now()

		return tx.Set(key, storage.MarshalCandidate(candidate))
	})
	if err != nil {
		return nil, err
	}
	return candidate, nil
}

// GetCandidate retrieves a candidate by ID.
func (r *CandidateRepository) GetCandidate(ctx context.Context, id core.ID) (*core.TermCandidate, error) {
	var result *core.TermCandidate
	err := r.backend.view(ctx, func(tx *badger.Txn) error {
		var err error
		result, err = readRecord(tx, makeCandidateKey(id), storage.UnmarshalCandidate)
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

// FindCandidate finds the candidate for a normalized term and document.
func (r *CandidateRepository) FindCandidate(ctx context.Context, termNormalized, documentID string) (*core.TermCandidate, error) {
	var result *core.TermCandidate
	err := r.backend.view(ctx, func(tx *badger.Txn) error {
		id, err := readRecord(tx, makeCandidateTermKey(termNormalized, documentID), func(val []byte) (*core.ID, error) {
			id, err := storage.UnmarshalID(val)
			return &id, err
		})
		if err != nil {
			return err
		}
		if id == nil {
			return storage.ErrNotFound
		}
		result, err = readRecord(tx, makeCandidateKey(*id), storage.UnmarshalCandidate)
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

// ListCandidates returns candidates passing filter, ordered by ID.
func (r *CandidateRepository) ListCandidates(ctx context.Context, filter storage.CandidateFilter) ([]*core.TermCandidate, error) {
	var results []*core.TermCandidate
	err := r.backend.view(ctx, func(tx *badger.Txn) error {
		all, err := scanPrefix(tx, []byte(candidatePrefix), storage.UnmarshalCandidate)
		if err != nil {
			return err
		}
		for _, c := range all {
			if filter.Matches(c) {
				results = append(results, c)
			}
		}
		return nil
	})
	return results, err
}
