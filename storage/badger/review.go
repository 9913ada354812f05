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

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/poiesic/termgraph/core"
	"github.com/poiesic/termgraph/storage"
)

// ReviewRepository implements storage.ReviewRepository for BadgerDB.
type ReviewRepository struct {
	backend *Backend
}

var _ storage.ReviewRepository = (*ReviewRepository)(nil)

// NewReviewRepository creates a new ReviewRepository.
func NewReviewRepository(backend *Backend) (*ReviewRepository, error) {
	return &ReviewRepository{backend: backend}, nil
}

// Close releases resources. ReviewRepository has no resources to release.
func (r *ReviewRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *ReviewRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddReview appends an immutable review record.
func (r *ReviewRepository) AddReview(ctx context.Context, review *core.DefinitionReview) (*core.DefinitionReview, error) {
	err := r.backend.update(ctx, func(tx *badger.Txn) error {
		if review.Id == "" {
			review.Id = uuid.NewString()
		}
		if review.CreatedAt.IsZero() {
			review.CreatedAt = now()
		}
		key := makeReviewKey(review.CandidateId, review.CreatedAt, review.Id)
		return tx.Set(key, storage.MarshalReview(review))
	})
	if err != nil {
		return nil, err
	}
	return review, nil
}

// ListReviews returns the reviews of a candidate, oldest first.
func (r *ReviewRepository) ListReviews(ctx context.Context, candidateID core.ID) ([]*core.DefinitionReview, error) {
	var results []*core.DefinitionReview
	err := r.backend.view(ctx, func(tx *badger.Txn) error {
		var err error
		results, err = scanPrefix(tx, makePartialReviewKey(candidateID), storage.UnmarshalReview)
		return err
	})
	return results, err
}
