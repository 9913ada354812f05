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

package review

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/poiesic/termgraph/core"
	"github.com/poiesic/termgraph/storage"
)

// DefaultQueueLimit is the page size used when a filter leaves Limit unset.
const DefaultQueueLimit = 50

// Filter selects candidates from the review queue.
type Filter struct {
	Status       core.CandidateStatus `json:"status" form:"status" validate:"omitempty,oneof=pending approved rejected"`
	Scope        core.Scope           `json:"scope"`
	MinFrequency int                  `json:"minFrequency" form:"minFrequency" validate:"gte=0"`
	Limit        int                  `json:"limit" form:"limit" validate:"gte=0,lte=500"`
	Offset       int                  `json:"offset" form:"offset" validate:"gte=0"`
}

// ListQueue returns a page of candidates, most frequent first, then most
// confident, then oldest. Status defaults to pending.
func (s *Service) ListQueue(ctx context.Context, filter Filter) ([]*core.TermCandidate, error) {
	if err := s.validate.Struct(filter); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	status := filter.Status
	if status == "" {
		status = core.CandidateStatusPending
	}
	limit := filter.Limit
	if limit == 0 {
		limit = DefaultQueueLimit
	}

	candidates, err := s.candidates.ListCandidates(ctx, storage.CandidateFilter{
		Status:       status,
		Scope:        filter.Scope,
		MinFrequency: filter.MinFrequency,
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(candidates, func(a, b *core.TermCandidate) int {
		if c := cmp.Compare(b.Frequency, a.Frequency); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Confidence, a.Confidence); c != 0 {
			return c
		}
		return cmp.Compare(a.Id, b.Id)
	})

	if filter.Offset >= len(candidates) {
		return []*core.TermCandidate{}, nil
	}
	candidates = candidates[filter.Offset:]
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}
