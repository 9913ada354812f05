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

package ingestion

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/poiesic/termgraph/core"
	"github.com/poiesic/termgraph/storage"
)

const (
	// MaxContexts caps the example sentences kept per candidate.
	MaxContexts = 5

	// MinUpsertConfidence is the floor applied when a candidate is seen again.
	MinUpsertConfidence = 0.3

	// DefaultSourceType is recorded when Metadata leaves SourceType empty.
	DefaultSourceType = "document"
)

// Metadata describes where mined text came from.
type Metadata struct {
	DocumentId string
	Author     string
	SourceType string
	Scope      core.Scope
}

// Miner upserts mined candidates into the review queue.
type Miner struct {
	candidates storage.CandidateRepository
	metrics    *Metrics
	logger     *slog.Logger
}

// MinerOption configures a Miner.
type MinerOption func(*Miner) error

// WithMinerLogger sets a custom logger.
// Default is slog.Default().
func WithMinerLogger(logger *slog.Logger) MinerOption {
	return func(m *Miner) error {
		if logger == nil {
			logger = slog.Default()
		}
		m.logger = logger
		return nil
	}
}

// WithMetrics counts inserted candidates.
func WithMetrics(metrics *Metrics) MinerOption {
	return func(m *Miner) error {
		m.metrics = metrics
		return nil
	}
}

// NewMiner creates a miner writing to candidates.
func NewMiner(candidates storage.CandidateRepository, opts ...MinerOption) (*Miner, error) {
	if candidates == nil {
		return nil, ErrCandidateRepositoryRequired
	}
	m := &Miner{
		candidates: candidates,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	m.logger = m.logger.With("component", "miner")
	return m, nil
}

// IngestSlangCandidates mines text and upserts the candidates in one
// transaction. A candidate already recorded for the same normalized term and
// document has its frequency incremented instead. Returns the number of
// newly inserted candidates.
func (m *Miner) IngestSlangCandidates(ctx context.Context, text string, meta Metadata) (int, error) {
	mined := MineCandidates(text)
	if len(mined) == 0 {
		return 0, nil
	}

	sourceType := meta.SourceType
	if sourceType == "" {
		sourceType = DefaultSourceType
	}

	inserted := 0
	err := m.candidates.WithTransaction(ctx, func(ctx context.Context) error {
		inserted = 0
		for _, c := range mined {
			existing, err := m.candidates.FindCandidate(ctx, c.Normalized, meta.DocumentId)
			switch {
			case err == nil:
				existing.Frequency++
				existing.Confidence = max(existing.Confidence, MinUpsertConfidence)
				existing.Contexts = appendContext(existing.Contexts, c.Context)
				if _, err := m.candidates.UpdateCandidate(ctx, existing); err != nil {
					return err
				}
			case errors.Is(err, storage.ErrNotFound):
				candidate := &core.TermCandidate{
					TermOriginal:   c.Term,
					TermNormalized: c.Normalized,
					Contexts:       appendContext(nil, c.Context),
					Frequency:      1,
					SourceType:     sourceType,
					DocumentId:     meta.DocumentId,
					Author:         meta.Author,
					Scope:          meta.Scope,
					Confidence:     c.Confidence,
					Status:         core.CandidateStatusPending,
				}
				if _, err := m.candidates.AddCandidate(ctx, candidate); err != nil {
					return err
				}
				inserted++
			default:
				return err
			}
		}
		return nil
	})
	if err != nil {
		m.logger.Error("error upserting candidates", "document", meta.DocumentId, "err", err)
		return 0, err
	}

	m.metrics.addInserted(inserted)
	m.logger.Debug("mined candidates", "document", meta.DocumentId, "mined", len(mined), "inserted", inserted)
	return inserted, nil
}

func appendContext(contexts []string, context string) []string {
	if context == "" || len(contexts) >= MaxContexts || slices.Contains(contexts, context) {
		return contexts
	}
	return append(contexts, context)
}
