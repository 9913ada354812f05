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
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/poiesic/termgraph/core"
	"github.com/poiesic/termgraph/storage"
	"github.com/poiesic/termgraph/terms"
)

// ApproveInput carries the reviewer's decisions for an approval.
// Empty fields default from the candidate.
type ApproveInput struct {
	ConceptKey       string           `json:"conceptKey" validate:"max=128"`
	Label            string           `json:"label" validate:"max=256"`
	Description      string           `json:"description"`
	Definition       string           `json:"definition" validate:"required"`
	Criticality      core.Criticality `json:"criticality" validate:"omitempty,oneof=normal critical"`
	Confidence       *float64         `json:"confidence" validate:"omitempty,gte=0,lte=1"`
	Alias            string           `json:"alias" validate:"max=256"`
	ValidFrom        time.Time        `json:"validFrom"`
	ValidTo          time.Time        `json:"validTo"`
	SourceDocumentId string           `json:"sourceDocumentId"`
	ReviewerId       string           `json:"reviewerId"`
	Notes            string           `json:"notes"`
}

// RejectInput carries the reviewer and notes of a rejection.
type RejectInput struct {
	ReviewerId string `json:"reviewerId"`
	Notes      string `json:"notes"`
}

// ApproveResult holds every record touched by an approval.
type ApproveResult struct {
	Candidate  *core.TermCandidate     `json:"candidate"`
	Concept    *core.Concept           `json:"concept"`
	Alias      *core.ConceptAlias      `json:"alias"`
	Definition *core.DefinitionVersion `json:"definition"`
	Evidence   *core.ConceptEvidence   `json:"evidence,omitempty"`
	Review     *core.DefinitionReview  `json:"review"`
}

// Service runs the review workflow.
type Service struct {
	concepts   storage.ConceptRepository
	candidates storage.CandidateRepository
	reviews    storage.ReviewRepository
	validate   *validator.Validate
	clock      func() time.Time
	logger     *slog.Logger
}

// Option configures a Service.
type Option func(*Service) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithClock overrides the source of review timestamps.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) error {
		if clock != nil {
			s.clock = clock
		}
		return nil
	}
}

// NewService creates a review service. The repositories must share one
// store so that an approval commits atomically.
func NewService(
	concepts storage.ConceptRepository,
	candidates storage.CandidateRepository,
	reviews storage.ReviewRepository,
	opts ...Option,
) (*Service, error) {
	if concepts == nil || candidates == nil || reviews == nil {
		return nil, ErrRepositoryRequired
	}
	s := &Service{
		concepts:   concepts,
		candidates: candidates,
		reviews:    reviews,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		clock:      time.Now,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "review")
	return s, nil
}

// ConceptKeyFor derives the default concept key of a normalized term.
func ConceptKeyFor(termNormalized string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(termNormalized), " ", "_"))
}

// Approve promotes a pending candidate into the glossary.
// Returns ErrCandidateNotFound before any write when the candidate does not
// exist, and ErrCandidateAlreadyReviewed when it is no longer pending.
func (s *Service) Approve(ctx context.Context, candidateID core.ID, input ApproveInput) (*ApproveResult, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if strings.TrimSpace(input.Definition) == "" {
		return nil, fmt.Errorf("%w: definition is blank", ErrInvalidInput)
	}
	window := core.Window{ValidFrom: input.ValidFrom.UTC(), ValidTo: input.ValidTo.UTC()}
	if err := core.ValidateWindow(window); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	if _, err := s.pendingCandidate(ctx, candidateID); err != nil {
		return nil, err
	}

	result := &ApproveResult{}
	err := s.candidates.WithTransaction(ctx, func(ctx context.Context) error {
		candidate, err := s.pendingCandidate(ctx, candidateID)
		if err != nil {
			return err
		}
		result.Candidate = candidate
		reviewedAt := s.now()

		confidence := candidate.Confidence
		if input.Confidence != nil {
			confidence = *input.Confidence
		}

		concept, err := s.findOrCreateConcept(ctx, candidate, input)
		if err != nil {
			return err
		}
		result.Concept = concept

		version, err := s.concepts.NextDefinitionVersion(ctx, concept.Id)
		if err != nil {
			return err
		}
		sourceDocument := input.SourceDocumentId
		if sourceDocument == "" {
			sourceDocument = candidate.DocumentId
		}
		result.Definition, err = s.concepts.AddDefinitionVersion(ctx, &core.DefinitionVersion{
			ConceptId:        concept.Id,
			Version:          version,
			Definition:       strings.TrimSpace(input.Definition),
			Status:           core.DefinitionStatusApproved,
			Confidence:       confidence,
			Scope:            candidate.Scope,
			Window:           window,
			SourceDocumentId: sourceDocument,
		})
		if err != nil {
			return err
		}

		result.Alias, err = s.findOrCreateAlias(ctx, concept, candidate, input.Alias, confidence)
		if err != nil {
			return err
		}

		if len(candidate.Contexts) > 0 || candidate.DocumentId != "" {
			excerpt := ""
			if len(candidate.Contexts) > 0 {
				excerpt = candidate.Contexts[0]
			}
			result.Evidence, err = s.concepts.AddEvidence(ctx, &core.ConceptEvidence{
				ConceptId:           concept.Id,
				DefinitionVersionId: result.Definition.Id,
				CandidateId:         candidate.Id,
				DocumentId:          candidate.DocumentId,
				Excerpt:             excerpt,
			})
			if err != nil {
				return err
			}
		}

		candidate.Status = core.CandidateStatusApproved
		candidate.ReviewedBy = input.ReviewerId
		candidate.ReviewedAt = reviewedAt
		candidate.ReviewNotes = input.Notes
		candidate.ConceptId = concept.Id
		candidate.AliasId = result.Alias.Id
		candidate.DefinitionVersionId = result.Definition.Id
		if _, err := s.candidates.UpdateCandidate(ctx, candidate); err != nil {
			return err
		}

		result.Review, err = s.reviews.AddReview(ctx, &core.DefinitionReview{
			CandidateId:         candidate.Id,
			ConceptId:           concept.Id,
			DefinitionVersionId: result.Definition.Id,
			ReviewerId:          input.ReviewerId,
			Decision:            core.ReviewDecisionApproved,
			Notes:               input.Notes,
			CreatedAt:           reviewedAt,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("approved term candidate",
		"candidate", candidateID,
		"concept", result.Concept.Key,
		"version", result.Definition.Version,
		"reviewer", input.ReviewerId)
	return result, nil
}

// Reject closes a pending candidate without touching the glossary.
func (s *Service) Reject(ctx context.Context, candidateID core.ID, input RejectInput) (*core.DefinitionReview, error) {
	if _, err := s.pendingCandidate(ctx, candidateID); err != nil {
		return nil, err
	}

	var review *core.DefinitionReview
	err := s.candidates.WithTransaction(ctx, func(ctx context.Context) error {
		candidate, err := s.pendingCandidate(ctx, candidateID)
		if err != nil {
			return err
		}
		reviewedAt := s.now()

		candidate.Status = core.CandidateStatusRejected
		candidate.ReviewedBy = input.ReviewerId
		candidate.ReviewedAt = reviewedAt
		candidate.ReviewNotes = input.Notes
		if _, err := s.candidates.UpdateCandidate(ctx, candidate); err != nil {
			return err
		}

		review, err = s.reviews.AddReview(ctx, &core.DefinitionReview{
			CandidateId: candidate.Id,
			ReviewerId:  input.ReviewerId,
			Decision:    core.ReviewDecisionRejected,
			Notes:       input.Notes,
			CreatedAt:   reviewedAt,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("rejected term candidate", "candidate", candidateID, "reviewer", input.ReviewerId)
	return review, nil
}

// History returns the audit entries of a candidate, oldest first.
func (s *Service) History(ctx context.Context, candidateID core.ID) ([]*core.DefinitionReview, error) {
	return s.reviews.ListReviews(ctx, candidateID)
}

func (s *Service) pendingCandidate(ctx context.Context, id core.ID) (*core.TermCandidate, error) {
	candidate, err := s.candidates.GetCandidate(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %d", ErrCandidateNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	if candidate.Status != core.CandidateStatusPending {
		return nil, fmt.Errorf("%w: %d is %s", ErrCandidateAlreadyReviewed, id, candidate.Status)
	}
	return candidate, nil
}

func (s *Service) findOrCreateConcept(ctx context.Context, candidate *core.TermCandidate, input ApproveInput) (*core.Concept, error) {
	key := strings.ToUpper(strings.TrimSpace(input.ConceptKey))
	if key == "" {
		key = ConceptKeyFor(candidate.TermNormalized)
	}

	concept, err := s.concepts.FindConceptByKey(ctx, key)
	switch {
	case err == nil:
		changed := false
		if concept.Status != core.ConceptStatusApproved {
			concept.Status = core.ConceptStatusApproved
			changed = true
		}
		if input.Criticality != "" && input.Criticality != concept.Criticality {
			concept.Criticality = input.Criticality
			changed = true
		}
		if !changed {
			return concept, nil
		}
		// An approval into a draft or deprecated concept makes it resolvable again.
		concept.ApprovedBy = input.ReviewerId
		return s.concepts.UpsertConcept(ctx, concept)
	case !errors.Is(err, storage.ErrNotFound):
		return nil, err
	}

	label := input.Label
	if label == "" {
		label = candidate.TermOriginal
	}
	criticality := input.Criticality
	if criticality == "" {
		criticality = core.CriticalityNormal
	}
	return s.concepts.UpsertConcept(ctx, &core.Concept{
		Key:         key,
		Label:       label,
		Description: input.Description,
		Status:      core.ConceptStatusApproved,
		Criticality: criticality,
		DefinedBy:   input.ReviewerId,
		ApprovedBy:  input.ReviewerId,
	})
}

func (s *Service) findOrCreateAlias(ctx context.Context, concept *core.Concept, candidate *core.TermCandidate, aliasText string, confidence float64) (*core.ConceptAlias, error) {
	normalized := candidate.TermNormalized
	if aliasText = strings.TrimSpace(aliasText); aliasText != "" {
		normalized = terms.Normalize(aliasText)
	} else {
		aliasText = candidate.TermOriginal
	}

	alias, err := s.concepts.FindAlias(ctx, concept.Id, normalized, candidate.Scope)
	if err == nil || !errors.Is(err, storage.ErrNotFound) {
		return alias, err
	}
	return s.concepts.AddAlias(ctx, &core.ConceptAlias{
		ConceptId:       concept.Id,
		Alias:           aliasText,
		AliasNormalized: normalized,
		Scope:           candidate.Scope,
		Status:          core.AliasStatusActive,
		Confidence:      confidence,
	})
}

func (s *Service) now() time.Time {
	return s.clock().UTC().Truncate(time.Microsecond)
}
