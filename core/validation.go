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

package core

import (
	"fmt"
	"strings"
)

// ValidateConcept validates a Concept according to domain rules.
//
// Validation rules:
//   - Key must not be empty and must already be uppercase
//
// NOT validated:
//   - ID (derived from Key by the store)
func ValidateConcept(concept *Concept) error {
	if concept == nil {
		return fmt.Errorf("%w: concept is nil", ErrInvalidConcept)
	}
	if strings.TrimSpace(concept.Key) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidConcept, ErrEmptyKey)
	}
	if concept.Key != strings.ToUpper(concept.Key) {
		return fmt.Errorf("%w: key %q is not uppercase", ErrInvalidConcept, concept.Key)
	}
	return nil
}

// ValidateAlias validates a ConceptAlias.
func ValidateAlias(alias *ConceptAlias) error {
	if alias == nil {
		return fmt.Errorf("%w: alias is nil", ErrInvalidAlias)
	}
	if alias.AliasNormalized == "" {
		return fmt.Errorf("%w: %w", ErrInvalidAlias, ErrEmptyTerm)
	}
	if !ValidConfidence(alias.Confidence) {
		return fmt.Errorf("%w: %w", ErrInvalidAlias, ErrConfidenceRange)
	}
	if err := ValidateWindow(alias.Window); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidAlias, err)
	}
	return nil
}

// ValidateDefinition validates a DefinitionVersion.
func ValidateDefinition(def *DefinitionVersion) error {
	if def == nil {
		return fmt.Errorf("%w: definition is nil", ErrInvalidDefinition)
	}
	if def.Version < 1 {
		return fmt.Errorf("%w: %w", ErrInvalidDefinition, ErrInvalidVersion)
	}
	if !ValidConfidence(def.Confidence) {
		return fmt.Errorf("%w: %w", ErrInvalidDefinition, ErrConfidenceRange)
	}
	if err := ValidateWindow(def.Window); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDefinition, err)
	}
	return nil
}

// ValidateRelationship validates a Relationship.
func ValidateRelationship(rel *Relationship) error {
	if rel == nil {
		return fmt.Errorf("%w: relationship is nil", ErrInvalidRelationship)
	}
	if strings.TrimSpace(rel.RelationType) == "" {
		return fmt.Errorf("%w: relation type is empty", ErrInvalidRelationship)
	}
	if err := ValidateWindow(rel.Window); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRelationship, err)
	}
	return nil
}

// ValidateCandidate validates a TermCandidate.
//
// NOT validated:
//   - ID (0 until assigned by the database sequence)
func ValidateCandidate(candidate *TermCandidate) error {
	if candidate == nil {
		return fmt.Errorf("%w: candidate is nil", ErrInvalidCandidate)
	}
	if candidate.TermNormalized == "" {
		return fmt.Errorf("%w: %w", ErrInvalidCandidate, ErrEmptyTerm)
	}
	if !ValidConfidence(candidate.Confidence) {
		return fmt.Errorf("%w: %w", ErrInvalidCandidate, ErrConfidenceRange)
	}
	return nil
}

// ValidateWindow checks that a bounded window ends after it starts.
func ValidateWindow(w Window) error {
	if !w.ValidFrom.IsZero() && !w.ValidTo.IsZero() && !w.ValidTo.After(w.ValidFrom) {
		return ErrInvalidWindow
	}
	return nil
}

// ValidConfidence reports whether c lies in [0, 1].
func ValidConfidence(c float64) bool {
	return c >= 0 && c <= 1
}
