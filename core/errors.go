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

import "errors"

// Domain validation errors
var (
	// ErrInvalidConcept indicates a Concept failed validation.
	ErrInvalidConcept = errors.New("invalid concept")

	// ErrInvalidAlias indicates a ConceptAlias failed validation.
	ErrInvalidAlias = errors.New("invalid concept alias")

	// ErrInvalidDefinition indicates a DefinitionVersion failed validation.
	ErrInvalidDefinition = errors.New("invalid definition version")

	// ErrInvalidRelationship indicates a Relationship failed validation.
	ErrInvalidRelationship = errors.New("invalid relationship")

	// ErrInvalidCandidate indicates a TermCandidate failed validation.
	ErrInvalidCandidate = errors.New("invalid term candidate")

	// ErrEmptyKey indicates the concept Key field is empty.
	ErrEmptyKey = errors.New("concept key cannot be empty")

	// ErrEmptyTerm indicates a normalized term or alias is empty.
	ErrEmptyTerm = errors.New("term cannot be empty")

	// ErrConfidenceRange indicates a confidence outside [0, 1].
	ErrConfidenceRange = errors.New("confidence must be between 0 and 1")

	// ErrInvalidWindow indicates ValidTo is not after ValidFrom.
	ErrInvalidWindow = errors.New("validTo must be after validFrom")

	// ErrInvalidVersion indicates a definition version below 1.
	ErrInvalidVersion = errors.New("definition version must be at least 1")
)
