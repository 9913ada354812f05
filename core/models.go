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
	"encoding/binary"
	"strconv"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// String renders the ID in base 10.
func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// ParseID parses a base 10 ID.
func ParseID(s string) (ID, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return ID(v), nil
}

// ConceptStatus is the lifecycle state of a Concept.
type ConceptStatus string

const (
	ConceptStatusDraft      ConceptStatus = "draft"
	ConceptStatusApproved   ConceptStatus = "approved"
	ConceptStatusDeprecated ConceptStatus = "deprecated"
)

// Criticality marks concepts that must be grounded before answering.
type Criticality string

const (
	CriticalityNormal   Criticality = "normal"
	CriticalityCritical Criticality = "critical"
)

// AliasStatus is the lifecycle state of a ConceptAlias.
type AliasStatus string

const (
	AliasStatusActive  AliasStatus = "active"
	AliasStatusRetired AliasStatus = "retired"
)

// DefinitionStatus is the lifecycle state of a DefinitionVersion.
type DefinitionStatus string

const (
	DefinitionStatusApproved   DefinitionStatus = "approved"
	DefinitionStatusSuperseded DefinitionStatus = "superseded"
)

// RelationshipStatus is the lifecycle state of a Relationship.
type RelationshipStatus string

const (
	RelationshipStatusApproved RelationshipStatus = "approved"
	RelationshipStatusPending  RelationshipStatus = "pending"
)

// CandidateStatus is the review state of a TermCandidate.
type CandidateStatus string

const (
	CandidateStatusPending  CandidateStatus = "pending"
	CandidateStatusApproved CandidateStatus = "approved"
	CandidateStatusRejected CandidateStatus = "rejected"
)

// ReviewDecision is the outcome recorded in a DefinitionReview.
type ReviewDecision string

const (
	ReviewDecisionApproved ReviewDecision = "approved"
	ReviewDecisionRejected ReviewDecision = "rejected"
)

// Concept is a canonical internal meaning behind one or more slang terms.
// Concepts are never deleted; deprecation is a status transition.
type Concept struct {
	Id          ID
	Key         string // unique, uppercase canonical name
	Label       string
	Description string
	Status      ConceptStatus
	Criticality Criticality
	DefinedBy   string
	ApprovedBy  string
	InsertedAt  time.Time
	UpdatedAt   time.Time
}

// ConceptIDForKey returns the deterministic ID of the concept with the given key.
func ConceptIDForKey(key string) ID {
	return IDFromContent("concept:" + key)
}

// ConceptAlias maps a surface form to a Concept under a scope and validity window.
// Several aliases may share AliasNormalized across concepts or scopes.
type ConceptAlias struct {
	Id              ID
	ConceptId       ID
	Alias           string // original casing
	AliasNormalized string
	Scope           Scope
	Status          AliasStatus
	Confidence      float64
	Window          Window
	InsertedAt      time.Time
}

// AliasID returns the deterministic ID of an alias. The scope is part of the
// identity so the same text may be attached to one concept under many scopes.
func AliasID(conceptID ID, aliasNormalized string, scope Scope) ID {
	return IDFromContent("alias:" + conceptID.String() + ":" + aliasNormalized + ":" + scope.Key())
}

// DefinitionVersion is one versioned, scope and time qualified definition of a Concept.
type DefinitionVersion struct {
	Id               ID
	ConceptId        ID
	Version          int // starts at 1, increases per concept
	Definition       string
	Status           DefinitionStatus
	Confidence       float64
	Scope            Scope
	Window           Window
	SourceDocumentId string
	InsertedAt       time.Time
}

// DefinitionVersionID returns the deterministic ID of a concept's definition version.
func DefinitionVersionID(conceptID ID, version int) ID {
	return IDFromContent("definition:" + conceptID.String() + ":" + strconv.Itoa(version))
}

// Relationship is a directed, typed edge between two concepts.
type Relationship struct {
	Id            ID
	FromConceptId ID
	ToConceptId   ID
	RelationType  string // e.g. "implies", "supersedes", "partOf"
	Scope         Scope
	Window        Window
	Status        RelationshipStatus
	InsertedAt    time.Time
}

// RelationshipID returns the deterministic ID of an edge.
func RelationshipID(from, to ID, relationType string, scope Scope) ID {
	return IDFromContent("relationship:" + from.String() + ":" + relationType + ":" + to.String() + ":" + scope.Key())
}

// TermCandidate is a mined, unreviewed term proposed for the glossary.
type TermCandidate struct {
	Id             ID
	TermOriginal   string
	TermNormalized string
	Contexts       []string // example sentences, oldest first
	Frequency      int
	SourceType     string
	DocumentId     string
	Author         string
	Scope          Scope
	Confidence     float64
	Status         CandidateStatus
	ReviewedBy     string
	ReviewedAt     time.Time
	ReviewNotes    string

	// Weak references populated on approval.
	ConceptId           ID
	AliasId             ID
	DefinitionVersionId ID

	InsertedAt time.Time
	UpdatedAt  time.Time
}

// DefinitionReview is the immutable audit record of one review decision.
type DefinitionReview struct {
	Id                  string
	CandidateId         ID
	ConceptId           ID // zero when rejected
	DefinitionVersionId ID // zero when rejected
	ReviewerId          string
	Decision            ReviewDecision
	Notes               string
	CreatedAt           time.Time
}

// ConceptEvidence cites the source text an approved definition came from.
type ConceptEvidence struct {
	Id                  string
	ConceptId           ID
	DefinitionVersionId ID
	CandidateId         ID
	DocumentId          string
	Excerpt             string
	CreatedAt           time.Time
}
