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
	"fmt"

	"github.com/poiesic/termgraph/core"
)

type musSerializer[T any] interface {
	Size(v T) int
	Marshal(v T, bs []byte) int
	Unmarshal(bs []byte) (T, int, error)
}

func marshal[T any](ser musSerializer[T], v *T) []byte {
	buf := make([]byte, ser.Size(*v))
	ser.Marshal(*v, buf)
	return buf
}

func unmarshal[T any](ser musSerializer[T], data []byte) (*T, error) {
	v, _, err := ser.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &v, nil
}

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := core.IDMUS.Unmarshal(data)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return id, nil
}

// MarshalConcept serializes a Concept to bytes.
func MarshalConcept(concept *core.Concept) []byte {
	return marshal(core.ConceptMUS, concept)
}

// UnmarshalConcept deserializes a Concept from bytes.
func UnmarshalConcept(data []byte) (*core.Concept, error) {
	return unmarshal[core.Concept](core.ConceptMUS, data)
}

// MarshalAlias serializes a ConceptAlias to bytes.
func MarshalAlias(alias *core.ConceptAlias) []byte {
	return marshal(core.ConceptAliasMUS, alias)
}

// UnmarshalAlias deserializes a ConceptAlias from bytes.
func UnmarshalAlias(data []byte) (*core.ConceptAlias, error) {
	return unmarshal[core.ConceptAlias](core.ConceptAliasMUS, data)
}

// MarshalDefinition serializes a DefinitionVersion to bytes.
func MarshalDefinition(def *core.DefinitionVersion) []byte {
	return marshal(core.DefinitionVersionMUS, def)
}

// UnmarshalDefinition deserializes a DefinitionVersion from bytes.
func UnmarshalDefinition(data []byte) (*core.DefinitionVersion, error) {
	return unmarshal[core.DefinitionVersion](core.DefinitionVersionMUS, data)
}

// MarshalRelationship serializes a Relationship to bytes.
func MarshalRelationship(rel *core.Relationship) []byte {
	return marshal(core.RelationshipMUS, rel)
}

// UnmarshalRelationship deserializes a Relationship from bytes.
func UnmarshalRelationship(data []byte) (*core.Relationship, error) {
	return unmarshal[core.Relationship](core.RelationshipMUS, data)
}

// MarshalCandidate serializes a TermCandidate to bytes.
func MarshalCandidate(candidate *core.TermCandidate) []byte {
	return marshal(core.TermCandidateMUS, candidate)
}

// UnmarshalCandidate deserializes a TermCandidate from bytes.
func UnmarshalCandidate(data []byte) (*core.TermCandidate, error) {
	return unmarshal[core.TermCandidate](core.TermCandidateMUS, data)
}

// MarshalReview serializes a DefinitionReview to bytes.
func MarshalReview(review *core.DefinitionReview) []byte {
	return marshal(core.DefinitionReviewMUS, review)
}

// UnmarshalReview deserializes a DefinitionReview from bytes.
func UnmarshalReview(data []byte) (*core.DefinitionReview, error) {
	return unmarshal[core.DefinitionReview](core.DefinitionReviewMUS, data)
}

// MarshalEvidence serializes a ConceptEvidence to bytes.
func MarshalEvidence(evidence *core.ConceptEvidence) []byte {
	return marshal(core.ConceptEvidenceMUS, evidence)
}

// UnmarshalEvidence deserializes a ConceptEvidence from bytes.
func UnmarshalEvidence(data []byte) (*core.ConceptEvidence, error) {
	return unmarshal[core.ConceptEvidence](core.ConceptEvidenceMUS, data)
}
