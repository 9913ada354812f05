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
	"encoding/binary"
	"time"

	"github.com/poiesic/termgraph/core"
)

// Key prefixes for different data types. Every prefix ends in ':' so no
// prefix is a prefix of another.
const (
	conceptPrefix       = "con:"
	aliasPrefix         = "als:"
	aliasNormPrefix     = "alsnorm:"
	definitionPrefix    = "def:"
	relationshipPrefix  = "rel:"
	evidencePrefix      = "evi:"
	candidatePrefix     = "cand:"
	candidateTermPrefix = "candterm:"
	reviewPrefix        = "rev:"
	candidateIDSeq      = "candseq"
	pingKey             = "ping"
)

// keyBuilder appends fixed-width big endian fields so lexicographic key
// order matches numeric order.
type keyBuilder []byte

func newKey(prefix string) keyBuilder {
	return append(make(keyBuilder, 0, len(prefix)+24), prefix...)
}

func (k keyBuilder) id(id core.ID) keyBuilder {
	return binary.BigEndian.AppendUint64(k, uint64(id))
}

func (k keyBuilder) uint(v uint64) keyBuilder {
	return binary.BigEndian.AppendUint64(k, v)
}

func (k keyBuilder) str(s string) keyBuilder {
	return append(k, s...)
}

// term appends s followed by a NUL separator. Normalized text never contains NUL.
func (k keyBuilder) term(s string) keyBuilder {
	return append(append(k, s...), 0)
}

// makeConceptKey generates a key for a concept by ID.
func makeConceptKey(id core.ID) []byte {
	return newKey(conceptPrefix).id(id)
}

// makeAliasKey generates a key for an alias by ID.
func makeAliasKey(id core.ID) []byte {
	return newKey(aliasPrefix).id(id)
}

// makeAliasNormKey generates the normalized-text index key for an alias.
// Format: prefix:normalized\x00aliasID
func makeAliasNormKey(normalized string, id core.ID) []byte {
	return newKey(aliasNormPrefix).term(normalized).id(id)
}

// makePartialAliasNormKey generates a partial key matching every alias with
// the given normalized text.
func makePartialAliasNormKey(normalized string) []byte {
	return newKey(aliasNormPrefix).term(normalized)
}

// makeDefinitionKey generates a key for a definition version.
// Format: prefix:conceptID:version
func makeDefinitionKey(conceptID core.ID, version int) []byte {
	return newKey(definitionPrefix).id(conceptID).uint(uint64(version))
}

func makePartialDefinitionKey(conceptID core.ID) []byte {
	return newKey(definitionPrefix).id(conceptID)
}

// makeRelationshipKey generates a key for a relationship.
// Format: prefix:fromConceptID:relationshipID
func makeRelationshipKey(from, id core.ID) []byte {
	return newKey(relationshipPrefix).id(from).id(id)
}

func makePartialRelationshipKey(from core.ID) []byte {
	return newKey(relationshipPrefix).id(from)
}

// makeEvidenceKey generates a key for concept evidence.
// Format: prefix:conceptID:createdAt:evidenceID
func makeEvidenceKey(conceptID core.ID, createdAt time.Time, id string) []byte {
	return newKey(evidencePrefix).id(conceptID).uint(uint64(createdAt.UnixMicro())).str(id)
}

func makePartialEvidenceKey(conceptID core.ID) []byte {
	return newKey(evidencePrefix).id(conceptID)
}

// makeCandidateKey generates a key for a term candidate by ID.
func makeCandidateKey(id core.ID) []byte {
	return newKey(candidatePrefix).id(id)
}

// makeCandidateTermKey generates the (normalized term, document) lookup key.
// Format: prefix:normalized\x00documentID
func makeCandidateTermKey(normalized, documentID string) []byte {
	return newKey(candidateTermPrefix).term(normalized).str(documentID)
}

// makeReviewKey generates a key for a review record.
// Format: prefix:candidateID:createdAt:reviewID
func makeReviewKey(candidateID core.ID, createdAt time.Time, id string) []byte {
	return newKey(reviewPrefix).id(candidateID).uint(uint64(createdAt.UnixMicro())).str(id)
}

func makePartialReviewKey(candidateID core.ID) []byte {
	return newKey(reviewPrefix).id(candidateID)
}

func beUint64(b []byte) uint64 {
	return binary.BigEndian.Uint64(b)
}
