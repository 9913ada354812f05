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
	"errors"
	"math"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// ErrCorruptRecord indicates a stored record could not be decoded.
var ErrCorruptRecord = errors.New("corrupt record")

// MUS serializers for persisted records. Field order is the wire order; new
// fields must only ever be appended.
var (
	IDMUS                = idSer{}
	ConceptMUS           = recordSer[Concept]{encodeConcept, decodeConcept}
	ConceptAliasMUS      = recordSer[ConceptAlias]{encodeAlias, decodeAlias}
	DefinitionVersionMUS = recordSer[DefinitionVersion]{encodeDefinition, decodeDefinition}
	RelationshipMUS      = recordSer[Relationship]{encodeRelationship, decodeRelationship}
	TermCandidateMUS     = recordSer[TermCandidate]{encodeCandidate, decodeCandidate}
	DefinitionReviewMUS  = recordSer[DefinitionReview]{encodeReview, decodeReview}
	ConceptEvidenceMUS   = recordSer[ConceptEvidence]{encodeEvidence, decodeEvidence}
)

type idSer struct{}

func (idSer) Marshal(v ID, bs []byte) int { return varint.Uint64.Marshal(uint64(v), bs) }
func (idSer) Size(v ID) int { return varint.Uint64.Size(uint64(v)) }
func (idSer) Unmarshal(bs []byte) (ID, int, error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

type recordSer[T any] struct {
	enc func(*musEncoder, *T)
	dec func(*musDecoder) T
}

func (s recordSer[T]) Size(v T) int {
	e := &musEncoder{}
	s.enc(e, &v)
	return e.n
}

func (s recordSer[T]) Marshal(v T, bs []byte) int {
	e := &musEncoder{bs: bs, write: true}
	s.enc(e, &v)
	return e.n
}

func (s recordSer[T]) Unmarshal(bs []byte) (T, int, error) {
	d := &musDecoder{bs: bs}
	v := s.dec(d)
	if d.err != nil {
		var zero T
		return zero, d.n, errors.Join(ErrCorruptRecord, d.err)
	}
	return v, d.n, nil
}

// musEncoder either sizes or writes depending on write.
type musEncoder struct {
	bs    []byte
	n     int
	write bool
}

func (e *musEncoder) str(s string) {
	if e.write {
		e.n += ord.String.Marshal(s, e.bs[e.n:])
		return
	}
	e.n += ord.String.Size(s)
}

func (e *musEncoder) u64(v uint64) {
	if e.write {
		e.n += varint.Uint64.Marshal(v, e.bs[e.n:])
		return
	}
	e.n += varint.Uint64.Size(v)
}

func (e *musEncoder) i64(v int64) {
	if e.write {
		e.n += varint.Int64.Marshal(v, e.bs[e.n:])
		return
	}
	e.n += varint.Int64.Size(v)
}

func (e *musEncoder) boolean(v bool) {
	if e.write {
		e.n += ord.Bool.Marshal(v, e.bs[e.n:])
		return
	}
	e.n += ord.Bool.Size(v)
}

func (e *musEncoder) id(v ID) { e.u64(uint64(v)) }
func (e *musEncoder) f64(v float64) { e.u64(math.Float64bits(v)) }
func (e *musEncoder) integer(v int) { e.i64(int64(v)) }
func (e *musEncoder) strs(v []string) {
	e.integer(len(v))
	for _, s := range v {
		e.str(s)
	}
}

// Times are stored as a presence flag followed by Unix microseconds.
func (e *musEncoder) time(t time.Time) {
	e.boolean(!t.IsZero())
	if !t.IsZero() {
		e.i64(t.UnixMicro())
	}
}

func (e *musEncoder) scope(s Scope) {
	for _, d := range s.Dimensions() {
		e.str(d)
	}
}

func (e *musEncoder) window(w Window) {
	e.time(w.ValidFrom)
	e.time(w.ValidTo)
}

type musDecoder struct {
	bs  []byte
	n   int
	err error
}

func (d *musDecoder) str() string {
	if d.err != nil {
		return ""
	}
	v, n, err := ord.String.Unmarshal(d.bs[d.n:])
	d.n += n
	d.err = err
	return v
}

func (d *musDecoder) u64() uint64 {
	if d.err != nil {
		return 0
	}
	v, n, err := varint.Uint64.Unmarshal(d.bs[d.n:])
	d.n += n
	d.err = err
	return v
}

func (d *musDecoder) i64() int64 {
	if d.err != nil {
		return 0
	}
	v, n, err := varint.Int64.Unmarshal(d.bs[d.n:])
	d.n += n
	d.err = err
	return v
}

func (d *musDecoder) boolean() bool {
	if d.err != nil {
		return false
	}
	v, n, err := ord.Bool.Unmarshal(d.bs[d.n:])
	d.n += n
	d.err = err
	return v
}

func (d *musDecoder) id() ID { return ID(d.u64()) }
func (d *musDecoder) f64() float64 { return math.Float64frombits(d.u64()) }
func (d *musDecoder) integer() int { return int(d.i64()) }

func (d *musDecoder) strs() []string {
	count := d.integer()
	if d.err != nil || count <= 0 {
		return nil
	}
	if count > len(d.bs)-d.n {
		d.err = errors.New("string slice length exceeds buffer")
		return nil
	}
	out := make([]string, 0, count)
	for range count {
		out = append(out, d.str())
	}
	return out
}

func (d *musDecoder) time() time.Time {
	if !d.boolean() {
		return time.Time{}
	}
	return time.UnixMicro(d.i64()).UTC()
}

func (d *musDecoder) scope() Scope {
	return Scope{Team: d.str(), Product: d.str(), Region: d.str(), Process: d.str(), Role: d.str()}
}

func (d *musDecoder) window() Window {
	return Window{ValidFrom: d.time(), ValidTo: d.time()}
}

func encodeConcept(e *musEncoder, v *Concept) {
	e.id(v.Id)
	e.str(v.Key)
	e.str(v.Label)
	e.str(v.Description)
	e.str(string(v.Status))
	e.str(string(v.Criticality))
	e.str(v.DefinedBy)
	e.str(v.ApprovedBy)
	e.time(v.InsertedAt)
	e.time(v.UpdatedAt)
}

func decodeConcept(d *musDecoder) Concept {
	return Concept{
		Id:          d.id(),
		Key:         d.str(),
		Label:       d.str(),
		Description: d.str(),
		Status:      ConceptStatus(d.str()),
		Criticality: Criticality(d.str()),
		DefinedBy:   d.str(),
		ApprovedBy:  d.str(),
		InsertedAt:  d.time(),
		UpdatedAt:   d.time(),
	}
}

func encodeAlias(e *musEncoder, v *ConceptAlias) {
	e.id(v.Id)
	e.id(v.ConceptId)
	e.str(v.Alias)
	e.str(v.AliasNormalized)
	e.scope(v.Scope)
	e.str(string(v.Status))
	e.f64(v.Confidence)
	e.window(v.Window)
	e.time(v.InsertedAt)
}

func decodeAlias(d *musDecoder) ConceptAlias {
	return ConceptAlias{
		Id:              d.id(),
		ConceptId:       d.id(),
		Alias:           d.str(),
		AliasNormalized: d.str(),
		Scope:           d.scope(),
		Status:          AliasStatus(d.str()),
		Confidence:      d.f64(),
		Window:          d.window(),
		InsertedAt:      d.time(),
	}
}

func encodeDefinition(e *musEncoder, v *DefinitionVersion) {
	e.id(v.Id)
	e.id(v.ConceptId)
	e.integer(v.Version)
	e.str(v.Definition)
	e.str(string(v.Status))
	e.f64(v.Confidence)
	e.scope(v.Scope)
	e.window(v.Window)
	e.str(v.SourceDocumentId)
	e.time(v.InsertedAt)
}

func decodeDefinition(d *musDecoder) DefinitionVersion {
	return DefinitionVersion{
		Id:               d.id(),
		ConceptId:        d.id(),
		Version:          d.integer(),
		Definition:       d.str(),
		Status:           DefinitionStatus(d.str()),
		Confidence:       d.f64(),
		Scope:            d.scope(),
		Window:           d.window(),
		SourceDocumentId: d.str(),
		InsertedAt:       d.time(),
	}
}

func encodeRelationship(e *musEncoder, v *Relationship) {
	e.id(v.Id)
	e.id(v.FromConceptId)
	e.id(v.ToConceptId)
	e.str(v.RelationType)
	e.scope(v.Scope)
	e.window(v.Window)
	e.str(string(v.Status))
	e.time(v.InsertedAt)
}

func decodeRelationship(d *musDecoder) Relationship {
	return Relationship{
		Id:            d.id(),
		FromConceptId: d.id(),
		ToConceptId:   d.id(),
		RelationType:  d.str(),
		Scope:         d.scope(),
		Window:        d.window(),
		Status:        RelationshipStatus(d.str()),
		InsertedAt:    d.time(),
	}
}

func encodeCandidate(e *musEncoder, v *TermCandidate) {
	e.id(v.Id)
	e.str(v.TermOriginal)
	e.str(v.TermNormalized)
	e.strs(v.Contexts)
	e.integer(v.Frequency)
	e.str(v.SourceType)
	e.str(v.DocumentId)
	e.str(v.Author)
	e.scope(v.Scope)
	e.f64(v.Confidence)
	e.str(string(v.Status))
	e.str(v.ReviewedBy)
	e.time(v.ReviewedAt)
	e.str(v.ReviewNotes)
	e.id(v.ConceptId)
	e.id(v.AliasId)
	e.id(v.DefinitionVersionId)
	e.time(v.InsertedAt)
	e.time(v.UpdatedAt)
}

func decodeCandidate(d *musDecoder) TermCandidate {
	return TermCandidate{
		Id:                  d.id(),
		TermOriginal:        d.str(),
		TermNormalized:      d.str(),
		Contexts:            d.strs(),
		Frequency:           d.integer(),
		SourceType:          d.str(),
		DocumentId:          d.str(),
		Author:              d.str(),
		Scope:               d.scope(),
		Confidence:          d.f64(),
		Status:              CandidateStatus(d.str()),
		ReviewedBy:          d.str(),
		ReviewedAt:          d.time(),
		ReviewNotes:         d.str(),
		ConceptId:           d.id(),
		AliasId:             d.id(),
		DefinitionVersionId: d.id(),
		InsertedAt:          d.time(),
		UpdatedAt:           d.time(),
	}
}

func encodeReview(e *musEncoder, v *DefinitionReview) {
	e.str(v.Id)
	e.id(v.CandidateId)
	e.id(v.ConceptId)
	e.id(v.DefinitionVersionId)
	e.str(v.ReviewerId)
	e.str(string(v.Decision))
	e.str(v.Notes)
	e.time(v.CreatedAt)
}

func decodeReview(d *musDecoder) DefinitionReview {
	return DefinitionReview{
		Id:                  d.str(),
		CandidateId:         d.id(),
		ConceptId:           d.id(),
		DefinitionVersionId: d.id(),
		ReviewerId:          d.str(),
		Decision:            ReviewDecision(d.str()),
		Notes:               d.str(),
		CreatedAt:           d.time(),
	}
}

func encodeEvidence(e *musEncoder, v *ConceptEvidence) {
	e.str(v.Id)
	e.id(v.ConceptId)
	e.id(v.DefinitionVersionId)
	e.id(v.CandidateId)
	e.str(v.DocumentId)
	e.str(v.Excerpt)
	e.time(v.CreatedAt)
}

func decodeEvidence(d *musDecoder) ConceptEvidence {
	return ConceptEvidence{
		Id:                  d.str(),
		ConceptId:           d.id(),
		DefinitionVersionId: d.id(),
		CandidateId:         d.id(),
		DocumentId:          d.str(),
		Excerpt:             d.str(),
		CreatedAt:           d.time(),
	}
}
