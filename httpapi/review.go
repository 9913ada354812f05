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

package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/poiesic/termgraph/core"
	"github.com/poiesic/termgraph/review"
)

// CandidateView is the wire form of a term candidate.
type CandidateView struct {
	Id             core.ID              `json:"id"`
	Term           string               `json:"term"`
	TermNormalized string               `json:"termNormalized"`
	Contexts       []string             `json:"contexts"`
	Frequency      int                  `json:"frequency"`
	SourceType     string               `json:"sourceType"`
	DocumentId     string               `json:"documentId,omitempty"`
	Author         string               `json:"author,omitempty"`
	Scope          core.Scope           `json:"scope"`
	Confidence     float64              `json:"confidence"`
	Status         core.CandidateStatus `json:"status"`
	ReviewedBy     string               `json:"reviewedBy,omitempty"`
	ReviewedAt     *time.Time           `json:"reviewedAt,omitempty"`
	InsertedAt     time.Time            `json:"insertedAt"`
}

func candidateView(c *core.TermCandidate) CandidateView {
	v := CandidateView{
		Id:             c.Id,
		Term:           c.TermOriginal,
		TermNormalized: c.TermNormalized,
		Contexts:       c.Contexts,
		Frequency:      c.Frequency,
		SourceType:     c.SourceType,
		DocumentId:     c.DocumentId,
		Author:         c.Author,
		Scope:          c.Scope,
		Confidence:     c.Confidence,
		Status:         c.Status,
		ReviewedBy:     c.ReviewedBy,
		InsertedAt:     c.InsertedAt,
	}
	if v.Contexts == nil {
		v.Contexts = []string{}
	}
	if !c.ReviewedAt.IsZero() {
		at := c.ReviewedAt
		v.ReviewedAt = &at
	}
	return v
}

// ReviewView is the wire form of a review audit record.
type ReviewView struct {
	Id                  string              `json:"id"`
	CandidateId         core.ID             `json:"candidateId"`
	ConceptId           core.ID             `json:"conceptId,omitempty"`
	DefinitionVersionId core.ID             `json:"definitionVersionId,omitempty"`
	ReviewerId          string              `json:"reviewerId"`
	Decision            core.ReviewDecision `json:"decision"`
	Notes               string              `json:"notes,omitempty"`
	CreatedAt           time.Time           `json:"createdAt"`
}

func reviewView(r *core.DefinitionReview) ReviewView {
	return ReviewView{
		Id:                  r.Id,
		CandidateId:         r.CandidateId,
		ConceptId:           r.ConceptId,
		DefinitionVersionId: r.DefinitionVersionId,
		ReviewerId:          r.ReviewerId,
		Decision:            r.Decision,
		Notes:               r.Notes,
		CreatedAt:           r.CreatedAt,
	}
}

// ApproveResponse summarizes what an approval wrote.
type ApproveResponse struct {
	Candidate           CandidateView `json:"candidate"`
	ConceptId           core.ID       `json:"conceptId"`
	ConceptKey          string        `json:"conceptKey"`
	AliasId             core.ID       `json:"aliasId"`
	DefinitionVersionId core.ID       `json:"definitionVersionId"`
	Version             int           `json:"version"`
	Review              ReviewView    `json:"review"`
}

// QueueResponse is a page of the review queue.
type QueueResponse struct {
	Candidates []CandidateView `json:"candidates"`
}

type queueQuery struct {
	Status       string `form:"status"`
	Team         string `form:"team"`
	Product      string `form:"product"`
	Region       string `form:"region"`
	Process      string `form:"process"`
	Role         string `form:"role"`
	MinFrequency int    `form:"minFrequency"`
	Limit        int    `form:"limit"`
	Offset       int    `form:"offset"`
}

func (h *handlers) listQueue(c *gin.Context) {
	if h.Review == nil {
		notConfigured(c, "review")
		return
	}
	var q queueQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	candidates, err := h.Review.ListQueue(c.Request.Context(), review.Filter{
		Status: core.CandidateStatus(q.Status),
		Scope: core.Scope{
			Team:    q.Team,
			Product: q.Product,
			Region:  q.Region,
			Process: q.Process,
			Role:    q.Role,
		},
		MinFrequency: q.MinFrequency,
		Limit:        q.Limit,
		Offset:       q.Offset,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	resp := QueueResponse{Candidates: make([]CandidateView, 0, len(candidates))}
	for _, cand := range candidates {
		resp.Candidates = append(resp.Candidates, candidateView(cand))
	}
	c.JSON(http.StatusOK, resp)
}

func candidateID(c *gin.Context) (core.ID, bool) {
	id, err := core.ParseID(c.Param("id"))
	if err != nil {
		badRequest(c, fmt.Errorf("invalid candidate id %q", c.Param("id")))
		return 0, false
	}
	return id, true
}

func (h *handlers) approve(c *gin.Context) {
	if h.Review == nil {
		notConfigured(c, "review")
		return
	}
	id, ok := candidateID(c)
	if !ok {
		return
	}
	var input review.ApproveInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.Review.Approve(c.Request.Context(), id, input)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, ApproveResponse{
		Candidate:           candidateView(res.Candidate),
		ConceptId:           res.Concept.Id,
		ConceptKey:          res.Concept.Key,
		AliasId:             res.Alias.Id,
		DefinitionVersionId: res.Definition.Id,
		Version:             res.Definition.Version,
		Review:              reviewView(res.Review),
	})
}

func (h *handlers) reject(c *gin.Context) {
	if h.Review == nil {
		notConfigured(c, "review")
		return
	}
	id, ok := candidateID(c)
	if !ok {
		return
	}
	var input review.RejectInput
	if err := c.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err)
		return
	}

	rec, err := h.Review.Reject(c.Request.Context(), id, input)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, reviewView(rec))
}

func (h *handlers) history(c *gin.Context) {
	if h.Review == nil {
		notConfigured(c, "review")
		return
	}
	id, ok := candidateID(c)
	if !ok {
		return
	}
	reviews, err := h.Review.History(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	out := make([]ReviewView, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, reviewView(r))
	}
	c.JSON(http.StatusOK, out)
}
