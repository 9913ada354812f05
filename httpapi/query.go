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
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/poiesic/termgraph/core"
	"github.com/poiesic/termgraph/ingestion"
	"github.com/poiesic/termgraph/queryflow"
	"github.com/poiesic/termgraph/resolve"
)

// QueryRequest is the body of POST /v1/query.
//
// Rewrite, Graph and StrictGrounding can only narrow the process feature
// flags: a switch left unset follows its flag, and a disabled flag cannot be
// enabled per request.
type QueryRequest struct {
	Query           string     `json:"query" binding:"required"`
	Scope           core.Scope `json:"scope"`
	EffectiveAt     string     `json:"effectiveAt"`
	AmbiguityPolicy string     `json:"ambiguityPolicy"`
	Rewrite         *bool      `json:"rewrite"`
	Graph           *bool      `json:"graph"`
	StrictGrounding *bool      `json:"strictGrounding"`
}

func gate(flag bool, requested *bool) bool {
	if requested == nil {
		return flag
	}
	return flag && *requested
}

func (h *handlers) query(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if h.Features.KillSwitch {
		c.JSON(http.StatusOK, queryflow.Bypass(req.Query))
		return
	}
	if h.Flow == nil {
		notConfigured(c, "query flow")
		return
	}

	policy := h.Features.Policy()
	if req.AmbiguityPolicy != "" {
		policy = resolve.ParsePolicy(req.AmbiguityPolicy)
	}

	result, err := h.Flow.Run(c.Request.Context(), queryflow.Request{
		Query:           req.Query,
		Scope:           req.Scope,
		EffectiveAt:     queryflow.ParseEffectiveAt(req.EffectiveAt, time.Now()),
		AmbiguityPolicy: policy,
		RewriteEnabled:  gate(h.Features.LLMRewrite, req.Rewrite),
		GraphEnabled:    gate(h.Features.GraphExpansion, req.Graph),
		StrictGrounding: gate(h.Features.StrictGrounding, req.StrictGrounding),
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// IngestRequest is the body of POST /v1/ingest.
type IngestRequest struct {
	Text       string     `json:"text" binding:"required"`
	DocumentId string     `json:"documentId"`
	Author     string     `json:"author"`
	SourceType string     `json:"sourceType"`
	Scope      core.Scope `json:"scope"`
}

// IngestResponse reports how many new candidates a document produced.
type IngestResponse struct {
	Inserted int `json:"inserted"`
}

func (h *handlers) ingest(c *gin.Context) {
	var req IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if h.Pipeline == nil {
		notConfigured(c, "ingestion")
		return
	}

	inserted, err := h.Pipeline.Ingest(c.Request.Context(), ingestion.Document{
		Text: req.Text,
		Metadata: ingestion.Metadata{
			DocumentId: req.DocumentId,
			Author:     req.Author,
			SourceType: req.SourceType,
			Scope:      req.Scope,
		},
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, IngestResponse{Inserted: inserted})
}
