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
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/poiesic/termgraph/core"
	"github.com/poiesic/termgraph/review"
)

// Error codes returned in ErrorResponse.Code.
const (
	CodeInvalidRequest  = "INVALID_REQUEST"
	CodeNotFound        = "CANDIDATE_NOT_FOUND"
	CodeAlreadyReviewed = "CANDIDATE_ALREADY_REVIEWED"
	CodeUnavailable     = "TEMPORARILY_UNAVAILABLE"
	CodeNotConfigured   = "NOT_CONFIGURED"
)

const unavailableMessage = "temporarily unavailable"

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var validationErrors = []error{
	review.ErrInvalidInput,
	core.ErrInvalidConcept,
	core.ErrInvalidAlias,
	core.ErrInvalidDefinition,
	core.ErrInvalidRelationship,
	core.ErrInvalidCandidate,
}

// statusFor maps a domain error to an HTTP status and code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, review.ErrCandidateNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, review.ErrCandidateAlreadyReviewed):
		return http.StatusConflict, CodeAlreadyReviewed
	}
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return http.StatusBadRequest, CodeInvalidRequest
		}
	}
	return http.StatusServiceUnavailable, CodeUnavailable
}

// writeError answers with the status mapped from err. Internal failures are
// logged and their detail is not echoed to the caller.
func writeError(c *gin.Context, logger *slog.Logger, err error) {
	status, code := statusFor(err)
	msg := err.Error()
	if status == http.StatusServiceUnavailable {
		logger.Error("request failed", "request_id", requestID(c), "path", c.FullPath(), "err", err)
		msg = unavailableMessage
	}
	c.JSON(status, ErrorResponse{Error: msg, Code: code})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: CodeInvalidRequest})
}
