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
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/poiesic/termgraph/config"
	"github.com/poiesic/termgraph/health"
	"github.com/poiesic/termgraph/ingestion"
	"github.com/poiesic/termgraph/queryflow"
	"github.com/poiesic/termgraph/review"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps are the services the router dispatches to. Routes whose service is
// nil answer 503 with CodeNotConfigured.
type Deps struct {
	Flow     *queryflow.Flow
	Pipeline *ingestion.Pipeline
	Review   *review.Service
	Health   *health.Checker

	// Features gate the query flow. With KillSwitch set the flow is never
	// invoked and queries pass through unchanged.
	Features config.FeatureFlags

	// Gatherer backs /metrics, which is not mounted when nil.
	Gatherer prometheus.Gatherer
	Metrics  *Metrics
	Logger   *slog.Logger
}

type handlers struct {
	Deps
	logger *slog.Logger
}

// NewRouter builds the gin engine serving every route.
func NewRouter(deps Deps) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	h := &handlers{Deps: deps, logger: logger.With("component", "httpapi")}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(attachRequestID())
	r.Use(requestLogger(h.logger))
	r.Use(instrument(deps.Metrics))

	r.GET("/healthz", h.healthz)
	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	v1 := r.Group("/v1")
	{
		v1.POST("/query", h.query)
		v1.POST("/ingest", h.ingest)

		rv := v1.Group("/review")
		rv.GET("/queue", h.listQueue)
		rv.GET("/candidates/:id/history", h.history)
		rv.POST("/candidates/:id/approve", h.approve)
		rv.POST("/candidates/:id/reject", h.reject)
	}
	return r
}

func notConfigured(c *gin.Context, what string) {
	c.JSON(http.StatusServiceUnavailable, ErrorResponse{
		Error: what + " is not configured",
		Code:  CodeNotConfigured,
	})
}

func (h *handlers) healthz(c *gin.Context) {
	if h.Health == nil {
		notConfigured(c, "health check")
		return
	}
	status := h.Health.Check(c.Request.Context())
	if !status.Healthy {
		c.JSON(http.StatusServiceUnavailable, status)
		return
	}
	c.JSON(http.StatusOK, status)
}
