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

package queryflow

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fallback outcome label values.
const (
	outcomeTerms = "terms"
	outcomeEmpty = "empty"
	outcomeError = "error"
)

// Metrics are the Prometheus collectors of a Flow.
// A nil *Metrics records nothing.
type Metrics struct {
	interpretation prometheus.Histogram
	graph          prometheus.Histogram
	strictFailures prometheus.Counter
	fallback       *prometheus.CounterVec
}

// NewMetrics creates the query flow collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		interpretation: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "termgraph",
			Subsystem: "queryflow",
			Name:      "interpretation_seconds",
			Help:      "Wall time of candidate extraction, resolution and ambiguity detection.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
		graph: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "termgraph",
			Subsystem: "queryflow",
			Name:      "graph_seconds",
			Help:      "Wall time of graph expansion.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
		strictFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: "termgraph",
			Subsystem: "queryflow",
			Name:      "strict_failures_total",
			Help:      "Queries blocked pending terminology clarification.",
		}),
		fallback: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "termgraph",
			Subsystem: "queryflow",
			Name:      "fallback_total",
			Help:      "LLM fallback classifier invocations by outcome.",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) observeInterpretation(d time.Duration) {
	if m != nil {
		m.interpretation.Observe(d.Seconds())
	}
}

func (m *Metrics) observeGraph(d time.Duration) {
	if m != nil {
		m.graph.Observe(d.Seconds())
	}
}

func (m *Metrics) strictFailure() {
	if m != nil {
		m.strictFailures.Inc()
	}
}

func (m *Metrics) fallbackOutcome(outcome string) {
	if m != nil {
		m.fallback.WithLabelValues(outcome).Inc()
	}
}
