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

package ingestion

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the Prometheus collectors of a Miner.
// A nil *Metrics records nothing.
type Metrics struct {
	inserted prometheus.Counter
}

// NewMetrics creates the ingestion collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		inserted: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "termgraph",
			Subsystem: "ingestion",
			Name:      "candidates_inserted_total",
			Help:      "Term candidates inserted into the review queue.",
		}),
	}
}

func (m *Metrics) addInserted(n int) {
	if m != nil && n > 0 {
		m.inserted.Add(float64(n))
	}
}
