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

import "github.com/poiesic/termgraph/resolve"

// Monitor observes the stages of a pipeline run.
type Monitor interface {
	Start(query string)
	AfterExtraction(candidates []string)
	AfterResolution(resolution *resolve.Resolution)
	AfterFallback(added []string, err error)
	AfterAmbiguityDetection(ambiguities []resolve.Ambiguity)
	AfterGraphExpansion(lines []string)
	Finish(result *Result)
}

type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                                {}
func (n *noopMonitor) AfterExtraction(_ []string)                    {}
func (n *noopMonitor) AfterResolution(_ *resolve.Resolution)         {}
func (n *noopMonitor) AfterFallback(_ []string, _ error)             {}
func (n *noopMonitor) AfterAmbiguityDetection(_ []resolve.Ambiguity) {}
func (n *noopMonitor) AfterGraphExpansion(_ []string)                {}
func (n *noopMonitor) Finish(_ *Result)                              {}
