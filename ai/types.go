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

package ai

const (
	// MaxFallbackTerms caps how many terms one classification may propose.
	MaxFallbackTerms = 5

	// MaxTermLength drops proposed terms longer than this many runes.
	MaxTermLength = 64

	// StageLLMFallback tags log records emitted by the fallback classifier.
	StageLLMFallback = "llm_fallback"
)
