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

// Package ai defines the language model services used by termgraph.
//
// The only service is the fallback TermClassifier: when a query matched no
// known alias, a low-temperature zero-shot prompt asks the model for up to
// five internal slang candidates. The call is best effort. Malformed output
// degrades to an empty result and the caller swallows transport errors.
//
// Implementations live in subpackages:
//
//   - ai/openai: OpenAI-compatible chat APIs via langchaingo
//   - ai/mock: test doubles with injectable behavior
package ai
