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

// Package terms canonicalizes text for terminology matching.
//
// Normalize must be applied identically when aliases are stored and when
// query candidates are looked up. ExtractCandidates turns a free-text query
// into the set of normalized terms worth resolving: every 1, 2 and 3 word
// window plus any ALL-CAPS style token found in the raw text.
package terms
