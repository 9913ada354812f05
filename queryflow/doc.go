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

// Package queryflow runs the terminology pipeline for a single query.
//
// A Flow extracts candidate terms, resolves them against the concept store,
// optionally asks a language model for extra candidates when nothing
// resolved, reports ambiguous terms, optionally rewrites the query with the
// internal meaning of resolved concepts and their relationships, and decides
// whether the request must be blocked until terminology is clarified.
//
// A Flow holds no per-request state and is safe for concurrent use.
package queryflow
