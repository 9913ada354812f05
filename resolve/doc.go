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

// Package resolve maps candidate terms onto approved concepts.
//
// Resolution matches normalized candidates against active aliases, keeps
// only aliases, definitions and relationships whose scope is compatible with
// the request context and whose validity window contains the effective time,
// and picks the best definition per concept. The same package reports terms
// that resolve to more than one concept and renders relationship hints for
// resolved concepts.
package resolve
