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

// Package review turns mined term candidates into approved glossary entries.
//
// Approving a candidate creates or reuses the concept named by its key, adds
// the next definition version, attaches an alias for the candidate's scope,
// cites the source text as evidence and records an audit entry, all in one
// transaction. Rejecting a candidate closes it with an audit entry.
package review
