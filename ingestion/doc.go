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

// Package ingestion proposes glossary candidates from document text.
//
// The Miner finds explicit naming phrases ("internally we call this X",
// "aka Y") and frequent word windows in a document and upserts them as
// pending TermCandidates for review. The Pipeline mines many documents
// concurrently on a worker pool and retries transaction conflicts.
package ingestion
