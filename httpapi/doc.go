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

// Package httpapi exposes the query flow, the ingestion hook and the review
// workflow over HTTP.
//
// Routes:
//
//	POST /v1/query                            interpret and expand a query
//	POST /v1/ingest                           mine a document for term candidates
//	GET  /v1/review/queue                     list candidates awaiting review
//	GET  /v1/review/candidates/:id/history    review audit trail of a candidate
//	POST /v1/review/candidates/:id/approve    approve a candidate
//	POST /v1/review/candidates/:id/reject     reject a candidate
//	GET  /healthz                             store health
//	GET  /metrics                             Prometheus metrics
//
// Failures are reported as ErrorResponse. Anything not caused by the request
// itself is answered with 503 so callers can retry.
package httpapi
