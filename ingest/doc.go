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


// Package ingest implements the ingestion pipeline: normalize, dedupe,
// chunk, batch-embed, persist, finalize.
//
// The Orchestrator drives one run over a paged Source. Each document flows
// through text normalization and content hashing, change detection against
// the content index, deterministic chunking, and the EmbeddingBatcher, which
// groups chunks into token/count-bounded provider calls. Embedded chunks are
// upserted as pending under a per-run generation and promoted by the
// finalize step only once the document's full chunk set is stored, so
// readers always see either the complete old version or the complete new
// version of a document.
//
// Error handling is layered: transient provider errors are retried with
// exponential backoff, document-level errors are isolated and counted
// without aborting the run, batch failures fail every document with chunks
// in the batch, and consistency violations abort the run.
package ingest
