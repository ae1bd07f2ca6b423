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


// Package storage provides the storage abstraction layer for vectorsync.
//
// This package defines repository interfaces that decouple storage
// implementation from the ingestion pipeline. It allows for different
// storage backends (BadgerDB, in-memory, etc.) to be used interchangeably.
//
// # Architecture
//
// The storage layer follows the Repository pattern:
//
//   - ContentIndexRepository: last-ingested state per (user, source), used
//     by change detection
//   - JobRepository: persisted ingestion job rows
//   - VectorRepository: per-user namespaced chunk vectors, the single
//     shared resource mutated by the persistence layer
//
// Public constructors in implementation packages return these interfaces to
// enforce abstraction:
//
//	stores, err := badger.NewStores(path)
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support concurrent
// access from multiple goroutines. Runs for different users may mutate their
// namespaces concurrently; serialization of same-user runs is the caller's
// responsibility (see the jobs package).
//
// # Context Support
//
// All repository methods accept context.Context for cancellation and timeout
// support.
package storage
